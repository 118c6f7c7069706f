package checkout

import "github.com/shopspring/decimal"

// RequiredContainers is ceil(requiredContent / contentPerUnit).
func RequiredContainers(requiredContent, contentPerUnit decimal.Decimal) (int64, error) {
	if contentPerUnit.Sign() <= 0 {
		return 0, ErrDivisionByZero
	}
	if requiredContent.IsNegative() {
		return 0, ErrInvalidContent
	}
	return requiredContent.Div(contentPerUnit).Ceil().IntPart(), nil
}

// AvailableContent is stock × contentPerUnit; a nil stock counts as zero.
func AvailableContent(stock *int64, contentPerUnit decimal.Decimal) decimal.Decimal {
	if stock == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(*stock).Mul(contentPerUnit)
}

// MakeableUnits is how many composites the available content covers when each
// composite consumes contentPerComposite.
func MakeableUnits(available, contentPerComposite decimal.Decimal) (int64, error) {
	if contentPerComposite.Sign() <= 0 {
		return 0, ErrInvalidContent
	}
	if available.Sign() <= 0 {
		return 0, nil
	}
	return available.Div(contentPerComposite).Floor().IntPart(), nil
}
