package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

// LineItem is one priced entry of a cart.
type LineItem struct {
	ID       string
	Price    decimal.Decimal
	Quantity int64
	Type     enum.ItemType
	Category string
}

// Totals is the outcome of pricing a cart. Amounts are unrounded; use ToCents to persist.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Base       decimal.Decimal `json:"base"`
	GST        decimal.Decimal `json:"gst"`
	Discount   decimal.Decimal `json:"discount"`
	FinalTotal decimal.Decimal `json:"final_total"`
}

// Calculator prices carts. With AllowNegativeTotals a discount larger than the
// bill yields a negative total (a credit); otherwise Checkout rejects it.
type Calculator struct {
	AllowNegativeTotals bool
}

func NewCalculator(allowNegativeTotals bool) *Calculator {
	return &Calculator{AllowNegativeTotals: allowNegativeTotals}
}

// ValidateLineItem rejects negative prices and quantities below one.
func ValidateLineItem(item LineItem) error {
	if item.Price.IsNegative() {
		return &ItemError{ItemID: item.ID, Err: ErrInvalidPrice}
	}
	if item.Quantity < 1 {
		return &ItemError{ItemID: item.ID, Err: ErrInvalidQuantity}
	}
	return nil
}

// LineTotal is price × quantity.
func LineTotal(item LineItem) (decimal.Decimal, error) {
	if err := ValidateLineItem(item); err != nil {
		return decimal.Zero, err
	}
	return item.Price.Mul(decimal.NewFromInt(item.Quantity)), nil
}

// ComputeSubtotal sums price × quantity without rounding.
func ComputeSubtotal(items []LineItem) (decimal.Decimal, error) {
	subtotal := decimal.Zero
	for _, item := range items {
		line, err := LineTotal(item)
		if err != nil {
			return decimal.Zero, err
		}
		subtotal = subtotal.Add(line)
	}
	return subtotal, nil
}

// ComputeFinalTotal is subtotal + gst − discount. It never clamps.
func ComputeFinalTotal(subtotal, gst, discount decimal.Decimal) decimal.Decimal {
	return subtotal.Add(gst).Sub(discount)
}

// Checkout prices items under policy and applies discount.
func (c *Calculator) Checkout(items []LineItem, discount decimal.Decimal, policy GstPolicy) (Totals, error) {
	if discount.IsNegative() {
		return Totals{}, ErrInvalidDiscount
	}

	subtotal, err := ComputeSubtotal(items)
	if err != nil {
		return Totals{}, err
	}

	b := policy.Apply(subtotal)
	final := ComputeFinalTotal(b.Base, b.GST, discount)
	if final.IsNegative() && !c.AllowNegativeTotals {
		return Totals{}, ErrNegativeTotal
	}

	return Totals{
		Subtotal:   subtotal,
		Base:       b.Base,
		GST:        b.GST,
		Discount:   discount,
		FinalTotal: final,
	}, nil
}
