package checkout

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FromCents converts stored minor units into a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ToCents rounds half away from zero to whole cents.
func ToCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// Percent is a rate in percentage form: NewPercent(8) is 8 %, never 0.08.
type Percent struct {
	value decimal.Decimal
}

func NewPercent(p int64) Percent {
	return Percent{value: decimal.NewFromInt(p)}
}

// ParsePercent reads "8" or "12.5". Negative rates are rejected.
func ParsePercent(s string) (Percent, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Percent{}, fmt.Errorf("invalid percent %q: %w", s, err)
	}
	return PercentFromDecimal(d)
}

func PercentFromDecimal(d decimal.Decimal) (Percent, error) {
	if d.IsNegative() {
		return Percent{}, fmt.Errorf("percent must not be negative, got %s", d)
	}
	return Percent{value: d}, nil
}

func (p Percent) Decimal() decimal.Decimal { return p.value }

func (p Percent) String() string { return p.value.String() }

// Fraction is the rate divided by 100.
func (p Percent) Fraction() decimal.Decimal { return p.value.Div(hundred) }

func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(p.value.String()), nil
}

func (p *Percent) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	parsed, err := PercentFromDecimal(d)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
