package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

// Breakdown splits an amount into its pre-tax base and GST.
type Breakdown struct {
	Base  decimal.Decimal `json:"base"`
	GST   decimal.Decimal `json:"gst"`
	Gross decimal.Decimal `json:"gross"`
}

// GstPolicy is either Additive or InclusiveOfTotal. Each call site picks one
// explicitly so the two formulas never get mixed up.
type GstPolicy interface {
	Apply(amount decimal.Decimal) Breakdown
	Mode() enum.GstMode
	GstRate() Percent
}

// Additive puts GST on top of the amount.
type Additive struct {
	Rate Percent
}

func (a Additive) Apply(amount decimal.Decimal) Breakdown {
	gst := ComputeGSTAdditive(amount, a.Rate)
	return Breakdown{Base: amount, GST: gst, Gross: amount.Add(gst)}
}

func (a Additive) Mode() enum.GstMode { return enum.GstModeAdditive }
func (a Additive) GstRate() Percent   { return a.Rate }

// InclusiveOfTotal treats the amount as already containing GST.
type InclusiveOfTotal struct {
	Rate Percent
}

func (i InclusiveOfTotal) Apply(amount decimal.Decimal) Breakdown {
	base, gst := ComputeGSTInclusive(amount, i.Rate)
	return Breakdown{Base: base, GST: gst, Gross: amount}
}

func (i InclusiveOfTotal) Mode() enum.GstMode { return enum.GstModeInclusive }
func (i InclusiveOfTotal) GstRate() Percent   { return i.Rate }

// NewPolicy rebuilds a policy from its stored mode and rate.
func NewPolicy(mode enum.GstMode, rate Percent) GstPolicy {
	if mode == enum.GstModeInclusive {
		return InclusiveOfTotal{Rate: rate}
	}
	return Additive{Rate: rate}
}

// ComputeGSTAdditive returns subtotal × rate.
func ComputeGSTAdditive(subtotal decimal.Decimal, rate Percent) decimal.Decimal {
	return subtotal.Mul(rate.Fraction())
}

// ComputeGSTInclusive backs GST out of a total that already includes it:
// gst = total × rate / (100 + rate), base = total − gst.
func ComputeGSTInclusive(total decimal.Decimal, rate Percent) (base, gst decimal.Decimal) {
	gst = total.Mul(rate.Decimal()).Div(hundred.Add(rate.Decimal()))
	return total.Sub(gst), gst
}
