package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(id, price string, qty int64) LineItem {
	return LineItem{ID: id, Price: d(price), Quantity: qty, Type: enum.ItemTypeBasic}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func TestComputeSubtotal(t *testing.T) {
	tests := []struct {
		name  string
		items []LineItem
		want  string
	}{
		{"empty cart", nil, "0"},
		{"single item", []LineItem{item("a", "10", 2)}, "20"},
		{"mixed items", []LineItem{item("a", "10", 2), item("b", "5", 1)}, "25"},
		{"fractional prices stay exact", []LineItem{item("a", "0.1", 3), item("b", "0.2", 1)}, "0.5"},
		{"free item", []LineItem{item("a", "0", 4)}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeSubtotal(tt.items)
			require.NoError(t, err)
			assertDecimal(t, tt.want, got)
		})
	}
}

func TestComputeSubtotal_InvariantUnderReordering(t *testing.T) {
	items := []LineItem{item("a", "19.99", 3), item("b", "0.35", 7), item("c", "120", 1), item("d", "4.05", 2)}
	want, err := ComputeSubtotal(items)
	require.NoError(t, err)

	permute(items, 0, func(p []LineItem) {
		got, err := ComputeSubtotal(p)
		require.NoError(t, err)
		assertDecimal(t, want.String(), got)
	})
}

func permute(items []LineItem, k int, visit func([]LineItem)) {
	if k == len(items) {
		visit(items)
		return
	}
	for i := k; i < len(items); i++ {
		items[k], items[i] = items[i], items[k]
		permute(items, k+1, visit)
		items[k], items[i] = items[i], items[k]
	}
}

func TestComputeSubtotal_Rejects(t *testing.T) {
	t.Run("zero quantity", func(t *testing.T) {
		_, err := ComputeSubtotal([]LineItem{item("a", "10", 1), item("b", "5", 0)})
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		var itemErr *ItemError
		require.ErrorAs(t, err, &itemErr)
		assert.Equal(t, "b", itemErr.ItemID)
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := ComputeSubtotal([]LineItem{item("a", "-1", 1)})
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})
}

func TestComputeGSTAdditive(t *testing.T) {
	assertDecimal(t, "2", ComputeGSTAdditive(d("25"), NewPercent(8)))
	assertDecimal(t, "2.5", ComputeGSTAdditive(d("25"), NewPercent(10)))
	assertDecimal(t, "0", ComputeGSTAdditive(d("25"), NewPercent(0)))
}

func TestComputeGSTInclusive(t *testing.T) {
	t.Run("exact split", func(t *testing.T) {
		base, gst := ComputeGSTInclusive(d("108"), NewPercent(8))
		assertDecimal(t, "100", base)
		assertDecimal(t, "8", gst)
	})

	t.Run("repeating split", func(t *testing.T) {
		base, gst := ComputeGSTInclusive(d("100"), NewPercent(8))
		assert.Equal(t, "92.59", base.StringFixed(2))
		assert.Equal(t, "7.41", gst.StringFixed(2))
	})
}

func TestComputeGSTInclusive_RoundTrip(t *testing.T) {
	for _, total := range []string{"108", "100", "0.01", "999.99", "12345.67"} {
		for _, rate := range []int64{8, 10} {
			base, gst := ComputeGSTInclusive(d(total), NewPercent(rate))
			assertDecimal(t, total, ComputeFinalTotal(base, gst, decimal.Zero))
		}
	}
}

func TestComputeFinalTotal(t *testing.T) {
	assertDecimal(t, "27", ComputeFinalTotal(d("25"), d("2"), d("0")))
	assertDecimal(t, "22", ComputeFinalTotal(d("25"), d("2"), d("5")))

	t.Run("discount above total goes negative", func(t *testing.T) {
		assertDecimal(t, "-3", ComputeFinalTotal(d("25"), d("2"), d("30")))
	})
}

func TestComputeFinalTotal_Monotonic(t *testing.T) {
	steps := []string{"0", "0.01", "1", "13.5", "100"}
	for i := 1; i < len(steps); i++ {
		lo, hi := d(steps[i-1]), d(steps[i])

		assert.True(t, ComputeFinalTotal(d("50"), d("4"), hi).LessThan(ComputeFinalTotal(d("50"), d("4"), lo)))
		assert.True(t, ComputeFinalTotal(hi, d("4"), d("2")).GreaterThan(ComputeFinalTotal(lo, d("4"), d("2"))))
		assert.True(t, ComputeFinalTotal(d("50"), hi, d("2")).GreaterThan(ComputeFinalTotal(d("50"), lo, d("2"))))
	}
}

func TestCalculator_Checkout(t *testing.T) {
	items := []LineItem{item("a", "10", 2), item("b", "5", 1)}

	t.Run("additive 8 percent", func(t *testing.T) {
		totals, err := NewCalculator(true).Checkout(items, decimal.Zero, Additive{Rate: NewPercent(8)})
		require.NoError(t, err)

		assertDecimal(t, "25", totals.Subtotal)
		assertDecimal(t, "25", totals.Base)
		assertDecimal(t, "2", totals.GST)
		assertDecimal(t, "27", totals.FinalTotal)
	})

	t.Run("inclusive of total", func(t *testing.T) {
		totals, err := NewCalculator(true).Checkout([]LineItem{item("a", "108", 1)}, d("8"), InclusiveOfTotal{Rate: NewPercent(8)})
		require.NoError(t, err)

		assertDecimal(t, "108", totals.Subtotal)
		assertDecimal(t, "100", totals.Base)
		assertDecimal(t, "8", totals.GST)
		assertDecimal(t, "100", totals.FinalTotal)
	})

	t.Run("negative total allowed", func(t *testing.T) {
		totals, err := NewCalculator(true).Checkout(items, d("30"), Additive{Rate: NewPercent(8)})
		require.NoError(t, err)
		assertDecimal(t, "-3", totals.FinalTotal)
	})

	t.Run("negative total rejected", func(t *testing.T) {
		_, err := NewCalculator(false).Checkout(items, d("30"), Additive{Rate: NewPercent(8)})
		assert.ErrorIs(t, err, ErrNegativeTotal)
	})

	t.Run("negative discount", func(t *testing.T) {
		_, err := NewCalculator(true).Checkout(items, d("-1"), Additive{Rate: NewPercent(8)})
		assert.ErrorIs(t, err, ErrInvalidDiscount)
	})

	t.Run("invalid item", func(t *testing.T) {
		_, err := NewCalculator(true).Checkout([]LineItem{item("x", "1", 0)}, decimal.Zero, Additive{Rate: NewPercent(8)})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestNewPolicy(t *testing.T) {
	p := NewPolicy(enum.GstModeInclusive, NewPercent(10))
	assert.Equal(t, InclusiveOfTotal{Rate: NewPercent(10)}, p)
	assert.Equal(t, enum.GstModeInclusive, p.Mode())

	p = NewPolicy(enum.GstModeAdditive, NewPercent(8))
	assert.Equal(t, enum.GstModeAdditive, p.Mode())
	assert.Equal(t, "8", p.GstRate().String())
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(741), ToCents(d("7.4074074")))
	assert.Equal(t, int64(-300), ToCents(d("-3")))
	assert.Equal(t, int64(1), ToCents(d("0.005")))
	assertDecimal(t, "12.34", FromCents(1234))
}

func TestParsePercent(t *testing.T) {
	p, err := ParsePercent("12.5")
	require.NoError(t, err)
	assertDecimal(t, "0.125", p.Fraction())

	_, err = ParsePercent("-1")
	assert.Error(t, err)

	_, err = ParsePercent("eight")
	assert.Error(t, err)
}
