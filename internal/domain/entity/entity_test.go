package entity

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/ledgerpos-api/internal/domain/checkout"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

func TestMoney_JSON(t *testing.T) {
	out, err := json.Marshal(struct {
		Total Money `json:"total"`
	}{Total: 2700})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":27.00}`, string(out))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`12.5`), &m))
	assert.Equal(t, Money(1250), m)

	require.NoError(t, json.Unmarshal([]byte(`"0.10"`), &m))
	assert.Equal(t, Money(10), m)

	assert.Error(t, json.Unmarshal([]byte(`1.005`), &m))
	assert.Error(t, json.Unmarshal([]byte(`"ten"`), &m))
}

func TestBill_ApplyTotals(t *testing.T) {
	bill := &Bill{
		GstMode: enum.GstModeAdditive,
		GstRate: decimal.NewFromInt(8),
		Items: []BillItem{
			{ID: uuid.New(), Name: "Tea", Price: 1000, Quantity: 2},
			{ID: uuid.New(), Name: "Biscuit", Price: 500, Quantity: 1},
		},
		Paid: 1000,
	}

	totals, err := checkout.NewCalculator(true).Checkout(bill.LineItems(), decimal.Zero, bill.Policy())
	require.NoError(t, err)
	bill.ApplyTotals(totals)

	assert.Equal(t, Money(2500), bill.SubTotal)
	assert.Equal(t, Money(200), bill.GST)
	assert.Equal(t, Money(2700), bill.Total)
	assert.Equal(t, Money(1700), bill.Due)
	assert.Equal(t, Money(2000), bill.Items[0].Total)
}

func TestBill_DueNeverNegative(t *testing.T) {
	bill := &Bill{Total: 1000}
	bill.RecordPayment(1500)

	assert.Equal(t, Money(1500), bill.Paid)
	assert.Equal(t, Money(0), bill.Due)
}

func TestProduct_CanBeIngredient(t *testing.T) {
	p := Product{
		Type:           enum.ItemTypeBasic,
		ContentPerUnit: decimal.NewNullDecimal(decimal.NewFromInt(220)),
		ContentUnit:    "ml",
	}
	assert.True(t, p.CanBeIngredient())

	p.ContentUnit = ""
	assert.False(t, p.CanBeIngredient())

	p = Product{Type: enum.ItemTypeService}
	assert.False(t, p.CanBeIngredient())
}
