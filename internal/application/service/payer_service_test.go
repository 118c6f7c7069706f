package service

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

func TestPayer_Credit(t *testing.T) {
	f := newFixture(t)
	payer := f.payer(t, "Meena")

	view, err := f.payers.GetCredit(f.ctx, payer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.CreditDays)
	assert.True(t, view.IsDefault)

	_, err = f.payers.SetCredit(f.ctx, payer.ID, 0)
	assertStatus(t, err, http.StatusBadRequest)

	view, err = f.payers.SetCredit(f.ctx, payer.ID, 15)
	require.NoError(t, err)
	assert.Equal(t, 15, view.CreditDays)
	assert.False(t, view.IsDefault)

	view, err = f.payers.SetCredit(f.ctx, payer.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, view.CreditDays)

	require.NoError(t, f.payers.DeleteCredit(f.ctx, payer.ID))
	view, err = f.payers.GetCredit(f.ctx, payer.ID)
	require.NoError(t, err)
	assert.True(t, view.IsDefault)
}

func TestPayer_CRUD(t *testing.T) {
	f := newFixture(t)
	f.payer(t, "Meena")
	anil := f.payer(t, "Anil")

	_, err := f.payers.CreatePayer(f.ctx, &PayerInput{Name: "  "})
	assertStatus(t, err, http.StatusBadRequest)

	found, err := f.payers.ListPayers(f.ctx, "ani", nil)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, anil.ID, found.Items[0].ID)

	updated, err := f.payers.UpdatePayer(f.ctx, anil.ID, &PayerInput{Email: "ANIL@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Anil", updated.Name)
	assert.Equal(t, "anil@example.com", updated.Email)

	require.NoError(t, f.payers.DeletePayer(f.ctx, anil.ID))
	_, err = f.payers.GetPayer(f.ctx, anil.ID)
	assertStatus(t, err, http.StatusNotFound)
}

func TestPayer_DeleteWithBalance(t *testing.T) {
	f := newFixture(t)
	payer := f.payer(t, "Meena")
	tea := f.basicProduct(t, "Tea", 10000, 5)

	bill := f.openBill(t)
	f.addProduct(t, bill.ID, tea.ID, 1)
	_, err := f.bills.SetPayer(f.ctx, bill.ID, &payer.ID)
	require.NoError(t, err)
	_, err = f.bills.Checkout(f.ctx, bill.ID, &CheckoutInput{Paid: 0, UserID: f.ownerID})
	require.NoError(t, err)

	assertStatus(t, f.payers.DeletePayer(f.ctx, payer.ID), http.StatusConflict)

	out, err := f.payers.Receivables(f.ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Meena", out.Items[0].PayerName)
	assert.Equal(t, enum.PaymentStatusPending, out.Items[0].Status)
}
