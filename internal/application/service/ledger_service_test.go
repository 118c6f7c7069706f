package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/internal/domain/policy"
	"github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
)

func (f *fixture) ledgerCategory(t *testing.T, kind enum.LedgerKind, name string) *entity.LedgerCategory {
	t.Helper()
	cats, err := f.ledger.ListCategories(f.ctx, &kind, false)
	require.NoError(t, err)
	for i := range cats {
		if cats[i].Name == name {
			return &cats[i]
		}
	}
	t.Fatalf("ledger category %s/%s not seeded", kind, name)
	return nil
}

func TestLedger_CreateTransaction(t *testing.T) {
	f := newFixture(t)
	rent := f.ledgerCategory(t, enum.LedgerKindExpense, "Rent")
	services := f.ledgerCategory(t, enum.LedgerKindIncome, "Services")

	t.Run("inclusive entry backs out GST", func(t *testing.T) {
		txn, err := f.ledger.CreateTransaction(f.ctx, &CreateTransactionInput{
			Kind:         enum.LedgerKindIncome,
			CategoryID:   services.ID,
			Amount:       10800,
			GSTInclusive: true,
			CreatedBy:    f.ownerID,
			Access:       f.ownerAccess(),
		})
		require.NoError(t, err)
		assert.Equal(t, entity.Money(800), txn.GSTAmount)
		assert.Equal(t, f.clock, txn.TransactionDate)
	})

	t.Run("kind must match the category", func(t *testing.T) {
		_, err := f.ledger.CreateTransaction(f.ctx, &CreateTransactionInput{Kind: enum.LedgerKindIncome, CategoryID: rent.ID, Amount: 100, Access: f.ownerAccess()})
		assertStatus(t, err, http.StatusBadRequest)
	})

	t.Run("access flags", func(t *testing.T) {
		access := policy.Access{Role: enum.SourceRoleAdmin, IncomeAccess: true}
		_, err := f.ledger.CreateTransaction(f.ctx, &CreateTransactionInput{Kind: enum.LedgerKindExpense, CategoryID: rent.ID, Amount: 100, Access: access})
		assertStatus(t, err, http.StatusForbidden)
	})

	t.Run("disabled category rejects entries", func(t *testing.T) {
		_, err := f.ledger.ToggleCategory(f.ctx, rent.ID, false)
		require.NoError(t, err)
		_, err = f.ledger.CreateTransaction(f.ctx, &CreateTransactionInput{Kind: enum.LedgerKindExpense, CategoryID: rent.ID, Amount: 100, Access: f.ownerAccess()})
		assertStatus(t, err, http.StatusConflict)

		enabledOnly, err := f.ledger.ListCategories(f.ctx, nil, true)
		require.NoError(t, err)
		for _, c := range enabledOnly {
			assert.NotEqual(t, rent.ID, c.ID)
		}
	})

	t.Run("non positive amount", func(t *testing.T) {
		_, err := f.ledger.CreateTransaction(f.ctx, &CreateTransactionInput{Kind: enum.LedgerKindIncome, CategoryID: services.ID, Amount: 0, Access: f.ownerAccess()})
		assertStatus(t, err, http.StatusBadRequest)
	})
}

func TestLedger_Categories(t *testing.T) {
	f := newFixture(t)
	sales := f.ledgerCategory(t, enum.LedgerKindIncome, entity.SalesCategoryName)

	_, err := f.ledger.ToggleCategory(f.ctx, sales.ID, false)
	assertStatus(t, err, http.StatusConflict)
	assertStatus(t, f.ledger.DeleteCategory(f.ctx, sales.ID), http.StatusConflict)

	fuel, err := f.ledger.CreateCategory(f.ctx, enum.LedgerKindExpense, "Fuel")
	require.NoError(t, err)
	_, err = f.ledger.CreateCategory(f.ctx, enum.LedgerKindExpense, "Fuel")
	assertStatus(t, err, http.StatusConflict)

	_, err = f.ledger.CreateTransaction(f.ctx, &CreateTransactionInput{Kind: enum.LedgerKindExpense, CategoryID: fuel.ID, Amount: 2500, Access: f.ownerAccess()})
	require.NoError(t, err)
	assertStatus(t, f.ledger.DeleteCategory(f.ctx, fuel.ID), http.StatusConflict)

	toys, err := f.ledger.CreateCategory(f.ctx, enum.LedgerKindExpense, "Toys")
	require.NoError(t, err)
	require.NoError(t, f.ledger.DeleteCategory(f.ctx, toys.ID))
}

func TestLedger_SummaryAndDelete(t *testing.T) {
	f := newFixture(t)
	services := f.ledgerCategory(t, enum.LedgerKindIncome, "Services")
	rent := f.ledgerCategory(t, enum.LedgerKindExpense, "Rent")

	income, err := f.ledger.CreateTransaction(f.ctx, &CreateTransactionInput{Kind: enum.LedgerKindIncome, CategoryID: services.ID, Amount: 10800, GSTInclusive: true, Access: f.ownerAccess()})
	require.NoError(t, err)
	_, err = f.ledger.CreateTransaction(f.ctx, &CreateTransactionInput{Kind: enum.LedgerKindExpense, CategoryID: rent.ID, Amount: 5000, Access: f.ownerAccess()})
	require.NoError(t, err)

	from, to := f.clock.Add(-time.Hour), f.clock.Add(time.Hour)
	sum, err := f.ledger.Summary(f.ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, entity.Money(10800), sum.Income)
	assert.Equal(t, entity.Money(5000), sum.Expense)
	assert.Equal(t, entity.Money(5800), sum.Net)
	assert.Equal(t, entity.Money(800), sum.GSTCollected)
	assert.Equal(t, int64(2), sum.Entries)

	_, err = f.ledger.Summary(f.ctx, to, from)
	assertStatus(t, err, http.StatusBadRequest)

	expenseOnly := policy.Access{Role: enum.SourceRoleAdmin, ExpenseAccess: true}
	assertStatus(t, f.ledger.DeleteTransaction(f.ctx, income.ID, expenseOnly), http.StatusForbidden)
	require.NoError(t, f.ledger.DeleteTransaction(f.ctx, income.ID, f.ownerAccess()))

	kind := enum.LedgerKindIncome
	list, err := f.ledger.ListTransactions(f.ctx, &repository.TransactionFilterParams{Kind: &kind})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestLedger_CursorListing(t *testing.T) {
	f := newFixture(t)
	services := f.ledgerCategory(t, enum.LedgerKindIncome, "Services")
	for i := 0; i < 5; i++ {
		_, err := f.ledger.CreateTransaction(f.ctx, &CreateTransactionInput{Kind: enum.LedgerKindIncome, CategoryID: services.ID, Amount: entity.Money(100 * (i + 1)), Access: f.ownerAccess()})
		require.NoError(t, err)
	}

	seen := map[string]bool{}
	cursor := &pagination.CursorParams{Limit: 2}
	for pages := 0; pages < 5; pages++ {
		page, err := f.ledger.ListTransactionsWithCursor(f.ctx, &repository.TransactionFilterParams{}, cursor)
		require.NoError(t, err)
		for _, txn := range page.Items {
			assert.False(t, seen[txn.ID.String()], "entry repeated across pages")
			seen[txn.ID.String()] = true
		}
		if !page.HasNext {
			break
		}
		cursor = &pagination.CursorParams{Cursor: *page.NextCursor, Limit: 2}
	}
	assert.Len(t, seen, 5)

	_, err := f.ledger.ListTransactionsWithCursor(f.ctx, &repository.TransactionFilterParams{}, &pagination.CursorParams{Cursor: "%%%"})
	assertStatus(t, err, http.StatusBadRequest)
}

func TestLedger_SaleGSTSumsToBillGST(t *testing.T) {
	f := newFixture(t)
	tea := f.basicProduct(t, "Tea", 1000, 10)
	bill := f.openBill(t)
	f.addProduct(t, bill.ID, tea.ID, 1)
	payer := f.payer(t, "Asha")
	_, err := f.bills.SetPayer(f.ctx, bill.ID, &payer.ID)
	require.NoError(t, err)

	res, err := f.bills.Checkout(f.ctx, bill.ID, &CheckoutInput{Paid: 333, PaymentMethod: "cash", UserID: f.ownerID})
	require.NoError(t, err)
	require.Equal(t, entity.Money(1080), res.Total)
	require.Equal(t, entity.Money(80), res.GST)

	_, err = f.bills.PayDue(f.ctx, bill.ID, &PayDueInput{Amount: 333, PaymentMethod: "cash", UserID: f.ownerID})
	require.NoError(t, err)
	paid, err := f.bills.PayDue(f.ctx, bill.ID, &PayDueInput{Amount: 414, PaymentMethod: "upi", UserID: f.ownerID})
	require.NoError(t, err)
	assert.Equal(t, enum.BillStatusCompleted, paid.Status)

	sum, err := f.ledger.Summary(f.ctx, f.clock.Add(-time.Hour), f.clock.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), sum.Entries)
	assert.Equal(t, entity.Money(1080), sum.Income)
	assert.Equal(t, entity.Money(80), sum.GSTCollected)

	kind := enum.LedgerKindIncome
	list, err := f.ledger.ListTransactions(f.ctx, &repository.TransactionFilterParams{Kind: &kind})
	require.NoError(t, err)
	var shares []entity.Money
	for _, txn := range list.Items {
		shares = append(shares, txn.GSTAmount)
	}
	assert.ElementsMatch(t, []entity.Money{25, 24, 31}, shares)
}
