package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
)

func int64p(v int64) *int64 { return &v }

func newScoped(t *testing.T) (*Store, context.Context, uuid.UUID) {
	t.Helper()
	sourceID := uuid.New()
	return NewStore(), domainRepo.WithSource(context.Background(), sourceID), sourceID
}

func TestSourceScoping(t *testing.T) {
	store, ctx, sourceID := newScoped(t)
	products := NewProductRepository(store)

	p := &entity.Product{SourceID: sourceID, Name: "Tea", Type: enum.ItemTypeBasic, Price: 1000, IsActive: true}
	require.NoError(t, products.Create(ctx, p))

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Tea", got.Name)

	other := domainRepo.WithSource(context.Background(), uuid.New())
	got, err = products.GetByID(other, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "unscoped context must not see rows")
}

func TestAdjustStock(t *testing.T) {
	store, ctx, sourceID := newScoped(t)
	products := NewProductRepository(store)

	a := &entity.Product{SourceID: sourceID, Name: "Milk", Type: enum.ItemTypeBasic, Stock: int64p(5)}
	b := &entity.Product{SourceID: sourceID, Name: "Sugar", Type: enum.ItemTypeBasic, Stock: int64p(1)}
	require.NoError(t, products.Create(ctx, a))
	require.NoError(t, products.Create(ctx, b))

	t.Run("applies every delta", func(t *testing.T) {
		err := products.AdjustStock(ctx, []domainRepo.StockAdjustment{{ProductID: a.ID, Delta: -2}, {ProductID: b.ID, Delta: 3}})
		require.NoError(t, err)

		got, _ := products.GetByID(ctx, a.ID)
		assert.Equal(t, int64(3), *got.Stock)
		got, _ = products.GetByID(ctx, b.ID)
		assert.Equal(t, int64(4), *got.Stock)
	})

	t.Run("all or nothing", func(t *testing.T) {
		err := products.AdjustStock(ctx, []domainRepo.StockAdjustment{{ProductID: a.ID, Delta: -1}, {ProductID: b.ID, Delta: -10}})
		require.ErrorIs(t, err, domainRepo.ErrInsufficientStock)

		got, _ := products.GetByID(ctx, a.ID)
		assert.Equal(t, int64(3), *got.Stock)
	})

	t.Run("repeated product accumulates", func(t *testing.T) {
		err := products.AdjustStock(ctx, []domainRepo.StockAdjustment{{ProductID: a.ID, Delta: -2}, {ProductID: a.ID, Delta: -2}})
		require.ErrorIs(t, err, domainRepo.ErrInsufficientStock)
	})

	t.Run("caller pointer is detached", func(t *testing.T) {
		*a.Stock = 100
		got, _ := products.GetByID(ctx, a.ID)
		assert.Equal(t, int64(3), *got.Stock)
	})
}

func TestTransactorRollsBack(t *testing.T) {
	store, ctx, sourceID := newScoped(t)
	payers := NewPayerRepository(store)
	tx := store.Transactor()

	boom := errors.New("boom")
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, payers.Create(ctx, &entity.Payer{SourceID: sourceID, Name: "Asha"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	list, total, err := payers.List(ctx, "", nil)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	err = tx.WithinTx(ctx, func(ctx context.Context) error {
		return tx.WithinTx(ctx, func(ctx context.Context) error {
			return payers.Create(ctx, &entity.Payer{SourceID: sourceID, Name: "Ravi"})
		})
	})
	require.NoError(t, err)
	_, total, _ = payers.List(ctx, "", nil)
	assert.Equal(t, int64(1), total)
}

func TestBillSaveDetachesItems(t *testing.T) {
	store, ctx, sourceID := newScoped(t)
	bills := NewBillRepository(store)

	bill := &entity.Bill{SourceID: sourceID, BillNo: "BILL-1", Status: enum.BillStatusActive, BillDate: time.Now()}
	bill.Items = []entity.BillItem{{Name: "Tea", Price: 1000, Quantity: 1}}
	require.NoError(t, bills.Create(ctx, bill))
	assert.NotEqual(t, uuid.Nil, bill.Items[0].ID)

	bill.Items[0].Quantity = 9
	got, err := bills.GetByID(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Items[0].Quantity)

	err = bills.Create(ctx, &entity.Bill{SourceID: sourceID, BillNo: "BILL-1"})
	assert.ErrorIs(t, err, domainRepo.ErrDuplicate)
}

func TestCreditUpsertKeepsID(t *testing.T) {
	store, ctx, sourceID := newScoped(t)
	credits := NewCreditSettingRepository(store)
	payerID := uuid.New()

	first := &entity.CreditSetting{SourceID: sourceID, PayerID: payerID, CreditDays: 7}
	require.NoError(t, credits.Upsert(ctx, first))
	second := &entity.CreditSetting{SourceID: sourceID, PayerID: payerID, CreditDays: 30}
	require.NoError(t, credits.Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	got, err := credits.Get(ctx, payerID)
	require.NoError(t, err)
	assert.Equal(t, 30, got.CreditDays)

	require.NoError(t, credits.Delete(ctx, payerID))
	got, err = credits.Get(ctx, payerID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTransactionsListAfter(t *testing.T) {
	store, ctx, sourceID := newScoped(t)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	txns := NewTransactionRepository(store)

	for i := 0; i < 5; i++ {
		require.NoError(t, txns.Create(ctx, &entity.Transaction{
			SourceID: sourceID, Kind: enum.LedgerKindIncome, Amount: entity.Money(100 * (i + 1)), TransactionDate: base,
		}))
	}

	params := &domainRepo.TransactionFilterParams{}
	first, err := txns.ListAfter(ctx, params, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, entity.Money(500), first[0].Amount)

	page := pagination.NewCursorPage(first, 2, func(txn entity.Transaction) (string, time.Time) { return txn.ID.String(), txn.CreatedAt })
	require.True(t, page.HasNext)

	cursor := &pagination.Cursor{ID: page.Items[1].ID.String(), CreatedAt: page.Items[1].CreatedAt}
	second, err := txns.ListAfter(ctx, params, cursor, 2)
	require.NoError(t, err)
	require.Len(t, second, 3)
	assert.Equal(t, entity.Money(300), second[0].Amount)
}

func TestTransactionSummary(t *testing.T) {
	store, ctx, sourceID := newScoped(t)
	txns := NewTransactionRepository(store)
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, txns.Create(ctx, &entity.Transaction{SourceID: sourceID, Kind: enum.LedgerKindIncome, Amount: 10800, GSTAmount: 800, TransactionDate: day}))
	require.NoError(t, txns.Create(ctx, &entity.Transaction{SourceID: sourceID, Kind: enum.LedgerKindExpense, Amount: 2500, TransactionDate: day}))
	require.NoError(t, txns.Create(ctx, &entity.Transaction{SourceID: sourceID, Kind: enum.LedgerKindExpense, Amount: 9999, TransactionDate: day.AddDate(0, 1, 0)}))

	summary, err := txns.Summary(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, entity.Money(10800), summary.Income)
	assert.Equal(t, entity.Money(2500), summary.Expense)
	assert.Equal(t, entity.Money(8300), summary.Net)
	assert.Equal(t, entity.Money(800), summary.GSTCollected)
	assert.Equal(t, int64(2), summary.Entries)
}

func TestIdempotencyReserve(t *testing.T) {
	repo := NewIdempotencyRepository(NewStore())
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first := &entity.IdempotencyKey{Key: "k1", UserID: userID, Endpoint: "POST /pay", RequestHash: "a", ExpiresAt: now.Add(time.Minute)}
	require.NoError(t, repo.Reserve(ctx, first, now))

	dup := &entity.IdempotencyKey{Key: "k1", UserID: userID, Endpoint: "POST /pay", RequestHash: "a", ExpiresAt: now.Add(time.Minute)}
	assert.ErrorIs(t, repo.Reserve(ctx, dup, now), domainRepo.ErrDuplicate)

	first.ResponseCode = 201
	first.ResponseBody = `{"ok":true}`
	first.ExpiresAt = now.Add(24 * time.Hour)
	require.NoError(t, repo.Complete(ctx, first))

	got, err := repo.GetByKey(ctx, "k1", userID)
	require.NoError(t, err)
	assert.False(t, got.IsPending())
	assert.Equal(t, `{"ok":true}`, got.ResponseBody)

	t.Run("expired key is replaced", func(t *testing.T) {
		later := now.Add(25 * time.Hour)
		next := &entity.IdempotencyKey{Key: "k1", UserID: userID, Endpoint: "POST /pay", RequestHash: "b", ExpiresAt: later.Add(time.Minute)}
		require.NoError(t, repo.Reserve(ctx, next, later))

		got, err := repo.GetByKey(ctx, "k1", userID)
		require.NoError(t, err)
		assert.True(t, got.IsPending())
		assert.Equal(t, "b", got.RequestHash)
	})

	t.Run("release frees the key", func(t *testing.T) {
		require.NoError(t, repo.Release(ctx, "k1", userID))
		got, err := repo.GetByKey(ctx, "k1", userID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
