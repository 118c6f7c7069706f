package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/ledgerpos-api/internal/domain/checkout"
	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/internal/domain/policy"
	"github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/internal/infrastructure/repository/memory"
	"github.com/sangkips/ledgerpos-api/pkg/apperror"
)

type fixture struct {
	store    *memory.Store
	ctx      context.Context
	source   *entity.Source
	ownerID  uuid.UUID
	clock    time.Time
	sources  *SourceService
	invites  *InvitationService
	catalog  *CategoryService
	products *ProductService
	ledger   *LedgerService
	payers   *PayerService
	bills    *BillService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	tx := store.Transactor()

	sourceRepo := memory.NewSourceRepository(store)
	ledgerCategoryRepo := memory.NewLedgerCategoryRepository(store)
	categoryRepo := memory.NewCategoryRepository(store)
	productRepo := memory.NewProductRepository(store)
	billRepo := memory.NewBillRepository(store)
	payerRepo := memory.NewPayerRepository(store)

	f := &fixture{
		store:   store,
		ownerID: uuid.New(),
		clock:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return f.clock }

	f.sources = NewSourceService(sourceRepo, ledgerCategoryRepo, tx)
	f.invites = NewInvitationService(memory.NewInvitationRepository(store), sourceRepo, nil, tx, 72*time.Hour)
	f.invites.now = now
	f.catalog = NewCategoryService(categoryRepo, productRepo)
	f.products = NewProductService(productRepo, categoryRepo, tx, checkout.Additive{Rate: checkout.NewPercent(10)})
	f.ledger = NewLedgerService(ledgerCategoryRepo, memory.NewTransactionRepository(store), checkout.InclusiveOfTotal{Rate: checkout.NewPercent(8)})
	f.ledger.now = now
	f.payers = NewPayerService(payerRepo, memory.NewCreditSettingRepository(store), billRepo, tx, checkout.DefaultCreditDays)
	f.payers.now = now
	f.bills = NewBillService(BillServiceDeps{
		BillRepo:    billRepo,
		ProductRepo: productRepo,
		PayerRepo:   payerRepo,
		Tx:          tx,
		Calculator:  checkout.NewCalculator(true),
		GST:         checkout.Additive{Rate: checkout.NewPercent(8)},
		Products:    f.products,
		Ledger:      f.ledger,
		Payers:      f.payers,
	})
	f.bills.now = now

	source, err := f.sources.CreateSource(context.Background(), &CreateSourceInput{
		Name:    "Corner Cafe",
		OwnerID: f.ownerID,
		Email:   "owner@example.com",
	})
	require.NoError(t, err)
	f.source = source
	f.ctx = repository.WithSource(context.Background(), source.ID)
	return f
}

func (f *fixture) basicProduct(t *testing.T, name string, price entity.Money, stock int64) *entity.Product {
	t.Helper()
	p, err := f.products.CreateProduct(f.ctx, &ProductInput{
		Name:  &name,
		Price: &price,
		Stock: &stock,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) ingredient(t *testing.T, name string, stock int64, perUnit int64, unit string) *entity.Product {
	t.Helper()
	content := decimal.NewFromInt(perUnit)
	zero := entity.Money(0)
	p, err := f.products.CreateProduct(f.ctx, &ProductInput{
		Name:           &name,
		Price:          &zero,
		Stock:          &stock,
		ContentPerUnit: &content,
		ContentUnit:    &unit,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) payer(t *testing.T, name string) *entity.Payer {
	t.Helper()
	p, err := f.payers.CreatePayer(f.ctx, &PayerInput{Name: name, Phone: "9800000000"})
	require.NoError(t, err)
	return p
}

func (f *fixture) stockOf(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	p, err := f.products.GetProduct(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p.Stock)
	return *p.Stock
}

func (f *fixture) ownerAccess() policy.Access {
	return policy.FullAccess(enum.SourceRoleController)
}

func assertStatus(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	require.NotNil(t, appErr, "expected an AppError, got %v", err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
}

func sourceless() context.Context { return context.Background() }
