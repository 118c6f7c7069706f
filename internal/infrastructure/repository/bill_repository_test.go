package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/internal/infrastructure/database"
)

func setupTestDB(t *testing.T) *gorm.DB {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%d user=testuser password=testpass dbname=testdb sslmode=disable",
		host, port.Int())
	db, err := database.Open(dsn, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	return db
}

func newTestBill(sourceID uuid.UUID, billNo string) *entity.Bill {
	return &entity.Bill{
		SourceID:  sourceID,
		BillNo:    billNo,
		Status:    enum.BillStatusActive,
		GstMode:   enum.GstModeAdditive,
		GstRate:   decimal.NewFromInt(8),
		BillDate:  time.Now().UTC(),
		CreatedBy: uuid.New(),
	}
}

func TestBillRepository_Postgres(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBillRepository(db)
	tx := NewTransactor(db)

	sourceA, sourceB := uuid.New(), uuid.New()
	ctxA := domainRepo.WithSource(context.Background(), sourceA)
	ctxB := domainRepo.WithSource(context.Background(), sourceB)

	t.Run("create and scope by source", func(t *testing.T) {
		bill := newTestBill(sourceA, "B-SCOPE-1")
		require.NoError(t, repo.Create(ctxA, bill))

		got, err := repo.GetByID(ctxA, bill.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "B-SCOPE-1", got.BillNo)

		other, err := repo.GetByID(ctxB, bill.ID)
		require.NoError(t, err)
		assert.Nil(t, other)

		unscoped, err := repo.GetByID(context.Background(), bill.ID)
		require.NoError(t, err)
		assert.Nil(t, unscoped)
	})

	t.Run("save replaces items", func(t *testing.T) {
		bill := newTestBill(sourceA, "B-ITEMS-1")
		require.NoError(t, repo.Create(ctxA, bill))

		bill.Items = []entity.BillItem{
			{Name: "Tea", ItemType: enum.ItemTypeBasic, Price: 1000, Quantity: 2, Total: 2000},
			{Name: "Delivery", ItemType: enum.ItemTypeService, Price: 500, Quantity: 1, Total: 500},
		}
		bill.SubTotal, bill.GST, bill.Total, bill.Due = 2500, 200, 2700, 2700
		require.NoError(t, repo.Save(ctxA, bill))

		bill.Items = bill.Items[:1]
		bill.SubTotal, bill.GST, bill.Total, bill.Due = 2000, 160, 2160, 2160
		require.NoError(t, repo.Save(ctxA, bill))

		got, err := repo.GetByID(ctxA, bill.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "Tea", got.Items[0].Name)
		assert.Equal(t, entity.Money(2160), got.Total)
	})

	t.Run("get for update inside a transaction", func(t *testing.T) {
		bill := newTestBill(sourceA, "B-LOCK-1")
		require.NoError(t, repo.Create(ctxA, bill))

		err := tx.WithinTx(ctxA, func(ctx context.Context) error {
			locked, err := repo.GetForUpdate(ctx, bill.ID)
			if err != nil {
				return err
			}
			locked.Status = enum.BillStatusOnHold
			return repo.Save(ctx, locked)
		})
		require.NoError(t, err)

		got, err := repo.GetByID(ctxA, bill.ID)
		require.NoError(t, err)
		assert.Equal(t, enum.BillStatusOnHold, got.Status)
	})

	t.Run("concurrent locked updates serialize", func(t *testing.T) {
		bill := newTestBill(sourceA, "B-RACE-1")
		require.NoError(t, repo.Create(ctxA, bill))

		const n = 20
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- tx.WithinTx(ctxA, func(ctx context.Context) error {
					locked, err := repo.GetForUpdate(ctx, bill.ID)
					if err != nil {
						return err
					}
					locked.Total += 100
					return repo.Save(ctx, locked)
				})
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := repo.GetByID(ctxA, bill.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.Money(n*100), got.Total)
	})

	t.Run("list filters by status and due", func(t *testing.T) {
		ctxC := domainRepo.WithSource(context.Background(), uuid.New())
		sourceC, _ := domainRepo.SourceIDFromContext(ctxC)

		open := newTestBill(sourceC, "B-LIST-1")
		partial := newTestBill(sourceC, "B-LIST-2")
		partial.Status = enum.BillStatusPartiallyPaid
		partial.Total, partial.Paid, partial.Due = 5000, 2000, 3000
		require.NoError(t, repo.Create(ctxC, open))
		require.NoError(t, repo.Create(ctxC, partial))

		bills, total, err := repo.List(ctxC, &domainRepo.BillFilterParams{
			Statuses: []enum.BillStatus{enum.BillStatusPartiallyPaid},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, bills, 1)
		assert.Equal(t, partial.ID, bills[0].ID)

		_, total, err = repo.List(ctxC, &domainRepo.BillFilterParams{OnlyDue: true})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)

		_, total, err = repo.List(ctxC, &domainRepo.BillFilterParams{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("duplicate bill number", func(t *testing.T) {
		require.NoError(t, repo.Create(ctxA, newTestBill(sourceA, "B-DUP-1")))
		err := repo.Create(ctxA, newTestBill(sourceA, "B-DUP-1"))
		assert.ErrorIs(t, err, domainRepo.ErrDuplicate)
	})
}
