package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
)

// LedgerCategoryRepository defines the interface for income type and expense category data operations
type LedgerCategoryRepository interface {
	Create(ctx context.Context, category *entity.LedgerCategory) error
	CreateBatch(ctx context.Context, categories []entity.LedgerCategory) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.LedgerCategory, error)
	GetByName(ctx context.Context, kind enum.LedgerKind, name string) (*entity.LedgerCategory, error)
	List(ctx context.Context, kind *enum.LedgerKind, enabledOnly bool) ([]entity.LedgerCategory, error)
	Update(ctx context.Context, category *entity.LedgerCategory) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransactionRepository defines the interface for ledger entry data operations
type TransactionRepository interface {
	Create(ctx context.Context, txn *entity.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *TransactionFilterParams) ([]entity.Transaction, int64, error)
	// ListAfter pages by (created_at, id) descending, fetching limit+1 rows
	ListAfter(ctx context.Context, params *TransactionFilterParams, cursor *pagination.Cursor, limit int) ([]entity.Transaction, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	Summary(ctx context.Context, from, to time.Time) (*entity.LedgerSummary, error)
}

// TransactionFilterParams contains filtering parameters for ledger queries
type TransactionFilterParams struct {
	Pagination *pagination.PaginationParams
	Kind       *enum.LedgerKind
	CategoryID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}
