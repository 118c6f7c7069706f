package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
)

// BillRepository defines the interface for bill data operations
type BillRepository interface {
	Create(ctx context.Context, bill *entity.Bill) error
	// GetByID preloads items and payer
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error)
	// GetForUpdate is GetByID holding a write lock until the surrounding transaction ends
	GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Bill, error)
	// Save writes the bill row and replaces its items
	Save(ctx context.Context, bill *entity.Bill) error
	List(ctx context.Context, params *BillFilterParams) ([]entity.Bill, int64, error)
}

// BillFilterParams contains filtering parameters for bill queries
type BillFilterParams struct {
	Pagination *pagination.PaginationParams
	Statuses   []enum.BillStatus
	PayerID    *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	OnlyDue    bool
}

// PayerRepository defines the interface for payer data operations
type PayerRepository interface {
	Create(ctx context.Context, payer *entity.Payer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Payer, error)
	List(ctx context.Context, search string, params *pagination.PaginationParams) ([]entity.Payer, int64, error)
	Update(ctx context.Context, payer *entity.Payer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreditSettingRepository defines the interface for credit setting data operations
type CreditSettingRepository interface {
	// Get returns nil, nil when the payer has no setting
	Get(ctx context.Context, payerID uuid.UUID) (*entity.CreditSetting, error)
	ListForPayers(ctx context.Context, payerIDs []uuid.UUID) ([]entity.CreditSetting, error)
	Upsert(ctx context.Context, setting *entity.CreditSetting) error
	Delete(ctx context.Context, payerID uuid.UUID) error
}
