package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
)

type ledgerCategoryRepository struct {
	db *gorm.DB
}

// NewLedgerCategoryRepository creates a new income type / expense category repository
func NewLedgerCategoryRepository(db *gorm.DB) domainRepo.LedgerCategoryRepository {
	return &ledgerCategoryRepository{db: db}
}

func (r *ledgerCategoryRepository) Create(ctx context.Context, category *entity.LedgerCategory) error {
	return conn(ctx, r.db).Create(category).Error
}

func (r *ledgerCategoryRepository) CreateBatch(ctx context.Context, categories []entity.LedgerCategory) error {
	if len(categories) == 0 {
		return nil
	}
	return conn(ctx, r.db).Create(&categories).Error
}

func (r *ledgerCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.LedgerCategory, error) {
	var category entity.LedgerCategory
	err := conn(ctx, r.db).Scopes(SourceScope(ctx)).First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &category, err
}

func (r *ledgerCategoryRepository) GetByName(ctx context.Context, kind enum.LedgerKind, name string) (*entity.LedgerCategory, error) {
	var category entity.LedgerCategory
	err := conn(ctx, r.db).Scopes(SourceScope(ctx)).
		Where("kind = ? AND LOWER(name) = ?", kind, strings.ToLower(name)).
		First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &category, err
}

func (r *ledgerCategoryRepository) List(ctx context.Context, kind *enum.LedgerKind, enabledOnly bool) ([]entity.LedgerCategory, error) {
	var categories []entity.LedgerCategory
	query := conn(ctx, r.db).Scopes(SourceScope(ctx))
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}
	if enabledOnly {
		query = query.Where("enabled = ?", true)
	}
	err := query.Order("kind ASC, name ASC").Find(&categories).Error
	return categories, err
}

func (r *ledgerCategoryRepository) Update(ctx context.Context, category *entity.LedgerCategory) error {
	return conn(ctx, r.db).Save(category).Error
}

func (r *ledgerCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(SourceScope(ctx)).Delete(&entity.LedgerCategory{}, "id = ?", id).Error
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new ledger entry repository
func NewTransactionRepository(db *gorm.DB) domainRepo.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, txn *entity.Transaction) error {
	return conn(ctx, r.db).Omit("Category").Create(txn).Error
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	var txn entity.Transaction
	err := conn(ctx, r.db).Scopes(SourceScope(ctx)).Preload("Category").First(&txn, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &txn, err
}

func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(SourceScope(ctx)).Delete(&entity.Transaction{}, "id = ?", id).Error
}

func (r *transactionRepository) filtered(ctx context.Context, params *domainRepo.TransactionFilterParams) *gorm.DB {
	query := conn(ctx, r.db).Model(&entity.Transaction{}).Scopes(SourceScope(ctx))
	if params.Kind != nil {
		query = query.Where("kind = ?", *params.Kind)
	}
	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}
	if params.StartDate != nil {
		query = query.Where("transaction_date >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("transaction_date <= ?", *params.EndDate)
	}
	return query
}

func (r *transactionRepository) List(ctx context.Context, params *domainRepo.TransactionFilterParams) ([]entity.Transaction, int64, error) {
	var txns []entity.Transaction
	var total int64

	query := r.filtered(ctx, params)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Category").
		Order("transaction_date DESC, created_at DESC").
		Find(&txns).Error

	return txns, total, err
}

func (r *transactionRepository) ListAfter(ctx context.Context, params *domainRepo.TransactionFilterParams, cursor *pagination.Cursor, limit int) ([]entity.Transaction, error) {
	var txns []entity.Transaction

	query := r.filtered(ctx, params)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?::uuid)", cursor.CreatedAt, cursor.ID)
	}
	err := query.Preload("Category").
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&txns).Error
	return txns, err
}

func (r *transactionRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Transaction{}).Scopes(SourceScope(ctx)).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

func (r *transactionRepository) Summary(ctx context.Context, from, to time.Time) (*entity.LedgerSummary, error) {
	var row struct {
		Income  int64
		Expense int64
		GST     int64
		Entries int64
	}

	err := conn(ctx, r.db).Model(&entity.Transaction{}).Scopes(SourceScope(ctx)).
		Select(`COALESCE(SUM(CASE WHEN kind = ? THEN amount ELSE 0 END), 0) AS income,
			COALESCE(SUM(CASE WHEN kind = ? THEN amount ELSE 0 END), 0) AS expense,
			COALESCE(SUM(CASE WHEN kind = ? THEN gst_amount ELSE 0 END), 0) AS gst,
			COUNT(*) AS entries`, enum.LedgerKindIncome, enum.LedgerKindExpense, enum.LedgerKindIncome).
		Where("transaction_date >= ? AND transaction_date <= ?", from, to).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &entity.LedgerSummary{
		From:         from,
		To:           to,
		Income:       entity.Money(row.Income),
		Expense:      entity.Money(row.Expense),
		Net:          entity.Money(row.Income - row.Expense),
		GSTCollected: entity.Money(row.GST),
		Entries:      row.Entries,
	}, nil
}
