package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
)

type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) domainRepo.BillRepository {
	return &billRepository{db: db}
}

func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	return translate(conn(ctx, r.db).Omit("Payer").Create(bill).Error)
}

func (r *billRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := conn(ctx, r.db).
		Scopes(SourceScope(ctx)).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Payer").
		First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

// GetForUpdate locks the bill row (SELECT ... FOR UPDATE); the lock is held
// until the transaction carried in ctx ends.
func (r *billRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	db := conn(ctx, r.db)

	var bill entity.Bill
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(SourceScope(ctx)).
		First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := db.Where("bill_id = ?", id).Order("created_at ASC").Find(&bill.Items).Error; err != nil {
		return nil, err
	}
	if bill.PayerID != nil {
		var payer entity.Payer
		if err := db.First(&payer, "id = ?", *bill.PayerID).Error; err == nil {
			bill.Payer = &payer
		}
	}
	return &bill, nil
}

func (r *billRepository) Save(ctx context.Context, bill *entity.Bill) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(bill).Error; err != nil {
			return err
		}
		if err := tx.Where("bill_id = ?", bill.ID).Delete(&entity.BillItem{}).Error; err != nil {
			return err
		}
		if len(bill.Items) == 0 {
			return nil
		}
		for i := range bill.Items {
			bill.Items[i].BillID = bill.ID
		}
		return tx.Create(&bill.Items).Error
	})
}

func (r *billRepository) List(ctx context.Context, params *domainRepo.BillFilterParams) ([]entity.Bill, int64, error) {
	var bills []entity.Bill
	var total int64

	query := conn(ctx, r.db).Model(&entity.Bill{}).Scopes(SourceScope(ctx))
	if len(params.Statuses) > 0 {
		query = query.Where("status IN ?", params.Statuses)
	}
	if params.PayerID != nil {
		query = query.Where("payer_id = ?", *params.PayerID)
	}
	if params.StartDate != nil {
		query = query.Where("bill_date >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("bill_date <= ?", *params.EndDate)
	}
	if params.OnlyDue {
		query = query.Where("due > 0")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Items").
		Preload("Payer").
		Order("bill_date DESC").
		Find(&bills).Error

	return bills, total, err
}

type payerRepository struct {
	db *gorm.DB
}

// NewPayerRepository creates a new payer repository
func NewPayerRepository(db *gorm.DB) domainRepo.PayerRepository {
	return &payerRepository{db: db}
}

func (r *payerRepository) Create(ctx context.Context, payer *entity.Payer) error {
	return conn(ctx, r.db).Create(payer).Error
}

func (r *payerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Payer, error) {
	var payer entity.Payer
	err := conn(ctx, r.db).Scopes(SourceScope(ctx)).First(&payer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &payer, err
}

func (r *payerRepository) List(ctx context.Context, search string, params *pagination.PaginationParams) ([]entity.Payer, int64, error) {
	var payers []entity.Payer
	var total int64

	query := conn(ctx, r.db).Model(&entity.Payer{}).Scopes(SourceScope(ctx))
	if search != "" {
		query = query.Where("name ILIKE ? OR phone ILIKE ? OR email ILIKE ?", "%"+search+"%", "%"+search+"%", "%"+search+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).Order("name ASC").Find(&payers).Error
	return payers, total, err
}

func (r *payerRepository) Update(ctx context.Context, payer *entity.Payer) error {
	return conn(ctx, r.db).Save(payer).Error
}

func (r *payerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(SourceScope(ctx)).Delete(&entity.Payer{}, "id = ?", id).Error
}

type creditSettingRepository struct {
	db *gorm.DB
}

// NewCreditSettingRepository creates a new credit setting repository
func NewCreditSettingRepository(db *gorm.DB) domainRepo.CreditSettingRepository {
	return &creditSettingRepository{db: db}
}

func (r *creditSettingRepository) Get(ctx context.Context, payerID uuid.UUID) (*entity.CreditSetting, error) {
	var setting entity.CreditSetting
	err := conn(ctx, r.db).Scopes(SourceScope(ctx)).First(&setting, "payer_id = ?", payerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &setting, err
}

func (r *creditSettingRepository) ListForPayers(ctx context.Context, payerIDs []uuid.UUID) ([]entity.CreditSetting, error) {
	var settings []entity.CreditSetting
	if len(payerIDs) == 0 {
		return settings, nil
	}
	err := conn(ctx, r.db).Scopes(SourceScope(ctx)).Where("payer_id IN ?", payerIDs).Find(&settings).Error
	return settings, err
}

func (r *creditSettingRepository) Upsert(ctx context.Context, setting *entity.CreditSetting) error {
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_id"}, {Name: "payer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"credit_days", "updated_at"}),
	}).Create(setting).Error
}

func (r *creditSettingRepository) Delete(ctx context.Context, payerID uuid.UUID) error {
	return conn(ctx, r.db).Scopes(SourceScope(ctx)).Where("payer_id = ?", payerID).Delete(&entity.CreditSetting{}).Error
}
