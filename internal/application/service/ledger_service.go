package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/ledgerpos-api/internal/domain/checkout"
	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/internal/domain/policy"
	"github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/pkg/apperror"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
)

// LedgerService handles income types, expense categories and ledger entries
type LedgerService struct {
	categoryRepo    repository.LedgerCategoryRepository
	transactionRepo repository.TransactionRepository
	gst             checkout.GstPolicy
	now             func() time.Time
}

// NewLedgerService creates a new ledger service. gst backs the tax out of
// entries recorded as GST-inclusive.
func NewLedgerService(
	categoryRepo repository.LedgerCategoryRepository,
	transactionRepo repository.TransactionRepository,
	gst checkout.GstPolicy,
) *LedgerService {
	return &LedgerService{
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
		gst:             gst,
		now:             time.Now,
	}
}

// ListCategories lists income types and expense categories
func (s *LedgerService) ListCategories(ctx context.Context, kind *enum.LedgerKind, enabledOnly bool) ([]entity.LedgerCategory, error) {
	if _, err := requireSource(ctx); err != nil {
		return nil, err
	}
	return s.categoryRepo.List(ctx, kind, enabledOnly)
}

// CreateCategory adds an income type or expense category
func (s *LedgerService) CreateCategory(ctx context.Context, kind enum.LedgerKind, name string) (*entity.LedgerCategory, error) {
	sourceID, err := requireSource(ctx)
	if err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, apperror.NewBadRequestError("Kind must be income or expense")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewBadRequestError("Category name is required")
	}

	existing, err := s.categoryRepo.GetByName(ctx, kind, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Category with this name already exists")
	}

	category := &entity.LedgerCategory{SourceID: sourceID, Kind: kind, Name: name, Enabled: true}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, domainError(err)
	}
	return category, nil
}

func (s *LedgerService) getCategory(ctx context.Context, id uuid.UUID) (*entity.LedgerCategory, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Ledger category")
	}
	return category, nil
}

// ToggleCategory switches a category on or off. System categories stay enabled.
func (s *LedgerService) ToggleCategory(ctx context.Context, id uuid.UUID, enabled bool) (*entity.LedgerCategory, error) {
	category, err := s.getCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.System && !enabled {
		return nil, apperror.NewConflictError("System categories cannot be disabled")
	}

	category.Enabled = enabled
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes an unused, non-system category
func (s *LedgerService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.getCategory(ctx, id)
	if err != nil {
		return err
	}
	if category.System {
		return apperror.NewConflictError("System categories cannot be deleted")
	}

	used, err := s.transactionRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if used > 0 {
		return apperror.NewConflictError("Category has entries; disable it instead")
	}
	return s.categoryRepo.Delete(ctx, id)
}

// CreateTransactionInput represents a manual ledger entry
type CreateTransactionInput struct {
	Kind            enum.LedgerKind
	CategoryID      uuid.UUID
	Amount          entity.Money
	GSTInclusive    bool
	Description     string
	PaymentMethod   string
	TransactionDate *time.Time
	PayerID         *uuid.UUID
	CreatedBy       uuid.UUID
	Access          policy.Access
}

// CreateTransaction records an income or expense entry. The member needs the
// access flag for the entry's kind and the category must be enabled.
func (s *LedgerService) CreateTransaction(ctx context.Context, input *CreateTransactionInput) (*entity.Transaction, error) {
	sourceID, err := requireSource(ctx)
	if err != nil {
		return nil, err
	}
	if !input.Kind.IsValid() {
		return nil, apperror.NewBadRequestError("Kind must be income or expense")
	}
	if !policy.CanRecord(input.Access, input.Kind) {
		return nil, apperror.NewForbiddenError("You cannot record " + string(input.Kind) + " entries")
	}
	if input.Amount <= 0 {
		return nil, apperror.NewBadRequestError("Amount must be greater than zero")
	}

	category, err := s.getCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category.Kind != input.Kind {
		return nil, apperror.NewBadRequestError("Category does not match the entry kind")
	}
	if !category.Enabled {
		return nil, apperror.NewConflictError("Category is disabled")
	}

	date := s.now()
	if input.TransactionDate != nil {
		date = *input.TransactionDate
	}

	txn := &entity.Transaction{
		SourceID:        sourceID,
		Kind:            input.Kind,
		CategoryID:      category.ID,
		Amount:          input.Amount,
		Description:     strings.TrimSpace(input.Description),
		PaymentMethod:   input.PaymentMethod,
		TransactionDate: date,
		PayerID:         input.PayerID,
		CreatedBy:       input.CreatedBy,
	}
	if input.GSTInclusive {
		b := s.gst.Apply(input.Amount.Decimal())
		txn.GSTAmount = entity.NewMoney(b.GST)
	}

	if err := s.transactionRepo.Create(ctx, txn); err != nil {
		return nil, err
	}
	txn.Category = category
	return txn, nil
}

// RecordSale books money received against a bill under the system Sales income
// type. bill.Paid must already include amount. The GST share is the bill's GST
// pro rata to the amount received.
func (s *LedgerService) RecordSale(ctx context.Context, bill *entity.Bill, amount entity.Money, method string, userID uuid.UUID) (*entity.Transaction, error) {
	if amount <= 0 {
		return nil, nil
	}

	category, err := s.categoryRepo.GetByName(ctx, enum.LedgerKindIncome, entity.SalesCategoryName)
	if err != nil {
		return nil, err
	}
	if category == nil {
		category = &entity.LedgerCategory{
			SourceID: bill.SourceID,
			Kind:     enum.LedgerKindIncome,
			Name:     entity.SalesCategoryName,
			Enabled:  true,
			System:   true,
		}
		if err := s.categoryRepo.Create(ctx, category); err != nil {
			return nil, err
		}
	}

	// Booking the difference of cumulative shares keeps the entries for one
	// bill summing to exactly bill.GST once it is fully paid.
	gst := gstShare(bill, bill.Paid) - gstShare(bill, bill.Paid-amount)

	billID := bill.ID
	txn := &entity.Transaction{
		SourceID:        bill.SourceID,
		Kind:            enum.LedgerKindIncome,
		CategoryID:      category.ID,
		Amount:          amount,
		GSTAmount:       gst,
		Description:     "Payment for " + bill.BillNo,
		PaymentMethod:   method,
		TransactionDate: s.now(),
		BillID:          &billID,
		PayerID:         bill.PayerID,
		CreatedBy:       userID,
	}
	if err := s.transactionRepo.Create(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// GetTransaction retrieves a ledger entry
func (s *LedgerService) GetTransaction(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	txn, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, apperror.NewNotFoundError("Transaction")
	}
	return txn, nil
}

// ListTransactions lists ledger entries page by page
func (s *LedgerService) ListTransactions(ctx context.Context, params *repository.TransactionFilterParams) (*pagination.PaginatedResult[entity.Transaction], error) {
	if _, err := requireSource(ctx); err != nil {
		return nil, err
	}
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	txns, total, err := s.transactionRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(txns, pag), nil
}

// ListTransactionsWithCursor lists ledger entries newest first using a keyset cursor
func (s *LedgerService) ListTransactionsWithCursor(ctx context.Context, params *repository.TransactionFilterParams, cursor *pagination.CursorParams) (*pagination.CursorPage[entity.Transaction], error) {
	if _, err := requireSource(ctx); err != nil {
		return nil, err
	}
	cursor.Validate()
	pos, err := cursor.Decode()
	if err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}

	txns, err := s.transactionRepo.ListAfter(ctx, params, pos, cursor.Limit)
	if err != nil {
		return nil, err
	}
	return pagination.NewCursorPage(txns, cursor.Limit, func(t entity.Transaction) (string, time.Time) {
		return t.ID.String(), t.CreatedAt
	}), nil
}

// DeleteTransaction deletes a manual entry. Entries booked from bills follow the bill.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id uuid.UUID, access policy.Access) error {
	txn, err := s.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanRecord(access, txn.Kind) {
		return apperror.NewForbiddenError("You cannot delete " + string(txn.Kind) + " entries")
	}
	if txn.BillID != nil {
		return apperror.Wrap(http.StatusConflict, errBillEntry)
	}
	return s.transactionRepo.Delete(ctx, id)
}

// Summary totals income, expense and GST collected between from and to inclusive
func (s *LedgerService) Summary(ctx context.Context, from, to time.Time) (*entity.LedgerSummary, error) {
	if _, err := requireSource(ctx); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, apperror.NewBadRequestError("End date is before start date")
	}
	return s.transactionRepo.Summary(ctx, from, to)
}

// gstShare is the part of bill.GST covered once paid has been received, rounded to cents
func gstShare(bill *entity.Bill, paid entity.Money) entity.Money {
	if bill.Total <= 0 || paid <= 0 {
		return 0
	}
	if paid >= bill.Total {
		return bill.GST
	}
	return entity.NewMoney(bill.GST.Decimal().Mul(paid.Decimal()).Div(bill.Total.Decimal()))
}
