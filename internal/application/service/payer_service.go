package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/ledgerpos-api/internal/domain/checkout"
	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/pkg/apperror"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
)

// PayerService handles payers, their credit settings and receivables
type PayerService struct {
	payerRepo         repository.PayerRepository
	creditRepo        repository.CreditSettingRepository
	billRepo          repository.BillRepository
	tx                repository.Transactor
	defaultCreditDays int
	now               func() time.Time
}

// NewPayerService creates a new payer service. defaultCreditDays applies to
// payers without a credit setting.
func NewPayerService(
	payerRepo repository.PayerRepository,
	creditRepo repository.CreditSettingRepository,
	billRepo repository.BillRepository,
	tx repository.Transactor,
	defaultCreditDays int,
) *PayerService {
	if defaultCreditDays < 1 {
		defaultCreditDays = checkout.DefaultCreditDays
	}
	return &PayerService{
		payerRepo:         payerRepo,
		creditRepo:        creditRepo,
		billRepo:          billRepo,
		tx:                tx,
		defaultCreditDays: defaultCreditDays,
		now:               time.Now,
	}
}

// PayerInput represents the create and update payer input
type PayerInput struct {
	Name  string
	Phone string
	Email string
	Notes string
}

// CreatePayer creates a new payer
func (s *PayerService) CreatePayer(ctx context.Context, input *PayerInput) (*entity.Payer, error) {
	sourceID, err := requireSource(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewBadRequestError("Payer name is required")
	}

	payer := &entity.Payer{
		SourceID: sourceID,
		Name:     name,
		Phone:    strings.TrimSpace(input.Phone),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Notes:    input.Notes,
	}
	if err := s.payerRepo.Create(ctx, payer); err != nil {
		return nil, err
	}
	return payer, nil
}

// GetPayer retrieves a payer by ID
func (s *PayerService) GetPayer(ctx context.Context, id uuid.UUID) (*entity.Payer, error) {
	payer, err := s.payerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payer == nil {
		return nil, apperror.NewNotFoundError("Payer")
	}
	return payer, nil
}

// ListPayers lists payers matching search on name or phone
func (s *PayerService) ListPayers(ctx context.Context, search string, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Payer], error) {
	if _, err := requireSource(ctx); err != nil {
		return nil, err
	}
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	payers, total, err := s.payerRepo.List(ctx, search, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(payers, pag), nil
}

// UpdatePayer updates a payer. Empty fields are left unchanged.
func (s *PayerService) UpdatePayer(ctx context.Context, id uuid.UUID, input *PayerInput) (*entity.Payer, error) {
	payer, err := s.GetPayer(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		payer.Name = name
	}
	if input.Phone != "" {
		payer.Phone = strings.TrimSpace(input.Phone)
	}
	if input.Email != "" {
		payer.Email = strings.ToLower(strings.TrimSpace(input.Email))
	}
	if input.Notes != "" {
		payer.Notes = input.Notes
	}

	if err := s.payerRepo.Update(ctx, payer); err != nil {
		return nil, err
	}
	return payer, nil
}

// DeletePayer deletes a payer without outstanding dues, along with their credit setting
func (s *PayerService) DeletePayer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetPayer(ctx, id); err != nil {
		return err
	}

	_, owing, err := s.billRepo.List(ctx, &repository.BillFilterParams{PayerID: &id, OnlyDue: true})
	if err != nil {
		return err
	}
	if owing > 0 {
		return apperror.NewConflictError("Payer still has outstanding bills")
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.creditRepo.Delete(ctx, id); err != nil {
			return err
		}
		return s.payerRepo.Delete(ctx, id)
	})
}

// CreditView is a payer's effective credit period
type CreditView struct {
	PayerID    uuid.UUID `json:"payer_id"`
	CreditDays int       `json:"credit_days"`
	IsDefault  bool      `json:"is_default"`
}

// GetCredit returns the payer's credit days, or the default when none is set
func (s *PayerService) GetCredit(ctx context.Context, payerID uuid.UUID) (*CreditView, error) {
	if _, err := s.GetPayer(ctx, payerID); err != nil {
		return nil, err
	}

	setting, err := s.creditRepo.Get(ctx, payerID)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return &CreditView{PayerID: payerID, CreditDays: s.defaultCreditDays, IsDefault: true}, nil
	}
	return &CreditView{PayerID: payerID, CreditDays: setting.CreditDays}, nil
}

// SetCredit creates or replaces the payer's credit days
func (s *PayerService) SetCredit(ctx context.Context, payerID uuid.UUID, days int) (*CreditView, error) {
	sourceID, err := requireSource(ctx)
	if err != nil {
		return nil, err
	}
	if days < 1 {
		return nil, apperror.NewBadRequestError("Credit days must be at least 1")
	}
	if _, err := s.GetPayer(ctx, payerID); err != nil {
		return nil, err
	}

	setting := &entity.CreditSetting{SourceID: sourceID, PayerID: payerID, CreditDays: days}
	if err := s.creditRepo.Upsert(ctx, setting); err != nil {
		return nil, err
	}
	return &CreditView{PayerID: payerID, CreditDays: setting.CreditDays}, nil
}

// DeleteCredit removes the setting so the payer falls back to the default
func (s *PayerService) DeleteCredit(ctx context.Context, payerID uuid.UUID) error {
	if _, err := s.GetPayer(ctx, payerID); err != nil {
		return err
	}
	return s.creditRepo.Delete(ctx, payerID)
}

// PaymentStatus resolves a bill's paid, pending or overdue state
func (s *PayerService) PaymentStatus(ctx context.Context, bill *entity.Bill) (enum.PaymentStatus, *time.Time, error) {
	if bill.Due <= 0 {
		return enum.PaymentStatusPaid, nil, nil
	}
	if bill.PayerID == nil {
		return enum.PaymentStatusPending, nil, nil
	}

	setting, err := s.creditRepo.Get(ctx, *bill.PayerID)
	if err != nil {
		return "", nil, err
	}
	days := s.creditDays(setting)
	due := checkout.DueDate(bill.BillDate, days)
	return checkout.ResolveForPayer(bill.BillDate, true, &days, s.now()), &due, nil
}

func (s *PayerService) creditDays(setting *entity.CreditSetting) int {
	if setting == nil {
		return s.defaultCreditDays
	}
	return checkout.EffectiveCreditDays(&setting.CreditDays)
}

// Receivable is an unpaid bill with its resolved status
type Receivable struct {
	BillID     uuid.UUID          `json:"bill_id"`
	BillNo     string             `json:"bill_no"`
	PayerID    *uuid.UUID         `json:"payer_id,omitempty"`
	PayerName  string             `json:"payer_name,omitempty"`
	BillDate   time.Time          `json:"bill_date"`
	DueDate    *time.Time         `json:"due_date,omitempty"`
	CreditDays int                `json:"credit_days"`
	Total      entity.Money       `json:"total"`
	Paid       entity.Money       `json:"paid"`
	Due        entity.Money       `json:"due"`
	Status     enum.PaymentStatus `json:"status"`
}

// Receivables lists bills with an outstanding balance and whether each is pending or overdue
func (s *PayerService) Receivables(ctx context.Context, payerID *uuid.UUID, params *pagination.PaginationParams) (*pagination.PaginatedResult[Receivable], error) {
	if _, err := requireSource(ctx); err != nil {
		return nil, err
	}
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	bills, total, err := s.billRepo.List(ctx, &repository.BillFilterParams{
		Pagination: params,
		PayerID:    payerID,
		OnlyDue:    true,
		Statuses:   []enum.BillStatus{enum.BillStatusPartiallyPaid, enum.BillStatusCompleted},
	})
	if err != nil {
		return nil, err
	}

	payerIDs := make([]uuid.UUID, 0, len(bills))
	for _, b := range bills {
		if b.PayerID != nil {
			payerIDs = append(payerIDs, *b.PayerID)
		}
	}
	settings, err := s.creditRepo.ListForPayers(ctx, payerIDs)
	if err != nil {
		return nil, err
	}
	byPayer := make(map[uuid.UUID]*entity.CreditSetting, len(settings))
	for i := range settings {
		byPayer[settings[i].PayerID] = &settings[i]
	}

	now := s.now()
	out := make([]Receivable, 0, len(bills))
	for _, b := range bills {
		r := Receivable{
			BillID:   b.ID,
			BillNo:   b.BillNo,
			PayerID:  b.PayerID,
			BillDate: b.BillDate,
			Total:    b.Total,
			Paid:     b.Paid,
			Due:      b.Due,
			Status:   enum.PaymentStatusPending,
		}
		if b.Payer != nil {
			r.PayerName = b.Payer.Name
		}
		if b.PayerID != nil {
			days := s.creditDays(byPayer[*b.PayerID])
			due := checkout.DueDate(b.BillDate, days)
			r.CreditDays = days
			r.DueDate = &due
			r.Status = checkout.ResolveForPayer(b.BillDate, true, &days, now)
		}
		out = append(out, r)
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(out, pag), nil
}
