package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
)

type billRepository struct{ s *Store }

// NewBillRepository creates an in-memory bill repository
func NewBillRepository(s *Store) domainRepo.BillRepository {
	return &billRepository{s: s}
}

// stripBill detaches the item slice so later edits by the caller never reach the store
func stripBill(b entity.Bill) entity.Bill {
	b.Payer = nil
	items := make([]entity.BillItem, len(b.Items))
	copy(items, b.Items)
	b.Items = items
	return b
}

func (r *billRepository) hydrate(b entity.Bill) *entity.Bill {
	out := stripBill(b)
	if out.PayerID != nil {
		if payer, ok := r.s.payers[*out.PayerID]; ok {
			out.Payer = &payer
		}
	}
	return &out
}

func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	for _, existing := range r.s.bills {
		if existing.BillNo == bill.BillNo {
			return domainRepo.ErrDuplicate
		}
	}
	ensureID(&bill.ID)
	r.s.stamp(&bill.CreatedAt, &bill.UpdatedAt)
	r.prepareItems(bill)
	r.s.bills[bill.ID] = stripBill(*bill)
	return nil
}

func (r *billRepository) prepareItems(bill *entity.Bill) {
	for i := range bill.Items {
		ensureID(&bill.Items[i].ID)
		bill.Items[i].BillID = bill.ID
		r.s.stamp(&bill.Items[i].CreatedAt, nil)
	}
}

func (r *billRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	bill, ok := r.s.bills[id]
	if !ok || !scoped(ctx, bill.SourceID) {
		return nil, nil
	}
	return r.hydrate(bill), nil
}

// GetForUpdate relies on the transaction already holding the store's write lock
func (r *billRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	return r.GetByID(ctx, id)
}

func (r *billRepository) Save(ctx context.Context, bill *entity.Bill) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	r.s.stamp(nil, &bill.UpdatedAt)
	r.prepareItems(bill)
	r.s.bills[bill.ID] = stripBill(*bill)
	return nil
}

func (r *billRepository) List(ctx context.Context, params *domainRepo.BillFilterParams) ([]entity.Bill, int64, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	var matched []entity.Bill
	for _, b := range r.s.bills {
		if !scoped(ctx, b.SourceID) {
			continue
		}
		if len(params.Statuses) > 0 && !containsStatus(params, b) {
			continue
		}
		if params.PayerID != nil && (b.PayerID == nil || *b.PayerID != *params.PayerID) {
			continue
		}
		if params.StartDate != nil && b.BillDate.Before(*params.StartDate) {
			continue
		}
		if params.EndDate != nil && b.BillDate.After(*params.EndDate) {
			continue
		}
		if params.OnlyDue && b.Due <= 0 {
			continue
		}
		matched = append(matched, *r.hydrate(b))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].BillDate.After(matched[j].BillDate) })

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	return paginate(matched, params.Pagination.Offset(), params.Pagination.PerPage), int64(len(matched)), nil
}

func containsStatus(params *domainRepo.BillFilterParams, b entity.Bill) bool {
	for _, st := range params.Statuses {
		if st == b.Status {
			return true
		}
	}
	return false
}

type payerRepository struct{ s *Store }

// NewPayerRepository creates an in-memory payer repository
func NewPayerRepository(s *Store) domainRepo.PayerRepository {
	return &payerRepository{s: s}
}

func (r *payerRepository) Create(ctx context.Context, payer *entity.Payer) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	ensureID(&payer.ID)
	r.s.stamp(&payer.CreatedAt, &payer.UpdatedAt)
	r.s.payers[payer.ID] = *payer
	return nil
}

func (r *payerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Payer, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	payer, ok := r.s.payers[id]
	if !ok || !scoped(ctx, payer.SourceID) {
		return nil, nil
	}
	return &payer, nil
}

func (r *payerRepository) List(ctx context.Context, search string, params *pagination.PaginationParams) ([]entity.Payer, int64, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	search = strings.ToLower(search)
	var matched []entity.Payer
	for _, p := range r.s.payers {
		if !scoped(ctx, p.SourceID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(p.Phone, search) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()
	return paginate(matched, params.Offset(), params.PerPage), int64(len(matched)), nil
}

func (r *payerRepository) Update(ctx context.Context, payer *entity.Payer) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	r.s.stamp(nil, &payer.UpdatedAt)
	r.s.payers[payer.ID] = *payer
	return nil
}

func (r *payerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	if p, ok := r.s.payers[id]; ok && scoped(ctx, p.SourceID) {
		delete(r.s.payers, id)
	}
	return nil
}

type creditSettingRepository struct{ s *Store }

// NewCreditSettingRepository creates an in-memory credit setting repository
func NewCreditSettingRepository(s *Store) domainRepo.CreditSettingRepository {
	return &creditSettingRepository{s: s}
}

func (r *creditSettingRepository) Get(ctx context.Context, payerID uuid.UUID) (*entity.CreditSetting, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	sourceID, ok := domainRepo.SourceIDFromContext(ctx)
	if !ok {
		return nil, nil
	}
	setting, ok := r.s.credits[creditKey{sourceID, payerID}]
	if !ok {
		return nil, nil
	}
	return &setting, nil
}

func (r *creditSettingRepository) ListForPayers(ctx context.Context, payerIDs []uuid.UUID) ([]entity.CreditSetting, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	sourceID, ok := domainRepo.SourceIDFromContext(ctx)
	if !ok {
		return nil, nil
	}
	var out []entity.CreditSetting
	for _, id := range payerIDs {
		if setting, ok := r.s.credits[creditKey{sourceID, id}]; ok {
			out = append(out, setting)
		}
	}
	return out, nil
}

func (r *creditSettingRepository) Upsert(ctx context.Context, setting *entity.CreditSetting) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	key := creditKey{setting.SourceID, setting.PayerID}
	if existing, ok := r.s.credits[key]; ok {
		setting.ID = existing.ID
		setting.CreatedAt = existing.CreatedAt
	}
	ensureID(&setting.ID)
	r.s.stamp(&setting.CreatedAt, &setting.UpdatedAt)
	r.s.credits[key] = *setting
	return nil
}

func (r *creditSettingRepository) Delete(ctx context.Context, payerID uuid.UUID) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	if sourceID, ok := domainRepo.SourceIDFromContext(ctx); ok {
		delete(r.s.credits, creditKey{sourceID, payerID})
	}
	return nil
}
