package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
)

type ledgerCategoryRepository struct{ s *Store }

// NewLedgerCategoryRepository creates an in-memory income type / expense category repository
func NewLedgerCategoryRepository(s *Store) domainRepo.LedgerCategoryRepository {
	return &ledgerCategoryRepository{s: s}
}

func (r *ledgerCategoryRepository) Create(ctx context.Context, category *entity.LedgerCategory) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	r.put(category)
	return nil
}

func (r *ledgerCategoryRepository) put(category *entity.LedgerCategory) {
	ensureID(&category.ID)
	r.s.stamp(&category.CreatedAt, &category.UpdatedAt)
	r.s.ledgerCategories[category.ID] = *category
}

func (r *ledgerCategoryRepository) CreateBatch(ctx context.Context, categories []entity.LedgerCategory) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	for i := range categories {
		r.put(&categories[i])
	}
	return nil
}

func (r *ledgerCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.LedgerCategory, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	c, ok := r.s.ledgerCategories[id]
	if !ok || !scoped(ctx, c.SourceID) {
		return nil, nil
	}
	return &c, nil
}

func (r *ledgerCategoryRepository) GetByName(ctx context.Context, kind enum.LedgerKind, name string) (*entity.LedgerCategory, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	for _, c := range r.s.ledgerCategories {
		if scoped(ctx, c.SourceID) && c.Kind == kind && strings.EqualFold(c.Name, name) {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

func (r *ledgerCategoryRepository) List(ctx context.Context, kind *enum.LedgerKind, enabledOnly bool) ([]entity.LedgerCategory, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	var out []entity.LedgerCategory
	for _, c := range r.s.ledgerCategories {
		if !scoped(ctx, c.SourceID) || (kind != nil && c.Kind != *kind) || (enabledOnly && !c.Enabled) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *ledgerCategoryRepository) Update(ctx context.Context, category *entity.LedgerCategory) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	r.s.stamp(nil, &category.UpdatedAt)
	r.s.ledgerCategories[category.ID] = *category
	return nil
}

func (r *ledgerCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	if c, ok := r.s.ledgerCategories[id]; ok && scoped(ctx, c.SourceID) {
		delete(r.s.ledgerCategories, id)
	}
	return nil
}

type transactionRepository struct{ s *Store }

// NewTransactionRepository creates an in-memory ledger entry repository
func NewTransactionRepository(s *Store) domainRepo.TransactionRepository {
	return &transactionRepository{s: s}
}

func (r *transactionRepository) Create(ctx context.Context, txn *entity.Transaction) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	ensureID(&txn.ID)
	r.s.stamp(&txn.CreatedAt, &txn.UpdatedAt)
	stored := *txn
	stored.Category = nil
	r.s.transactions[txn.ID] = stored
	return nil
}

func (r *transactionRepository) hydrate(t entity.Transaction) entity.Transaction {
	if c, ok := r.s.ledgerCategories[t.CategoryID]; ok {
		t.Category = &c
	}
	return t
}

func (r *transactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	t, ok := r.s.transactions[id]
	if !ok || !scoped(ctx, t.SourceID) {
		return nil, nil
	}
	out := r.hydrate(t)
	return &out, nil
}

func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	if t, ok := r.s.transactions[id]; ok && scoped(ctx, t.SourceID) {
		delete(r.s.transactions, id)
	}
	return nil
}

func (r *transactionRepository) filtered(ctx context.Context, params *domainRepo.TransactionFilterParams) []entity.Transaction {
	var out []entity.Transaction
	for _, t := range r.s.transactions {
		if !scoped(ctx, t.SourceID) {
			continue
		}
		if params.Kind != nil && t.Kind != *params.Kind {
			continue
		}
		if params.CategoryID != nil && t.CategoryID != *params.CategoryID {
			continue
		}
		if params.StartDate != nil && t.TransactionDate.Before(*params.StartDate) {
			continue
		}
		if params.EndDate != nil && t.TransactionDate.After(*params.EndDate) {
			continue
		}
		out = append(out, r.hydrate(t))
	}
	return out
}

func (r *transactionRepository) List(ctx context.Context, params *domainRepo.TransactionFilterParams) ([]entity.Transaction, int64, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	matched := r.filtered(ctx, params)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].TransactionDate.Equal(matched[j].TransactionDate) {
			return matched[i].TransactionDate.After(matched[j].TransactionDate)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	return paginate(matched, params.Pagination.Offset(), params.Pagination.PerPage), int64(len(matched)), nil
}

// before orders by (created_at, id) descending
func before(a entity.Transaction, createdAt time.Time, id string) bool {
	if !a.CreatedAt.Equal(createdAt) {
		return a.CreatedAt.Before(createdAt)
	}
	return a.ID.String() < id
}

func (r *transactionRepository) ListAfter(ctx context.Context, params *domainRepo.TransactionFilterParams, cursor *pagination.Cursor, limit int) ([]entity.Transaction, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	var matched []entity.Transaction
	for _, t := range r.filtered(ctx, params) {
		if cursor != nil && !before(t, cursor.CreatedAt, cursor.ID) {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool {
		return before(matched[j], matched[i].CreatedAt, matched[i].ID.String())
	})
	return paginate(matched, 0, limit+1), nil
}

func (r *transactionRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	var n int64
	for _, t := range r.s.transactions {
		if scoped(ctx, t.SourceID) && t.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (r *transactionRepository) Summary(ctx context.Context, from, to time.Time) (*entity.LedgerSummary, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	summary := &entity.LedgerSummary{From: from, To: to}
	for _, t := range r.filtered(ctx, &domainRepo.TransactionFilterParams{StartDate: &from, EndDate: &to}) {
		switch t.Kind {
		case enum.LedgerKindIncome:
			summary.Income += t.Amount
			summary.GSTCollected += t.GSTAmount
		case enum.LedgerKindExpense:
			summary.Expense += t.Amount
		}
		summary.Entries++
	}
	summary.Net = summary.Income - summary.Expense
	return summary, nil
}
