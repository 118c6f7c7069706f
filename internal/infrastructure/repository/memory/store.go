// Package memory keeps every repository in process memory. It backs local runs
// with DB_DRIVER=memory and the service and handler tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/ledgerpos-api/internal/domain/repository"
)

type memberKey struct{ sourceID, userID uuid.UUID }

type creditKey struct{ sourceID, payerID uuid.UUID }

type idemKey struct {
	userID uuid.UUID
	key    string
}

// Store holds all tables behind one lock. A transaction takes the write lock
// for its whole duration and restores a snapshot if fn fails.
type Store struct {
	mu sync.RWMutex

	sources          map[uuid.UUID]entity.Source
	members          map[memberKey]entity.SourceMember
	invitations      map[uuid.UUID]entity.Invitation
	categories       map[uuid.UUID]entity.Category
	products         map[uuid.UUID]entity.Product
	recipes          map[uuid.UUID][]entity.RecipeIngredient
	payers           map[uuid.UUID]entity.Payer
	credits          map[creditKey]entity.CreditSetting
	bills            map[uuid.UUID]entity.Bill
	ledgerCategories map[uuid.UUID]entity.LedgerCategory
	transactions     map[uuid.UUID]entity.Transaction
	idempotency      map[idemKey]entity.IdempotencyKey

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		sources:          make(map[uuid.UUID]entity.Source),
		members:          make(map[memberKey]entity.SourceMember),
		invitations:      make(map[uuid.UUID]entity.Invitation),
		categories:       make(map[uuid.UUID]entity.Category),
		products:         make(map[uuid.UUID]entity.Product),
		recipes:          make(map[uuid.UUID][]entity.RecipeIngredient),
		payers:           make(map[uuid.UUID]entity.Payer),
		credits:          make(map[creditKey]entity.CreditSetting),
		bills:            make(map[uuid.UUID]entity.Bill),
		ledgerCategories: make(map[uuid.UUID]entity.LedgerCategory),
		transactions:     make(map[uuid.UUID]entity.Transaction),
		idempotency:      make(map[idemKey]entity.IdempotencyKey),
		now:              time.Now,
	}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, ok := ctx.Value(txKey{}).(bool)
	return ok && v
}

func (s *Store) rlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.RLock()
	}
}

func (s *Store) runlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.RUnlock()
	}
}

func (s *Store) wlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.Lock()
	}
}

func (s *Store) wunlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.Unlock()
	}
}

// Transactor returns the store's Transactor
func (s *Store) Transactor() domainRepo.Transactor {
	return transactor{s: s}
}

type transactor struct{ s *Store }

func (t transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	snap := t.s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// Stored values are never mutated in place, so copying the maps is a full snapshot.
type snapshot struct {
	sources          map[uuid.UUID]entity.Source
	members          map[memberKey]entity.SourceMember
	invitations      map[uuid.UUID]entity.Invitation
	categories       map[uuid.UUID]entity.Category
	products         map[uuid.UUID]entity.Product
	recipes          map[uuid.UUID][]entity.RecipeIngredient
	payers           map[uuid.UUID]entity.Payer
	credits          map[creditKey]entity.CreditSetting
	bills            map[uuid.UUID]entity.Bill
	ledgerCategories map[uuid.UUID]entity.LedgerCategory
	transactions     map[uuid.UUID]entity.Transaction
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		sources:          copyMap(s.sources),
		members:          copyMap(s.members),
		invitations:      copyMap(s.invitations),
		categories:       copyMap(s.categories),
		products:         copyMap(s.products),
		recipes:          copyMap(s.recipes),
		payers:           copyMap(s.payers),
		credits:          copyMap(s.credits),
		bills:            copyMap(s.bills),
		ledgerCategories: copyMap(s.ledgerCategories),
		transactions:     copyMap(s.transactions),
	}
}

func (s *Store) restore(snap snapshot) {
	s.sources = snap.sources
	s.members = snap.members
	s.invitations = snap.invitations
	s.categories = snap.categories
	s.products = snap.products
	s.recipes = snap.recipes
	s.payers = snap.payers
	s.credits = snap.credits
	s.bills = snap.bills
	s.ledgerCategories = snap.ledgerCategories
	s.transactions = snap.transactions
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func scoped(ctx context.Context, sourceID uuid.UUID) bool {
	id, ok := domainRepo.SourceIDFromContext(ctx)
	return ok && id == sourceID
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (s *Store) stamp(created, updated *time.Time) {
	now := s.now()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
