package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/ledgerpos-api/internal/domain/repository"
)

type idempotencyRepository struct{ s *Store }

// NewIdempotencyRepository creates an in-memory idempotency repository
func NewIdempotencyRepository(s *Store) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{s: s}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	ikey, ok := r.s.idempotency[idemKey{userID, key}]
	if !ok {
		return nil, nil
	}
	return &ikey, nil
}

func (r *idempotencyRepository) Reserve(ctx context.Context, ikey *entity.IdempotencyKey, now time.Time) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	k := idemKey{ikey.UserID, ikey.Key}
	if existing, exists := r.s.idempotency[k]; exists && !existing.IsExpired(now) {
		return domainRepo.ErrDuplicate
	}
	ensureID(&ikey.ID)
	r.s.stamp(&ikey.CreatedAt, nil)
	r.s.idempotency[k] = *ikey
	return nil
}

func (r *idempotencyRepository) Complete(ctx context.Context, ikey *entity.IdempotencyKey) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	k := idemKey{ikey.UserID, ikey.Key}
	stored, ok := r.s.idempotency[k]
	if !ok {
		// purged while the request ran
		stored = *ikey
		ensureID(&stored.ID)
		r.s.stamp(&stored.CreatedAt, nil)
	}
	stored.ResponseCode = ikey.ResponseCode
	stored.ResponseBody = ikey.ResponseBody
	stored.ExpiresAt = ikey.ExpiresAt
	r.s.idempotency[k] = stored
	return nil
}

func (r *idempotencyRepository) Release(ctx context.Context, key string, userID uuid.UUID) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	delete(r.s.idempotency, idemKey{userID, key})
	return nil
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	for k, ikey := range r.s.idempotency {
		if ikey.IsExpired(now) {
			delete(r.s.idempotency, k)
		}
	}
	return nil
}
