package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey returns nil, nil when the key was never used by this user
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	// Reserve stores ikey as pending. A row for the same key and user that
	// expired before now is replaced. A live row yields ErrDuplicate.
	Reserve(ctx context.Context, ikey *entity.IdempotencyKey, now time.Time) error
	// Complete records the response and expiry of a reserved key
	Complete(ctx context.Context, ikey *entity.IdempotencyKey) error
	// Release drops a reservation so the key can be retried
	Release(ctx context.Context, key string, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) error
}
