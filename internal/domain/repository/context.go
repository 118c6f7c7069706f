package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type ctxKey string

const sourceIDKey ctxKey = "source_id"

var (
	// ErrInsufficientStock is returned when a stock adjustment would go below zero
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicate is returned on unique constraint violations
	ErrDuplicate = errors.New("duplicate record")
)

// WithSource scopes every repository call made with the returned context to one source
func WithSource(ctx context.Context, sourceID uuid.UUID) context.Context {
	return context.WithValue(ctx, sourceIDKey, sourceID)
}

// SourceIDFromContext extracts the source scope
func SourceIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(sourceIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// Transactor runs fn atomically. Repository calls made with the ctx passed to fn
// join the transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
