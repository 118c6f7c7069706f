package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domainRepo "github.com/sangkips/ledgerpos-api/internal/domain/repository"
)

type txKey struct{}

// conn returns the transaction stored in ctx, or db when there is none
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// SourceScope filters by the source carried in ctx. Without one the query
// matches nothing, so a missing scope can never leak another source's rows.
func SourceScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		sourceID, ok := domainRepo.SourceIDFromContext(ctx)
		if !ok {
			return db.Where("1 = 0")
		}
		return db.Where("source_id = ?", sourceID)
	}
}

type transactor struct {
	db *gorm.DB
}

// NewTransactor creates a gorm-backed Transactor. Nested calls join the outer transaction.
func NewTransactor(db *gorm.DB) domainRepo.Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainRepo.ErrDuplicate
	}
	return err
}
