package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/ledgerpos-api/internal/domain/repository"
)

func TestIdempotencyRepository_Postgres(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIdempotencyRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)

	pending := func(hash string, at time.Time) *entity.IdempotencyKey {
		return &entity.IdempotencyKey{Key: "k1", UserID: userID, Endpoint: "POST /pay", RequestHash: hash, ExpiresAt: at.Add(time.Minute)}
	}

	first := pending("a", now)
	require.NoError(t, repo.Reserve(ctx, first, now))
	assert.ErrorIs(t, repo.Reserve(ctx, pending("a", now), now), domainRepo.ErrDuplicate)

	first.ResponseCode = 201
	first.ResponseBody = `{"ok":true}`
	first.ExpiresAt = now.Add(24 * time.Hour)
	require.NoError(t, repo.Complete(ctx, first))

	got, err := repo.GetByKey(ctx, "k1", userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsPending())
	assert.Equal(t, 201, got.ResponseCode)

	t.Run("expired key is replaced", func(t *testing.T) {
		later := now.Add(25 * time.Hour)
		require.NoError(t, repo.Reserve(ctx, pending("b", later), later))

		got, err := repo.GetByKey(ctx, "k1", userID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.IsPending())
		assert.Equal(t, "b", got.RequestHash)
	})

	t.Run("release frees the key", func(t *testing.T) {
		require.NoError(t, repo.Release(ctx, "k1", userID))
		got, err := repo.GetByKey(ctx, "k1", userID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
