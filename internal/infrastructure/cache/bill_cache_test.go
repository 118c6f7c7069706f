package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

func setupTestRedis(t *testing.T) (*RedisBillCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisBillCache(client, 10*time.Minute), mr
}

func sampleBill() *entity.Bill {
	id := uuid.New()
	return &entity.Bill{
		ID:       id,
		SourceID: uuid.New(),
		BillNo:   "BILL-20240301-ABCDEF12",
		Status:   enum.BillStatusActive,
		SubTotal: 2000,
		GST:      160,
		Total:    2160,
		Due:      2160,
		BillDate: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Items: []entity.BillItem{
			{ID: uuid.New(), BillID: id, Name: "Tea", ItemType: enum.ItemTypeBasic, Price: 1000, Quantity: 2, Total: 2000},
		},
	}
}

func TestRedisBillCache_SetGet(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	bill := sampleBill()

	require.NoError(t, cache.Set(ctx, bill))
	assert.True(t, mr.Exists(billKey(bill.ID)))

	ttl := mr.TTL(billKey(bill.ID))
	assert.GreaterOrEqual(t, ttl, 10*time.Minute)
	assert.Less(t, ttl, 15*time.Minute)

	got, err := cache.Get(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.BillNo, got.BillNo)
	assert.Equal(t, entity.Money(2160), got.Total)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(2), got.Items[0].Quantity)
}

func TestRedisBillCache_Miss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	got, err := cache.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestRedisBillCache_Expiry(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	bill := sampleBill()

	require.NoError(t, cache.Set(ctx, bill))
	mr.FastForward(20 * time.Minute)

	_, err := cache.Get(ctx, bill.ID)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisBillCache_Delete(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	bill := sampleBill()

	require.NoError(t, cache.Set(ctx, bill))
	require.NoError(t, cache.Delete(ctx, bill.ID))
	assert.False(t, mr.Exists(billKey(bill.ID)))
}

func TestRedisBillCache_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	id := uuid.New()
	require.NoError(t, mr.Set(billKey(id), "{not json"))

	_, err := cache.Get(context.Background(), id)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestRedisBillCache_ServerDown(t *testing.T) {
	cache, mr := setupTestRedis(t)
	mr.Close()

	_, err := cache.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
