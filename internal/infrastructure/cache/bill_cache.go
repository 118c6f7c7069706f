// Package cache mirrors open bills into Redis so cart reads skip the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
)

var ErrCacheMiss = errors.New("cache miss")

// BillCache stores bills with their items and payer
type BillCache interface {
	Get(ctx context.Context, id uuid.UUID) (*entity.Bill, error)
	Set(ctx context.Context, bill *entity.Bill) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type RedisBillCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisBillCache(client *redis.Client, baseTTL time.Duration) *RedisBillCache {
	if baseTTL <= 0 {
		baseTTL = 15 * time.Minute
	}
	return &RedisBillCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

func (r *RedisBillCache) Get(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	data, err := r.client.Get(ctx, billKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var bill entity.Bill
	if err := json.Unmarshal(data, &bill); err != nil {
		return nil, fmt.Errorf("unmarshal bill failed: %w", err)
	}
	return &bill, nil
}

func (r *RedisBillCache) Set(ctx context.Context, bill *entity.Bill) error {
	data, err := json.Marshal(bill)
	if err != nil {
		return fmt.Errorf("marshal bill failed: %w", err)
	}

	// jitter spreads expiry so carts opened together do not all miss at once
	ttl := r.baseTTL + time.Duration(rand.Intn(5))*time.Minute
	if err := r.client.Set(ctx, billKey(bill.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisBillCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, billKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func billKey(id uuid.UUID) string {
	return fmt.Sprintf("bill:%s", id)
}

// NoopBillCache always misses. It is used when Redis is disabled.
type NoopBillCache struct{}

func (NoopBillCache) Get(context.Context, uuid.UUID) (*entity.Bill, error) { return nil, ErrCacheMiss }
func (NoopBillCache) Set(context.Context, *entity.Bill) error              { return nil }
func (NoopBillCache) Delete(context.Context, uuid.UUID) error              { return nil }
