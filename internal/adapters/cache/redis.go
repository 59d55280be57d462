// Package cache holds the Redis-backed event cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"eventsapi/internal/domain"
)

const (
	keyPrefix = "event:"

	// invalidatedMarker occupies a key after Invalidate so a late Add is a no-op.
	invalidatedMarker = "invalidated"

	// DefaultInvalidateTTL outlives any in-flight read (bounded by SERVICE_TIMEOUT).
	DefaultInvalidateTTL = 30 * time.Second
)

// Key returns the cache key for an event id.
func Key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// RedisCache implements domain.EventCache on top of a Redis client.
type RedisCache struct {
	rdb           *redis.Client
	ttl           time.Duration
	invalidateTTL time.Duration
}

// NewRedis parses url, connects, and pings the server.
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisFromClient(rdb, ttl), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{rdb: rdb, ttl: ttl, invalidateTTL: DefaultInvalidateTTL}
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

func (c *RedisCache) Get(ctx context.Context, id int64) (*domain.Event, bool, error) {
	val, err := c.rdb.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if string(val) == invalidatedMarker {
		return nil, false, nil
	}
	var e domain.Event
	if err := json.Unmarshal(val, &e); err != nil {
		return nil, false, fmt.Errorf("decode cached event: %w", err)
	}
	return &e, true, nil
}

// Add stores e with SET NX; an existing entry or invalidation marker wins.
func (c *RedisCache) Add(ctx context.Context, e *domain.Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.rdb.SetNX(ctx, Key(e.ID), b, c.ttl).Err()
}

// Invalidate replaces any cached copy with a short-lived marker.
func (c *RedisCache) Invalidate(ctx context.Context, id int64) error {
	return c.rdb.Set(ctx, Key(id), invalidatedMarker, c.invalidateTTL).Err()
}
