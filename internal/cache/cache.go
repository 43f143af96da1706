package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"carrental-backend/internal/logger"
)

const (
	// Catalog listing cache: cars:catalog:{filter_digest}:{page}:{size}
	KeyCarCatalog = "cars:catalog:%s:%d:%d"

	// Admin dashboard aggregate
	KeyAdminStats = "admin:stats"
)

var (
	TTLCatalog = 2 * time.Minute
	TTLStats   = 1 * time.Minute
)

// Client wraps redis for read-side caching. A nil *Client disables caching,
// so callers never have to branch on whether redis is configured.
type Client struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Client {
	if addr == "" {
		return nil
	}
	r := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	return &Client{rdb: r}
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// GetJSON loads key into dest, reporting whether it was a cache hit.
// Redis failures degrade to a miss.
func (c *Client) GetJSON(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		logger.Warn("Failed to decode cached value, evicting", "key", key, "error", err)
		c.rdb.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON stores v under key with a TTL, best effort.
func (c *Client) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Warn("Failed to write cache entry", "key", key, "error", err)
	}
}

// DeleteByPrefix evicts all keys under prefix. Used to invalidate the catalog
// after any write that changes car rows or availability.
func (c *Client) DeleteByPrefix(ctx context.Context, prefix string) {
	if c == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		c.rdb.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Warn("Cache invalidation scan failed", "prefix", prefix, "error", err)
	}
}

// Delete evicts exact keys, best effort.
func (c *Client) Delete(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("Cache delete failed", "keys", keys, "error", err)
	}
}
