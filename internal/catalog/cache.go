package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps Redis helpers for product list payloads. List keys are
// namespaced under a version counter so writes invalidate every cached
// page with a single INCR.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

const cacheVersionKey = "catalog:list:version"

// NewCache constructs a cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetList unmarshals a cached list payload into dst. It reports whether the key existed.
func (c *Cache) GetList(ctx context.Context, params ListParams, dst any) (bool, error) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return false, nil
	}
	key, err := c.listKey(ctx, params)
	if err != nil {
		return false, err
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetList serialises v as JSON and stores it with the configured TTL.
func (c *Cache) SetList(ctx context.Context, params ListParams, v any) error {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return nil
	}
	key, err := c.listKey(ctx, params)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate bumps the list namespace version, orphaning all cached pages.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

func (c *Cache) listKey(ctx context.Context, params ListParams) (string, error) {
	version, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("catalog:list:v%d:p%d:l%d:q%s:ls%t:ex%t",
		version, params.Page, params.Limit, params.Search, params.LowStock, params.Expiring), nil
}
