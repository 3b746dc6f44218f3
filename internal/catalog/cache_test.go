package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	params := ListParams{Page: 1, Limit: 20, Search: "para"}
	stored := ListResult{Total: 3, Page: 1, Limit: 20}

	var missed ListResult
	hit, err := cache.GetList(ctx, params, &missed)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, cache.SetList(ctx, params, stored))

	var got ListResult
	hit, err = cache.GetList(ctx, params, &got)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, stored.Total, got.Total)
}

func TestCacheInvalidateOrphansOldKeys(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	params := ListParams{Page: 1, Limit: 20}

	require.NoError(t, cache.SetList(ctx, params, ListResult{Total: 5}))
	require.NoError(t, cache.Invalidate(ctx))

	var got ListResult
	hit, err := cache.GetList(ctx, params, &got)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestCacheParamsProduceDistinctKeys(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetList(ctx, ListParams{Page: 1, Limit: 20}, ListResult{Total: 1}))

	var got ListResult
	hit, err := cache.GetList(ctx, ListParams{Page: 2, Limit: 20}, &got)
	require.NoError(t, err)
	require.False(t, hit)

	hit, err = cache.GetList(ctx, ListParams{Page: 1, Limit: 20, LowStock: true}, &got)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestCacheDisabledWithoutClient(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	hit, err := cache.GetList(ctx, ListParams{}, &ListResult{})
	require.NoError(t, err)
	require.False(t, hit)
	require.NoError(t, cache.SetList(ctx, ListParams{}, ListResult{}))
	require.NoError(t, cache.Invalidate(ctx))
}
