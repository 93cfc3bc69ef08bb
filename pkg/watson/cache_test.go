package watson_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/watson-go/pkg/watson"
)

func liveEntry(data string) *watson.CacheEntry {
	return &watson.CacheEntry{
		Data:      []byte(data),
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	t.Parallel()

	cache := watson.NewMemoryCache(10)
	ctx := context.Background()

	entry := &watson.CacheEntry{
		Data:      []byte(`{"models":[]}`),
		ExpiresAt: time.Now().Add(1 * time.Hour),
		ETag:      "abc123",
	}

	err := cache.Set(ctx, "key1", entry)
	require.NoError(t, err)

	retrieved, err := cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
	assert.Equal(t, entry.ETag, retrieved.ETag)
}

func TestMemoryCache_GetNonExistent(t *testing.T) {
	t.Parallel()

	cache := watson.NewMemoryCache(10)

	_, err := cache.Get(context.Background(), "nonexistent")
	require.ErrorIs(t, err, watson.ErrCacheMiss)
	assert.Contains(t, err.Error(), "key not found")
}

func TestMemoryCache_GetExpired(t *testing.T) {
	t.Parallel()

	cache := watson.NewMemoryCache(10)
	ctx := context.Background()

	entry := &watson.CacheEntry{
		Data:      []byte("stale"),
		ExpiresAt: time.Now().Add(-1 * time.Hour),
	}

	require.NoError(t, cache.Set(ctx, "key1", entry))

	_, err := cache.Get(ctx, "key1")
	require.ErrorIs(t, err, watson.ErrCacheEntryExpired)
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	t.Parallel()

	cache := watson.NewMemoryCache(10)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, cache.Set(ctx, key, liveEntry(key)))
	}

	require.NoError(t, cache.Delete(ctx, "a"))
	assert.False(t, cache.Has(ctx, "a"))
	assert.True(t, cache.Has(ctx, "b"))

	require.NoError(t, cache.Clear(ctx))
	assert.False(t, cache.Has(ctx, "b"))
	assert.False(t, cache.Has(ctx, "c"))
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	cache := watson.NewMemoryCache(2)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", liveEntry("a")))
	require.NoError(t, cache.Set(ctx, "b", liveEntry("b")))

	_, err := cache.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, cache.Set(ctx, "c", liveEntry("c")))

	assert.Equal(t, 2, cache.Len())
	assert.True(t, cache.Has(ctx, "a"))
	assert.False(t, cache.Has(ctx, "b"))
	assert.True(t, cache.Has(ctx, "c"))
}

func TestMemoryCache_Cleanup(t *testing.T) {
	t.Parallel()

	cache := watson.NewMemoryCache(10)
	ctx := context.Background()

	_ = cache.Set(ctx, "expired", &watson.CacheEntry{Data: []byte("x"), ExpiresAt: time.Now().Add(-time.Hour)})
	_ = cache.Set(ctx, "valid", liveEntry("valid"))

	cache.Cleanup()

	assert.Equal(t, 1, cache.Len())
	assert.True(t, cache.Has(ctx, "valid"))
}

func TestCacheManager_GetCacheKey(t *testing.T) {
	t.Parallel()

	manager := watson.NewCacheManager(nil, nil)

	assert.Equal(t, "GET:/v1/models", manager.GetCacheKey("GET", "/v1/models", nil))
	assert.Equal(t, "GET:/v1/models:a=1&b=2",
		manager.GetCacheKey("GET", "/v1/models", map[string]string{"b": "2", "a": "1"}))
}

func TestCacheManager_SetAndGet(t *testing.T) {
	t.Parallel()

	manager := watson.NewCacheManager(watson.NewMemoryCache(10), nil)
	ctx := context.Background()

	require.NoError(t, manager.Set(ctx, "key", []byte("data"), time.Hour))

	retrieved, err := manager.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), retrieved)

	_, err = manager.Get(ctx, "missing")
	require.ErrorIs(t, err, watson.ErrCacheMiss)

	stats := manager.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.InDelta(t, 0.5, stats.GetHitRate(), 0.0001)
}

func TestCacheManager_ETagAndRefresh(t *testing.T) {
	t.Parallel()

	cache := watson.NewMemoryCache(10)
	manager := watson.NewCacheManager(cache, &watson.CacheOptions{TTL: time.Hour})
	ctx := context.Background()

	require.NoError(t, manager.SetWithETag(ctx, "key", []byte("v1"), `"etag-1"`, time.Millisecond))

	entry, err := manager.Lookup(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, `"etag-1"`, entry.ETag)

	require.NoError(t, manager.Refresh(ctx, "key", entry))

	refreshed, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, refreshed.ExpiresAt.After(time.Now().Add(30*time.Minute)))

	require.NoError(t, manager.Invalidate(ctx, "key"))
	assert.False(t, cache.Has(ctx, "key"))
}

func TestCacheStats_GetHitRate(t *testing.T) {
	t.Parallel()

	stats := &watson.CacheStats{Hits: 75, Misses: 25}
	assert.InDelta(t, 0.75, stats.GetHitRate(), 0.0001)

	assert.InDelta(t, 0.0, (&watson.CacheStats{}).GetHitRate(), 0.0001)
}

func TestCachingPolicy_ShouldCache(t *testing.T) {
	t.Parallel()

	policy := watson.DefaultCachingPolicy()

	assert.True(t, policy.ShouldCache("GET", "https://x/v1/models", 200))
	assert.False(t, policy.ShouldCache("POST", "https://x/v1/recognize", 200))
	assert.False(t, policy.ShouldCache("GET", "https://x/v1/models/missing", 404))
	assert.False(t, policy.ShouldCache("GET", "https://x/v1/recognitions/123", 200))

	custom := &watson.CachingPolicy{
		CacheGET:     true,
		CacheErrors:  true,
		IncludePaths: []string{"/v1/environments"},
	}

	assert.True(t, custom.ShouldCache("GET", "https://x/v1/environments", 200))
	assert.True(t, custom.ShouldCache("GET", "https://x/v1/environments/e1", 404))
	assert.False(t, custom.ShouldCache("GET", "https://x/v1/models", 200))

	var disabled *watson.CachingPolicy
	assert.False(t, disabled.ShouldCache("GET", "https://x/v1/models", 200))
}
