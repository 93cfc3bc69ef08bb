package watson

import (
	"container/list"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fivetwenty-io/watson-go/internal/constants"
)

// Cache is a store for GET response bodies.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// CacheEntry is a cached response body.
type CacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
	ETag      string    `json:"etag,omitempty"`
}

// Expired reports whether the entry is past its expiry time.
func (e *CacheEntry) Expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// CacheOptions holds settings shared by all cache backends.
type CacheOptions struct {
	// TTL is the lifetime of new entries.
	TTL time.Duration
	// MaxSize bounds the number of entries held by in-process backends.
	MaxSize int
}

// DefaultCacheOptions returns default cache options.
func DefaultCacheOptions() *CacheOptions {
	return &CacheOptions{
		TTL:     constants.DefaultCacheTTL,
		MaxSize: constants.DefaultCacheSize,
	}
}

type memoryItem struct {
	key   string
	entry *CacheEntry
}

// MemoryCache is an in-process LRU cache.
type MemoryCache struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	items   map[string]*list.Element
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = constants.DefaultCacheSize
	}

	return &MemoryCache{
		maxSize: maxSize,
		order:   list.New(),
		items:   make(map[string]*list.Element),
	}
}

// Get returns a live entry.
func (c *MemoryCache) Get(_ context.Context, key string) (*CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}

	item, _ := elem.Value.(*memoryItem)
	if item.entry.Expired() {
		c.removeElement(elem)

		return nil, ErrCacheEntryExpired
	}

	c.order.MoveToFront(elem)

	return item.entry, nil
}

// Set stores an entry, evicting the least recently used one when full.
func (c *MemoryCache) Set(_ context.Context, key string, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		item, _ := elem.Value.(*memoryItem)
		item.entry = entry
		c.order.MoveToFront(elem)

		return nil
	}

	for c.order.Len() >= c.maxSize {
		c.removeElement(c.order.Back())
	}

	c.items[key] = c.order.PushFront(&memoryItem{key: key, entry: entry})

	return nil
}

// Delete removes an entry.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}

	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.items = make(map[string]*list.Element)

	return nil
}

// Has reports whether a live entry exists.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}

// Cleanup drops expired entries.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()

		item, _ := elem.Value.(*memoryItem)
		if item.entry.Expired() {
			c.removeElement(elem)
		}

		elem = next
	}
}

func (c *MemoryCache) removeElement(elem *list.Element) {
	if elem == nil {
		return
	}

	item, _ := elem.Value.(*memoryItem)
	delete(c.items, item.key)
	c.order.Remove(elem)
}

// CacheStats counts cache traffic.
type CacheStats struct {
	Hits   int64
	Misses int64
	Sets   int64
}

// GetHitRate returns hits divided by lookups.
func (s *CacheStats) GetHitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// CachingPolicy decides which responses are cached.
type CachingPolicy struct {
	// CacheGET enables caching of successful GET responses.
	CacheGET bool
	// CacheErrors also caches non-2xx responses.
	CacheErrors bool
	// Revalidate sends If-None-Match for entries carrying an ETag instead of
	// serving them directly; a 304 answer serves and refreshes the entry.
	Revalidate bool
	// IncludePaths restricts caching to URL paths containing one of these fragments.
	IncludePaths []string
	// ExcludePaths disables caching for URL paths containing one of these fragments.
	ExcludePaths []string
}

// DefaultCachingPolicy caches successful GETs except asynchronous job status.
func DefaultCachingPolicy() *CachingPolicy {
	return &CachingPolicy{
		CacheGET:     true,
		ExcludePaths: []string{"/v1/recognitions"},
	}
}

// ShouldCache reports whether a response may be cached.
func (p *CachingPolicy) ShouldCache(method, path string, statusCode int) bool {
	if p == nil || method != http.MethodGet || !p.CacheGET {
		return false
	}

	if !p.CacheErrors && (statusCode < 200 || statusCode >= 300) {
		return false
	}

	for _, excluded := range p.ExcludePaths {
		if strings.Contains(path, excluded) {
			return false
		}
	}

	if len(p.IncludePaths) == 0 {
		return true
	}

	for _, included := range p.IncludePaths {
		if strings.Contains(path, included) {
			return true
		}
	}

	return false
}

// CacheManager wraps a Cache with key derivation, TTL handling and statistics.
type CacheManager struct {
	cache   Cache
	options *CacheOptions
	hits    atomic.Int64
	misses  atomic.Int64
	sets    atomic.Int64
}

// NewCacheManager creates a cache manager. A nil cache disables caching; nil
// options use DefaultCacheOptions.
func NewCacheManager(cache Cache, options *CacheOptions) *CacheManager {
	if cache == nil {
		cache = NewNoOpCache()
	}

	if options == nil {
		options = DefaultCacheOptions()
	}

	return &CacheManager{cache: cache, options: options}
}

// GetCacheKey derives a key from the method, URL and extra parameters.
func (m *CacheManager) GetCacheKey(method, url string, params map[string]string) string {
	key := method + ":" + url
	if len(params) == 0 {
		return key
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}

	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+params[name])
	}

	return key + ":" + strings.Join(pairs, "&")
}

// Lookup returns the stored entry for key.
func (m *CacheManager) Lookup(ctx context.Context, key string) (*CacheEntry, error) {
	entry, err := m.cache.Get(ctx, key)
	if err != nil {
		m.misses.Add(1)

		return nil, fmt.Errorf("cache lookup %s: %w", key, err)
	}

	m.hits.Add(1)

	return entry, nil
}

// Get returns the stored data for key.
func (m *CacheManager) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := m.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}

	return entry.Data, nil
}

// Set stores data under key. A non-positive ttl uses the configured TTL.
func (m *CacheManager) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return m.SetWithETag(ctx, key, data, "", ttl)
}

// SetWithETag stores data with its validator.
func (m *CacheManager) SetWithETag(ctx context.Context, key string, data []byte, etag string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.options.TTL
	}

	err := m.cache.Set(ctx, key, &CacheEntry{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
		ETag:      etag,
	})
	if err != nil {
		return fmt.Errorf("cache store %s: %w", key, err)
	}

	m.sets.Add(1)

	return nil
}

// Refresh extends the lifetime of an existing entry after a 304 revalidation.
func (m *CacheManager) Refresh(ctx context.Context, key string, entry *CacheEntry) error {
	return m.SetWithETag(ctx, key, entry.Data, entry.ETag, m.options.TTL)
}

// Invalidate removes key.
func (m *CacheManager) Invalidate(ctx context.Context, key string) error {
	err := m.cache.Delete(ctx, key)
	if err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}

	return nil
}

// GetStats returns a snapshot of the statistics.
func (m *CacheManager) GetStats() *CacheStats {
	return &CacheStats{
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
		Sets:   m.sets.Load(),
	}
}
