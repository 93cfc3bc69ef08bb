package watson

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/watson-go/internal/constants"
)

// CacheType represents the type of cache backend.
type CacheType string

const (
	// CacheTypeMemory represents in-memory cache.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS represents NATS KV cache.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeRedis represents Redis cache.
	CacheTypeRedis CacheType = "redis"

	// CacheTypeNone represents no caching.
	CacheTypeNone CacheType = "none"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired    = errors.New("NATS configuration required for NATS cache")
	ErrRedisConfigRequired   = errors.New("redis configuration required for Redis cache")
	ErrUnsupportedCacheType  = errors.New("unsupported cache type")
	ErrKeyNotFoundInAnyCache = errors.New("key not found in any cache")
)

// CacheConfig configures a cache backend.
type CacheConfig struct {
	// Type is the cache backend type
	Type CacheType

	// Memory cache configuration
	Memory *MemoryCacheConfig

	// NATS KV cache configuration
	NATS *NATSKVConfig

	// Redis cache configuration
	Redis *RedisCacheConfig

	// Common options applied to any backend. If nil, DefaultCacheOptions() is used.
	Options *CacheOptions
}

// MemoryCacheConfig configures memory cache.
type MemoryCacheConfig struct {
	// MaxSize is the maximum number of items in the cache
	MaxSize int
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type:    CacheTypeMemory,
		Memory:  &MemoryCacheConfig{MaxSize: constants.DefaultCacheSize},
		Options: DefaultCacheOptions(),
	}
}

// NewCacheFromConfig creates a cache backend from configuration.
func NewCacheFromConfig(ctx context.Context, config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case CacheTypeMemory, "":
		maxSize := constants.DefaultCacheSize
		if config.Memory != nil && config.Memory.MaxSize > 0 {
			maxSize = config.Memory.MaxSize
		} else if config.Options != nil && config.Options.MaxSize > 0 {
			maxSize = config.Options.MaxSize
		}

		return NewMemoryCache(maxSize), nil

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSKVCache(ctx, config.NATS)

	case CacheTypeRedis:
		if config.Redis == nil {
			return nil, ErrRedisConfigRequired
		}

		return NewRedisCache(ctx, config.Redis)

	case CacheTypeNone:
		return NewNoOpCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

// NoOpCache is a cache that does nothing (no caching).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always returns an error (nothing cached).
func (c *NoOpCache) Get(context.Context, string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set does nothing.
func (c *NoOpCache) Set(context.Context, string, *CacheEntry) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(context.Context, string) error {
	return nil
}

// Clear does nothing.
func (c *NoOpCache) Clear(context.Context) error {
	return nil
}

// Has always returns false.
func (c *NoOpCache) Has(context.Context, string) bool {
	return false
}

// CacheBuilder helps build cache configurations.
type CacheBuilder struct {
	config *CacheConfig
}

// NewCacheBuilder creates a new cache builder.
func NewCacheBuilder() *CacheBuilder {
	return &CacheBuilder{
		config: &CacheConfig{
			Type:    CacheTypeMemory,
			Options: DefaultCacheOptions(),
		},
	}
}

// WithType sets the cache type.
func (b *CacheBuilder) WithType(cacheType CacheType) *CacheBuilder {
	b.config.Type = cacheType

	return b
}

// WithMemoryConfig sets memory cache configuration.
func (b *CacheBuilder) WithMemoryConfig(maxSize int) *CacheBuilder {
	b.config.Memory = &MemoryCacheConfig{MaxSize: maxSize}

	return b
}

// WithNATSConfig sets NATS cache configuration.
func (b *CacheBuilder) WithNATSConfig(config *NATSKVConfig) *CacheBuilder {
	b.config.NATS = config

	return b
}

// WithRedisConfig sets Redis cache configuration.
func (b *CacheBuilder) WithRedisConfig(config *RedisCacheConfig) *CacheBuilder {
	b.config.Redis = config

	return b
}

// WithOptions sets cache options.
func (b *CacheBuilder) WithOptions(options *CacheOptions) *CacheBuilder {
	b.config.Options = options

	return b
}

// Build creates the cache from the configuration.
func (b *CacheBuilder) Build(ctx context.Context) (Cache, error) {
	return NewCacheFromConfig(ctx, b.config)
}

// CacheChain implements a chain of cache backends (L1, L2, etc.)
type CacheChain struct {
	caches []Cache
}

// NewCacheChain creates a new cache chain.
func NewCacheChain(caches ...Cache) *CacheChain {
	return &CacheChain{
		caches: caches,
	}
}

// Get retrieves an item from the first cache holding it and back-fills the
// faster levels.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for i, cache := range c.caches {
		entry, err := cache.Get(ctx, key)
		if err != nil {
			continue
		}

		for j := range i {
			_ = c.caches[j].Set(ctx, key, entry)
		}

		return entry, nil
	}

	return nil, ErrKeyNotFoundInAnyCache
}

// Set stores an item in all caches.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	var errs []error

	for _, cache := range c.caches {
		err := cache.Set(ctx, key, entry)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Delete removes an item from all caches.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	var errs []error

	for _, cache := range c.caches {
		err := cache.Delete(ctx, key)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Clear removes all items from all caches.
func (c *CacheChain) Clear(ctx context.Context) error {
	var errs []error

	for _, cache := range c.caches {
		err := cache.Clear(ctx)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Has checks if a key exists in any cache.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	for _, cache := range c.caches {
		if cache.Has(ctx, key) {
			return true
		}
	}

	return false
}
