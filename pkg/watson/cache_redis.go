package watson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fivetwenty-io/watson-go/internal/constants"
)

// RedisCacheConfig holds Redis connection configuration.
type RedisCacheConfig struct {
	Addr      string // Redis server address (host:port)
	Password  string // Redis password (optional)
	DB        int    // Redis database number
	KeyPrefix string // Prefix of every key. Defaults to "watson:cache:".
	// Client is an existing client to reuse instead of dialing Addr.
	Client *redis.Client
}

// RedisCache stores entries in Redis with native expiry.
type RedisCache struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisCache connects to Redis and checks the connection.
func NewRedisCache(ctx context.Context, config *RedisCacheConfig) (*RedisCache, error) {
	if config == nil {
		return nil, ErrRedisConfigRequired
	}

	client := config.Client
	if client == nil {
		client = redis.NewClient(&redis.Options{
			Addr:         config.Addr,
			Password:     config.Password,
			DB:           config.DB,
			DialTimeout:  constants.ShortHTTPTimeout,
			ReadTimeout:  constants.CacheOperationTimeout,
			WriteTimeout: constants.CacheOperationTimeout,
		})
	}

	pingCtx, cancel := context.WithTimeout(ctx, constants.ShortHTTPTimeout)
	defer cancel()

	err := client.Ping(pingCtx).Err()
	if err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	prefix := config.KeyPrefix
	if prefix == "" {
		prefix = constants.DefaultRedisKeyPrefix
	}

	return &RedisCache{
		client:  client,
		prefix:  prefix,
		timeout: constants.CacheOperationTimeout,
	}, nil
}

// Get returns a live entry.
func (c *RedisCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}

	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry CacheEntry

	err = json.Unmarshal(val, &entry)
	if err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}

	if entry.Expired() {
		return nil, ErrCacheEntryExpired
	}

	return &entry, nil
}

// Set stores an entry with a Redis TTL matching its expiry.
func (c *RedisCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	var ttl time.Duration
	if !entry.ExpiresAt.IsZero() {
		ttl = time.Until(entry.ExpiresAt)
		if ttl <= 0 {
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err = c.client.Set(ctx, c.prefix+key, data, ttl).Err()
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes an entry.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.client.Del(ctx, c.prefix+key).Err()
	if err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}

	return nil
}

// Clear removes every key under the cache prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 0).Iterator()

	for iter.Next(ctx) {
		err := c.client.Del(ctx, iter.Val()).Err()
		if err != nil {
			return fmt.Errorf("redis delete: %w", err)
		}
	}

	err := iter.Err()
	if err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}

	return nil
}

// Has reports whether a live entry exists.
func (c *RedisCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
