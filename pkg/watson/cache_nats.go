package watson

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/fivetwenty-io/watson-go/internal/constants"
)

// NATSKVConfig configures a NATS JetStream key-value cache.
type NATSKVConfig struct {
	// URL of the NATS server (e.g., "nats://127.0.0.1:4222"). Ignored when Conn is set.
	URL string
	// Conn is an existing connection to reuse. The cache does not close it.
	Conn *nats.Conn
	// Bucket is the KV bucket name. Defaults to "watson-cache".
	Bucket string
	// TTL is the bucket-wide maximum age of entries. Defaults to 5m.
	TTL time.Duration
	// Timeout bounds individual KV operations. Defaults to 2s.
	Timeout time.Duration
}

// NATSKVCache stores entries in a JetStream key-value bucket shared by
// every process connected to the same server.
type NATSKVCache struct {
	conn    *nats.Conn
	ownConn bool
	kv      jetstream.KeyValue
	timeout time.Duration
}

// NewNATSKVCache connects to NATS and creates or updates the bucket.
func NewNATSKVCache(ctx context.Context, config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	conn := config.Conn
	ownConn := false

	if conn == nil {
		url := config.URL
		if url == "" {
			url = nats.DefaultURL
		}

		var err error

		conn, err = nats.Connect(url, nats.Name(constants.SDKName))
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
		}

		ownConn = true
	}

	js, err := jetstream.New(conn)
	if err != nil {
		closeIfOwned(conn, ownConn)

		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultNATSBucket
	}

	ttl := config.TTL
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTL
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "watson response cache",
		TTL:         ttl,
	})
	if err != nil {
		closeIfOwned(conn, ownConn)

		return nil, fmt.Errorf("creating KV bucket %s: %w", bucket, err)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = constants.CacheOperationTimeout
	}

	return &NATSKVCache{
		conn:    conn,
		ownConn: ownConn,
		kv:      kv,
		timeout: timeout,
	}, nil
}

func closeIfOwned(conn *nats.Conn, owned bool) {
	if owned {
		conn.Close()
	}
}

// natsKey maps arbitrary cache keys onto the KV key alphabet.
func natsKey(key string) string {
	sum := sha256.Sum256([]byte(key))

	return hex.EncodeToString(sum[:])
}

// Get returns a live entry.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	kvEntry, err := c.kv.Get(ctx, natsKey(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, ErrCacheMiss
	}

	if err != nil {
		return nil, fmt.Errorf("nats kv get: %w", err)
	}

	var entry CacheEntry

	err = json.Unmarshal(kvEntry.Value(), &entry)
	if err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}

	if entry.Expired() {
		_ = c.kv.Delete(ctx, natsKey(key))

		return nil, ErrCacheEntryExpired
	}

	return &entry, nil
}

// Set stores an entry.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err = c.kv.Put(ctx, natsKey(key), data)
	if err != nil {
		return fmt.Errorf("nats kv put: %w", err)
	}

	return nil
}

// Delete removes an entry.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.kv.Delete(ctx, natsKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("nats kv delete: %w", err)
	}

	return nil
}

// Clear removes every entry in the bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	lister, err := c.kv.ListKeys(ctx)
	if err != nil {
		return fmt.Errorf("nats kv list: %w", err)
	}

	defer func() { _ = lister.Stop() }()

	for key := range lister.Keys() {
		err = c.kv.Purge(ctx, key)
		if err != nil {
			return fmt.Errorf("nats kv purge: %w", err)
		}
	}

	return nil
}

// Has reports whether a live entry exists.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close closes the connection if the cache opened it.
func (c *NATSKVCache) Close() {
	closeIfOwned(c.conn, c.ownConn)
}
