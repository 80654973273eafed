package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultTTL is the default cache entry lifetime.
const DefaultTTL = 5 * time.Minute

// DefaultTimeout is the default per-operation timeout.
const DefaultTimeout = 2 * time.Second

// keyPrefix namespaces facet entries in a shared Redis.
const keyPrefix = "facet:manifest:"

// RedisConfig configures the Redis-backed cache.
type RedisConfig struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// TTL is the entry lifetime (default 5m).
	TTL time.Duration
	// Timeout is the per-operation timeout (default 2s).
	Timeout time.Duration
}

// RedisCache stores manifest entries in Redis with a TTL.
type RedisCache struct {
	config RedisConfig
	client *goredis.Client
}

// NewRedisCache creates a Redis cache from the given config.
// Returns an error if the URL is empty or invalid.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis cache requires a URL")
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis cache: invalid URL: %w", err)
	}

	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &RedisCache{
		config: cfg,
		client: goredis.NewClient(opts),
	}, nil
}

// Get returns the cached entry for key, decoding the msgpack envelope.
// A missing key is a miss, not an error.
func (c *RedisCache) Get(ctx context.Context, key string) (*Entry, bool, error) {
	getCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	data, err := c.client.Get(getCtx, keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis cache: get %s: %w", key, err)
	}

	entry, err := DecodeEntry(data)
	if err != nil {
		// A corrupt entry behaves like a miss; the writer will replace it.
		return nil, false, nil
	}
	return entry, true, nil
}

// Put stores the entry under key with the configured TTL.
func (c *RedisCache) Put(ctx context.Context, key string, entry *Entry) error {
	data, err := entry.Encode()
	if err != nil {
		return fmt.Errorf("redis cache: encode %s: %w", key, err)
	}

	putCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if err := c.client.Set(putCtx, keyPrefix+key, data, c.config.TTL).Err(); err != nil {
		return fmt.Errorf("redis cache: put %s: %w", key, err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Verify RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
