package cache

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ZaguanLabs/gotara"
)

// DefaultRedisPrefix is prepended to every key unless configured otherwise.
const DefaultRedisPrefix = "gotara:"

// RedisCache is a Redis-backed translation cache.
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	timeout   time.Duration
}

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL       string              // Redis connection URL (e.g., "redis://localhost:6379")
	TTL       int                 // TTL in seconds (0 = no expiration)
	KeyPrefix string              // Prefix for all keys (default: "gotara:")
	Timeout   time.Duration       // Per-operation timeout (default: 2s)
	Retry     *gotara.RetryConfig // Connection retry policy (default: gotara.DefaultRetryConfig)
}

// NewRedisCache connects to Redis and verifies the connection, retrying
// transient failures with exponential backoff.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, &gotara.CacheError{Message: "invalid redis URL", Cause: err}
	}

	c := NewRedisCacheFromClient(redis.NewClient(opts), cfg.TTL, cfg.KeyPrefix)
	if cfg.Timeout > 0 {
		c.timeout = cfg.Timeout
	}

	retry := gotara.DefaultRetryConfig()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}

	_, err = gotara.WithRetry(ctx, retry, func() (struct{}, error) {
		return struct{}{}, c.Ping(ctx)
	})
	if err != nil {
		_ = c.client.Close()
		return nil, err
	}

	return c, nil
}

// NewRedisCacheFromClient creates a RedisCache from an existing Redis client.
func NewRedisCacheFromClient(client *redis.Client, ttlSeconds int, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisPrefix
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}

	return &RedisCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
		timeout:   2 * time.Second,
	}
}

// Get retrieves a value from Redis. Errors are reported as misses.
func (c *RedisCache) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	val, err := c.client.Get(ctx, c.keyPrefix+key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores a value in Redis.
func (c *RedisCache) Set(key string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.client.Set(ctx, c.keyPrefix+key, value, c.ttl).Err(); err != nil {
		return cacheError("redis set", err)
	}
	return nil
}

// Entries returns every entry under the key prefix, with the prefix removed.
func (c *RedisCache) Entries() (map[string]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*c.timeout)
	defer cancel()

	result := make(map[string]string)
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, cacheError("redis scan", err)
		}
		for _, k := range keys {
			val, err := c.client.Get(ctx, k).Result()
			if errors.Is(err, redis.Nil) {
				continue // expired between SCAN and GET
			}
			if err != nil {
				return nil, cacheError("redis get", err)
			}
			result[strings.TrimPrefix(k, c.keyPrefix)] = val
		}
		if next == 0 {
			return result, nil
		}
		cursor = next
	}
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping tests the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		return cacheError("redis ping", err)
	}
	return nil
}

// cacheError wraps a Redis failure, flagging network-level errors as
// retryable.
func cacheError(msg string, err error) error {
	var netErr net.Error
	retryable := errors.As(err, &netErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, context.DeadlineExceeded)
	return &gotara.CacheError{Message: msg, Cause: err, Retryable: retryable}
}

// Verify RedisCache implements ExportableCache
var _ ExportableCache = (*RedisCache)(nil)
