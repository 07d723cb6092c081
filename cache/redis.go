package cache

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key written by RedisCache.
const DefaultRedisPrefix = "healthops:"

// RedisCache stores values in Redis so replicas share them.
//
// Get treats every Redis error as a miss; the caller falls back to running
// the probes.
type RedisCache struct {
	client goredis.UniversalClient
	prefix string
}

// NewRedisCache creates a cache on client. An empty prefix uses DefaultRedisPrefix.
func NewRedisCache(client goredis.UniversalClient, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

// Get retrieves a value. Returns (nil, false) on miss or error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores a value with the given TTL. TTL=0 means no caching.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

// Delete removes a value. Idempotent - no error on miss.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

var _ Cache = (*RedisCache)(nil)
