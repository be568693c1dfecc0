package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis under the module prefix. All failures
// are logged and degrade to miss/no-op.
type RedisCache struct {
	client *redis.Client
}

// NewRedis builds a RedisCache from a redis:// or rediss:// URL
// (Upstash-style URLs with an embedded token work unchanged).
func NewRedis(rawURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

// NewRedisFromClient wraps an existing client, mainly for tests.
func NewRedisFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, Prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("WARN: cache get failed for %s: %v", key, err)
		}
		return nil, false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) {
	ttl := time.Duration(ttlSeconds) * time.Second
	if err := c.client.Set(ctx, Prefix+key, value, ttl).Err(); err != nil {
		log.Printf("WARN: cache set failed for %s: %v", key, err)
	}
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
