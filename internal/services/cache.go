package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// DefaultCacheTTL bounds staleness should an invalidation ever be missed
	DefaultCacheTTL = 8 * time.Hour
	MinCacheTTL     = time.Minute
	MaxCacheTTL     = 12 * time.Hour
)

// CacheStore holds JSON-encoded read models keyed by resource.
type CacheStore interface {
	// Get decodes the cached value into dest and reports whether it was present.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

// CacheKey generates a cache key for a specific resource
func CacheKey(resource string, identifier string) string {
	return fmt.Sprintf("%s:%s", resource, identifier)
}

func clampTTL(ttl time.Duration) time.Duration {
	if ttl < MinCacheTTL {
		return MinCacheTTL
	}
	if ttl > MaxCacheTTL {
		return MaxCacheTTL
	}
	return ttl
}

// RedisCache shares cached read models between server instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: clampTTL(ttl)}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.client.Get(ctx, CacheKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return false, nil // Cache miss, not an error
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, CacheKeyPrefix+key, jsonData, c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = CacheKeyPrefix + k
	}
	return c.client.Del(ctx, prefixed...).Err()
}

type memoryItem struct {
	data    []byte
	expires time.Time
}

// MemoryCache is the in-process CacheStore used when Redis is not configured.
type MemoryCache struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]memoryItem
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: clampTTL(ttl), now: time.Now, items: make(map[string]memoryItem)}
}

func (c *MemoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	item, ok := c.items[key]
	if ok && c.now().After(item.expires) {
		delete(c.items, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(item.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items[key] = memoryItem{data: data, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.items, k)
	}
	c.mu.Unlock()
	return nil
}
