package geo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL bounds how long a coordinate cell keeps its region.
const DefaultCacheTTL = 24 * time.Hour

const cacheKeyPrefix = "criblink:geo:"

// Cache stores reverse-geocoded regions per coordinate cell. A miss is
// reported as ok == false with a nil error.
type Cache interface {
	Get(ctx context.Context, cell string) (region string, ok bool, err error)
	Set(ctx context.Context, cell, region string) error
}

// Cell rounds a position to three decimals (about 110 m), the granularity
// at which regions are cached.
func Cell(p Position) string {
	return strconv.FormatFloat(p.Lat, 'f', 3, 64) + "," + strconv.FormatFloat(p.Lon, 'f', 3, 64)
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache returns an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

func (c *MemoryCache) Get(_ context.Context, cell string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[cell]
	return r, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, cell, region string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cell] = region
	return nil
}

// RedisCache shares geocode results across processes.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// OpenRedisCache connects to a redis:// URL.
func OpenRedisCache(rawURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return NewRedisCache(redis.NewClient(opts), ttl), nil
}

func (c *RedisCache) Get(ctx context.Context, cell string) (string, bool, error) {
	r, err := c.client.Get(ctx, cacheKeyPrefix+cell).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return r, true, nil
}

func (c *RedisCache) Set(ctx context.Context, cell, region string) error {
	if err := c.client.Set(ctx, cacheKeyPrefix+cell, region, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
