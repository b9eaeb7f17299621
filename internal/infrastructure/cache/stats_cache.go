package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatsCache stores computed fund statistics until the next write invalidates them.
// Readers take the Generation before loading records and pass it to Set, so a
// value computed before an invalidation is never served after it.
type StatsCache interface {
	// Get returns the cached value and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Generation returns the current invalidation generation
	Generation(ctx context.Context) (int64, error)
	// Set stores value only while gen is still the current generation
	Set(ctx context.Context, gen int64, key string, value []byte, ttl time.Duration) error
	// InvalidateAll drops every cached entry
	InvalidateAll(ctx context.Context) error
}

const statsPrefix = "comfund:stats:"

// RedisStatsCache keeps entries under a generation number. InvalidateAll
// bumps the generation so stale entries become unreachable and expire on
// their own TTL.
type RedisStatsCache struct {
	client redis.UniversalClient
}

// NewRedisStatsCache creates a stats cache on an existing client
func NewRedisStatsCache(client redis.UniversalClient) *RedisStatsCache {
	return &RedisStatsCache{client: client}
}

// Generation implements StatsCache
func (c *RedisStatsCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, statsPrefix+"gen").Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisStatsCache) key(gen int64, key string) string {
	return fmt.Sprintf("%s%d:%s", statsPrefix, gen, key)
}

// Get implements StatsCache
func (c *RedisStatsCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	gen, err := c.Generation(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read stats generation: %w", err)
	}
	val, err := c.client.Get(ctx, c.key(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read stats cache: %w", err)
	}
	return val, true, nil
}

// setIfCurrent writes KEYS[2] only while the generation in KEYS[1] equals ARGV[1]
var setIfCurrent = redis.NewScript(`
local gen = redis.call("GET", KEYS[1]) or "0"
if gen ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[2], ARGV[2])
end
return 1
`)

// Set implements StatsCache
func (c *RedisStatsCache) Set(ctx context.Context, gen int64, key string, value []byte, ttl time.Duration) error {
	keys := []string{statsPrefix + "gen", c.key(gen, key)}
	if err := setIfCurrent.Run(ctx, c.client, keys, gen, value, ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("failed to write stats cache: %w", err)
	}
	return nil
}

// InvalidateAll implements StatsCache
func (c *RedisStatsCache) InvalidateAll(ctx context.Context) error {
	if err := c.client.Incr(ctx, statsPrefix+"gen").Err(); err != nil {
		return fmt.Errorf("failed to invalidate stats cache: %w", err)
	}
	return nil
}

var _ StatsCache = (*RedisStatsCache)(nil)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// InMemoryStatsCache is the single-instance StatsCache
type InMemoryStatsCache struct {
	mu      sync.RWMutex
	gen     int64
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewInMemoryStatsCache creates an empty in-memory cache
func NewInMemoryStatsCache() *InMemoryStatsCache {
	return &InMemoryStatsCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements StatsCache
func (c *InMemoryStatsCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || (!e.expiresAt.IsZero() && c.now().After(e.expiresAt)) {
		return nil, false, nil
	}
	return e.value, true, nil
}

// Generation implements StatsCache
func (c *InMemoryStatsCache) Generation(context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen, nil
}

// Set implements StatsCache. A non-positive ttl keeps the entry until invalidation.
func (c *InMemoryStatsCache) Set(_ context.Context, gen int64, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return nil
	}
	c.entries[key] = e
	return nil
}

// InvalidateAll implements StatsCache
func (c *InMemoryStatsCache) InvalidateAll(context.Context) error {
	c.mu.Lock()
	c.gen++
	clear(c.entries)
	c.mu.Unlock()
	return nil
}

var _ StatsCache = (*InMemoryStatsCache)(nil)
