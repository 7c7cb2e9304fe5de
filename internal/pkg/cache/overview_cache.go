package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// OverviewCache holds one serialized status payload for a short TTL, so
// polling dashboards do not hit the database on every request.
type OverviewCache interface {
	Get(ctx context.Context) ([]byte, bool)
	Set(ctx context.Context, payload []byte)
}

type redisOverviewCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func (c *redisOverviewCache) Get(ctx context.Context) ([]byte, bool) {
	payload, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}

func (c *redisOverviewCache) Set(ctx context.Context, payload []byte) {
	c.client.Set(ctx, c.key, payload, c.ttl)
}

type memoryOverviewCache struct {
	mu      sync.Mutex
	payload []byte
	expiry  time.Time
	ttl     time.Duration
}

func newMemoryOverviewCache(ttl time.Duration) *memoryOverviewCache {
	return &memoryOverviewCache{ttl: ttl}
}

func (c *memoryOverviewCache) Get(_ context.Context) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.payload == nil || time.Now().After(c.expiry) {
		return nil, false
	}
	return c.payload, true
}

func (c *memoryOverviewCache) Set(_ context.Context, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payload = payload
	c.expiry = time.Now().Add(c.ttl)
}

// NewOverviewCache builds a Redis-backed cache and falls back to in-memory
// when no address is configured or Redis is unreachable.
func NewOverviewCache(addr, pass string, db int, ttl time.Duration) (OverviewCache, error) {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if addr == "" {
		return newMemoryOverviewCache(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return newMemoryOverviewCache(ttl), err
	}

	return &redisOverviewCache{
		client: client,
		key:    "generation:overview",
		ttl:    ttl,
	}, nil
}
