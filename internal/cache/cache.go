// internal/cache/cache.go
// Display-only session cache: the vendor's profile and the last
// conversation-list snapshot, so the UI has something to paint before
// the backend answers. Redis-backed when available, in-memory otherwise.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrMiss = errors.New("cache miss")

const defaultTTL = 24 * time.Hour

// SessionCache stores small display-only JSON blobs per vendor.
type SessionCache interface {
	Set(ctx context.Context, key string, value interface{}) error
	Get(ctx context.Context, key string, out interface{}) error
}

// ProfileKey is the cache key for a vendor's display profile.
func ProfileKey(vendorID string) string {
	return fmt.Sprintf("vendorchat:profile:%s", vendorID)
}

// ConversationsKey is the cache key for a vendor's conversation-list
// snapshot.
func ConversationsKey(vendorID string) string {
	return fmt.Sprintf("vendorchat:conversations:%s", vendorID)
}

// New returns a Redis-backed cache when redisURL is set and reachable,
// otherwise an in-memory cache.
func New(redisURL string) (SessionCache, error) {
	if redisURL == "" {
		return NewMemoryCache(), nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisCache{client: client, ttl: defaultTTL}, nil
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *redisCache) Get(ctx context.Context, key string, out interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// MemoryCache is the fallback when Redis is not configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *MemoryCache) Get(ctx context.Context, key string, out interface{}) error {
	c.mu.RLock()
	data, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return ErrMiss
	}
	return json.Unmarshal(data, out)
}
