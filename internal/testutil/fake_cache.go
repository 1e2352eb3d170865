package testutil

import (
	"context"
	"sync"
	"time"
)

// FakeCache is a map-backed cache.Cache with no eviction. It records the
// TTL passed to the last Set so tests can assert the freshness a payload
// was stored with.
type FakeCache struct {
	mu      sync.Mutex
	items   map[string]any
	LastTTL time.Duration
}

// NewFakeCache returns an empty FakeCache.
func NewFakeCache() *FakeCache {
	return &FakeCache{items: make(map[string]any)}
}

func (c *FakeCache) Get(_ context.Context, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *FakeCache) Set(_ context.Context, key string, val any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = val
	c.LastTTL = ttl
}

func (c *FakeCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *FakeCache) Purge(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]any)
}

func (c *FakeCache) Len(context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
