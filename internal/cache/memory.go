package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/maypok86/otter/v2"
)

// entry wraps a cached value with its expiration time.
type entry struct {
	val       any
	expiresAt time.Time
}

// Memory is an in-memory W-TinyLFU cache backed by otter. Expiry is checked
// per entry on read against an injectable clock, so a value stored with a
// short TTL goes stale on schedule regardless of otter's own eviction. The
// library's write-expiry (set to the longest widget TTL) plus the periodic
// Sweep bound memory between reads; neither is needed for Get correctness.
type Memory struct {
	cache *otter.Cache[string, entry]
	now   func() time.Time
}

// Option configures a Memory cache.
type Option func(*Memory)

// WithClock overrides the time source, for deterministic expiry in tests.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

// NewMemory creates an in-memory cache with the given max entry count and
// maximum per-entry TTL.
func NewMemory(maxSize int, maxTTL time.Duration, opts ...Option) (*Memory, error) {
	c, err := otter.New[string, entry](&otter.Options[string, entry]{
		MaximumSize:      maxSize,
		ExpiryCalculator: otter.ExpiryWriting[string, entry](maxTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	m := &Memory{cache: c, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Get retrieves a value from the cache if present and not expired.
// Expired entries are lazily evicted on read.
func (m *Memory) Get(_ context.Context, key string) (any, bool) {
	e, ok := m.cache.GetIfPresent(key)
	if !ok {
		return nil, false
	}
	if !m.now().Before(e.expiresAt) {
		m.cache.Invalidate(key)
		return nil, false
	}
	return e.val, true
}

// Set stores a value with per-entry TTL, unconditionally overwriting any
// existing entry with a fresh write time.
func (m *Memory) Set(_ context.Context, key string, val any, ttl time.Duration) {
	m.cache.Set(key, entry{
		val:       val,
		expiresAt: m.now().Add(ttl),
	})
}

// Delete removes a value from the cache.
func (m *Memory) Delete(_ context.Context, key string) {
	m.cache.Invalidate(key)
}

// Purge removes all values from the cache.
func (m *Memory) Purge(_ context.Context) {
	m.cache.InvalidateAll()
}

// Len returns the approximate number of live entries.
func (m *Memory) Len(_ context.Context) int {
	return m.cache.EstimatedSize()
}

// Sweep runs pending cache maintenance, dropping entries past the write
// expiry. Invoked on a fixed interval by the sweep worker.
func (m *Memory) Sweep(_ context.Context) {
	m.cache.CleanUp()
}
