// Package cache provides TTL response caching for widget data.
package cache

import (
	"context"
	"time"
)

// Cache is the interface for widget response caching.
type Cache interface {
	// Get retrieves a cached value by key if present and not expired.
	Get(ctx context.Context, key string) (any, bool)
	// Set stores a value with the given TTL, overwriting any existing entry.
	Set(ctx context.Context, key string, val any, ttl time.Duration)
	// Delete removes a cached value.
	Delete(ctx context.Context, key string)
	// Purge removes all cached values.
	Purge(ctx context.Context)
	// Len returns the approximate number of cached entries.
	Len(ctx context.Context) int
}
