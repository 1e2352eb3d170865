// Package ratelimit implements per-key sliding-window rate limiting.
//
// Each key (client IP + provider) owns an ordered sequence of request
// instants inside a trailing window. A check prunes instants older than the
// window, then either records the attempt (allowed) or rejects it without
// recording, so hammering a full window never extends the lockout.
package ratelimit

import (
	"sync"
	"time"
)

// Limit describes one provider's ceiling: at most Requests instants inside
// any trailing Window. Distinct providers carry distinct limits because
// their real upstream quotas differ.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Result is the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // time until the oldest instant leaves the window
}

// window holds the request instants recorded for a single key.
type window struct {
	mu       sync.Mutex
	stamps   []time.Time
	lastUsed time.Time
}

// prune drops instants older than w from the front of the sequence.
// Stamps are appended in order, so the survivors form a suffix.
func (wd *window) prune(now time.Time, w time.Duration) {
	cutoff := now.Add(-w)
	i := 0
	for i < len(wd.stamps) && !wd.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		wd.stamps = append(wd.stamps[:0], wd.stamps[i:]...)
	}
}

// Registry manages per-key windows. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	windows map[string]*window
	now     func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the time source, for deterministic window tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates an empty rate limiter registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{windows: make(map[string]*window), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Allow checks key against limit. It prunes stale instants first; if the
// remaining count has reached limit.Requests the attempt is rejected and NOT
// recorded, otherwise the current instant is appended and the attempt passes.
func (r *Registry) Allow(key string, limit Limit) Result {
	wd := r.getOrCreate(key)

	wd.mu.Lock()
	defer wd.mu.Unlock()

	now := r.now()
	wd.lastUsed = now
	wd.prune(now, limit.Window)

	if len(wd.stamps) >= limit.Requests {
		retry := wd.stamps[0].Add(limit.Window).Sub(now)
		if retry < 0 {
			retry = 0
		}
		return Result{
			Allowed:    false,
			Limit:      limit.Requests,
			Remaining:  0,
			RetryAfter: retry,
		}
	}

	wd.stamps = append(wd.stamps, now)
	return Result{
		Allowed:   true,
		Limit:     limit.Requests,
		Remaining: limit.Requests - len(wd.stamps),
	}
}

func (r *Registry) getOrCreate(key string) *window {
	r.mu.RLock()
	wd, ok := r.windows[key]
	r.mu.RUnlock()
	if ok {
		return wd
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Double-check after acquiring write lock.
	if wd, ok := r.windows[key]; ok {
		return wd
	}
	wd = &window{}
	r.windows[key] = wd
	return wd
}

// Len returns the number of tracked keys.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.windows)
}

// EvictStale removes windows not used since cutoff, bounding memory growth
// from one-off client IPs. Returns the number of evicted keys.
func (r *Registry) EvictStale(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for k, wd := range r.windows {
		wd.mu.Lock()
		stale := wd.lastUsed.Before(cutoff)
		wd.mu.Unlock()
		if stale {
			delete(r.windows, k)
			evicted++
		}
	}
	return evicted
}
