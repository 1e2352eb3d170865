package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/PokeyPoke/homedash/internal/circuitbreaker"
	"github.com/PokeyPoke/homedash/internal/ratelimit"
)

// staleWindowAge is how long an untouched rate-limit window or circuit
// breaker survives before the sweep drops it.
const staleWindowAge = 10 * time.Minute

// Sweepable is the maintenance hook the cache exposes.
type Sweepable interface {
	Sweep(ctx context.Context)
}

// SweepWorker periodically runs cache maintenance and evicts idle
// rate-limit windows and breakers. Sweeping only bounds memory;
// Get/Allow stay correct without it.
type SweepWorker struct {
	cache    Sweepable
	limiter  *ratelimit.Registry
	breakers *circuitbreaker.Registry // may be nil
	interval time.Duration
}

// NewSweepWorker creates a SweepWorker with the given interval.
func NewSweepWorker(cache Sweepable, limiter *ratelimit.Registry, breakers *circuitbreaker.Registry, interval time.Duration) *SweepWorker {
	return &SweepWorker{cache: cache, limiter: limiter, breakers: breakers, interval: interval}
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (w *SweepWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *SweepWorker) sweep(ctx context.Context) {
	w.cache.Sweep(ctx)
	cutoff := time.Now().Add(-staleWindowAge)
	evicted := w.limiter.EvictStale(cutoff)
	breakers := 0
	if w.breakers != nil {
		breakers = w.breakers.EvictStale(cutoff)
	}
	slog.LogAttrs(ctx, slog.LevelDebug, "sweep completed",
		slog.Int("ratelimit_keys_evicted", evicted),
		slog.Int("breakers_evicted", breakers),
	)
}
