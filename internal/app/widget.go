// Package app implements the widget data services sitting between the HTTP
// layer and the upstream providers.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	dashboard "github.com/PokeyPoke/homedash/internal"
	"github.com/PokeyPoke/homedash/internal/cache"
	"github.com/PokeyPoke/homedash/internal/circuitbreaker"
	"github.com/PokeyPoke/homedash/internal/config"
	"github.com/PokeyPoke/homedash/internal/demo"
	"github.com/PokeyPoke/homedash/internal/provider"
	"github.com/PokeyPoke/homedash/internal/telemetry"
)

// WidgetService answers widget data requests: sanitize, consult the TTL
// cache, fetch from the live provider (or the demo generator when the
// provider is unconfigured), normalize, cache, return. Upstream failures
// after retries degrade to demo data rather than an error -- the dashboard
// must always render something.
type WidgetService struct {
	providers *provider.Registry
	cache     cache.Cache
	cfg       *config.Config
	metrics   *telemetry.Metrics       // nil = no instrumentation
	breakers  *circuitbreaker.Registry // nil = never short-circuit
}

// NewWidgetService wires a WidgetService. metrics and breakers may be nil.
func NewWidgetService(providers *provider.Registry, c cache.Cache, cfg *config.Config, metrics *telemetry.Metrics, breakers *circuitbreaker.Registry) *WidgetService {
	return &WidgetService{providers: providers, cache: c, cfg: cfg, metrics: metrics, breakers: breakers}
}

// Get resolves one widget request. Rate limiting happens upstream in the
// HTTP middleware; by the time a request reaches here it has already been
// admitted.
func (s *WidgetService) Get(ctx context.Context, t dashboard.WidgetType, query url.Values) (any, error) {
	p, err := Sanitize(t, query)
	if err != nil {
		return nil, err
	}
	key := CacheKey(t, p)

	if v, ok := s.cache.Get(ctx, key); ok {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		return v, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	entry, err := s.providers.Get(t)
	if err != nil {
		return nil, err
	}
	wcfg := s.cfg.Widget(t)

	if entry.Mode == dashboard.ModeDemo {
		v := demo.Payload(t, p)
		s.cache.Set(ctx, key, v, wcfg.DemoTTL)
		return v, nil
	}

	var breaker *circuitbreaker.Breaker
	if s.breakers != nil {
		breaker = s.breakers.GetOrCreate(entry.Provider.Name())
		if !breaker.Allow() {
			slog.LogAttrs(ctx, slog.LevelWarn, "circuit open, serving demo data",
				slog.String("provider", entry.Provider.Name()),
				slog.String("widget", string(t)),
			)
			if s.metrics != nil {
				s.metrics.DemoFallbacks.WithLabelValues(string(t)).Inc()
			}
			v := demo.Payload(t, p)
			s.cache.Set(ctx, key, v, wcfg.DemoTTL)
			return v, nil
		}
	}

	start := time.Now()
	v, err := entry.Provider.Fetch(ctx, p)
	if s.metrics != nil {
		s.metrics.UpstreamDuration.WithLabelValues(entry.Provider.Name()).Observe(time.Since(start).Seconds())
	}
	if breaker != nil {
		if err != nil {
			breaker.RecordError(circuitbreaker.ClassifyError(err))
		} else {
			breaker.RecordSuccess()
		}
	}
	if err != nil {
		// Unknown city/coin/symbol is the caller's mistake, not an outage.
		if errors.Is(err, dashboard.ErrNotFound) {
			return nil, err
		}
		slog.LogAttrs(ctx, slog.LevelWarn, "upstream failed, serving demo data",
			slog.String("provider", entry.Provider.Name()),
			slog.String("widget", string(t)),
			slog.String("error", err.Error()),
			slog.String("request_id", dashboard.RequestIDFromContext(ctx)),
		)
		if s.metrics != nil {
			s.metrics.UpstreamErrors.WithLabelValues(entry.Provider.Name()).Inc()
			s.metrics.DemoFallbacks.WithLabelValues(string(t)).Inc()
		}
		v := demo.Payload(t, p)
		s.cache.Set(ctx, key, v, wcfg.DemoTTL)
		return v, nil
	}

	s.cache.Set(ctx, key, v, wcfg.TTL)
	return v, nil
}
