// Package server exposes the dashboard HTTP API: widget data, the
// ESP32 feed, health endpoints and a small admin surface.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PokeyPoke/homedash/internal/app"
	"github.com/PokeyPoke/homedash/internal/cache"
	"github.com/PokeyPoke/homedash/internal/circuitbreaker"
	"github.com/PokeyPoke/homedash/internal/config"
	"github.com/PokeyPoke/homedash/internal/provider"
	"github.com/PokeyPoke/homedash/internal/ratelimit"
	"github.com/PokeyPoke/homedash/internal/telemetry"
)

// Deps carries everything the HTTP layer needs. Nil optional fields
// (Metrics, Gatherer, Feed) disable the corresponding endpoints.
type Deps struct {
	Widgets   *app.WidgetService
	Feed      *app.FeedService
	Providers *provider.Registry
	Cache     cache.Cache
	Limiter   *ratelimit.Registry
	Breakers  *circuitbreaker.Registry
	Config    *config.Config
	Metrics   *telemetry.Metrics
	Gatherer  prometheus.Gatherer
}

type Server struct {
	mux     *chi.Mux
	deps    Deps
	started time.Time
}

func New(deps Deps) *Server {
	s := &Server{
		mux:     chi.NewRouter(),
		deps:    deps,
		started: time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.Use(recovery)
	s.mux.Use(requestID)
	if s.deps.Metrics != nil {
		s.mux.Use(s.metricsMiddleware)
	}
	s.mux.Use(s.logging)

	s.mux.Get("/healthz", s.handleHealthz)
	s.mux.Get("/readyz", s.handleReadyz)
	s.mux.Get("/health", s.handleHealth)
	if s.deps.Gatherer != nil {
		s.mux.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	}

	s.mux.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)
		r.With(s.rateLimit).Get("/widget/{type}", s.handleWidget)
		r.Get("/esp32/feed", s.handleFeed)
		r.Post("/admin/cache/purge", s.handlePurge)
	})
}
