package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// metricsMiddleware records request counts, durations and in-flight
// gauge. It labels by route pattern, not raw path, to keep the
// cardinality bounded.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := statusWriterPool.Get().(*statusWriter)
		sw.ResponseWriter = w
		sw.status = 0
		defer func() {
			sw.ResponseWriter = nil
			statusWriterPool.Put(sw)
		}()

		m := s.deps.Metrics
		m.ActiveRequests.Inc()
		start := time.Now()

		next.ServeHTTP(sw, r)

		m.ActiveRequests.Dec()
		pattern := routePattern(r)
		m.RequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(sw.Status())).Inc()
		m.RequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
