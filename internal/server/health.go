package server

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status        string            `json:"status"`
	UptimeSeconds int64             `json:"uptime_s"`
	Providers     map[string]string `json:"providers"`
	Circuits      map[string]string `json:"circuits,omitempty"`
	CacheEntries  int               `json:"cache_entries"`
	RateLimitKeys int               `json:"ratelimit_keys"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleHealth reports which providers run live versus demo, so a
// glance at /health shows what a misconfigured key degraded to.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Providers:     s.deps.Providers.Modes(),
		CacheEntries:  s.deps.Cache.Len(r.Context()),
		RateLimitKeys: s.deps.Limiter.Len(),
	}
	if s.deps.Breakers != nil {
		resp.Circuits = s.deps.Breakers.States()
	}
	writeJSON(w, http.StatusOK, resp)
}
