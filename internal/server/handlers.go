package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dashboard "github.com/PokeyPoke/homedash/internal"
)

type dataResponse struct {
	Data any `json:"data"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	t := dashboard.WidgetType(chi.URLParam(r, "type"))

	payload, err := s.deps.Widgets.Get(r.Context(), t, r.URL.Query())
	if err != nil {
		s.writeWidgetError(w, r, t, err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: payload})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if s.deps.Feed == nil {
		writeError(w, http.StatusNotFound, "feed not configured", "")
		return
	}
	feed := s.deps.Feed.Build(r.Context())
	writeJSON(w, http.StatusOK, feed)
}

func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	s.deps.Cache.Purge(r.Context())
	slog.LogAttrs(r.Context(), slog.LevelInfo, "cache purged",
		slog.String("request_id", dashboard.RequestIDFromContext(r.Context())),
	)
	writeJSON(w, http.StatusOK, map[string]string{"status": "purged"})
}

func (s *Server) writeWidgetError(w http.ResponseWriter, r *http.Request, t dashboard.WidgetType, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.LogAttrs(r.Context(), slog.LevelError, "widget request failed",
			slog.String("request_id", dashboard.RequestIDFromContext(r.Context())),
			slog.String("widget", string(t)),
			slog.String("error", err.Error()),
		)
		writeError(w, status, "internal server error", "")
		return
	}
	writeError(w, status, err.Error(), "")
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, dashboard.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}
