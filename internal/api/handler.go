// Package api exposes the chat pipeline over HTTP for the web UI.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reviewdesk/reviewdesk/internal/chat"
	"github.com/reviewdesk/reviewdesk/internal/export"
	"github.com/reviewdesk/reviewdesk/internal/observability"
)

type HealthCheck func(ctx context.Context) error

type Dependencies struct {
	Logger     *slog.Logger
	Chat       *chat.Service
	Dashboards *chat.Dashboards
	Exporter   *export.Exporter
	Health     HealthCheck
}

func NewHandler(deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		handleHealth(deps, w, r)
	})
	mux.HandleFunc("GET /api/ready", func(w http.ResponseWriter, r *http.Request) {
		handleReady(deps, w, r)
	})
	mux.Handle("GET /api/metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/tables", func(w http.ResponseWriter, r *http.Request) {
		handleListTables(deps, w, r)
	})
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		handleChat(deps, w, r)
	})
	mux.HandleFunc("POST /api/export", func(w http.ResponseWriter, r *http.Request) {
		handleExport(deps, w, r)
	})
	mux.HandleFunc("POST /api/get-social-insights", func(w http.ResponseWriter, r *http.Request) {
		handleDashboardInsights(deps, w, r, deps.Dashboards.SocialInsights)
	})
	mux.HandleFunc("POST /api/get-trend-insights", func(w http.ResponseWriter, r *http.Request) {
		handleDashboardInsights(deps, w, r, deps.Dashboards.TrendInsights)
	})
	mux.HandleFunc("POST /api/get-complaint-insights", func(w http.ResponseWriter, r *http.Request) {
		handleDashboardInsights(deps, w, r, deps.Dashboards.ComplaintInsights)
	})

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

func handleHealth(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Health == nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := deps.Health(ctx); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"status": "unhealthy", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "db": "connected"})
}

func handleReady(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := deps.Health(ctx); err != nil {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "database is not reachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError is for transport-level failures only. Pipeline failures ride
// inside the chat payload so the UI can always render something.
func writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error":    message,
		"trace_id": observability.TraceIDFromContext(ctx),
	})
}
