// Package httpapi exposes the risk query API plus health, readiness, and
// metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/divergentwx/outage-risk-service/internal/domain"
	"github.com/divergentwx/outage-risk-service/internal/risk"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RowProvider answers risk queries.
type RowProvider interface {
	Rows(ctx context.Context, q risk.Query) []domain.RiskRow
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the risk API over HTTP.
type Server struct {
	httpServer *http.Server
	provider   RowProvider
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the risk routes plus /healthz,
// /readyz, and /metrics.
func NewServer(addr string, provider RowProvider, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      allowAllCORS(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 120 * time.Second, // a cold nationwide query fans out many upstream fetches
			IdleTimeout:  60 * time.Second,
		},
		provider: provider,
		logger:   logger,
	}

	// The dashboard clients hit /api/wx; /wx is kept as a legacy alias.
	mux.HandleFunc("GET /api/wx", s.handleRisk)
	mux.HandleFunc("GET /wx", s.handleRisk)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rows := s.provider.Rows(r.Context(), q)
	if rows == nil {
		rows = []domain.RiskRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// parseQuery maps URL parameters onto a risk query. A non-empty state
// parameter forces State mode regardless of the mode parameter; State mode
// without a state is a client error. Numeric parameters fall back to zero
// (meaning "default") when absent or malformed, matching how the dashboard
// clients omit them.
func parseQuery(r *http.Request) (risk.Query, error) {
	params := r.URL.Query()

	q := risk.Query{
		Mode:    params.Get("mode"),
		Region:  params.Get("region"),
		State:   params.Get("state"),
		Hours:   intParam(params.Get("hours")),
		Sample:  intParam(params.Get("sample")),
		NoCache: boolParam(params.Get("nocache")),
	}

	if strings.TrimSpace(q.State) != "" {
		q.Mode = domain.ModeState
	} else if strings.EqualFold(strings.TrimSpace(q.Mode), domain.ModeState) {
		return risk.Query{}, errStateRequired
	}
	return q, nil
}

var errStateRequired = errors.New("state mode requires a state parameter")

func intParam(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func boolParam(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// allowAllCORS mirrors the open CORS policy of the dashboard deployments:
// any origin may read the risk feed.
func allowAllCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
