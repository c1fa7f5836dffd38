// Package httpadapter serves the operational endpoints of an ETL run.
package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/flight-delay-etl/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RunMonitor is implemented by *pipeline.Pipeline.
type RunMonitor interface {
	sharedobs.ReadinessChecker
	Status() pipeline.Status
}

// Server exposes health, readiness, run status, and metrics while an
// ingestion run is in progress.
type Server struct {
	httpServer *http.Server
	run        RunMonitor
	started    time.Time
	logger     *slog.Logger
}

// NewServer creates a server with /healthz, /readyz, /status, and /metrics routes.
func NewServer(addr string, run RunMonitor, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		run:     run,
		started: time.Now(),
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(run))
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

type statusResponse struct {
	pipeline.Status
	Uptime string `json:"uptime"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := statusResponse{
		Status: s.run.Status(),
		Uptime: time.Since(s.started).Round(time.Second).String(),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("write status response", "error", err)
	}
}

// Start listens until Shutdown. It returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP lets tests drive the routes without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
