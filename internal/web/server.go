// Package web provides the HTTP API for submitting personnel CSV imports
// and reading back their results.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/roster/internal/config"
	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/metrics"
	"github.com/JonMunkholm/roster/internal/store"
	mw "github.com/JonMunkholm/roster/internal/web/middleware"
)

// RunStore persists finished imports. *store.Store satisfies it.
type RunStore interface {
	SaveRun(ctx context.Context, run store.Run) error
	LoadRun(ctx context.Context, id uuid.UUID) (store.RunSummary, error)
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the import API.
type Server struct {
	cfg     *config.Config
	db      RunStore // nil when no database is configured
	limiter *core.ImportLimiter
	runs    *runCache
	metrics *metrics.Metrics
	promReg *prometheus.Registry
	router  *chi.Mux
	server  *http.Server
}

// NewServer builds a server from cfg. db may be nil, in which case runs
// live only in memory.
func NewServer(cfg *config.Config, db RunStore) *Server {
	s := &Server{
		cfg:     cfg,
		db:      db,
		limiter: core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
		runs:    newRunCache(cfg.Import.RetainRuns),
		promReg: prometheus.NewRegistry(),
		router:  chi.NewRouter(),
	}
	s.promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	s.metrics = metrics.New(s.promReg, s.limiter.ActiveCount)
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.cfg.Server.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.promReg, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		r.Post("/imports", s.handleCreateImport)
		r.Get("/imports", s.handleListImports)
		r.Get("/imports/{runID}", s.handleGetImport)
		r.Get("/imports/{runID}/people", s.handleListPeople)
		r.Get("/imports/{runID}/failures", s.handleListFailures)
	})
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests, waits for in-flight imports to
// release their slots, then closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if status := s.limiter.Status(); status.Active > 0 {
		slog.Info("waiting for imports to complete", "active", status.Active)
		if err := s.limiter.WaitForDrain(ctx); err != nil {
			slog.Warn("imports did not complete in time", "error", err)
		}
	}

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders sets headers appropriate for a JSON-only API.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v with the given status. Encoding errors are only
// logged since the header is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
