package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Barton98/Energy-management-system/internal/alerts"
	"github.com/Barton98/Energy-management-system/internal/config"
	"github.com/Barton98/Energy-management-system/internal/handlers"
	"github.com/Barton98/Energy-management-system/internal/logger"
	"github.com/Barton98/Energy-management-system/internal/middleware"
	"github.com/Barton98/Energy-management-system/internal/store"
)

// Server is the high-level coordinator for the ingestion service: it
// owns the store, the alert engine, and the HTTP server.
type Server struct {
	cfg        config.ServerConfig
	store      *store.Store
	telemetry  *handlers.TelemetryHandler
	httpServer *http.Server
	wg         sync.WaitGroup
}

// New constructs a Server with the given config.
func New(cfg config.ServerConfig) *Server {
	st := store.New()

	telemetry := handlers.New(handlers.Config{
		Store:       st,
		Engine:      alerts.NewEngine(),
		MaxBodySize: cfg.MaxBodySize,
	})

	s := &Server{
		cfg:       cfg,
		store:     st,
		telemetry: telemetry,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Store exposes the underlying store, mainly for tests.
func (s *Server) Store() *store.Store {
	return s.store
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	r.Post("/telemetry", s.telemetry.HandleSubmit)
	r.Post("/telemetry/batch", s.telemetry.HandleSubmitBatch)
	r.Get("/alerts/device/{device_id}", s.telemetry.HandleDeviceAlerts)
	r.Get("/health", s.telemetry.HandleHealth)
	r.Get("/stats", s.telemetry.HandleStats)
	r.Handle("/metrics", promhttp.Handler())

	return middleware.Chain(r, middleware.Recovery, middleware.Logging)
}

// Run starts the HTTP server and blocks until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	log := logger.WithComponent("server")
	log.Info().Str("addr", s.cfg.Addr).Msg("starting ingestion service")

	errCh := make(chan error, 1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Periodic stats line
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.reportStats(ctx)
	}()

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server error")
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received")
	return s.shutdown()
}

func (s *Server) shutdown() error {
	log := logger.WithComponent("server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("stopping HTTP server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
		return err
	}

	s.wg.Wait()
	log.Info().Msg("ingestion service stopped gracefully")
	return nil
}

// reportStats periodically logs in-memory counts.
func (s *Server) reportStats(ctx context.Context) {
	log := logger.WithComponent("server")
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			readings, alertCount := s.store.Counts()
			log.Info().
				Int("telemetry_count", readings).
				Int("alerts_count", alertCount).
				Msg("stats")
		}
	}
}
