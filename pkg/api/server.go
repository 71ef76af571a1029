package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	config "github.com/mwantia/docsync/internal/config/server"
	"github.com/mwantia/docsync/pkg/log"
)

type Server struct {
	server       *http.Server
	log          log.LoggerService
	shutdownOnce sync.Once
}

func parseTimeout(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// NewServer builds the HTTP server. Metrics are served from gatherer when
// the configuration enables them.
func NewServer(cfg config.APIServerConfig, v Facade, logger log.LoggerService, gatherer prometheus.Gatherer) *Server {
	if !cfg.Metrics {
		gatherer = nil
	}

	return &Server{
		server: &http.Server{
			Addr:         cfg.Address,
			Handler:      NewRouter(v, logger, gatherer),
			ReadTimeout:  parseTimeout(cfg.ReadTimeout, 30*time.Second),
			WriteTimeout: parseTimeout(cfg.WriteTimeout, 60*time.Second),
			IdleTimeout:  parseTimeout(cfg.IdleTimeout, 120*time.Second),
		},
		log: logger,
	}
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		s.log.Info("API server listening on '%s'", s.server.Addr)

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	}
}

// Stop is safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("API server shutdown error: %w", err)
			return
		}
		s.log.Info("API server stopped")
	})
	return shutdownErr
}

// Cleanup lets the service container stop the server at shutdown.
func (s *Server) Cleanup(ctx context.Context) error {
	return s.Stop(ctx)
}
