package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/substratehq/substrate/pkg/config"
	"github.com/substratehq/substrate/pkg/logger"
)

const (
	defaultHTTPTimeout    = 15 * time.Second
	httpIdleTimeout       = 60 * time.Second
	serverShutdownTimeout = 10 * time.Second
)

// resolveTimeout falls back to the built-in default when the configured
// read/write timeout is unset
func resolveTimeout(configured time.Duration) time.Duration {
	if configured <= 0 {
		return defaultHTTPTimeout
	}
	return configured
}

// Server owns the HTTP listener and the wired dependency graph
type Server struct {
	cfg  *config.Config
	log  logger.Logger
	deps *dependencies
}

// NewServer wires dependencies and prepares the server for Run
func NewServer(ctx context.Context, cfg *config.Config, log logger.Logger) (*Server, error) {
	deps, err := buildDependencies(logger.ContextWithLogger(ctx, log), cfg)
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, log: log, deps: deps}, nil
}

// Run serves HTTP until the context is canceled or a termination signal
// arrives, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	defer s.deps.close(logger.ContextWithLogger(context.Background(), s.log))

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	timeout := resolveTimeout(s.cfg.Server.Timeout)
	srv := &http.Server{
		Addr:         addr,
		Handler:      buildRouter(s.cfg, s.log, s.deps),
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		IdleTimeout:  httpIdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("Starting HTTP server", "address", "http://"+addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		s.log.Info("Received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		s.log.Info("Context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Info("Server shutdown completed")
	return nil
}
