package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cblogserver/backend/internal/config"
	"github.com/cblogserver/backend/internal/db"
	"github.com/cblogserver/backend/internal/metrics"
)

type Server struct {
	Router   *chi.Mux
	Database db.Pool               // Shared by every request, closed on shutdown
	Config   *config.Configuration // Validated, read-only
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.HTTPMetrics
}

// NewServer binds the route table to pool. The pool must already exist.
func NewServer(cfg *config.Configuration, pool db.Pool, logger *slog.Logger) *Server {
	s := &Server{
		Router:   chi.NewRouter(),
		Database: pool,
		Config:   cfg,
		Logger:   logger,
		Registry: metrics.NewRegistry(),
	}
	s.Metrics = metrics.NewHTTPMetrics(s.Registry)
	metrics.RegisterPool(s.Registry, pool)

	s.middleware()
	s.routes()
	return s
}

// Listen binds the configured address.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.Config.Server.Addr())
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", s.Config.Server.Addr(), err)
	}
	return ln, nil
}

// Serve handles requests on ln until ctx is done, then drains in-flight
// requests for up to shutdownTimeout and closes the pool.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	s.Logger.Info("Starting connection pool", "max_connections", s.Database.Stats().MaxOpen)
	s.Logger.Info("Using configuration", "config", *s.Config)
	s.Logger.Info(fmt.Sprintf("CBlogServer listening at http://%s", net.JoinHostPort(host, port)))

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	select {
	case err := <-serveErr:
		_ = s.Database.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("Shutdown signal received, cleaning up...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if closeErr := s.Database.Close(); closeErr != nil {
		s.Logger.Error("Failed to close connection pool", "error", closeErr)
	}
	if err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
