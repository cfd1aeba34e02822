// Package api assembles the gin engine, middleware chain and HTTP server
// lifecycle for the analytics service.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wellfield/rigops/internal/config"
	"github.com/wellfield/rigops/internal/handler"
	"github.com/wellfield/rigops/internal/logger"
	"github.com/wellfield/rigops/internal/metrics"
	"github.com/wellfield/rigops/internal/middleware"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Server wraps the HTTP server with lifecycle management.
type Server struct {
	router *gin.Engine
	server *http.Server
	logger logger.Logger
	done   chan struct{}
}

// NewServer builds the router with the standard middleware chain, registers
// all routes and returns a server ready to run.
func NewServer(
	cfg *config.Config,
	dashboard *handler.DashboardHandler,
	health *handler.HealthHandler,
	met *metrics.Metrics,
	log logger.Logger,
) *Server {
	if cfg.Service.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Recovery first so it catches panics from everything below.
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	if len(cfg.Service.AllowedOrigins) > 0 {
		router.Use(middleware.CORS(cfg.Service.AllowedOrigins))
	}
	if met != nil {
		router.Use(middleware.Metrics(met))
	}

	done := make(chan struct{})
	SetupRoutes(router, cfg, dashboard, health, done)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Service.Port),
		Handler:      router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	return &Server{
		router: router,
		server: httpServer,
		logger: log,
		done:   done,
	}
}

// Router returns the underlying gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start runs the server until it is shut down or fails.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		logger.String("address", s.server.Addr),
		logger.Duration("read_timeout", s.server.ReadTimeout),
		logger.Duration("write_timeout", s.server.WriteTimeout),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully and releases middleware resources.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server",
		logger.Duration("timeout", defaultShutdownTimeout),
	)

	close(s.done)

	shutdownCtx, cancel := context.WithTimeout(ctx, defaultShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

// RunWithGracefulShutdown starts the server and shuts it down on SIGINT,
// SIGTERM or context cancellation.
func (s *Server) RunWithGracefulShutdown(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		s.logger.Info("Shutdown signal received", logger.String("signal", sig.String()))
	case <-ctx.Done():
		s.logger.Info("Context cancelled, shutting down")
	}

	// Fresh context: the original may already be cancelled.
	return s.Shutdown(context.Background())
}
