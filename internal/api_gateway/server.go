package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bank-reconciliation-engine/internal/api_gateway/handler"
	"github.com/bank-reconciliation-engine/internal/api_gateway/middleware"
	"github.com/bank-reconciliation-engine/internal/api_gateway/service"
	"github.com/bank-reconciliation-engine/internal/config"
	"github.com/bank-reconciliation-engine/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger          *slog.Logger
	httpServer      *http.Server
	httpRouter      *gin.Engine
	shutdownTimeout time.Duration
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	passService service.PassService,
	transactionService service.TransactionService,
	ruleService service.RuleService,
	m *metrics.Metrics,
) (*Server, error) {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	var rateLimit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		var err error
		rateLimit, err = middleware.RateLimit(log, cfg.RateLimit.Rate)
		if err != nil {
			return nil, err
		}
	}

	httpRouter := gin.New()
	setupRouter(log, httpRouter, handlers{
		pass:        handler.NewPassHandler(log, passService),
		transaction: handler.NewTransactionHandler(log, transactionService),
		rule:        handler.NewRuleHandler(log, ruleService),
	}, m, rateLimit)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:          log,
		httpServer:      httpServer,
		httpRouter:      httpRouter,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server within the configured shutdown timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
