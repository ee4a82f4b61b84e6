package server

import (
	"context"
	"net/http"
	"time"

	"github.com/yuzvak/eventsales-service/internal/config"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/http/handlers"
	"github.com/yuzvak/eventsales-service/internal/pkg/logger"
)

type Handlers struct {
	Events *handlers.EventHandler
	Sales  *handlers.SaleHandler
	Health *handlers.HealthHandler
}

type Server struct {
	server         *http.Server
	logger         *logger.Logger
	requestTimeout time.Duration
	eventHandler   *handlers.EventHandler
	saleHandler    *handlers.SaleHandler
	healthHandler  *handlers.HealthHandler
}

func NewServer(cfg *config.Config, h Handlers, logger *logger.Logger) *Server {
	server := &http.Server{
		Addr:         cfg.Address(),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		IdleTimeout:  120 * time.Second,
	}

	requestTimeout := cfg.Server.WriteTimeout.Duration
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return &Server{
		server:         server,
		logger:         logger,
		requestTimeout: requestTimeout,
		eventHandler:   h.Events,
		saleHandler:    h.Sales,
		healthHandler:  h.Health,
	}
}

// Handler returns the fully wrapped route tree.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

func (s *Server) ListenAndServe() error {
	s.server.Handler = s.setupRoutes()

	s.logger.Info("Starting HTTP server", "address", s.server.Addr)

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
