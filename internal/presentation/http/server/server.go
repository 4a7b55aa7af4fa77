// Package server hosts the gin router inside a net/http server with the
// timeouts pkg/config dictates.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/AldiyarDigital/aldiyar-go/internal/application/container"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/presentation/http/routes"
	"github.com/AldiyarDigital/aldiyar-go/pkg/config"
)

// Server owns the HTTP listener for the whole site API.
type Server struct {
	httpServer *http.Server
	logger     *logging.ChanneledLogger
}

// New builds the router from the container and wraps it in a configured
// http.Server.
func New(port string, appContainer *container.Container) *Server {
	router := routes.SetupRoutes(appContainer)

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + port,
			Handler:      router,
			ReadTimeout:  config.ServerReadTimeout,
			WriteTimeout: config.ServerWriteTimeout,
			IdleTimeout:  config.ServerIdleTimeout,
		},
		logger: appContainer.Logger,
	}
}

// Start blocks serving requests until the listener closes.
func (s *Server) Start() error {
	s.logger.Startup().Info("HTTP server listening", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Shutdown().Info("HTTP server draining connections")
	return s.httpServer.Shutdown(ctx)
}
