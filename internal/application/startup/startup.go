// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/application/container"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/cleanup"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/manager"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/performance"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/site"
	"github.com/AldiyarDigital/aldiyar-go/internal/presentation/http/server"
	"github.com/AldiyarDigital/aldiyar-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// Initialize performs the complete startup sequence and blocks until
// shutdown.
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	// Step 1: Channeled logger and performance tracker
	logger, err := logging.NewChanneledLogger(nil)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()
	perfTracker := performance.NewTracker(nil)

	logger.Startup().Info("Starting Aldiyar server")

	// Step 2: Cache system
	logger.Startup().Info("Initializing cache system...")
	cacheManager := manager.NewManager(logger)

	// Step 3: Site context (config, database, schema, seed)
	logger.Startup().Info("Loading site configuration and opening database...")
	siteCtx, err := site.NewContext(cacheManager, logger)
	if err != nil {
		return fmt.Errorf("site initialization failed: %w", err)
	}
	defer siteCtx.Close()
	logger.Startup().Info("Database ready", "driver", siteCtx.Config.DriverName())

	// Step 4: Dependency injection container
	logger.Startup().Info("Initializing dependency injection container...")
	appContainer := container.NewContainer(siteCtx, logger, perfTracker)
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 5: Background workers
	logger.Startup().Info("Starting background workers...")
	go appContainer.LiveBroadcaster.Run()
	if appContainer.Forwarder != nil {
		go appContainer.Forwarder.Run()
	}

	cleanupWorker := cleanup.NewWorker(cacheManager, appContainer.CompareRepo, logger)
	go cleanupWorker.Start(ctx)
	logger.Startup().Info("Background workers started")

	// Step 6: HTTP server
	port := config.Port
	httpServer := server.New(port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()
	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	if appContainer.Forwarder != nil {
		appContainer.Forwarder.Stop()
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
