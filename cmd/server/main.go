package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/evacreport/backend/internal/config"
	"github.com/evacreport/backend/internal/logger"
	"github.com/evacreport/backend/internal/middleware"
	"github.com/evacreport/backend/internal/repository"
	"github.com/evacreport/backend/internal/routes"
	"github.com/evacreport/backend/internal/services"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	// Initialize logger first
	logger.Initialize()
	if envErr != nil {
		logger.Warn("No .env file found, using environment variables", nil)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-me"
		logger.Warn("JWT_SECRET not set, using development secret", nil)
	}

	ctx := context.Background()
	store, closeStore, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open store", map[string]interface{}{
			"driver": cfg.StoreDriver,
			"error":  err.Error(),
		})
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("Failed to close store", map[string]interface{}{"error": err.Error()})
		}
	}()

	// Background counter refresh
	counters := services.NewIncidentCounterService(store)
	if err := counters.Start(cfg.CounterRefreshSpec); err != nil {
		logger.Fatal("Failed to schedule counter refresh", map[string]interface{}{
			"spec":  cfg.CounterRefreshSpec,
			"error": err.Error(),
		})
	}
	defer counters.Stop()

	submitter := services.NewSubmissionCoordinator(store, store, counters)
	sessions := services.NewSessionManager(store, submitter, cfg.DemographicsSchema)
	if err := sessions.StartEviction(cfg.SessionSweepSpec, cfg.SessionIdleTimeout); err != nil {
		logger.Fatal("Failed to schedule idle session sweep", map[string]interface{}{
			"spec":  cfg.SessionSweepSpec,
			"error": err.Error(),
		})
	}
	defer sessions.StopEviction()

	// Set Gin mode
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	r.Use(middleware.CustomLoggerMiddleware())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(gin.Recovery())

	routes.SetupRoutes(r, routes.Deps{
		Users:     store,
		Reports:   services.NewReportService(store),
		Incidents: services.NewIncidentService(store),
		Sessions:  sessions,
		Health:    store,
		JWTSecret: cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	logger.Info("Starting evacuation center reporting server", map[string]interface{}{
		"port":     cfg.Port,
		"gin_mode": gin.Mode(),
		"store":    cfg.StoreDriver,
		"schema":   cfg.DemographicsSchema,
	})

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan
	logger.Info("Shutting down server gracefully...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		logger.Info("Server exited gracefully", nil)
	}
}
