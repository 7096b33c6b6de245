package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)
	appLogger.SetLevel(coreport.ParseLogLevel(cfg.Logger.Level))
	defer func() { _ = appLogger.Flush() }()

	warnProductionConfig(cfg, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to start application", map[string]any{
			"error": err.Error(),
		})
		_ = appLogger.Flush()
		os.Exit(1)
	}

	app.sweeper.Start(ctx)

	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           app.router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"address": server.Addr,
			"env":     cfg.Environment,
			"store":   cfg.Database.Driver,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		appLogger.Error("Failed to start server", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	// Stop producers before the audit writer drains
	app.sweeper.Stop()
	app.close()

	appLogger.Info("Server exited gracefully", nil)
}

// warnProductionConfig flags settings that are legal but unsafe in production
func warnProductionConfig(cfg *config.Config, logger coreport.Logger) {
	if cfg.Environment != config.Production {
		return
	}

	var warnings []string
	if cfg.Database.Driver == "memory" {
		warnings = append(warnings, "database.driver is memory; state is lost on restart")
	}
	sslMode := strings.ToLower(cfg.Database.SSLMode)
	if cfg.Database.Driver == "postgres" && sslMode != "require" && sslMode != "verify-ca" && sslMode != "verify-full" {
		warnings = append(warnings, "database.sslMode should be set to 'require', 'verify-ca', or 'verify-full' in production")
	}
	if cfg.Server.ReadTimeout < 5*time.Second {
		warnings = append(warnings, "server.readTimeout is too low for production")
	}
	if cfg.Server.WriteTimeout < 5*time.Second {
		warnings = append(warnings, "server.writeTimeout is too low for production")
	}
	if cfg.Admin.Password == "change-me" {
		warnings = append(warnings, "admin.password is the example value")
	}

	if len(warnings) > 0 {
		logger.Warn("Potential security issues in production configuration", map[string]any{
			"warnings": warnings,
		})
	}
}
