// Package main provides the entry point for the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	analysisRouter "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/analysis/router"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/config"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/database"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/database/migrate"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/health"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/middleware"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/scheduler"
	trackerClient "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/tracker/client"
	"github.com/ArakelyanK/dev-insights-dashboard-sub000/pkg/logger"
)

func main() {
	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zapLogger, err := logger.NewWithConfig(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	db, err := database.New()
	if err != nil {
		zapLogger.Fatalw("failed to connect to database", "error", err)
	}
	defer func() {
		if closeErr := database.Close(db); closeErr != nil {
			zapLogger.Errorw("failed to close database", "error", closeErr)
		}
	}()

	if err := migrate.Migrate(db); err != nil {
		zapLogger.Fatalw("failed to run migrations", "error", err)
	}

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		zapLogger.Fatalw("failed to load settings", "path", cfg.SettingsPath, "error", err)
	}
	store := config.NewSettingsStore(settings)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.SettingsPath != "" {
		go func() {
			if watchErr := config.WatchSettings(ctx, cfg.SettingsPath, store, zapLogger); watchErr != nil {
				zapLogger.Errorw("settings watcher stopped", "error", watchErr)
			}
		}()
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.Logger(zapLogger))
	r.Use(middleware.Recovery(zapLogger))

	tracker := trackerClient.New(cfg.Tracker, zapLogger)
	analysisService := analysisRouter.RegisterRoutes(r, db, tracker, store, cfg.Analysis, zapLogger)
	r.GET("/health", health.New(db, zapLogger).Check)

	sched := scheduler.New(analysisService, cfg.Scheduler, zapLogger)
	if err := sched.Start(); err != nil {
		zapLogger.Fatalw("failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zapLogger.Infow("server starting", "address", srv.Addr)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			zapLogger.Fatalw("failed to start server", "error", serveErr)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Infow("server shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Errorw("server shutdown failed", "error", err)
	}
}
