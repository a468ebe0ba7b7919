package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/shopgen/internal/api"
	"github.com/andresuchdata/shopgen/internal/cache"
	"github.com/andresuchdata/shopgen/internal/config"
	"github.com/andresuchdata/shopgen/internal/pipeline"
	"github.com/andresuchdata/shopgen/internal/repository/postgres"
	"github.com/andresuchdata/shopgen/internal/service"
	"github.com/andresuchdata/shopgen/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.App.LogLevel)
	logger.SetFormat(cfg.App.LogFormat)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	manifests, err := cache.NewManifestCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("manifest cache unavailable, serving from disk")
		manifests = cache.NewNoopManifestCache()
	}

	// Run history is optional; the dataset endpoints only need the output directory
	var runs service.RunReader
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("database unavailable, /api/v1/runs disabled")
		} else {
			defer db.Close()
			runs = pipeline.NewRepository(db)
		}
	}

	datasetService := service.NewDatasetService(cfg.App.OutputDir, manifests, runs)

	router := api.NewRouter(&api.Services{DatasetService: datasetService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("output_dir", cfg.App.OutputDir).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
