package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/palemoky/philosophy-catalog-api/internal/api/middleware"
	"github.com/palemoky/philosophy-catalog-api/internal/api/rest"
	"github.com/palemoky/philosophy-catalog-api/internal/config"
	"github.com/palemoky/philosophy-catalog-api/internal/database"
	"github.com/palemoky/philosophy-catalog-api/internal/loader"
	"github.com/palemoky/philosophy-catalog-api/internal/logger"
	"github.com/palemoky/philosophy-catalog-api/internal/processor"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	logger.Init(logger.Options{
		Debug:   os.Getenv("GIN_MODE") != "release",
		Level:   os.Getenv("LOG_LEVEL"),
		Service: "catalog-api",
	})
	defer logger.Sync()

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.String("path", configPath), zap.Error(err))
	}

	logger.Info("Starting Philosophy Catalog API server",
		zap.String("driver", cfg.Database.Driver),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := processor.OpenStore(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open catalog store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	catalog, err := loader.Load(cfg.Seed.Path)
	if err != nil {
		logger.Fatal("Failed to load seed catalog", zap.String("path", cfg.Seed.Path), zap.Error(err))
	}

	if cfg.Seed.Bootstrap {
		result, err := loader.Bootstrap(ctx, store, catalog)
		if err != nil {
			logger.Fatal("Failed to seed catalog", zap.Error(err))
		}
		if !result.Skipped {
			logger.Info("Catalog seeded",
				zap.Int("schools", result.Schools),
				zap.Int("people", result.People),
				zap.Int("links", result.Links),
			)
		}
	}

	if cfg.Seed.EnrichOnStart {
		go enrichInBackground(ctx, cfg, store, catalog)
	}

	router := rest.SetupRouter(cfg, store)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           corsHandler.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server started",
			zap.Int("port", cfg.Server.Port),
			zap.String("rest_api", fmt.Sprintf("http://localhost:%d", cfg.Server.Port)),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// enrichInBackground runs one enrichment pass off the request path. Its
// failures are logged and never affect serving.
func enrichInBackground(ctx context.Context, cfg *config.Config, store database.Store, catalog *loader.Catalog) {
	resolvers, err := processor.BuildResolvers(ctx, cfg, catalog)
	if err != nil {
		logger.Error("Enrichment disabled", zap.Error(err))
		return
	}

	report, err := processor.NewPipeline(store, resolvers).Run(ctx)
	if err != nil {
		logger.Error("Background enrichment aborted", zap.Error(err))
		return
	}
	logger.Info("Background enrichment finished",
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed),
	)
}
