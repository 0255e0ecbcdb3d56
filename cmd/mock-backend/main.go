package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/api"
	"github.com/jerseyshop/storefront/internal/app"
	"github.com/jerseyshop/storefront/internal/catalog"
	"github.com/jerseyshop/storefront/internal/config"
	"github.com/jerseyshop/storefront/internal/repository"
	"github.com/jerseyshop/storefront/internal/repository/memory"
	"github.com/jerseyshop/storefront/internal/repository/postgres"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	mb := cfg.MockBackend
	logger.Info("Starting development backend",
		zap.String("port", mb.Port),
		zap.String("environment", cfg.Environment),
		zap.String("driver", mb.Driver),
	)

	ctx := context.Background()

	var repos *repository.Repositories
	switch mb.Driver {
	case config.DriverPostgres:
		db, err := postgres.NewConnection(mb.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := postgres.RunMigrations(ctx, db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		repos = postgres.NewRepositories(db, logger)
	default:
		repos = memory.NewRepositories()
	}

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	if err := api.Seed(ctx, mb, repos, cat.All(), api.DefaultSeedStock, logger); err != nil {
		logger.Fatal("Failed to seed data", zap.Error(err))
	}

	router := api.NewRouter(cfg, repos, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + mb.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
