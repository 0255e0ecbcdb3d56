// Package app wires configuration, storage, session, backend client and
// catalog together for the command-line tools.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jerseyshop/storefront/internal/backend"
	"github.com/jerseyshop/storefront/internal/catalog"
	"github.com/jerseyshop/storefront/internal/config"
	"github.com/jerseyshop/storefront/internal/session"
	"github.com/jerseyshop/storefront/internal/stock"
	"github.com/jerseyshop/storefront/internal/storage"
)

// App is the storefront as one process sees it
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   storage.Store
	Session *session.Session
	Client  *backend.Client
	Catalog *catalog.Catalog
	Fetcher *stock.Fetcher
}

// NewLogger builds the zap logger for the configured environment and level
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Environment == "production" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// New loads configuration and opens everything a storefront tool needs.
// Stock is not fetched; call Refresh when the tool needs availability.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}

	sess := session.New(store, logger)
	client := backend.NewClient(cfg.API, sess, logger)
	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Session: sess,
		Client:  client,
		Catalog: cat,
		Fetcher: stock.NewFetcher(client, cat, logger),
	}, nil
}

// Refresh pulls the stock snapshot into the catalog.
// On failure the catalog keeps whatever stock it had and the error is returned.
func (a *App) Refresh(ctx context.Context) error {
	_, err := a.Fetcher.Refresh(ctx)
	return err
}

// Close releases the store and flushes the logger
func (a *App) Close() {
	if c, ok := a.Store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.Logger.Warn("Failed to close storage", zap.Error(err))
		}
	}
	_ = a.Logger.Sync()
}
