// Package stock keeps the catalog's per-size stock in step with the backend.
package stock

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/domain"
)

// Source returns the current stock snapshot (normally *backend.Client)
type Source interface {
	GetStock(ctx context.Context) ([]domain.StockEntry, error)
}

// Target receives folded snapshots (normally *catalog.Catalog)
type Target interface {
	ApplySnapshot(snapshot map[string]map[string]int)
}

// Fetcher pulls the stock snapshot and merges it into the catalog
type Fetcher struct {
	mu     sync.Mutex
	source Source
	target Target
	logger *zap.Logger
}

// NewFetcher creates a fetcher
func NewFetcher(source Source, target Target, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{source: source, target: target, logger: logger}
}

// Refresh fetches one snapshot and applies it.
// On failure the catalog keeps whatever stock it had before.
func (f *Fetcher) Refresh(ctx context.Context) (map[string]map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.source.GetStock(ctx)
	if err != nil {
		f.logger.Warn("Stock refresh failed, keeping previous stock", zap.Error(err))
		return nil, err
	}
	snapshot := Fold(entries)
	f.target.ApplySnapshot(snapshot)
	f.logger.Info("Stock refreshed", zap.Int("products", len(snapshot)))
	return snapshot, nil
}

// RunLoop refreshes once, then every interval until ctx is done. Call from a goroutine.
func (f *Fetcher) RunLoop(ctx context.Context, interval time.Duration) {
	_, _ = f.Refresh(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = f.Refresh(ctx)
		}
	}
}

// Fold turns snapshot entries into productId → size → count.
// A later entry for the same product replaces an earlier one.
func Fold(entries []domain.StockEntry) map[string]map[string]int {
	out := make(map[string]map[string]int, len(entries))
	for _, e := range entries {
		if e.ProductID == "" {
			continue
		}
		sizes := make(map[string]int, len(e.Stock))
		for size, n := range e.Stock {
			sizes[size] = n
		}
		out[e.ProductID] = sizes
	}
	return out
}
