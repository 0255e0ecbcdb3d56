// Package wishlist keeps the set of product ids a shopper has saved for later.
package wishlist

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/internal/storage"
	"github.com/jerseyshop/storefront/pkg/errors"
)

// ProductLookup resolves product ids (normally *catalog.Catalog)
type ProductLookup interface {
	Get(id string) (domain.Product, bool)
}

// Wishlist is an ordered set of product ids stored under the wishlist key
type Wishlist struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	ids     []string

	store  storage.Store
	logger *zap.Logger
	cancel func()
}

// New loads the wishlist and follows later writes to its key
func New(ctx context.Context, store storage.Store, logger *zap.Logger) (*Wishlist, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Wishlist{store: store, logger: logger}

	var ids []string
	err := storage.GetJSON(ctx, store, storage.KeyWishlist, &ids)
	switch {
	case err == nil:
		w.ids = dedupe(ids)
	case errors.IsNotFound(err):
	case storage.IsDecodeError(err):
		logger.Warn("Stored wishlist unreadable, starting empty", zap.Error(err))
	default:
		return nil, err
	}

	w.cancel = store.Subscribe(storage.KeyWishlist, w.reload)
	return w, nil
}

// Close stops following external writes
func (w *Wishlist) Close() {
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *Wishlist) reload(value []byte) {
	var ids []string
	if value != nil {
		if err := json.Unmarshal(value, &ids); err != nil {
			w.logger.Warn("Ignoring unreadable wishlist update", zap.Error(err))
			return
		}
	}
	w.mu.Lock()
	w.ids = dedupe(ids)
	w.mu.Unlock()
}

// Toggle adds the id when absent and removes it when present.
// It returns true when the product is on the wishlist afterwards.
func (w *Wishlist) Toggle(ctx context.Context, productID string) (bool, error) {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	idx := indexOf(w.ids, productID)
	if idx >= 0 {
		w.ids = append(w.ids[:idx], w.ids[idx+1:]...)
	} else {
		w.ids = append(w.ids, productID)
	}
	snap := append([]string{}, w.ids...)
	w.mu.Unlock()

	return idx < 0, w.persist(ctx, snap)
}

// Add saves a product; adding one already saved is a no-op
func (w *Wishlist) Add(ctx context.Context, productID string) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	if indexOf(w.ids, productID) >= 0 {
		w.mu.Unlock()
		return nil
	}
	w.ids = append(w.ids, productID)
	snap := append([]string{}, w.ids...)
	w.mu.Unlock()

	return w.persist(ctx, snap)
}

// Remove drops a product; removing one not saved is a no-op
func (w *Wishlist) Remove(ctx context.Context, productID string) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	idx := indexOf(w.ids, productID)
	if idx < 0 {
		w.mu.Unlock()
		return nil
	}
	w.ids = append(w.ids[:idx], w.ids[idx+1:]...)
	snap := append([]string{}, w.ids...)
	w.mu.Unlock()

	return w.persist(ctx, snap)
}

// Clear empties the wishlist
func (w *Wishlist) Clear(ctx context.Context) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	w.ids = nil
	w.mu.Unlock()

	return w.persist(ctx, []string{})
}

// Contains reports whether a product is saved
func (w *Wishlist) Contains(productID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return indexOf(w.ids, productID) >= 0
}

// IDs returns the saved product ids in the order they were added
func (w *Wishlist) IDs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string{}, w.ids...)
}

// Len is the number of saved products
func (w *Wishlist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.ids)
}

// Products resolves saved ids against the catalog, skipping ids it no longer has
func (w *Wishlist) Products(lookup ProductLookup) []domain.Product {
	var out []domain.Product
	for _, id := range w.IDs() {
		if p, ok := lookup.Get(id); ok {
			out = append(out, p)
		}
	}
	return out
}

func (w *Wishlist) persist(ctx context.Context, ids []string) error {
	if err := storage.SetJSON(ctx, w.store, storage.KeyWishlist, ids); err != nil {
		w.logger.Error("Failed to persist wishlist", zap.Error(err))
		return err
	}
	return nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
