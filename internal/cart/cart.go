// Package cart is the shopper's cart: (product, size) lines clamped to the
// stock ceiling known from the catalog, persisted whole under one storage key.
package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/internal/storage"
	"github.com/jerseyshop/storefront/pkg/errors"
)

// StockSource supplies the per-size stock ceiling (normally *catalog.Catalog)
type StockSource interface {
	StockCeiling(productID, size string) int
}

// Outcome says how much of an Add request made it into the cart
type Outcome string

const (
	OutcomeAdded    Outcome = "added"    // everything requested was added
	OutcomePartial  Outcome = "partial"  // clamped to the stock ceiling
	OutcomeRejected Outcome = "rejected" // nothing added (no stock or already at ceiling)
)

// AddResult reports the effect of Add
type AddResult struct {
	LineID    string
	Requested int
	Added     int
	Quantity  int // line quantity after the call (0 when no line exists)
	Ceiling   int
	Outcome   Outcome
}

// Cart holds line items in insertion order.
// Mutations are serialized; each one that changes state writes the full line list.
type Cart struct {
	writeMu sync.Mutex // serializes mutate+persist
	mu      sync.RWMutex
	lines   []domain.CartLine

	store  storage.Store
	stock  StockSource
	logger *zap.Logger
	now    func() time.Time
	cancel func()
}

// New loads the cart from the store and follows later writes to the cart key
func New(ctx context.Context, store storage.Store, stock StockSource, logger *zap.Logger) (*Cart, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cart{
		store:  store,
		stock:  stock,
		logger: logger,
		now:    time.Now,
	}

	var lines []domain.CartLine
	err := storage.GetJSON(ctx, store, storage.KeyCart, &lines)
	switch {
	case err == nil:
		c.lines = sanitize(lines)
	case errors.IsNotFound(err):
	case storage.IsDecodeError(err):
		logger.Warn("Stored cart unreadable, starting empty", zap.Error(err))
	default:
		return nil, err
	}

	c.cancel = store.Subscribe(storage.KeyCart, c.reload)
	return c, nil
}

// Close stops following external writes
func (c *Cart) Close() {
	if c.cancel != nil {
		c.cancel()
	}
}

// reload applies a cart written elsewhere (another process or view); last write wins
func (c *Cart) reload(value []byte) {
	var lines []domain.CartLine
	if value != nil {
		if err := json.Unmarshal(value, &lines); err != nil {
			c.logger.Warn("Ignoring unreadable cart update", zap.Error(err))
			return
		}
	}
	c.mu.Lock()
	c.lines = sanitize(lines)
	c.mu.Unlock()
}

// Add puts quantity of product/size in the cart, clamped to the stock ceiling.
// A request that cannot add anything leaves the cart untouched.
func (c *Cart) Add(ctx context.Context, product domain.Product, size string, quantity int) (AddResult, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	id := domain.LineID(product.ID, size)
	ceiling := c.stock.StockCeiling(product.ID, size)
	res := AddResult{LineID: id, Requested: quantity, Ceiling: ceiling, Outcome: OutcomeRejected}

	c.mu.Lock()
	idx := c.indexOf(id)
	if idx >= 0 {
		res.Quantity = c.lines[idx].Quantity
	}
	if quantity <= 0 {
		c.mu.Unlock()
		return res, nil
	}

	if idx >= 0 {
		existing := c.lines[idx].Quantity
		proposed := min(existing+quantity, ceiling)
		if proposed-existing <= 0 {
			c.mu.Unlock()
			c.logger.Debug("Add rejected, line already at stock ceiling",
				zap.String("line_id", id), zap.Int("quantity", existing), zap.Int("ceiling", ceiling))
			return res, nil
		}
		c.lines[idx].Quantity = proposed
		res.Added = proposed - existing
		res.Quantity = proposed
	} else {
		qty := min(quantity, ceiling)
		if qty <= 0 {
			c.mu.Unlock()
			c.logger.Debug("Add rejected, no stock", zap.String("line_id", id), zap.Int("ceiling", ceiling))
			return res, nil
		}
		snapshot := product
		snapshot.Stock = nil
		c.lines = append(c.lines, domain.CartLine{
			ID:        id,
			ProductID: product.ID,
			Size:      size,
			Quantity:  qty,
			Product:   snapshot,
			AddedAt:   c.now(),
		})
		res.Added = qty
		res.Quantity = qty
	}
	snap := c.copyLines()
	c.mu.Unlock()

	if res.Added == quantity {
		res.Outcome = OutcomeAdded
	} else {
		res.Outcome = OutcomePartial
	}
	return res, c.persist(ctx, snap)
}

// UpdateQuantity sets a line's quantity; zero or less removes the line
func (c *Cart) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	return c.update(ctx, lineID, quantity, -1)
}

// UpdateQuantityWithin is UpdateQuantity clamped to maxStock.
// A clamp that leaves nothing removes the line.
func (c *Cart) UpdateQuantityWithin(ctx context.Context, lineID string, quantity, maxStock int) error {
	if maxStock < 0 {
		maxStock = 0
	}
	return c.update(ctx, lineID, quantity, maxStock)
}

func (c *Cart) update(ctx context.Context, lineID string, quantity, maxStock int) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	idx := c.indexOf(lineID)
	if idx < 0 {
		c.mu.Unlock()
		return &errors.ErrNotFound{Resource: "cart line", ID: lineID}
	}
	if maxStock >= 0 {
		quantity = min(quantity, maxStock)
	}
	if quantity <= 0 {
		c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	} else {
		c.lines[idx].Quantity = quantity
	}
	snap := c.copyLines()
	c.mu.Unlock()

	return c.persist(ctx, snap)
}

// Remove deletes a line; removing an absent line is a no-op
func (c *Cart) Remove(ctx context.Context, lineID string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	idx := c.indexOf(lineID)
	if idx < 0 {
		c.mu.Unlock()
		return nil
	}
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	snap := c.copyLines()
	c.mu.Unlock()

	return c.persist(ctx, snap)
}

// Clear empties the cart
func (c *Cart) Clear(ctx context.Context) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()

	return c.persist(ctx, []domain.CartLine{})
}

// Total is the sum of price × quantity over all lines
func (c *Cart) Total() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var total float64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// Count is the sum of quantities over all lines
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the cart lines
func (c *Cart) Lines() []domain.CartLine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyLines()
}

// Line returns one line by id
func (c *Cart) Line(lineID string) (domain.CartLine, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if idx := c.indexOf(lineID); idx >= 0 {
		return c.lines[idx], true
	}
	return domain.CartLine{}, false
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lines) == 0
}

func (c *Cart) persist(ctx context.Context, lines []domain.CartLine) error {
	if err := storage.SetJSON(ctx, c.store, storage.KeyCart, lines); err != nil {
		c.logger.Error("Failed to persist cart", zap.Error(err), zap.Int("lines", len(lines)))
		return err
	}
	return nil
}

// indexOf must be called with mu held
func (c *Cart) indexOf(lineID string) int {
	for i := range c.lines {
		if c.lines[i].ID == lineID {
			return i
		}
	}
	return -1
}

// copyLines must be called with mu held
func (c *Cart) copyLines() []domain.CartLine {
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// sanitize drops lines that could never have been written by Add
func sanitize(lines []domain.CartLine) []domain.CartLine {
	out := lines[:0]
	for _, l := range lines {
		if l.Quantity <= 0 || l.ProductID == "" {
			continue
		}
		if l.ID == "" {
			l.ID = domain.LineID(l.ProductID, l.Size)
		}
		out = append(out, l)
	}
	return out
}
