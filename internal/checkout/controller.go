// Package checkout collects and validates the shipping form, composes the
// order and submits it.
package checkout

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/internal/storage"
	"github.com/jerseyshop/storefront/pkg/errors"
)

// CartView is what checkout needs from the cart (normally *cart.Cart)
type CartView interface {
	Lines() []domain.CartLine
	Clear(ctx context.Context) error
}

// OrderCreator submits orders (normally *backend.Client)
type OrderCreator interface {
	CreateOrder(ctx context.Context, order domain.OrderRequest, idempotencyKey string) (domain.Order, error)
}

// Authenticator reports whether a bearer token is stored (normally *session.Session)
type Authenticator interface {
	IsAuthenticated(ctx context.Context) bool
}

// Controller owns the checkout form state.
// Every field change is written to the draft key so the form survives restarts.
type Controller struct {
	mu      sync.Mutex
	form    domain.CheckoutForm
	touched map[string]bool

	store  storage.Store
	cart   CartView
	orders OrderCreator
	auth   Authenticator
	logger *zap.Logger
	newKey func() string
}

// NewController creates a controller and restores any saved draft
func NewController(ctx context.Context, store storage.Store, cart CartView, orders OrderCreator, auth Authenticator, logger *zap.Logger) (*Controller, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		touched: make(map[string]bool),
		store:   store,
		cart:    cart,
		orders:  orders,
		auth:    auth,
		logger:  logger,
		newKey:  uuid.NewString,
	}
	if err := c.LoadDraft(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadDraft replaces the form with the saved draft, if any
func (c *Controller) LoadDraft(ctx context.Context) error {
	var draft domain.CheckoutForm
	err := storage.GetJSON(ctx, c.store, storage.KeyCheckoutDraft, &draft)
	switch {
	case err == nil:
	case errors.IsNotFound(err):
		return nil
	case storage.IsDecodeError(err):
		c.logger.Warn("Saved checkout draft unreadable, ignoring", zap.Error(err))
		return nil
	default:
		return err
	}

	c.mu.Lock()
	c.form = draft
	c.mu.Unlock()
	return nil
}

// Form returns the current form values
func (c *Controller) Form() domain.CheckoutForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Set updates one field (normalizing digits-only fields), marks it touched and saves the draft
func (c *Controller) Set(ctx context.Context, field, value string) error {
	c.mu.Lock()
	p := fieldPtr(&c.form, field)
	if p == nil {
		c.mu.Unlock()
		return &errors.ErrValidation{
			Message: fmt.Sprintf("unknown checkout field %q", field),
			Fields:  map[string]string{field: "unknown field"},
		}
	}
	*p = Normalize(field, value)
	c.touched[field] = true
	form := c.form
	c.mu.Unlock()

	return c.saveDraft(ctx, form)
}

// Fill sets several fields at once, saving the draft a single time
func (c *Controller) Fill(ctx context.Context, values map[string]string) error {
	c.mu.Lock()
	for field, value := range values {
		p := fieldPtr(&c.form, field)
		if p == nil {
			c.mu.Unlock()
			return &errors.ErrValidation{
				Message: fmt.Sprintf("unknown checkout field %q", field),
				Fields:  map[string]string{field: "unknown field"},
			}
		}
		*p = Normalize(field, value)
		c.touched[field] = true
	}
	form := c.form
	c.mu.Unlock()

	return c.saveDraft(ctx, form)
}

// Touch marks a field as visited so its error is reported
func (c *Controller) Touch(field string) {
	c.mu.Lock()
	c.touched[field] = true
	c.mu.Unlock()
}

// TouchAll marks every validated field touched
func (c *Controller) TouchAll() {
	c.mu.Lock()
	for _, r := range Rules {
		c.touched[r.Field] = true
	}
	c.mu.Unlock()
}

// Errors returns the validation messages of touched fields only
func (c *Controller) Errors() map[string]string {
	c.mu.Lock()
	form := c.form
	touched := make(map[string]bool, len(c.touched))
	for k, v := range c.touched {
		touched[k] = v
	}
	c.mu.Unlock()

	out := make(map[string]string)
	for field, msg := range Validate(form) {
		if touched[field] {
			out[field] = msg
		}
	}
	return out
}

// Reset empties the form and forgets touched fields; the saved draft is kept
func (c *Controller) Reset() {
	c.mu.Lock()
	c.form = domain.CheckoutForm{}
	c.touched = make(map[string]bool)
	c.mu.Unlock()
}

// ClearDraft deletes the saved draft
func (c *Controller) ClearDraft(ctx context.Context) error {
	return c.store.Delete(ctx, storage.KeyCheckoutDraft)
}

// Preview composes the order the current cart and form would submit
func (c *Controller) Preview() domain.OrderRequest {
	return BuildOrder(c.cart.Lines(), c.Form())
}

// Submit places the order.
//
// Without a token the draft is saved and *errors.ErrAuthRequired{ReturnTo}
// is returned. An invalid form returns *errors.ErrValidation listing every
// failing field and nothing is sent. On success the cart, form and draft are
// cleared; on failure they are left as they were so the shopper can retry.
func (c *Controller) Submit(ctx context.Context, returnTo string) (domain.Order, error) {
	form := c.Form()

	if !c.auth.IsAuthenticated(ctx) {
		if err := c.saveDraft(ctx, form); err != nil {
			c.logger.Warn("Failed to save checkout draft before sign-in", zap.Error(err))
		}
		return domain.Order{}, &errors.ErrAuthRequired{ReturnTo: returnTo}
	}

	c.TouchAll()
	if fields := Validate(form); len(fields) > 0 {
		return domain.Order{}, &errors.ErrValidation{
			Message: "Please fix the errors in the form",
			Fields:  fields,
		}
	}

	lines := c.cart.Lines()
	if len(lines) == 0 {
		return domain.Order{}, &errors.ErrValidation{Message: "Your cart is empty"}
	}

	order := BuildOrder(lines, form)
	key := c.newKey()
	c.logger.Info("Submitting order",
		zap.String("idempotency_key", key),
		zap.Int("items", order.ItemCount()),
		zap.Float64("total", order.TotalAmount))

	created, err := c.orders.CreateOrder(ctx, order, key)
	if err != nil {
		c.logger.Warn("Order submission failed", zap.String("idempotency_key", key), zap.Error(err))
		return domain.Order{}, err
	}

	if err := c.cart.Clear(ctx); err != nil {
		c.logger.Error("Order placed but cart not cleared", zap.String("order_id", created.ID), zap.Error(err))
	}
	c.Reset()
	if err := c.ClearDraft(ctx); err != nil {
		c.logger.Error("Order placed but draft not cleared", zap.String("order_id", created.ID), zap.Error(err))
	}
	c.logger.Info("Order placed", zap.String("order_id", created.ID))
	return created, nil
}

func (c *Controller) saveDraft(ctx context.Context, form domain.CheckoutForm) error {
	if err := storage.SetJSON(ctx, c.store, storage.KeyCheckoutDraft, form); err != nil {
		c.logger.Error("Failed to save checkout draft", zap.Error(err))
		return err
	}
	return nil
}

// FieldOrder lists the form's field names in display order
func FieldOrder() []string {
	out := make([]string, 0, len(Rules)+1)
	for _, r := range Rules {
		out = append(out, r.Field)
	}
	return append(out, FieldNotes)
}

// SortedFields returns the keys of a field → message map in display order
func SortedFields(errs map[string]string) []string {
	pos := make(map[string]int)
	for i, f := range FieldOrder() {
		pos[f] = i
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, iok := pos[keys[i]]
		pj, jok := pos[keys[j]]
		if iok != jok {
			return iok
		}
		if pi != pj {
			return pi < pj
		}
		return keys[i] < keys[j]
	})
	return keys
}
