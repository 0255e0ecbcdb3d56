package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/internal/storage"
	"github.com/jerseyshop/storefront/pkg/errors"
)

type fakeStock map[string]int

func (f fakeStock) StockCeiling(productID, size string) int {
	return f[domain.LineID(productID, size)]
}

var shirt = domain.Product{
	ID:    "P",
	Name:  "Test Home",
	Price: 50,
	Sizes: []string{"S", "M", "L"},
	Stock: map[string]int{"M": 3},
}

func newCart(t *testing.T, store storage.Store, stock fakeStock) *Cart {
	t.Helper()
	c, err := New(context.Background(), store, stock, nil)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestAdd_ClampsToStockCeiling(t *testing.T) {
	ctx := context.Background()
	c := newCart(t, storage.NewMemoryStore(), fakeStock{"P-M": 3})

	res, err := c.Add(ctx, shirt, "M", 5)
	require.NoError(t, err)
	assert.Equal(t, OutcomePartial, res.Outcome)
	assert.Equal(t, 3, res.Added)
	assert.Equal(t, 3, res.Quantity)

	line, ok := c.Line("P-M")
	require.True(t, ok)
	assert.Equal(t, 3, line.Quantity)
	assert.Nil(t, line.Product.Stock, "stock is not snapshotted into the line")
}

func TestAdd_MergesExistingLine(t *testing.T) {
	ctx := context.Background()
	c := newCart(t, storage.NewMemoryStore(), fakeStock{"P-M": 3})

	res, err := c.Add(ctx, shirt, "M", 2)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdded, res.Outcome)

	res, err = c.Add(ctx, shirt, "M", 2)
	require.NoError(t, err)
	assert.Equal(t, OutcomePartial, res.Outcome)
	assert.Equal(t, 1, res.Added)

	require.Len(t, c.Lines(), 1)
	assert.Equal(t, 3, c.Count())

	res, err = c.Add(ctx, shirt, "M", 1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Equal(t, 3, res.Quantity)
	assert.Equal(t, 3, c.Count())
}

func TestAdd_NoStockCreatesNoLine(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	c := newCart(t, store, fakeStock{"P-M": 3})

	res, err := c.Add(ctx, shirt, "L", 1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Equal(t, 0, c.Count())
	assert.True(t, c.IsEmpty())

	_, err = store.Get(ctx, storage.KeyCart)
	assert.True(t, errors.IsNotFound(err), "a rejected add writes nothing")

	res, err = c.Add(ctx, shirt, "M", 0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.True(t, c.IsEmpty())
}

func TestAdd_SeparateLinesPerSize(t *testing.T) {
	ctx := context.Background()
	c := newCart(t, storage.NewMemoryStore(), fakeStock{"P-M": 3, "P-S": 2})

	_, err := c.Add(ctx, shirt, "M", 1)
	require.NoError(t, err)
	_, err = c.Add(ctx, shirt, "S", 2)
	require.NoError(t, err)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "P-M", lines[0].ID)
	assert.Equal(t, "P-S", lines[1].ID)
	assert.Equal(t, 3, c.Count())
	assert.Equal(t, 150.0, c.Total())
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()

	for _, q := range []int{0, -1} {
		c := newCart(t, storage.NewMemoryStore(), fakeStock{"P-M": 3})
		_, err := c.Add(ctx, shirt, "M", 2)
		require.NoError(t, err)

		require.NoError(t, c.UpdateQuantity(ctx, "P-M", q))
		_, ok := c.Line("P-M")
		assert.False(t, ok, "quantity %d removes the line", q)
	}

	c := newCart(t, storage.NewMemoryStore(), fakeStock{"P-M": 3})
	_, err := c.Add(ctx, shirt, "M", 1)
	require.NoError(t, err)
	require.NoError(t, c.UpdateQuantity(ctx, "P-M", 2))
	assert.Equal(t, 2, c.Count())

	err = c.UpdateQuantity(ctx, "nope-M", 1)
	assert.True(t, errors.IsNotFound(err))
}

func TestUpdateQuantityWithin(t *testing.T) {
	ctx := context.Background()
	c := newCart(t, storage.NewMemoryStore(), fakeStock{"P-M": 3})
	_, err := c.Add(ctx, shirt, "M", 1)
	require.NoError(t, err)

	require.NoError(t, c.UpdateQuantityWithin(ctx, "P-M", 10, 3))
	assert.Equal(t, 3, c.Count())

	require.NoError(t, c.UpdateQuantityWithin(ctx, "P-M", 2, 0))
	assert.True(t, c.IsEmpty())
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	c := newCart(t, store, fakeStock{"P-M": 3, "P-S": 3})

	_, err := c.Add(ctx, shirt, "M", 1)
	require.NoError(t, err)
	_, err = c.Add(ctx, shirt, "S", 1)
	require.NoError(t, err)

	require.NoError(t, c.Remove(ctx, "P-M"))
	require.NoError(t, c.Remove(ctx, "P-M"))
	assert.Len(t, c.Lines(), 1)

	require.NoError(t, c.Clear(ctx))
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0.0, c.Total())

	raw, err := store.Get(ctx, storage.KeyCart)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	fs, err := storage.NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	stock := fakeStock{"P-M": 3}

	first := newCart(t, fs, stock)
	_, err = first.Add(ctx, shirt, "M", 2)
	require.NoError(t, err)

	second := newCart(t, fs, stock)
	require.Len(t, second.Lines(), 1)
	assert.Equal(t, 2, second.Count())
	assert.Equal(t, "Test Home", second.Lines()[0].Product.Name)
}

func TestFollowsExternalWrites(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	stock := fakeStock{"P-M": 3}

	a := newCart(t, store, stock)
	b := newCart(t, store, stock)

	_, err := a.Add(ctx, shirt, "M", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Count(), "b sees a's write")

	require.NoError(t, b.Clear(ctx))
	assert.True(t, a.IsEmpty(), "last write wins")
}

func TestNew_UnreadableCartStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeyCart, []byte(`{broken`)))

	c := newCart(t, store, fakeStock{})
	assert.True(t, c.IsEmpty())
}

func TestNew_DropsInvalidLines(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeyCart, []byte(`[
		{"productId":"P","size":"M","quantity":2},
		{"productId":"P","size":"S","quantity":0},
		{"productId":"","size":"S","quantity":1}
	]`)))

	c := newCart(t, store, fakeStock{})
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "P-M", lines[0].ID)
}
