package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jerseyshop/storefront/internal/domain"
)

func TestDefault_ParsesEmbeddedCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	all := c.All()
	require.NotEmpty(t, all)
	for _, p := range all {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Sizes, "product %s has no sizes", p.ID)
		assert.Greater(t, p.Price, 0.0)
		assert.Empty(t, p.Stock, "stock must come from the snapshot, not the seed")
	}

	p, ok := c.Get("fcb-retro-09")
	require.True(t, ok)
	assert.True(t, p.FullSleeve)
	assert.Equal(t, "retro", p.Type)
}

func TestNew_RejectsBadProducts(t *testing.T) {
	_, err := New([]domain.Product{{Name: "no id"}})
	assert.Error(t, err)

	_, err = New([]domain.Product{{ID: "a"}, {ID: "a"}})
	assert.Error(t, err)
}

func TestApplySnapshot(t *testing.T) {
	c, err := New([]domain.Product{
		{ID: "a", Name: "A", Sizes: []string{"S", "M"}},
		{ID: "b", Name: "B", Sizes: []string{"M"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, c.StockCeiling("a", "M"), "no snapshot yet means nothing available")

	c.ApplySnapshot(map[string]map[string]int{
		"a":       {"S": 2, "M": 5},
		"missing": {"M": 9},
	})
	assert.Equal(t, 5, c.StockCeiling("a", "M"))
	assert.Equal(t, 2, c.StockCeiling("a", "S"))
	assert.Equal(t, 0, c.StockCeiling("a", "XL"))
	assert.Equal(t, 0, c.StockCeiling("b", "M"), "absent from snapshot means empty stock")
	assert.Equal(t, 0, c.StockCeiling("missing", "M"), "snapshot entries outside the catalog are ignored")

	b, ok := c.Get("b")
	require.True(t, ok)
	assert.NotNil(t, b.Stock)
	assert.Empty(t, b.Stock)

	// applying the same snapshot twice gives the same result
	snap := map[string]map[string]int{"b": {"M": 1}}
	c.ApplySnapshot(snap)
	c.ApplySnapshot(snap)
	assert.Equal(t, 1, c.StockCeiling("b", "M"))
	assert.Equal(t, 0, c.StockCeiling("a", "M"), "a fresh snapshot replaces the previous one")
}

func TestApplySnapshot_DoesNotAliasInput(t *testing.T) {
	c, err := New([]domain.Product{{ID: "a", Sizes: []string{"M"}}})
	require.NoError(t, err)

	snap := map[string]map[string]int{"a": {"M": 3}}
	c.ApplySnapshot(snap)
	snap["a"]["M"] = 100

	assert.Equal(t, 3, c.StockCeiling("a", "M"))

	p, _ := c.Get("a")
	p.Stock["M"] = 50
	assert.Equal(t, 3, c.StockCeiling("a", "M"), "returned products are copies")
}

func TestFilter(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	c.ApplySnapshot(map[string]map[string]int{
		"rm-home-24":  {"M": 3},
		"fcb-home-24": {"L": 0},
	})

	madrid := c.Filter(Query{Club: "real madrid"})
	assert.Len(t, madrid, 2)

	retro := c.Filter(Query{Type: "retro"})
	for _, p := range retro {
		assert.Equal(t, "retro", p.Type)
	}
	assert.NotEmpty(t, retro)

	fs := true
	for _, p := range c.Filter(Query{FullSleeve: &fs}) {
		assert.True(t, p.FullSleeve)
	}

	inStock := c.Filter(Query{InStockOnly: true})
	require.Len(t, inStock, 1)
	assert.Equal(t, "rm-home-24", inStock[0].ID)

	assert.Len(t, c.Filter(Query{Text: "barcelona"}), 2)
}

func TestClubs(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	clubs := c.Clubs()
	assert.Contains(t, clubs, "Argentina")
	assert.IsNonDecreasing(t, clubs)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
products:
  - id: x1
    name: Test Shirt
    club: Test FC
    type: home
    price: 100
    sizes: [M]
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	p, ok := c.Get("x1")
	require.True(t, ok)
	assert.Equal(t, 100.0, p.Price)

	_, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
