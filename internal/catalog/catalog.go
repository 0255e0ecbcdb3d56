// Package catalog holds the jersey catalog and the stock merged into it.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/jerseyshop/storefront/internal/domain"
)

//go:embed jerseys.yaml
var embeddedCatalog []byte

type catalogFile struct {
	Products []domain.Product `yaml:"products"`
}

// Catalog is the static product list plus the latest stock snapshot.
// Safe for concurrent use; every snapshot rebuilds the product slice.
type Catalog struct {
	mu       sync.RWMutex
	static   []domain.Product
	products []domain.Product
	index    map[string]int
}

// Query filters the catalog for browsing; zero values match everything
type Query struct {
	Club        string
	Type        string
	FullSleeve  *bool
	InStockOnly bool
	Text        string
}

// Default returns the catalog embedded in the binary
func Default() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

// LoadFile reads a YAML catalog from disk
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Load returns the catalog at path, or the embedded one when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Parse builds a catalog from YAML
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(f.Products)
}

// New builds a catalog from products. Product ids must be unique and non-empty.
func New(products []domain.Product) (*Catalog, error) {
	seen := make(map[string]bool, len(products))
	static := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog product %q has no id", p.Name)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate catalog product id %q", p.ID)
		}
		seen[p.ID] = true
		p.Stock = nil
		static = append(static, p)
	}
	c := &Catalog{static: static}
	c.ApplySnapshot(nil)
	return c, nil
}

// ApplySnapshot rebuilds the catalog with stock from a snapshot.
// Products missing from the snapshot get an empty stock map (nothing available).
func (c *Catalog) ApplySnapshot(snapshot map[string]map[string]int) {
	products := make([]domain.Product, len(c.static))
	index := make(map[string]int, len(c.static))
	for i, p := range c.static {
		stock := make(map[string]int)
		for size, n := range snapshot[p.ID] {
			stock[size] = n
		}
		p.Stock = stock
		products[i] = p
		index[p.ID] = i
	}

	c.mu.Lock()
	c.products = products
	c.index = index
	c.mu.Unlock()
}

// All returns every product in catalog order
func (c *Catalog) All() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Product, len(c.products))
	for i, p := range c.products {
		out[i] = clone(p)
	}
	return out
}

// Get returns a product by id
func (c *Catalog) Get(id string) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return domain.Product{}, false
	}
	return clone(c.products[i]), true
}

// StockCeiling is the most of a product+size a shopper may hold in the cart.
// Unknown products and sizes have a ceiling of zero.
func (c *Catalog) StockCeiling(productID, size string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[productID]
	if !ok {
		return 0
	}
	return c.products[i].StockFor(size)
}

// Filter returns the products matching q
func (c *Catalog) Filter(q Query) []domain.Product {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	var out []domain.Product
	for _, p := range c.All() {
		if q.Club != "" && !strings.EqualFold(p.Club, q.Club) {
			continue
		}
		if q.Type != "" && !strings.EqualFold(p.Type, q.Type) {
			continue
		}
		if q.FullSleeve != nil && p.FullSleeve != *q.FullSleeve {
			continue
		}
		if q.InStockOnly && !p.InStock() {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Club), text) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Clubs lists the distinct clubs, sorted
func (c *Catalog) Clubs() []string {
	seen := make(map[string]bool)
	var clubs []string
	for _, p := range c.All() {
		if !seen[p.Club] {
			seen[p.Club] = true
			clubs = append(clubs, p.Club)
		}
	}
	sort.Strings(clubs)
	return clubs
}

func clone(p domain.Product) domain.Product {
	if p.Stock != nil {
		stock := make(map[string]int, len(p.Stock))
		for k, v := range p.Stock {
			stock[k] = v
		}
		p.Stock = stock
	}
	p.Images = append([]string(nil), p.Images...)
	p.Sizes = append([]string(nil), p.Sizes...)
	return p
}
