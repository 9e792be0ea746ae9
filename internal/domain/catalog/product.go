package catalog

import (
	"context"
	"sync"
)

// ProductRecord supplies the price and active flag the orchestrator snapshots
// into order line items.
type ProductRecord struct {
	ID         string `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price"` // Stored in cents/minor units
	Active     bool   `json:"active"`
}

// Catalog is a read-only product lookup. Implementations return nil (not an
// error) when the product is unknown.
type Catalog interface {
	GetProduct(ctx context.Context, productID string) (*ProductRecord, error)
}

// MemoryCatalog is a static in-memory catalog, used by tests and the
// simulated wiring in cmd.
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[string]ProductRecord
}

// NewMemoryCatalog creates a catalog preloaded with the given products.
func NewMemoryCatalog(products []ProductRecord) *MemoryCatalog {
	m := make(map[string]ProductRecord, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return &MemoryCatalog{products: m}
}

func (c *MemoryCatalog) GetProduct(_ context.Context, productID string) (*ProductRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[productID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Put adds or replaces a product.
func (c *MemoryCatalog) Put(p ProductRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
}
