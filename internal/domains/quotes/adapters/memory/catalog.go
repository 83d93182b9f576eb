package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/ports"
)

var _ ports.Catalog = (*Catalog)(nil)

// Catalog is an in-process product list.
type Catalog struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
}

func NewCatalog(products ...domain.Product) *Catalog {
	c := &Catalog{products: make(map[int64]domain.Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

// NewDemoCatalog returns the catalog the dashboard ships with.
func NewDemoCatalog() *Catalog {
	return NewCatalog(
		domain.Product{ID: 1, Name: "iPhone 15 Pro", Available: 25, Price: decimal.NewFromInt(22999), Category: "Smartphones"},
		domain.Product{ID: 2, Name: "Samsung Galaxy S24", Available: 18, Price: decimal.NewFromInt(19999), Category: "Smartphones"},
		domain.Product{ID: 3, Name: `MacBook Pro 14"`, Available: 8, Price: decimal.NewFromInt(45999), Category: "Laptops"},
		domain.Product{ID: 4, Name: `iPad Pro 12.9"`, Available: 12, Price: decimal.NewFromInt(29999), Category: "Tablets"},
		domain.Product{ID: 5, Name: "AirPods Pro", Available: 0, Price: decimal.NewFromInt(6999), Category: "Audio"},
	)
}

func (c *Catalog) List(context.Context) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (c *Catalog) Get(_ context.Context, id int64) (*domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return nil, ports.ErrProductNotFound
	}
	return &p, nil
}

// SetAvailability overrides a product's live stock. Unknown ids are ignored.
func (c *Catalog) SetAvailability(id int64, available int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.products[id]; ok {
		p.Available = available
		c.products[id] = p
	}
}
