package stock

import (
	"context"
	"fmt"

	inventorydomain "github.com/Apurer/reseller-ops-api/internal/domains/inventory/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/ports"
)

var _ ports.Catalog = (*Catalog)(nil)

// UnitLister is the slice of the inventory service the catalog reads stock from.
type UnitLister interface {
	List(ctx context.Context, filter inventorydomain.Filter) ([]*inventorydomain.Unit, error)
}

// Catalog prices products from a price list and takes availability from live inventory. A product
// is matched to units by name; products the inventory has never stocked keep the price list's
// availability.
type Catalog struct {
	prices    ports.Catalog
	inventory UnitLister
}

func NewCatalog(prices ports.Catalog, inventory UnitLister) *Catalog {
	return &Catalog{prices: prices, inventory: inventory}
}

func (c *Catalog) List(ctx context.Context) ([]domain.Product, error) {
	products, err := c.prices.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := c.counts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i] = withStock(products[i], counts)
	}
	return products, nil
}

func (c *Catalog) Get(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := c.prices.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := c.counts(ctx)
	if err != nil {
		return nil, err
	}
	p := withStock(*product, counts)
	return &p, nil
}

// counts maps every stocked product name to its number of Available units.
func (c *Catalog) counts(ctx context.Context) (map[string]int, error) {
	units, err := c.inventory.List(ctx, inventorydomain.Filter{})
	if err != nil {
		return nil, fmt.Errorf("load inventory stock: %w", err)
	}
	counts := make(map[string]int)
	for _, u := range units {
		if u.Status == inventorydomain.StatusAvailable {
			counts[u.Product]++
			continue
		}
		if _, ok := counts[u.Product]; !ok {
			counts[u.Product] = 0
		}
	}
	return counts, nil
}

func withStock(p domain.Product, counts map[string]int) domain.Product {
	if n, ok := counts[p.Name]; ok {
		p.Available = n
	}
	return p
}
