package ports

import (
	"context"
	"errors"

	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/domain"
)

var ErrProductNotFound = errors.New("catalog product not found")

// Catalog serves the products that can be quoted together with their live availability.
type Catalog interface {
	// List returns products ordered by id.
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
}
