package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/domain"
)

var ErrNotFound = errors.New("inventory unit not found")

// BeforeCommit runs inside a mutation's critical section with the units about to be committed.
// A returned error aborts the mutation.
type BeforeCommit func(ctx context.Context, units []*domain.Unit) error

// Repository is the source of truth for serialized stock.
type Repository interface {
	// Add assigns identifiers (max+1 onward) and stores the units atomically. Non-empty IMEI and
	// serial numbers must be unique across the store and the batch.
	Add(ctx context.Context, units []*domain.Unit, beforeCommit BeforeCommit) ([]*domain.Unit, error)
	// List returns the units matching the normalized filter in FIFO order.
	List(ctx context.Context, filter domain.Filter) ([]*domain.Unit, error)
	// SellFIFO marks the oldest quantity available units of product as sold at the given time.
	// It fails with *domain.InsufficientStockError without changing anything when stock is short.
	SellFIFO(ctx context.Context, product string, quantity int, at time.Time, beforeCommit BeforeCommit) ([]*domain.Unit, error)
}
