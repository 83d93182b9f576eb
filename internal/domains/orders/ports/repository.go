package ports

import (
	"context"
	"errors"

	"github.com/Apurer/reseller-ops-api/internal/domains/orders/domain"
	"github.com/Apurer/reseller-ops-api/internal/shared/projection"
)

var ErrNotFound = errors.New("order not found")

// OrderProjection is an order plus persistence timestamps.
type OrderProjection = projection.Projection[*domain.Order]

// BeforeCommit runs inside the mutation's critical section. A returned error aborts the mutation.
type BeforeCommit func(ctx context.Context, order *domain.Order) error

// Filter narrows List results; zero values match everything.
type Filter struct {
	Status   domain.Status
	Priority domain.Priority
}

// Repository persists orders.
type Repository interface {
	Create(ctx context.Context, order *domain.Order, beforeCommit BeforeCommit) (*OrderProjection, error)
	GetByID(ctx context.Context, id string) (*OrderProjection, error)
	// List returns matching orders, newest first.
	List(ctx context.Context, filter Filter) ([]*OrderProjection, error)
	// Update loads the order exclusively, applies mutate, runs beforeCommit and stores the result.
	Update(ctx context.Context, id string, mutate func(*domain.Order) error, beforeCommit BeforeCommit) (*OrderProjection, error)
}
