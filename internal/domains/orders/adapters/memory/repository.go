package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/reseller-ops-api/internal/domains/orders/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/orders/ports"
	"github.com/Apurer/reseller-ops-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps orders in process memory. Decisions are applied to a copy and stored only after
// the before-commit hook succeeds.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]*ports.OrderProjection
	now    func() time.Time
}

func NewRepository() *Repository {
	return &Repository{orders: map[string]*ports.OrderProjection{}, now: time.Now}
}

func (r *Repository) Create(ctx context.Context, order *domain.Order, beforeCommit ports.BeforeCommit) (*ports.OrderProjection, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[order.ID]; exists {
		return nil, domain.ErrDuplicateOrder
	}
	staged := order.Clone()
	if beforeCommit != nil {
		if err := beforeCommit(ctx, staged.Clone()); err != nil {
			return nil, err
		}
	}
	stored := projection.New(staged, r.now())
	r.orders[staged.ID] = stored
	return cloneProjection(stored), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*ports.OrderProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneProjection(stored), nil
}

func (r *Repository) List(_ context.Context, filter ports.Filter) ([]*ports.OrderProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*ports.OrderProjection, 0, len(r.orders))
	for _, stored := range r.orders {
		if filter.Status != "" && stored.Entity.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && stored.Entity.Priority != filter.Priority {
			continue
		}
		result = append(result, cloneProjection(stored))
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Entity, result[j].Entity
		if !a.OrderedAt.Equal(b.OrderedAt) {
			return a.OrderedAt.After(b.OrderedAt)
		}
		return a.ID < b.ID
	})
	return result, nil
}

func (r *Repository) Update(ctx context.Context, id string, mutate func(*domain.Order) error, beforeCommit ports.BeforeCommit) (*ports.OrderProjection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	staged := stored.Entity.Clone()
	if mutate != nil {
		if err := mutate(staged); err != nil {
			return nil, err
		}
	}
	if err := staged.Validate(); err != nil {
		return nil, err
	}
	if beforeCommit != nil {
		if err := beforeCommit(ctx, staged.Clone()); err != nil {
			return nil, err
		}
	}
	updated := stored.Updated(staged, r.now())
	r.orders[id] = updated
	return cloneProjection(updated), nil
}

func cloneProjection(p *ports.OrderProjection) *ports.OrderProjection {
	return &ports.OrderProjection{Entity: p.Entity.Clone(), Metadata: p.Metadata}
}
