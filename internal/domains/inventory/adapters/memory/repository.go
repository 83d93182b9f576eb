package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory unit store. Mutations are staged on copies and committed only after
// the before-commit hook succeeds.
type Repository struct {
	mu    sync.RWMutex
	units map[int64]*domain.Unit
	maxID int64
}

func NewRepository() *Repository {
	return &Repository{units: map[int64]*domain.Unit{}}
}

// Seed stores units verbatim, keeping their identifiers. Intended for demo data and tests.
func (r *Repository) Seed(units ...*domain.Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range units {
		if u == nil {
			continue
		}
		clone := u.Clone()
		r.units[clone.ID] = clone
		if clone.ID > r.maxID {
			r.maxID = clone.ID
		}
	}
}

func (r *Repository) Add(ctx context.Context, units []*domain.Unit, beforeCommit ports.BeforeCommit) ([]*domain.Unit, error) {
	if len(units) == 0 {
		return nil, errors.New("no units to add")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	imeis := map[string]struct{}{}
	serials := map[string]struct{}{}
	for _, existing := range r.units {
		if existing.IMEI != "" {
			imeis[existing.IMEI] = struct{}{}
		}
		if existing.SerialNumber != "" {
			serials[existing.SerialNumber] = struct{}{}
		}
	}

	staged := make([]*domain.Unit, 0, len(units))
	nextID := r.maxID
	for _, u := range units {
		if u == nil {
			return nil, errors.New("unit is nil")
		}
		if err := u.Validate(); err != nil {
			return nil, err
		}
		if u.IMEI != "" {
			if _, dup := imeis[u.IMEI]; dup {
				return nil, domain.ErrDuplicateIMEI
			}
			imeis[u.IMEI] = struct{}{}
		}
		if u.SerialNumber != "" {
			if _, dup := serials[u.SerialNumber]; dup {
				return nil, domain.ErrDuplicateSerial
			}
			serials[u.SerialNumber] = struct{}{}
		}
		nextID++
		clone := u.Clone()
		clone.ID = nextID
		staged = append(staged, clone)
	}

	if beforeCommit != nil {
		if err := beforeCommit(ctx, cloneAll(staged)); err != nil {
			return nil, err
		}
	}
	for _, u := range staged {
		r.units[u.ID] = u
	}
	r.maxID = nextID
	return cloneAll(staged), nil
}

func (r *Repository) List(_ context.Context, filter domain.Filter) ([]*domain.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Unit, 0, len(r.units))
	for _, u := range r.units {
		if filter.Matches(u) {
			list = append(list, u.Clone())
		}
	}
	domain.SortFIFO(list)
	return list, nil
}

func (r *Repository) SellFIFO(ctx context.Context, product string, quantity int, at time.Time, beforeCommit ports.BeforeCommit) ([]*domain.Unit, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	available := make([]*domain.Unit, 0)
	for _, u := range r.units {
		if u.Product == product && u.Status == domain.StatusAvailable {
			available = append(available, u)
		}
	}
	if len(available) < quantity {
		return nil, &domain.InsufficientStockError{Product: product, Available: len(available), Requested: quantity}
	}
	domain.SortFIFO(available)

	staged := make([]*domain.Unit, 0, quantity)
	for _, u := range available[:quantity] {
		clone := u.Clone()
		if err := clone.MarkSold(at); err != nil {
			return nil, err
		}
		staged = append(staged, clone)
	}
	if beforeCommit != nil {
		if err := beforeCommit(ctx, cloneAll(staged)); err != nil {
			return nil, err
		}
	}
	for _, u := range staged {
		r.units[u.ID] = u
	}
	return cloneAll(staged), nil
}

func cloneAll(units []*domain.Unit) []*domain.Unit {
	out := make([]*domain.Unit, 0, len(units))
	for _, u := range units {
		out = append(out, u.Clone())
	}
	return out
}
