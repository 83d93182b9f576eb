package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Apurer/reseller-ops-api/internal/domains/audit/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/audit/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory append-only audit log.
type Repository struct {
	mu      sync.RWMutex
	entries []domain.Entry
	failErr error
}

func NewRepository() *Repository {
	return &Repository{}
}

// FailWith makes subsequent appends return err, simulating an unavailable sink. Pass nil to recover.
func (r *Repository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failErr = err
}

func (r *Repository) Append(_ context.Context, entry *domain.Entry) error {
	if entry == nil {
		return errors.New("audit entry is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *Repository) List(_ context.Context, filter ports.Filter) ([]*domain.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Entry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if entry.Matches(filter.Search, filter.Action) {
			list = append(list, &entry)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Timestamp.After(list[j].Timestamp) })
	return list, nil
}

// Len reports how many entries were appended.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
