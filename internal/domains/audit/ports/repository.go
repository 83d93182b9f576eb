package ports

import (
	"context"

	"github.com/Apurer/reseller-ops-api/internal/domains/audit/domain"
)

// Filter narrows audit listings.
type Filter struct {
	Search string
	Action domain.Action
}

// Repository is the append-only audit sink. Entries are never updated or deleted.
type Repository interface {
	Append(ctx context.Context, entry *domain.Entry) error
	// List returns matching entries newest first.
	List(ctx context.Context, filter Filter) ([]*domain.Entry, error)
}
