package ports

import (
	"context"
	"errors"

	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/domain"
)

var ErrQuoteNotFound = errors.New("quote not found")

// SessionStore keeps open quotes until they are submitted, discarded or expire.
type SessionStore interface {
	Save(ctx context.Context, quote *domain.Quote) error
	Get(ctx context.Context, id string) (*domain.Quote, error)
	Delete(ctx context.Context, id string) error
}

// SessionLocker serializes edits of one quote. A Redis-backed locker extends this across replicas.
type SessionLocker interface {
	Lock(ctx context.Context, name string) (unlock func(), err error)
}
