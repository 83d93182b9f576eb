package ports

import (
	"context"

	"github.com/Apurer/reseller-ops-api/internal/domains/audit/domain"
)

// RecordInput describes an action to append; actor and origin come from the request context.
type RecordInput struct {
	Action domain.Action
	Target string
	Detail string
}

// ListInput carries raw query values from adapters.
type ListInput struct {
	Search string
	Action string
}

// Recorder is the write-only contract other bounded contexts depend on.
type Recorder interface {
	Record(ctx context.Context, input RecordInput) (*domain.Entry, error)
}

// Service exposes audit use cases to adapters.
type Service interface {
	Recorder
	List(ctx context.Context, input ListInput) ([]*domain.Entry, error)
}
