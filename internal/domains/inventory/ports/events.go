package ports

import (
	"context"

	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/domain"
)

// EventPublisher forwards committed inventory events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event) error
}
