package ports

import (
	"context"

	"github.com/Apurer/reseller-ops-api/internal/domains/orders/domain"
)

// EventPublisher forwards committed order events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event) error
}
