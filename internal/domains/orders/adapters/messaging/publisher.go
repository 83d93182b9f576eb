package messaging

import (
	"context"

	"github.com/Apurer/reseller-ops-api/internal/domains/orders/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/orders/ports"
	"github.com/Apurer/reseller-ops-api/internal/platform/kafka"
)

var (
	_ ports.EventPublisher = (*KafkaPublisher)(nil)
	_ ports.EventPublisher = NoopPublisher{}
)

// KafkaPublisher writes order events keyed by order id so one order's history stays ordered.
type KafkaPublisher struct {
	sink *kafka.Publisher
}

func NewKafkaPublisher(sink *kafka.Publisher) *KafkaPublisher {
	return &KafkaPublisher{sink: sink}
}

func (p *KafkaPublisher) Publish(ctx context.Context, events ...domain.Event) error {
	messages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		messages = append(messages, kafka.Message{
			Topic: event.EventName(),
			Key:   orderID(event),
			Value: event,
			Time:  event.OccurredAt(),
		})
	}
	return p.sink.Publish(ctx, messages...)
}

func orderID(event domain.Event) string {
	switch e := event.(type) {
	case domain.OrderPlaced:
		return e.OrderID
	case domain.OrderDecided:
		return e.OrderID
	default:
		return event.EventName()
	}
}

// NoopPublisher discards events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...domain.Event) error { return nil }
