package messaging

import (
	"context"
	"strings"

	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
	"github.com/Apurer/reseller-ops-api/internal/platform/kafka"
)

var (
	_ ports.EventPublisher = (*KafkaPublisher)(nil)
	_ ports.EventPublisher = NoopPublisher{}
)

// KafkaPublisher maps inventory events onto Kafka topics named after the event.
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
			Key:   eventKey(event),
			Value: event,
			Time:  event.OccurredAt(),
		})
	}
	return p.sink.Publish(ctx, messages...)
}

// eventKey keeps events of one product on one partition.
func eventKey(event domain.Event) string {
	switch e := event.(type) {
	case domain.UnitsSold:
		return e.Product
	case domain.UnitsAdded:
		return strings.Join(e.Products, ",")
	default:
		return event.EventName()
	}
}

// NoopPublisher discards events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...domain.Event) error { return nil }
