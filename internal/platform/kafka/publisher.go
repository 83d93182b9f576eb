package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Message is one record to publish. Value is JSON-encoded.
type Message struct {
	Topic string
	Key   string
	Value any
	Time  time.Time
}

// Publisher writes JSON messages to Kafka. Topics are prefixed so environments can share a cluster.
type Publisher struct {
	writer *kafka.Writer
	prefix string
}

// NewPublisher builds a synchronous writer over the given brokers. The topic is set per message.
func NewPublisher(brokers []string, topicPrefix string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
		prefix: strings.Trim(strings.TrimSpace(topicPrefix), "."),
	}
}

// Topic returns the fully qualified topic for an event name.
func (p *Publisher) Topic(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + "." + name
}

// Publish encodes and writes the messages in one batch.
func (p *Publisher) Publish(ctx context.Context, messages ...Message) error {
	if p == nil || p.writer == nil {
		return errors.New("kafka publisher not configured")
	}
	if len(messages) == 0 {
		return nil
	}
	batch := make([]kafka.Message, 0, len(messages))
	for _, m := range messages {
		value, err := json.Marshal(m.Value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", m.Topic, err)
		}
		at := m.Time
		if at.IsZero() {
			at = time.Now()
		}
		batch = append(batch, kafka.Message{
			Topic: p.Topic(m.Topic),
			Key:   []byte(m.Key),
			Value: value,
			Time:  at,
		})
	}
	return p.writer.WriteMessages(ctx, batch...)
}

// Close flushes pending writes.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// NewOptional returns a publisher when brokers are configured, or nil after logging a warning.
func NewOptional(brokers []string, topicPrefix string, logger *slog.Logger) *Publisher {
	if len(brokers) == 0 {
		if logger != nil {
			logger.Warn("KAFKA_BROKERS not set, domain events will not be published")
		}
		return nil
	}
	if logger != nil {
		logger.Info("kafka publisher configured", slog.Any("kafka.brokers", brokers), slog.String("kafka.topic_prefix", topicPrefix))
	}
	return NewPublisher(brokers, topicPrefix)
}
