// internal/pkg/events/producer.go
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ivan22102000/kivo-tienda/internal/config"
	"github.com/segmentio/kafka-go"
)

// Producer publishes domain events to Kafka. A nil *Producer is valid and
// publishes nothing, so callers never have to branch on whether the event
// stream is configured.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a producer from configuration. Returns nil when no
// brokers are configured.
func NewProducer(cfg *config.Config) *Producer {
	if !cfg.KafkaEnabled() {
		return nil
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Kafka.Brokers...),
		Topic:                  cfg.Kafka.OrderTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}

	return &Producer{writer: writer}
}

// PublishEvent marshals the event and writes it keyed by key
func (p *Producer) PublishEvent(ctx context.Context, key string, event interface{}) error {
	if p == nil {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: write failed: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
