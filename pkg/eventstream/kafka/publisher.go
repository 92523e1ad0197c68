// Package kafka implements the eventstream Publisher on a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	segkafka "github.com/segmentio/kafka-go"

	"github.com/cielhaidir/mcp-server-qdrant/pkg/eventstream"
)

// Publisher writes mutation events to a Kafka topic, keyed by collection so
// consumers see per-collection mutations in order.
type Publisher struct {
	writer *segkafka.Writer
}

// Config holds Kafka publisher settings.
type Config struct {
	// Brokers is the list of broker addresses (host:port).
	Brokers []string

	// Topic is the topic mutation events are written to.
	Topic string
}

// NewPublisher creates a Kafka-backed eventstream publisher.
func NewPublisher(c Config) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}
	if c.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	return &Publisher{
		writer: &segkafka.Writer{
			Addr:     segkafka.TCP(c.Brokers...),
			Topic:    c.Topic,
			Balancer: &segkafka.LeastBytes{},
		},
	}, nil
}

// PublishMutation serializes the event as JSON and writes it to the topic.
func (p *Publisher) PublishMutation(ctx context.Context, event *eventstream.MutationEvent) error {
	if event == nil {
		return eventstream.ErrNilMutationEvent
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding mutation event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, segkafka.Message{
		Key:   []byte(event.Collection),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("writing mutation event: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Ensure Publisher implements eventstream.Publisher
var _ eventstream.Publisher = (*Publisher)(nil)
