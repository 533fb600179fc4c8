// Package kafka publishes predicate registry changes to a Kafka topic, so
// downstream consumers can drop caches or re-pull definitions when a
// predicate is stored or deleted.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/cfgpred/cfgpred-go/runtime"
)

// Config holds change feed configuration.
type Config struct {
	Brokers      []string      `yaml:"brokers" json:"brokers"`
	Topic        string        `yaml:"topic" json:"topic"`
	BatchTimeout time.Duration `yaml:"batch_timeout" json:"batch_timeout"`
}

// ChangeFeed implements runtime.ChangePublisher over a Kafka topic. Events
// are keyed by predicate name, so per-predicate ordering is preserved within
// a partition.
type ChangeFeed struct {
	writer *kafka.Writer
}

// NewChangeFeed validates the configuration and creates the feed.
func NewChangeFeed(config Config) (*ChangeFeed, error) {
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if config.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if config.BatchTimeout == 0 {
		config.BatchTimeout = time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: config.BatchTimeout,
	}
	return &ChangeFeed{writer: writer}, nil
}

// Publish sends one change event.
func (f *ChangeFeed) Publish(ctx context.Context, event runtime.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling change event: %w", err)
	}

	err = f.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Name),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publishing change event for %q: %w", event.Name, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (f *ChangeFeed) Close() error {
	return f.writer.Close()
}
