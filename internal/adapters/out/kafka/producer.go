// Package kafka publishes order change events to the message broker. The
// broker feed complements the live topic fan-out: subscribers of the
// broadcast sinks get at-most-once UI updates, downstream consumers of the
// order-changed topic get a durable, partition-ordered record of every
// committed mutation.
package kafka

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"dispatch/internal/notifications"
)

// OrderChangedProducer forwards change events to a single Kafka topic. It is
// wired into the feed watcher as its integration publisher.
type OrderChangedProducer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewOrderChangedProducer connects a synchronous idempotent producer to the
// given brokers.
func NewOrderChangedProducer(brokers []string, topic string, logger *slog.Logger) (*OrderChangedProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1 // required for idempotence

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &OrderChangedProducer{
		producer: producer,
		topic:    topic,
		logger:   logger.With("component", "kafka_order_changed_producer"),
	}, nil
}

// PublishOrderChanged sends the event keyed by order id, so all events of one
// order land on the same partition and keep their commit order.
func (p *OrderChangedProducer) PublishOrderChanged(event notifications.ChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order change event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.OrderID),
		Value:     sarama.ByteEncoder(data),
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("send order change event: %w", err)
	}

	p.logger.Debug("Order change event published",
		"order_id", event.OrderID, "partition", partition, "offset", offset)
	return nil
}

// Close shuts the underlying producer down, flushing in-flight sends.
func (p *OrderChangedProducer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}
