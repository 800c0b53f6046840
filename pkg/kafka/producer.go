package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Producer publishes events to Kafka. It wraps a kafka-go Writer configured
// for at-least-once delivery.
type Producer struct {
	writer *kafkago.Writer
	log    *slog.Logger
}

// ProducerConfig holds Kafka producer settings.
type ProducerConfig struct {
	Brokers      []string
	BatchTimeout time.Duration
}

// NewProducer creates a Kafka producer. Topics are chosen per message, so a
// single producer serves every event type the service emits.
func NewProducer(cfg ProducerConfig, log *slog.Logger) *Producer {
	batchTimeout := cfg.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = 50 * time.Millisecond
	}

	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: batchTimeout,
		Compression:  kafkago.Snappy,
	}

	return &Producer{writer: writer, log: log}
}

// Publish sends an event to the given topic, keyed so that events for the
// same entity land on the same partition.
func (p *Producer) Publish(ctx context.Context, topic, key string, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling event %s: %w", event.Type, err)
	}

	msg := kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing to topic %s: %w", topic, err)
	}

	p.log.Debug("published event", "topic", topic, "type", event.Type, "key", key)
	return nil
}

// Ping dials the first broker to verify connectivity. Used by readiness
// checks.
func (p *Producer) Ping(ctx context.Context) error {
	addr := p.writer.Addr.String()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dialing kafka broker %s: %w", addr, err)
	}
	return conn.Close()
}

// Close flushes pending messages and releases the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
