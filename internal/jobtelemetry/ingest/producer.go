// Package ingest moves job telemetry records through Kafka: producers publish them and the
// consumer persists them.
package ingest

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"techtrends/backend/internal/jobtelemetry/codec"
	"techtrends/backend/internal/jobtelemetry/domain"
)

// Publisher sends job telemetry records to the ingestion topic.
type Publisher interface {
	Publish(ctx context.Context, t *domain.JobTelemetry) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer implements Publisher using segmentio/kafka-go.
type KafkaProducer struct {
	writer messageWriter
	topic  string
}

// NewKafkaProducer creates a producer that writes records to topic.
// Returns nil when brokers or topic are empty; a nil producer's methods are no-ops.
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaProducer{writer: writer, topic: topic}
}

// Publish writes t as a JSON payload keyed by its process reference, so one process's records stay ordered.
func (p *KafkaProducer) Publish(ctx context.Context, t *domain.JobTelemetry) error {
	if p == nil || p.writer == nil || t == nil {
		return nil
	}
	payload := codec.FromDomain(t)
	payload.ID = 0
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(domain.FormatProcessRef(t.ProcessID)),
		Value: value,
	})
	if err != nil {
		log.Printf("ingest: kafka publish to %s failed: %v", p.topic, err)
		return err
	}
	return nil
}

// Close closes the Kafka writer. Safe to call on a nil producer.
func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
