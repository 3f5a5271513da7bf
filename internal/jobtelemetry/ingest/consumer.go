package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"techtrends/backend/internal/jobtelemetry/codec"
	"techtrends/backend/internal/jobtelemetry/domain"
	"techtrends/backend/internal/jobtelemetry/repository"
)

// MessageReader is the subset of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ReaderConfig configures NewKafkaReader.
type ReaderConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewKafkaReader returns a consumer-group reader. Offsets are committed explicitly by Consumer.
func NewKafkaReader(cfg ReaderConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
		MaxWait:  time.Second,
	})
}

// Consumer persists job telemetry records read from Kafka.
type Consumer struct {
	reader MessageReader
	repo   repository.Repository
	// RetryDelay is the pause after a failed fetch or store write.
	RetryDelay time.Duration
}

// NewConsumer returns a consumer reading from reader and saving into repo.
func NewConsumer(reader MessageReader, repo repository.Repository) *Consumer {
	return &Consumer{reader: reader, repo: repo, RetryDelay: time.Second}
}

// Run consumes until ctx is cancelled and then returns nil.
// Malformed messages are logged and committed so they do not block the partition.
// A store failure leaves the message uncommitted and is retried after RetryDelay.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("ingest: kafka fetch error: %v", err)
			if !c.sleep(ctx) {
				return nil
			}
			continue
		}
		for {
			err = c.handle(ctx, msg)
			if err == nil {
				break
			}
			log.Printf("ingest: store telemetry at offset %d: %v", msg.Offset, err)
			if !c.sleep(ctx) {
				return nil
			}
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("ingest: commit offset %d: %v", msg.Offset, err)
		}
	}
}

// handle stores one message. Malformed messages are logged and reported as handled.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	t, err := Decode(msg.Value)
	if err != nil {
		log.Printf("ingest: skip offset %d: %v", msg.Offset, err)
		return nil
	}
	return c.repo.Create(ctx, t)
}

// Decode parses a Kafka message value into a record ready for insertion. Any id in the payload is dropped.
func Decode(value []byte) (*domain.JobTelemetry, error) {
	var p codec.Payload
	if err := json.Unmarshal(value, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	t, err := p.ToDomain()
	if err != nil {
		return nil, err
	}
	t.ID = 0
	return t, nil
}

func (c *Consumer) sleep(ctx context.Context) bool {
	timer := time.NewTimer(c.RetryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
