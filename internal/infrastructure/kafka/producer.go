package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/ec-admin-console/internal/audit"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes audit events, keyed by the event's target so events
// about one resource stay ordered within a partition.
type Producer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewProducer writes asynchronously; delivery failures are logged, never
// returned to the admin's request.
func NewProducer(brokers []string, topic string, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "audit-producer", "topic", topic)
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				logger.Error("audit delivery failed", "messages", len(msgs), "error", err)
			}
		},
	}
	return &Producer{writer: writer, logger: logger}
}

func (p *Producer) Publish(ctx context.Context, e audit.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode audit event %s: %w", e.Type, err)
	}

	key := e.Target
	if key == "" {
		key = e.Actor
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish audit event %s: %w", e.Type, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
