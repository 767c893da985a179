package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"

	"github.com/example/ec-admin-console/internal/audit"
)

// EventHandler processes one decoded audit event
type EventHandler func(ctx context.Context, e audit.Event) error

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

const (
	readRetryBase = 500 * time.Millisecond
	readRetryMax  = 30 * time.Second
)

type Consumer struct {
	reader messageReader
	logger *slog.Logger

	// retryBase starts the wait after a failed read; zero means readRetryBase
	retryBase time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewConsumer(brokers []string, topic, groupID string, logger *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{reader: reader, logger: logger.With("component", "audit-consumer", "topic", topic)}
}

// Consume reads until ctx is done or the reader is closed. Undecodable
// messages and handler failures are logged and skipped. Read errors back off
// exponentially up to readRetryMax; a successful read resets the wait.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	base := c.retryBase
	if base <= 0 {
		base = readRetryBase
	}
	sleep := c.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	newBackoff := func() retry.Backoff {
		return retry.WithCappedDuration(readRetryMax, retry.NewExponential(base))
	}
	backoff := newBackoff()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			wait, _ := backoff.Next()
			c.logger.ErrorContext(ctx, "read message", "error", err, "wait", wait)
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}
		backoff = newBackoff()

		e, err := decode(msg)
		if err != nil {
			c.logger.WarnContext(ctx, "skip malformed audit message",
				"partition", msg.Partition, "offset", msg.Offset, "error", err)
			continue
		}
		if err := handler(ctx, e); err != nil {
			c.logger.ErrorContext(ctx, "handle audit event", "event_id", e.ID, "type", e.Type, "error", err)
		}
	}
}

func decode(msg kafka.Message) (audit.Event, error) {
	var e audit.Event
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		return e, fmt.Errorf("decode audit event: %w", err)
	}
	if e.Type == "" {
		return e, errors.New("audit event without type")
	}
	return e, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
