package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/ec-admin-console/internal/audit"
	"github.com/example/ec-admin-console/internal/config"
	"github.com/example/ec-admin-console/internal/infrastructure/kafka"
)

// consumerGroup is the group audit-tail reads with
const consumerGroup = "admin-audit-tail"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger(os.Stdout)

	if !cfg.AuditEnabled() {
		logger.Error("KAFKA_BROKERS is not set; nothing to tail")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, consumerGroup, logger)
	defer consumer.Close()

	logger.Info("tailing audit events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic, "group", consumerGroup)
	err = consumer.Consume(ctx, func(ctx context.Context, e audit.Event) error {
		logger.InfoContext(ctx, "audit event",
			"type", e.Type,
			"actor", e.Actor,
			"target", e.Target,
			"attributes", e.Attributes,
			"occurred_at", e.OccurredAt,
		)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		logger.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}
