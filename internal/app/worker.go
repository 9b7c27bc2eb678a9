package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stage-manager/internal/config"
	"stage-manager/internal/messaging/kafka"
	"stage-manager/internal/messaging/kafka/producer"
	"stage-manager/internal/shared/connection"

	"go.uber.org/zap"
)

func RunWorker(cfg config.App) error {
	logger := zap.L().Named("app.worker")

	if cfg.StoreBackend != config.StorePostgres {
		return fmt.Errorf("worker needs STORE_BACKEND=%s, the %s store is published by the api process", config.StorePostgres, cfg.StoreBackend)
	}
	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		cfg.OutboxPollInterval,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}
