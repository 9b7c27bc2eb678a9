package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"stage-manager/internal/config"
	"stage-manager/internal/events"
	"stage-manager/internal/messaging/kafka/consumer"
	"stage-manager/internal/report"
	"stage-manager/internal/shared/connection"
	"stage-manager/internal/student"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// cacheKey drops one Redis key; it is all the consumers need from a service.
type cacheKey struct {
	rdb *redis.Client
	key string
}

func (k cacheKey) InvalidateCache(ctx context.Context) error {
	return k.rdb.Del(ctx, k.key).Err()
}

func RunConsumer(cfg config.App) error {
	logger := zap.L().Named("app.consumer")

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}
	if cfg.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
	if err != nil {
		return err
	}
	defer rdb.Close()

	attendanceReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.AttendanceReconciledTopic,
		GroupID:        "stage-manager-report-cache",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer attendanceReader.Close()

	studentReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.StudentCreatedTopic,
		GroupID:        "stage-manager-student-cache",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer studentReader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		consumer.ConsumeAttendanceReconciled(ctx, attendanceReader, cacheKey{rdb: rdb, key: report.SummaryCacheKey}, logger)
	}()
	go func() {
		defer wg.Done()
		consumer.ConsumeStudentLifecycle(ctx, studentReader, cacheKey{rdb: rdb, key: student.StudentOptionsKey}, logger)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()
	wg.Wait()

	return nil
}
