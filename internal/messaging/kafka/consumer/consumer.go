package consumer

import (
	"context"
	"encoding/json"

	"stage-manager/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumers need.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type CacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

func ConsumeAttendanceReconciled(
	ctx context.Context,
	reader MessageReader,
	reports CacheInvalidator,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.attendance_reconciled")
	log.Info("attendance reconciled consumer started")

	consume(ctx, reader, log, func(msg kafkago.Message) (bool, error) {
		var event events.AttendanceReconciledEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode attendance_reconciled event failed", zap.Error(err))
			return true, nil
		}

		if err := reports.InvalidateCache(ctx); err != nil {
			return false, err
		}

		log.Info("report cache invalidated",
			zap.String("source", event.Source),
			zap.String("actor_role", event.ActorRole),
			zap.Int("incoming", event.Incoming),
			zap.Int("total", event.Total),
		)
		return true, nil
	})

	log.Info("attendance reconciled consumer stopped")
}

func ConsumeStudentLifecycle(
	ctx context.Context,
	reader MessageReader,
	students CacheInvalidator,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.student_lifecycle")
	log.Info("student lifecycle consumer started")

	consume(ctx, reader, log, func(msg kafkago.Message) (bool, error) {
		var event events.StudentCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode student_created event failed", zap.Error(err))
			return true, nil
		}

		if err := students.InvalidateCache(ctx); err != nil {
			return false, err
		}

		log.Info("student options cache invalidated", zap.String("student_id", event.StudentID))
		return true, nil
	})

	log.Info("student lifecycle consumer stopped")
}

// consume fetches until ctx is done. handle reports whether the message may be
// committed; a message that is not committed is fetched again.
func consume(
	ctx context.Context,
	reader MessageReader,
	log *zap.Logger,
	handle func(msg kafkago.Message) (bool, error),
) {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("fetch message failed", zap.Error(err))
			continue
		}

		commit, err := handle(msg)
		if err != nil {
			log.Error("handle message failed",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
		if !commit {
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message failed", zap.Error(err))
		}
	}
}
