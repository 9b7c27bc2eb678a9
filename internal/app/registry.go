package app

import (
	"context"

	"stage-manager/internal/attendance"
	"stage-manager/internal/auth"
	"stage-manager/internal/config"
	"stage-manager/internal/evaluation"
	"stage-manager/internal/messaging/kafka"
	"stage-manager/internal/messaging/kafka/producer"
	"stage-manager/internal/rbac"
	"stage-manager/internal/rbac/infra"
	"stage-manager/internal/report"
	"stage-manager/internal/shared/connection"
	"stage-manager/internal/shared/kvstore"
	"stage-manager/internal/student"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type modules struct {
	students student.Service
}

func registerModules(
	ctx context.Context,
	router *gin.Engine,
	cfg config.App,
	store kvstore.Store,
	rdb *redis.Client,
	logger *zap.Logger,
) (*modules, error) {
	// --- Repositories ---
	studentRepo := student.NewRepository(store)
	attendanceRepo := attendance.NewRepository(store)
	evaluationRepo := evaluation.NewRepository(store)

	var outboxRepo kafka.OutboxRepository
	if cfg.OutboxMode() != config.OutboxDisabled {
		outboxRepo = kafka.NewOutboxRepository(store)
	}
	if cfg.OutboxMode() == config.OutboxInProcess {
		if err := startInProcessWorker(ctx, cfg, outboxRepo, logger); err != nil {
			return nil, err
		}
	}

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(cfg.RBACModelPath)
	if err != nil {
		return nil, err
	}
	rbacService := rbac.NewService(rbac.NewStaticRepository(), enforcer, logger)
	if err := rbacService.LoadPolicy(); err != nil {
		return nil, err
	}

	// --- Services ---
	authService := auth.NewService(studentRepo, cfg.JWTSecret, cfg.TokenTTL, logger)
	studentService := student.NewServiceWithOutbox(studentRepo, outboxRepo, rdb, logger)
	var summaryCache attendance.CacheInvalidator
	if rdb != nil {
		summaryCache = report.NewSummaryCache(rdb)
	}
	attendanceService := attendance.NewServiceWithOutbox(attendanceRepo, studentRepo, outboxRepo, summaryCache, logger)
	evaluationService := evaluation.NewService(evaluationRepo, studentRepo, logger)
	reportService := report.NewService(attendanceService, rdb, logger)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, cfg.IsProduction(), logger)
	studentHandler := student.NewHandler(studentService, logger)
	attendanceHandler := attendance.NewHandler(attendanceService, logger)
	evaluationHandler := evaluation.NewHandler(evaluationService, logger)
	reportHandler := report.NewHandler(reportService, logger)
	rbacHandler := rbac.NewHandler(rbacService, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, cfg.JWTSecret)
		student.RegisterRoutes(api, studentHandler, rbacService, rdb, cfg.JWTSecret, logger)
		attendance.RegisterRoutes(api, attendanceHandler, rbacService, rdb, cfg.JWTSecret, logger)
		evaluation.RegisterRoutes(api, evaluationHandler, rbacService, rdb, cfg.JWTSecret, logger)
		report.RegisterRoutes(api, reportHandler, rbacService, cfg.JWTSecret, logger)
		rbac.RegisterRoutes(api, rbacHandler, cfg.JWTSecret)
	}

	return &modules{students: studentService}, nil
}

// startInProcessWorker publishes the outbox from the API process, for stores
// that cmd/worker cannot open alongside it (bolt, memory).
func startInProcessWorker(ctx context.Context, cfg config.App, outboxRepo kafka.OutboxRepository, logger *zap.Logger) error {
	writer, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, 5)
	if err != nil {
		return err
	}

	go func() {
		producer.ProcessOutboxEvents(ctx, outboxRepo, writer, logger, cfg.OutboxPollInterval)
		if err := writer.Close(); err != nil {
			logger.Error("close kafka writer failed", zap.Error(err))
		}
	}()
	return nil
}
