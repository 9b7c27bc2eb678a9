package main

import (
	"context"
	"time"

	"stage-manager/internal/app"
	"stage-manager/internal/bootstrap"
	"stage-manager/internal/config"
	"stage-manager/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	apperror.Init()
	r := gin.Default()

	// build dependency + routes
	cleanup, err := app.BuildApp(r, cfg)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	auditLogger := bootstrap.NewStdoutAuditLogger(logger)
	bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfig{
			Port:            cfg.Port,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AuditMeta: map[string]any{
				"store":  cfg.StoreBackend,
				"outbox": cfg.OutboxMode(),
			},
		},
		auditLogger,
	)

	// store and in-process outbox worker are released after the last request
	cleanup()
	auditLogger.Log(context.Background(), bootstrap.AuditLog{
		Action:  "STORE_CLOSED",
		Message: "Store and background workers released",
		Meta: map[string]any{
			"store":  cfg.StoreBackend,
			"outbox": cfg.OutboxMode(),
		},
	})
}

func newLogger(cfg config.App) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
