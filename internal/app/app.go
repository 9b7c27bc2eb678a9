package app

import (
	"context"
	"net/http"

	"stage-manager/internal/config"
	"stage-manager/internal/metrics"
	"stage-manager/internal/middleware"
	"stage-manager/internal/shared/connection"
	"stage-manager/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// BuildApp wires infrastructure and modules into router. The returned cleanup
// stops background work and closes connections.
func BuildApp(router *gin.Engine, cfg config.App) (func(), error) {
	logger := zap.L().Named("app")

	// 1. Setup Infrastructure
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("store ready", zap.String("backend", cfg.StoreBackend))

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
	} else {
		logger.Warn("REDIS_ADDR not set, caching and idempotency disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cleanup := func() {
		cancel()
		if rdb != nil {
			_ = rdb.Close()
		}
		if err := store.Close(); err != nil {
			logger.Error("close store failed", zap.Error(err))
		}
	}

	router.Use(metrics.Middleware())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimitByIP(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok", "store": cfg.StoreBackend}, nil)
	})

	// 2. Register Modules & Routes
	mods, err := registerModules(ctx, router, cfg, store, rdb, logger)
	if err != nil {
		cleanup()
		return nil, err
	}

	if cfg.SeedDemoData {
		if err := mods.students.SeedDemo(ctx); err != nil {
			logger.Warn("seed demo data failed", zap.Error(err))
		}
	}

	return cleanup, nil
}
