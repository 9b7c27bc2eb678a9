package app

import (
	"fmt"

	"stage-manager/internal/config"
	"stage-manager/internal/shared/connection"
	"stage-manager/internal/shared/kvstore"

	"go.uber.org/zap"
)

// openStore connects the configured backend. The postgres backend creates
// kv_entries on first use.
func openStore(cfg config.App) (kvstore.Store, error) {
	log := zap.L().Named("app.store")

	switch cfg.StoreBackend {
	case config.StoreBolt:
		return connection.OpenBoltWithRetry(cfg.BoltPath, 5)
	case config.StorePostgres:
		gormDB, err := connection.ConnectGORMWithRetry(
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBPort,
			cfg.DBSSLMode,
			5,
		)
		if err != nil {
			return nil, err
		}
		store := kvstore.NewPostgresStore(gormDB)
		if err := store.Migrate(); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	case config.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return kvstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}
