package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	StoreBolt     = "bolt"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env  string
	Port string

	StoreBackend string
	BoltPath     string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	RedisAddr   string
	KafkaBroker string

	JWTSecret string
	TokenTTL  time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	OutboxPollInterval time.Duration

	CORSOrigins []string

	RBACModelPath string
	SeedDemoData  bool
}

// Load returns application config populated from environment variables with sensible defaults.
func Load() App {
	return App{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnv("PORT", "3000"),

		StoreBackend: getEnv("STORE_BACKEND", StoreBolt),
		BoltPath:     getEnv("BOLT_PATH", "data/stage-manager.db"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "stage_manager"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:   os.Getenv("REDIS_ADDR"),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),

		JWTSecret: getEnv("JWT_SECRET", "dev-signing-secret-change"),
		TokenTTL:  durationEnv("TOKEN_TTL", 12*time.Hour),

		RateLimitRPS:   floatEnv("RATE_LIMIT_RPS", 10),
		RateLimitBurst: intEnv("RATE_LIMIT_BURST", 20),

		OutboxPollInterval: durationEnv("OUTBOX_POLL_INTERVAL", 3*time.Second),

		CORSOrigins: listEnv("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),

		RBACModelPath: os.Getenv("RBAC_MODEL_PATH"),
		SeedDemoData:  boolEnv("SEED_DEMO_DATA", false),
	}
}

func (a App) IsProduction() bool {
	return a.Env == "production" || a.Env == "prod"
}

const (
	OutboxDisabled  = "disabled"
	OutboxInProcess = "in-process"
	OutboxWorker    = "worker"
)

// OutboxMode reports where outbox events get published. bbolt holds an
// exclusive file lock, so only the postgres store can be shared with cmd/worker.
func (a App) OutboxMode() string {
	switch {
	case a.KafkaBroker == "":
		return OutboxDisabled
	case a.StoreBackend == StorePostgres:
		return OutboxWorker
	default:
		return OutboxInProcess
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			zap.L().Warn("invalid duration, using fallback",
				zap.String("key", key), zap.Duration("fallback", fallback), zap.Error(err))
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			zap.L().Warn("invalid int, using fallback",
				zap.String("key", key), zap.Int("fallback", fallback), zap.Error(err))
			return fallback
		}
		return parsed
	}
	return fallback
}

func floatEnv(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			zap.L().Warn("invalid float, using fallback",
				zap.String("key", key), zap.Float64("fallback", fallback), zap.Error(err))
			return fallback
		}
		return parsed
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			zap.L().Warn("invalid bool, using fallback",
				zap.String("key", key), zap.Bool("fallback", fallback), zap.Error(err))
			return fallback
		}
		return parsed
	}
	return fallback
}

// listEnv splits a comma separated value, dropping empty items.
func listEnv(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	out := make([]string, 0)
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
