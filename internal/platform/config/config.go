package config

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	SnapshotBackend   string `env:"SNAPSHOT_BACKEND" default:"file"`
	SnapshotDir       string `env:"SNAPSHOT_DIR" default:"./data"`
	SnapshotKeyPrefix string `env:"SNAPSHOT_KEY_PREFIX" default:"screen:"`
	RedisURL          string `env:"REDIS_URL"`
	DatabaseURL       string `env:"DATABASE_URL"`
	SQLitePath        string `env:"SQLITE_PATH" default:"./data/snapshots.db"`

	MaxWebSocketConnections int     `env:"MAX_WEBSOCKET_CONNECTIONS" default:"10000"`
	MaxConnectionsPerIP     int     `env:"MAX_CONNECTIONS_PER_IP" default:"100"`
	ConnectionRatePerSecond float64 `env:"CONNECTION_RATE_PER_SECOND" default:"10"`
	ConnectionRateBurst     int     `env:"CONNECTION_RATE_BURST" default:"20"`

	MaxMessageBytes int64 `env:"MAX_MESSAGE_BYTES" default:"8388608"` // 8 MiB
	WriteBufferSize int   `env:"WRITE_BUFFER_SIZE" default:"16"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.SnapshotBackend {
	case BackendFile:
		if cfg.SnapshotDir == "" {
			return fmt.Errorf("SNAPSHOT_DIR is required for the %s backend", BackendFile)
		}
	case BackendMemory:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the %s backend", BackendRedis)
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s backend", BackendPostgres)
		}
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the %s backend", BackendSQLite)
		}
	default:
		return fmt.Errorf("SNAPSHOT_BACKEND must be one of file, memory, redis, postgres, sqlite (got %q)", cfg.SnapshotBackend)
	}

	positive := []struct {
		name  string
		value float64
	}{
		{"MAX_WEBSOCKET_CONNECTIONS", float64(cfg.MaxWebSocketConnections)},
		{"MAX_CONNECTIONS_PER_IP", float64(cfg.MaxConnectionsPerIP)},
		{"CONNECTION_RATE_PER_SECOND", cfg.ConnectionRatePerSecond},
		{"CONNECTION_RATE_BURST", float64(cfg.ConnectionRateBurst)},
		{"MAX_MESSAGE_BYTES", float64(cfg.MaxMessageBytes)},
		{"WRITE_BUFFER_SIZE", float64(cfg.WriteBufferSize)},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive", p.name)
		}
	}

	return nil
}
