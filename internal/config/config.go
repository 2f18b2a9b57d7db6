// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jason-s-yu/uno/internal/database"
	"github.com/joeshaw/envdecode"
	_ "github.com/joho/godotenv/autoload"
)

// Store backends selectable through STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config is the process configuration shared by cmd/server and cmd/historian.
type Config struct {
	Port      string `env:"PORT,default=8080"`
	ClientURL string `env:"CLIENT_URL,default=http://localhost:3000"`
	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`

	StoreBackend string `env:"STORE_BACKEND,default=memory"`

	DatabaseURL      string `env:"DATABASE_URL"`
	PostgresUser     string `env:"POSTGRES_USER"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PGHost           string `env:"PG_HOST,default=localhost"`
	PGPort           string `env:"PG_PORT,default=5432"`
	PGDatabase       string `env:"PG_DATABASE"`

	SQLitePath string `env:"SQLITE_PATH,default=uno.db"`

	RedisAddr      string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisDB        int    `env:"REDIS_DB,default=0"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX,default=uno:game:"`

	PublishActions     bool          `env:"PUBLISH_ACTIONS,default=false"`
	HistorianQueueName string        `env:"HISTORIAN_QUEUE_NAME,default=uno_actions"`
	HistorianBatchSize int           `env:"HISTORIAN_BATCH_SIZE,default=20"`
	HistorianFlush     time.Duration `env:"HISTORIAN_FLUSH,default=500ms"`

	WSWriteTimeout time.Duration `env:"WS_WRITE_TIMEOUT,default=5s"`
	WSPingInterval time.Duration `env:"WS_PING_INTERVAL,default=30s"`
	HubBuffer      int           `env:"HUB_BUFFER,default=16"`
}

// Load decodes the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendRedis, BackendSQLite:
	case BackendPostgres:
		if c.PostgresDSN() == "" {
			return errors.New("postgres backend needs DATABASE_URL or POSTGRES_USER and PG_DATABASE")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.StoreBackend == BackendSQLite && c.SQLitePath == "" {
		return errors.New("sqlite backend needs SQLITE_PATH")
	}
	if c.HistorianBatchSize <= 0 {
		return errors.New("HISTORIAN_BATCH_SIZE must be positive")
	}
	if c.HistorianFlush <= 0 || c.WSWriteTimeout <= 0 || c.WSPingInterval <= 0 {
		return errors.New("durations must be positive")
	}
	return nil
}

// PostgresDSN prefers DATABASE_URL and falls back to the discrete POSTGRES_* / PG_* vars.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.PostgresUser == "" || c.PGDatabase == "" {
		return ""
	}
	return database.DSN(c.PostgresUser, c.PostgresPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
