package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "CLIENT_URL", "STORE_BACKEND", "DATABASE_URL", "POSTGRES_USER", "POSTGRES_PASSWORD",
		"PG_HOST", "PG_PORT", "PG_DATABASE", "HISTORIAN_BATCH_SIZE", "HISTORIAN_FLUSH", "WS_PING_INTERVAL",
		"REDIS_KEY_PREFIX", "HISTORIAN_QUEUE_NAME", "PUBLISH_ACTIONS", "SQLITE_PATH", "WS_WRITE_TIMEOUT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, "uno:game:", cfg.RedisKeyPrefix)
	assert.Equal(t, "uno_actions", cfg.HistorianQueueName)
	assert.Equal(t, 20, cfg.HistorianBatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.HistorianFlush)
	assert.Equal(t, 30*time.Second, cfg.WSPingInterval)
	assert.False(t, cfg.PublishActions)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_BACKEND", "SQLite")
	t.Setenv("HISTORIAN_FLUSH", "2s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, 2*time.Second, cfg.HistorianFlush)
}

func TestValidate(t *testing.T) {
	base := Config{
		StoreBackend:       BackendMemory,
		SQLitePath:         "uno.db",
		HistorianBatchSize: 20,
		HistorianFlush:     time.Second,
		WSWriteTimeout:     time.Second,
		WSPingInterval:     time.Second,
	}
	require.NoError(t, base.Validate())

	c := base
	c.StoreBackend = "mongo"
	assert.Error(t, c.Validate())

	c = base
	c.StoreBackend = BackendPostgres
	assert.Error(t, c.Validate(), "postgres without a DSN")

	c.PostgresUser, c.PGHost, c.PGPort, c.PGDatabase = "uno", "db", "5432", "uno"
	require.NoError(t, c.Validate())
	assert.Equal(t, "postgres://uno@db:5432/uno", c.PostgresDSN())

	c.DatabaseURL = "postgres://other"
	assert.Equal(t, "postgres://other", c.PostgresDSN())

	c = base
	c.HistorianBatchSize = 0
	assert.Error(t, c.Validate())
}
