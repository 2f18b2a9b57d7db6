package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	assert.Equal(t, "postgres://uno:s3cr%40t@db:5432/uno", DSN("uno", "s3cr@t", "db", "5432", "uno"))
	assert.Equal(t, "postgres://uno@db:5432/uno", DSN("uno", "", "db", "5432", "uno"))
}

func TestInsertActionRecords(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, EnsureSchema(ctx, pool))

	w := NewLogWriter(pool)
	gameID := "DB" + uuid.NewString()[:4]
	recs := []cache.ActionRecord{
		{ID: uuid.New(), GameID: gameID, ActionIndex: 0, Actor: "alice", ActionType: "CREATE_GAME", Timestamp: time.Now().UnixMilli()},
		{ID: uuid.New(), GameID: gameID, ActionIndex: 1, Actor: "bob", ActionType: "JOIN_GAME", Timestamp: time.Now().UnixMilli()},
	}
	require.NoError(t, w.InsertActionRecords(ctx, recs))
	// redelivery is ignored
	require.NoError(t, w.InsertActionRecords(ctx, recs))

	n, err := w.CountActions(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
