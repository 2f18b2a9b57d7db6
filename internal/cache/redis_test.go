package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jason-s-yu/uno/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFromLog(t *testing.T) {
	ts := time.UnixMilli(1714564800123)
	rec := RecordFromLog("ABC123", models.LogEntry{
		Index:     3,
		Timestamp: ts,
		Action:    models.ActionPlayCard,
		Actor:     "alice",
		Details:   map[string]interface{}{"card": "red_7"},
	})
	assert.Equal(t, "ABC123", rec.GameID)
	assert.Equal(t, 3, rec.ActionIndex)
	assert.Equal(t, "alice", rec.Actor)
	assert.Equal(t, models.ActionPlayCard, rec.ActionType)
	assert.Equal(t, "red_7", rec.ActionPayload["card"])
	assert.Equal(t, int64(1714564800123), rec.Timestamp)
	assert.NotEqual(t, rec.ID.String(), RecordFromLog("ABC123", models.LogEntry{}).ID.String())

	empty := RecordFromLog("ABC123", models.LogEntry{Action: models.ActionResetGame})
	assert.NotNil(t, empty.ActionPayload)
}

func TestActionQueueRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb, err := Connect(ctx, addr, 0)
	require.NoError(t, err)
	defer rdb.Close()

	q := NewActionQueue(rdb, "uno_actions_test")
	rdb.Del(ctx, "uno_actions_test")

	entry := models.LogEntry{Index: 0, Timestamp: time.Now(), Action: models.ActionJoinGame, Actor: "bob"}
	require.NoError(t, q.RecordAction(ctx, "ZZZ999", entry))

	rec, ok, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ZZZ999", rec.GameID)
	assert.Equal(t, "bob", rec.Actor)

	_, ok, err = q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}
