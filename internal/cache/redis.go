// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for game action logs.
const DefaultQueueName = "uno_actions"

// ActionRecord holds the minimal info needed by the historian service.
type ActionRecord struct {
	ID            uuid.UUID              `json:"id"`
	GameID        string                 `json:"game_id"`
	ActionIndex   int                    `json:"action_index"`
	Actor         string                 `json:"actor"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"` // epoch millis
}

// RecordFromLog converts a game log entry into a queue record.
func RecordFromLog(gameID string, e models.LogEntry) ActionRecord {
	payload := e.Details
	if payload == nil {
		payload = make(map[string]interface{})
	}
	return ActionRecord{
		ID:            uuid.New(),
		GameID:        gameID,
		ActionIndex:   e.Index,
		Actor:         e.Actor,
		ActionType:    e.Action,
		ActionPayload: payload,
		Timestamp:     e.Timestamp.UnixMilli(),
	}
}

// Connect creates a Redis client and pings it.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// ActionQueue is the Redis list shared by the game server (producer) and the historian (consumer).
type ActionQueue struct {
	rdb  *redis.Client
	name string
}

func NewActionQueue(rdb *redis.Client, name string) *ActionQueue {
	if name == "" {
		name = DefaultQueueName
	}
	return &ActionQueue{rdb: rdb, name: name}
}

// RecordAction publishes a log entry for the historian.
func (q *ActionQueue) RecordAction(ctx context.Context, gameID string, entry models.LogEntry) error {
	return q.Publish(ctx, RecordFromLog(gameID, entry))
}

// Publish serializes the record to JSON, then pushes it to the Redis queue.
func (q *ActionQueue) Publish(ctx context.Context, record ActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal ActionRecord: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", q.name, err)
	}
	return nil
}

// Pop blocks up to timeout for the next record. ok is false when the wait timed out.
func (q *ActionQueue) Pop(ctx context.Context, timeout time.Duration) (record ActionRecord, ok bool, err error) {
	res, err := q.rdb.BLPop(ctx, timeout, q.name).Result()
	if errors.Is(err, redis.Nil) {
		return ActionRecord{}, false, nil
	}
	if err != nil {
		return ActionRecord{}, false, fmt.Errorf("BLPop %s: %w", q.name, err)
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return ActionRecord{}, false, nil
	}
	if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
		return ActionRecord{}, false, fmt.Errorf("invalid action record: %w", err)
	}
	return record, true, nil
}
