// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/uno/internal/cache"
)

// LogWriter persists historian batches into game_logs.
type LogWriter struct {
	pool *pgxpool.Pool
}

func NewLogWriter(pool *pgxpool.Pool) *LogWriter {
	return &LogWriter{pool: pool}
}

// InsertActionRecords writes a batch of records in a single transaction. Records already
// present (same id) are skipped so redelivered batches are harmless.
func (w *LogWriter) InsertActionRecords(ctx context.Context, records []cache.ActionRecord) error {
	if len(records) == 0 {
		return nil
	}
	err := pgx.BeginTxFunc(ctx, w.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			INSERT INTO game_logs (id, game_id, action_index, actor, action_type, action_payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING
		`
		batch := &pgx.Batch{}
		for _, rec := range records {
			payload, err := json.Marshal(rec.ActionPayload)
			if err != nil {
				return fmt.Errorf("marshal payload for %s/%d: %w", rec.GameID, rec.ActionIndex, err)
			}
			batch.Queue(q, rec.ID, rec.GameID, rec.ActionIndex, rec.Actor, rec.ActionType, payload,
				time.UnixMilli(rec.Timestamp).UTC())
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("insert %d action records: %w", len(records), err)
	}
	return nil
}

// CountActions returns how many log rows exist for a game.
func (w *LogWriter) CountActions(ctx context.Context, gameID string) (int, error) {
	var n int
	err := w.pool.QueryRow(ctx, `SELECT COUNT(*) FROM game_logs WHERE game_id = $1`, gameID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count actions for %s: %w", gameID, err)
	}
	return n, nil
}
