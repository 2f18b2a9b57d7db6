// internal/database/postgres.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id         TEXT PRIMARY KEY,
		status     TEXT NOT NULL,
		winner     TEXT NOT NULL DEFAULT '',
		state      JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS game_logs (
		id             UUID PRIMARY KEY,
		game_id        TEXT NOT NULL,
		action_index   INT NOT NULL,
		actor          TEXT NOT NULL DEFAULT '',
		action_type    TEXT NOT NULL,
		action_payload JSONB NOT NULL DEFAULT '{}',
		created_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS game_logs_game_idx ON game_logs (game_id, action_index)`,
}

// EnsureSchema creates the games and game_logs tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
