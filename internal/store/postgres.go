// internal/store/postgres.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/uno/internal/models"
)

// PostgresStore keeps games as jsonb rows in the games table (see database.EnsureSchema).
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Load(ctx context.Context, id string) (*models.Game, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT state FROM games WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select game %s: %w", id, err)
	}
	return decode(id, data)
}

func (s *PostgresStore) Save(ctx context.Context, g *models.Game) error {
	data, err := encode(g)
	if err != nil {
		return err
	}
	q := `
		INSERT INTO games (id, status, winner, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id)
		DO UPDATE SET status = $2, winner = $3, state = $4, updated_at = $6
	`
	_, err = s.pool.Exec(ctx, q, g.ID, string(g.Status), g.Winner, data, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert game %s: %w", g.ID, err)
	}
	return nil
}
