// Package store persists whole game aggregates keyed by game id. Writes are
// last-write-wins; callers serialize writers per game.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jason-s-yu/uno/internal/models"
)

// ErrNotFound is returned by Load when no game is stored under the id.
var ErrNotFound = errors.New("game not found")

// Store is the persistence collaborator of the game service.
type Store interface {
	Load(ctx context.Context, id string) (*models.Game, error)
	Save(ctx context.Context, g *models.Game) error
}

func encode(g *models.Game) ([]byte, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode game %s: %w", g.ID, err)
	}
	return data, nil
}

func decode(id string, data []byte) (*models.Game, error) {
	var g models.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	return &g, nil
}
