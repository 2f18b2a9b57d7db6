package store

import (
	"context"
	"sync"

	"github.com/jason-s-yu/uno/internal/models"
)

// MemoryStore keeps games in a process-local map. Games are copied on the way in and out
// so callers never share state with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]*models.Game
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[string]*models.Game),
	}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, exists := s.games[id]
	if !exists {
		return nil, ErrNotFound
	}
	return g.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, g *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g.Clone()
	return nil
}

// Len reports how many games are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}
