// internal/store/redis.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jason-s-yu/uno/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces game keys, e.g. "uno:game:ABC123".
const DefaultRedisPrefix = "uno:game:"

// RedisStore keeps each game as one JSON value under prefix+id.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Load(ctx context.Context, id string) (*models.Game, error) {
	data, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key(id), err)
	}
	return decode(id, data)
}

func (s *RedisStore) Save(ctx context.Context, g *models.Game) error {
	data, err := encode(g)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(g.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key(g.ID), err)
	}
	return nil
}
