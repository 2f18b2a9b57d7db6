// internal/game/lobby.go
package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/jason-s-yu/uno/internal/models"
	"github.com/jason-s-yu/uno/internal/store"
)

// PlayerSummary is a roster entry without cards.
type PlayerSummary struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	IsReady  bool   `json:"isReady"`
}

// Roster lists the players of g in seat order.
func Roster(g *models.Game) []PlayerSummary {
	out := make([]PlayerSummary, 0, len(g.Players))
	for _, p := range g.Players {
		out = append(out, PlayerSummary{Username: p.Username, IsAdmin: p.IsAdmin, IsReady: p.IsReady})
	}
	return out
}

var errIDTaken = errors.New("game id taken")

// CreateGame opens a new lobby with creator as its ready admin and a shuffled deck.
func (s *Service) CreateGame(ctx context.Context, creator string) (*models.Game, error) {
	if err := validateUsername(creator); err != nil {
		return nil, err
	}
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		g, err := s.createWithID(ctx, s.newGameID(), creator)
		if errors.Is(err, errIDTaken) {
			continue
		}
		return g, err
	}
	return nil, unavailable(fmt.Errorf("no free game id after %d attempts", maxIDAttempts))
}

func (s *Service) createWithID(ctx context.Context, id, creator string) (*models.Game, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	_, err := s.store.Load(ctx, id)
	switch {
	case err == nil:
		return nil, errIDTaken
	case !errors.Is(err, store.ErrNotFound):
		return nil, unavailable(err)
	}

	now := s.now()
	g := models.NewGame(id, creator, now)
	g.Deck = s.freshDeck()
	g.AppendLog(now, models.ActionCreateGame, creator, nil)
	if err := s.commit(ctx, g, 0); err != nil {
		return nil, err
	}
	return g, nil
}

// JoinGame seats username in a lobby and returns the updated roster.
func (s *Service) JoinGame(ctx context.Context, id, username string) ([]PlayerSummary, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	g, err := s.mutate(ctx, id, func(t *tx) error {
		if t.g.Status != models.StatusLobby {
			return ErrAlreadyStarted
		}
		if _, p := t.g.Player(username); p != nil {
			return ErrDuplicateName
		}
		t.g.Players = append(t.g.Players, &models.Player{Username: username, Hand: []models.Card{}})
		t.log(models.ActionJoinGame, username, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return Roster(g), nil
}

// SetReady flips a player's ready flag. Only lobbies track readiness.
func (s *Service) SetReady(ctx context.Context, id, username string, ready bool) error {
	_, err := s.mutate(ctx, id, func(t *tx) error {
		_, p := t.g.Player(username)
		if p == nil {
			return ErrPlayerNotFound
		}
		if t.g.Status != models.StatusLobby {
			return ErrInvalidGameState
		}
		p.IsReady = ready
		t.log(models.ActionPlayerReady, username, map[string]interface{}{"isReady": ready})
		return nil
	})
	return err
}

// KickPlayer removes target from a lobby. The admin cannot remove themselves.
func (s *Service) KickPlayer(ctx context.Context, id, admin, target string) error {
	_, err := s.mutate(ctx, id, func(t *tx) error {
		if t.g.AdminPlayer != admin {
			return ErrNotAdmin
		}
		if t.g.Status != models.StatusLobby {
			return ErrInvalidGameState
		}
		if target == admin {
			return ErrCannotKickSelf
		}
		idx, _ := t.g.Player(target)
		if idx < 0 {
			return ErrPlayerNotFound
		}
		t.g.Players = append(t.g.Players[:idx], t.g.Players[idx+1:]...)
		t.log(models.ActionKickPlayer, admin, map[string]interface{}{"target": target})
		return nil
	})
	return err
}

// PromoteAdmin hands the admin role to newAdmin, clearing it from the current holder.
func (s *Service) PromoteAdmin(ctx context.Context, id, admin, newAdmin string) error {
	_, err := s.mutate(ctx, id, func(t *tx) error {
		if t.g.AdminPlayer != admin {
			return ErrNotAdmin
		}
		if t.g.Status == models.StatusEnded {
			return ErrInvalidGameState
		}
		if _, p := t.g.Player(newAdmin); p == nil {
			return ErrPlayerNotFound
		}
		if newAdmin == admin {
			return errNoChange
		}
		t.g.AdminPlayer = newAdmin
		for _, p := range t.g.Players {
			p.IsAdmin = p.Username == newAdmin
		}
		t.log(models.ActionPromoteAdmin, admin, map[string]interface{}{"newAdmin": newAdmin})
		return nil
	})
	return err
}

// ResetGame returns a game in any status to a fresh lobby with the same roster and admin.
func (s *Service) ResetGame(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, id, func(t *tx) error {
		g := t.g
		g.Status = models.StatusLobby
		g.Deck = s.freshDeck()
		g.DiscardPile = []models.Card{}
		g.CurrentTurn = 0
		g.Direction = models.Clockwise
		g.Winner = ""
		for _, p := range g.Players {
			p.Hand = []models.Card{}
			p.IsReady = false
			p.SaidUno = false
			p.PendingCard = nil
		}
		t.log(models.ActionResetGame, "", nil)
		return nil
	})
	return err
}
