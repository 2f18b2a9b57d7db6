// internal/game/sync_state.go
package game

import (
	"context"

	"github.com/jason-s-yu/uno/internal/models"
)

// PlayerView is one seat as every player sees it: counts and flags, never cards.
type PlayerView struct {
	Username      string `json:"username"`
	HandSize      int    `json:"handSize"`
	IsAdmin       bool   `json:"isAdmin"`
	IsReady       bool   `json:"isReady"`
	SaidUno       bool   `json:"saidUno"`
	IsCurrentTurn bool   `json:"isCurrentTurn"`
}

// View is the redacted snapshot of a game for one requesting player.
type View struct {
	GameID      string           `json:"gameId"`
	Status      models.Status    `json:"status"`
	AdminPlayer string           `json:"adminPlayer"`
	CurrentTurn int              `json:"currentTurn"`
	Direction   models.Direction `json:"direction"`
	TopCard     *models.Card     `json:"topCard"`
	Winner      *string          `json:"winner"`
	LastAction  string           `json:"lastAction,omitempty"`
	DeckSize    int              `json:"deckSize"`
	DiscardSize int              `json:"discardSize"`
	Players     []PlayerView     `json:"players"`

	// only ever the requesting player's own cards
	PlayerHand  []models.Card `json:"playerHand"`
	PendingCard *models.Card  `json:"pendingCard,omitempty"`
}

// ViewFor builds username's view of g. ok is false when username is not seated in g.
func ViewFor(g *models.Game, username string) (view View, ok bool) {
	_, me := g.Player(username)
	if me == nil {
		return View{}, false
	}

	view = View{
		GameID:      g.ID,
		Status:      g.Status,
		AdminPlayer: g.AdminPlayer,
		CurrentTurn: g.CurrentTurn,
		Direction:   g.Direction,
		LastAction:  g.LastAction,
		DeckSize:    len(g.Deck),
		DiscardSize: len(g.DiscardPile),
		Players:     make([]PlayerView, 0, len(g.Players)),
		PlayerHand:  append([]models.Card{}, me.Hand...),
	}
	if top, exists := g.TopCard(); exists {
		view.TopCard = &top
	}
	if g.Winner != "" {
		w := g.Winner
		view.Winner = &w
	}
	if me.PendingCard != nil {
		pc := *me.PendingCard
		view.PendingCard = &pc
	}

	for i, p := range g.Players {
		view.Players = append(view.Players, PlayerView{
			Username:      p.Username,
			HandSize:      len(p.Hand),
			IsAdmin:       p.IsAdmin,
			IsReady:       p.IsReady,
			SaidUno:       p.SaidUno,
			IsCurrentTurn: g.Status == models.StatusActive && i == g.CurrentTurn,
		})
	}
	return view, true
}

// GetState returns username's current redacted view.
func (s *Service) GetState(ctx context.Context, id, username string) (View, error) {
	g, err := s.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	view, ok := ViewFor(g, username)
	if !ok {
		return View{}, ErrPlayerNotInGame
	}
	return view, nil
}
