// internal/game/play.go
package game

import (
	"context"

	"github.com/jason-s-yu/uno/internal/deck"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/jason-s-yu/uno/internal/rules"
)

// Decision is the follow-up chosen for DrawAndResolve.
type Decision string

const (
	DecisionPlay Decision = "play"
	DecisionKeep Decision = "keep"
)

// ParseDecision accepts "play" or "keep".
func ParseDecision(s string) (Decision, error) {
	switch d := Decision(s); d {
	case DecisionPlay, DecisionKeep:
		return d, nil
	}
	return "", ErrInvalidDecision
}

// PlayResult reports whether a play ended the game.
type PlayResult struct {
	GameOver bool   `json:"gameOver"`
	Winner   string `json:"winner,omitempty"`
}

// DrawResult is the outcome of DrawCard. When CanPlay is true the card is held for the
// player until they play it or call KeepCard.
type DrawResult struct {
	Card    models.Card `json:"drawnCard"`
	CanPlay bool        `json:"canPlayDrawnCard"`
}

// ResolveResult is the outcome of DrawAndResolve.
type ResolveResult struct {
	Card   models.Card `json:"drawnCard"`
	Played bool        `json:"played"`
}

// turnPlayer returns the acting player if the game is active and it is their turn.
func turnPlayer(g *models.Game, username string) (*models.Player, error) {
	if g.Status != models.StatusActive {
		return nil, ErrInvalidGameState
	}
	p := g.CurrentPlayer()
	if p == nil || p.Username != username {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

func advance(g *models.Game) {
	g.CurrentTurn = rules.NextIndex(g.CurrentTurn, g.Direction, len(g.Players))
}

func effectDetails(card models.Card, eff rules.Effect) map[string]interface{} {
	d := map[string]interface{}{"card": card.String()}
	if eff.Reversed {
		d["reversed"] = true
	}
	if eff.Skipped != "" {
		d["skipped"] = eff.Skipped
	}
	if eff.Target != "" {
		d["target"] = eff.Target
		d["drawn"] = eff.Drawn
	}
	return d
}

// StartGame deals the lobby's deck and moves the game to active.
func (s *Service) StartGame(ctx context.Context, id, username string) error {
	_, err := s.mutate(ctx, id, func(t *tx) error {
		g := t.g
		if g.AdminPlayer != username {
			return ErrNotAdmin
		}
		if g.Status != models.StatusLobby {
			return ErrAlreadyStarted
		}
		if len(g.Players) < 2 {
			return ErrInsufficientPlayers
		}
		for _, p := range g.Players {
			if !p.IsReady {
				return ErrNotAllReady
			}
		}

		cards := g.Deck
		if len(cards) != deck.StandardDeckSize {
			cards = s.freshDeck()
		}
		hands, remaining, first, err := deck.Deal(cards, len(g.Players))
		if err != nil {
			return exhausted(err)
		}
		for i, p := range g.Players {
			p.Hand = hands[i]
			p.SaidUno = false
			p.PendingCard = nil
		}
		g.Deck = remaining
		g.DiscardPile = []models.Card{first}
		g.CurrentTurn = 0
		g.Direction = models.Clockwise
		g.Winner = ""
		g.Status = models.StatusActive
		t.log(models.ActionStartGame, username, map[string]interface{}{
			"players": len(g.Players),
			"topCard": first.String(),
		})
		return nil
	})
	return err
}

// PlayCard plays card for username. While a drawn card is pending, only that card may be played.
func (s *Service) PlayCard(ctx context.Context, id, username string, card models.Card) (PlayResult, error) {
	var res PlayResult
	_, err := s.mutate(ctx, id, func(t *tx) error {
		g := t.g
		p, err := turnPlayer(g, username)
		if err != nil {
			return err
		}

		fromPending := p.PendingCard != nil
		if fromPending {
			if *p.PendingCard != card {
				return ErrDrawPending
			}
		} else if p.HandIndex(card) < 0 {
			return ErrCardNotInHand
		}
		top, _ := g.TopCard()
		if !rules.IsLegalPlay(card, top) {
			return ErrIllegalPlay
		}

		if fromPending {
			p.PendingCard = nil
		} else {
			p.RemoveCard(card)
		}
		g.DiscardPile = append(g.DiscardPile, card)

		eff, err := rules.ApplyEffect(g, card, t.draw)
		if err != nil {
			return err
		}
		advance(g)
		t.log(models.ActionPlayCard, username, effectDetails(card, eff))

		if len(p.Hand) == 0 {
			g.Status = models.StatusEnded
			g.Winner = username
			t.log(models.ActionGameOver, username, nil)
			res = PlayResult{GameOver: true, Winner: username}
		}
		return nil
	})
	return res, err
}

// DrawCard draws one card for username. An unplayable card goes to the hand and ends the
// turn; a playable one is held as the player's pending card.
func (s *Service) DrawCard(ctx context.Context, id, username string) (DrawResult, error) {
	var res DrawResult
	_, err := s.mutate(ctx, id, func(t *tx) error {
		g := t.g
		p, err := turnPlayer(g, username)
		if err != nil {
			return err
		}
		if p.PendingCard != nil {
			return ErrDrawPending
		}

		c, err := t.draw()
		if err != nil {
			return err
		}
		top, _ := g.TopCard()
		res = DrawResult{Card: c, CanPlay: rules.IsLegalPlay(c, top)}
		if res.CanPlay {
			p.PendingCard = &c
		} else {
			p.Hand = append(p.Hand, c)
			advance(g)
		}
		t.log(models.ActionDrawCard, username, map[string]interface{}{
			"card":    c.String(),
			"canPlay": res.CanPlay,
		})
		return nil
	})
	return res, err
}

// KeepCard moves the pending drawn card into the hand and ends the turn.
func (s *Service) KeepCard(ctx context.Context, id, username string) error {
	_, err := s.mutate(ctx, id, func(t *tx) error {
		p, err := turnPlayer(t.g, username)
		if err != nil {
			return err
		}
		if p.PendingCard == nil {
			return ErrNoPendingDraw
		}
		p.Hand = append(p.Hand, *p.PendingCard)
		p.PendingCard = nil
		advance(t.g)
		t.log(models.ActionKeepCard, username, nil)
		return nil
	})
	return err
}

// DrawAndResolve draws and settles the card in one step: it is played when the decision is
// play and the card is legal, otherwise kept. The turn always advances.
func (s *Service) DrawAndResolve(ctx context.Context, id, username string, decision Decision) (ResolveResult, error) {
	var res ResolveResult
	_, err := s.mutate(ctx, id, func(t *tx) error {
		g := t.g
		p, err := turnPlayer(g, username)
		if err != nil {
			return err
		}
		if _, err := ParseDecision(string(decision)); err != nil {
			return err
		}
		if p.PendingCard != nil {
			return ErrDrawPending
		}

		c, err := t.draw()
		if err != nil {
			return err
		}
		top, _ := g.TopCard()
		res = ResolveResult{Card: c, Played: decision == DecisionPlay && rules.IsLegalPlay(c, top)}

		var details map[string]interface{}
		if res.Played {
			g.DiscardPile = append(g.DiscardPile, c)
			eff, err := rules.ApplyEffect(g, c, t.draw)
			if err != nil {
				return err
			}
			details = effectDetails(c, eff)
		} else {
			p.Hand = append(p.Hand, c)
			details = map[string]interface{}{"card": c.String()}
		}
		details["played"] = res.Played
		advance(g)
		t.log(models.ActionDrawAndPlay, username, details)
		return nil
	})
	return res, err
}

// SayUno marks that username has declared UNO. The flag stays set until the next deal or reset.
func (s *Service) SayUno(ctx context.Context, id, username string) error {
	_, err := s.mutate(ctx, id, func(t *tx) error {
		if t.g.Status != models.StatusActive {
			return ErrInvalidGameState
		}
		_, p := t.g.Player(username)
		if p == nil {
			return ErrPlayerNotFound
		}
		if len(p.Hand) != 1 {
			return ErrIllegalDeclaration
		}
		p.SaidUno = true
		t.log(models.ActionSayUno, username, nil)
		return nil
	})
	return err
}
