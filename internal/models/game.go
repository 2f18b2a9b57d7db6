// internal/models/game.go
package models

import (
	"fmt"
	"time"
)

// Status is the lifecycle phase of a game.
type Status string

const (
	StatusLobby  Status = "lobby"
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// Direction is the seat traversal direction: +1 clockwise, -1 counter-clockwise.
type Direction int

const (
	Clockwise        Direction = 1
	CounterClockwise Direction = -1
)

// Game is the whole persisted aggregate for one session. It is saved and loaded as a unit.
type Game struct {
	ID          string     `json:"gameId"`
	AdminPlayer string     `json:"adminPlayer"`
	Players     []*Player  `json:"players"`
	Status      Status     `json:"status"`
	Deck        []Card     `json:"deck"`        // top of the deck is the last element
	DiscardPile []Card     `json:"discardPile"` // top card is the last element
	CurrentTurn int        `json:"currentTurn"`
	Direction   Direction  `json:"direction"`
	Winner      string     `json:"winner,omitempty"`
	LastAction  string     `json:"lastAction,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Logs        []LogEntry `json:"logs"`
}

// NewGame returns a lobby with the creator seated as a ready admin.
func NewGame(id, creator string, now time.Time) *Game {
	return &Game{
		ID:          id,
		AdminPlayer: creator,
		Players:     []*Player{{Username: creator, IsAdmin: true, IsReady: true, Hand: []Card{}}},
		Status:      StatusLobby,
		Deck:        []Card{},
		DiscardPile: []Card{},
		Direction:   Clockwise,
		CreatedAt:   now,
		UpdatedAt:   now,
		Logs:        []LogEntry{},
	}
}

// Player returns the seat index and player for username, or (-1, nil).
func (g *Game) Player(username string) (int, *Player) {
	for i, p := range g.Players {
		if p.Username == username {
			return i, p
		}
	}
	return -1, nil
}

// CurrentPlayer returns the player whose turn it is, or nil outside of an active game.
func (g *Game) CurrentPlayer() *Player {
	if g.Status != StatusActive || g.CurrentTurn < 0 || g.CurrentTurn >= len(g.Players) {
		return nil
	}
	return g.Players[g.CurrentTurn]
}

// TopCard returns the top of the discard pile.
func (g *Game) TopCard() (Card, bool) {
	if len(g.DiscardPile) == 0 {
		return Card{}, false
	}
	return g.DiscardPile[len(g.DiscardPile)-1], true
}

// CardCount totals every card the game holds: deck, discard, hands and pending draws.
func (g *Game) CardCount() int {
	n := len(g.Deck) + len(g.DiscardPile)
	for _, p := range g.Players {
		n += len(p.Hand)
		if p.PendingCard != nil {
			n++
		}
	}
	return n
}

// AppendLog records an action and refreshes the human-readable last action.
func (g *Game) AppendLog(now time.Time, action, actor string, details map[string]interface{}) LogEntry {
	entry := LogEntry{
		Index:     len(g.Logs),
		Timestamp: now,
		Action:    action,
		Actor:     actor,
		Details:   details,
	}
	g.Logs = append(g.Logs, entry)
	g.LastAction = describe(entry)
	g.UpdatedAt = now
	return entry
}

func describe(e LogEntry) string {
	switch e.Action {
	case ActionCreateGame:
		return fmt.Sprintf("%s created the game", e.Actor)
	case ActionJoinGame:
		return fmt.Sprintf("%s joined", e.Actor)
	case ActionPlayCard:
		return fmt.Sprintf("%s played %v", e.Actor, e.Details["card"])
	case ActionDrawAndPlay:
		if played, _ := e.Details["played"].(bool); played {
			return fmt.Sprintf("%s drew and played %v", e.Actor, e.Details["card"])
		}
		return fmt.Sprintf("%s drew a card", e.Actor)
	case ActionDrawCard, ActionKeepCard:
		return fmt.Sprintf("%s drew a card", e.Actor)
	case ActionSayUno:
		return fmt.Sprintf("%s said UNO", e.Actor)
	case ActionGameOver:
		return fmt.Sprintf("%s won the game", e.Actor)
	case ActionStartGame:
		return "game started"
	case ActionResetGame:
		return "game reset"
	case ActionKickPlayer:
		return fmt.Sprintf("%s kicked %v", e.Actor, e.Details["target"])
	case ActionPromoteAdmin:
		return fmt.Sprintf("%v is now admin", e.Details["newAdmin"])
	}
	if e.Actor == "" {
		return e.Action
	}
	return fmt.Sprintf("%s: %s", e.Actor, e.Action)
}

// Clone returns a deep copy that shares no slices, maps or players with g.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	c := *g
	c.Deck = append([]Card{}, g.Deck...)
	c.DiscardPile = append([]Card{}, g.DiscardPile...)
	c.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		cp := *p
		cp.Hand = append([]Card{}, p.Hand...)
		if p.PendingCard != nil {
			pc := *p.PendingCard
			cp.PendingCard = &pc
		}
		c.Players[i] = &cp
	}
	c.Logs = make([]LogEntry, len(g.Logs))
	for i, e := range g.Logs {
		c.Logs[i] = e
		if e.Details != nil {
			d := make(map[string]interface{}, len(e.Details))
			for k, v := range e.Details {
				d[k] = v
			}
			c.Logs[i].Details = d
		}
	}
	return &c
}
