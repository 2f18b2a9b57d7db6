// Package hub delivers per-player game views to connected clients. It subscribes to the
// game service and pushes one redacted snapshot per registered player on every accepted
// mutation. Players without a registration are skipped; nothing is queued for them.
package hub

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/sirupsen/logrus"
)

// DefaultBuffer is the number of undelivered messages kept per connection.
const DefaultBuffer = 16

const (
	TypeStateUpdate = "gameStateUpdate"
	TypeRemoved     = "removedFromGame"
)

// StateUpdate is the push message carrying a fresh view.
type StateUpdate struct {
	Type   string    `json:"type"`
	Action string    `json:"action,omitempty"`
	Actor  string    `json:"actor,omitempty"`
	State  game.View `json:"state"`
}

// Conn is one player's registered outbound channel.
type Conn struct {
	ID       uuid.UUID
	GameID   string
	Username string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// Send yields encoded messages in delivery order.
func (c *Conn) Send() <-chan []byte { return c.send }

// Done is closed once the registration ends (replaced, unregistered or removed from the game).
func (c *Conn) Done() <-chan struct{} { return c.done }

func (c *Conn) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Hub maps (gameID, username) to the player's latest connection.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]map[string]*Conn
	buffer int
	log    *logrus.Entry
}

func New(buffer int, log *logrus.Entry) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Hub{
		conns:  make(map[string]map[string]*Conn),
		buffer: buffer,
		log:    log.WithField("component", "hub"),
	}
}

// Register attaches a new channel for username in gameID. A previous channel for the same
// player is closed; the latest registration wins.
func (h *Hub) Register(gameID, username string) *Conn {
	c := &Conn{
		ID:       uuid.New(),
		GameID:   gameID,
		Username: username,
		send:     make(chan []byte, h.buffer),
		done:     make(chan struct{}),
	}

	h.mu.Lock()
	players, ok := h.conns[gameID]
	if !ok {
		players = make(map[string]*Conn)
		h.conns[gameID] = players
	}
	prev := players[username]
	players[username] = c
	h.mu.Unlock()

	if prev != nil {
		h.log.WithFields(logrus.Fields{"game": gameID, "user": username}).Info("replacing existing connection")
		prev.close()
	}
	return c
}

// Unregister removes c if it is still the player's current registration.
func (h *Hub) Unregister(c *Conn) {
	h.mu.Lock()
	if players, ok := h.conns[c.GameID]; ok && players[c.Username] == c {
		delete(players, c.Username)
		if len(players) == 0 {
			delete(h.conns, c.GameID)
		}
	}
	h.mu.Unlock()
	c.close()
}

// Connected lists usernames with a live registration in gameID.
func (h *Hub) Connected(gameID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.conns[gameID]))
	for u := range h.conns[gameID] {
		out = append(out, u)
	}
	return out
}

// HandleStateChange pushes a redacted view to every registered player of the changed game.
// Registrations for players no longer seated get a removal notice and are closed.
func (h *Hub) HandleStateChange(ev game.StateChange) {
	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.conns[ev.Game.ID]))
	for _, c := range h.conns[ev.Game.ID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		view, seated := game.ViewFor(ev.Game, c.Username)
		if !seated {
			h.deliver(c, mustEncode(map[string]string{"type": TypeRemoved, "gameId": ev.Game.ID}))
			h.Unregister(c)
			continue
		}
		data, err := json.Marshal(StateUpdate{Type: TypeStateUpdate, Action: ev.Action, Actor: ev.Actor, State: view})
		if err != nil {
			h.log.WithError(err).WithField("game", ev.Game.ID).Error("failed to encode view")
			continue
		}
		h.deliver(c, data)
	}
}

// deliver never blocks. When the buffer is full the oldest queued message is dropped;
// every update is a full snapshot so the newest one supersedes it.
func (h *Hub) deliver(c *Conn, data []byte) {
	select {
	case c.send <- data:
		return
	default:
	}

	select {
	case <-c.send:
	default:
	}
	select {
	case c.send <- data:
	default:
		h.log.WithFields(logrus.Fields{"game": c.GameID, "user": c.Username}).Warn("dropping update for slow connection")
	}
}

func mustEncode(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
