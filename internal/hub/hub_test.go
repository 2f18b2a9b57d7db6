package hub

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietHub(buffer int) *Hub {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return New(buffer, logrus.NewEntry(l))
}

func activeGame() *models.Game {
	g := models.NewGame("ABC123", "alice", time.Now())
	g.Players = append(g.Players, &models.Player{Username: "bob", Hand: []models.Card{}})
	g.Status = models.StatusActive
	g.Players[0].Hand = []models.Card{models.MustParseCard("red_1"), models.MustParseCard("blue_2")}
	g.Players[1].Hand = []models.Card{models.MustParseCard("green_3")}
	g.DiscardPile = []models.Card{models.MustParseCard("red_9")}
	return g
}

func recv(t *testing.T, c *Conn) map[string]interface{} {
	t.Helper()
	select {
	case data := <-c.Send():
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func TestHandleStateChangeSendsRedactedViews(t *testing.T) {
	h := quietHub(4)
	alice := h.Register("ABC123", "alice")
	bob := h.Register("ABC123", "bob")
	other := h.Register("ZZZ999", "alice")

	h.HandleStateChange(game.StateChange{Game: activeGame(), Action: models.ActionPlayCard, Actor: "alice"})

	msg := recv(t, alice)
	assert.Equal(t, TypeStateUpdate, msg["type"])
	assert.Equal(t, models.ActionPlayCard, msg["action"])
	state := msg["state"].(map[string]interface{})
	assert.Equal(t, []interface{}{"red_1", "blue_2"}, state["playerHand"])

	msg = recv(t, bob)
	state = msg["state"].(map[string]interface{})
	assert.Equal(t, []interface{}{"green_3"}, state["playerHand"])
	players := state["players"].([]interface{})
	require.Len(t, players, 2)
	first := players[0].(map[string]interface{})
	assert.Equal(t, "alice", first["username"])
	assert.EqualValues(t, 2, first["handSize"])
	assert.NotContains(t, first, "hand")

	assert.Empty(t, other.Send(), "other games are untouched")
}

func TestUnregisteredPlayersAreSkipped(t *testing.T) {
	h := quietHub(4)
	alice := h.Register("ABC123", "alice")
	bob := h.Register("ABC123", "bob")
	h.Unregister(bob)

	h.HandleStateChange(game.StateChange{Game: activeGame()})

	recv(t, alice)
	assert.Empty(t, bob.Send())
	assert.ElementsMatch(t, []string{"alice"}, h.Connected("ABC123"))
	select {
	case <-bob.Done():
	default:
		t.Fatal("unregistered connection should be done")
	}
}

func TestLatestRegistrationWins(t *testing.T) {
	h := quietHub(4)
	first := h.Register("ABC123", "alice")
	second := h.Register("ABC123", "alice")

	select {
	case <-first.Done():
	default:
		t.Fatal("replaced connection should be done")
	}

	// unregistering the stale connection must not drop the new one
	h.Unregister(first)
	assert.ElementsMatch(t, []string{"alice"}, h.Connected("ABC123"))

	h.HandleStateChange(game.StateChange{Game: activeGame()})
	recv(t, second)
	assert.Empty(t, first.Send())
}

func TestSlowConnectionKeepsNewest(t *testing.T) {
	h := quietHub(1)
	alice := h.Register("ABC123", "alice")

	g := activeGame()
	h.HandleStateChange(game.StateChange{Game: g, Action: "first"})
	h.HandleStateChange(game.StateChange{Game: g, Action: "second"})

	msg := recv(t, alice)
	assert.Equal(t, "second", msg["action"])
	assert.Empty(t, alice.Send())
}

func TestRemovedPlayerIsNotified(t *testing.T) {
	h := quietHub(4)
	carol := h.Register("ABC123", "carol")

	h.HandleStateChange(game.StateChange{Game: activeGame(), Action: models.ActionKickPlayer})

	msg := recv(t, carol)
	assert.Equal(t, TypeRemoved, msg["type"])
	assert.Empty(t, h.Connected("ABC123"))
	select {
	case <-carol.Done():
	default:
		t.Fatal("removed player's connection should be done")
	}
}
