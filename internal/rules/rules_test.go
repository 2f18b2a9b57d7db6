package rules

import (
	"errors"
	"testing"

	"github.com/jason-s-yu/uno/internal/deck"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(s string) models.Card { return models.MustParseCard(s) }

func newGame(names ...string) *models.Game {
	g := &models.Game{Status: models.StatusActive, Direction: models.Clockwise}
	for _, n := range names {
		g.Players = append(g.Players, &models.Player{Username: n, Hand: []models.Card{}})
	}
	return g
}

// fixedDraw hands out cards from a list, then reports exhaustion.
func fixedDraw(cards ...models.Card) DrawFunc {
	return func() (models.Card, error) {
		if len(cards) == 0 {
			return models.Card{}, errors.New("exhausted")
		}
		c := cards[0]
		cards = cards[1:]
		return c, nil
	}
}

func TestIsLegalPlay(t *testing.T) {
	top := card("red_5")
	assert.True(t, IsLegalPlay(card("red_9"), top), "same color")
	assert.True(t, IsLegalPlay(card("blue_5"), top), "same face")
	assert.True(t, IsLegalPlay(card("wild"), top), "wild")
	assert.True(t, IsLegalPlay(card("wild_draw4"), top), "wild draw four")
	assert.False(t, IsLegalPlay(card("blue_9"), top))
	assert.False(t, IsLegalPlay(card("green_skip"), top))

	assert.True(t, IsLegalPlay(card("green_skip"), card("blue_skip")))
	assert.True(t, IsLegalPlay(card("yellow_draw2"), card("red_draw2")))
}

func TestIsLegalPlayAllPairs(t *testing.T) {
	all := append(deck.BuildStandard(), card("wild"), card("wild_draw4"))
	for _, top := range all {
		for _, c := range all {
			want := c.Color == top.Color || c.Face == top.Face || c.Color == models.Wild
			if got := IsLegalPlay(c, top); got != want {
				t.Errorf("IsLegalPlay(%s, %s) = %v, want %v", c, top, got, want)
			}
		}
	}
}

func TestNextIndexWraps(t *testing.T) {
	assert.Equal(t, 1, NextIndex(0, models.Clockwise, 3))
	assert.Equal(t, 0, NextIndex(2, models.Clockwise, 3))
	assert.Equal(t, 2, NextIndex(0, models.CounterClockwise, 3))
	assert.Equal(t, 0, NextIndex(1, models.CounterClockwise, 3))
}

func TestApplyReverse(t *testing.T) {
	g := newGame("alice", "bob", "carol")
	eff, err := ApplyEffect(g, card("red_reverse"), fixedDraw())
	require.NoError(t, err)
	assert.True(t, eff.Reversed)
	assert.Equal(t, models.CounterClockwise, g.Direction)
	assert.Equal(t, 0, g.CurrentTurn)
}

func TestApplyReverseTwoPlayersSkips(t *testing.T) {
	g := newGame("alice", "bob")
	eff, err := ApplyEffect(g, card("blue_reverse"), fixedDraw())
	require.NoError(t, err)
	assert.True(t, eff.Reversed)
	assert.Equal(t, "bob", eff.Skipped)
	// the regular advance then lands back on alice
	assert.Equal(t, 0, NextIndex(g.CurrentTurn, g.Direction, 2))
}

func TestApplySkip(t *testing.T) {
	g := newGame("alice", "bob", "carol")
	eff, err := ApplyEffect(g, card("red_skip"), fixedDraw())
	require.NoError(t, err)
	assert.Equal(t, "bob", eff.Skipped)
	assert.Equal(t, 1, g.CurrentTurn)
}

func TestApplyDrawTwoHitsNextByDirection(t *testing.T) {
	g := newGame("alice", "bob", "carol")
	g.Direction = models.CounterClockwise
	eff, err := ApplyEffect(g, card("red_draw2"), fixedDraw(card("blue_1"), card("blue_2")))
	require.NoError(t, err)

	assert.Equal(t, "carol", eff.Target)
	assert.Equal(t, 2, eff.Drawn)
	assert.Equal(t, []models.Card{card("blue_1"), card("blue_2")}, g.Players[2].Hand)
	assert.Empty(t, g.Players[1].Hand)
	assert.Equal(t, 0, g.CurrentTurn, "target is not skipped")
}

func TestApplyWildDrawFour(t *testing.T) {
	g := newGame("alice", "bob")
	_, err := ApplyEffect(g, card("wild_draw4"), fixedDraw(card("red_1"), card("red_2"), card("red_3"), card("red_4")))
	require.NoError(t, err)
	assert.Len(t, g.Players[1].Hand, 4)
}

func TestApplyDrawPropagatesExhaustion(t *testing.T) {
	g := newGame("alice", "bob")
	_, err := ApplyEffect(g, card("red_draw2"), fixedDraw(card("red_1")))
	assert.Error(t, err)
}

func TestApplyNumberIsNoop(t *testing.T) {
	g := newGame("alice", "bob")
	eff, err := ApplyEffect(g, card("red_4"), fixedDraw())
	require.NoError(t, err)
	assert.Equal(t, Effect{}, eff)
	assert.Equal(t, 0, g.CurrentTurn)
	assert.Equal(t, models.Clockwise, g.Direction)
}
