package deck

import (
	"math/rand"
	"testing"

	"github.com/jason-s-yu/uno/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStandardComposition(t *testing.T) {
	cards := BuildStandard()
	require.Len(t, cards, StandardDeckSize)

	counts := map[models.Card]int{}
	for _, c := range cards {
		counts[c]++
	}
	for _, color := range models.Colors {
		assert.Equal(t, 1, counts[models.Card{Color: color, Face: "0"}], "one zero per color")
		for n := 1; n <= 9; n++ {
			assert.Equal(t, 2, counts[models.Card{Color: color, Face: models.NumberFace(n)}])
		}
		for _, f := range []models.Face{models.FaceSkip, models.FaceReverse, models.FaceDraw2} {
			assert.Equal(t, 2, counts[models.Card{Color: color, Face: f}])
		}
	}
	for c := range counts {
		assert.False(t, c.IsWild(), "standard deck has no wild cards")
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	cards := BuildStandard()
	orig := append([]models.Card{}, cards...)
	Shuffle(cards, rand.New(rand.NewSource(42)))

	assert.ElementsMatch(t, orig, cards)
	assert.NotEqual(t, orig, cards)
}

func TestShuffleUnbiased(t *testing.T) {
	const rounds = 6000
	r := rand.New(rand.NewSource(99))
	base := []models.Card{
		models.MustParseCard("red_1"),
		models.MustParseCard("blue_2"),
		models.MustParseCard("green_3"),
	}

	counts := map[string]int{}
	for i := 0; i < rounds; i++ {
		cards := append([]models.Card{}, base...)
		Shuffle(cards, r)
		counts[cards[0].String()+" "+cards[1].String()+" "+cards[2].String()]++
	}

	// each of the 3! orders expects rounds/6 = 1000 hits, sigma is about 29
	require.Len(t, counts, 6)
	for order, n := range counts {
		assert.InDelta(t, rounds/6, n, 150, "order %s", order)
	}
}

func TestDealRoundRobinFromTop(t *testing.T) {
	cards := BuildStandard()
	Shuffle(cards, rand.New(rand.NewSource(7)))
	orig := append([]models.Card{}, cards...)

	hands, remaining, first, err := Deal(cards, 3)
	require.NoError(t, err)
	require.Len(t, hands, 3)
	for _, h := range hands {
		assert.Len(t, h, HandSize)
	}
	assert.Len(t, remaining, StandardDeckSize-3*HandSize-1)

	// round-robin pops from the end: player 0 gets the last card, player 1 the one before
	assert.Equal(t, orig[len(orig)-1], hands[0][0])
	assert.Equal(t, orig[len(orig)-2], hands[1][0])
	assert.Equal(t, orig[len(orig)-4], hands[0][1])
	assert.Equal(t, orig[len(orig)-3*HandSize-1], first)

	total := len(remaining) + 1
	for _, h := range hands {
		total += len(h)
	}
	assert.Equal(t, StandardDeckSize, total)
}

func TestDealUnderSupply(t *testing.T) {
	_, _, _, err := Deal(BuildStandard()[:14], 2)
	assert.ErrorIs(t, err, ErrInsufficientCards)

	_, _, _, err = Deal(BuildStandard()[:15], 2)
	assert.NoError(t, err)
}

func TestReshuffleKeepsTop(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	discard := []models.Card{
		models.MustParseCard("red_1"),
		models.MustParseCard("blue_2"),
		models.MustParseCard("green_3"),
	}
	deck, newDiscard, err := Reshuffle(discard, r)
	require.NoError(t, err)
	assert.Equal(t, []models.Card{models.MustParseCard("green_3")}, newDiscard)
	assert.ElementsMatch(t, discard[:2], deck)

	_, _, err = Reshuffle(newDiscard, r)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestDrawReshufflesOnceWhenEmpty(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	g := &models.Game{
		Deck: []models.Card{},
		DiscardPile: []models.Card{
			models.MustParseCard("red_1"),
			models.MustParseCard("red_2"),
			models.MustParseCard("red_3"),
		},
	}

	c, reshuffled, err := Draw(g, r)
	require.NoError(t, err)
	assert.True(t, reshuffled)
	assert.Contains(t, []models.Card{models.MustParseCard("red_1"), models.MustParseCard("red_2")}, c)
	assert.Len(t, g.Deck, 1)
	assert.Equal(t, []models.Card{models.MustParseCard("red_3")}, g.DiscardPile)

	_, reshuffled, err = Draw(g, r)
	require.NoError(t, err)
	assert.False(t, reshuffled)

	_, _, err = Draw(g, r)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Len(t, g.DiscardPile, 1)
}
