// Package deck builds, shuffles, deals and recycles the 100-card UNO deck.
// Decks are stacks: the top card is the last element and draws pop from the end.
package deck

import (
	"errors"
	"math/rand"

	"github.com/jason-s-yu/uno/internal/models"
)

const (
	// StandardDeckSize is the number of cards BuildStandard produces.
	StandardDeckSize = 100
	// HandSize is the number of cards dealt to each player.
	HandSize = 7
)

var (
	// ErrExhausted is returned when a draw finds nothing in the deck even after recycling the discard pile.
	ErrExhausted = errors.New("deck exhausted")
	// ErrInsufficientCards is returned when a deal would need more cards than the deck holds.
	ErrInsufficientCards = errors.New("not enough cards to deal")
)

// BuildStandard returns an unshuffled deck: per color one 0, and two each of 1-9,
// skip, reverse and draw2. Wild cards are not generated.
func BuildStandard() []models.Card {
	cards := make([]models.Card, 0, StandardDeckSize)
	for _, color := range models.Colors {
		cards = append(cards, models.Card{Color: color, Face: models.NumberFace(0)})
		for n := 1; n <= 9; n++ {
			face := models.NumberFace(n)
			cards = append(cards, models.Card{Color: color, Face: face}, models.Card{Color: color, Face: face})
		}
		for _, face := range []models.Face{models.FaceSkip, models.FaceReverse, models.FaceDraw2} {
			cards = append(cards, models.Card{Color: color, Face: face}, models.Card{Color: color, Face: face})
		}
	}
	return cards
}

// Shuffle permutes cards in place (Fisher-Yates via rand.Shuffle).
func Shuffle(cards []models.Card, r *rand.Rand) {
	r.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// Deal hands out HandSize cards to each of playerCount players, one card per player per round,
// then pops one more card to seed the discard pile. The input slice is consumed.
func Deal(cards []models.Card, playerCount int) (hands [][]models.Card, remaining []models.Card, first models.Card, err error) {
	if playerCount*HandSize+1 > len(cards) {
		return nil, cards, models.Card{}, ErrInsufficientCards
	}

	hands = make([][]models.Card, playerCount)
	for i := range hands {
		hands[i] = make([]models.Card, 0, HandSize)
	}
	for round := 0; round < HandSize; round++ {
		for p := 0; p < playerCount; p++ {
			last := len(cards) - 1
			hands[p] = append(hands[p], cards[last])
			cards = cards[:last]
		}
	}

	last := len(cards) - 1
	first = cards[last]
	return hands, cards[:last], first, nil
}

// Reshuffle turns every discard except the top card into a fresh shuffled deck.
// The returned discard pile holds only the previous top card.
func Reshuffle(discard []models.Card, r *rand.Rand) (newDeck, newDiscard []models.Card, err error) {
	if len(discard) <= 1 {
		return nil, discard, ErrExhausted
	}
	top := discard[len(discard)-1]
	newDeck = append([]models.Card{}, discard[:len(discard)-1]...)
	Shuffle(newDeck, r)
	return newDeck, []models.Card{top}, nil
}

// Draw pops the top card of g's deck. An empty deck triggers exactly one reshuffle of the
// discard pile first; reshuffled reports whether that happened.
func Draw(g *models.Game, r *rand.Rand) (card models.Card, reshuffled bool, err error) {
	if len(g.Deck) == 0 {
		newDeck, newDiscard, err := Reshuffle(g.DiscardPile, r)
		if err != nil {
			return models.Card{}, false, err
		}
		g.Deck, g.DiscardPile = newDeck, newDiscard
		reshuffled = true
	}

	last := len(g.Deck) - 1
	card = g.Deck[last]
	g.Deck = g.Deck[:last]
	return card, reshuffled, nil
}
