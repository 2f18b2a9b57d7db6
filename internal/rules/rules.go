// internal/rules/rules.go
package rules

import (
	"github.com/jason-s-yu/uno/internal/models"
)

// DrawFunc draws one card for the game. It is expected to recycle the discard pile when needed.
type DrawFunc func() (models.Card, error)

// Effect describes what a played card did to the turn order.
type Effect struct {
	Reversed bool   `json:"reversed,omitempty"`
	Skipped  string `json:"skipped,omitempty"` // username skipped by a skip card
	Target   string `json:"target,omitempty"`  // username forced to draw
	Drawn    int    `json:"drawn,omitempty"`   // number of cards forced on Target
}

// IsLegalPlay reports whether played may go on top: same color, same face, or a wild card.
func IsLegalPlay(played, top models.Card) bool {
	return played.Color == top.Color || played.Face == top.Face || played.IsWild()
}

// NextIndex advances from current by one seat in direction, wrapping into [0, n).
func NextIndex(current int, direction models.Direction, n int) int {
	if n <= 0 {
		return 0
	}
	return ((current+int(direction))%n + n) % n
}

// ApplyEffect mutates g for a card that has just been placed on the discard pile by the
// current player. It runs before the regular end-of-turn advance:
//   - reverse flips the direction; with two players it also skips, so the player goes again;
//   - skip moves the turn one extra seat;
//   - draw2 / wild_draw4 make the next player draw 2 / 4 without skipping them.
//
// If a forced draw fails part way, the game is left partially mutated and the caller must
// discard it.
func ApplyEffect(g *models.Game, card models.Card, draw DrawFunc) (Effect, error) {
	var eff Effect
	n := len(g.Players)

	switch card.Face {
	case models.FaceReverse:
		g.Direction = -g.Direction
		eff.Reversed = true
		if n == 2 {
			g.CurrentTurn = NextIndex(g.CurrentTurn, g.Direction, n)
			eff.Skipped = g.Players[g.CurrentTurn].Username
		}

	case models.FaceSkip:
		g.CurrentTurn = NextIndex(g.CurrentTurn, g.Direction, n)
		eff.Skipped = g.Players[g.CurrentTurn].Username

	case models.FaceDraw2, models.FaceWildDrawFour:
		count := 2
		if card.Face == models.FaceWildDrawFour {
			count = 4
		}
		target := g.Players[NextIndex(g.CurrentTurn, g.Direction, n)]
		for i := 0; i < count; i++ {
			c, err := draw()
			if err != nil {
				return eff, err
			}
			target.Hand = append(target.Hand, c)
		}
		eff.Target = target.Username
		eff.Drawn = count
	}

	return eff, nil
}
