package models

// Player is one seat in a game. Connection handles are owned by the hub and never stored here.
type Player struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	IsReady  bool   `json:"isReady"`
	Hand     []Card `json:"hand"`
	SaidUno  bool   `json:"saidUno"`

	// PendingCard holds a legal card drawn this turn while the player decides to play or keep it.
	PendingCard *Card `json:"pendingCard,omitempty"`
}

// HandIndex returns the index of the first card in the hand equal to c, or -1.
func (p *Player) HandIndex(c Card) int {
	for i, h := range p.Hand {
		if h == c {
			return i
		}
	}
	return -1
}

// RemoveCard removes the first occurrence of c from the hand.
func (p *Player) RemoveCard(c Card) bool {
	idx := p.HandIndex(c)
	if idx < 0 {
		return false
	}
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	return true
}
