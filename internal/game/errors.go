// internal/game/errors.go
package game

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the transport can map it without knowing every code.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindUnauthorized
	KindInvalidState
	KindIllegalMove
	KindExhaustion
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindUnauthorized:
		return "Unauthorized"
	case KindInvalidState:
		return "InvalidState"
	case KindIllegalMove:
		return "IllegalMove"
	case KindExhaustion:
		return "Exhaustion"
	case KindUnavailable:
		return "Unavailable"
	}
	return "Unknown"
}

// Error is a typed game failure. Two errors match under errors.Is when their codes match.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

var (
	ErrNotFound        = newError(KindNotFound, "NotFound", "game not found")
	ErrPlayerNotFound  = newError(KindNotFound, "PlayerNotFound", "player not found")
	ErrPlayerNotInGame = newError(KindNotFound, "PlayerNotInGame", "player is not in this game")

	ErrNotAdmin    = newError(KindUnauthorized, "NotAdmin", "only the admin can do that")
	ErrNotYourTurn = newError(KindUnauthorized, "NotYourTurn", "not your turn")

	ErrAlreadyStarted      = newError(KindInvalidState, "AlreadyStarted", "game has already started")
	ErrInsufficientPlayers = newError(KindInvalidState, "InsufficientPlayers", "not enough players to start the game")
	ErrNotAllReady         = newError(KindInvalidState, "NotAllReady", "not all players are ready")
	ErrInvalidGameState    = newError(KindInvalidState, "InvalidGameState", "action not allowed in the current game state")
	ErrDrawPending         = newError(KindInvalidState, "DrawPending", "resolve the drawn card first")
	ErrNoPendingDraw       = newError(KindInvalidState, "NoPendingDraw", "no drawn card to keep")

	ErrDuplicateName      = newError(KindIllegalMove, "DuplicateName", "username already taken in this game")
	ErrInvalidUsername    = newError(KindIllegalMove, "InvalidUsername", "username must be 1-32 characters")
	ErrCardNotInHand      = newError(KindIllegalMove, "CardNotInHand", "card not in hand")
	ErrIllegalPlay        = newError(KindIllegalMove, "IllegalPlay", "invalid play")
	ErrIllegalDeclaration = newError(KindIllegalMove, "IllegalDeclaration", "UNO can only be declared with one card left")
	ErrCannotKickSelf     = newError(KindIllegalMove, "CannotKickSelf", "the admin cannot kick themselves")
	ErrInvalidDecision    = newError(KindIllegalMove, "InvalidDecision", "decision must be play or keep")

	ErrDeckExhausted = newError(KindExhaustion, "DeckExhausted", "no cards left to draw")

	ErrUnavailable = newError(KindUnavailable, "Unavailable", "game storage unavailable")
)

// unavailable wraps a storage failure. It is the only retryable kind.
func unavailable(err error) error {
	return &Error{Kind: KindUnavailable, Code: ErrUnavailable.Code, Message: ErrUnavailable.Message, Err: err}
}

// exhausted wraps a deck failure with the op that hit it.
func exhausted(err error) error {
	return &Error{Kind: KindExhaustion, Code: ErrDeckExhausted.Code, Message: ErrDeckExhausted.Message, Err: err}
}

// KindOf returns the kind of a game error, or 0 for anything else.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return 0
}

// Retryable reports whether the caller may retry the same request unchanged.
func Retryable(err error) bool {
	return KindOf(err) == KindUnavailable
}
