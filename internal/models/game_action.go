package models

import "time"

// Log action names recorded on the game.
const (
	ActionCreateGame    = "CREATE_GAME"
	ActionJoinGame      = "JOIN_GAME"
	ActionPlayerReady   = "PLAYER_READY"
	ActionStartGame     = "START_GAME"
	ActionPlayCard      = "PLAY_CARD"
	ActionDrawCard      = "DRAW_CARD"
	ActionKeepCard      = "KEEP_CARD"
	ActionDrawAndPlay   = "DRAW_AND_PLAY"
	ActionSayUno        = "SAY_UNO"
	ActionGameOver      = "GAME_OVER"
	ActionResetGame     = "RESET_GAME"
	ActionKickPlayer    = "KICK_PLAYER"
	ActionPromoteAdmin  = "PROMOTE_ADMIN"
	ActionReshuffleDeck = "RESHUFFLE_DECK"
)

// LogEntry is one append-only audit record on a game.
type LogEntry struct {
	Index     int                    `json:"index"`
	Timestamp time.Time              `json:"timestamp"`
	Action    string                 `json:"action"`
	Actor     string                 `json:"player,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}
