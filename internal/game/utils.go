// internal/game/utils.go
package game

import (
	"strings"
	"unicode/utf8"
)

const (
	gameIDLength   = 6
	gameIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	maxIDAttempts  = 8

	maxUsernameLength = 32
)

// newGameID returns a short uppercase base-36 code players can read out to each other.
func (s *Service) newGameID() string {
	var b strings.Builder
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	for i := 0; i < gameIDLength; i++ {
		b.WriteByte(gameIDAlphabet[s.rng.Intn(len(gameIDAlphabet))])
	}
	return b.String()
}

func validateUsername(username string) error {
	if strings.TrimSpace(username) == "" || utf8.RuneCountInString(username) > maxUsernameLength {
		return ErrInvalidUsername
	}
	return nil
}
