package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jason-s-yu/uno/internal/game"
	"github.com/sirupsen/logrus"
)

// requestError is a malformed request caught before it reaches the game service.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error { return &requestError{msg: msg} }

// errorBody is the wire form of every failure, REST and WebSocket alike.
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Kind    string `json:"kind"`
}

// statusFor maps a game error kind to its HTTP status.
func statusFor(kind game.Kind) int {
	switch kind {
	case game.KindNotFound:
		return http.StatusNotFound
	case game.KindUnauthorized:
		return http.StatusForbidden
	case game.KindInvalidState:
		return http.StatusConflict
	case game.KindIllegalMove:
		return http.StatusBadRequest
	case game.KindExhaustion:
		return http.StatusUnprocessableEntity
	case game.KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// describeError turns err into a status and body. Unknown errors are not echoed to clients.
func describeError(err error) (int, errorBody) {
	var ge *game.Error
	if errors.As(err, &ge) {
		return statusFor(ge.Kind), errorBody{Message: ge.Message, Code: ge.Code, Kind: ge.Kind.String()}
	}
	var re *requestError
	if errors.As(err, &re) {
		return http.StatusBadRequest, errorBody{Message: re.msg, Code: "BadRequest", Kind: game.KindIllegalMove.String()}
	}
	return http.StatusInternalServerError, errorBody{Message: "internal error", Code: "Internal", Kind: "Unknown"}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("failed to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := describeError(err)
	entry := s.logger.WithFields(logrus.Fields{"path": r.URL.Path, "code": body.Code})
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	writeJSON(w, status, body)
}
