// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/hub"
	"github.com/jason-s-yu/uno/internal/middleware"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
)

// GameMessage is an incoming WebSocket request. ReqID is echoed on the reply.
type GameMessage struct {
	Type  string `json:"type"`
	ReqID string `json:"reqId,omitempty"`

	Card     *models.Card `json:"card,omitempty"`
	IsReady  *bool        `json:"isReady,omitempty"`
	Decision string       `json:"decision,omitempty"`
	Target   string       `json:"target,omitempty"`
}

// GameWSHandler upgrades GET /game/ws/{gameId}?username= for a seated player. The socket
// receives the current view on connect, a gameStateUpdate after every accepted change, and
// a reply (ack, gameState, pong or error) for each request it sends.
func (s *Server) GameWSHandler(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameId")
	username := r.URL.Query().Get("username")

	if _, err := s.svc.GetState(r.Context(), gameID, username); err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{"game"},
		OriginPatterns: s.originPatterns(),
	})
	if err != nil {
		s.logger.Warnf("WebSocket accept error for game %s: %v", gameID, err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

	if c.Subprotocol() != "game" {
		s.logger.Warnf("Client for game %s connected with invalid subprotocol: %s", gameID, c.Subprotocol())
		c.Close(BadSubprotocolError, "Client must use the 'game' subprotocol.")
		return
	}

	conn := s.hub.Register(gameID, username)
	defer s.hub.Unregister(conn)
	middleware.LogWebSocketConnect(s.logger, r.RemoteAddr, gameID, username)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// fetched after registering so no update can fall between the snapshot and the pushes
	view, err := s.svc.GetState(ctx, gameID, username)
	if err != nil {
		s.sendWsError(ctx, c, "", err)
		c.Close(RemovedFromGame, "You are no longer in this game.")
		return
	}
	s.sendWsMessage(ctx, c, map[string]interface{}{"type": "gameState", "state": view})

	go s.writePump(ctx, cancel, c, conn)
	err = s.readGameMessages(ctx, c, gameID, username)
	middleware.LogWebSocketDisconnect(s.logger, r.RemoteAddr, gameID, username, err)
}

// writePump forwards hub pushes and keeps the connection alive with pings. It closes the
// socket once the hub ends the registration.
func (s *Server) writePump(ctx context.Context, cancel context.CancelFunc, c *websocket.Conn, conn *hub.Conn) {
	defer cancel()
	ticker := time.NewTicker(s.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case data := <-conn.Send():
			if err := s.write(ctx, c, data); err != nil {
				return
			}

		case <-conn.Done():
			// flush what the hub queued before ending the registration
			for {
				select {
				case data := <-conn.Send():
					if err := s.write(ctx, c, data); err != nil {
						return
					}
					continue
				default:
				}
				break
			}
			code, reason := websocket.StatusCode(ReplacedConnection), "Replaced by a newer connection."
			if !s.seated(ctx, conn) {
				code, reason = RemovedFromGame, "You are no longer in this game."
			}
			c.Close(code, reason)
			return

		case <-ticker.C:
			pingCtx, pingCancel := context.WithTimeout(ctx, s.opts.WriteTimeout)
			err := c.Ping(pingCtx)
			pingCancel()
			if err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{"game": conn.GameID, "user": conn.Username}).Debug("ping failed")
				return
			}
		}
	}
}

func (s *Server) seated(ctx context.Context, conn *hub.Conn) bool {
	_, err := s.svc.GetState(ctx, conn.GameID, conn.Username)
	return err == nil
}

// readGameMessages reads requests until the socket closes or ctx is cancelled.
func (s *Server) readGameMessages(ctx context.Context, c *websocket.Conn, gameID, username string) error {
	log := s.logger.WithFields(logrus.Fields{"game": gameID, "user": username})
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if msgType != websocket.MessageText {
			log.Warnf("Received non-text message type %d. Ignoring.", msgType)
			continue
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warnf("Invalid JSON received: %v", err)
			s.sendWsError(ctx, c, "", badRequest("invalid message: "+err.Error()))
			continue
		}
		log.Debugf("Received action '%s'", msg.Type)

		switch msg.Type {
		case "ping":
			s.sendWsMessage(ctx, c, map[string]string{"type": "pong", "reqId": msg.ReqID})

		case "getGameState":
			view, err := s.svc.GetState(ctx, gameID, username)
			if err != nil {
				s.sendWsError(ctx, c, msg.ReqID, err)
				continue
			}
			s.sendWsMessage(ctx, c, map[string]interface{}{"type": "gameState", "reqId": msg.ReqID, "state": view})

		default:
			result, err := s.dispatch(ctx, gameID, username, msg)
			if err != nil {
				s.sendWsError(ctx, c, msg.ReqID, err)
				continue
			}
			ack := map[string]interface{}{"type": "ack", "reqId": msg.ReqID, "action": msg.Type}
			if result != nil {
				ack["result"] = result
			}
			s.sendWsMessage(ctx, c, ack)
		}
	}
}

// dispatch routes one game request to the service. The connection's username is the actor.
func (s *Server) dispatch(ctx context.Context, gameID, username string, msg GameMessage) (interface{}, error) {
	switch msg.Type {
	case "playerReady":
		ready := true
		if msg.IsReady != nil {
			ready = *msg.IsReady
		}
		return nil, s.svc.SetReady(ctx, gameID, username, ready)

	case "startGame":
		return nil, s.svc.StartGame(ctx, gameID, username)

	case "playCard":
		if msg.Card == nil {
			return nil, badRequest("card is required")
		}
		return s.svc.PlayCard(ctx, gameID, username, *msg.Card)

	case "drawCard":
		return s.svc.DrawCard(ctx, gameID, username)

	case "keepCard":
		return nil, s.svc.KeepCard(ctx, gameID, username)

	case "drawAndPlay":
		return s.svc.DrawAndResolve(ctx, gameID, username, game.Decision(msg.Decision))

	case "sayUno":
		return nil, s.svc.SayUno(ctx, gameID, username)

	case "resetGame":
		s.logger.WithFields(logrus.Fields{"game": gameID, "requester": username}).Info("game reset")
		return nil, s.svc.ResetGame(ctx, gameID)

	case "kickPlayer":
		return nil, s.svc.KickPlayer(ctx, gameID, username, msg.Target)

	case "promoteAdmin":
		return nil, s.svc.PromoteAdmin(ctx, gameID, username, msg.Target)
	}
	return nil, badRequest("unknown message type: " + msg.Type)
}

func (s *Server) write(ctx context.Context, c *websocket.Conn, data []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, s.opts.WriteTimeout)
	defer cancel()
	err := c.Write(writeCtx, websocket.MessageText, data)
	if err != nil {
		status := websocket.CloseStatus(err)
		if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
			s.logger.Warnf("Error writing WebSocket message: %v (Status: %d)", err, status)
		}
	}
	return err
}

// sendWsMessage marshals message and writes it with the configured timeout.
func (s *Server) sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}) {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		s.logger.Errorf("Error marshaling WebSocket message: %v", err)
		return
	}
	_ = s.write(ctx, c, msgBytes)
}

func (s *Server) sendWsError(ctx context.Context, c *websocket.Conn, reqID string, err error) {
	_, body := describeError(err)
	s.sendWsMessage(ctx, c, map[string]interface{}{
		"type":    "error",
		"reqId":   reqID,
		"code":    body.Code,
		"kind":    body.Kind,
		"message": body.Message,
	})
}
