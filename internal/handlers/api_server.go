// internal/handlers/api_server.go
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/hub"
	"github.com/jason-s-yu/uno/internal/middleware"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
)

// Options tune the transport. Zero values fall back to defaults.
type Options struct {
	// ClientURL is the browser origin allowed by CORS and the WebSocket origin check.
	ClientURL    string
	WriteTimeout time.Duration
	PingInterval time.Duration
}

// Server exposes the game service over REST and WebSocket.
type Server struct {
	svc    *game.Service
	hub    *hub.Hub
	logger *logrus.Logger
	opts   Options
}

func NewServer(svc *game.Service, h *hub.Hub, logger *logrus.Logger, opts Options) *Server {
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	return &Server{svc: svc, hub: h, logger: logger, opts: opts}
}

// Routes registers every endpoint behind the access log.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "UNO Game Server is running")
	})

	mux.HandleFunc("POST /api/games", s.createGame)
	mux.HandleFunc("POST /api/games/join", s.joinGame)
	mux.HandleFunc("POST /api/games/start", s.startGame)
	mux.HandleFunc("POST /api/games/play-card", s.playCard)
	mux.HandleFunc("POST /api/games/draw-card", s.drawCard)
	mux.HandleFunc("POST /api/games/keep-card", s.keepCard)
	mux.HandleFunc("POST /api/games/draw-and-play", s.drawAndPlay)
	mux.HandleFunc("POST /api/games/player-ready", s.playerReady)
	mux.HandleFunc("POST /api/games/say-uno", s.sayUno)
	mux.HandleFunc("POST /api/games/kick-player", s.kickPlayer)
	mux.HandleFunc("POST /api/games/promote-admin", s.promoteAdmin)
	mux.HandleFunc("POST /api/games/reset", s.resetGame)
	mux.HandleFunc("GET /api/games/state", s.gameState)

	mux.HandleFunc("GET /game/ws/{gameId}", s.GameWSHandler)

	return middleware.LogMiddleware(s.logger)(mux)
}

// Handler is Routes wrapped with panic recovery and CORS for the client origin.
func (s *Server) Handler() http.Handler {
	h := gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(s.logger),
		gorillahandlers.PrintRecoveryStack(true),
	)(s.Routes())
	if s.opts.ClientURL == "" {
		return h
	}
	return gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins([]string{s.opts.ClientURL}),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", middleware.RequestIDHeader}),
		gorillahandlers.AllowCredentials(),
	)(h)
}

// originPatterns converts ClientURL into the host pattern the WebSocket origin check expects.
func (s *Server) originPatterns() []string {
	if s.opts.ClientURL == "" {
		return nil
	}
	u, err := url.Parse(s.opts.ClientURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}

// gameRequest carries every REST body field. Field names follow the browser client.
type gameRequest struct {
	GameID   string       `json:"gameId"`
	Username string       `json:"username"`
	Card     *models.Card `json:"card,omitempty"`
	IsReady  *bool        `json:"isReady,omitempty"`
	Action   string       `json:"action,omitempty"`

	AdminUsername        string `json:"adminUsername,omitempty"`
	PlayerToKick         string `json:"playerToKick,omitempty"`
	CurrentAdminUsername string `json:"currentAdminUsername,omitempty"`
	NewAdminUsername     string `json:"newAdminUsername,omitempty"`
}

func decodeRequest(r *http.Request) (gameRequest, error) {
	var req gameRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	if err := dec.Decode(&req); err != nil {
		return req, badRequest("invalid request body: " + err.Error())
	}
	return req, nil
}

// withRequest decodes the body and hands it to fn, writing any failure.
func (s *Server) withRequest(w http.ResponseWriter, r *http.Request, fn func(req gameRequest) (int, interface{}, error)) {
	req, err := decodeRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status, body, err := fn(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, body)
}

type message struct {
	Message string `json:"message"`
}

func ok(msg string) (int, interface{}, error) {
	return http.StatusOK, message{Message: msg}, nil
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	s.withRequest(w, r, func(req gameRequest) (int, interface{}, error) {
		g, err := s.svc.CreateGame(r.Context(), req.Username)
		if err != nil {
			return 0, nil, err
		}
		s.logger.WithFields(logrus.Fields{"game": g.ID, "admin": req.Username}).Info("game created")
		return http.StatusCreated, map[string]string{"gameId": g.ID, "message": "Game created successfully"}, nil
	})
}

func (s *Server) joinGame(w http.ResponseWriter, r *http.Request) {
	s.withRequest(w, r, func(req gameRequest) (int, interface{}, error) {
		players, err := s.svc.JoinGame(r.Context(), req.GameID, req.Username)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, map[string]interface{}{"message": "Joined game successfully", "players": players}, nil
	})
}

func (s *Server) startGame(w http.ResponseWriter, r *http.Request) {
	s.withRequest(w, r, func(req gameRequest) (int, interface{}, error) {
		if err := s.svc.StartGame(r.Context(), req.GameID, req.Username); err != nil {
			return 0, nil, err
		}
		return ok("Game started successfully")
	})
}

func (s *Server) playCard(w http.ResponseWriter, r *http.Request) {
	s.withRequest(w, r, func(req gameRequest) (int, interface{}, error) {
		if req.Card == nil {
			return 0, nil, badRequest("card is required")
		}
		res, err := s.svc.PlayCard(r.Context(), req.GameID, req.Username, *req.Card)
		if err != nil {
			return 0, nil, err
		}
		msg := "Card played successfully"
		if res.GameOver {
			msg = "Game over! " + res.Winner + " wins!"
		}
		return http.StatusOK, struct {
			Message string `json:"message"`
			game.PlayResult
		}{msg, res}, nil
	})
}

func (s *Server) drawCard(w http.ResponseWriter, r *http.Request) {
	s.withRequest(w, r, func(req gameRequest) (int, interface{}, error) {
		res, err := s.svc.DrawCard(r.Context(), req.GameID, req.Username)
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, struct {
			Message string `json:"message"`
			game.DrawResult
		}{"Card drawn successfully", res}, nil
	})
}

func (s *Server) keepCard(w http.ResponseWriter, r *http.Request) {
	s.withRequest(w, r, func(req gameRequest) (int, interface{}, error) {
		if err := s.svc.KeepCard(r.Context(), req.GameID, req.Username); err != nil {
			return 0, nil, err
		}
		return ok("Card kept")
	})
}

func (s *Server) drawAndPlay(w http.ResponseWriter, r *http.Request) {
	s.withRequest(w, r, func(req gameRequest) (int, interface{}, error) {
		res, err := s.svc.DrawAndResolve(r.Context(), req.GameID, req.Username, game.Decision(req.Action))
		if err != nil {
			return 0, nil, err
		}
		return http.StatusOK, struct {
			Message string `json:"message"`
			game.ResolveResult
		}{"Card drawn and action taken successfully", res}, nil
	})
}

func (s *Server) playerReady(w http.ResponseWriter, r *http.Request) {
	s.withRequest(w, r, func(req gameRequest) (int, interface{}, error) {
		if req.IsReady == nil {
			return 0, nil, badRequest("isReady is required")
		}
		if err := s.svc.SetReady(r.Context(), req.GameID, req.Username, *req.IsReady); err != nil {
			return 0, nil, err
		}
		return ok("Player ready status updated")
	})
}

func (s *Server) sayUno(w http.ResponseWriter, r *http.Request) {
	s.withRequest(w, r, func(req gameRequest) (int, interface{}, error) {
		if err := s.svc.SayUno(r.Context(), req.GameID, req.Username); err != nil {
			return 0, nil, err
		}
		return ok("UNO!")
	})
}

func (s *Server) kickPlayer(w http.ResponseWriter, r *http.Request) {
	s.withRequest(w, r, func(req gameRequest) (int, interface{}, error) {
		if err := s.svc.KickPlayer(r.Context(), req.GameID, req.AdminUsername, req.PlayerToKick); err != nil {
			return 0, nil, err
		}
		return ok("Player kicked successfully")
	})
}

func (s *Server) promoteAdmin(w http.ResponseWriter, r *http.Request) {
	s.withRequest(w, r, func(req gameRequest) (int, interface{}, error) {
		if err := s.svc.PromoteAdmin(r.Context(), req.GameID, req.CurrentAdminUsername, req.NewAdminUsername); err != nil {
			return 0, nil, err
		}
		return ok("Admin promoted successfully")
	})
}

func (s *Server) resetGame(w http.ResponseWriter, r *http.Request) {
	s.withRequest(w, r, func(req gameRequest) (int, interface{}, error) {
		if err := s.svc.ResetGame(r.Context(), req.GameID); err != nil {
			return 0, nil, err
		}
		s.logger.WithFields(logrus.Fields{"game": req.GameID, "requester": req.Username}).Info("game reset")
		return ok("Game reset successfully")
	})
}

func (s *Server) gameState(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := s.svc.GetState(r.Context(), q.Get("gameId"), q.Get("username"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
