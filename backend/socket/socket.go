// Package socket serves the websocket chat channel.
package socket

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"talkie/server/backend/auth"
	"talkie/server/backend/completions"
	"talkie/server/backend/constants"
	"talkie/server/backend/providers"
	"talkie/server/models"
)

// Envelope is the frame exchanged in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// MessagePayload is the data of a client "message" event.
type MessagePayload struct {
	Context string           `json:"context"`
	Message string           `json:"message"`
	Model   *models.ModelRef `json:"model"`
}

// Hub 管理 websocket 连接，对每个连接串行处理事件。
// Hub accepts websocket connections and relays their messages.
type Hub struct {
	auth     *auth.Service
	relay    *completions.Relay
	defaults models.ModelRef
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

// NewHub builds a Hub. defaults fills in a message without a model.
func NewHub(svc *auth.Service, relay *completions.Relay, defaults models.ModelRef, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		auth:     svc,
		relay:    relay,
		defaults: defaults,
		logger:   logger,
		conns:    make(map[string]*websocket.Conn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// ServeHTTP authenticates the upgrade request, then runs the event loop.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, _, err := h.auth.Authenticate(r.Context(), auth.TokenFromRequest(r))
	if err != nil {
		msg := constants.ErrInvalidToken
		if errors.Is(err, auth.ErrTokenExpired) {
			msg = constants.ErrTokenExpired
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	sid := uuid.NewString()
	log := h.logger.With("sid", sid, "user_id", user.ID)

	h.mu.Lock()
	h.conns[sid] = conn
	h.mu.Unlock()
	log.Info("client connected", "remote", r.RemoteAddr)

	defer func() {
		h.mu.Lock()
		delete(h.conns, sid)
		h.mu.Unlock()
		conn.Close()
		log.Info("client disconnected")
	}()

	s := &session{hub: h, conn: conn, sid: sid, user: user, logger: log}
	s.run(r)
}

type session struct {
	hub    *Hub
	conn   *websocket.Conn
	sid    string
	user   *models.User
	logger *slog.Logger
}

func (s *session) run(r *http.Request) {
	for {
		var env Envelope
		if err := s.conn.ReadJSON(&env); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("read failed", "error", err)
			}
			return
		}
		switch env.Event {
		case constants.EventStart:
			s.logger.Info("start event received")
			if err := s.send(constants.EventStarted, map[string]string{"sid": s.sid}); err != nil {
				return
			}
		case constants.EventMessage:
			if err := s.handleMessage(r, env.Data); err != nil {
				return
			}
		default:
			s.logger.Debug("unknown event", "event", env.Event)
		}
	}
}

// handleMessage returns an error only when the connection is unusable.
func (s *session) handleMessage(r *http.Request, data json.RawMessage) error {
	var p MessagePayload
	if err := json.Unmarshal(data, &p); err != nil || p.Message == "" {
		return s.sendError(constants.ErrEmptyContent)
	}
	ref := s.hub.defaults
	if p.Model != nil && p.Model.Name != "" {
		ref = *p.Model
	}
	provider, err := providers.ParseProvider(ref.Provider)
	if err != nil {
		return s.sendError(err.Error())
	}

	req := completions.Request{
		UserID:   s.user.ID,
		Context:  p.Context,
		Message:  p.Message,
		Model:    ref.Name,
		Provider: provider,
	}
	res, err := s.hub.relay.Stream(r.Context(), req, func(chunk string) error {
		return s.send(constants.EventResponse, map[string]string{"chunk": chunk})
	})
	if err != nil {
		if errors.Is(err, completions.ErrWrite) {
			return err
		}
		return s.sendError(err.Error())
	}
	return s.send(constants.EventResponseFinished, map[string]any{
		"status":          "ok",
		"ai_response":     res.Text,
		"conversation_id": res.ConversationID,
	})
}

func (s *session) sendError(msg string) error {
	return s.send(constants.EventResponseError, map[string]string{"status": "error", "error": msg})
}

func (s *session) send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.conn.WriteJSON(Envelope{Event: event, Data: data})
}
