package handlers

import (
	"encoding/json"
	"net/http"

	"eventboard-backend/internal/middleware"
	"eventboard-backend/internal/services"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler serves the change feed
type WebSocketHandler struct {
	hub  *services.WSHub
	auth *middleware.Authenticator
}

// NewWebSocketHandler creates a new WebSocket handler. auth may be nil.
func NewWebSocketHandler(hub *services.WSHub, auth *middleware.Authenticator) *WebSocketHandler {
	return &WebSocketHandler{
		hub:  hub,
		auth: auth,
	}
}

// HandleWebSocket handles GET /ws
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	subject, err := middleware.ValidateWebSocketToken(h.auth, r.URL.Query().Get("token"))
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	clientID := uuid.New().String()
	h.hub.Register(clientID, subject, conn)
	defer h.hub.Unregister(clientID)
	logger.Info().Str("client_id", clientID).Int("clients", h.hub.Count()).Msg("WebSocket client connected")

	if err := h.hub.SendTo(clientID, services.WSMessage{Type: "connected", ID: clientID}); err != nil {
		logger.Error().Err(err).Str("client_id", clientID).Msg("Failed to send connected message")
		return
	}

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error().Err(err).Str("client_id", clientID).Msg("WebSocket error")
			}
			return
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			h.reply(logger, clientID, services.WSMessage{Type: "error", Message: "Invalid message format"})
			continue
		}

		switch msg.Type {
		case "ping":
			h.reply(logger, clientID, services.WSMessage{Type: "pong"})
		default:
			h.reply(logger, clientID, services.WSMessage{Type: "error", Message: "Unknown message type"})
		}
	}
}

func (h *WebSocketHandler) reply(logger *zerolog.Logger, clientID string, msg services.WSMessage) {
	if err := h.hub.SendTo(clientID, msg); err != nil {
		logger.Debug().Err(err).Str("client_id", clientID).Msg("Failed to reply")
	}
}
