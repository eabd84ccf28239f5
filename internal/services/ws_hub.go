package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"eventboard-backend/internal/metrics"
	"eventboard-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const wsWriteTimeout = 10 * time.Second

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Message   string `json:"message,omitempty"`
}

type wsClient struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	subject string
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages change-feed WebSocket connections
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*wsClient
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*wsClient),
	}
}

// Register registers a connection under clientID. subject is the token
// subject, empty when auth is disabled.
func (h *WSHub) Register(clientID, subject string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, exists := h.connections[clientID]; exists {
		existing.conn.Close()
	} else {
		metrics.WebSocketClients.Inc()
	}
	h.connections[clientID] = &wsClient{conn: conn, subject: subject}

	log.Info().
		Str("client_id", clientID).
		Str("subject", subject).
		Msg("WebSocket connection registered")
}

// Unregister closes and removes the connection of clientID
func (h *WSHub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, exists := h.connections[clientID]; exists {
		client.conn.Close()
		delete(h.connections, clientID)
		metrics.WebSocketClients.Dec()
		log.Info().Str("client_id", clientID).Msg("WebSocket connection unregistered")
	}
}

// SendTo sends a message to a single client
func (h *WSHub) SendTo(clientID string, message WSMessage) error {
	h.mu.RLock()
	client, exists := h.connections[clientID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("client %s is not connected", clientID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := client.write(data); err != nil {
		h.Unregister(clientID)
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Broadcast sends message to every connected client. Clients that fail to
// receive it are dropped.
func (h *WSHub) Broadcast(message WSMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("type", message.Type).Msg("Failed to marshal broadcast")
		return
	}

	h.mu.RLock()
	clients := make(map[string]*wsClient, len(h.connections))
	for id, c := range h.connections {
		clients[id] = c
	}
	h.mu.RUnlock()

	for id, client := range clients {
		if err := client.write(data); err != nil {
			log.Warn().Err(err).Str("client_id", id).Msg("Dropping WebSocket client")
			h.Unregister(id)
			continue
		}
		metrics.ChangesBroadcast.WithLabelValues(message.Type).Inc()
	}
}

// Notify broadcasts a persisted change. A nil hub ignores it.
func (h *WSHub) Notify(change models.Change) {
	if h == nil {
		return
	}
	h.Broadcast(WSMessage{
		Type:      string(change.Type),
		ID:        change.ID,
		Timestamp: change.At.UnixMilli(),
	})
}

// Count returns the number of connected clients
func (h *WSHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Close disconnects every client
func (h *WSHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.connections {
		client.conn.Close()
		delete(h.connections, id)
		metrics.WebSocketClients.Dec()
	}
}
