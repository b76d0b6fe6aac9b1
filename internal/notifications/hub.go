package notifications

import (
	"context"
	"errors"
	"log"
	"sync"

	"inkwell/internal/observability"

	"github.com/gofiber/websocket/v2"
)

// maxConns bounds the total number of event-stream connections.
const maxConns = 10000

// Hub tracks every connected event-stream client and broadcasts each blog
// event to all of them. Readers do not subscribe to individual posts; the
// event volume of a blog is small enough to send everything to everyone.
type Hub struct {
	mu    sync.RWMutex
	conns map[*Client]struct{}
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{conns: make(map[*Client]struct{})}
}

// Register adds a connection to the hub.
func (h *Hub) Register(conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.conns) >= maxConns {
		return nil, errors.New("server connection limit reached")
	}

	client := newClient(h, conn)
	h.conns[client] = struct{}{}
	observability.WebSocketConnections.Set(float64(len(h.conns)))
	return client, nil
}

// Unregister removes a connection from the hub.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[client]; ok {
		delete(h.conns, client)
		observability.WebSocketConnections.Set(float64(len(h.conns)))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast sends a message to every connected client.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		c.TrySend(message)
	}
}

// StartWiring subscribes the hub to the Redis events channel so events
// published by any server instance reach this instance's clients.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartSubscriber(ctx, func(payload string) {
		h.Broadcast([]byte(payload))
	})
}

// Shutdown gracefully closes all websocket connections.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.conns {
		if client.Conn == nil {
			continue
		}
		if err := client.Conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
			log.Printf("failed to write close message: %v", err)
		}
		if err := client.Conn.Close(); err != nil {
			log.Printf("failed to close websocket: %v", err)
		}
	}
	h.conns = make(map[*Client]struct{})
	observability.WebSocketConnections.Set(0)

	return nil
}
