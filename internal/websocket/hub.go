package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/inboxstream/backend/internal/models"
)

// writeTimeout bounds each individual send attempt so one slow peer cannot
// stall delivery to the others.
const writeTimeout = 10 * time.Second

// Client wraps a WebSocket connection.
type Client struct {
	// writeMu serializes writes: gorilla/websocket allows only one
	// concurrent writer per connection, and broadcasts for separate
	// ingests may run at the same time.
	writeMu sync.Mutex
	conn    *websocket.Conn
}

// Conn returns the underlying WebSocket connection.
func (c *Client) Conn() *websocket.Conn {
	return c.conn
}

// send writes one text frame, holding the client's write lock for the
// deadline and the write together.
func (c *Client) send(msg []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub owns the set of live subscriber connections. Register, Unregister and
// Broadcast are the only mutation entry points; a connection belongs to the
// hub from Register until Unregister and is never shared with other
// components.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	maxClients int
}

// NewHub creates a new Hub with a global connection limit.
func NewHub(maxClients int) *Hub {
	if maxClients <= 0 {
		maxClients = 256
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		maxClients: maxClients,
	}
}

// Register adds a WebSocket connection to the active set.
// If the connection limit is exceeded, the new connection is closed and nil is returned.
func (h *Hub) Register(conn *websocket.Conn) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) >= h.maxClients {
		log.Printf("websocket: max connections (%d) exceeded, closing new connection", h.maxClients)
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too many connections"),
			// Use zero deadline - best effort.
			// See https://pkg.go.dev/github.com/gorilla/websocket#Conn.WriteControl
			// for details.
			time.Time{},
		)
		_ = conn.Close()
		return nil
	}

	client := &Client{conn: conn}
	h.clients[client] = struct{}{}
	return client
}

// Unregister removes a client from the active set and closes the connection.
// It is a no-op for a client that is already gone - a disconnect may race
// with cleanup after a failed send.
func (h *Hub) Unregister(client *Client) {
	if client == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, client)
	_ = client.conn.Close()
}

// Broadcast serializes the notification once and attempts delivery to every
// currently registered connection, independently. A failed send unregisters
// that client without affecting the others; nothing is reported back to the
// caller. A serialization failure aborts the whole broadcast without
// touching the active set.
func (h *Hub) Broadcast(n models.Notification) {
	msg, err := json.Marshal(n)
	if err != nil {
		log.Printf("websocket: failed to serialize notification for email %s: %v", n.ID, err)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.send(msg); err != nil {
			log.Printf("websocket: failed to write notification: %v", err)
			// Iteration runs over a snapshot, so the write lock taken by
			// Unregister cannot deadlock with it.
			h.Unregister(client)
		}
	}
}

// ActiveConnections returns the number of active WebSocket connections.
func (h *Hub) ActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
