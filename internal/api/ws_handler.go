package api

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	ws "github.com/inboxstream/backend/internal/websocket"
)

// WebSocketHandler handles the /api/v1/ws endpoint for real-time email
// notifications.
type WebSocketHandler struct {
	hub *ws.Hub
}

// NewWebSocketHandler creates a new WebSocketHandler instance.
func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
	}
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// For now, allow all origins. This server is expected to be used
		// behind a reverse proxy in a trusted environment.
		return true
	},
}

// Handle upgrades the HTTP connection to a WebSocket and registers it with
// the Hub. No handshake payload is sent; the client only ever receives
// ingestion notifications on this channel.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocketHandler: failed to upgrade connection: %v", err)
		return
	}

	client := h.hub.Register(conn)
	if client == nil {
		log.Printf("WebSocketHandler: Connection rejected (max connections exceeded)")
		return
	}

	log.Printf("WebSocketHandler: WebSocket connection established (%d active)", h.hub.ActiveConnections())

	// Read loop to keep the connection open and detect disconnects.
	go h.readLoop(client)
}

// readLoop reads and discards messages from the WebSocket until the
// connection is closed, then unregisters the client. Inbound frames exist
// only to detect liveness; no application messages arrive on this channel.
func (h *WebSocketHandler) readLoop(client *ws.Client) {
	conn := client.Conn()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.hub.Unregister(client)
}
