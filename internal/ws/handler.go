package ws

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// client wraps one gorilla connection. The write mutex serializes hub
// broadcasts with echo replies; gorilla allows only one concurrent writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) sendJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Handler upgrades HTTP requests to WebSocket connections and runs their
// receive loops.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler creates a WebSocket Handler bound to hub.
func NewHandler(hub *Hub) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The endpoint is unauthenticated and open to any origin,
			// like the rest of the API surface.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the request, registers the connection, and echoes every
// received text frame until the client disconnects.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn}
	h.hub.register(c)
	defer func() {
		h.hub.unregister(c)
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws: read failed: %v", err)
			}
			return
		}
		if err := c.sendJSON(messageEvent{Message: "Message received: " + string(msg)}); err != nil {
			log.Printf("ws: echo failed: %v", err)
			return
		}
	}
}
