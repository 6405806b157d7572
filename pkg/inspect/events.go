package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/stacknav"
)

// EventType labels a message on the events stream.
type EventType string

const (
	EventFrame  EventType = "frame"
	EventReload EventType = "reload"
	EventError  EventType = "error"
)

// Message is sent to every connected client.
type Message struct {
	Type  EventType       `json:"type"`
	Frame *stacknav.Frame `json:"frame,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Hub manages the WebSocket connections of the events stream.
type Hub struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub creates a new hub. A nil checkOrigin accepts every origin.
func NewHub(checkOrigin func(*http.Request) bool, logger *slog.Logger) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		logger: logger,
	}
}

// HandleWebSocket upgrades the connection, sends the current frame and
// keeps the client registered until it disconnects.
func (h *Hub) HandleWebSocket(current func() stacknav.Frame) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		conn, err := h.upgrader.Upgrade(w, req, nil)
		if err != nil {
			h.logger.Debug("inspect: upgrade failed", "error", err)
			return
		}

		// Register before the first write so no frame published in between
		// is lost. Writes are serialized by mu.
		h.mu.Lock()
		h.clients[conn] = true
		f := current()
		err = sendMessage(conn, Message{Type: EventFrame, Frame: &f})
		h.mu.Unlock()
		if err != nil {
			h.drop(conn)
			return
		}

		// Keep connection alive until client disconnects
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.drop(conn)
	}
}

// NotifyFrame sends a frame to all clients.
func (h *Hub) NotifyFrame(f stacknav.Frame) {
	h.broadcast(Message{Type: EventFrame, Frame: &f})
}

// NotifyReload tells clients the route configuration was reloaded.
func (h *Hub) NotifyReload() {
	h.broadcast(Message{Type: EventReload})
}

// NotifyError sends an error message to all clients.
func (h *Hub) NotifyError(msg string) {
	h.broadcast(Message{Type: EventError, Error: msg})
}

// broadcast sends a message to all connected clients.
func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("inspect: encode event", "type", msg.Type, "error", err)
		return
	}

	h.mu.Lock()
	var failed []*websocket.Conn
	for client := range h.clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			failed = append(failed, client)
		}
	}
	h.mu.Unlock()

	for _, client := range failed {
		h.drop(client)
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}

func sendMessage(conn *websocket.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
