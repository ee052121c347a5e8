package hub

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	sendBufferSize = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // Dashboards are served from arbitrary origins on the LAN
	},
}

// Message is the envelope pushed to every connected display.
type Message struct {
	Type           string `json:"type"`
	AnimationSpeed int    `json:"animation_speed"`
	Data           any    `json:"data"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans room list updates out to WebSocket clients. A client that cannot
// keep up is dropped rather than blocking the poll loop.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	initial func() Message
	logger  *zap.Logger
	closed  bool
}

// New creates a hub. initial, when non-nil, produces the message sent to a
// client right after it connects.
func New(initial func() Message, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*client),
		initial: initial,
		logger:  logger,
	}
}

// ServeHTTP upgrades the request and registers the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade failed - error already written to response
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	if h.initial != nil {
		if encoded, err := json.Marshal(h.initial()); err == nil {
			c.send <- encoded
		}
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("Display client connected", zap.String("client_id", c.id), zap.Int("clients", count))

	go h.writeLoop(c)
	go h.readLoop(c)
}

// Broadcast sends msg to every connected client.
func (h *Hub) Broadcast(msg Message) {
	encoded, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode broadcast", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		select {
		case c.send <- encoded:
		default:
			h.logger.Warn("Dropping slow display client", zap.String("client_id", id))
			h.removeLocked(id)
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id := range h.clients {
		h.removeLocked(id)
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(id)
}

func (h *Hub) removeLocked(id string) {
	c, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	close(c.send)
	h.logger.Info("Display client disconnected", zap.String("client_id", id), zap.Int("clients", len(h.clients)))
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				h.logger.Debug("Display client write failed", zap.String("client_id", c.id), zap.Error(err))
				h.remove(c.id)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c.id)
				return
			}
		}
	}
}

// readLoop only exists to process control frames and notice disconnects.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c.id)

	c.conn.SetReadLimit(1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
