package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"marketplace-backoffice/internal/core/domain"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Per-client outbound buffer. A client that cannot drain this
	// many notices is dropped rather than blocking the hub.
	sendBuffer = 32
)

// Hub fans notices out to the admin sockets connected to this
// instance. It implements ports.NoticeSink.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	log     zerolog.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     log,
	}
}

// Broadcast sends a notice to every connected client. Slow clients
// with a full buffer are disconnected; they re-sync on reconnect.
func (h *Hub) Broadcast(n domain.Notice) {
	payload, err := json.Marshal(n)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to encode notice for broadcast")
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn().Msg("dropping slow notice client")
		h.remove(c)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Auth happens before the upgrade; cross-origin dashboards are
	// expected.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Serve upgrades the request to a WebSocket connection and attaches it
// to the hub until the peer disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	h.add(c)

	go h.writePump(c)
	go h.readPump(c)
}

// writePump pushes queued notices and keepalive pings to the peer.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound messages and detects disconnects. Clients
// only listen; the read loop exists for pong handling and close frames.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
