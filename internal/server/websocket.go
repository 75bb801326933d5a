package server

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/glyph/internal/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Messages buffered per client before it is dropped.
	sendBuffer = 64
)

// Client is one websocket connection.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// Hub fans broadcast messages out to connected clients.
type Hub struct {
	clients   map[*Client]struct{}
	mutex     sync.RWMutex
	broadcast chan []byte
	logger    logging.Logger
}

// NewHub creates an idle hub; call Run to start it.
func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan []byte, 64),
		logger:    logger,
	}
}

// Run delivers broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.CloseAll(websocket.StatusGoingAway, "")
			return

		case message := <-h.broadcast:
			h.mutex.RLock()
			var slow []*Client
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					slow = append(slow, client)
				}
			}
			h.mutex.RUnlock()

			for _, client := range slow {
				h.remove(client, websocket.StatusPolicyViolation)
			}
		}
	}
}

// Broadcast queues message for every client. It never blocks; when the
// queue is full the message is dropped.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn(context.Background(), nil, "Broadcast queue full, dropping message")
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll(code websocket.StatusCode, reason string) {
	h.mutex.Lock()
	clients := h.clients
	h.clients = make(map[*Client]struct{})
	h.mutex.Unlock()

	for client := range clients {
		close(client.send)
		client.conn.Close(code, reason)
	}
}

func (h *Hub) add(client *Client) {
	h.mutex.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mutex.Unlock()
	h.logger.Debug(context.Background(), "Client connected", "clients", count)
}

func (h *Hub) remove(client *Client, code websocket.StatusCode) {
	h.mutex.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	h.mutex.Unlock()

	if ok {
		close(client.send)
		client.conn.Close(code, "")
	}
}

func (s *IconServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.checkOrigin(r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}
	originURL, _ := url.Parse(r.Header.Get("Origin"))

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{originURL.Host},
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "WebSocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxMessageSize)

	client := &Client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		hub:  s.hub,
	}
	s.hub.add(client)

	go client.writePump()
	client.readPump()
}

// readPump discards incoming messages and unregisters the client when the
// connection ends.
func (c *Client) readPump() {
	defer c.hub.remove(c, websocket.StatusNormalClosure)

	ctx := context.Background()
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && status != -1 {
				c.hub.logger.Debug(ctx, "WebSocket closed", "status", status.String())
			}
			return
		}
	}
}

// writePump writes queued messages and pings the peer.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	ctx := context.Background()
	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
