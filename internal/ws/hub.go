// Package ws streams queue events to WebSocket subscribers.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"queuely/internal/logger"
	"queuely/internal/queue"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
	sendBuffer     = 256
)

// Hub keeps subscribers grouped by queue code and fans events out to them.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan BroadcastMessage
	done       chan struct{}
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
	log        *logger.Logger
}

// BroadcastMessage is a payload for every subscriber of one queue.
type BroadcastMessage struct {
	QueueCode string
	Message   []byte
}

// NewHub creates a hub. Call Run before serving subscribers.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan BroadcastMessage, sendBuffer),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log.WithComponent("ws-hub"),
	}
}

// Run processes registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for code, clients := range h.clients {
				for client := range clients {
					close(client.Send)
				}
				delete(h.clients, code)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.QueueCode] == nil {
				h.clients[client.QueueCode] = make(map[*Client]bool)
			}
			h.clients[client.QueueCode][client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[message.QueueCode] {
				select {
				case client.Send <- message.Message:
				default:
					// slow subscriber
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove drops client; h.mu must be held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.QueueCode]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.clients, client.QueueCode)
	}
}

// Publish implements queue.Publisher. It never blocks; events are dropped
// when the broadcast buffer is full.
func (h *Hub) Publish(ev queue.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("encode event", "code", ev.QueueCode, "error", err)
		return
	}
	select {
	case h.broadcast <- BroadcastMessage{QueueCode: ev.QueueCode, Message: payload}:
	default:
		h.log.Warn("broadcast buffer full, event dropped", "code", ev.QueueCode, "event", ev.Type)
	}
}

// Subscribers returns the number of clients watching code.
func (h *Hub) Subscribers(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[code])
}

// Serve upgrades the request and streams events of code until the client
// disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, code string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		Hub:       h,
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
		QueueCode: code,
	}
	select {
	case h.register <- client:
	case <-r.Context().Done():
		conn.Close()
		return r.Context().Err()
	case <-h.done:
		conn.Close()
		return nil
	}

	go client.writePump()
	client.readPump()
	return nil
}

// Client is one WebSocket subscriber.
type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	QueueCode string
}

// readPump discards inbound messages and notices disconnects.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.Hub.log.Debug("subscriber read error", "code", c.QueueCode, "error", err)
			}
			return
		}
	}
}

// writePump sends queued messages and keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
