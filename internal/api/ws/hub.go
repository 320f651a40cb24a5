package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/your-org/reunite/internal/observability"
	"github.com/your-org/reunite/pkg/dto"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client represents a connected dashboard session.
type Client struct {
	conn *websocket.Conn
	send chan []byte

	// Unseen new_match_found pushes since connect or last reset.
	// Owned by the hub loop.
	unseen int
}

// CountFunc returns the durable pending-notification count, used to seed a
// freshly connected client's counter.
type CountFunc func(ctx context.Context) (int, error)

// Hub maintains the set of connected dashboard sessions and fans out
// lifecycle events to all of them. Delivery is at-most-once, best-effort:
// there is no acknowledgment and nothing is retained for absent clients
// beyond what is already durable in the notification queue.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan dto.RealtimeEvent
	register   chan *Client
	unregister chan *Client
	requests   chan *Client
	resets     chan *Client
	countFn    CountFunc
}

func NewHub(countFn CountFunc) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan dto.RealtimeEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		requests:   make(chan *Client, 64),
		resets:     make(chan *Client, 64),
		countFn:    countFn,
	}
}

// Run starts the hub event loop. Call this in a goroutine. All client state
// is owned by this loop; no locking elsewhere.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			client.unseen = h.pendingCount()
			observability.WSConnections.Inc()
			slog.Debug("ws client connected", "seed_count", client.unseen)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			observability.WSConnections.Dec()
			slog.Debug("ws client disconnected")

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				slog.Error("marshal ws event", "error", err)
				continue
			}
			for client := range h.clients {
				if event.Type == dto.EventNewMatchFound {
					client.unseen++
				}
				h.push(client, data)
			}

		case client := <-h.requests:
			if _, ok := h.clients[client]; !ok {
				continue
			}
			data, err := json.Marshal(dto.NotificationCountUpdate{
				Type:  dto.MsgNotificationCountUpdate,
				Count: client.unseen,
			})
			if err != nil {
				slog.Error("marshal count update", "error", err)
				continue
			}
			h.push(client, data)

		case client := <-h.resets:
			if _, ok := h.clients[client]; ok {
				client.unseen = 0
			}
		}
	}
}

// Broadcast queues an event for delivery to every connected session.
func (h *Hub) Broadcast(event dto.RealtimeEvent) {
	h.broadcast <- event
}

func (h *Hub) push(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		// Client buffer full — disconnect
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) pendingCount() int {
	if h.countFn == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	count, err := h.countFn(ctx)
	if err != nil {
		slog.Warn("seed notification count", "error", err)
		return 0
	}
	return count
}

// HandleWS handles WebSocket upgrade requests.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("ws upgrade failed", "error", err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 64),
	}

	h.register <- client

	go client.writePump()
	go client.readPump(h)
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readPump handles the notification-count handshake and detects
// disconnection. Unknown message types are ignored.
func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg dto.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case dto.MsgRequestNotificationCount:
			h.requests <- c
		case dto.MsgResetNotificationCount:
			h.resets <- c
		}
	}
}
