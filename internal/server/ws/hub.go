// Package ws pushes engine snapshots to the host view over WebSocket and
// streams per-subscriber lot countdowns.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"auction-sync/internal/countdown"
	"auction-sync/internal/notify"
	"auction-sync/utils"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
	sendBufferSize = 64
)

// Event types pushed on /ws.
const (
	EventLots = "lots"
	EventLot  = "lot"
	EventWin  = "win"
)

// Event is the envelope of every pushed frame.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// CountdownFrame is one tick of a countdown stream.
type CountdownFrame struct {
	LotID       string `json:"lotId"`
	RemainingMs int64  `json:"remainingMs"`
	Urgent      bool   `json:"urgent"`
	Expired     bool   `json:"expired"`
	Label       string `json:"label"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The host view is served from the platform domain, not from us.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to every connected client. The latest lots event is
// replayed to new clients so they render without waiting for the next poll.
type Hub struct {
	clock clockwork.Clock

	clients    map[*client]bool
	broadcast  chan Event
	register   chan *client
	unregister chan *client
	done       chan struct{}

	mu       sync.RWMutex
	lastLots []byte
}

// NewHub creates a hub. Run must be running for clients to connect.
func NewHub(clock clockwork.Clock) *Hub {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Hub{
		clock:      clock,
		clients:    make(map[*client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return nil

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			if h.lastLots != nil {
				c.send <- h.lastLots
			}
			total := len(h.clients)
			h.mu.Unlock()
			utils.Info("ws client connected", map[string]any{"client_id": c.id, "total_clients": total})

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			utils.Info("ws client disconnected", map[string]any{"client_id": c.id, "total_clients": total})

		case ev := <-h.broadcast:
			msg, err := json.Marshal(ev)
			if err != nil {
				utils.Error("ws marshal event failed", map[string]any{"type": ev.Type, "error": err.Error()})
				continue
			}
			h.mu.Lock()
			if ev.Type == EventLots {
				h.lastLots = msg
			}
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					utils.Warn("ws dropping message for slow client", map[string]any{"client_id": c.id, "type": ev.Type})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues an event for every client. It never blocks; when the queue
// is full the event is dropped.
func (h *Hub) Publish(eventType string, data any) bool {
	select {
	case h.broadcast <- Event{Type: eventType, Data: data}:
		return true
	default:
		utils.Warn("ws broadcast queue full, event dropped", map[string]any{"type": eventType})
		return false
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send pushes a win notification as a "win" event.
func (h *Hub) Send(ctx context.Context, n notify.Notification) error {
	if !h.Publish(EventWin, n) {
		return fmt.Errorf("ws: win event for lot %s dropped", n.LotID)
	}
	return nil
}

// Name identifies the hub as a notification sender.
func (h *Hub) Name() string {
	return "ws"
}

// ServeEvents upgrades the request and registers the connection.
// GET /ws
func (h *Hub) ServeEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.Warn("ws upgrade failed", map[string]any{"error": err.Error()})
		return
	}

	c := &client{
		id:   utils.GenerateID(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// ServeCountdown streams the countdown of one lot to one subscriber at 1 Hz
// until the client goes away. deadline is re-read on every tick.
// GET /ws/lots/:lot_id/countdown
func (h *Hub) ServeCountdown(w http.ResponseWriter, r *http.Request, lotID string, deadline countdown.DeadlineFunc) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.Warn("ws countdown upgrade failed", map[string]any{"lot_id": lotID, "error": err.Error()})
		return
	}
	defer conn.Close()

	stop := countdown.Subscribe(h.clock, deadline, func(t countdown.Tick) {
		frame := CountdownFrame{
			LotID:       lotID,
			RemainingMs: t.Millis(),
			Urgent:      t.Urgent,
			Expired:     t.Expired,
			Label:       countdown.Format(t.Remaining),
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(frame); err != nil {
			// unblocks the read loop below, which ends the subscription
			_ = conn.Close()
		}
	})
	defer stop()

	conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.Warn("ws unexpected close", map[string]any{"client_id": c.id, "error": err.Error()})
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
