// Package dashboard exposes the hunt registry to browser clients: a REST
// query surface over gorilla/mux and a WebSocket hub that relays domain
// events as they are emitted. The core never imports this package; the hub
// plugs into the registry through the event.Notifier port.
package dashboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/packworks/packtrack/internal/event"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is a local tool; it serves no cross-origin traffic.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// envelope is the wire format for relayed events.
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub fans domain events out to connected WebSocket clients. It implements
// event.Notifier; emission never blocks the registry — slow clients are
// dropped rather than backing up the commit path.
type Hub struct {
	log        *zap.SugaredLogger
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
}

// NewHub creates a hub. Call Run in a goroutine before serving connections.
func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, sendBufferSize),
		done:       make(chan struct{}),
	}
}

// Run owns the client set. It exits when Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.log.Infow("dashboard client connected", "clients", len(h.clients))
		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
			h.log.Infow("dashboard client disconnected", "clients", len(h.clients))
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Client is not draining its queue; drop it.
					delete(h.clients, c)
					close(c.send)
				}
			}
		case <-h.done:
			for c := range h.clients {
				close(c.send)
			}
			return
		}
	}
}

// Stop shuts the hub down and disconnects all clients.
func (h *Hub) Stop() {
	close(h.done)
}

// HuntCreated implements event.Notifier.
func (h *Hub) HuntCreated(e event.HuntCreated) { h.relay(event.TypeHuntCreated, e) }

// HuntUpdated implements event.Notifier.
func (h *Hub) HuntUpdated(e event.HuntUpdated) { h.relay(event.TypeHuntUpdated, e) }

// HuntPhaseChanged implements event.Notifier.
func (h *Hub) HuntPhaseChanged(e event.HuntPhaseChanged) { h.relay(event.TypeHuntPhaseChanged, e) }

// HuntCompleted implements event.Notifier.
func (h *Hub) HuntCompleted(e event.HuntCompleted) { h.relay(event.TypeHuntCompleted, e) }

func (h *Hub) relay(eventType string, payload any) {
	msg, err := json.Marshal(envelope{Type: eventType, Payload: payload})
	if err != nil {
		h.log.Errorw("marshal event", "type", eventType, "error", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warnw("event dropped, broadcast queue full", "type", eventType)
	}
}

// ServeWS upgrades an HTTP request to a WebSocket connection and registers
// it with the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorw("websocket upgrade", "error", err)
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBufferSize)}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

// client is one WebSocket connection.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump discards inbound frames (the dashboard is read-only) and detects
// disconnects.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
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

// writePump streams queued events to the client with periodic pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
