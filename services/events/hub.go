// Package events pushes player state changes to connected kiosk screens
// over websockets.
package events

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"rockola/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The kiosk frontend is served from a different port in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// message is the envelope sent to clients.
type message struct {
	Type  string             `json:"type"`
	State models.PlayerState `json:"state"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans player snapshots out to every connected screen.
type Hub struct {
	snapshot func() models.PlayerState

	mu      sync.Mutex
	clients map[*client]struct{}

	broadcast chan []byte
	done      chan struct{}
	once      sync.Once
}

// NewHub builds a hub. snapshot supplies the state sent to a screen right
// after it connects.
func NewHub(snapshot func() models.PlayerState) *Hub {
	return &Hub{
		snapshot:  snapshot,
		clients:   map[*client]struct{}{},
		broadcast: make(chan []byte, 16),
		done:      make(chan struct{}),
	}
}

// Run pumps broadcasts until the context ends.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.close()
			return
		case payload := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- payload:
				default:
					// Slow consumer; drop it rather than stall the hub.
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) close() {
	h.once.Do(func() {
		close(h.done)
		h.mu.Lock()
		for c := range h.clients {
			close(c.send)
		}
		h.clients = map[*client]struct{}{}
		h.mu.Unlock()
	})
}

// PlayerChanged implements the coordinator observer.
func (h *Hub) PlayerChanged(st models.PlayerState) {
	payload, err := json.Marshal(message{Type: "playerState", State: st})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.done:
	default:
		log.Printf("[events] broadcast dropped")
	}
}

// ClientCount reports connected screens, for the health surface.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP lets the hub mount directly on a route.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.ServeWS(w, r)
}

// ServeWS upgrades the request and attaches the screen to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[events] upgrade: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	// Seed the new screen with the current state.
	if payload, err := json.Marshal(message{Type: "playerState", State: h.snapshot()}); err == nil {
		select {
		case c.send <- payload:
		default:
		}
	}

	go c.writePump()
	go c.readPump(h)
}

func (c *client) writePump() {
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

// readPump discards inbound frames; screens only listen. It keeps the pong
// deadline fresh and detaches on close.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.mu.Lock()
		if _, ok := h.clients[c]; ok {
			delete(h.clients, c)
			close(c.send)
		}
		h.mu.Unlock()
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
