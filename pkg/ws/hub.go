// Package ws fans server-side events out to browser clients over
// gorilla/websocket. Clients only listen; inbound frames other than control
// frames are discarded.
package ws

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/litcafe/backoffice/pkg/logger"
	"go.uber.org/multierr"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 16
)

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// Hub tracks connected clients and broadcasts to all of them. Slow clients
// whose buffer is full are disconnected.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	logg     *logger.Logger
}

// NewHub builds a hub accepting upgrades from allowedOrigins. An empty list
// or "*" accepts any origin.
func NewHub(logg *logger.Logger, allowedOrigins []string) *Hub {
	h := &Hub{
		clients: map[*client]struct{}{},
		logg:    logg,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := map[string]struct{}{}
	for _, origin := range allowed {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		if origin != "" {
			set[strings.ToLower(origin)] = struct{}{}
		}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.ToLower(origin)]
		return ok
	}
}

// Serve upgrades the request and registers the connection. greeting, when
// non-empty, is the first message the client receives.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, greeting []byte) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	if len(greeting) > 0 {
		c.send <- greeting
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.log(r.Context(), total, "ws.client_connected")

	go c.writePump()
	go c.readPump()
	return nil
}

// Broadcast queues msg for every connected client.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			c.stop()
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() error {
	h.mu.Lock()
	clients := h.clients
	h.clients = map[*client]struct{}{}
	h.mu.Unlock()

	var errs error
	for c := range clients {
		c.stop()
		if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	total := len(h.clients)
	h.mu.Unlock()
	if ok {
		c.stop()
		h.log(context.Background(), total, "ws.client_disconnected")
	}
}

func (h *Hub) log(ctx context.Context, total int, msg string) {
	if h.logg == nil {
		return
	}
	h.logg.Info(h.logg.WithField(ctx, "clients", total), msg)
}

func (c *client) stop() {
	c.once.Do(func() { close(c.send) })
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
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

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
