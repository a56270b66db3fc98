package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/heartmarshall/learnsync/internal/config"
	"github.com/heartmarshall/learnsync/pkg/ctxutil"
)

// ErrTooManyConnections is returned by Serve when the user already holds the
// maximum number of sockets.
var ErrTooManyConnections = errors.New("too many connections")

// Hub tracks the websocket clients of every connected user and fans
// notifications out to them.
type Hub struct {
	cfg config.WebSocketConfig
	log *slog.Logger

	mu      sync.RWMutex
	clients map[string]*Client
	users   map[uuid.UUID]map[string]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	upgrader websocket.Upgrader
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(log *slog.Logger, cfg config.WebSocketConfig) *Hub {
	return &Hub{
		cfg:        cfg,
		log:        log.With("component", "realtime"),
		clients:    make(map[string]*Client),
		users:      make(map[uuid.UUID]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Run processes registrations until ctx is cancelled, then disconnects
// every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case <-ctx.Done():
			h.closeAll()
			return nil
		}
	}
}

// Serve upgrades the request to a websocket bound to userID and starts the
// client's pumps. Authentication happens before Serve is called.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	if h.ConnectionCount(userID) >= h.cfg.MaxConnsPerUser {
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return ErrTooManyConnections
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("upgrade: %w", err)
	}

	c := newClient(uuid.NewString(), userID, ctxutil.DeviceFromCtx(r.Context()), conn, h)

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return errors.New("hub stopped")
	}

	go c.writePump()
	go c.readPump()
	return nil
}

// NotifyUser sends an event to every socket of userID and returns how many
// clients received it. Clients whose buffer is full are disconnected.
func (h *Hub) NotifyUser(userID uuid.UUID, event MessageType, payload any) int {
	b, err := encode(event, payload)
	if err != nil {
		h.log.Error("encode notification",
			slog.String("event", string(event)),
			slog.String("error", err.Error()),
		)
		return 0
	}

	var (
		sent int
		slow []*Client
	)

	h.mu.RLock()
	for _, c := range h.users[userID] {
		select {
		case c.send <- b:
			sent++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("client send buffer full, disconnecting",
			slog.String("client_id", c.id),
			slog.String("user_id", userID.String()),
		)
		h.drop(c)
	}

	return sent
}

// ConnectionCount reports the number of registered sockets of userID.
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// sendTo queues b for one client if it is still registered.
func (h *Hub) sendTo(c *Client, b []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[c.id]; !ok {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.users[c.userID]) >= h.cfg.MaxConnsPerUser {
		h.log.Warn("max connections reached", slog.String("user_id", c.userID.String()))
		close(c.send)
		return
	}

	if h.users[c.userID] == nil {
		h.users[c.userID] = make(map[string]*Client)
	}
	h.clients[c.id] = c
	h.users[c.userID][c.id] = c

	h.log.Debug("client registered",
		slog.String("client_id", c.id),
		slog.String("user_id", c.userID.String()),
		slog.String("device", c.device),
	)
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.id]; !ok {
		return
	}

	delete(h.clients, c.id)
	delete(h.users[c.userID], c.id)
	if len(h.users[c.userID]) == 0 {
		delete(h.users, c.userID)
	}
	close(c.send)

	h.log.Debug("client unregistered", slog.String("client_id", c.id))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
	clear(h.users)
}
