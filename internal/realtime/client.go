package realtime

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is a single websocket connection of a user.
type Client struct {
	id     string
	userID uuid.UUID
	device string
	conn   *websocket.Conn
	hub    *Hub
	send   chan []byte
}

func newClient(id string, userID uuid.UUID, device string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		id:     id,
		userID: userID,
		device: device,
		conn:   conn,
		hub:    hub,
		send:   make(chan []byte, hub.cfg.SendBuffer),
	}
}

// readPump handles inbound frames until the connection fails or the peer
// stops answering pings.
func (c *Client) readPump() {
	defer func() {
		c.hub.drop(c)
		_ = c.conn.Close()
	}()

	cfg := c.hub.cfg
	c.conn.SetReadLimit(cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read",
					slog.String("client_id", c.id),
					slog.String("error", err.Error()),
				)
			}
			return
		}
		c.handle(data)
	}
}

func (c *Client) handle(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.reply(TypeError, errorPayload{Message: "malformed message"})
		return
	}

	switch msg.Type {
	case TypePing:
		c.reply(TypePong, nil)
	default:
		c.reply(TypeError, errorPayload{Message: "unsupported message type: " + string(msg.Type)})
	}
}

func (c *Client) reply(t MessageType, payload any) {
	b, err := encode(t, payload)
	if err != nil {
		return
	}
	c.hub.sendTo(c, b)
}

// writePump drains the send buffer to the connection and keeps it alive
// with pings. It exits when the hub closes the buffer.
func (c *Client) writePump() {
	cfg := c.hub.cfg
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
