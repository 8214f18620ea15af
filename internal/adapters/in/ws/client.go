package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"foodmarket/internal/dispatch"

	"github.com/gorilla/websocket"
)

// client owns one connection. writeLoop is the only writer; readLoop hands replies
// to it through the replies channel.
type client struct {
	conn    *websocket.Conn
	sub     *dispatch.Subscription
	replies chan Reply
	cfg     Config
	logger  *slog.Logger
}

// readLoop returns on the first read error, including the pong deadline passing.
func (c *client) readLoop(handle func(Inbound) Reply) {
	defer close(c.replies)

	c.conn.SetReadLimit(c.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("connection closed unexpectedly", "error", err)
			}
			return
		}

		var msg Inbound
		reply := Reply{Type: ReplyError, Message: "malformed message"}
		if err = json.Unmarshal(data, &msg); err == nil {
			reply = handle(msg)
		}

		select {
		case c.replies <- reply:
		default:
			c.logger.Warn("reply buffer full, reply dropped", "type", msg.Type)
		}
	}
}

// writeLoop forwards events and replies and keeps the peer alive with pings. It
// closes the connection when the subscription is disconnected or a write fails.
func (c *client) writeLoop() {
	ticker := time.NewTicker(c.cfg.pingInterval())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	events := c.sub.C()
	replies := c.replies
	for {
		select {
		case e, ok := <-events:
			if !ok {
				_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.writeJSON(e); err != nil {
				c.logger.Debug("event write failed", "error", err)
				return
			}
		case r, ok := <-replies:
			if !ok {
				replies = nil
				continue
			}
			if err := c.writeJSON(r); err != nil {
				c.logger.Debug("reply write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) writeJSON(v any) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.conn.WriteJSON(v)
}

func (c *client) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.conn.WriteMessage(messageType, data)
}
