package handlers

import (
	"context"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicdesk/notification-service/internal/middleware"
	"github.com/civicdesk/notification-service/internal/registry"
)

const (
	pingInterval  = 30 * time.Second
	pongWait      = 60 * time.Second
	writeDeadline = 10 * time.Second
	maxMsgSize    = 64 * 1024
)

// WSHandler upgrades dashboard connections and binds them to the connection
// registry for the life of the socket.
type WSHandler struct {
	registry  *registry.Registry
	presence  *registry.Presence
	jwtSecret string
	log       *zap.SugaredLogger
}

func NewWSHandler(reg *registry.Registry, presence *registry.Presence, jwtSecret string, log *zap.SugaredLogger) *WSHandler {
	return &WSHandler{registry: reg, presence: presence, jwtSecret: jwtSecret, log: log}
}

// Serve is mounted behind the fiber websocket middleware at /ws?token=<jwt>.
// The token claims carry the recipient id the session is registered under;
// clients cannot claim someone else's id.
func (h *WSHandler) Serve(c *websocket.Conn) {
	token := c.Query("token")
	if token == "" {
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"error":"missing token"}`))
		_ = c.Close()
		return
	}
	p, err := middleware.ParseToken(h.jwtSecret, token)
	if err != nil {
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
		_ = c.Close()
		return
	}

	sess := registry.NewSession(uuid.New().String(), p.ID)
	h.registry.Register(sess)
	if h.presence != nil {
		if err := h.presence.SessionUp(context.Background(), sess); err != nil {
			h.log.Warnw("presence up failed", "session_id", sess.ID, "error", err)
		}
	}
	defer func() {
		h.registry.Unregister(sess.ID)
		if h.presence != nil {
			if err := h.presence.SessionDown(context.Background(), sess); err != nil {
				h.log.Warnw("presence down failed", "session_id", sess.ID, "error", err)
			}
		}
		_ = c.Close()
	}()

	go h.writePump(c, sess)
	h.readPump(c)
}

// writePump drains the session outbox onto the socket and keeps the
// connection alive with pings. A write error ends the pump; the read side
// notices the dead socket and tears the session down.
func (h *WSHandler) writePump(c *websocket.Conn, sess *registry.Session) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case frame, ok := <-sess.Outbox():
			if !ok {
				_ = c.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
				return
			}
			_ = c.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames (the push channel is one-way; chat sends
// go through HTTP) but drives pong handling and disconnect detection.
func (h *WSHandler) readPump(c *websocket.Conn) {
	c.SetReadLimit(maxMsgSize)
	_ = c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
