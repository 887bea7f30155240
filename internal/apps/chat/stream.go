package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/btechub/portal-backend/internal/identity"
	"github.com/btechub/portal-backend/internal/realtime"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames.
	maxMessageSize = 512
)

const (
	FrameSnapshot = "snapshot"
	FrameStatus   = "timeout.status"
)

const streamUserKey = "stream_user_id"

// RequireUpgrade rejects plain HTTP requests on websocket routes and stashes
// the caller's id for the connection handler.
func (h *Handler) RequireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if id, err := identity.GetUserID(c); err == nil {
		c.Locals(streamUserKey, id)
	}
	return c.Next()
}

// ChannelStream handles GET /api/ws/channels/:id. The first frame is the
// latest messages, then every message.new and messages.cleared event.
func (h *Handler) ChannelStream(c *fiber.Ctx) error {
	if !h.service.Channels().Exists(c.Params("id")) {
		return fail(c, fiber.StatusNotFound, "chat.unknown_channel")
	}
	return h.channelSocket(c)
}

// StatusStream handles GET /api/ws/status. The first frame is the caller's
// timeout status; it is re-sent on every change and when the timeout lapses.
func (h *Handler) StatusStream(c *fiber.Ctx) error {
	if _, ok := c.Locals(streamUserKey).(uuid.UUID); !ok {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return h.statusSocket(c)
}

func (h *Handler) serveChannel(conn *websocket.Conn) {
	channelID := conn.Params("id")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// subscribe before reading the snapshot so nothing falls in the gap
	sub, err := h.service.Subscribe(ctx, realtime.ChatTopic(channelID))
	if err != nil {
		slog.Error("chat stream subscribe failed", "channel_id", channelID, "error", err)
		closeWith(conn, websocket.CloseInternalServerErr)
		return
	}
	defer sub.Close()

	msgs, err := h.service.Recent(ctx, channelID)
	if err != nil {
		slog.Error("chat stream snapshot failed", "channel_id", channelID, "error", err)
		closeWith(conn, websocket.CloseInternalServerErr)
		return
	}
	if err := writeFrame(conn, FrameSnapshot, fiber.Map{"channel_id": channelID, "messages": msgs}); err != nil {
		return
	}

	stop := startReader(conn, cancel)
	defer stop()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				closeWith(conn, websocket.CloseGoingAway)
				return
			}
			if err := writeEvent(conn, ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := ping(conn); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) serveStatus(conn *websocket.Conn) {
	userID, _ := conn.Locals(streamUserKey).(uuid.UUID)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := h.service.Subscribe(ctx, realtime.UserTopic(userID))
	if err != nil {
		slog.Error("status stream subscribe failed", "user_id", userID.String(), "error", err)
		closeWith(conn, websocket.CloseInternalServerErr)
		return
	}
	defer sub.Close()

	status, err := h.service.TimeoutStatus(ctx, userID)
	if err != nil {
		slog.Error("status stream load failed", "user_id", userID.String(), "error", err)
		closeWith(conn, websocket.CloseInternalServerErr)
		return
	}
	if err := writeFrame(conn, FrameStatus, status); err != nil {
		return
	}

	stop := startReader(conn, cancel)
	defer stop()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	expiry := newExpiryTimer()
	defer expiry.stop()
	expiry.arm(*status, time.Now())

	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				closeWith(conn, websocket.CloseGoingAway)
				return
			}
			if ev.Type != realtime.EventTimeoutUpdated {
				if err := writeEvent(conn, ev); err != nil {
					return
				}
				continue
			}
			// re-read the profile rather than trusting the payload
			current, err := h.service.TimeoutStatus(ctx, userID)
			if err != nil {
				slog.Error("status stream reload failed", "user_id", userID.String(), "error", err)
				continue
			}
			if err := writeFrame(conn, FrameStatus, current); err != nil {
				return
			}
			expiry.arm(*current, time.Now())
		case <-expiry.C():
			expiry.clear()
			if err := writeFrame(conn, FrameStatus, StatusAt(nil, time.Now())); err != nil {
				return
			}
		case <-ticker.C:
			if err := ping(conn); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// startReader drains control frames until the peer goes away. The returned
// stop closes the socket and waits for the reader, since the connection is
// recycled once the handler returns.
func startReader(conn *websocket.Conn, cancel context.CancelFunc) (stop func()) {
	done := make(chan struct{})
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		defer close(done)
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("websocket closed", "error", err)
				}
				return
			}
		}
	}()

	return func() {
		_ = conn.Close()
		<-done
	}
}

// expiryTimer fires once when the current timeout lapses.
type expiryTimer struct {
	t *time.Timer
}

func newExpiryTimer() *expiryTimer { return &expiryTimer{} }

func (e *expiryTimer) arm(status TimeoutStatus, now time.Time) {
	e.stop()
	if d, ok := untilExpiry(status, now); ok {
		e.t = time.NewTimer(d)
	}
}

func (e *expiryTimer) C() <-chan time.Time {
	if e.t == nil {
		return nil
	}
	return e.t.C
}

func (e *expiryTimer) clear() { e.t = nil }

func (e *expiryTimer) stop() {
	if e.t != nil {
		e.t.Stop()
		e.t = nil
	}
}

func untilExpiry(status TimeoutStatus, now time.Time) (time.Duration, bool) {
	if !status.IsTimedOut || status.TimeoutUntil == nil {
		return 0, false
	}
	d := status.TimeoutUntil.Sub(now)
	if d < 0 {
		d = 0
	}
	return d, true
}

func writeFrame(conn *websocket.Conn, frameType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return writeEvent(conn, realtime.Event{Type: frameType, Payload: raw, At: time.Now().UTC()})
}

func writeEvent(conn *websocket.Conn, ev realtime.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}

func ping(conn *websocket.Conn) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.PingMessage, nil)
}

func closeWith(conn *websocket.Conn, code int) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, ""))
}
