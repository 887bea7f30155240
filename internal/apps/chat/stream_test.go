package chat

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/btechub/portal-backend/internal/realtime"
	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve runs app on a loopback listener and returns its ws:// base URL.
func serve(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(time.Second) })
	return "ws://" + ln.Addr().String()
}

func dial(t *testing.T, url, auth string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": {auth}})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) realtime.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev realtime.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func hangUp(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
}

func TestChannelStream_SnapshotThenLiveEvents(t *testing.T) {
	app, env := newTestApp(t)
	user := env.profiles.add("Sara")
	auth := bearer(t, user)
	ctx := context.Background()

	_, err := env.svc.Send(ctx, &user, "general", "hello")
	require.NoError(t, err)

	base := serve(t, app)
	conn := dial(t, base+"/api/ws/channels/general", auth)

	ev := readFrame(t, conn)
	require.Equal(t, FrameSnapshot, ev.Type)
	var snapshot struct {
		ChannelID string    `json:"channel_id"`
		Messages  []Message `json:"messages"`
	}
	require.NoError(t, ev.Decode(&snapshot))
	assert.Equal(t, "general", snapshot.ChannelID)
	require.Len(t, snapshot.Messages, 1)
	assert.Equal(t, "hello", snapshot.Messages[0].Text)
	assert.Equal(t, 1, env.broker.Subscribers(realtime.ChatTopic("general")))

	// other channels are not forwarded
	_, err = env.svc.Send(ctx, &user, "it", "elsewhere")
	require.NoError(t, err)
	_, err = env.svc.Send(ctx, &user, "general", "second")
	require.NoError(t, err)

	ev = readFrame(t, conn)
	require.Equal(t, realtime.EventMessageNew, ev.Type)
	var msg Message
	require.NoError(t, ev.Decode(&msg))
	assert.Equal(t, "second", msg.Text)
	assert.Equal(t, "Sara", msg.AuthorDisplayName)

	_, err = env.svc.ClearMessages(ctx, "general")
	require.NoError(t, err)
	ev = readFrame(t, conn)
	assert.Equal(t, realtime.EventMessagesCleared, ev.Type)

	hangUp(t, conn)
	assert.Eventually(t, func() bool {
		return env.broker.Subscribers(realtime.ChatTopic("general")) == 0
	}, 2*time.Second, 10*time.Millisecond, "subscription must be released on disconnect")
}

func TestChannelStream_UnknownChannel(t *testing.T) {
	app, env := newTestApp(t)
	auth := bearer(t, env.profiles.add("Sara"))
	base := serve(t, app)

	_, resp, err := websocket.DefaultDialer.Dial(base+"/api/ws/channels/nope", http.Header{"Authorization": {auth}})
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStatusStream_FollowsTimeoutChanges(t *testing.T) {
	app, env := newTestApp(t)
	env.now = time.Now()
	user := env.profiles.add("Omar")
	ctx := context.Background()

	base := serve(t, app)
	conn := dial(t, base+"/api/ws/status", bearer(t, user))

	var status TimeoutStatus
	ev := readFrame(t, conn)
	require.Equal(t, FrameStatus, ev.Type)
	require.NoError(t, ev.Decode(&status))
	assert.False(t, status.IsTimedOut)

	res, err := env.svc.Send(ctx, &user, "general", "dick move")
	require.NoError(t, err)
	require.Equal(t, OutcomeContentViolation, res.Outcome)

	ev = readFrame(t, conn)
	require.Equal(t, FrameStatus, ev.Type)
	require.NoError(t, ev.Decode(&status))
	assert.True(t, status.IsTimedOut)
	require.NotNil(t, status.TimeoutUntil)
	assert.WithinDuration(t, env.now.Add(5*time.Minute), *status.TimeoutUntil, time.Second)

	// other user events pass through untouched
	require.NoError(t, env.broker.Publish(ctx, realtime.UserTopic(user), realtime.EventXPUpdated, map[string]int{"bonus_xp": 10}))
	ev = readFrame(t, conn)
	assert.Equal(t, realtime.EventXPUpdated, ev.Type)

	require.NoError(t, env.svc.ResetTimeout(ctx, user))
	ev = readFrame(t, conn)
	require.Equal(t, FrameStatus, ev.Type)
	status = TimeoutStatus{}
	require.NoError(t, ev.Decode(&status))
	assert.False(t, status.IsTimedOut)
	assert.Nil(t, status.TimeoutUntil)

	hangUp(t, conn)
	assert.Eventually(t, func() bool {
		return env.broker.Subscribers(realtime.UserTopic(user)) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStatusStream_SendsFrameWhenTimeoutLapses(t *testing.T) {
	app, env := newTestApp(t)
	env.now = time.Now()
	user := env.profiles.add("Omar")
	require.NoError(t, env.profiles.SetTimeout(context.Background(), user, env.now.Add(300*time.Millisecond), env.now))

	base := serve(t, app)
	conn := dial(t, base+"/api/ws/status", bearer(t, user))

	var status TimeoutStatus
	ev := readFrame(t, conn)
	require.NoError(t, ev.Decode(&status))
	require.True(t, status.IsTimedOut)

	started := time.Now()
	ev = readFrame(t, conn)
	require.Equal(t, FrameStatus, ev.Type)
	status = TimeoutStatus{}
	require.NoError(t, ev.Decode(&status))
	assert.False(t, status.IsTimedOut)
	assert.Less(t, time.Since(started), time.Second+500*time.Millisecond)

	hangUp(t, conn)
	assert.Eventually(t, func() bool {
		return env.broker.Subscribers(realtime.UserTopic(user)) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
