package chat

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/btechub/portal-backend/internal/config"
	"github.com/btechub/portal-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestApp(t *testing.T) (*fiber.App, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	app := fiber.New()
	h := NewHandler(env.svc)
	mountRoutes(app.Group("/api"), h, middleware.NewUserRateLimiter(100), &config.Config{JWTSecret: testSecret})
	mountAdminRoutes(app.Group("/api/admin"), h)
	return app, env
}

func bearer(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func do(t *testing.T, app *fiber.App, method, path, body, auth string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestHandler_ListChannels(t *testing.T) {
	app, _ := newTestApp(t)
	status, body := do(t, app, "GET", "/api/channels", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	channels := body["channels"].([]interface{})
	require.Len(t, channels, 8)
	first := channels[0].(map[string]interface{})
	assert.Equal(t, "general", first["id"])
	assert.Equal(t, "General", first["name"])
}

func TestHandler_SendOutcomes(t *testing.T) {
	app, env := newTestApp(t)
	user := env.profiles.add("Sara")
	auth := bearer(t, user)

	status, body := do(t, app, "POST", "/api/channels/general/messages", `{"text":"hi"}`, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, string(OutcomeNotAuthenticated), body["outcome"])

	status, body = do(t, app, "POST", "/api/channels/general/messages", `{"text":"hi"}`, auth)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, string(OutcomeSent), body["outcome"])

	status, body = do(t, app, "POST", "/api/channels/general/messages", `{"text":"dick move"}`, auth)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.NotEmpty(t, body["timeout_until"])
	assert.Contains(t, body["message"], "5 minutes")

	status, body = do(t, app, "POST", "/api/channels/general/messages", `{"text":"hi"}`, auth)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, string(OutcomeTimedOut), body["outcome"])

	status, body = do(t, app, "GET", "/api/me/timeout", "", auth)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["is_timed_out"])
}

func TestHandler_SendValidation(t *testing.T) {
	app, env := newTestApp(t)
	auth := bearer(t, env.profiles.add("Sara"))

	status, _ := do(t, app, "POST", "/api/channels/unknown/messages", `{"text":"hi"}`, auth)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body := do(t, app, "POST", "/api/channels/general/messages", `{"text":""}`, auth)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Message cannot be empty", body["message"])
}

func TestHandler_Messages(t *testing.T) {
	app, env := newTestApp(t)
	auth := bearer(t, env.profiles.add("Sara"))
	for _, text := range []string{"one", "two"} {
		env.now = env.now.Add(time.Second)
		status, _ := do(t, app, "POST", "/api/channels/it/messages", `{"text":"`+text+`"}`, auth)
		require.Equal(t, fiber.StatusCreated, status)
	}

	status, body := do(t, app, "GET", "/api/channels/it/messages", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	msgs := body["messages"].([]interface{})
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].(map[string]interface{})["text"])
}

func TestHandler_AdminClearAndReset(t *testing.T) {
	app, env := newTestApp(t)
	user := env.profiles.add("Omar")
	auth := bearer(t, user)
	do(t, app, "POST", "/api/channels/general/messages", `{"text":"hello"}`, auth)
	do(t, app, "POST", "/api/channels/general/messages", `{"text":"shit"}`, auth)

	status, body := do(t, app, "DELETE", "/api/admin/chat/messages", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["deleted"])
	assert.Equal(t, false, body["has_more"])

	status, _ = do(t, app, "DELETE", "/api/admin/users/"+user.String()+"/timeout", "", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, body = do(t, app, "GET", "/api/me/timeout", "", auth)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["is_timed_out"])
}

func TestHandler_WebsocketRoutesRequireUpgrade(t *testing.T) {
	app, env := newTestApp(t)
	auth := bearer(t, env.profiles.add("Sara"))

	status, _ := do(t, app, "GET", "/api/ws/status", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = do(t, app, "GET", "/api/ws/channels/general", "", auth)
	assert.Equal(t, fiber.StatusUpgradeRequired, status)
}
