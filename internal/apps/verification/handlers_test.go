package verification

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/btechub/portal-backend/internal/config"
	"github.com/btechub/portal-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(env *testEnv) *fiber.App {
	app := fiber.New()
	h := NewHandler(env.svc)
	optional := middleware.OptionalJWT(&config.Config{JWTSecret: "test-secret"})
	app.Post("/api/send-otp", optional, h.Send)
	app.Post("/api/verify-otp", optional, h.Verify)
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestHandler_StatusMapping(t *testing.T) {
	env := newTestEnv()
	app := newTestApp(env)
	user := env.addUser("a@b.co").String()

	status, _ := post(t, app, "/api/send-otp", `{"email":""}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = post(t, app, "/api/verify-otp", `{"userId":"`+user+`","otp":"123456"}`)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body := post(t, app, "/api/send-otp", `{"email":"a@b.co","userId":"`+user+`"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])

	status, body = post(t, app, "/api/verify-otp", `{"userId":"`+user+`","otp":"999999"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, float64(4), body["remaining_attempts"])

	status, body = post(t, app, "/api/verify-otp", `{"userId":"`+user+`","otp":"123456"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Your email has been verified", body["message"])
}

func TestHandler_SendOTPChecksAccount(t *testing.T) {
	env := newTestEnv()
	app := newTestApp(env)
	user := env.addUser("student@example.com").String()

	status, body := post(t, app, "/api/send-otp", `{"email":"attacker@evil.test","userId":"`+user+`"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Email does not match the account", body["message"])

	status, _ = post(t, app, "/api/send-otp", `{"email":"a@b.co","userId":"`+uuid.NewString()+`"}`)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Empty(t, env.mailer.sent)
}

func TestHandler_ExpiredIsGone(t *testing.T) {
	env := newTestEnv()
	app := newTestApp(env)
	user := env.addUser("a@b.co").String()

	status, _ := post(t, app, "/api/send-otp", `{"email":"a@b.co","userId":"`+user+`"}`)
	require.Equal(t, fiber.StatusOK, status)
	env.now = env.now.Add(CodeTTL + 1)

	status, _ = post(t, app, "/api/verify-otp", `{"userId":"`+user+`","otp":"123456"}`)
	assert.Equal(t, fiber.StatusGone, status)
}

func TestHandler_LockoutIsTooManyRequests(t *testing.T) {
	env := newTestEnv()
	app := newTestApp(env)
	user := env.addUser("a@b.co").String()
	post(t, app, "/api/send-otp", `{"email":"a@b.co","userId":"`+user+`"}`)

	var status int
	for i := 0; i < MaxAttempts; i++ {
		status, _ = post(t, app, "/api/verify-otp", `{"userId":"`+user+`","otp":"000000"}`)
	}
	assert.Equal(t, fiber.StatusTooManyRequests, status)
}
