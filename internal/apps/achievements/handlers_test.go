package achievements

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/btechub/portal-backend/internal/apps"
	"github.com/btechub/portal-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestApp(t *testing.T) (*fiber.App, *Service) {
	t.Helper()
	svc, _, _ := newTestService()
	app := fiber.New()
	New(svc).RegisterRoutes(app.Group("/api"), &apps.Deps{Config: &config.Config{JWTSecret: testSecret}})
	return app, svc
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

func TestHandler_Catalog(t *testing.T) {
	app, _ := newTestApp(t)
	status, body := do(t, app, "GET", "/api/achievements/catalog", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	items := body["achievements"].([]interface{})
	assert.Len(t, items, len(Catalog))
	assert.Equal(t, "First Message", items[0].(map[string]interface{})["title"])
}

func TestHandler_RequiresAuth(t *testing.T) {
	app, _ := newTestApp(t)
	status, _ := do(t, app, "GET", "/api/achievements", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestHandler_ProgressUnlocksWithMessage(t *testing.T) {
	app, _ := newTestApp(t)
	auth := bearer(t, uuid.New())

	status, body := do(t, app, "POST", "/api/achievements/first_message/progress", "", auth)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["unlocked"])
	assert.Equal(t, "🏆 Achievement unlocked: First Message", body["message"])

	status, body = do(t, app, "POST", "/api/achievements/first_message/progress", `{"amount":3}`, auth)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Nil(t, body["message"])
}

func TestHandler_UnknownAchievement(t *testing.T) {
	app, _ := newTestApp(t)
	status, body := do(t, app, "POST", "/api/achievements/flying/unlock", "", bearer(t, uuid.New()))
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, true, body["error"])
}

func TestHandler_XPAndSummary(t *testing.T) {
	app, _ := newTestApp(t)
	auth := bearer(t, uuid.New())

	status, body := do(t, app, "POST", "/api/achievements/xp", `{"amount":40}`, auth)
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 40, body["xp"])

	status, _ = do(t, app, "POST", "/api/achievements/xp", `{"amount":0}`, auth)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = do(t, app, "GET", "/api/achievements", "", auth)
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 40, body["bonus_xp"])
	assert.EqualValues(t, 0, body["total_xp"])
	assert.EqualValues(t, 1, body["level"])
}
