package resources

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

func newTestApp(t *testing.T) (*fiber.App, *Service, *fakeProgress) {
	t.Helper()
	progress := &fakeProgress{}
	svc := NewService(newMemStore(), progress)
	h := NewHandler(svc)
	app := fiber.New()
	api := app.Group("/api")
	mountRoutes(api, h, middleware.OptionalJWT(&config.Config{JWTSecret: testSecret}))
	mountAdminRoutes(api.Group("/admin"), h)
	return app, svc, progress
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

func TestHandler_AdminCreateThenList(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := do(t, app, "POST", "/api/admin/resources", `{"title":"","file_url":""}`, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Title and file URL are required", body["message"])

	status, body = do(t, app, "POST", "/api/admin/resources",
		`{"title":"Unit 2 slides","subject":"it","unit":"unit-2","file_url":"https://cdn.io/u2.pptx"}`, "")
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "pptx", body["file_type"])
	id := body["id"].(string)

	status, body = do(t, app, "GET", "/api/resources?subject=it&limit=5", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 5, body["limit"])

	status, body = do(t, app, "GET", "/api/resources/"+id, "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Unit 2 slides", body["title"])
}

func TestHandler_Download(t *testing.T) {
	app, svc, progress := newTestApp(t)
	r := seed(t, svc, "Lab sheet", "health", "unit-7")

	status, body := do(t, app, "POST", "/api/resources/"+r.ID.String()+"/download", "", bearer(t, uuid.New()))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, r.FileURL, body["url"])
	assert.EqualValues(t, 1, body["downloads"])
	assert.Len(t, progress.calls, 2)

	status, _ = do(t, app, "POST", "/api/resources/not-a-uuid/download", "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHandler_Delete(t *testing.T) {
	app, svc, _ := newTestApp(t)
	r := seed(t, svc, "Old notes", "business", "unit-1")

	status, _ := do(t, app, "DELETE", "/api/admin/resources/"+r.ID.String(), "", "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, body := do(t, app, "DELETE", "/api/admin/resources/"+r.ID.String(), "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Resource not found", body["message"])
}
