package aitools

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
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

type recordedProgress struct {
	ids []string
}

func (r *recordedProgress) Increment(_ context.Context, _ uuid.UUID, id string, _ int) error {
	r.ids = append(r.ids, id)
	return nil
}

func (r *recordedProgress) Unlock(context.Context, uuid.UUID, string) error { return nil }

func newTestApp(t *testing.T, upstream *httptest.Server) (*fiber.App, *recordedProgress) {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:       testSecret,
		GLMAPIURL:       upstream.URL + "/llm",
		GLMAPIKey:       "k",
		GLMModel:        "glm",
		HFAPIURL:        upstream.URL + "/hf/",
		HFAPIKey:        "hf",
		HFDetectorModel: "detector",
		HFImageModels:   []string{"img"},
		AITimeout:       5 * time.Second,
	}
	progress := &recordedProgress{}
	h := NewHandler(NewLLMClient(cfg), NewDetector(cfg), NewImageGenerator(cfg), progress, nil)
	app := fiber.New()
	mount(app.Group("/api"), h, middleware.OptionalJWT(cfg))
	return app, progress
}

func upstreamServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/llm":
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"مرحبا"}}]}`))
		case "/hf/detector":
			_, _ = w.Write([]byte(`[[{"label":"Real","score":0.9}]]`))
		case "/hf/img":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte{0xFF, 0xD8})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func bearer(t *testing.T) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func postJSON(t *testing.T, app *fiber.App, path, body, auth string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func TestHandler_Chat(t *testing.T) {
	app, progress := newTestApp(t, upstreamServer(t))

	resp := postJSON(t, app, "/api/chat", `{"message":"اشرح الوحدة 1"}`, bearer(t))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "مرحبا", decode(t, resp)["response"])
	assert.Equal(t, []string{"ai_explorer"}, progress.ids)

	resp = postJSON(t, app, "/api/chat", `{"message":""}`, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Message is required", decode(t, resp)["message"])
}

func TestHandler_InterviewAnonymousRecordsNothing(t *testing.T) {
	app, progress := newTestApp(t, upstreamServer(t))

	resp := postJSON(t, app, "/api/chat-interview", `{"message":"ready","role":"IT support"}`, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, progress.ids)
}

func TestHandler_AIChatMultipart(t *testing.T) {
	app, _ := newTestApp(t, upstreamServer(t))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("message", "what is this"))
	require.NoError(t, mw.WriteField("history", `[{"role":"user","content":"hi"}]`))
	part, err := mw.CreateFormFile("images", "pic.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n0000"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/ai-chat", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHandler_Detect(t *testing.T) {
	app, progress := newTestApp(t, upstreamServer(t))

	resp := postJSON(t, app, "/api/detect-ai", `{"text":"short"}`, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/api/detect-ai", `{"text":"I wrote this essay myself last night about trains."}`, bearer(t))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, float64(10), body["aiScore"])
	assert.Equal(t, float64(90), body["humanScore"])
	assert.Equal(t, "detector", body["modelUsed"])
	assert.Equal(t, []string{"detective"}, progress.ids)
}

func TestHandler_GenerateImage(t *testing.T) {
	app, _ := newTestApp(t, upstreamServer(t))

	resp := postJSON(t, app, "/api/generate-image", `{"prompt":""}`, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/api/generate-image", `{"prompt":"a robot studying"}`, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "img", resp.Header.Get("X-Generated-By"))
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, []byte{0xFF, 0xD8}, raw)
}
