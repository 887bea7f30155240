package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/btechub/portal-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func bearer(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func TestUserRateLimiter_Burst(t *testing.T) {
	rl := NewUserRateLimiter(1)
	now := time.Now()

	assert.True(t, rl.allowAt("u1", now))
	assert.True(t, rl.allowAt("u1", now))
	assert.False(t, rl.allowAt("u1", now))
	assert.True(t, rl.allowAt("u2", now), "limits are per key")
	assert.True(t, rl.allowAt("u1", now.Add(time.Second)), "tokens refill")
}

func TestUserRateLimiter_Sweep(t *testing.T) {
	rl := NewUserRateLimiter(1)
	now := time.Now()
	rl.allowAt("old", now.Add(-time.Hour))
	rl.allowAt("fresh", now)

	assert.Equal(t, 1, rl.Sweep(now))
	assert.Len(t, rl.limiters, 1)
}

func TestAdminRequired(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret, AdminToken: "tok", AdminEmails: "boss@x.io"}
	adminID := uuid.New()
	lookup := func(id string) (string, error) {
		if id == adminID.String() {
			return "admin", nil
		}
		return "", errors.New("not found")
	}

	app := fiber.New()
	app.Get("/admin", OptionalJWT(cfg), AdminRequired(lookup, cfg), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{"anonymous", nil, fiber.StatusUnauthorized},
		{"admin token", map[string]string{"X-Admin-Token": "tok"}, fiber.StatusNoContent},
		{"listed email", map[string]string{"Authorization": bearer(t, jwt.MapClaims{"sub": uuid.NewString(), "email": "boss@x.io"})}, fiber.StatusNoContent},
		{"db role", map[string]string{"Authorization": bearer(t, jwt.MapClaims{"sub": adminID.String()})}, fiber.StatusNoContent},
		{"plain user", map[string]string{"Authorization": bearer(t, jwt.MapClaims{"sub": uuid.NewString()})}, fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestJWTProtected_QueryToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	app := fiber.New()
	app.Get("/me", JWTProtected(cfg), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	raw := bearer(t, jwt.MapClaims{"sub": uuid.NewString(), "exp": time.Now().Add(time.Minute).Unix()})[len("Bearer "):]
	resp, err = app.Test(httptest.NewRequest("GET", "/me?token="+raw, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

type staticFlags map[string]bool

func (f staticFlags) Bool(key string, fallback bool) bool {
	if v, ok := f[key]; ok {
		return v
	}
	return fallback
}

func TestMaintenance(t *testing.T) {
	flags := staticFlags{"maintenance_mode": true}
	app := fiber.New()
	app.Use(Maintenance(flags, "maintenance_mode", "/api/health", "/api/admin"))
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app.Get("/api/health", ok)
	app.Get("/api/admin/reports", ok)
	app.Get("/api/channels", ok)

	for path, want := range map[string]int{
		"/api/health":        fiber.StatusOK,
		"/api/admin/reports": fiber.StatusOK,
		"/api/channels":      fiber.StatusServiceUnavailable,
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}

	flags["maintenance_mode"] = false
	resp, err := app.Test(httptest.NewRequest("GET", "/api/channels", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
