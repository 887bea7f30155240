package services

import (
	"testing"
	"time"

	"github.com/btechub/portal-backend/internal/config"
	"github.com/btechub/portal-backend/internal/identity"
	"github.com/btechub/portal-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_Claims(t *testing.T) {
	svc := &AuthService{cfg: &config.Config{JWTSecret: "s3cret", JWTAccessExpiry: 15 * time.Minute}}
	user := &models.User{ID: uuid.New(), Email: "lina@school.edu", Role: "user"}
	now := time.Now()

	raw, err := svc.generateAccessToken(user, now)
	require.NoError(t, err)

	token, id, err := identity.ParseToken("s3cret", raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "lina@school.edu", claims["email"])
	assert.Equal(t, "lina", claims["name"])
	assert.Equal(t, "user", claims["role"])
	assert.EqualValues(t, now.Add(15*time.Minute).Unix(), claims["exp"])
}

func TestNormalizeEmail(t *testing.T) {
	got, err := normalizeEmail("  Student@School.EDU ")
	require.NoError(t, err)
	assert.Equal(t, "student@school.edu", got)

	for _, bad := range []string{"", "no-at-sign", "Name <a@b.c>", "a@"} {
		_, err := normalizeEmail(bad)
		assert.ErrorIs(t, err, ErrInvalidEmail, bad)
	}
}

func TestHashToken_Deterministic(t *testing.T) {
	assert.Equal(t, hashToken("abc"), hashToken("abc"))
	assert.NotEqual(t, hashToken("abc"), hashToken("abd"))
	assert.Len(t, hashToken("abc"), 64)
}

func TestToUserResponse(t *testing.T) {
	until := time.Now().Add(time.Minute)
	resp := ToUserResponse(&models.User{ID: uuid.New(), Email: "a@b.io", XP: 40, TimeoutUntil: &until, EmailVerified: true})
	assert.Equal(t, "a", resp.DisplayName)
	assert.Equal(t, 40, resp.XP)
	assert.True(t, resp.EmailVerified)
	assert.Equal(t, &until, resp.TimeoutUntil)
}
