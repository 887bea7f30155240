package middleware

import (
	"github.com/btechub/portal-backend/internal/config"
	"github.com/btechub/portal-backend/internal/dto"
	"github.com/btechub/portal-backend/internal/i18n"
	"github.com/btechub/portal-backend/internal/identity"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JWTProtected requires a valid bearer token. Browsers cannot set headers on
// websocket upgrades, so ?token= is accepted as well.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		TokenLookup: "header:Authorization,query:token",
		AuthScheme:  "Bearer",
		ContextKey:  identity.LocalsKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: i18n.T(i18n.FromRequest(c), "unauthorized"),
			})
		},
	})
}

// OptionalJWT attaches the token when a valid one is present and otherwise
// lets the request through anonymously.
func OptionalJWT(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(fiber.HeaderAuthorization)
		if raw == "" {
			return c.Next()
		}
		if token, _, err := identity.ParseToken(cfg.JWTSecret, raw); err == nil {
			c.Locals(identity.LocalsKey, token)
		}
		return c.Next()
	}
}
