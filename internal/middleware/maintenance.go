package middleware

import (
	"strings"

	"github.com/btechub/portal-backend/internal/dto"
	"github.com/btechub/portal-backend/internal/i18n"
	"github.com/gofiber/fiber/v2"
)

// FlagReader reads a boolean portal setting.
type FlagReader interface {
	Bool(key string, fallback bool) bool
}

// Maintenance answers 503 while the given flag is on. Paths under any of the
// exempt prefixes (health, settings, admin) keep working.
func Maintenance(flags FlagReader, key string, exempt ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !flags.Bool(key, false) {
			return c.Next()
		}
		path := c.Path()
		for _, prefix := range exempt {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error:   true,
			Message: i18n.T(i18n.FromRequest(c), "maintenance"),
		})
	}
}
