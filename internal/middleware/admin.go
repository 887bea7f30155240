package middleware

import (
	"strings"

	"github.com/btechub/portal-backend/internal/config"
	"github.com/btechub/portal-backend/internal/dto"
	"github.com/btechub/portal-backend/internal/i18n"
	"github.com/btechub/portal-backend/internal/identity"
	"github.com/btechub/portal-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RoleLookup resolves the stored role of a user id.
type RoleLookup func(userID string) (string, error)

// GormRoleLookup reads users.role.
func GormRoleLookup(db *gorm.DB) RoleLookup {
	return func(userID string) (string, error) {
		var user models.User
		if err := db.Select("role").First(&user, "id = ?", userID).Error; err != nil {
			return "", err
		}
		return user.Role, nil
	}
}

// AdminRequired passes when any of these holds:
// 1. X-Admin-Token matches ADMIN_TOKEN
// 2. the JWT email/sub is in ADMIN_EMAILS / ADMIN_USER_IDS
// 3. users.role is "admin"
func AdminRequired(lookup RoleLookup, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)
	adminUserIDs := parseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		lang := i18n.FromRequest(c)

		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}

		claims, ok := identity.Claims(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: i18n.T(lang, "unauthorized"),
			})
		}

		email, _ := claims["email"].(string)
		sub, _ := claims["sub"].(string)

		if contains(adminEmails, email) || contains(adminUserIDs, sub) {
			return c.Next()
		}

		if sub != "" && lookup != nil {
			if role, err := lookup(sub); err == nil && role == "admin" {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: i18n.T(lang, "forbidden"),
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
