package handlers

import (
	"github.com/btechub/portal-backend/internal/dto"
	"github.com/btechub/portal-backend/internal/i18n"
	"github.com/gofiber/fiber/v2"
)

func errorJSON(c *fiber.Ctx, status int, key string) error {
	return c.Status(status).JSON(dto.ErrorResponse{
		Error:   true,
		Message: i18n.T(i18n.FromRequest(c), key),
	})
}

func messageJSON(c *fiber.Ctx, key string) error {
	return c.JSON(fiber.Map{"message": i18n.T(i18n.FromRequest(c), key)})
}
