package handlers

import (
	"errors"
	"log/slog"

	"github.com/btechub/portal-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SettingsHandler struct {
	settings *services.SettingsService
}

func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetSettings handles GET /api/settings. Values are typed per setting.
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	values, err := h.settings.Values()
	if err != nil {
		slog.Error("settings load failed", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_error")
	}
	return c.JSON(fiber.Map{"settings": values})
}

type setSettingRequest struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

func (h *SettingsHandler) SetSetting(c *fiber.Ctx) error {
	var req setSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_body")
	}

	setting, err := h.settings.Set(c.Params("key"), req.Value, req.Type)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSetting) {
			return errorJSON(c, fiber.StatusBadRequest, "setting.invalid")
		}
		slog.Error("setting save failed", "key", c.Params("key"), "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_error")
	}

	slog.Info("setting updated", "key", setting.Key, "type", setting.Type)
	return c.JSON(setting)
}

func (h *SettingsHandler) DeleteSetting(c *fiber.Ctx) error {
	if err := h.settings.Delete(c.Params("key")); err != nil {
		if errors.Is(err, services.ErrSettingNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "setting.not_found")
		}
		slog.Error("setting delete failed", "key", c.Params("key"), "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_error")
	}
	return messageJSON(c, "setting.deleted")
}
