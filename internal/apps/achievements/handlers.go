package achievements

import (
	"errors"
	"log/slog"

	"github.com/btechub/portal-backend/internal/dto"
	"github.com/btechub/portal-backend/internal/i18n"
	"github.com/btechub/portal-backend/internal/identity"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type catalogItem struct {
	Achievement
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Catalog handles GET /api/achievements/catalog
func (h *Handler) Catalog(c *fiber.Ctx) error {
	lang := i18n.FromRequest(c)
	items := make([]catalogItem, len(Catalog))
	for i, a := range Catalog {
		items[i] = catalogItem{Achievement: a, Title: a.Title(lang), Description: a.Description(lang)}
	}
	return c.JSON(fiber.Map{"achievements": items, "xp_per_level": XPPerLevel})
}

// Summary handles GET /api/achievements
func (h *Handler) Summary(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}
	summary, err := h.service.Summary(c.UserContext(), userID)
	if err != nil {
		slog.Error("achievement summary failed", "user_id", userID.String(), "error", err)
		return fail(c, fiber.StatusInternalServerError, "internal_error")
	}
	return c.JSON(summary)
}

// Progress handles POST /api/achievements/:id/progress
func (h *Handler) Progress(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var req struct {
		Amount int `json:"amount"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid_body")
		}
	}
	if req.Amount == 0 {
		req.Amount = 1
	}

	result, err := h.service.IncrementProgress(c.UserContext(), userID, c.Params("id"), req.Amount)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(withMessage(c, result))
}

// Unlock handles POST /api/achievements/:id/unlock
func (h *Handler) Unlock(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}
	result, err := h.service.Unlock(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(withMessage(c, result))
}

// AddXP handles POST /api/achievements/xp
func (h *Handler) AddXP(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var req struct {
		Amount int `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid_body")
	}
	total, err := h.service.AddXP(c.UserContext(), userID, req.Amount)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(fiber.Map{"xp": total})
}

// Sync handles POST /api/achievements/sync
func (h *Handler) Sync(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var local LocalProfile
	if err := c.BodyParser(&local); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid_body")
	}
	result, err := h.service.SyncLocal(c.UserContext(), userID, local)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(result)
}

// Leaderboard handles GET /api/leaderboard
func (h *Handler) Leaderboard(c *fiber.Ctx) error {
	entries, err := h.service.Leaderboard(c.UserContext(), c.QueryInt("limit", 20))
	if err != nil {
		slog.Error("leaderboard query failed", "error", err)
		return fail(c, fiber.StatusInternalServerError, "internal_error")
	}
	return c.JSON(fiber.Map{"leaderboard": entries})
}

func (h *Handler) serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrUnknownAchievement):
		return fail(c, fiber.StatusNotFound, "achievement.unknown")
	case errors.Is(err, ErrInvalidAmount):
		return fail(c, fiber.StatusBadRequest, "achievement.amount")
	case errors.Is(err, ErrUserNotFound):
		return fail(c, fiber.StatusNotFound, "not_found")
	default:
		slog.Error("achievement update failed", "error", err, "action", "achievement")
		return fail(c, fiber.StatusInternalServerError, "internal_error")
	}
}

type progressResponse struct {
	*ProgressResult
	Message string `json:"message,omitempty"`
}

func withMessage(c *fiber.Ctx, result *ProgressResult) progressResponse {
	resp := progressResponse{ProgressResult: result}
	if result.Notification != nil {
		lang := i18n.FromRequest(c)
		title := result.Notification.TitleAR
		if lang == i18n.English {
			title = result.Notification.TitleEN
		}
		resp.Message = i18n.Tf(lang, "achievement.unlocked", title)
	}
	return resp
}

func fail(c *fiber.Ctx, status int, key string) error {
	return c.Status(status).JSON(dto.ErrorResponse{
		Error: true, Message: i18n.T(i18n.FromRequest(c), key),
	})
}
