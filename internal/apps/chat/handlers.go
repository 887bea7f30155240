package chat

import (
	"errors"
	"log/slog"
	"time"

	"github.com/btechub/portal-backend/internal/dto"
	"github.com/btechub/portal-backend/internal/i18n"
	"github.com/btechub/portal-backend/internal/identity"
	"github.com/btechub/portal-backend/internal/services"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service

	channelSocket fiber.Handler
	statusSocket  fiber.Handler
}

func NewHandler(service *Service) *Handler {
	h := &Handler{service: service}
	h.channelSocket = websocket.New(h.serveChannel)
	h.statusSocket = websocket.New(h.serveStatus)
	return h
}

type channelResponse struct {
	*ChannelDefinition
	Name string `json:"name"`
}

// ListChannels handles GET /api/channels
func (h *Handler) ListChannels(c *fiber.Ctx) error {
	lang := i18n.FromRequest(c)
	defs := h.service.Channels().All()
	out := make([]channelResponse, len(defs))
	for i, def := range defs {
		out[i] = channelResponse{ChannelDefinition: def, Name: def.Name(lang)}
	}
	return c.JSON(fiber.Map{"channels": out})
}

// Messages handles GET /api/channels/:id/messages
func (h *Handler) Messages(c *fiber.Ctx) error {
	msgs, err := h.service.Recent(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs, "channel_id": c.Params("id")})
}

// Send handles POST /api/channels/:id/messages
func (h *Handler) Send(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid_body")
	}

	result, err := h.service.Send(c.UserContext(), identity.OptionalUserID(c), c.Params("id"), req.Text)
	if err != nil {
		return h.serviceError(c, err)
	}

	lang := i18n.FromRequest(c)
	switch result.Outcome {
	case OutcomeSent:
		return c.Status(fiber.StatusCreated).JSON(result)
	case OutcomeNotAuthenticated:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   true,
			"outcome": result.Outcome,
			"message": i18n.T(lang, "unauthorized"),
		})
	case OutcomeTimedOut:
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":         true,
			"outcome":       result.Outcome,
			"timeout_until": result.TimeoutUntil,
			"message":       i18n.Tf(lang, "chat.timed_out", formatUntil(result.TimeoutUntil)),
		})
	case OutcomeContentViolation:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":         true,
			"outcome":       result.Outcome,
			"timeout_until": result.TimeoutUntil,
			"message":       i18n.T(lang, "chat.violation"),
		})
	}
	return fail(c, fiber.StatusInternalServerError, "chat.send_failed")
}

// Timeout handles GET /api/me/timeout
func (h *Handler) Timeout(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}
	status, err := h.service.TimeoutStatus(c.UserContext(), userID)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(status)
}

// Report handles POST /api/channels/:id/messages/:messageId/report
func (h *Handler) Report(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}
	messageID, err := uuid.Parse(c.Params("messageId"))
	if err != nil {
		return fail(c, fiber.StatusNotFound, "not_found")
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid_body")
	}

	report, err := h.service.ReportMessage(c.UserContext(), userID, c.Params("id"), messageID, req.Reason)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// ClearMessages handles DELETE /api/admin/chat/messages
func (h *Handler) ClearMessages(c *fiber.Ctx) error {
	result, err := h.service.ClearMessages(c.UserContext(), c.Query("channel_id"))
	if err != nil {
		return h.serviceError(c, err)
	}
	lang := i18n.FromRequest(c)
	msg := i18n.Tf(lang, "chat.cleared", result.Deleted)
	if result.HasMore {
		msg += ". " + i18n.T(lang, "chat.run_again")
	}
	return c.JSON(fiber.Map{
		"deleted":   result.Deleted,
		"remaining": result.Remaining,
		"has_more":  result.HasMore,
		"message":   msg,
	})
}

// ResetTimeout handles DELETE /api/admin/users/:id/timeout
func (h *Handler) ResetTimeout(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid_body")
	}
	if err := h.service.ResetTimeout(c.UserContext(), userID); err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok", "user_id": userID})
}

// ResetAllTimeouts handles DELETE /api/admin/timeouts
func (h *Handler) ResetAllTimeouts(c *fiber.Ctx) error {
	n, err := h.service.ResetAllTimeouts(c.UserContext())
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok", "cleared": n})
}

func (h *Handler) serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrUnknownChannel):
		return fail(c, fiber.StatusNotFound, "chat.unknown_channel")
	case errors.Is(err, ErrEmptyMessage):
		return fail(c, fiber.StatusBadRequest, "chat.empty")
	case errors.Is(err, ErrMessageTooLong):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: i18n.Tf(i18n.FromRequest(c), "chat.too_long", h.service.MaxLength()),
		})
	case errors.Is(err, ErrChatDisabled):
		return fail(c, fiber.StatusForbidden, "feature_off")
	case errors.Is(err, ErrMessageNotFound), errors.Is(err, ErrProfileNotFound):
		return fail(c, fiber.StatusNotFound, "not_found")
	case errors.Is(err, services.ErrSelfReport):
		return fail(c, fiber.StatusBadRequest, "report.self")
	case errors.Is(err, services.ErrDuplicateReport):
		return fail(c, fiber.StatusConflict, "report.duplicate")
	case errors.Is(err, services.ErrInvalidReport):
		return fail(c, fiber.StatusBadRequest, "report.invalid")
	case errors.Is(err, ErrSendFailed):
		return fail(c, fiber.StatusInternalServerError, "chat.send_failed")
	}
	slog.Error("chat request failed", "path", c.Path(), "error", err)
	return fail(c, fiber.StatusInternalServerError, "internal_error")
}

func fail(c *fiber.Ctx, status int, key string) error {
	return c.Status(status).JSON(dto.ErrorResponse{
		Error:   true,
		Message: i18n.T(i18n.FromRequest(c), key),
	})
}

func formatUntil(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("15:04 UTC")
}
