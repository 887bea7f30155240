package verification

import (
	"errors"
	"log/slog"

	"github.com/btechub/portal-backend/internal/dto"
	"github.com/btechub/portal-backend/internal/i18n"
	"github.com/btechub/portal-backend/internal/identity"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type sendRequest struct {
	Email  string `json:"email"`
	UserID string `json:"userId"`
}

type verifyRequest struct {
	UserID string `json:"userId"`
	OTP    string `json:"otp"`
}

// Send handles POST /api/send-otp
func (h *Handler) Send(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid_body")
	}
	if id := identity.OptionalUserID(c); id != nil {
		req.UserID = id.String()
	}

	lang := i18n.FromRequest(c)
	record, err := h.service.SendOTP(c.UserContext(), req.Email, req.UserID, lang)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"message":    i18n.T(lang, "otp.sent"),
		"expires_at": record.ExpiresAt,
	})
}

// Verify handles POST /api/verify-otp
func (h *Handler) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid_body")
	}

	var userID uuid.UUID
	if id := identity.OptionalUserID(c); id != nil {
		userID = *id
	} else {
		parsed, err := uuid.Parse(req.UserID)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "otp.missing_fields")
		}
		userID = parsed
	}

	if err := h.service.VerifyOTP(c.UserContext(), userID, req.OTP); err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": i18n.T(i18n.FromRequest(c), "otp.verified"),
	})
}

func (h *Handler) serviceError(c *fiber.Ctx, err error) error {
	var mismatch *MismatchError
	switch {
	case errors.As(err, &mismatch):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":              true,
			"message":            i18n.Tf(i18n.FromRequest(c), "otp.mismatch", mismatch.Remaining),
			"remaining_attempts": mismatch.Remaining,
		})
	case errors.Is(err, ErrMissingFields):
		return fail(c, fiber.StatusBadRequest, "otp.missing_fields")
	case errors.Is(err, ErrMissingCode):
		return fail(c, fiber.StatusBadRequest, "otp.missing_code")
	case errors.Is(err, ErrOTPNotFound):
		return fail(c, fiber.StatusNotFound, "otp.not_found")
	case errors.Is(err, ErrAlreadyVerified):
		return fail(c, fiber.StatusBadRequest, "otp.already_verified")
	case errors.Is(err, ErrOTPLocked):
		return fail(c, fiber.StatusTooManyRequests, "otp.locked")
	case errors.Is(err, ErrOTPExpired):
		return fail(c, fiber.StatusGone, "otp.expired")
	case errors.Is(err, ErrUserNotFound):
		return fail(c, fiber.StatusNotFound, "auth.user_not_found")
	case errors.Is(err, ErrEmailMismatch):
		return fail(c, fiber.StatusBadRequest, "otp.email_mismatch")
	case errors.Is(err, ErrSendFailed):
		return fail(c, fiber.StatusInternalServerError, "otp.send_failed")
	}
	slog.Error("otp request failed", "path", c.Path(), "error", err)
	return fail(c, fiber.StatusInternalServerError, "internal_error")
}

func fail(c *fiber.Ctx, status int, key string) error {
	return c.Status(status).JSON(dto.ErrorResponse{
		Error:   true,
		Message: i18n.T(i18n.FromRequest(c), key),
	})
}
