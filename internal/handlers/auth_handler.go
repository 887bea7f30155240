package handlers

import (
	"errors"
	"log/slog"

	"github.com/btechub/portal-backend/internal/dto"
	"github.com/btechub/portal-backend/internal/identity"
	"github.com/btechub/portal-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_body")
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		return authError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_body")
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		return authError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_body")
	}

	resp, err := h.authService.Refresh(&req)
	if err != nil {
		// a deleted user behind a live refresh token is just a dead session
		if errors.Is(err, services.ErrUserNotFound) {
			err = services.ErrInvalidToken
		}
		return authError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_body")
	}

	if err := h.authService.Logout(&req); err != nil {
		slog.Error("logout failed", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_error")
	}

	return messageJSON(c, "auth.logged_out")
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req dto.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_body")
	}

	if err := h.authService.DeleteAccount(userID, req.Password); err != nil {
		return authError(c, err)
	}

	slog.Info("account deleted", "user_id", userID.String())
	return messageJSON(c, "auth.deleted")
}

// Me handles GET /api/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized")
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		return authError(c, err)
	}
	return c.JSON(services.ToUserResponse(user))
}

// UpdateMe handles PUT /api/me
func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_body")
	}

	user, err := h.authService.UpdateProfile(userID, &req)
	if err != nil {
		return authError(c, err)
	}
	return c.JSON(services.ToUserResponse(user))
}

func authError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		return errorJSON(c, fiber.StatusConflict, "auth.email_taken")
	case errors.Is(err, services.ErrWeakPassword):
		return errorJSON(c, fiber.StatusBadRequest, "auth.weak_password")
	case errors.Is(err, services.ErrInvalidEmail):
		return errorJSON(c, fiber.StatusBadRequest, "auth.invalid_email")
	case errors.Is(err, services.ErrPasswordRequired):
		return errorJSON(c, fiber.StatusBadRequest, "auth.password_required")
	case errors.Is(err, services.ErrInvalidCredentials):
		return errorJSON(c, fiber.StatusUnauthorized, "auth.invalid_credentials")
	case errors.Is(err, services.ErrInvalidToken):
		return errorJSON(c, fiber.StatusUnauthorized, "auth.invalid_refresh")
	case errors.Is(err, services.ErrUserNotFound):
		return errorJSON(c, fiber.StatusNotFound, "auth.user_not_found")
	}
	slog.Error("auth request failed", "path", c.Path(), "error", err)
	return errorJSON(c, fiber.StatusInternalServerError, "internal_error")
}
