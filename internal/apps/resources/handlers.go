package resources

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

// List handles GET /api/resources
func (h *Handler) List(c *fiber.Ctx) error {
	page, err := h.service.List(c.UserContext(), Filter{
		Subject: c.Query("subject"),
		Unit:    c.Query("unit"),
		Query:   c.Query("q"),
		Limit:   c.QueryInt("limit", DefaultPageSize),
		Offset:  c.QueryInt("offset", 0),
	})
	if err != nil {
		slog.Error("resource list failed", "error", err)
		return fail(c, fiber.StatusInternalServerError, "internal_error")
	}
	return c.JSON(page)
}

// Get handles GET /api/resources/:id
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusNotFound, "resource.not_found")
	}
	r, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(r)
}

// Download handles POST /api/resources/:id/download
func (h *Handler) Download(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusNotFound, "resource.not_found")
	}
	url, downloads, err := h.service.Download(c.UserContext(), id, identity.OptionalUserID(c))
	if err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(fiber.Map{"url": url, "downloads": downloads})
}

// Create handles POST /api/admin/resources
func (h *Handler) Create(c *fiber.Ctx) error {
	var r Resource
	if err := c.BodyParser(&r); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid_body")
	}
	if err := h.service.Create(c.UserContext(), &r, identity.OptionalUserID(c)); err != nil {
		if errors.Is(err, ErrInvalidResource) {
			return fail(c, fiber.StatusBadRequest, "resource.invalid")
		}
		slog.Error("resource create failed", "error", err)
		return fail(c, fiber.StatusInternalServerError, "internal_error")
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

// Delete handles DELETE /api/admin/resources/:id
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusNotFound, "resource.not_found")
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.storeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) storeError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrResourceNotFound) {
		return fail(c, fiber.StatusNotFound, "resource.not_found")
	}
	slog.Error("resource request failed", "path", c.Path(), "error", err)
	return fail(c, fiber.StatusInternalServerError, "internal_error")
}

func fail(c *fiber.Ctx, status int, key string) error {
	return c.Status(status).JSON(dto.ErrorResponse{
		Error:   true,
		Message: i18n.T(i18n.FromRequest(c), key),
	})
}
