package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/btechub/portal-backend/internal/dto"
	"github.com/btechub/portal-backend/internal/identity"
	"github.com/btechub/portal-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ModerationHandler struct {
	moderationService *services.ModerationService
}

func NewModerationHandler(moderationService *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

func (h *ModerationHandler) CreateReport(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_body")
	}

	report, err := h.moderationService.CreateReport(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateReport):
			return errorJSON(c, fiber.StatusConflict, "report.duplicate")
		case errors.Is(err, services.ErrSelfReport):
			return errorJSON(c, fiber.StatusBadRequest, "report.self")
		case errors.Is(err, services.ErrInvalidReport):
			return errorJSON(c, fiber.StatusBadRequest, "report.invalid")
		}
		slog.Error("report create failed", "user_id", userID.String(), "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_error")
	}

	slog.Info("report created", "report_id", report.ID.String(), "content_type", report.ContentType)
	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	status := c.Query("status", "")
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	if limit > 100 {
		limit = 100
	}

	reports, total, err := h.moderationService.ListReports(status, limit, offset)
	if err != nil {
		slog.Error("report list failed", "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_error")
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *ModerationHandler) ActionReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "report.not_found")
	}

	var req dto.ActionReportRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_body")
	}

	if err := h.moderationService.ActionReport(reportID, &req); err != nil {
		switch {
		case errors.Is(err, services.ErrReportNotFound):
			return errorJSON(c, fiber.StatusNotFound, "report.not_found")
		case errors.Is(err, services.ErrInvalidReport):
			return errorJSON(c, fiber.StatusBadRequest, "report.invalid")
		}
		slog.Error("report action failed", "report_id", reportID.String(), "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_error")
	}

	return messageJSON(c, "report.updated")
}
