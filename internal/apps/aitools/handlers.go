package aitools

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/btechub/portal-backend/internal/apps"
	"github.com/btechub/portal-backend/internal/apps/achievements"
	"github.com/btechub/portal-backend/internal/dto"
	"github.com/btechub/portal-backend/internal/i18n"
	"github.com/btechub/portal-backend/internal/identity"
	"github.com/btechub/portal-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

const (
	maxUploadImages    = 4
	maxUploadImageSize = 5 << 20
)

type Handler struct {
	llm      *LLMClient
	detector *Detector
	images   *ImageGenerator
	progress apps.Progress
	settings *services.SettingsService
}

func NewHandler(llm *LLMClient, detector *Detector, images *ImageGenerator, progress apps.Progress, settings *services.SettingsService) *Handler {
	if progress == nil {
		progress = apps.NoProgress{}
	}
	return &Handler{llm: llm, detector: detector, images: images, progress: progress, settings: settings}
}

type chatRequest struct {
	Message string   `json:"message"`
	History []Turn   `json:"history"`
	Images  []string `json:"images"`
	Role    string   `json:"role"`
}

// Enabled rejects AI requests while the ai_tools_enabled setting is off.
func (h *Handler) Enabled(c *fiber.Ctx) error {
	if h.settings != nil && !h.settings.Bool(services.SettingAIToolsEnabled, true) {
		return fail(c, fiber.StatusForbidden, "feature_off")
	}
	return c.Next()
}

// Chat handles POST /api/chat
func (h *Handler) Chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid_body")
	}
	return h.relay(c, studyAssistantPrompt, req.History, req.Message, req.Images, achievements.AIExplorer)
}

// AIChat handles POST /api/ai-chat (multipart: message, history, images)
func (h *Handler) AIChat(c *fiber.Ctx) error {
	message := c.FormValue("message")

	var history []Turn
	if raw := strings.TrimSpace(c.FormValue("history")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid_body")
		}
	}

	var images []string
	if form, err := c.MultipartForm(); err == nil {
		files := form.File["images"]
		if len(files) > maxUploadImages {
			files = files[:maxUploadImages]
		}
		for _, fh := range files {
			ref, err := dataURL(fh)
			if err != nil {
				slog.Warn("ai-chat image skipped", "filename", fh.Filename, "error", err)
				continue
			}
			images = append(images, ref)
		}
	}

	return h.relay(c, generalAssistantPrompt, history, message, images, achievements.AIExplorer)
}

// Interview handles POST /api/chat-interview
func (h *Handler) Interview(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid_body")
	}
	return h.relay(c, interviewPrompt(strings.TrimSpace(req.Role)), req.History, req.Message, nil, achievements.InterviewReady)
}

func (h *Handler) relay(c *fiber.Ctx, prompt string, history []Turn, message string, images []string, achievement string) error {
	reply, provider, err := h.llm.Chat(c.UserContext(), prompt, history, message, images)
	if err != nil {
		if errors.Is(err, ErrMessageRequired) {
			return fail(c, fiber.StatusBadRequest, "ai.message_required")
		}
		slog.Error("ai chat failed", "path", c.Path(), "error", err)
		return fail(c, fiber.StatusInternalServerError, "ai.failed")
	}
	h.record(c, achievement)
	return c.JSON(fiber.Map{"response": reply, "provider": provider})
}

// Detect handles POST /api/detect-ai
func (h *Handler) Detect(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid_body")
	}

	result, err := h.detector.Detect(c.UserContext(), req.Text)
	if err != nil {
		if errors.Is(err, ErrTextTooShort) {
			return fail(c, fiber.StatusBadRequest, "ai.text_too_short")
		}
		slog.Error("ai detection failed", "error", err)
		return fail(c, fiber.StatusInternalServerError, "internal_error")
	}
	h.record(c, achievements.Detective)
	return c.JSON(result)
}

// GenerateImage handles POST /api/generate-image
func (h *Handler) GenerateImage(c *fiber.Ctx) error {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid_body")
	}

	img, model, err := h.images.Generate(c.UserContext(), req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, ErrPromptRequired):
			return fail(c, fiber.StatusBadRequest, "ai.prompt_required")
		case errors.Is(err, ErrImageAuth):
			slog.Error("image generation rejected", "error", err)
			return fail(c, fiber.StatusInternalServerError, "ai.image_auth")
		}
		slog.Error("image generation failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   true,
			Message: i18n.T(i18n.FromRequest(c), "ai.image_failed") + ": " + err.Error(),
		})
	}

	h.record(c, achievements.Artist)
	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set("X-Generated-By", model)
	return c.Send(img)
}

func (h *Handler) record(c *fiber.Ctx, achievementID string) {
	userID := identity.OptionalUserID(c)
	if userID == nil {
		return
	}
	if err := h.progress.Increment(c.UserContext(), *userID, achievementID, 1); err != nil {
		slog.Error("ai achievement progress failed", "user_id", userID.String(), "achievement", achievementID, "error", err)
	}
}

func dataURL(fh *multipart.FileHeader) (string, error) {
	if fh.Size > maxUploadImageSize {
		return "", fmt.Errorf("image larger than %d bytes", maxUploadImageSize)
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadImageSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxUploadImageSize {
		return "", fmt.Errorf("image larger than %d bytes", maxUploadImageSize)
	}

	mime := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("unsupported content type %q", mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func fail(c *fiber.Ctx, status int, key string) error {
	return c.Status(status).JSON(dto.ErrorResponse{
		Error:   true,
		Message: i18n.T(i18n.FromRequest(c), key),
	})
}
