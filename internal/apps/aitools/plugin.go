package aitools

import (
	"github.com/btechub/portal-backend/internal/apps"
	"github.com/btechub/portal-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// Plugin implements apps.Plugin for the AI study tools: the LLM relay, the
// AI-text detector and image generation.
type Plugin struct{}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) ID() string { return "aitools" }

func (p *Plugin) Models() []interface{} { return nil }

func (p *Plugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewHandler(
		NewLLMClient(deps.Config),
		NewDetector(deps.Config),
		NewImageGenerator(deps.Config),
		deps.Progress,
		deps.Settings,
	)
	mount(router, handler, middleware.OptionalJWT(deps.Config))
}

func mount(router fiber.Router, h *Handler, optional fiber.Handler) {
	router.Post("/chat", h.Enabled, optional, h.Chat)
	router.Post("/ai-chat", h.Enabled, optional, h.AIChat)
	router.Post("/chat-interview", h.Enabled, optional, h.Interview)
	router.Post("/detect-ai", h.Enabled, optional, h.Detect)
	router.Post("/generate-image", h.Enabled, optional, h.GenerateImage)
}
