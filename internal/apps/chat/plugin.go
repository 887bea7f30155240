package chat

import (
	"context"
	"sync"

	"github.com/btechub/portal-backend/internal/apps"
	"github.com/btechub/portal-backend/internal/config"
	"github.com/btechub/portal-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plugin implements apps.Plugin for channel chat, timeouts and the live
// streams.
type Plugin struct {
	channels *ChannelRegistry

	once    sync.Once
	handler *Handler
	limiter *middleware.UserRateLimiter
}

func New(channels *ChannelRegistry) *Plugin {
	return &Plugin{channels: channels}
}

func (p *Plugin) ID() string { return "chat" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{&Message{}}
}

func (p *Plugin) setup(deps *apps.Deps) {
	p.once.Do(func() {
		svc := NewService(ServiceOptions{
			Channels: p.channels,
			Messages: NewGormMessageStore(deps.DB),
			Profiles: NewGormProfileStore(deps.DB),
			Checker:  deps.Moderation,
			Settings: deps.Settings,
			Reporter: deps.Moderation,
			Broker:   deps.Broker,
			Progress: deps.Progress,
		})
		p.handler = NewHandler(svc)
		p.limiter = middleware.NewUserRateLimiter(deps.Config.ChatRatePerSec)
	})
}

func (p *Plugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	p.setup(deps)
	mountRoutes(router, p.handler, p.limiter, deps.Config)
}

func (p *Plugin) RegisterAdminRoutes(router fiber.Router, deps *apps.Deps) {
	p.setup(deps)
	mountAdminRoutes(router, p.handler)
}

func mountRoutes(router fiber.Router, h *Handler, limiter *middleware.UserRateLimiter, cfg *config.Config) {
	auth := middleware.JWTProtected(cfg)

	router.Get("/channels", h.ListChannels)
	router.Get("/channels/:id/messages", h.Messages)
	router.Post("/channels/:id/messages", middleware.OptionalJWT(cfg), limiter.Handler(), h.Send)
	router.Post("/channels/:id/messages/:messageId/report", auth, h.Report)
	router.Get("/me/timeout", auth, h.Timeout)

	router.Get("/ws/channels/:id", auth, h.RequireUpgrade, h.ChannelStream)
	router.Get("/ws/status", auth, h.RequireUpgrade, h.StatusStream)
}

func mountAdminRoutes(router fiber.Router, h *Handler) {
	router.Delete("/chat/messages", h.ClearMessages)
	router.Delete("/users/:id/timeout", h.ResetTimeout)
	router.Delete("/timeouts", h.ResetAllTimeouts)
}

// Start runs the send limiter's idle sweep.
func (p *Plugin) Start(deps *apps.Deps, done <-chan struct{}) {
	p.setup(deps)
	p.limiter.StartSweeper(done)
}

func (p *Plugin) DeleteUserData(tx *gorm.DB, userID uuid.UUID) error {
	return NewGormMessageStore(tx).DeleteByAuthor(context.Background(), userID)
}
