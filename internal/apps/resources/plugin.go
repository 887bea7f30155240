package resources

import (
	"context"
	"sync"

	"github.com/btechub/portal-backend/internal/apps"
	"github.com/btechub/portal-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plugin implements apps.Plugin for the study resource library.
type Plugin struct {
	once    sync.Once
	handler *Handler
}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) ID() string { return "resources" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{&Resource{}}
}

func (p *Plugin) setup(deps *apps.Deps) {
	p.once.Do(func() {
		p.handler = NewHandler(NewService(NewGormStore(deps.DB), deps.Progress))
	})
}

func (p *Plugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	p.setup(deps)
	mountRoutes(router, p.handler, middleware.OptionalJWT(deps.Config))
}

func (p *Plugin) RegisterAdminRoutes(router fiber.Router, deps *apps.Deps) {
	p.setup(deps)
	mountAdminRoutes(router, p.handler)
}

func mountRoutes(router fiber.Router, h *Handler, optional fiber.Handler) {
	router.Get("/resources", h.List)
	router.Get("/resources/:id", h.Get)
	router.Post("/resources/:id/download", optional, h.Download)
}

func mountAdminRoutes(router fiber.Router, h *Handler) {
	router.Post("/resources", h.Create)
	router.Delete("/resources/:id", h.Delete)
}

func (p *Plugin) DeleteUserData(tx *gorm.DB, userID uuid.UUID) error {
	return NewGormStore(tx).ForgetUploader(context.Background(), userID)
}
