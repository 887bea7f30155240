package achievements

import (
	"github.com/btechub/portal-backend/internal/apps"
	"github.com/btechub/portal-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plugin implements apps.Plugin for achievements, XP and the leaderboard.
type Plugin struct {
	service *Service
}

// New wraps a service built in main so other plugins can share its Recorder.
func New(service *Service) *Plugin {
	return &Plugin{service: service}
}

func (p *Plugin) ID() string { return "achievements" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{&UserAchievement{}}
}

func (p *Plugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewHandler(p.service)
	auth := middleware.JWTProtected(deps.Config)

	router.Get("/achievements/catalog", handler.Catalog)
	router.Get("/leaderboard", handler.Leaderboard)

	router.Get("/achievements", auth, handler.Summary)
	router.Post("/achievements/xp", auth, handler.AddXP)
	router.Post("/achievements/sync", auth, handler.Sync)
	router.Post("/achievements/:id/progress", auth, handler.Progress)
	router.Post("/achievements/:id/unlock", auth, handler.Unlock)
}

func (p *Plugin) DeleteUserData(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Where("user_id = ?", userID).Delete(&UserAchievement{}).Error
}
