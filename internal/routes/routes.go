package routes

import (
	"time"

	"github.com/btechub/portal-backend/internal/apps"
	"github.com/btechub/portal-backend/internal/config"
	"github.com/btechub/portal-backend/internal/handlers"
	"github.com/btechub/portal-backend/internal/middleware"
	"github.com/btechub/portal-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Health     *handlers.HealthHandler
	Moderation *handlers.ModerationHandler
	Legal      *handlers.LegalHandler
	Settings   *handlers.SettingsHandler
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	h Handlers,
	plugins []apps.Plugin,
	deps *apps.Deps,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Maintenance mode keeps health, settings, sign-in and admin reachable
	api.Use(middleware.Maintenance(deps.Settings, services.SettingMaintenanceMode,
		"/api/health", "/api/settings", "/api/auth", "/api/admin"))

	api.Get("/health", h.Health.Check)
	api.Get("/settings", h.Settings.GetSettings)

	api.Get("/legal/privacy", h.Legal.PrivacyPolicy)
	api.Get("/legal/terms", h.Legal.TermsOfService)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)

	protected := middleware.JWTProtected(cfg)
	api.Post("/auth/logout", protected, h.Auth.Logout)
	api.Delete("/auth/account", protected, h.Auth.DeleteAccount)
	api.Get("/me", protected, h.Auth.Me)
	api.Put("/me", protected, h.Auth.UpdateMe)

	api.Post("/reports", protected, h.Moderation.CreateReport)

	// Admin: X-Admin-Token works without a JWT, so the token is optional here
	admin := api.Group("/admin", middleware.OptionalJWT(cfg), middleware.AdminRequired(middleware.GormRoleLookup(db), cfg))
	admin.Get("/reports", h.Moderation.ListReports)
	admin.Put("/reports/:id", h.Moderation.ActionReport)
	admin.Put("/settings/:key", h.Settings.SetSetting)
	admin.Delete("/settings/:key", h.Settings.DeleteSetting)

	// Plugins attach their own auth per route
	for _, p := range plugins {
		p.RegisterRoutes(api, deps)
		if ap, ok := p.(apps.AdminPlugin); ok {
			ap.RegisterAdminRoutes(admin, deps)
		}
	}
}
