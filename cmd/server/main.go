package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/btechub/portal-backend/internal/apps"
	"github.com/btechub/portal-backend/internal/apps/achievements"
	"github.com/btechub/portal-backend/internal/apps/aitools"
	"github.com/btechub/portal-backend/internal/apps/chat"
	"github.com/btechub/portal-backend/internal/apps/resources"
	"github.com/btechub/portal-backend/internal/apps/verification"
	"github.com/btechub/portal-backend/internal/config"
	"github.com/btechub/portal-backend/internal/database"
	"github.com/btechub/portal-backend/internal/handlers"
	"github.com/btechub/portal-backend/internal/i18n"
	"github.com/btechub/portal-backend/internal/logging"
	"github.com/btechub/portal-backend/internal/middleware"
	"github.com/btechub/portal-backend/internal/realtime"
	"github.com/btechub/portal-backend/internal/routes"
	"github.com/btechub/portal-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	channels, err := chat.LoadChannels(cfg.ChannelsConfigPath)
	if err != nil {
		slog.Error("failed to load chat channels", "path", cfg.ChannelsConfigPath, "error", err)
		os.Exit(1)
	}
	slog.Info("chat channels loaded", "channels", len(channels.All()))

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	// Migrate shared models
	if err := database.MigrateShared(); err != nil {
		slog.Error("shared migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	logging.Attach(pgLogHandler)

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	broker := connectBroker(cfg)

	// Services
	settingsService := services.NewSettingsService(database.DB)
	if err := settingsService.SeedDefaults(); err != nil {
		slog.Error("settings seed failed", "error", err)
	}
	authService := services.NewAuthService(database.DB, cfg)
	moderationService := services.NewModerationService(database.DB)
	mailer := services.NewMailer(cfg)
	if !mailer.Live() {
		slog.Warn("no mail transport configured, verification codes are only logged")
	}

	achievementService := achievements.NewService(achievements.NewGormStore(database.DB), broker)

	deps := &apps.Deps{
		DB:         database.DB,
		Config:     cfg,
		Broker:     broker,
		Moderation: moderationService,
		Settings:   settingsService,
		Mailer:     mailer,
		Progress:   achievements.NewRecorder(achievementService),
	}

	plugins := []apps.Plugin{
		achievements.New(achievementService),
		chat.New(channels),
		verification.New(),
		aitools.New(),
		resources.New(),
	}

	// Migrate plugin models
	for _, p := range plugins {
		if models := p.Models(); len(models) > 0 {
			if err := database.MigrateModels(models); err != nil {
				slog.Error("plugin migration failed", "plugin", p.ID(), "error", err)
				os.Exit(1)
			}
			slog.Info("plugin migrated", "plugin", p.ID(), "models", len(models))
		}
		if owner, ok := p.(apps.UserDataOwner); ok {
			authService.OnDelete(owner.DeleteUserData)
		}
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Env,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app. Multipart AI chat carries up to four 5 MB images.
	app := fiber.New(fiber.Config{
		BodyLimit:    25 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, database.DB, routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Health:     handlers.NewHealthHandler(broker, len(plugins)),
		Moderation: handlers.NewModerationHandler(moderationService),
		Legal:      handlers.NewLegalHandler(),
		Settings:   handlers.NewSettingsHandler(settingsService),
	}, plugins, deps)

	// Background workers
	workersDone := make(chan struct{})
	for _, p := range plugins {
		if w, ok := p.(apps.Worker); ok {
			w.Start(deps, workersDone)
		}
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "plugins", len(plugins), "broker", broker.Name())
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(workersDone)
	close(cleanupDone)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := broker.Close(); err != nil {
		slog.Error("broker close error", "error", err)
	}
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

// connectBroker uses Redis when REDIS_ADDR is set and reachable. A single
// instance works fine on the in-process broker.
func connectBroker(cfg *config.Config) realtime.Broker {
	if cfg.RedisAddr == "" {
		slog.Info("live updates use in-process broker")
		return realtime.NewMemoryBroker()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	broker, err := realtime.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Error("redis unavailable, falling back to in-process broker", "error", err)
		return realtime.NewMemoryBroker()
	}
	slog.Info("live updates use redis", "addr", cfg.RedisAddr)
	return broker
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := i18n.T(i18n.FromRequest(c), "internal_error")
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = i18n.T(i18n.FromRequest(c), "internal_error")
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
