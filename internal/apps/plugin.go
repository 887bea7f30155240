package apps

import (
	"context"

	"github.com/btechub/portal-backend/internal/config"
	"github.com/btechub/portal-backend/internal/realtime"
	"github.com/btechub/portal-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Progress lets features record achievement progress without importing the
// achievements package. Implementations must be safe for concurrent use.
type Progress interface {
	Increment(ctx context.Context, userID uuid.UUID, achievementID string, amount int) error
	Unlock(ctx context.Context, userID uuid.UUID, achievementID string) error
}

// Deps is the shared infrastructure handed to every plugin.
type Deps struct {
	DB         *gorm.DB
	Config     *config.Config
	Broker     realtime.Broker
	Moderation *services.ModerationService
	Settings   *services.SettingsService
	Mailer     services.Mailer
	Progress   Progress
}

// Plugin defines the interface every portal feature must implement.
type Plugin interface {
	// ID returns the unique feature identifier.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts routes on the /api group. No auth is applied;
	// plugins attach middleware.JWTProtected per route.
	RegisterRoutes(router fiber.Router, deps *Deps)
}

// AdminPlugin extends Plugin with admin-specific route registration.
type AdminPlugin interface {
	Plugin

	// RegisterAdminRoutes mounts admin-only routes on the given Fiber group.
	// The group has Admin middleware applied.
	RegisterAdminRoutes(router fiber.Router, deps *Deps)
}

// UserDataOwner is implemented by plugins that store per-user rows which
// must go when the account is deleted.
type UserDataOwner interface {
	DeleteUserData(tx *gorm.DB, userID uuid.UUID) error
}

// Worker is implemented by plugins with background maintenance loops.
// Start must return promptly; the loop stops when done is closed.
type Worker interface {
	Start(deps *Deps, done <-chan struct{})
}

// NoProgress discards progress updates.
type NoProgress struct{}

func (NoProgress) Increment(context.Context, uuid.UUID, string, int) error { return nil }
func (NoProgress) Unlock(context.Context, uuid.UUID, string) error        { return nil }
