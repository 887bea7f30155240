package verification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/btechub/portal-backend/internal/apps"
	"github.com/btechub/portal-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const purgeInterval = time.Hour

// Plugin implements apps.Plugin for email verification codes.
type Plugin struct {
	once    sync.Once
	service *Service
}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) ID() string { return "verification" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{&OTPCode{}}
}

func (p *Plugin) setup(deps *apps.Deps) *Service {
	p.once.Do(func() {
		p.service = NewService(NewGormStore(deps.DB), NewGormUserStore(deps.DB), deps.Mailer, deps.Progress)
	})
	return p.service
}

func (p *Plugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewHandler(p.setup(deps))
	optional := middleware.OptionalJWT(deps.Config)

	router.Post("/send-otp", optional, handler.Send)
	router.Post("/verify-otp", optional, handler.Verify)
}

// Start purges expired codes hourly until done is closed.
func (p *Plugin) Start(deps *apps.Deps, done <-chan struct{}) {
	svc := p.setup(deps)
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := svc.PurgeExpired(context.Background())
				if err != nil {
					slog.Error("otp purge failed", "error", err)
					continue
				}
				if n > 0 {
					slog.Info("expired otp codes purged", "count", n)
				}
			case <-done:
				return
			}
		}
	}()
}

func (p *Plugin) DeleteUserData(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Where("user_id = ?", userID).Delete(&OTPCode{}).Error
}
