package middleware

import (
	"sync"
	"time"

	"github.com/btechub/portal-backend/internal/dto"
	"github.com/btechub/portal-backend/internal/i18n"
	"github.com/btechub/portal-backend/internal/identity"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter is a token bucket per authenticated user (falls back to IP).
type UserRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	idle     time.Duration
}

func NewUserRateLimiter(perSecond int) *UserRateLimiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &UserRateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(perSecond),
		burst:    perSecond * 2,
		idle:     10 * time.Minute,
	}
}

func (rl *UserRateLimiter) Allow(key string) bool {
	return rl.allowAt(key, time.Now())
}

func (rl *UserRateLimiter) allowAt(key string, now time.Time) bool {
	rl.mu.Lock()
	entry, ok := rl.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	rl.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Sweep drops limiters idle longer than the idle window.
func (rl *UserRateLimiter) Sweep(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	removed := 0
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > rl.idle {
			delete(rl.limiters, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every few minutes until done is closed.
func (rl *UserRateLimiter) StartSweeper(done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				rl.Sweep(now)
			case <-done:
				return
			}
		}
	}()
}

func (rl *UserRateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if id, err := identity.GetUserID(c); err == nil {
			key = id.String()
		}
		if !rl.Allow(key) {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: i18n.T(i18n.FromRequest(c), "rate_limited"),
			})
		}
		return c.Next()
	}
}
