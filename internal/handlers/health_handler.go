package handlers

import (
	"context"
	"time"

	"github.com/btechub/portal-backend/internal/database"
	"github.com/btechub/portal-backend/internal/dto"
	"github.com/btechub/portal-backend/internal/realtime"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	broker  realtime.Broker
	plugins int
	dbPing  func() error
}

func NewHealthHandler(broker realtime.Broker, plugins int) *HealthHandler {
	return &HealthHandler{broker: broker, plugins: plugins, dbPing: database.Ping}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"

	dbStatus := "ok"
	if err := h.dbPing(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
		status = "degraded"
	}

	brokerName, rtStatus := "none", "unavailable"
	if h.broker != nil {
		brokerName = h.broker.Name()
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.broker.Ping(ctx); err != nil {
			rtStatus = "unhealthy: " + err.Error()
			status = "degraded"
		} else {
			rtStatus = "ok"
		}
	}

	return c.JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Broker:    brokerName,
		Realtime:  rtStatus,
		Plugins:   h.plugins,
	})
}
