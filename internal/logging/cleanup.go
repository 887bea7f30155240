package logging

import (
	"log/slog"
	"time"

	"github.com/btechub/portal-backend/internal/models"
	"gorm.io/gorm"
)

const logRetention = 30 * 24 * time.Hour

// StartCleanup runs a daily goroutine that deletes system_logs older than 30 days.
func StartCleanup(db *gorm.DB, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				purgeOldLogs(db, time.Now())
			case <-done:
				return
			}
		}
	}()
}

func purgeOldLogs(db *gorm.DB, now time.Time) {
	result := db.Where("timestamp < ?", now.Add(-logRetention)).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("system log purge failed", "error", result.Error, "action", "log_cleanup")
		return
	}
	if result.RowsAffected > 0 {
		slog.Info("system log purge completed", "deleted", result.RowsAffected)
	}
}
