package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/callcleaner/backend/internal/models"
	"gorm.io/gorm"
)

// staleTokenGrace is how long expired or revoked refresh tokens are kept around.
const staleTokenGrace = 7 * 24 * time.Hour

type StaleTokenPurger interface {
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

// StartCleanup runs a daily goroutine that prunes old system logs and dead
// refresh tokens until done is closed.
func StartCleanup(db *gorm.DB, tokens StaleTokenPurger, retentionDays int, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				Sweep(context.Background(), db, tokens, retentionDays, time.Now())
			case <-done:
				return
			}
		}
	}()
}

// Sweep performs one cleanup pass relative to now.
func Sweep(ctx context.Context, db *gorm.DB, tokens StaleTokenPurger, retentionDays int, now time.Time) {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	cutoff := now.UTC().AddDate(0, 0, -retentionDays)
	result := db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "action", "cleanup", "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}

	if tokens == nil {
		return
	}
	n, err := tokens.DeleteStale(ctx, now.Add(-staleTokenGrace))
	if err != nil {
		slog.Error("refresh token cleanup failed", "action", "cleanup", "error", err)
		return
	}
	if n > 0 {
		slog.Info("refresh token cleanup completed", "deleted", n)
	}
}
