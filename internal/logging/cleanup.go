package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/havenwelfare/haven-backend/internal/repository"
)

// StartCleanup runs a daily goroutine that deletes system_logs older than
// retention.
func StartCleanup(logs repository.SystemLogRepository, retention time.Duration, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				PurgeOnce(logs, retention, time.Now().UTC())
			case <-done:
				return
			}
		}
	}()
}

// PurgeOnce deletes rows older than now-retention.
func PurgeOnce(logs repository.SystemLogRepository, retention time.Duration, now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := logs.DeleteBefore(ctx, now.Add(-retention))
	if err != nil {
		slog.Error("log cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("log cleanup completed", "deleted", deleted)
	}
}
