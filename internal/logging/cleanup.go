package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/edmorua/admin-user-back/internal/store"
)

// StartCleanup runs a daily goroutine that deletes stored logs older than
// retention. It stops when done is closed.
func StartCleanup(sink store.LogSink, retention time.Duration, done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				PurgeOnce(sink, retention)
			case <-done:
				return
			}
		}
	}()
}

// PurgeOnce deletes logs older than retention.
func PurgeOnce(sink store.LogSink, retention time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := sink.PurgeLogs(ctx, time.Now().Add(-retention))
	if err != nil {
		slog.Error("log cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("log cleanup completed", "deleted", deleted)
	}
}
