package collections

import (
	"context"
	"log/slog"
	"time"
)

// RefreshWorker periodically recomputes by_tags collection counts so they
// follow tag assignments made after the collection was saved.
type RefreshWorker struct {
	service  CollectionService
	interval time.Duration
}

// NewRefreshWorker creates a worker. A non-positive interval disables it.
func NewRefreshWorker(service CollectionService, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{service: service, interval: interval}
}

// Run refreshes once, then on every tick until ctx is canceled. It blocks;
// start it in its own goroutine.
func (w *RefreshWorker) Run(ctx context.Context) {
	if w.interval <= 0 {
		slog.Info("collection refresh worker disabled")
		return
	}

	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *RefreshWorker) refresh(ctx context.Context) {
	start := time.Now()
	stats, err := w.service.RefreshCounts(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("collection refresh failed", slog.Any("error", err))
		}
		return
	}
	slog.Debug("collection counts refreshed",
		slog.Int("evaluated", stats.Evaluated),
		slog.Int("changed", stats.Changed),
		slog.Int("failed", stats.Failed),
		slog.Duration("took", time.Since(start)),
	)
}
