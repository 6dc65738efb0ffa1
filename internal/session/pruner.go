package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/iskra/core/logger"
)

// Pruner periodically evicts inactive sessions.
type Pruner struct {
	Store    *Store
	Interval time.Duration
	MaxAge   time.Duration
	// Observe receives the number of removed and remaining sessions after each sweep.
	Observe func(removed, remaining int)
}

// Run sweeps until ctx is cancelled.
func (p Pruner) Run(ctx context.Context) {
	if p.Store == nil || p.Interval <= 0 || p.MaxAge <= 0 {
		return
	}
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Sweep(ctx)
		}
	}
}

// Sweep runs a single pruning pass.
func (p Pruner) Sweep(ctx context.Context) int {
	start := time.Now()
	removed := p.Store.PruneInactive(p.MaxAge)
	remaining := p.Store.Len()
	if p.Observe != nil {
		p.Observe(removed, remaining)
	}
	level := slog.LevelDebug
	if removed > 0 {
		level = slog.LevelInfo
	}
	logger.Event(ctx, "session", level, "session.prune",
		slog.String("status", "ok"),
		slog.Int("count", removed),
		slog.Int("remaining", remaining),
		slog.Duration("max_age", p.MaxAge),
		slog.Duration("duration", logger.Took(start)),
	)
	return removed
}
