package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Refresher is satisfied by usecase.ContentCache.
type Refresher interface {
	Refresh(ctx context.Context) string
}

// ContentWarmer scrapes the website once at start and then on every tick, so
// chat requests rarely wait on a scrape.
type ContentWarmer struct {
	interval time.Duration
	cache    Refresher
	log      *zerolog.Logger
}

func NewContentWarmer(interval time.Duration, cache Refresher, logger *zerolog.Logger) *ContentWarmer {
	wl := logger.With().Str("component", "ContentWarmer").Logger()
	return &ContentWarmer{
		interval: interval,
		cache:    cache,
		log:      &wl,
	}
}

// Run blocks until ctx is done. A non-positive interval only warms once.
func (w *ContentWarmer) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting content warmer")
	w.warm(ctx)
	if w.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping content warmer")
			return ctx.Err()
		case <-ticker.C:
			w.warm(ctx)
		}
	}
}

func (w *ContentWarmer) warm(ctx context.Context) {
	start := time.Now()
	content := w.cache.Refresh(ctx)
	if content == "" {
		w.log.Warn().Dur("took", time.Since(start)).Msg("no website content available yet")
		return
	}
	w.log.Debug().Int("chars", len(content)).Dur("took", time.Since(start)).Msg("website content warmed")
}
