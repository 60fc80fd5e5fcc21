package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"smartrunai-edge/internal/domain/ports/repository"
	"smartrunai-edge/internal/infra/metrics"
)

// Clock returns the current time. Tests inject a fixed or stepping clock.
type Clock func() time.Time

// ContentCache holds the last non-empty scrape. A refresh that yields nothing
// never replaces what is already there.
type ContentCache struct {
	source     repository.ContentSource
	ttl        time.Duration
	retryAfter time.Duration
	now        Clock
	log        *zerolog.Logger

	mu          sync.RWMutex
	content     string
	fetchedAt   time.Time
	lastFailure time.Time

	refreshes singleflight.Group
}

func NewContentCache(source repository.ContentSource, ttl, retryAfter time.Duration, now Clock, log *zerolog.Logger) *ContentCache {
	if now == nil {
		now = time.Now
	}
	return &ContentCache{
		source:     source,
		ttl:        ttl,
		retryAfter: retryAfter,
		now:        now,
		log:        log,
	}
}

// GetOrRefresh returns the cached content while it is younger than the TTL and
// otherwise tries one refresh. Concurrent callers share a single scrape.
func (c *ContentCache) GetOrRefresh(ctx context.Context) string {
	now := c.now()

	c.mu.RLock()
	content, fetchedAt, lastFailure := c.content, c.fetchedAt, c.lastFailure
	c.mu.RUnlock()

	if !fetchedAt.IsZero() && now.Sub(fetchedAt) < c.ttl {
		metrics.IncContentCache("hit")
		return content
	}
	if !lastFailure.IsZero() && now.Sub(lastFailure) < c.retryAfter {
		metrics.IncContentCache("backoff")
		return content
	}

	metrics.IncContentCache("miss")
	v, _, _ := c.refreshes.Do("refresh", func() (any, error) {
		// The scrape outlives the request that triggered it.
		return c.refresh(context.WithoutCancel(ctx)), nil
	})
	return v.(string)
}

// Refresh scrapes now regardless of age. An empty result still keeps the
// previous content.
func (c *ContentCache) Refresh(ctx context.Context) string {
	v, _, _ := c.refreshes.Do("refresh", func() (any, error) {
		return c.refresh(ctx), nil
	})
	return v.(string)
}

func (c *ContentCache) refresh(ctx context.Context) string {
	fresh := c.source.Scrape(ctx)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if fresh == "" {
		c.lastFailure = now
		metrics.IncContentCache("stale_kept")
		c.log.Warn().
			Bool("has_previous", c.content != "").
			Time("previous_fetched_at", c.fetchedAt).
			Msg("content refresh returned nothing; keeping previous content")
		return c.content
	}

	c.content = fresh
	c.fetchedAt = now
	c.lastFailure = time.Time{}
	metrics.SetContentSnapshot(len(fresh), now)
	c.log.Debug().Int("chars", len(fresh)).Msg("content cache refreshed")
	return fresh
}

// Snapshot returns the stored content and when it was fetched.
func (c *ContentCache) Snapshot() (string, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.content, c.fetchedAt
}
