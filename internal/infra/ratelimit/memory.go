// Package ratelimit holds the in-process fixed-window store used when no shared
// backend is configured.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"smartrunai-edge/internal/domain/ports/repository"
	"smartrunai-edge/internal/infra/metrics"
)

var _ repository.RateLimitStore = (*MemoryStore)(nil)

type record struct {
	count         int
	windowResetAt time.Time
}

type Option func(*MemoryStore)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) { s.now = now }
}

// MemoryStore is a per-identifier fixed window. Records are created lazily and
// overwritten when their window has passed.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]record
	max     int
	window  time.Duration
	now     func() time.Time
}

func NewMemoryStore(max int, window time.Duration, opts ...Option) *MemoryStore {
	if max < 1 {
		max = 1
	}
	s := &MemoryStore{
		records: make(map[string]record),
		max:     max,
		window:  window,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckAndIncrement admits the request and counts it, or denies it without
// counting.
func (s *MemoryStore) CheckAndIncrement(_ context.Context, id string) (bool, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || !now.Before(rec.windowResetAt) {
		s.records[id] = record{count: 1, windowResetAt: now.Add(s.window)}
		return true, nil
	}
	if rec.count >= s.max {
		metrics.IncRateLimitRejection("memory")
		return false, nil
	}
	rec.count++
	s.records[id] = rec
	return true, nil
}

// Sweep drops records whose window has passed and returns how many it removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, rec := range s.records {
		if !now.Before(rec.windowResetAt) {
			delete(s.records, id)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
