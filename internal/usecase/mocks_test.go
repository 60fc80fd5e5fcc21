package usecase_test

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"smartrunai-edge/internal/domain/model"
	"smartrunai-edge/internal/domain/ports/adapter"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ---- Rate limit store ----

type MockRateLimitStore struct {
	CheckFunc func(ctx context.Context, id string) (bool, error)
	mu        sync.Mutex
	seen      []string
}

func (m *MockRateLimitStore) CheckAndIncrement(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	m.seen = append(m.seen, id)
	m.mu.Unlock()
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, id)
	}
	return true, nil
}

// ---- Content source ----

type MockContentSource struct {
	ScrapeFunc func(ctx context.Context) string
	calls      atomic.Int32
}

func (m *MockContentSource) Scrape(ctx context.Context) string {
	m.calls.Add(1)
	if m.ScrapeFunc != nil {
		return m.ScrapeFunc(ctx)
	}
	return ""
}

// ---- Upstream ----

type MockUpstream struct {
	StreamFunc func(ctx context.Context, systemPrompt string, history []model.ChatMessage) (io.ReadCloser, error)
	calls      atomic.Int32
	lastPrompt string
}

func (m *MockUpstream) Name() string { return "mock" }

func (m *MockUpstream) Stream(ctx context.Context, systemPrompt string, history []model.ChatMessage) (io.ReadCloser, error) {
	m.calls.Add(1)
	m.lastPrompt = systemPrompt
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, systemPrompt, history)
	}
	return io.NopCloser(strings.NewReader("data: [DONE]\n\n")), nil
}

// ---- Notifiers ----

type MockMailer struct {
	SendFunc func(ctx context.Context, e adapter.Email) (map[string]any, error)
	sent     []adapter.Email
}

func (m *MockMailer) Send(ctx context.Context, e adapter.Email) (map[string]any, error) {
	m.sent = append(m.sent, e)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, e)
	}
	return map[string]any{"id": "email-1"}, nil
}

type MockLeadNotifier struct {
	NotifyFunc func(ctx context.Context, text string) error
	texts      []string
}

func (m *MockLeadNotifier) Notify(ctx context.Context, text string) error {
	m.texts = append(m.texts, text)
	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, text)
	}
	return nil
}

// ---- Clock ----

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock { return &stepClock{now: time.Unix(1_700_000_000, 0)} }

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
