package ai

import (
	"context"
	"io"
	"sync"

	"smartrunai-edge/internal/domain/model"
	"smartrunai-edge/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.ChatUpstream = (*limitedUpstream)(nil)

// limitedUpstream caps in-flight streams. A slot is held from the call until
// the returned body is closed.
type limitedUpstream struct {
	inner adapter.ChatUpstream
	sem   chan struct{}
}

func NewLimitedUpstream(inner adapter.ChatUpstream, maxConcurrent int) adapter.ChatUpstream {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedUpstream{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedUpstream) Name() string { return l.inner.Name() }

func (l *limitedUpstream) Stream(ctx context.Context, systemPrompt string, history []model.ChatMessage) (io.ReadCloser, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	body, err := l.inner.Stream(ctx, systemPrompt, history)
	if err != nil {
		<-l.sem
		return nil, err
	}
	return &releasingBody{ReadCloser: body, release: func() { <-l.sem }}, nil
}

type releasingBody struct {
	io.ReadCloser
	once    sync.Once
	release func()
}

func (b *releasingBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.release)
	return err
}
