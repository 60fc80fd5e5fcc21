package notify

import (
	"context"
	"time"

	"smartrunai-edge/internal/domain/ports/adapter"
	"smartrunai-edge/internal/infra/worker"
)

const asyncAlertTimeout = 15 * time.Second

// Async hands alerts to a worker pool so the caller never waits on the
// channel. The request context's values are kept but not its cancellation.
type Async struct {
	inner adapter.LeadNotifier
	pool  *worker.Pool
}

var _ adapter.LeadNotifier = (*Async)(nil)

func NewAsync(inner adapter.LeadNotifier, pool *worker.Pool) *Async {
	return &Async{inner: inner, pool: pool}
}

// Notify returns worker.ErrQueueFull when the pool is saturated.
func (a *Async) Notify(ctx context.Context, text string) error {
	detached := context.WithoutCancel(ctx)
	return a.pool.Submit(func(context.Context) error {
		tctx, cancel := context.WithTimeout(detached, asyncAlertTimeout)
		defer cancel()
		return a.inner.Notify(tctx, text)
	})
}
