package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"smartrunai-edge/internal/domain/ports/adapter"
)

// Multi fans an alert out to every notifier and joins their errors.
type Multi []adapter.LeadNotifier

var _ adapter.LeadNotifier = Multi(nil)

func (m Multi) Notify(ctx context.Context, text string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Noop logs alerts instead of sending them. Used when no channel is configured.
type Noop struct {
	Log *zerolog.Logger
}

var _ adapter.LeadNotifier = (*Noop)(nil)

func (n *Noop) Notify(ctx context.Context, text string) error {
	if n.Log != nil {
		n.Log.Debug().Int("len", len(text)).Msg("lead alert dropped: no notifier configured")
	}
	return ctx.Err()
}

