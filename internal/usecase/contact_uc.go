package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"smartrunai-edge/internal/domain"
	"smartrunai-edge/internal/domain/model"
	"smartrunai-edge/internal/domain/ports/adapter"
	"smartrunai-edge/internal/infra/logging"
	"smartrunai-edge/internal/infra/metrics"
)

var _ ContactUseCase = (*contactUC)(nil)

type ContactUseCase interface {
	Submit(ctx context.Context, sub *model.ContactSubmission) (map[string]any, error)
}

type contactUC struct {
	mailer adapter.Mailer
	alerts adapter.LeadNotifier
	from   string
	to     []string
	dev    bool
	log    *zerolog.Logger
}

// NewContactUseCase wires the mail relay. alerts may be nil.
func NewContactUseCase(mailer adapter.Mailer, alerts adapter.LeadNotifier, from string, to []string, dev bool, log *zerolog.Logger) *contactUC {
	return &contactUC{mailer: mailer, alerts: alerts, from: from, to: to, dev: dev, log: log}
}

// Submit emails the submission to the team with reply-to set to the visitor,
// then posts a best-effort lead alert. The provider's response is returned.
func (c *contactUC) Submit(ctx context.Context, sub *model.ContactSubmission) (map[string]any, error) {
	l := logging.With(ctx, c.log)

	if err := sub.Validate(); err != nil {
		metrics.IncContactSubmission(string(sub.FormType), "invalid")
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	html, err := contactHTML(sub)
	if err != nil {
		return nil, fmt.Errorf("render contact email: %w", err)
	}

	resp, err := c.mailer.Send(ctx, adapter.Email{
		From:    c.from,
		To:      c.to,
		ReplyTo: sub.Email,
		Subject: contactSubject(sub),
		HTML:    html,
	})
	if err != nil {
		metrics.IncContactSubmission(string(sub.FormType), "failed")
		l.Error().Err(err).Str("form_type", string(sub.FormType)).Msg("contact email failed")
		return nil, err
	}
	metrics.IncContactSubmission(string(sub.FormType), "sent")
	l.Info().
		Str("form_type", string(sub.FormType)).
		Str("email", logging.Redact(sub.Email, c.dev)).
		Msg("contact email sent")

	if c.alerts != nil {
		if err := c.alerts.Notify(ctx, leadAlert(sub)); err != nil {
			l.Warn().Err(err).Msg("lead alert failed")
		}
	}
	return resp, nil
}
