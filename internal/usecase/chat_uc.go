package usecase

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"smartrunai-edge/internal/domain/ports/adapter"
	"smartrunai-edge/internal/infra/logging"
	"smartrunai-edge/internal/infra/metrics"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

// ChatResult is either a canned answer (Body is nil) or an open upstream stream
// that the caller must copy through and close.
type ChatResult struct {
	Admission *Admission
	Body      io.ReadCloser
	Provider  string
}

type ChatUseCase interface {
	Handle(ctx context.Context, clientID string, body []byte) (*ChatResult, error)
}

type chatUC struct {
	gate     Gatekeeper
	prompts  PromptBuilder
	upstream adapter.ChatUpstream
	log      *zerolog.Logger
}

func NewChatUseCase(gate Gatekeeper, prompts PromptBuilder, upstream adapter.ChatUpstream, log *zerolog.Logger) *chatUC {
	return &chatUC{gate: gate, prompts: prompts, upstream: upstream, log: log}
}

func (c *chatUC) Handle(ctx context.Context, clientID string, body []byte) (*ChatResult, error) {
	l := logging.With(ctx, c.log)
	defer logging.TraceDuration(l, "ChatUseCase.Handle")()

	adm, err := c.gate.Admit(ctx, clientID, body)
	if err != nil {
		return nil, err
	}
	if adm.IsFastPath() {
		metrics.IncChatRequest("fast_path")
		return &ChatResult{Admission: adm}, nil
	}

	prompt := c.prompts.Build(ctx)

	start := time.Now()
	stream, err := c.upstream.Stream(ctx, prompt, adm.Request.Messages)
	metrics.ObserveUpstream(c.upstream.Name(), time.Since(start).Milliseconds(), err == nil)
	if err != nil {
		metrics.IncChatRequest("upstream_error")
		l.Error().Err(err).Str("provider", c.upstream.Name()).Msg("upstream stream failed")
		return nil, err
	}

	metrics.IncChatRequest("relayed")
	return &ChatResult{Admission: adm, Body: stream, Provider: c.upstream.Name()}, nil
}
