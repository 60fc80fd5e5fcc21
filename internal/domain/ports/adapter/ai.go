package adapter

import (
	"context"
	"io"

	"smartrunai-edge/internal/domain/model"
)

// ChatUpstream is the port for the hosted LLM that produces the assistant reply.
//
// Stream returns the provider's raw SSE body framed as
// `data: {"choices":[{"delta":{"content":"..."}}]}` lines terminated by `data: [DONE]`.
// The caller must Close the returned reader. Failures before the first byte are
// reported as domain.ErrUpstreamRateLimited, domain.ErrUpstreamUnavailable,
// domain.ErrUpstreamProtocol or domain.ErrMissingConfig.
type ChatUpstream interface {
	Name() string
	Stream(ctx context.Context, systemPrompt string, history []model.ChatMessage) (io.ReadCloser, error)
}
