package ai

import (
	"context"

	"github.com/rs/zerolog"

	"smartrunai-edge/internal/config"
	"smartrunai-edge/internal/domain/ports/adapter"
)

// NewFromConfig builds the configured upstream wrapped in the concurrency limiter.
func NewFromConfig(ctx context.Context, cfg config.UpstreamConfig, log *zerolog.Logger) (adapter.ChatUpstream, error) {
	var up adapter.ChatUpstream
	switch cfg.Provider {
	case "gemini":
		g, err := NewGeminiAdapter(ctx, cfg.GeminiKey, cfg.GeminiURL, cfg.GeminiModel, log)
		if err != nil {
			return nil, err
		}
		up = g
	default:
		up = NewGatewayAdapter(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.HeaderTimeout, log)
	}
	return NewLimitedUpstream(up, cfg.ConcurrentLimit), nil
}
