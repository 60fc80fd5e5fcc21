package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"smartrunai-edge/internal/domain"
	"smartrunai-edge/internal/domain/model"
	"smartrunai-edge/internal/domain/ports/adapter"
	"smartrunai-edge/internal/stream"
)

var _ adapter.ChatUpstream = (*GeminiAdapter)(nil)

// GeminiAdapter calls the Gemini API directly and re-frames its streamed parts
// as chat completion chunks, so callers see the same SSE envelope.
type GeminiAdapter struct {
	client *genai.Client
	model  string
	log    *zerolog.Logger
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK. With no key
// the adapter is still returned and every Stream call reports missing config.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, model string, log *zerolog.Logger) (*GeminiAdapter, error) {
	g := &GeminiAdapter{model: model, log: log}
	if apiKey == "" {
		return g, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	g.client = c
	return g, nil
}

func (g *GeminiAdapter) Name() string { return "gemini" }

func (g *GeminiAdapter) Stream(ctx context.Context, systemPrompt string, history []model.ChatMessage) (io.ReadCloser, error) {
	if g.client == nil {
		return nil, fmt.Errorf("%w: gemini api key not set", domain.ErrMissingConfig)
	}

	seq := g.client.Models.GenerateContentStream(ctx, g.model, toGenAIHistory(history), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
	})

	// Pull the first response here so failures map to a status before any byte is written.
	next, stop := iter.Pull2(seq)
	first, err, ok := next()
	if ok && err != nil {
		stop()
		return nil, classifyGeminiError(err)
	}

	pr, pw := io.Pipe()
	go func() {
		defer stop()
		enc := stream.NewEncoder(pw, g.model)
		resp, more := first, ok
		for more {
			if text := resp.Text(); text != "" {
				if werr := enc.Delta(text); werr != nil {
					// Reader side closed; the client went away.
					pw.CloseWithError(werr)
					return
				}
			}
			var err error
			resp, err, more = next()
			if more && err != nil {
				g.log.Error().Err(err).Msg("gemini stream interrupted")
				pw.CloseWithError(err)
				return
			}
		}
		_ = enc.Done()
		_ = pw.Close()
	}()
	return pr, nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return domain.ErrUpstreamRateLimited
		case http.StatusPaymentRequired:
			return domain.ErrUpstreamUnavailable
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrUpstreamProtocol, err)
}

// Gemini has no system role in history, so client-sent system turns are
// passed as user turns. The real system prompt goes in SystemInstruction.
func toGenAIHistory(msgs []model.ChatMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.RoleUser
		if m.Role == model.RoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return out
}
