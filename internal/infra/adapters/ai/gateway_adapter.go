package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/rs/zerolog"
	"github.com/tidwall/sjson"

	"smartrunai-edge/internal/domain"
	"smartrunai-edge/internal/domain/model"
	"smartrunai-edge/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.ChatUpstream = (*GatewayAdapter)(nil)

// GatewayAdapter streams from an OpenAI-compatible /chat/completions endpoint.
// The response body is handed back untouched.
type GatewayAdapter struct {
	apiKey string
	base   string // e.g., https://ai.gateway.lovable.dev/v1
	model  string
	client *http.Client
	log    *zerolog.Logger
}

// NewGatewayAdapter never fails: a missing key or URL is reported per request.
// headerTimeout bounds the wait for response headers only, never the stream.
func NewGatewayAdapter(apiKey, baseURL, model string, headerTimeout time.Duration, log *zerolog.Logger) *GatewayAdapter {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = headerTimeout
	return &GatewayAdapter{
		apiKey: apiKey,
		base:   strings.TrimRight(baseURL, "/"),
		model:  model,
		client: &http.Client{Transport: transport},
		log:    log,
	}
}

func (g *GatewayAdapter) Name() string { return "gateway" }

func (g *GatewayAdapter) Stream(ctx context.Context, systemPrompt string, history []model.ChatMessage) (io.ReadCloser, error) {
	if g.apiKey == "" || g.base == "" {
		return nil, fmt.Errorf("%w: upstream api key or base url not set", domain.ErrMissingConfig)
	}

	body, err := g.requestBody(systemPrompt, history)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.base+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamProtocol, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamProtocol, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.Body, nil
	}

	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, domain.ErrUpstreamRateLimited
	case http.StatusPaymentRequired:
		return nil, domain.ErrUpstreamUnavailable
	default:
		g.log.Error().
			Int("status", resp.StatusCode).
			Str("body", string(snippet)).
			Msg("AI gateway error")
		return nil, fmt.Errorf("%w: gateway http %d", domain.ErrUpstreamProtocol, resp.StatusCode)
	}
}

// requestBody puts the system prompt ahead of the validated history.
func (g *GatewayAdapter) requestBody(systemPrompt string, history []model.ChatMessage) ([]byte, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	msgs = append(msgs, openai.SystemMessage(systemPrompt))
	for _, m := range history {
		switch m.Role {
		case model.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		case model.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	b, err := json.Marshal(openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(g.model),
		Messages: msgs,
	})
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(b, "stream", true)
}
