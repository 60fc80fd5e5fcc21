// Package client talks to a running chat relay and turns its SSE response into
// stream events.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	"smartrunai-edge/internal/domain/model"
	"smartrunai-edge/internal/stream"
)

// FallbackMessage is appended to whatever text arrived when a turn fails.
const FallbackMessage = "I'm having trouble connecting right now. Please try again in a moment, or reach us at info@smartrunai.com."

// APIError is a non-200 answer from the relay.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("relay http %d: %s", e.Status, e.Message)
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithHeader adds a header to every request, e.g. apikey for hosted functions.
func WithHeader(k, v string) Option { return func(c *Client) { c.headers.Set(k, v) } }

func WithAssemblerOptions(opts ...stream.AssemblerOption) Option {
	return func(c *Client) { c.asmOpts = append(c.asmOpts, opts...) }
}

type Client struct {
	endpoint string
	http     *http.Client
	headers  http.Header
	asmOpts  []stream.AssemblerOption
}

// New targets the chatbot endpoint, e.g. http://localhost:8080/chatbot.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{},
		headers:  http.Header{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Turn is one in-flight reply. Close must be called when done.
type Turn struct {
	body    io.ReadCloser
	asmOpts []stream.AssemblerOption
}

// Send posts the conversation. A non-200 status is returned as *APIError.
func (c *Client) Send(ctx context.Context, messages []model.ChatMessage) (*Turn, error) {
	payload, err := json.Marshal(model.ChatRequest{Messages: messages})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	for k, vs := range c.headers {
		req.Header[k] = vs
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	return &Turn{body: resp.Body, asmOpts: c.asmOpts}, nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	var body struct {
		Error string `json:"error"`
	}
	msg := http.StatusText(resp.StatusCode)
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// Events consumes the reply. See stream.Consume for the event contract.
func (t *Turn) Events(ctx context.Context) iter.Seq2[stream.Event, error] {
	return stream.Consume(ctx, t.body, t.asmOpts...)
}

func (t *Turn) Close() error { return t.body.Close() }

// Ask sends the conversation and collects the full reply.
func (c *Client) Ask(ctx context.Context, messages []model.ChatMessage) (string, error) {
	turn, err := c.Send(ctx, messages)
	if err != nil {
		return "", err
	}
	defer turn.Close()

	var text string
	for ev, err := range turn.Events(ctx) {
		text = ev.Text
		if err != nil {
			return text, err
		}
	}
	return text, nil
}

// WithFallback returns the text to show after a failed turn: the partial reply,
// if any, followed by FallbackMessage.
func WithFallback(partial string) string {
	if strings.TrimSpace(partial) == "" {
		return FallbackMessage
	}
	return partial + "\n\n" + FallbackMessage
}
