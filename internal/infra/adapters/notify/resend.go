package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"smartrunai-edge/internal/domain"
	"smartrunai-edge/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*ResendMailer)(nil)

// ResendMailer sends email through the Resend HTTP API.
type ResendMailer struct {
	apiKey string
	base   string
	client *http.Client
	log    *zerolog.Logger
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

func NewResendMailer(apiKey, baseURL string, log *zerolog.Logger) *ResendMailer {
	return &ResendMailer{
		apiKey: apiKey,
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: 15 * time.Second},
		log:    log,
	}
}

// Send posts the message and returns the decoded provider response.
func (m *ResendMailer) Send(ctx context.Context, e adapter.Email) (map[string]any, error) {
	if m.apiKey == "" {
		return nil, fmt.Errorf("%w: RESEND_API_KEY not set", domain.ErrMissingConfig)
	}

	payload, err := json.Marshal(resendRequest{
		From:    e.From,
		To:      e.To,
		Subject: e.Subject,
		HTML:    e.HTML,
		ReplyTo: e.ReplyTo,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.base+"/emails", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotifyFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: resend: %v", domain.ErrNotifyFailed, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		m.log.Error().
			Int("status", resp.StatusCode).
			Str("body", string(raw)).
			Msg("resend rejected email")
		return nil, fmt.Errorf("%w: resend http %d", domain.ErrNotifyFailed, resp.StatusCode)
	}

	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("%w: decode resend response: %v", domain.ErrNotifyFailed, err)
		}
	}
	return out, nil
}
