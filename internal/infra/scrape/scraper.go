// Package scrape fetches the marketing pages that feed the chatbot's live
// website context.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"smartrunai-edge/internal/config"
	"smartrunai-edge/internal/domain/ports/repository"
	"smartrunai-edge/internal/infra/metrics"
)

const maxBodyBytes = 2 << 20

var _ repository.ContentSource = (*Scraper)(nil)

type Scraper struct {
	client    *http.Client
	pages     []string
	proxyURL  string
	maxChars  int
	limit     int
	userAgent string
	log       *zerolog.Logger
}

func New(cfg config.ContentConfig, log *zerolog.Logger) *Scraper {
	return NewWithClient(&http.Client{Timeout: cfg.Timeout}, cfg, log)
}

func NewWithClient(client *http.Client, cfg config.ContentConfig, log *zerolog.Logger) *Scraper {
	limit := cfg.Concurrency
	if limit <= 0 {
		limit = len(cfg.Pages)
	}
	return &Scraper{
		client:    client,
		pages:     cfg.Pages,
		proxyURL:  cfg.ProxyURL,
		maxChars:  cfg.MaxCharsPerPage,
		limit:     limit,
		userAgent: cfg.UserAgent,
		log:       log,
	}
}

// Scrape fetches every page concurrently and joins the non-empty ones in
// configured order. It returns "" when every page failed.
func (s *Scraper) Scrape(ctx context.Context) string {
	texts := make([]string, len(s.pages))

	g, gctx := errgroup.WithContext(ctx)
	if s.limit > 0 {
		g.SetLimit(s.limit)
	}
	for i, page := range s.pages {
		g.Go(func() error {
			texts[i] = s.fetchPage(gctx, page)
			return nil // a failed page contributes nothing
		})
	}
	_ = g.Wait()

	var parts []string
	for i, text := range texts {
		if text != "" {
			parts = append(parts, fmt.Sprintf("### Page: %s\n%s", s.pages[i], text))
		}
	}
	s.log.Debug().Int("pages", len(s.pages)).Int("ok", len(parts)).Msg("scrape finished")
	return strings.Join(parts, "\n\n")
}

// fetchPage tries the page directly, then through the proxy.
func (s *Scraper) fetchPage(ctx context.Context, page string) string {
	text, err := s.fetchText(ctx, page)
	if err == nil {
		metrics.IncScrapeFetch("direct", "ok")
		return text
	}
	metrics.IncScrapeFetch("direct", "failed")
	s.log.Warn().Err(err).Str("page", page).Msg("direct fetch failed")

	if s.proxyURL == "" {
		return ""
	}
	text, err = s.fetchText(ctx, s.proxyURL+url.QueryEscape(page))
	if err != nil {
		metrics.IncScrapeFetch("proxy", "failed")
		s.log.Warn().Err(err).Str("page", page).Msg("proxy fetch failed")
		return ""
	}
	metrics.IncScrapeFetch("proxy", "ok")
	return text
}

func (s *Scraper) fetchText(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	text := truncateRunes(ExtractText(io.LimitReader(resp.Body, maxBodyBytes)), s.maxChars)
	if text == "" {
		return "", fmt.Errorf("empty body")
	}
	return text, nil
}
