package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"smartrunai-edge/internal/domain/ports/repository"
)

const unknownClient = "unknown"

// EdgeState owns the two tables shared across requests: the per-client rate
// window and the scraped-content cache.
type EdgeState struct {
	limiter repository.RateLimitStore
	content *ContentCache
	log     *zerolog.Logger
}

func NewEdgeState(limiter repository.RateLimitStore, content *ContentCache, log *zerolog.Logger) *EdgeState {
	return &EdgeState{limiter: limiter, content: content, log: log}
}

// CheckAndIncrement reports whether id may make another request in the current
// window. A store failure admits the request.
func (s *EdgeState) CheckAndIncrement(ctx context.Context, id string) bool {
	if id == "" {
		id = unknownClient
	}
	ok, err := s.limiter.CheckAndIncrement(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("client_id", id).Msg("rate limit store unavailable; admitting request")
		return true
	}
	return ok
}

// GetOrRefresh returns the scraped website text, possibly stale, possibly empty.
func (s *EdgeState) GetOrRefresh(ctx context.Context) string {
	if s.content == nil {
		return ""
	}
	return s.content.GetOrRefresh(ctx)
}
