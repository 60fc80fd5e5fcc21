package repository

import "context"

// RateLimitStore counts requests per client identifier in fixed windows.
//
// CheckAndIncrement reports whether one more request from id fits in the current
// window and, if so, records it. A denied request is not counted.
type RateLimitStore interface {
	CheckAndIncrement(ctx context.Context, id string) (bool, error)
}
