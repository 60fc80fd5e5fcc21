package domain

import "errors"

var (
	// Request gatekeeping
	ErrInvalidInput = errors.New("invalid input data")
	ErrRateLimited  = errors.New("too many requests")

	// Upstream model provider
	ErrUpstreamRateLimited = errors.New("upstream rate limited")
	ErrUpstreamUnavailable = errors.New("upstream payment or capacity unavailable")
	ErrUpstreamProtocol    = errors.New("upstream protocol error")

	// Configuration absent for the operation being attempted
	ErrMissingConfig = errors.New("missing configuration")

	// Consumer-side stream failures that end a turn
	ErrStreamDecode = errors.New("stream decode failed")

	// Outbound notifications (email, alerts)
	ErrNotifyFailed = errors.New("notification failed")
)
