package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"smartrunai-edge/internal/domain"
)

const (
	msgInvalidInput      = "Invalid input data"
	msgRateLimited       = "Too many requests. Please wait a moment and try again."
	msgUpstreamRateLimit = "Rate limits exceeded, please try again later."
	msgUpstreamPayment   = "Service temporarily unavailable."
	msgUpstreamProtocol  = "AI gateway error"
	msgNotifyFailed      = "Failed to send email"
	msgInternal          = "Internal server error"
)

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps domain errors to the status and the message shown to callers.
// Upstream details never reach the body.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, msgInvalidInput
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, msgRateLimited
	case errors.Is(err, domain.ErrUpstreamRateLimited):
		return http.StatusTooManyRequests, msgUpstreamRateLimit
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusPaymentRequired, msgUpstreamPayment
	case errors.Is(err, domain.ErrUpstreamProtocol):
		return http.StatusInternalServerError, msgUpstreamProtocol
	case errors.Is(err, domain.ErrNotifyFailed):
		return http.StatusInternalServerError, msgNotifyFailed
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func writeError(w http.ResponseWriter, err error) int {
	status, msg := statusFor(err)
	writeJSON(w, status, errorBody{Error: msg})
	return status
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
