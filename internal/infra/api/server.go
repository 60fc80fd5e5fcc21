// Package api exposes the relay over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"smartrunai-edge/internal/config"
	"smartrunai-edge/internal/usecase"
)

const contactTimeout = 20 * time.Second

// Server wires the chat relay and the contact form to HTTP routes.
type Server struct {
	chat     usecase.ChatUseCase
	contact  usecase.ContactUseCase
	cors     *CORS
	model    string
	throttle *rate.Limiter
	log      *zerolog.Logger
}

// NewServer builds the HTTP layer. contact may be nil to disable the form relay.
func NewServer(cfg *config.Config, chat usecase.ChatUseCase, contact usecase.ContactUseCase, log *zerolog.Logger) *Server {
	perSec := rate.Limit(cfg.Contact.PerMinute / 60)
	if cfg.Contact.PerMinute <= 0 {
		perSec = rate.Inf
	}
	return &Server{
		chat:     chat,
		contact:  contact,
		cors:     NewCORS(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedSuffixes),
		model:    cfg.Upstream.ActiveModel(),
		throttle: rate.NewLimiter(perSec, max(cfg.Contact.Burst, 1)),
		log:      log,
	}
}

// Handler returns the routed handler. Every route is also served under
// /functions/v1 so existing site builds keep working.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RealIP,
		TraceID(s.log),
		RequestLog(s.log),
		Recover(s.log),
		s.cors.Handler,
	)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	for _, prefix := range []string{"", "/functions/v1"} {
		r.Post(prefix+"/chatbot", s.handleChat)
		if s.contact != nil {
			r.With(Timeout(contactTimeout)).Post(prefix+"/send-contact-email", s.handleContact)
		}
	}
	return r
}
