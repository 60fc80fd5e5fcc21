package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"smartrunai-edge/internal/domain"
	"smartrunai-edge/internal/domain/model"
	"smartrunai-edge/internal/infra/logging"
)

const maxContactBody = 64 << 10

type contactResponse struct {
	Success       bool           `json:"success"`
	EmailResponse map[string]any `json:"emailResponse"`
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logging.With(ctx, s.log)

	if !s.throttle.Allow() {
		writeError(w, domain.ErrRateLimited)
		return
	}

	var sub model.ContactSubmission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContactBody)).Decode(&sub); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	resp, err := s.contact.Submit(ctx, &sub)
	if err != nil {
		status := writeError(w, err)
		l.Warn().Err(err).Int("status", status).Msg("contact submission failed")
		return
	}
	writeJSON(w, http.StatusOK, contactResponse{Success: true, EmailResponse: resp})
}
