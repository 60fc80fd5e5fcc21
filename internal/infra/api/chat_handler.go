package api

import (
	"errors"
	"io"
	"net/http"

	"smartrunai-edge/internal/infra/logging"
	"smartrunai-edge/internal/stream"
)

const (
	maxChatBody    = 2 << 20
	relayChunkSize = 4096
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logging.With(ctx, s.log)

	// A body that cannot be read is passed on as empty so the rate check still
	// runs first and the request then fails validation.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxChatBody))
	if err != nil {
		l.Debug().Err(err).Msg("chat body unreadable")
		body = nil
	}

	res, err := s.chat.Handle(ctx, ClientID(r), body)
	if err != nil {
		status := writeError(w, err)
		l.Warn().Err(err).Int("status", status).Msg("chat request rejected")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	if res.Body == nil {
		w.WriteHeader(http.StatusOK)
		if err := stream.WriteReply(w, s.model, res.Admission.FastAnswer); err != nil {
			l.Debug().Err(err).Msg("fast path reply not delivered")
		}
		return
	}

	defer res.Body.Close()
	w.WriteHeader(http.StatusOK)
	relay(w, res.Body, func(err error) {
		if ctx.Err() != nil {
			l.Debug().Msg("caller disconnected mid-stream")
			return
		}
		l.Warn().Err(err).Str("provider", res.Provider).Msg("relay interrupted")
	})
}

// relay copies the upstream body verbatim, flushing after every read.
func relay(w http.ResponseWriter, src io.Reader, onErr func(error)) {
	rc := http.NewResponseController(w)
	buf := make([]byte, relayChunkSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				onErr(werr)
				return
			}
			_ = rc.Flush()
		}
		if rerr != nil {
			if !errors.Is(rerr, io.EOF) {
				onErr(rerr)
			}
			return
		}
	}
}
