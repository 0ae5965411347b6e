package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/go-chi/chi/v5"

	"telegram-media-navigator/internal/domain"
	"telegram-media-navigator/internal/infra/logging"
)

const errorBody = "Error"

var audioContentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
}

// handleWebhook accepts any method: POST carries an update, anything else is a liveness probe.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.handleLiveness(w, r)
		return
	}
	l := logging.With(r.Context(), s.log)

	var up tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&up); err != nil {
		l.Warn().Err(err).Msg("decode update")
		writeText(w, http.StatusInternalServerError, errorBody)
		return
	}
	if err := s.updates.HandleUpdate(r.Context(), up); err != nil {
		l.Error().Err(err).Int("update_id", up.UpdateID).Msg("handle update")
		writeText(w, http.StatusInternalServerError, errorBody)
		return
	}
	writeText(w, http.StatusOK, "OK")
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, s.opts.LivenessText)
}

// handleAudio streams a file from the current audio directory; range requests are honoured.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		name = unescaped
	}

	path, err := s.tracks.TrackPath(name)
	if err != nil {
		if !errors.Is(err, domain.ErrTrackNotFound) && !errors.Is(err, domain.ErrInvalidArgument) {
			logging.With(r.Context(), s.log).Warn().Err(err).Str("file", name).Msg("resolve audio file")
		}
		http.NotFound(w, r)
		return
	}

	if ct, ok := audioContentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, path)
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}
