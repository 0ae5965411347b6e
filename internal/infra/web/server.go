package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"telegram-media-navigator/internal/infra/logging"
	"telegram-media-navigator/internal/infra/metrics"
)

// UpdateHandler runs one decoded Telegram update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, up tgbotapi.Update) error
}

// TrackResolver maps a requested audio file name to a path on disk.
type TrackResolver interface {
	TrackPath(fileName string) (string, error)
}

// Options are the routing parameters of the server.
type Options struct {
	WebhookPath    string // default /api/webhook
	AudioPath      string // default /music/
	LivenessText   string
	RequestTimeout time.Duration
}

// Server exposes the webhook, liveness, metrics and audio endpoints.
type Server struct {
	updates UpdateHandler
	tracks  TrackResolver
	opts    Options
	log     *zerolog.Logger
}

func NewServer(updates UpdateHandler, tracks TrackResolver, opts Options, logger *zerolog.Logger) (*Server, error) {
	if updates == nil {
		return nil, errors.New("update handler is nil")
	}
	if tracks == nil {
		return nil, errors.New("track resolver is nil")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	if opts.WebhookPath == "" {
		opts.WebhookPath = "/api/webhook"
	}
	if opts.AudioPath == "" {
		opts.AudioPath = "/music/"
	}
	if !strings.HasSuffix(opts.AudioPath, "/") {
		opts.AudioPath += "/"
	}
	return &Server{updates: updates, tracks: tracks, opts: opts, log: logger}, nil
}

// Router builds the chi router with the guard middleware applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return Chain(next,
			TraceID(),
			RequestLog(s.log),
			Recover(s.log),
			Timeout(s.opts.RequestTimeout),
		)
	})

	r.HandleFunc(s.opts.WebhookPath, s.handleWebhook)
	r.Get("/", s.handleLiveness)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, "OK")
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get(s.opts.AudioPath+"{file}", s.handleAudio)
	return r
}
