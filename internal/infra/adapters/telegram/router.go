package telegram

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-media-navigator/internal/application"
	"telegram-media-navigator/internal/domain/ports/adapter"
	"telegram-media-navigator/internal/infra/logging"
	"telegram-media-navigator/internal/infra/metrics"
)

// Event names used for metrics and rate-limit keys.
const (
	EventStart   = "start"
	EventList    = "list"
	EventPrivacy = "privacy"
	EventBack    = "back"
	EventPlay    = "play"
	EventNext    = "next"
	EventHelp    = "help"
	EventIgnored = "ignored"
)

var digitsRe = regexp.MustCompile(`^\d+$`)

// Navigator is the part of BotFacade the router dispatches to.
type Navigator interface {
	HandleStart(ctx context.Context, chatID int64) error
	HandleOpenList(ctx context.Context, chatID int64, messageID int) error
	HandlePrivacy(ctx context.Context, chatID int64, messageID int) error
	HandleBack(ctx context.Context, chatID int64, messageID int) error
	HandleHelp(ctx context.Context, chatID int64) error
	HandleRateLimited(ctx context.Context, chatID int64) error
	HandlePlay(ctx context.Context, chatID int64, requestedID string) error
}

// Limiter counts hits per key. *redis.RateLimiter satisfies it.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// KeyFunc builds the rate-limit key for a chat and event.
type KeyFunc func(chatID int64, event string) string

type translator interface {
	T(key string, args ...interface{}) string
}

// UpdateRouter classifies inbound updates into navigation events and runs them.
type UpdateRouter struct {
	nav     Navigator
	bot     adapter.TelegramBotAdapter
	tr      translator
	limiter Limiter
	key     KeyFunc
	log     *zerolog.Logger
}

// RouterOption customises an UpdateRouter.
type RouterOption func(*UpdateRouter)

// WithLimiter enables per-chat rate limiting. A nil limiter leaves it disabled.
func WithLimiter(l Limiter, key KeyFunc) RouterOption {
	return func(r *UpdateRouter) {
		r.limiter = l
		if key != nil {
			r.key = key
		}
	}
}

// NewUpdateRouter constructs the router. bot is used only to answer callback queries.
func NewUpdateRouter(nav Navigator, bot adapter.TelegramBotAdapter, tr translator, logger *zerolog.Logger, opts ...RouterOption) (*UpdateRouter, error) {
	if nav == nil {
		return nil, errors.New("navigator is nil")
	}
	if bot == nil {
		return nil, errors.New("bot adapter is nil")
	}
	if tr == nil {
		return nil, errors.New("translator is nil")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	r := &UpdateRouter{
		nav: nav,
		bot: bot,
		tr:  tr,
		key: defaultKey,
		log: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func defaultKey(chatID int64, event string) string {
	return "rate_limit:" + strconv.FormatInt(chatID, 10) + ":" + event
}

// HandleUpdate runs one update. Updates that match no event are ignored without error.
func (r *UpdateRouter) HandleUpdate(ctx context.Context, up tgbotapi.Update) error {
	ctx = logging.WithUpdateID(ctx, up.UpdateID)
	switch {
	case up.CallbackQuery != nil:
		return r.handleQuery(ctx, up.CallbackQuery)
	case up.Message != nil:
		return r.handleMessage(ctx, up.Message)
	default:
		metrics.IncTelegramUpdate(EventIgnored)
		return nil
	}
}

type commandHandler func(ctx context.Context, chatID int64) error

// commandRoutes maps bot commands (without the slash) to their events.
func (r *UpdateRouter) commandRoutes() map[string]struct {
	Event string
	Fn    commandHandler
} {
	type route = struct {
		Event string
		Fn    commandHandler
	}
	return map[string]route{
		"start": {EventStart, r.nav.HandleStart},
		"menu":  {EventStart, r.nav.HandleStart},
		"list": {EventList, func(ctx context.Context, id int64) error {
			return r.nav.HandleOpenList(ctx, id, 0)
		}},
		"privacy": {EventPrivacy, func(ctx context.Context, id int64) error {
			return r.nav.HandlePrivacy(ctx, id, 0)
		}},
		"help": {EventHelp, r.nav.HandleHelp},
	}
}

func (r *UpdateRouter) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.Chat == nil {
		metrics.IncTelegramUpdate(EventIgnored)
		return nil
	}
	chatID := msg.Chat.ID
	ctx = logging.WithChatID(ctx, chatID)

	if msg.IsCommand() {
		route, ok := r.commandRoutes()[strings.ToLower(msg.Command())]
		if !ok {
			metrics.IncTelegramUpdate(EventIgnored)
			return nil
		}
		return r.dispatch(ctx, chatID, route.Event, func() error { return route.Fn(ctx, chatID) })
	}

	text := strings.TrimSpace(msg.Text)
	if !digitsRe.MatchString(text) {
		metrics.IncTelegramUpdate(EventIgnored)
		return nil
	}
	return r.dispatch(ctx, chatID, EventPlay, func() error { return r.nav.HandlePlay(ctx, chatID, text) })
}

type cbHandler func(ctx context.Context, chatID int64, messageID int, data string) error

// Exact-match callbacks
func (r *UpdateRouter) cbRoutes() map[string]struct {
	Event string
	Fn    cbHandler
} {
	type route = struct {
		Event string
		Fn    cbHandler
	}
	return map[string]route{
		application.CBShowList: {EventList, func(ctx context.Context, id int64, msgID int, _ string) error {
			return r.nav.HandleOpenList(ctx, id, msgID)
		}},
		application.CBShowPrivacy: {EventPrivacy, func(ctx context.Context, id int64, msgID int, _ string) error {
			return r.nav.HandlePrivacy(ctx, id, msgID)
		}},
		application.CBBackToMain: {EventBack, func(ctx context.Context, id int64, msgID int, _ string) error {
			return r.nav.HandleBack(ctx, id, msgID)
		}},
	}
}

// Prefix-match callbacks
func (r *UpdateRouter) cbPrefixRoutes() []struct {
	Prefix string
	Event  string
	Toast  string
	Fn     cbHandler
} {
	return []struct {
		Prefix string
		Event  string
		Toast  string
		Fn     cbHandler
	}{
		{
			Prefix: application.CBNextPrefix,
			Event:  EventNext,
			Toast:  "next_loading",
			Fn: func(ctx context.Context, id int64, _ int, data string) error {
				return r.nav.HandlePlay(ctx, id, strings.TrimPrefix(data, application.CBNextPrefix))
			},
		},
	}
}

func (r *UpdateRouter) handleQuery(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	var (
		chatID    int64
		messageID int
	)
	if q.Message != nil && q.Message.Chat != nil {
		chatID = q.Message.Chat.ID
		messageID = q.Message.MessageID
	} else if q.From != nil {
		chatID = q.From.ID
	}
	ctx = logging.WithChatID(ctx, chatID)
	data := strings.TrimSpace(q.Data)

	event, toast, run := r.matchCallback(data)
	r.answer(ctx, q.ID, toast)
	if run == nil || chatID == 0 {
		metrics.IncTelegramUpdate(EventIgnored)
		return nil
	}
	return r.dispatch(ctx, chatID, event, func() error { return run(ctx, chatID, messageID, data) })
}

// matchCallback resolves data to its event, its toast key and handler; run is nil when unknown.
func (r *UpdateRouter) matchCallback(data string) (event, toast string, run cbHandler) {
	if route, ok := r.cbRoutes()[data]; ok {
		return route.Event, "", route.Fn
	}
	for _, pr := range r.cbPrefixRoutes() {
		if strings.HasPrefix(data, pr.Prefix) && digitsRe.MatchString(strings.TrimPrefix(data, pr.Prefix)) {
			return pr.Event, pr.Toast, pr.Fn
		}
	}
	return "", "", nil
}

func (r *UpdateRouter) answer(ctx context.Context, callbackID, toastKey string) {
	if callbackID == "" {
		return
	}
	text := ""
	if toastKey != "" {
		text = r.tr.T(toastKey)
	}
	if err := r.bot.AnswerCallback(ctx, callbackID, text); err != nil {
		logging.With(ctx, r.log).Debug().Err(err).Msg("answer callback")
	}
}

// dispatch counts the event, applies the rate limit and runs fn.
func (r *UpdateRouter) dispatch(ctx context.Context, chatID int64, event string, fn func() error) error {
	metrics.IncTelegramUpdate(event)
	l := logging.With(ctx, r.log)

	if r.limiter != nil {
		allowed, err := r.limiter.Allow(ctx, r.key(chatID, event))
		switch {
		case err != nil:
			l.Warn().Err(err).Msg("rate limit check failed")
		case !allowed:
			metrics.IncRateLimitTriggered()
			l.Info().Str("event", event).Msg("rate limited")
			return r.nav.HandleRateLimited(ctx, chatID)
		}
	}

	l.Debug().Str("event", event).Msg("dispatch")
	return fn()
}
