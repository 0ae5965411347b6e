package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-media-navigator/internal/config"
	"telegram-media-navigator/internal/domain/ports/adapter"
	"telegram-media-navigator/internal/infra/logging"
	"telegram-media-navigator/internal/infra/metrics"
	"telegram-media-navigator/internal/infra/worker"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// UpdateHandler consumes one inbound update. *UpdateRouter satisfies it.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, up tgbotapi.Update) error
}

// RealTelegramBotAdapter talks to the Bot API through tgbotapi. It implements the outbound
// port and can long-poll updates into a worker pool.
type RealTelegramBotAdapter struct {
	api           *tgbotapi.BotAPI
	updateWorkers int
	log           *zerolog.Logger

	mu            sync.Mutex
	cancelPolling context.CancelFunc
}

// NewRealTelegramBotAdapter connects with cfg.Token (getMe is called once).
func NewRealTelegramBotAdapter(cfg *config.BotConfig, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("bot token is empty")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("connect bot api: %w", err)
	}
	api.Debug = cfg.Debug
	return NewRealTelegramBotAdapterWithAPI(api, cfg.Workers, logger)
}

// NewRealTelegramBotAdapterWithAPI wraps an already constructed client.
func NewRealTelegramBotAdapterWithAPI(api *tgbotapi.BotAPI, updateWorkers int, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if api == nil {
		return nil, errors.New("bot api is nil")
	}
	if updateWorkers <= 0 {
		updateWorkers = 5
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &RealTelegramBotAdapter{api: api, updateWorkers: updateWorkers, log: logger}, nil
}

// Username is the bot account name reported by getMe.
func (b *RealTelegramBotAdapter) Username() string {
	return b.api.Self.UserName
}

// StartPolling removes any webhook and fans long-polled updates into a worker pool.
// It blocks until ctx is cancelled or StopPolling is called.
func (b *RealTelegramBotAdapter) StartPolling(ctx context.Context, handler UpdateHandler) error {
	if handler == nil {
		return errors.New("update handler is nil")
	}
	if err := b.DeleteWebhook(false); err != nil {
		b.log.Warn().Err(err).Msg("delete webhook before polling")
	}

	ctx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancelPolling = cancel
	b.mu.Unlock()
	defer cancel()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	pool := worker.NewPool(b.updateWorkers, 100, b.log)
	pool.Start(ctx)
	defer pool.Stop()

	b.log.Info().Int("workers", b.updateWorkers).Str("bot", b.api.Self.UserName).Msg("polling started")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			if err := pool.Submit(ctx, func(ctx context.Context) error {
				b.runUpdate(ctx, handler, up)
				return nil
			}); err != nil {
				b.log.Warn().Err(err).Int("update_id", up.UpdateID).Msg("update dropped")
			}
		}
	}
}

// runUpdate gives each update a trace id unless ctx already carries one. Panics are
// recovered by the pool.
func (b *RealTelegramBotAdapter) runUpdate(ctx context.Context, handler UpdateHandler, up tgbotapi.Update) {
	if logging.TraceID(ctx) == "" {
		ctx = logging.WithTraceID(ctx, uuid.NewString())
	}
	if err := handler.HandleUpdate(ctx, up); err != nil {
		logging.With(ctx, b.log).Error().Err(err).Int("update_id", up.UpdateID).Msg("handle update")
	}
}

func (b *RealTelegramBotAdapter) StopPolling() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancelPolling != nil {
		b.cancelPolling()
	}
}

// SetWebhook registers url as the delivery address for updates.
func (b *RealTelegramBotAdapter) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("webhook url: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("setWebhook: %w", err)
	}
	return nil
}

// DeleteWebhook removes the webhook so getUpdates can be used.
func (b *RealTelegramBotAdapter) DeleteWebhook(dropPending bool) error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPending}); err != nil {
		return fmt.Errorf("deleteWebhook: %w", err)
	}
	return nil
}

// WebhookInfo reports the current webhook registration.
func (b *RealTelegramBotAdapter) WebhookInfo() (tgbotapi.WebhookInfo, error) {
	info, err := b.api.GetWebhookInfo()
	if err != nil {
		return tgbotapi.WebhookInfo{}, fmt.Errorf("getWebhookInfo: %w", err)
	}
	return info, nil
}

// SetMenuCommands publishes the command menu shown by Telegram clients.
func (b *RealTelegramBotAdapter) SetMenuCommands(ctx context.Context, commands map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	order := []string{"start", "list", "privacy", "help"}
	list := make([]tgbotapi.BotCommand, 0, len(commands))
	for _, name := range order {
		if desc, ok := commands[name]; ok {
			list = append(list, tgbotapi.BotCommand{Command: name, Description: desc})
		}
	}
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(list...)); err != nil {
		return fmt.Errorf("setMyCommands: %w", err)
	}
	return nil
}

func (b *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	return b.SendButtons(ctx, chatID, text, nil)
}

// SendButtons sends a Markdown message with inline buttons.
// - If btn.URL is set, the button opens a link
// - Else if btn.Data is set, the button sends callback data
// - Else a safe fallback uses btn.Text as callback data
func (b *RealTelegramBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if kb, ok := keyboard(rows); ok {
		msg.ReplyMarkup = kb
	}
	_, err := b.api.Send(msg)
	return b.sendErr("sendMessage", err)
}

func (b *RealTelegramBotAdapter) EditButtons(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if kb, ok := keyboard(rows); ok {
		edit.ReplyMarkup = &kb
	}
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.DisableWebPagePreview = true
	_, err := b.api.Send(edit)
	return b.sendErr("editMessageText", err)
}

func (b *RealTelegramBotAdapter) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return b.sendErr("deleteMessage", err)
}

func (b *RealTelegramBotAdapter) SendChatAction(ctx context.Context, chatID int64, action string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.api.Request(tgbotapi.NewChatAction(chatID, action))
	return b.sendErr("sendChatAction", err)
}

// SendAudio sends audio by URL; Telegram fetches the file itself.
func (b *RealTelegramBotAdapter) SendAudio(ctx context.Context, chatID int64, audio adapter.AudioMessage, rows [][]adapter.InlineButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := tgbotapi.NewAudio(chatID, tgbotapi.FileURL(audio.URL))
	cfg.Title = audio.Title
	cfg.Performer = audio.Performer
	cfg.Caption = audio.Caption
	cfg.ParseMode = tgbotapi.ModeMarkdown
	if kb, ok := keyboard(rows); ok {
		cfg.ReplyMarkup = kb
	}
	_, err := b.api.Send(cfg)
	return b.sendErr("sendAudio", err)
}

func (b *RealTelegramBotAdapter) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.api.Request(tgbotapi.NewCallback(callbackID, text))
	return b.sendErr("answerCallbackQuery", err)
}

func (b *RealTelegramBotAdapter) sendErr(method string, err error) error {
	if err == nil {
		return nil
	}
	metrics.IncSendError(method)
	return fmt.Errorf("%s: %w", method, err)
}

// keyboard converts port buttons to tgbotapi markup; ok is false when there are no buttons.
func keyboard(rows [][]adapter.InlineButton) (tgbotapi.InlineKeyboardMarkup, bool) {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, r)
	}
	if len(kbRows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...), true
}
