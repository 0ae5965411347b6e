package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-media-navigator/internal/domain/ports/adapter"
	"telegram-media-navigator/internal/infra/logging"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.TelegramBotAdapter for local/dev runs without a token.
// It logs outbound calls instead of sending them.
type NoopBotAdapter struct {
	log *zerolog.Logger
}

// NewNoopBotAdapter constructs the noop adapter.
func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	if logger == nil {
		logger = logging.Nop()
	}
	l := logger.With().Str("adapter", "noop-telegram").Logger()
	return &NoopBotAdapter{log: &l}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().Int64("chat_id", chatID).Str("text", text).Msg("sendMessage")
	return nil
}

func (b *NoopBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().Int64("chat_id", chatID).Str("text", text).Interface("buttons", rows).Msg("sendMessage")
	return nil
}

func (b *NoopBotAdapter) EditButtons(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().Int64("chat_id", chatID).Int("message_id", messageID).Str("text", text).Interface("buttons", rows).Msg("editMessageText")
	return nil
}

func (b *NoopBotAdapter) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	b.log.Info().Int64("chat_id", chatID).Int("message_id", messageID).Msg("deleteMessage")
	return nil
}

func (b *NoopBotAdapter) SendChatAction(ctx context.Context, chatID int64, action string) error {
	b.log.Debug().Int64("chat_id", chatID).Str("action", action).Msg("sendChatAction")
	return nil
}

func (b *NoopBotAdapter) SendAudio(ctx context.Context, chatID int64, audio adapter.AudioMessage, rows [][]adapter.InlineButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().
		Int64("chat_id", chatID).
		Str("url", audio.URL).
		Str("title", audio.Title).
		Str("performer", audio.Performer).
		Interface("buttons", rows).
		Msg("sendAudio")
	return nil
}

func (b *NoopBotAdapter) AnswerCallback(ctx context.Context, callbackID, text string) error {
	b.log.Debug().Str("callback_id", callbackID).Str("text", text).Msg("answerCallbackQuery")
	return nil
}
