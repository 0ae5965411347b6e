package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-media-navigator/internal/domain"
	"telegram-media-navigator/internal/domain/model"
	"telegram-media-navigator/internal/domain/ports/adapter"
	"telegram-media-navigator/internal/infra/logging"
	"telegram-media-navigator/internal/infra/metrics"
)

// Callback payloads carried by inline buttons.
const (
	CBShowList    = "show_list"
	CBShowPrivacy = "show_privacy"
	CBBackToMain  = "back_to_main"
	CBNextPrefix  = "next_"
)

// Bot API limits.
const (
	MaxMessageLen   = 4096 // characters per message text
	MaxCallbackData = 64   // bytes per callback_data
)

// Brand is the fixed identity shown in the menu.
type Brand struct {
	Name  string
	Admin string
	Links []adapter.InlineButton // URL buttons, rendered two per row
}

// BotFacade runs navigation events: it rebuilds the catalog when an event needs it and
// replies through the outbound adapter. It holds no per-chat state.
type BotFacade struct {
	CatalogUC CatalogUseCaseIface
	PlayerUC  PlayerUseCaseIface

	bot   adapter.TelegramBotAdapter
	tr    TranslatorIface
	brand Brand
	log   *zerolog.Logger
}

// NewBotFacade constructs the facade. All collaborators are required.
func NewBotFacade(
	catalogUC CatalogUseCaseIface,
	playerUC PlayerUseCaseIface,
	bot adapter.TelegramBotAdapter,
	tr TranslatorIface,
	brand Brand,
	logger *zerolog.Logger,
) (*BotFacade, error) {
	if catalogUC == nil || playerUC == nil {
		return nil, errors.New("catalog and player usecases are required")
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
	return &BotFacade{
		CatalogUC: catalogUC,
		PlayerUC:  playerUC,
		bot:       bot,
		tr:        tr,
		brand:     brand,
		log:       logger,
	}, nil
}

// HandleStart renders the welcome menu as a new message.
func (f *BotFacade) HandleStart(ctx context.Context, chatID int64) error {
	text := f.tr.T("welcome", escape(f.brand.Name))
	if err := f.bot.SendButtons(ctx, chatID, text, f.mainMenuRows()); err != nil {
		return fmt.Errorf("send main menu: %w", err)
	}
	return nil
}

// HandleOpenList shows the numbered track list. messageID != 0 edits that message in place.
// Long lists are split across messages; the back button goes on the last one.
func (f *BotFacade) HandleOpenList(ctx context.Context, chatID int64, messageID int) error {
	catalog := f.CatalogUC.Build(ctx)
	if catalog.Empty() {
		return f.render(ctx, chatID, messageID, f.tr.T("list_empty"), f.backRows())
	}

	lines := make([]string, 0, catalog.Len()+4)
	lines = append(lines, f.tr.T("list_header", escape(f.brand.Name)), "")
	for _, t := range catalog.Tracks {
		lines = append(lines, f.tr.T("list_item", t.ID, escape(t.Title)))
	}
	lines = append(lines, "", f.tr.T("list_footer"))

	chunks := chunkLines(lines, MaxMessageLen)
	if len(chunks) == 1 {
		return f.render(ctx, chatID, messageID, chunks[0], f.backRows())
	}
	if err := f.render(ctx, chatID, messageID, chunks[0], nil); err != nil {
		return err
	}
	for _, c := range chunks[1 : len(chunks)-1] {
		if err := f.bot.SendMessage(ctx, chatID, c); err != nil {
			return fmt.Errorf("send list part: %w", err)
		}
	}
	if err := f.bot.SendButtons(ctx, chatID, chunks[len(chunks)-1], f.backRows()); err != nil {
		return fmt.Errorf("send list part: %w", err)
	}
	return nil
}

// HandlePrivacy shows the privacy policy.
func (f *BotFacade) HandlePrivacy(ctx context.Context, chatID int64, messageID int) error {
	text := f.tr.Policy(escape(f.brand.Name), escape(f.brand.Admin))
	return f.render(ctx, chatID, messageID, text, f.backRows())
}

// HandleBack removes the pressed message (best effort) and renders the welcome menu again.
func (f *BotFacade) HandleBack(ctx context.Context, chatID int64, messageID int) error {
	if messageID != 0 {
		if err := f.bot.DeleteMessage(ctx, chatID, messageID); err != nil {
			logging.With(ctx, f.log).Debug().Err(err).Int("message_id", messageID).Msg("delete previous message")
		}
	}
	return f.HandleStart(ctx, chatID)
}

// HandleHelp lists the commands.
func (f *BotFacade) HandleHelp(ctx context.Context, chatID int64) error {
	return f.bot.SendMessage(ctx, chatID, f.tr.T("help"))
}

// HandleRateLimited tells the chat to slow down.
func (f *BotFacade) HandleRateLimited(ctx context.Context, chatID int64) error {
	return f.bot.SendMessage(ctx, chatID, f.tr.T("rate_limited"))
}

// HandlePlay streams the track whose number matches requestedID.
// Empty catalog, unknown numbers and rejected audio all end as notices, not errors.
func (f *BotFacade) HandlePlay(ctx context.Context, chatID int64, requestedID string) error {
	defer logging.TraceDuration(logging.With(ctx, f.log), "BotFacade.HandlePlay")()

	catalog := f.CatalogUC.Build(ctx)
	pb, err := f.PlayerUC.Play(ctx, catalog, requestedID)
	switch {
	case errors.Is(err, domain.ErrCatalogEmpty):
		metrics.IncPlayback(metrics.PlaybackEmpty)
		return f.bot.SendButtons(ctx, chatID, f.tr.T("list_empty"), f.backRows())
	case errors.Is(err, domain.ErrTrackNotFound):
		metrics.IncPlayback(metrics.PlaybackNotFound)
		return f.bot.SendMessage(ctx, chatID, f.tr.T("track_not_found", requestedID))
	case err != nil:
		return fmt.Errorf("play %s: %w", requestedID, err)
	}

	l := logging.With(ctx, f.log)
	if err := f.bot.SendChatAction(ctx, chatID, adapter.ActionUploadDocument); err != nil {
		l.Debug().Err(err).Msg("chat action")
	}

	audio := adapter.AudioMessage{
		URL:       pb.URL,
		Title:     pb.Track.Title,
		Performer: pb.Performer,
		Caption:   f.tr.T("now_playing", escape(pb.Track.Title), pb.Track.ID),
	}
	controls := []adapter.InlineButton{{Text: f.tr.T("btn_stop"), Data: CBBackToMain}}
	if next := CBNextPrefix + model.NormalizeID(pb.Next.ID); len(next) <= MaxCallbackData {
		controls = append(controls, adapter.InlineButton{Text: f.tr.T("btn_next"), Data: next})
	}
	rows := [][]adapter.InlineButton{
		controls,
		{{Text: f.tr.T("btn_main_menu"), Data: CBBackToMain}},
	}

	if err := f.bot.SendAudio(ctx, chatID, audio, rows); err != nil {
		metrics.IncPlayback(metrics.PlaybackDeliveryFailed)
		l.Warn().Err(err).Str("url", pb.URL).Str("track", pb.Track.FileName).Msg("audio delivery failed")
		if nerr := f.bot.SendMessage(ctx, chatID, f.tr.T("delivery_failed", pb.URL)); nerr != nil {
			return fmt.Errorf("%w: %v (notice: %v)", domain.ErrDeliveryFailed, err, nerr)
		}
		return nil
	}

	metrics.IncPlayback(metrics.PlaybackPlayed)
	l.Info().Str("track", pb.Track.FileName).Str("next", pb.Next.ID).Msg("track sent")
	return nil
}

// LivenessText is the body of the liveness endpoint.
func (f *BotFacade) LivenessText() string {
	return f.tr.T("liveness", f.brand.Name)
}

// MenuCommands are the command descriptions published to Telegram clients.
func (f *BotFacade) MenuCommands() map[string]string {
	return map[string]string{
		"start":   f.tr.T("cmd_start"),
		"list":    f.tr.T("cmd_list"),
		"privacy": f.tr.T("cmd_privacy"),
		"help":    f.tr.T("cmd_help"),
	}
}

// render edits messageID when set and falls back to a new message if the edit is refused
// (for example when the pressed message is an audio message without text).
func (f *BotFacade) render(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	if messageID != 0 {
		err := f.bot.EditButtons(ctx, chatID, messageID, text, rows)
		if err == nil {
			return nil
		}
		logging.With(ctx, f.log).Debug().Err(err).Int("message_id", messageID).Msg("edit failed, sending new message")
	}
	return f.bot.SendButtons(ctx, chatID, text, rows)
}

func (f *BotFacade) mainMenuRows() [][]adapter.InlineButton {
	rows := [][]adapter.InlineButton{
		{{Text: f.tr.T("btn_music"), Data: CBShowList}},
	}
	for i := 0; i < len(f.brand.Links); i += 2 {
		end := i + 2
		if end > len(f.brand.Links) {
			end = len(f.brand.Links)
		}
		rows = append(rows, append([]adapter.InlineButton(nil), f.brand.Links[i:end]...))
	}
	rows = append(rows, []adapter.InlineButton{{Text: f.tr.T("btn_privacy"), Data: CBShowPrivacy}})
	return rows
}

func (f *BotFacade) backRows() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{{{Text: f.tr.T("btn_back"), Data: CBBackToMain}}}
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// chunkLines joins lines with newlines into parts no longer than limit bytes. Bytes bound the
// character count from above. A single line longer than limit is cut on a rune boundary.
func chunkLines(lines []string, limit int) []string {
	var (
		parts []string
		b     strings.Builder
	)
	flush := func() {
		if b.Len() > 0 {
			parts = append(parts, b.String())
			b.Reset()
		}
	}
	for _, line := range lines {
		for len(line) > limit {
			flush()
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			parts = append(parts, line[:cut])
			line = line[cut:]
		}
		if b.Len() > 0 && b.Len()+1+len(line) > limit {
			flush()
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	flush()
	if len(parts) == 0 {
		parts = append(parts, "")
	}
	return parts
}
