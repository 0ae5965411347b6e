package adapter

import "context"

type InlineButton struct {
	Text string
	Data string
	URL  string
}

// Chat actions understood by SendChatAction.
const (
	ActionTyping         = "typing"
	ActionUploadDocument = "upload_document"
)

// AudioMessage is an audio attachment referenced by a public URL.
type AudioMessage struct {
	URL       string
	Title     string
	Performer string
	Caption   string // Markdown
}

// TelegramBotAdapter is the outbound side of the bot. Texts are sent as Markdown.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendButtons(ctx context.Context, chatID int64, text string, rows [][]InlineButton) error
	EditButtons(ctx context.Context, chatID int64, messageID int, text string, rows [][]InlineButton) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	SendChatAction(ctx context.Context, chatID int64, action string) error
	SendAudio(ctx context.Context, chatID int64, audio AudioMessage, rows [][]InlineButton) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
