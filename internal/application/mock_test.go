//go:build !integration

package application_test

import (
	"context"
	"errors"
	"sync"

	"telegram-media-navigator/internal/domain/ports/adapter"
)

// call is one recorded outbound Bot API call.
type call struct {
	Method    string
	ChatID    int64
	MessageID int
	Text      string
	Action    string
	Audio     adapter.AudioMessage
	Rows      [][]adapter.InlineButton
}

// mockBot records every outbound call. failX makes the matching method fail.
type mockBot struct {
	mu    sync.Mutex
	calls []call

	failSend    bool
	failButtons bool
	failEdit    bool
	failDelete  bool
	failAudio   bool
}

var errTransport = errors.New("transport rejected the request")

func (m *mockBot) record(c call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func (m *mockBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	m.record(call{Method: "SendMessage", ChatID: chatID, Text: text})
	if m.failSend {
		return errTransport
	}
	return nil
}

func (m *mockBot) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	m.record(call{Method: "SendButtons", ChatID: chatID, Text: text, Rows: rows})
	if m.failButtons {
		return errTransport
	}
	return nil
}

func (m *mockBot) EditButtons(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	m.record(call{Method: "EditButtons", ChatID: chatID, MessageID: messageID, Text: text, Rows: rows})
	if m.failEdit {
		return errTransport
	}
	return nil
}

func (m *mockBot) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	m.record(call{Method: "DeleteMessage", ChatID: chatID, MessageID: messageID})
	if m.failDelete {
		return errTransport
	}
	return nil
}

func (m *mockBot) SendChatAction(ctx context.Context, chatID int64, action string) error {
	m.record(call{Method: "SendChatAction", ChatID: chatID, Action: action})
	return nil
}

func (m *mockBot) SendAudio(ctx context.Context, chatID int64, audio adapter.AudioMessage, rows [][]adapter.InlineButton) error {
	m.record(call{Method: "SendAudio", ChatID: chatID, Audio: audio, Rows: rows})
	if m.failAudio {
		return errTransport
	}
	return nil
}

func (m *mockBot) AnswerCallback(ctx context.Context, callbackID, text string) error {
	m.record(call{Method: "AnswerCallback", Text: text})
	return nil
}

func (m *mockBot) methods() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		out = append(out, c.Method)
	}
	return out
}

func (m *mockBot) last() call {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return call{}
	}
	return m.calls[len(m.calls)-1]
}

func (m *mockBot) find(method string) (call, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c.Method == method {
			return c, true
		}
	}
	return call{}, false
}
