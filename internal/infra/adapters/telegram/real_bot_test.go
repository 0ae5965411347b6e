//go:build !integration

package telegram_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-media-navigator/internal/domain/ports/adapter"
	"telegram-media-navigator/internal/infra/adapters/telegram"
	"telegram-media-navigator/internal/infra/logging"
)

const testToken = "123456:TEST"

// fakeBotAPI is a minimal Bot API server recording every request.
type fakeBotAPI struct {
	mu       sync.Mutex
	requests []apiRequest
	fail     map[string]bool
	updates  []tgbotapi.Update
}

type apiRequest struct {
	Method string
	Form   url.Values
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	prefix := "/bot" + testToken + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	method := strings.TrimPrefix(r.URL.Path, prefix)
	_ = r.ParseForm()

	f.mu.Lock()
	f.requests = append(f.requests, apiRequest{Method: method, Form: r.PostForm})
	fail := f.fail[method]
	var pending []tgbotapi.Update
	if method == "getUpdates" {
		pending, f.updates = f.updates, nil
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if fail {
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: failed to get HTTP URL content"}`))
		return
	}

	var result string
	switch method {
	case "getMe":
		result = `{"id":1,"is_bot":true,"first_name":"Sidhanie","username":"sidhanie_bot"}`
	case "sendMessage", "sendAudio", "editMessageText":
		result = `{"message_id":10,"date":0,"chat":{"id":42,"type":"private"}}`
	case "getWebhookInfo":
		result = `{"url":"https://bot.example.com/api/webhook","has_custom_certificate":false,"pending_update_count":3}`
	case "getUpdates":
		if len(pending) == 0 {
			time.Sleep(10 * time.Millisecond)
		}
		b, _ := json.Marshal(pending)
		if pending == nil {
			b = []byte("[]")
		}
		result = string(b)
	default:
		result = "true"
	}
	fmt.Fprintf(w, `{"ok":true,"result":%s}`, result)
}

func (f *fakeBotAPI) byMethod(method string) []apiRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiRequest
	for _, r := range f.requests {
		if r.Method == method {
			out = append(out, r)
		}
	}
	return out
}

func newRealBot(t *testing.T) (*telegram.RealTelegramBotAdapter, *fakeBotAPI) {
	t.Helper()
	fake := &fakeBotAPI{fail: map[string]bool{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	api, err := tgbotapi.NewBotAPIWithClient(testToken, srv.URL+"/bot%s/%s", srv.Client())
	if err != nil {
		t.Fatalf("NewBotAPIWithClient: %v", err)
	}
	bot, err := telegram.NewRealTelegramBotAdapterWithAPI(api, 2, nil)
	if err != nil {
		t.Fatalf("NewRealTelegramBotAdapterWithAPI: %v", err)
	}
	return bot, fake
}

func TestRealBot_Username(t *testing.T) {
	bot, _ := newRealBot(t)
	if got := bot.Username(); got != "sidhanie_bot" {
		t.Fatalf("unexpected username %q", got)
	}
}

func TestRealBot_SendButtons(t *testing.T) {
	bot, fake := newRealBot(t)
	rows := [][]adapter.InlineButton{
		{{Text: "🎵 MUSIC", Data: "show_list"}},
		{{Text: "TIKTOK", URL: "https://tiktok.example"}},
		{},
	}
	if err := bot.SendButtons(context.Background(), 42, "*hello*", rows); err != nil {
		t.Fatalf("SendButtons: %v", err)
	}

	reqs := fake.byMethod("sendMessage")
	if len(reqs) != 1 {
		t.Fatalf("expected one sendMessage, got %d", len(reqs))
	}
	form := reqs[0].Form
	if form.Get("chat_id") != "42" || form.Get("text") != "*hello*" || form.Get("parse_mode") != "Markdown" {
		t.Fatalf("unexpected form %v", form)
	}
	markup := form.Get("reply_markup")
	if !strings.Contains(markup, `"callback_data":"show_list"`) || !strings.Contains(markup, `"url":"https://tiktok.example"`) {
		t.Fatalf("unexpected markup %s", markup)
	}
}

func TestRealBot_SendMessageHasNoMarkup(t *testing.T) {
	bot, fake := newRealBot(t)
	if err := bot.SendMessage(context.Background(), 42, "plain"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if got := fake.byMethod("sendMessage")[0].Form.Get("reply_markup"); got != "" {
		t.Fatalf("expected no reply_markup, got %q", got)
	}
}

func TestRealBot_SendAudioByURL(t *testing.T) {
	bot, fake := newRealBot(t)
	audio := adapter.AudioMessage{
		URL:       "https://bot.example.com/music/01.intro.mp3",
		Title:     "intro",
		Performer: "Sidhanie",
		Caption:   "▶️ *NOW PLAYING*",
	}
	rows := [][]adapter.InlineButton{{{Text: "⏭ Next", Data: "next_02"}}}
	if err := bot.SendAudio(context.Background(), 42, audio, rows); err != nil {
		t.Fatalf("SendAudio: %v", err)
	}

	reqs := fake.byMethod("sendAudio")
	if len(reqs) != 1 {
		t.Fatalf("expected one sendAudio, got %d", len(reqs))
	}
	form := reqs[0].Form
	if form.Get("audio") != audio.URL {
		t.Fatalf("audio must be sent by url, got %q", form.Get("audio"))
	}
	if form.Get("title") != "intro" || form.Get("performer") != "Sidhanie" {
		t.Fatalf("unexpected metadata %v", form)
	}
	if !strings.Contains(form.Get("reply_markup"), "next_02") {
		t.Fatalf("unexpected markup %s", form.Get("reply_markup"))
	}
}

func TestRealBot_SendAudioRejected(t *testing.T) {
	bot, fake := newRealBot(t)
	fake.fail["sendAudio"] = true

	err := bot.SendAudio(context.Background(), 42, adapter.AudioMessage{URL: "https://x/music/a.mp3"}, nil)
	if err == nil || !strings.Contains(err.Error(), "sendAudio") {
		t.Fatalf("expected a sendAudio error, got %v", err)
	}
}

func TestRealBot_EditDeleteActionAnswer(t *testing.T) {
	bot, fake := newRealBot(t)
	ctx := context.Background()

	if err := bot.EditButtons(ctx, 42, 7, "list", [][]adapter.InlineButton{{{Text: "Back", Data: "back_to_main"}}}); err != nil {
		t.Fatalf("EditButtons: %v", err)
	}
	if err := bot.DeleteMessage(ctx, 42, 7); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}
	if err := bot.SendChatAction(ctx, 42, adapter.ActionUploadDocument); err != nil {
		t.Fatalf("SendChatAction: %v", err)
	}
	if err := bot.AnswerCallback(ctx, "cb-1", "Playing"); err != nil {
		t.Fatalf("AnswerCallback: %v", err)
	}

	if got := fake.byMethod("editMessageText")[0].Form.Get("message_id"); got != "7" {
		t.Fatalf("unexpected edited message id %q", got)
	}
	if got := fake.byMethod("deleteMessage")[0].Form.Get("message_id"); got != "7" {
		t.Fatalf("unexpected deleted message id %q", got)
	}
	if got := fake.byMethod("sendChatAction")[0].Form.Get("action"); got != "upload_document" {
		t.Fatalf("unexpected action %q", got)
	}
	answer := fake.byMethod("answerCallbackQuery")[0].Form
	if answer.Get("callback_query_id") != "cb-1" || answer.Get("text") != "Playing" {
		t.Fatalf("unexpected answer %v", answer)
	}
}

func TestRealBot_CancelledContext(t *testing.T) {
	bot, fake := newRealBot(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := bot.SendMessage(ctx, 42, "late"); err == nil {
		t.Fatal("expected cancelled context to fail the send")
	}
	if len(fake.byMethod("sendMessage")) != 0 {
		t.Fatal("no request should reach the api after cancellation")
	}
}

func TestRealBot_WebhookManagement(t *testing.T) {
	bot, fake := newRealBot(t)

	if err := bot.SetWebhook("https://bot.example.com/api/webhook"); err != nil {
		t.Fatalf("SetWebhook: %v", err)
	}
	if got := fake.byMethod("setWebhook")[0].Form.Get("url"); got != "https://bot.example.com/api/webhook" {
		t.Fatalf("unexpected webhook url %q", got)
	}

	info, err := bot.WebhookInfo()
	if err != nil {
		t.Fatalf("WebhookInfo: %v", err)
	}
	if info.URL != "https://bot.example.com/api/webhook" || info.PendingUpdateCount != 3 {
		t.Fatalf("unexpected info %+v", info)
	}

	if err := bot.DeleteWebhook(true); err != nil {
		t.Fatalf("DeleteWebhook: %v", err)
	}
	if got := fake.byMethod("deleteWebhook")[0].Form.Get("drop_pending_updates"); got != "true" {
		t.Fatalf("unexpected drop_pending_updates %q", got)
	}
}

func TestRealBot_SetMenuCommands(t *testing.T) {
	bot, fake := newRealBot(t)
	err := bot.SetMenuCommands(context.Background(), map[string]string{
		"help":  "usage",
		"start": "main menu",
	})
	if err != nil {
		t.Fatalf("SetMenuCommands: %v", err)
	}
	cmds := fake.byMethod("setMyCommands")[0].Form.Get("commands")
	if strings.Index(cmds, `"start"`) > strings.Index(cmds, `"help"`) {
		t.Fatalf("commands should keep menu order, got %s", cmds)
	}
}

type recordingHandler struct {
	mu     sync.Mutex
	ids    []int
	traces []string
}

func (h *recordingHandler) HandleUpdate(ctx context.Context, up tgbotapi.Update) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ids = append(h.ids, up.UpdateID)
	h.traces = append(h.traces, logging.TraceID(ctx))
	return nil
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.ids)
}

func TestRealBot_StartPollingDispatches(t *testing.T) {
	bot, fake := newRealBot(t)
	fake.updates = []tgbotapi.Update{{UpdateID: 100}, {UpdateID: 101}}
	h := &recordingHandler{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.StartPolling(ctx, h) }()

	deadline := time.After(5 * time.Second)
	for h.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("updates were not dispatched, got %d", h.count())
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("StartPolling did not return after cancel")
	}
	if len(fake.byMethod("deleteWebhook")) == 0 {
		t.Fatal("polling should clear the webhook first")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.traces[0] == "" || h.traces[0] == h.traces[1] {
		t.Fatalf("each update needs its own trace id, got %q", h.traces)
	}
}

func TestRealBot_StartPollingKeepsCallerTraceID(t *testing.T) {
	bot, fake := newRealBot(t)
	fake.updates = []tgbotapi.Update{{UpdateID: 200}}
	h := &recordingHandler{}

	ctx, cancel := context.WithCancel(logging.WithTraceID(context.Background(), "poll-1"))
	done := make(chan error, 1)
	go func() { done <- bot.StartPolling(ctx, h) }()

	deadline := time.After(5 * time.Second)
	for h.count() < 1 {
		select {
		case <-deadline:
			t.Fatal("update was not dispatched")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	<-done

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.traces[0] != "poll-1" {
		t.Fatalf("expected the caller trace id, got %q", h.traces[0])
	}
}
