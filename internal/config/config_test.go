//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every variable LoadConfig reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"BOT_TOKEN", "BOT_MODE", "PUBLIC_HOST", "VERCEL_URL", "MEDIA_DIRS", "PORT", "LOG_LEVEL", "REDIS_URL"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "bot:\n  token: abc\n")

	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Bot.Mode != ModeWebhook {
		t.Errorf("expected webhook mode, got %q", cfg.Bot.Mode)
	}
	if cfg.Bot.WebhookPath != "/api/webhook" {
		t.Errorf("unexpected webhook path %q", cfg.Bot.WebhookPath)
	}
	if cfg.HTTP.Port != 8080 || cfg.HTTP.RequestTimeout != 30*time.Second {
		t.Errorf("unexpected http defaults: %+v", cfg.HTTP)
	}
	if cfg.Media.AudioPath != "/music/" {
		t.Errorf("unexpected audio path %q", cfg.Media.AudioPath)
	}
	if len(cfg.Media.Extensions) != 1 || cfg.Media.Extensions[0] != ".mp3" {
		t.Errorf("unexpected extensions %v", cfg.Media.Extensions)
	}
	if len(cfg.Media.Dirs) == 0 {
		t.Error("expected default candidate directories")
	}
	if cfg.Brand.Name != "Sidhanie" || cfg.Brand.Performer != "Sidhanie" {
		t.Errorf("unexpected brand defaults: %+v", cfg.Brand)
	}
	if len(cfg.Brand.Links) != len(DefaultLinks) {
		t.Errorf("expected %d default links, got %d", len(DefaultLinks), len(cfg.Brand.Links))
	}
}

func TestLoadConfig_FileValues(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
bot:
  token: abc
  mode: Polling
  webhook_path: hook
media:
  dirs: [/srv/a, /srv/b]
  extensions: [MP3, ogg]
  audio_path: /audio
  public_host: example.com/
http:
  request_timeout: 5s
`)
	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Bot.Mode != ModePolling {
		t.Errorf("expected polling, got %q", cfg.Bot.Mode)
	}
	if cfg.Bot.WebhookPath != "/hook" {
		t.Errorf("expected /hook, got %q", cfg.Bot.WebhookPath)
	}
	if cfg.Media.Extensions[0] != ".mp3" || cfg.Media.Extensions[1] != ".ogg" {
		t.Errorf("extensions not normalised: %v", cfg.Media.Extensions)
	}
	if cfg.Media.AudioPath != "/audio/" {
		t.Errorf("expected /audio/, got %q", cfg.Media.AudioPath)
	}
	if got := cfg.Media.PublicBaseURL(); got != "https://example.com" {
		t.Errorf("unexpected base url %q", got)
	}
	if got := cfg.WebhookURL(); got != "https://example.com/hook" {
		t.Errorf("unexpected webhook url %q", got)
	}
	if cfg.HTTP.RequestTimeout != 5*time.Second {
		t.Errorf("unexpected timeout %v", cfg.HTTP.RequestTimeout)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "from-env")
	t.Setenv("VERCEL_URL", "bot.vercel.app")
	t.Setenv("MEDIA_DIRS", "/x"+string(os.PathListSeparator)+"/y")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), false)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Bot.Token != "from-env" {
		t.Errorf("expected token from env, got %q", cfg.Bot.Token)
	}
	if cfg.Media.PublicHost != "bot.vercel.app" {
		t.Errorf("expected VERCEL_URL fallback, got %q", cfg.Media.PublicHost)
	}
	if len(cfg.Media.Dirs) != 2 || cfg.Media.Dirs[0] != "/x" || cfg.Media.Dirs[1] != "/y" {
		t.Errorf("unexpected dirs %v", cfg.Media.Dirs)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	clearEnv(t)

	if _, err := LoadConfig("", false); err == nil {
		t.Error("expected missing token to fail outside dev mode")
	}
	if _, err := LoadConfig("", true); err != nil {
		t.Errorf("expected dev mode to allow a missing token, got %v", err)
	}

	path := writeConfig(t, "bot:\n  token: abc\n  mode: carrier-pigeon\n")
	if _, err := LoadConfig(path, false); err == nil {
		t.Error("expected unknown mode to fail")
	}

	path = writeConfig(t, "bot:\n  token: abc\n  register_webhook: true\n")
	if _, err := LoadConfig(path, false); err == nil {
		t.Error("expected register_webhook without public host to fail")
	}

	path = writeConfig(t, "bot: [not, a, map]\n")
	if _, err := LoadConfig(path, false); err == nil {
		t.Error("expected malformed yaml to fail")
	}
}

func TestPublicBaseURL_KeepsScheme(t *testing.T) {
	m := MediaConfig{PublicHost: "http://localhost:8080/"}
	if got := m.PublicBaseURL(); got != "http://localhost:8080" {
		t.Fatalf("unexpected base url %q", got)
	}
	if got := (MediaConfig{}).PublicBaseURL(); got != "" {
		t.Fatalf("expected empty base url, got %q", got)
	}
}
