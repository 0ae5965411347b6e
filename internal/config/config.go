// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ModeWebhook = "webhook"
	ModePolling = "polling"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token           string `yaml:"token"`
	Mode            string `yaml:"mode"` // webhook | polling
	WebhookPath     string `yaml:"webhook_path"`
	RegisterWebhook bool   `yaml:"register_webhook"` // call setWebhook on startup
	Workers         int    `yaml:"workers"`          // polling workers
	Debug           bool   `yaml:"debug"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type MediaConfig struct {
	Dirs       []string `yaml:"dirs"`       // candidate audio directories, first existing wins
	Extensions []string `yaml:"extensions"` // matched case-insensitively
	AudioPath  string   `yaml:"audio_path"` // URL path segment audio files are served under
	PublicHost string   `yaml:"public_host"`
}

type LinkConfig struct {
	Text string `yaml:"text"`
	URL  string `yaml:"url"`
}

type BrandConfig struct {
	Name      string       `yaml:"name"`
	Performer string       `yaml:"performer"`
	Admin     string       `yaml:"admin"`
	Language  string       `yaml:"language"`
	Links     []LinkConfig `yaml:"links"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL        string        `yaml:"url"` // empty disables rate limiting
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

type Config struct {
	Bot   BotConfig   `yaml:"bot"`
	HTTP  HTTPConfig  `yaml:"http"`
	Media MediaConfig `yaml:"media"`
	Brand BrandConfig `yaml:"brand"`
	Log   LogConfig   `yaml:"log"`
	Redis RedisConfig `yaml:"redis"`

	Runtime RuntimeConfig `yaml:"-"`
}

// DefaultLinks are the social links shown when brand.links is empty.
var DefaultLinks = []LinkConfig{
	{Text: "📱 TIKTOK", URL: "https://www.tiktok.com/@sidhanie"},
	{Text: "📸 INSTAGRAM", URL: "https://www.instagram.com/sidhanie06"},
	{Text: "🎥 YOUTUBE", URL: "https://www.youtube.com/@sidhanie06"},
	{Text: "🎧 SPOTIFY", URL: "https://open.spotify.com/user/your_id"},
}

// LoadConfig reads the YAML file at path, then applies .env and environment overrides.
// A missing file is not an error so the bot can run from the environment alone.
func LoadConfig(path string, dev bool) (*Config, error) {
	// godotenv never overrides variables that are already set.
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Bot.Token = v
	}
	if v := os.Getenv("BOT_MODE"); v != "" {
		cfg.Bot.Mode = v
	}
	if v := os.Getenv("PUBLIC_HOST"); v != "" {
		cfg.Media.PublicHost = v
	} else if v := os.Getenv("VERCEL_URL"); v != "" && cfg.Media.PublicHost == "" {
		cfg.Media.PublicHost = v
	}
	if v := os.Getenv("MEDIA_DIRS"); v != "" {
		cfg.Media.Dirs = filepath.SplitList(v)
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Port = p
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = ModeWebhook
	}
	cfg.Bot.Mode = strings.ToLower(strings.TrimSpace(cfg.Bot.Mode))
	if cfg.Bot.WebhookPath == "" {
		cfg.Bot.WebhookPath = "/api/webhook"
	}
	if !strings.HasPrefix(cfg.Bot.WebhookPath, "/") {
		cfg.Bot.WebhookPath = "/" + cfg.Bot.WebhookPath
	}
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}

	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 30 * time.Second
	}

	if len(cfg.Media.Dirs) == 0 {
		cfg.Media.Dirs = []string{"./music", "/var/task/music", "/app/music"}
	}
	if len(cfg.Media.Extensions) == 0 {
		cfg.Media.Extensions = []string{".mp3"}
	}
	for i, ext := range cfg.Media.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Media.Extensions[i] = ext
	}
	cfg.Media.AudioPath = normalizeAudioPath(cfg.Media.AudioPath)

	if cfg.Brand.Name == "" {
		cfg.Brand.Name = "Sidhanie"
	}
	if cfg.Brand.Performer == "" {
		cfg.Brand.Performer = cfg.Brand.Name
	}
	if cfg.Brand.Admin == "" {
		cfg.Brand.Admin = "@sidhanie06"
	}
	if cfg.Brand.Language == "" {
		cfg.Brand.Language = "id"
	}
	if len(cfg.Brand.Links) == 0 {
		cfg.Brand.Links = append([]LinkConfig(nil), DefaultLinks...)
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	if cfg.Redis.RateLimit <= 0 {
		cfg.Redis.RateLimit = 30
	}
	if cfg.Redis.RateWindow <= 0 {
		cfg.Redis.RateWindow = time.Minute
	}
}

func (c *Config) validate() error {
	if c.Bot.Token == "" && !c.Runtime.Dev {
		return errors.New("bot.token is required")
	}
	if c.Bot.Mode != ModeWebhook && c.Bot.Mode != ModePolling {
		return fmt.Errorf("bot.mode must be %q or %q, got %q", ModeWebhook, ModePolling, c.Bot.Mode)
	}
	if c.Bot.RegisterWebhook && c.Media.PublicHost == "" {
		return errors.New("media.public_host is required to register the webhook")
	}
	return nil
}

// PublicBaseURL returns the scheme and host audio URLs and the webhook are built on.
func (m MediaConfig) PublicBaseURL() string {
	host := strings.TrimRight(strings.TrimSpace(m.PublicHost), "/")
	if host == "" {
		return ""
	}
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "https://" + host
}

// WebhookURL is the public address Telegram should deliver updates to.
func (c *Config) WebhookURL() string {
	base := c.Media.PublicBaseURL()
	if base == "" {
		return ""
	}
	return base + c.Bot.WebhookPath
}

func normalizeAudioPath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return "/music/"
	}
	return "/" + p + "/"
}
