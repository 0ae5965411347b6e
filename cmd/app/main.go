// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram-media-navigator/internal/application"
	"telegram-media-navigator/internal/config"
	"telegram-media-navigator/internal/domain/ports/adapter"
	tele "telegram-media-navigator/internal/infra/adapters/telegram"
	"telegram-media-navigator/internal/infra/i18n"
	"telegram-media-navigator/internal/infra/logging"
	"telegram-media-navigator/internal/infra/media"
	"telegram-media-navigator/internal/infra/metrics"
	red "telegram-media-navigator/internal/infra/redis"
	"telegram-media-navigator/internal/infra/web"
	"telegram-media-navigator/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: console logs, token optional (noop bot)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Fixed payloads ----
	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Brand.Language)
	if err != nil {
		logger.Fatal().Err(err).Str("lang", cfg.Brand.Language).Msg("i18n")
	}
	logger.Info().Str("lang", tr.Lang()).Msg("locale loaded")

	// ---- Use cases ----
	baseURL := cfg.Media.PublicBaseURL()
	if baseURL == "" {
		logger.Warn().Msg("media.public_host is empty; audio URLs will not be reachable by Telegram")
	}
	catalogUC := usecase.NewCatalogUseCase(cfg.Media.Dirs, cfg.Media.Extensions, logger)
	playerUC := usecase.NewPlayerUseCase(baseURL, cfg.Media.AudioPath, cfg.Brand.Performer, media.NewTagReader(), logger)

	// ---- Telegram ----
	var (
		bot     adapter.TelegramBotAdapter
		realBot *tele.RealTelegramBotAdapter
	)
	if cfg.Bot.Token == "" {
		logger.Warn().Msg("bot.token is empty; using the noop telegram adapter")
		bot = tele.NewNoopBotAdapter(logger)
	} else {
		realBot, err = tele.NewRealTelegramBotAdapter(&cfg.Bot, logger)
		if err != nil {
			logger.Fatal().Err(err).Str("token", logging.Redact(cfg.Bot.Token, cfg.Runtime.Dev)).Msg("telegram")
		}
		bot = realBot
		logger.Info().Str("bot", realBot.Username()).Msg("telegram connected")
	}

	// ---- Facade ----
	facade, err := application.NewBotFacade(catalogUC, playerUC, bot, tr, brandFromConfig(cfg.Brand), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("bot facade")
	}

	// ---- Redis rate limiting (optional) ----
	var routerOpts []tele.RouterOption
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		limiter := red.NewRateLimiter(redisClient, cfg.Redis.RateLimit, cfg.Redis.RateWindow)
		routerOpts = append(routerOpts, tele.WithLimiter(limiter, red.ChatEventKey))
		logger.Info().Int("limit", cfg.Redis.RateLimit).Dur("window", cfg.Redis.RateWindow).Msg("rate limiting enabled")
	}

	router, err := tele.NewUpdateRouter(facade, bot, tr, logger, routerOpts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("update router")
	}

	if realBot != nil {
		if err := realBot.SetMenuCommands(ctx, facade.MenuCommands()); err != nil {
			logger.Warn().Err(err).Msg("failed to set menu commands")
		}
		switch cfg.Bot.Mode {
		case config.ModePolling:
			go func() {
				if err := realBot.StartPolling(ctx, router); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error().Err(err).Msg("telegram polling stopped")
				}
			}()
		case config.ModeWebhook:
			if cfg.Bot.RegisterWebhook {
				if err := realBot.SetWebhook(cfg.WebhookURL()); err != nil {
					logger.Fatal().Err(err).Msg("register webhook")
				}
				logger.Info().Str("url", cfg.WebhookURL()).Msg("webhook registered")
			}
		}
	} else if cfg.Bot.Mode == config.ModePolling {
		logger.Warn().Msg("polling needs a bot token; only the HTTP endpoints are served")
	}

	// ---- HTTP server ----
	srv, err := web.NewServer(router, catalogUC, web.Options{
		WebhookPath:    cfg.Bot.WebhookPath,
		AudioPath:      cfg.Media.AudioPath,
		LivenessText:   facade.LivenessText(),
		RequestTimeout: cfg.HTTP.RequestTimeout,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("http server")
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().
			Str("addr", server.Addr).
			Str("mode", cfg.Bot.Mode).
			Str("webhook_path", cfg.Bot.WebhookPath).
			Str("audio_path", cfg.Media.AudioPath).
			Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")
	if realBot != nil {
		realBot.StopPolling()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}

func brandFromConfig(b config.BrandConfig) application.Brand {
	links := make([]adapter.InlineButton, 0, len(b.Links))
	for _, l := range b.Links {
		if l.URL == "" {
			continue
		}
		links = append(links, adapter.InlineButton{Text: l.Text, URL: l.URL})
	}
	return application.Brand{Name: b.Name, Admin: b.Admin, Links: links}
}
