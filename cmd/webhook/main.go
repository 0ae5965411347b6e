// File: cmd/webhook/main.go
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"telegram-media-navigator/internal/config"
	tele "telegram-media-navigator/internal/infra/adapters/telegram"
	"telegram-media-navigator/internal/infra/logging"
)

// Registers, removes or inspects the bot webhook.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	del := flag.Bool("delete", false, "remove the webhook instead of setting it")
	dropPending := flag.Bool("drop-pending", false, "with -delete, also drop pending updates")
	info := flag.Bool("info", false, "print the current webhook info and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	bot, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, logger)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}

	switch {
	case *info:
		wi, err := bot.WebhookInfo()
		if err != nil {
			log.Fatalf("webhook info: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(wi); err != nil {
			log.Fatalf("encode: %v", err)
		}
	case *del:
		if err := bot.DeleteWebhook(*dropPending); err != nil {
			log.Fatalf("delete webhook: %v", err)
		}
		logger.Info().Str("bot", bot.Username()).Bool("drop_pending", *dropPending).Msg("webhook removed")
	default:
		url := cfg.WebhookURL()
		if url == "" {
			log.Fatalf("media.public_host (or PUBLIC_HOST / VERCEL_URL) is required to register the webhook")
		}
		if err := bot.SetWebhook(url); err != nil {
			log.Fatalf("set webhook: %v", err)
		}
		logger.Info().Str("bot", bot.Username()).Str("url", url).Msg("webhook registered")
	}
}
