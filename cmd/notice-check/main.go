package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"rgccr-notice-check/internal/app"
	"rgccr-notice-check/internal/config"
	"rgccr-notice-check/internal/fetcher"
	"rgccr-notice-check/internal/notifier"
	"rgccr-notice-check/internal/observability"
	"rgccr-notice-check/internal/report"
	"rgccr-notice-check/internal/scraper"
	"rgccr-notice-check/internal/storage"
	"rgccr-notice-check/internal/storage/mssql"
	"rgccr-notice-check/internal/storage/statefile"
)

func main() {
	// A missing .env is fine; cron environments usually export directly.
	_ = godotenv.Load()

	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := observability.NewLogger(
		cfg.Observability.LogPath,
		cfg.Observability.LogLevel,
		observability.RotationConfig{
			MaxSizeMB:  cfg.Observability.LogMaxSizeMB,
			MaxBackups: cfg.Observability.LogMaxBackups,
			MaxAgeDays: cfg.Observability.LogMaxAgeDays,
		},
	)

	store, cleanup, err := buildStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open state store", "driver", cfg.Storage.Driver, "error", err.Error())
		os.Exit(1)
	}
	defer cleanup()

	var tgClient *notifier.TelegramClient
	if cfg.Notify.Telegram.Token != "" {
		tgClient = notifier.NewTelegramClient(cfg.Notify.Telegram.Token)
	}

	var channels []notifier.Channel
	if cfg.Notify.Email.Enabled {
		channels = append(channels, notifier.NewEmailChannel(
			cfg.Notify.Email.Host,
			cfg.Notify.Email.Port,
			cfg.Notify.Email.Sender,
			cfg.Notify.Email.SenderName,
			cfg.Notify.Email.Password,
			cfg.EmailRecipients(),
			cfg.Notify.DigestLimit,
			logger,
		))
	}
	if cfg.Notify.Telegram.Enabled {
		channels = append(channels, notifier.NewTelegramChannel(
			tgClient,
			cfg.TelegramChatIDs(),
			cfg.Notify.DigestLimit,
			logger,
		))
	}

	orch := app.NewOrchestrator(
		cfg,
		logger,
		fetcher.NewFetcher(cfg, logger),
		scraper.NewScraper(&cfg.Selectors, cfg.Source.NoticeLimit),
		store,
		notifier.NewDispatcher(logger, channels...),
		report.NewTelegramReporter(tgClient, cfg.Report.TelegramChatID, logger),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetRunTimeout())
	defer cancel()

	if _, err := orch.Run(ctx); err != nil {
		os.Exit(1)
	}
}

func buildStore(cfg *config.Config, logger *observability.Logger) (storage.Repository, func(), error) {
	switch cfg.Storage.Driver {
	case "mssql":
		repo, err := mssql.NewRepository(cfg.Storage.DSN, cfg.GetCommandTimeout(), logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				logger.Warn("failed to close database", "error", err.Error())
			}
		}, nil
	default:
		return statefile.NewRepository(cfg.Storage.Path), func() {}, nil
	}
}
