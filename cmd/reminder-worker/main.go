package main

import (
	"context"
	"os"
	"time"

	"financas/internal/amqp"
	"financas/internal/api"
	"financas/internal/cli"
	"financas/internal/services"
	"financas/internal/session"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("reminder-worker")
	logger.Info("Starting reminder-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required to publish reminder notices")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	client, err := api.New(api.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.APITimeout})
	if err != nil {
		logger.Error("Failed to initialize API client", "error", err, "base_url", cfg.APIBaseURL)
		os.Exit(1)
	}

	publisher, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	notices := services.NewNoticeService(
		session.NewManager(repo),
		client,
		repo,
		publisher,
		cfg.DueSoonDays,
		cfg.Location(),
	)

	scanCfg := services.DefaultNoticeScannerConfig()
	scanCfg.ScanInterval = cfg.ReminderScanInterval
	scanCfg.Retention = cfg.NoticeRetention
	scanner := services.NewNoticeScanner(notices, scanCfg)

	logger.Info("Reminder scanner configured",
		"interval", scanCfg.ScanInterval,
		"due_soon_days", cfg.DueSoonDays,
		"timezone", cfg.Timezone,
		"sqlite_db", cfg.SQLiteDBPath)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if !scanner.IsRunning() {
			return
		}
		if err := scanner.Stop(ctx); err != nil {
			logger.Warn("Reminder scanner did not stop cleanly", "error", err)
		}
	})

	if err := scanner.Start(ctx); err != nil {
		logger.Error("Failed to start reminder scanner", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Reminder-worker stopped")
}
