package main

import (
	"context"
	"errors"
	"os"
	"time"

	"financas/internal/amqp"
	"financas/internal/backend"
	"financas/internal/cli"
	"financas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("calendar-worker")
	logger.Info("Starting calendar-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required to consume reminder notices")
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid calendar backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize calendar backend", "error", err, "backend", cfg.CalendarBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Calendar backend cleanup failed", "error", err)
			}
		}()
	}

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	calendarWorker := worker.NewCalendarWorker(result.Backend)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		synced, removed, failed := calendarWorker.Stats()
		logger.Info("Calendar worker totals", "synced", synced, "removed", removed, "failed", failed)
	})

	go func() {
		err := consumer.ConsumeReminderNotices(ctx, calendarWorker.HandleReminderNotice)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Notice consumption failed", "error", err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Calendar-worker stopped")
}
