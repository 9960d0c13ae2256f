package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"financas/internal/api"
	"financas/internal/cache"
	"financas/internal/cli"
	apphttp "financas/internal/http"
	"financas/internal/services"
	"financas/internal/session"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("financas")
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	sessions := session.NewManager(repo)
	if err := sessions.Init(context.Background()); err != nil {
		logger.Error("Failed to restore sessions", "error", err)
		os.Exit(1)
	}

	client, err := api.New(api.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.APITimeout})
	if err != nil {
		logger.Error("Failed to initialize API client", "error", err, "base_url", cfg.APIBaseURL)
		os.Exit(1)
	}

	clock := services.SystemClock(cfg.Location())
	viewCache := services.NewViewCache(cfg.ViewCacheSize, cfg.ViewCacheTTL)
	caches := cache.NewManager()
	viewCache.Register(caches)
	caches.StartCleanup(time.Minute)

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		CookieSecure:       cfg.SessionCookieSecure,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	}, apphttp.Deps{
		Auth:      client,
		Sessions:  sessions,
		Dashboard: services.NewDashboardService(client, viewCache, clock).WithFetchTimeout(cfg.APITimeout),
		Goals:     services.NewGoalService(client, clock),
		Reminders: services.NewReminderService(client, services.NewFetchGuard(), clock),
		ViewCache: viewCache,
		Ready:     repo,
		Clock:     clock,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("Failed to initialize HTTP server", "error", err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		caches.Stop()
	})

	logger.Info("Starting financas server",
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
		"timezone", cfg.Timezone)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
