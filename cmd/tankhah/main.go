package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"tankhah/internal/amqp"
	"tankhah/internal/cache"
	"tankhah/internal/cli"
	"tankhah/internal/core"
	apphttp "tankhah/internal/http"
	"tankhah/internal/license"
	"tankhah/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("tankhah")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// The AMQP client is optional: without a broker the server still
	// persists everything locally, only the sheet export stalls.
	var publisher services.SyncPublisher
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, expense sync disabled", "error", err)
	} else {
		defer amqpClient.Close()
		publisher = amqpClient
	}

	statsCache := cache.NewLRUCache[core.DashboardStats](16, 5*time.Minute)
	cacheManager := cache.NewManager()
	cacheManager.Register(statsCache)
	cacheManager.StartCleanup(10 * time.Minute)

	licenses := license.NewService(repo.Licenses(), repo.Licenses(), cfg.License())

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Expenses:     services.NewExpenseService(repo, publisher, statsCache),
		Stats:        services.NewStatsService(repo, statsCache),
		Installments: services.NewInstallmentService(repo),
		Categories:   repo,
		Incomes:      repo,
		Budgets:      repo,
		Checks:       repo,
		Licenses:     licenses,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
	})

	logger.Info("Starting tankhah server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
