package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"tankhah/internal/amqp"
	"tankhah/internal/cli"
	"tankhah/internal/services"
	"tankhah/internal/sheets"
	gsheet "tankhah/internal/sheets/google"
	"tankhah/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("tankhah-worker")
	logger.Info("Starting tankhah-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	var (
		writer  sheets.ExpenseWriter
		deleter sheets.ExpenseDeleter
	)
	if cfg.ExportEnabled {
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsFile: cfg.GoogleCredentialsFile,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer, deleter = client, client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled, consuming without export")
	}

	if err := amqpClient.SetPrefetch(cfg.SyncBatchSize); err != nil {
		logger.Warn("Failed to set consumer prefetch", "error", err)
	}

	syncWorker := worker.NewSyncWorker(repo, writer, deleter)
	installments := services.NewInstallmentService(repo)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := amqpClient.ConsumeExpenseSync(gctx, func(msg *amqp.ExpenseSyncMessage) error {
			return syncWorker.HandleMessage(gctx, msg)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	// Overdue sweep: installment payments past their due date flip to
	// overdue on the sync interval.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				n, err := installments.RefreshOverdue(gctx)
				if err != nil {
					logger.Error("Overdue sweep failed", "error", err)
					continue
				}
				if n > 0 {
					logger.Info("Marked overdue payments", "count", n)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
