package main

import (
	"context"
	"errors"
	"os"
	"time"

	"presupuesto/internal/amqp"
	"presupuesto/internal/cli"
	"presupuesto/internal/ledger/sheets"
	applog "presupuesto/internal/log"
	"presupuesto/internal/services"
	"presupuesto/internal/storage"
	"presupuesto/internal/worker"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentWorker)
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Starting presupuesto-worker")

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	mirror, err := sheets.New(context.Background(), sheets.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		TransactionsBase:   cfg.GoogleSheetName,
		CardsSheet:         cfg.GoogleCardsSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	procCfg := services.DefaultSyncProcessorConfig()
	procCfg.PollInterval = cfg.SyncInterval
	procCfg.BatchSize = cfg.SyncBatchSize
	processor := services.NewSyncProcessor(repo, mirror, procCfg)
	syncWorker := worker.NewSyncWorker(processor)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		logger.Info("Shutting down worker...")
		if err := processor.Stop(ctx); err != nil {
			logger.Warn("Sync processor did not stop cleanly", "error", err)
		}
	})

	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start sync processor", "error", err)
		os.Exit(1)
	}

	// Drain what accumulated while the worker was down before taking events.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", "error", err)
	}

	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled, relying on periodic sync", "interval", cfg.SyncInterval)
	} else {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, relying on periodic sync", "error", err)
		} else {
			defer client.Close()
			go func() {
				err := client.ConsumeLedgerEvents(ctx, syncWorker.HandleEvent)
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("Message consumption stopped, relying on periodic sync", "error", err)
				}
			}()
		}
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
