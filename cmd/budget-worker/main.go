package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetmanage/internal/amqp"
	"budgetmanage/internal/cli"
	"budgetmanage/internal/log"
	gsheet "budgetmanage/internal/sheets/google"
	"budgetmanage/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateExport(); err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}
	if cfg.DataBackend == "memory" {
		logger.Warn("Memory backend is process local, the worker will not see API changes")
	}

	logger.Info("Starting budget-worker")

	// The worker only reads; events come from the consumer below.
	storeCfg := *cfg
	storeCfg.AMQPURL = ""
	result := cli.InitBackend(context.Background(), logger, &storeCfg)

	exporter, err := gsheet.New(context.Background(), gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetPrefix:     cfg.GoogleSheetPrefix,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets exporter", err)
	}
	logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}

	exportWorker := worker.NewExportWorker(result.Store, exporter, cfg.ExportConcurrency)

	// Both loops stop on ctx; cleanup waits for them before closing the
	// consumer and the store they use.
	var loops errgroup.Group
	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := cli.WaitFor(shutdownCtx, loops.Wait); err != nil {
			logger.Warn("Worker loops did not stop in time", log.FieldError, err)
		}
		if err := consumer.Close(); err != nil {
			logger.Error("AMQP close error", log.FieldError, err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	loops.Go(func() error {
		exportWorker.Run(ctx, cfg.ExportInterval)
		return nil
	})
	loops.Go(func() error {
		err := consumer.ConsumeBudgetChanged(ctx, exportWorker.HandleBudgetChanged)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
		}
		return nil
	})

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
