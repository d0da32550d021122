package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"khata/internal/amqp"
	"khata/internal/budget"
	"khata/internal/cli"
	"khata/internal/log"
	"khata/internal/sheets"
	gsheet "khata/internal/sheets/google"
	"khata/internal/sheets/memory"
	"khata/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting khata-worker")

	store := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer store.Close()

	var appender sheets.ExpenseAppender
	if cfg.SheetsConfigured() {
		client, err := gsheet.NewClient(context.Background(), cfg)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		appender = client
		logger.Info("Google Sheets client initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	} else {
		appender = memory.NewAppender()
		logger.Info("Sheets export disabled, using in-memory appender")
	}

	budgets := budget.NewFileStore(cfg.BudgetFilePath)
	evaluator := budget.NewEvaluator(budgets, store)
	exportWorker := worker.NewExportWorker(store, appender, evaluator, logger,
		cfg.ExportBatchSize, cfg.ExportInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return exportWorker.Run(groupCtx)
	})

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		group.Go(func() error {
			return amqpClient.ConsumeExpenseRecorded(groupCtx, func(msg *amqp.ExpenseRecordedMessage) error {
				return exportWorker.HandleExpenseRecorded(groupCtx, msg)
			})
		})
	} else {
		logger.Info("AMQP disabled, relying on the periodic sweep only")
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
