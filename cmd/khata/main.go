package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"khata/internal/amqp"
	"khata/internal/budget"
	"khata/internal/cache"
	"khata/internal/cli"
	apphttp "khata/internal/http"
	"khata/internal/log"
	"khata/internal/services"
	"khata/internal/summary"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	budgets := budget.NewFileStore(cfg.BudgetFilePath)
	summaries := summary.NewService(store, 30*time.Second)

	caches := cache.NewManager()
	summaries.RegisterCleanup(caches)
	caches.StartCleanup(5 * time.Minute)

	var publisher services.Publisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP, running without export queue",
				log.FieldError, err)
		} else {
			amqpClient = client
			publisher = client
		}
	}

	commands := services.NewCommandService(store, budgets, summaries, publisher, logger)
	srv := apphttp.NewServer(":"+cfg.Port, commands, store, summaries, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", log.FieldError, err)
			}
		}
		if err := store.Close(); err != nil {
			logger.Error("Storage close error", log.FieldError, err)
		}
	})

	logger.Info("Starting khata server",
		"port", cfg.Port,
		"db", cfg.SQLiteDBPath,
		"amqp", cfg.AMQPURL != "")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
