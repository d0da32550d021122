package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"khata/internal/amqp"
	"khata/internal/budget"
	"khata/internal/cli"
	"khata/internal/log"
	"khata/internal/services"
	"khata/internal/summary"
	"khata/internal/voice"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentVoice)
	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer store.Close()

	budgets := budget.NewFileStore(cfg.BudgetFilePath)
	summaries := summary.NewService(store, 30*time.Second)

	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP, running without export queue",
				log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	commands := services.NewCommandService(store, budgets, summaries, publisher, logger)
	session := voice.NewSession(
		voice.NewTerminalListener(os.Stdin, os.Stdout),
		voice.NewTerminalSpeaker(os.Stdout),
		commands,
		logger,
		cfg.VoiceMaxAttempts,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		cancel()
	}()

	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Session ended with error", log.FieldError, err)
		os.Exit(1)
	}
}
