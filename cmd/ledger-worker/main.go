package main

import (
	"context"
	"errors"
	"os"
	"time"

	"financetracker/internal/amqp"
	"financetracker/internal/cli"
	"financetracker/internal/config"
	"financetracker/internal/ledger/google"
	"financetracker/internal/log"
	"financetracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentLedger)
	logger.Info("Starting ledger-worker")

	cfg := config.Load()
	if err := cfg.ValidateLedger(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err, log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	writer, err := google.New(initCtx, cfg.GoogleSpreadsheetID, cfg.GoogleLedgerSheet, google.Credentials{
		JSON: cfg.GoogleServiceAccountJSON,
		File: cfg.GoogleServiceAccountFile,
	})
	cancelInit()
	if err != nil {
		logger.Error("Failed to initialize Google Sheets ledger", log.FieldError, err, log.FieldErrorType, log.ErrorTypeNetwork)
		os.Exit(1)
	}
	logger.Info("Google Sheets ledger initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleLedgerSheet)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	ledgerWorker := worker.NewLedgerWorker(writer)

	err = client.ConsumeTransactionEvents(ctx, ledgerWorker.HandleTransactionEvent)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Ledger worker stopped")
}
