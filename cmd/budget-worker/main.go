package main

import (
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"financetracker/internal/amqp"
	"financetracker/internal/cli"
	"financetracker/internal/log"
	"financetracker/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentBudget)
	logger.Info("Starting budget-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the budget worker", log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	monitor := services.NewBudgetMonitor(repo, client)
	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	runPass := func() {
		start := time.Now()
		res, err := monitor.Run(ctx)
		if err != nil {
			logger.Error("Budget monitor pass failed", log.FieldError, err, log.FieldOperation, log.OpMonitor)
			return
		}
		logger.Info("Budget monitor pass completed",
			log.FieldOperation, log.OpMonitor,
			"users", res.Users,
			"budgets", res.Budgets,
			"over_budget", res.OverBudget,
			"alerts_published", res.Published,
			"alerts_failed", res.Failed,
			log.FieldDuration, time.Since(start).Milliseconds())
	}

	// Passes never overlap; a slow pass delays the next one.
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := scheduler.AddFunc(cfg.BudgetMonitorSchedule, runPass); err != nil {
		logger.Error("Invalid budget monitor schedule", log.FieldError, err, "schedule", cfg.BudgetMonitorSchedule)
		os.Exit(1)
	}

	logger.Info("Budget monitor scheduled", "schedule", cfg.BudgetMonitorSchedule, "alerts_queue", client.AlertsQueue())
	runPass()
	scheduler.Start()

	cli.WaitForShutdown(ctx, done)
	stopped := scheduler.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(10 * time.Second):
		logger.Warn("Budget monitor pass still running at shutdown")
	}
	logger.Info("Budget worker stopped")
}
