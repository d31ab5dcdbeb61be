// Command seed-demo registers a demo user and fills a few months of
// transactions and budgets so the dashboard has something to show.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"financetracker/internal/auth"
	"financetracker/internal/cli"
	"financetracker/internal/log"
	"financetracker/internal/services"
)

func main() {
	months := flag.Int("months", 3, "number of months of history to generate")
	perMonth := flag.Int("per-month", 30, "expenses generated per month")
	seed := flag.Int64("seed", 0, "random seed (0 picks one)")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	f := gofakeit.New(*seed)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	accounts := services.NewAccountService(repo, issuer)
	categories := services.NewCategoryService(repo)
	transactions := services.NewTransactionService(repo, nil, nil)
	budgets := services.NewBudgetService(repo, nil)

	form := demoAccount(f)
	session, err := accounts.Register(ctx, form)
	if err != nil {
		logger.Error("Failed to register demo user", log.FieldError, err, "username", form.Username)
		os.Exit(1)
	}
	userID := session.User.ID

	cats, err := categories.List(ctx, userID)
	if err != nil {
		logger.Error("Failed to list categories", log.FieldError, err)
		os.Exit(1)
	}

	created := 0
	for _, tx := range demoTransactions(f, cats, today(), *months, *perMonth) {
		if _, err := transactions.Create(ctx, userID, tx); err != nil {
			logger.Error("Failed to create transaction", log.FieldError, err, "date", tx.Date.String())
			os.Exit(1)
		}
		created++
	}
	for _, b := range demoBudgets(f, cats) {
		if _, err := budgets.Create(ctx, userID, b); err != nil {
			logger.Error("Failed to create budget", log.FieldError, err, "category_id", b.CategoryID)
			os.Exit(1)
		}
	}

	logger.Info("Demo data created",
		log.FieldUserID, userID,
		"username", form.Username,
		"password", demoPassword,
		"transactions", created)
}
