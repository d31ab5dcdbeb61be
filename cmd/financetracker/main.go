package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"financetracker/internal/amqp"
	"financetracker/internal/auth"
	"financetracker/internal/cache"
	"financetracker/internal/cli"
	"financetracker/internal/config"
	apphttp "financetracker/internal/http"
	"financetracker/internal/log"
	"financetracker/internal/services"
)

const dashboardCacheSize = 1000

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP is optional; without it transaction events are dropped.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled - transaction events will not be published")
	}

	cacheManager := cache.NewManager()
	dashboardCache := newDashboardCache(logger, cfg, cacheManager)
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	dashboard := services.NewDashboardService(repo, dashboardCache)
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		DB:           repo,
		Issuer:       issuer,
		Accounts:     services.NewAccountService(repo, issuer),
		Transactions: services.NewTransactionService(repo, publisher, dashboard),
		Categories:   services.NewCategoryService(repo),
		Budgets:      services.NewBudgetService(repo, dashboard),
		Dashboard:    dashboard,
		Logger:       logger,
	}, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting finance tracker server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"sqlite_db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		return
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// newDashboardCache prefers Redis when REDIS_ADDR is set and reachable,
// falling back to an in-process LRU swept by manager.
func newDashboardCache(logger *log.Logger, cfg *config.Config, manager *cache.Manager) cache.Cache[services.Dashboard] {
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
		if err == nil {
			logger.Info("Using Redis dashboard cache", "addr", cfg.RedisAddr)
			return cache.NewRedisCache[services.Dashboard](client, "financetracker:dashboard", cfg.CacheTTL)
		}
		logger.Warn("Redis unavailable, using in-process dashboard cache", log.FieldError, err, "addr", cfg.RedisAddr)
	}
	lru := cache.NewLRUCache[services.Dashboard](dashboardCacheSize, cfg.CacheTTL)
	manager.Register(lru)
	return lru
}
