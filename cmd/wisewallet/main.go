package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"wisewallet/internal/amqp"
	"wisewallet/internal/assistant"
	"wisewallet/internal/auth"
	"wisewallet/internal/cache"
	"wisewallet/internal/cli"
	apphttp "wisewallet/internal/http"
	"wisewallet/internal/services"
	"wisewallet/internal/storage/memory"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	// Choose data backend (default: sqlite).
	var (
		users        auth.UserStore
		transactions services.TransactionStore
		budgets      services.BudgetStore
		categories   services.CategoryStore
		goals        services.GoalStore
		wealth       services.WealthStore
	)
	switch cfg.DataBackend {
	case "memory":
		store := memory.New()
		users, transactions, budgets, categories, goals, wealth = store, store, store, store, store, store
		logger.Info("Initialized memory backend")
	default:
		repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
		defer repo.Close()
		users, transactions, budgets, categories, goals, wealth = repo, repo, repo, repo, repo, repo
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	}

	// Change notifications are optional; without a broker the API still
	// works, the refresh worker just never hears about writes.
	var notifier services.ChangeNotifier
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		notifier = amqpClient
		logger.Info("AMQP notifications enabled", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP notifications disabled - no AMQP_URL provided")
	}

	// The assistant is optional in the same way.
	var generator assistant.Generator
	if cfg.GeminiAPIKey != "" {
		gen, err := assistant.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}
		generator = gen
		logger.Info("Assistant enabled", "model", cfg.GeminiModel)
	} else {
		logger.Info("Assistant disabled - no GEMINI_API_KEY provided")
	}

	var reconcilerOpts []services.ReconcilerOption
	if cfg.SharedBudgets {
		reconcilerOpts = append(reconcilerOpts, services.WithSharedBudgets())
		logger.Info("Shared budget mode enabled")
	}

	srv := apphttp.NewServer(cfg, apphttp.Deps{
		Auth:      auth.NewService(users, cfg.JWTSecret, cfg.TokenTTL),
		Ledger:    services.NewLedgerService(transactions, categories, notifier),
		Budgets:   services.NewBudgetService(budgets, notifier, cfg.SharedBudgets),
		Goals:     services.NewGoalService(goals, notifier),
		Wealth:    services.NewWealthService(wealth, notifier),
		Insights:  services.NewInsightService(transactions, budgets, categories, cfg.SharedBudgets),
		Reconcile: services.NewReconciler(transactions, budgets, categories, reconcilerOpts...),
		Snapshots: cache.NewSnapshotCache(256, 5*time.Minute),
		Assistant: assistant.NewService(generator),
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting wisewallet server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
