package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wisewallet/internal/amqp"
	"wisewallet/internal/cache"
	"wisewallet/internal/cli"
	"wisewallet/internal/services"
	"wisewallet/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting wisewallet-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the refresh worker")
		os.Exit(1)
	}

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	var reconcilerOpts []services.ReconcilerOption
	if cfg.SharedBudgets {
		reconcilerOpts = append(reconcilerOpts, services.WithSharedBudgets())
		logger.Info("Shared budget mode enabled")
	}
	reconcile := services.NewReconciler(sqliteRepo, sqliteRepo, sqliteRepo, reconcilerOpts...)
	snapshots := cache.NewSnapshotCache(256, 5*time.Minute)

	cacheManager := cache.NewManager()
	cacheManager.Register(snapshots)
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	refreshWorker := worker.NewRefreshWorker(reconcile, snapshots, cfg.RefreshDebounce)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := amqpClient.ConsumeTableChanges(ctx, refreshWorker.HandleTableChanged); err != nil {
			if err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()
	refreshWorker.Stop()
	logger.Info("Worker shutdown complete")
}
