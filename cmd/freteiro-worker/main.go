package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"freteiro/internal/cli"
	"freteiro/internal/events"
	"freteiro/internal/store"
	"freteiro/internal/worker"
)

func main() {
	logger := cli.Setup("worker")
	cfg := cli.LoadConfig(logger)

	logger.Info("Starting freteiro-worker", "backend", cfg.DataBackend, "backup_dir", cfg.BackupDir)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the backup worker")
		os.Exit(1)
	}

	st, closeStore := cli.OpenStore(logger, cfg)
	defer func() { _ = closeStore() }()

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	bw, err := worker.NewBackupWorker(st, cfg.BackupDir, store.Keys)
	if err != nil {
		logger.Error("Failed to initialize backup worker", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catch up on anything persisted while the worker was down.
	if err := bw.BackupAll(ctx); err != nil {
		logger.Error("Startup backup sweep failed", "error", err)
		// Keep running; the consumer and the periodic sweep will retry.
	}

	g, ctx := errgroup.WithContext(ctx)

	// Event-driven backups.
	g.Go(func() error {
		return client.Consume(ctx, func(msg *events.CollectionChangedMessage) error {
			return bw.HandleChange(ctx, msg)
		})
	})

	// Periodic full sweep, in case events were lost.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.BackupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := bw.BackupAll(ctx); err != nil {
					logger.Error("Periodic backup sweep failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped")
}
