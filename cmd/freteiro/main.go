package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freteiro/internal/auth"
	"freteiro/internal/cli"
	"freteiro/internal/events"
	apphttp "freteiro/internal/http"
	"freteiro/internal/ledger"
	"freteiro/internal/shift"
	"freteiro/internal/store"
)

func main() {
	logger := cli.Setup("server")
	cfg := cli.LoadConfig(logger)

	logger.Info("Starting freteiro", "port", cfg.Port, "backend", cfg.DataBackend)

	st, closeStore := cli.OpenStore(logger, cfg)
	defer func() { _ = closeStore() }()

	// Change events are optional: without a broker the engines simply
	// skip notifications.
	var notifier *events.Client
	if cfg.AMQPURL != "" {
		var err error
		notifier, err = events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP, change events disabled", "error", err)
			notifier = nil
		} else {
			defer notifier.Close()
			logger.Info("Change events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	ctx := context.Background()
	var ledgerNotifier ledger.Notifier
	var shiftNotifier shift.Notifier
	if notifier != nil {
		ledgerNotifier = notifier
		shiftNotifier = notifier
	}

	freights := ledger.NewEngine(ctx, store.KeyFreights, st, nil, ledgerNotifier)
	expenses := ledger.NewEngine(ctx, store.KeyExpenses, st, nil, ledgerNotifier)
	tracker := shift.NewTracker(ctx, shift.Config{
		Key:       store.KeyTimeEntries,
		Store:     st,
		Notifier:  shiftNotifier,
		TickEvery: cfg.TickInterval,
	})

	relay := auth.NewRelay(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.AppURL)

	srv := apphttp.NewServer(":"+cfg.Port, freights, expenses, tracker, relay)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped")
}
