// Package cli provides common initialization shared by cmd/freteiro and
// cmd/freteiro-worker.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"freteiro/internal/config"
	applog "freteiro/internal/log"
	"freteiro/internal/store"
)

// Setup loads the .env file (optional in production), installs the
// default structured logger, and returns one scoped to the calling
// binary.
func Setup(component string) *applog.Logger {
	_ = godotenv.Load()
	return applog.Setup().WithComponent(component)
}

// LoadConfig loads configuration and validates it, exiting the process
// on validation failure.
func LoadConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore builds the persistence backend selected by the config.
// The returned closer is a no-op for backends without resources.
func OpenStore(logger *applog.Logger, cfg *config.Config) (store.Store, func() error) {
	switch cfg.DataBackend {
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open sqlite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		logger.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath)
		return s, s.Close
	case "file":
		s, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			logger.Error("Failed to open file store", "error", err, "dir", cfg.DataDir)
			os.Exit(1)
		}
		logger.Info("Initialized file backend", "dir", cfg.DataDir)
		return s, func() error { return nil }
	default:
		logger.Info("Initialized memory backend")
		return store.NewMemoryStore(), func() error { return nil }
	}
}
