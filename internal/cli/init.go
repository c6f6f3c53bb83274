// Package cli consolidates the initialization steps shared by
// cmd/finboard and cmd/finboard-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finboard/internal/config"
	"finboard/internal/log"
	"finboard/internal/store"
	"finboard/internal/store/memory"
	"finboard/internal/store/sqlite"
)

// SetupLogger builds the process logger and installs it as the slog
// default.
func SetupLogger(component string) *log.Logger {
	logger := log.New(log.DefaultConfig()).WithComponent(component)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads a local .env file when present. Missing files are
// fine; production sets real environment variables.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// exits the process when it is invalid.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// Stores bundles the persistence ports a binary wires up, plus the
// hooks the HTTP server needs for readiness and shutdown.
type Stores struct {
	Transactions store.TransactionStore
	Settings     store.SettingsStore
	Users        store.UserStore
	Alerts       store.AlertRecorder

	// Ready probes the backend; nil for the in-memory store.
	Ready func(ctx context.Context) error
	// Close releases backend resources; nil for the in-memory store.
	Close func() error
}

// OpenStores opens the configured data backend, exiting the process
// when the backend cannot be opened.
func OpenStores(logger *log.Logger, cfg *config.Config) Stores {
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open sqlite backend", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		logger.Info("Using sqlite backend", "path", cfg.SQLiteDBPath)
		return Stores{
			Transactions: repo,
			Settings:     repo,
			Users:        repo,
			Alerts:       repo,
			Ready:        repo.Ping,
			Close:        repo.Close,
		}
	default:
		st := memory.New()
		logger.Info("Using in-memory backend")
		return Stores{
			Transactions: st,
			Settings:     st,
			Users:        st,
			Alerts:       st,
		}
	}
}

// NotifyShutdown returns a context cancelled on SIGINT or SIGTERM.
func NotifyShutdown() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
