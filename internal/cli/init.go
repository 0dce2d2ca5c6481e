// Package cli wires configuration, logging and the snapshot service for the
// despesas binaries.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"despesas/internal/amqp"
	"despesas/internal/config"
	"despesas/internal/log"
	"despesas/internal/services"
	gsheet "despesas/internal/sheets/google"
	"despesas/internal/snapshots"
	"despesas/internal/storage"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from cfg and makes it the default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	logger := log.New(cfg.LoggerConfig(component))
	log.SetDefault(logger)
	return logger
}

// App holds the wired service and everything that must be closed with it.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Service *services.SnapshotService

	closers []func() error
}

// Bootstrap loads .env and the environment, validates the configuration and
// wires the snapshot service. Journal, AMQP and Sheets are attached only when
// configured. An unreachable broker is logged and publishing disabled.
func Bootstrap(ctx context.Context, component string) (*App, error) {
	LoadEnvFile()
	cfg := config.Load()
	logger := SetupLogger(cfg, component)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewApp(ctx, cfg, logger)
}

// NewApp wires the service for an already validated cfg.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	months, err := cfg.Months()
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: logger}
	opts := services.Options{
		Months:    months,
		CacheSize: cfg.SnapshotCacheSize,
		CacheTTL:  cfg.SnapshotCacheTTL,
		Logger:    logger,
	}

	if cfg.JournalDBPath != "" {
		journal, err := storage.OpenJournal(cfg.JournalDBPath)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		app.closers = append(app.closers, journal.Close)
		opts.Journal = journal
		logger.Info("Ingestion journal enabled", "path", cfg.JournalDBPath)
	}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, snapshot events will not be published",
				log.FieldError, err)
		} else {
			app.closers = append(app.closers, client.Close)
			opts.Publisher = client
			logger.Info("Publishing snapshot events", "exchange", cfg.AMQPExchange)
		}
	}

	if cfg.GoogleSheetsImport {
		sheets, err := gsheet.NewFromEnv(ctx, logger)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init google sheets: %w", err)
		}
		opts.Sheets = sheets
		logger.Info("Google Sheets import enabled")
	}

	store := snapshots.New(cfg.StorageRoot)
	if !store.ExistsRoot() {
		logger.Warn("Storage root not found; snapshot operations will fail until it is provisioned",
			log.FieldStorageRoot, cfg.StorageRoot)
	}
	app.Service = services.NewSnapshotService(store, opts)
	return app, nil
}

// Close releases the journal and broker connection.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// GracefulShutdown runs cleanup with a timeout once SIGINT or SIGTERM
// arrives. The returned context is cancelled after cleanup has returned or
// timed out.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		}
		cancel()
	}()

	return ctx
}
