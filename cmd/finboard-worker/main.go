package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"finboard/internal/amqp"
	"finboard/internal/cli"
	"finboard/internal/config"
	"finboard/internal/export"
	"finboard/internal/export/sheets"
	"finboard/internal/log"
	"finboard/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)

	logger.Info("Starting finboard-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	stores := cli.OpenStores(logger, cfg)
	if stores.Close != nil {
		defer stores.Close()
	}

	ctx, stop := cli.NotifyShutdown()
	defer stop()

	// Google Sheets mirroring is optional; exports always land in the
	// spool directory.
	var sink worker.SheetsSink
	if cfg.SheetsEnabled() {
		client, err := sheets.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		sink = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.SheetsSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no SHEETS_SPREADSHEET_ID provided")
	}

	exportWorker := worker.NewExportWorker(stores.Transactions, stores.Settings, cfg.ExportSpoolDir, sink)
	alertWorker := worker.NewAlertRecorderWorker(stores.Alerts)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return spoolCleanupLoop(gctx, logger, cfg.ExportSpoolDir)
	})
	g.Go(func() error {
		return consumeLoop(gctx, logger, cfg, amqp.Handlers{
			OnExportRequest: func(msg *amqp.ExportRequestMessage) error {
				return exportWorker.HandleExportRequest(gctx, msg)
			},
			OnAlertEvent: func(msg *amqp.AlertEventMessage) error {
				return alertWorker.HandleAlertEvent(gctx, msg)
			},
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

// spoolCleanupLoop periodically removes temp files that a crashed
// export write left in the spool directory.
func spoolCleanupLoop(ctx context.Context, logger *log.Logger, spoolDir string) error {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed, err := export.CleanSpoolTemp(spoolDir, time.Hour)
			if err != nil {
				logger.Warn("Spool cleanup failed", "error", err, "spool_dir", spoolDir)
				continue
			}
			if removed > 0 {
				logger.Info("Removed stale spool temp files", "count", removed, "spool_dir", spoolDir)
			}
		}
	}
}

// consumeLoop keeps a consumer attached to the queue, reconnecting
// with backoff whenever the broker connection drops.
func consumeLoop(ctx context.Context, logger *log.Logger, cfg *config.Config, handlers amqp.Handlers) error {
	for {
		client, err := amqp.ConnectWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		if err := client.Qos(cfg.WorkerPrefetch); err != nil {
			client.Close()
			return err
		}

		err = client.Consume(ctx, handlers)
		client.Close()
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return ctx.Err()
		}

		logger.Error("Consumer disconnected, reconnecting", "error", err, "wait", cfg.ReconnectInterval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.ReconnectInterval):
		}
	}
}
