package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"bookkeeping/internal/amqp"
	"bookkeeping/internal/backend"
	"bookkeeping/internal/cli"
	"bookkeeping/internal/config"
	"bookkeeping/internal/ledger"
	applog "bookkeeping/internal/log"
	"bookkeeping/internal/services"
	ports "bookkeeping/internal/sheets"
	gsheet "bookkeeping/internal/sheets/google"
	mem "bookkeeping/internal/sheets/memory"
	"bookkeeping/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting bookkeeping-export-worker", applog.FieldOperation, applog.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.ShutdownContext(logger)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Export worker failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	// The worker consumes events; it never publishes them.
	backendCfg.AMQPURL = ""
	if backendCfg.Type == backend.MemoryBackend {
		logger.Warn("Memory backend is process local, the worker will export an empty ledger",
			"backend", cfg.DataBackend)
	}

	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", applog.FieldError, err.Error())
		}
	}()

	writer, err := snapshotWriter(ctx, cfg, logger)
	if err != nil {
		return err
	}

	repo := ledger.NewRepository(res.Store, ledger.WithLogger(logger))
	processor := services.NewSnapshotProcessor(repo, writer, services.SnapshotProcessorConfig{
		FlushInterval: cfg.SnapshotFlushInterval,
	}, logger)
	exportWorker := worker.NewExportWorker(processor, logger)

	// A failed startup export is retried by the schedule and by events.
	if err := exportWorker.StartupExport(ctx); err != nil {
		logger.Error("Startup export failed", applog.FieldError, err.Error())
	}

	if err := processor.Start(ctx); err != nil {
		return fmt.Errorf("start snapshot processor: %w", err)
	}
	shutdown := func() error {
		exportWorker.StopSchedule()
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return processor.Stop(stopCtx)
	}
	if err := exportWorker.Schedule(ctx, cfg.ExportSchedule); err != nil {
		return errors.Join(err, shutdown())
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.EventsEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return errors.Join(fmt.Errorf("initialize AMQP client: %w", err), shutdown())
		}
		defer client.Close()

		g.Go(func() error {
			logger.Info("Consuming ledger events",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
			err := client.ConsumeLedgerEvents(gctx, exportWorker.HandleLedgerEvent)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("consume ledger events: %w", err)
			}
			return nil
		})
	} else {
		logger.Info("AMQP disabled, exporting on schedule only")
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down worker", applog.FieldOperation, applog.OpShutdown)
		return shutdown()
	})

	return g.Wait()
}

// snapshotWriter returns the Google Sheets exporter when a spreadsheet is
// configured and an in-memory sink otherwise.
func snapshotWriter(ctx context.Context, cfg *config.Config, logger *applog.Logger) (ports.SnapshotWriter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, snapshots stay in memory")
		return mem.New(), nil
	}

	client, err := gsheet.NewFromEnv(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize Google Sheets client: %w", err)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)
	return client, nil
}
