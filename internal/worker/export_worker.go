package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"bookkeeping/internal/amqp"
	applog "bookkeeping/internal/log"
)

// Snapshotter is the export side the worker drives.
// *services.SnapshotProcessor implements it.
type Snapshotter interface {
	Request()
	ExportNow(ctx context.Context) error
}

// ExportWorker reacts to ledger events and runs the scheduled full export.
type ExportWorker struct {
	snap   Snapshotter
	logger *applog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

func NewExportWorker(snap Snapshotter, logger *applog.Logger) *ExportWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &ExportWorker{
		snap:   snap,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleLedgerEvent processes a single ledger event from AMQP. The event only
// says that something changed; the next flush exports the whole ledger.
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	w.logger.InfoContext(ctx, "Processing ledger event",
		applog.FieldEventKind, string(event.Kind),
		applog.FieldRecordID, event.RecordID,
		"timestamp", event.Timestamp)
	w.snap.Request()
	return nil
}

// StartupExport writes a snapshot at startup so the sheet catches up with
// changes made while the worker was down.
func (w *ExportWorker) StartupExport(ctx context.Context) error {
	if err := w.snap.ExportNow(ctx); err != nil {
		return fmt.Errorf("startup export: %w", err)
	}
	return nil
}

// Schedule runs a full export on the given cron spec (five fields or a
// descriptor such as "@hourly"). An empty spec disables scheduling.
func (w *ExportWorker) Schedule(ctx context.Context, spec string) error {
	if spec == "" {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cron != nil {
		return fmt.Errorf("export schedule already running")
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		w.logger.InfoContext(ctx, "Executing scheduled export", "schedule", spec)
		if err := w.snap.ExportNow(ctx); err != nil {
			w.logger.ErrorContext(ctx, "Scheduled export failed", applog.FieldError, err.Error())
		}
	})
	if err != nil {
		return fmt.Errorf("add export schedule %q: %w", spec, err)
	}
	c.Start()
	w.cron = c

	w.logger.InfoContext(ctx, "Export schedule started", "schedule", spec)
	return nil
}

// StopSchedule stops the scheduler and waits for a running export to finish.
func (w *ExportWorker) StopSchedule() {
	w.mu.Lock()
	c := w.cron
	w.cron = nil
	w.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}
