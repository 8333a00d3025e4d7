package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bookkeeping/internal/core"
	"bookkeeping/internal/export"
	applog "bookkeeping/internal/log"
	"bookkeeping/internal/sheets"
)

// RecordLoader reads the current ledger. *ledger.Repository implements it.
type RecordLoader interface {
	Load(ctx context.Context) []core.Record
}

// SnapshotProcessorConfig holds configuration for the snapshot processor
type SnapshotProcessorConfig struct {
	// FlushInterval is how often pending requests are coalesced into one
	// export (default: 5s)
	FlushInterval time.Duration

	// MaxRetries is how many consecutive failed flushes are retried before
	// the pending request is dropped (default: 3)
	MaxRetries int
}

// DefaultSnapshotProcessorConfig returns sensible defaults
func DefaultSnapshotProcessorConfig() SnapshotProcessorConfig {
	return SnapshotProcessorConfig{
		FlushInterval: 5 * time.Second,
		MaxRetries:    3,
	}
}

// SnapshotStats describes export activity since start.
type SnapshotStats struct {
	Exports    int
	Failures   int
	LastRows   int
	LastExport time.Time
	Pending    bool
}

// SnapshotProcessor copies the whole ledger to a SnapshotWriter. Bursts of
// Request calls collapse into one export per flush interval; ExportNow
// bypasses the coalescing.
type SnapshotProcessor struct {
	loader RecordLoader
	writer sheets.SnapshotWriter
	config SnapshotProcessorConfig
	logger *applog.Logger

	exportMu sync.Mutex

	mu       sync.Mutex
	running  bool
	pending  bool
	attempts int
	stats    SnapshotStats
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewSnapshotProcessor(loader RecordLoader, writer sheets.SnapshotWriter, config SnapshotProcessorConfig, logger *applog.Logger) *SnapshotProcessor {
	def := DefaultSnapshotProcessorConfig()
	if config.FlushInterval <= 0 {
		config.FlushInterval = def.FlushInterval
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = def.MaxRetries
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &SnapshotProcessor{
		loader: loader,
		writer: writer,
		config: config,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// Request marks the snapshot stale; the next flush exports it.
func (p *SnapshotProcessor) Request() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = true
}

// ExportNow writes the current ledger immediately.
func (p *SnapshotProcessor) ExportNow(ctx context.Context) error {
	p.exportMu.Lock()
	defer p.exportMu.Unlock()

	records := p.loader.Load(ctx)
	if err := p.writer.WriteSnapshot(ctx, export.Rows(records)); err != nil {
		p.mu.Lock()
		p.stats.Failures++
		p.mu.Unlock()
		return fmt.Errorf("write snapshot: %w", err)
	}

	p.mu.Lock()
	p.stats.Exports++
	p.stats.LastRows = len(records)
	p.stats.LastExport = time.Now()
	p.mu.Unlock()

	p.logger.InfoContext(ctx, "Ledger snapshot exported",
		applog.FieldOperation, applog.OpExport,
		applog.FieldCount, len(records))
	return nil
}

// Start begins the flush loop. Returns an error if already running.
func (p *SnapshotProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("snapshot processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	p.logger.InfoContext(ctx, "Snapshot processor started",
		"flush_interval", p.config.FlushInterval,
		"max_retries", p.config.MaxRetries)
	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SnapshotProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		p.logger.InfoContext(ctx, "Snapshot processor stopped gracefully")
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Snapshot processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *SnapshotProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SnapshotProcessor) Stats() SnapshotStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.Pending = p.pending
	return s
}

func (p *SnapshotProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Flush(ctx)
		}
	}
}

// Flush exports if a request is pending. Failures keep the request pending
// until MaxRetries consecutive attempts have failed.
func (p *SnapshotProcessor) Flush(ctx context.Context) {
	p.mu.Lock()
	if !p.pending {
		p.mu.Unlock()
		return
	}
	p.pending = false
	p.mu.Unlock()

	err := p.ExportNow(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil {
		p.attempts = 0
		return
	}

	p.attempts++
	if p.attempts >= p.config.MaxRetries {
		p.logger.ErrorContext(ctx, "Snapshot export failed permanently after max retries",
			"attempts", p.attempts,
			applog.FieldError, err.Error())
		p.attempts = 0
		return
	}
	p.logger.WarnContext(ctx, "Snapshot export failed, will retry",
		"attempt", p.attempts,
		applog.FieldError, err.Error())
	p.pending = true
}
