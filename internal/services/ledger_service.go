package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bookkeeping/internal/aggregate"
	"bookkeeping/internal/amqp"
	"bookkeeping/internal/core"
	"bookkeeping/internal/export"
	"bookkeeping/internal/ledger"
	applog "bookkeeping/internal/log"
)

// EventPublisher announces ledger mutations. *amqp.Client implements it.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error
}

// LedgerService is the entry point the HTTP layer uses. It serializes every
// repository call so concurrent requests never interleave a
// load-modify-write cycle, and publishes change events after successful
// mutations.
type LedgerService struct {
	mu        sync.Mutex
	repo      *ledger.Repository
	publisher EventPublisher
	pageSize  int
	logger    *applog.Logger
}

type ServiceOption func(*LedgerService)

func WithPublisher(p EventPublisher) ServiceOption {
	return func(s *LedgerService) { s.publisher = p }
}

// WithPageSize sets how many date groups one bill view page reveals.
func WithPageSize(n int) ServiceOption {
	return func(s *LedgerService) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithServiceLogger(logger *applog.Logger) ServiceOption {
	return func(s *LedgerService) { s.logger = logger }
}

func NewLedgerService(repo *ledger.Repository, opts ...ServiceOption) *LedgerService {
	s := &LedgerService{
		repo:     repo,
		pageSize: aggregate.DefaultPageSize,
		logger:   applog.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(applog.ComponentLedger)
	return s
}

func (s *LedgerService) PageSize() int {
	return s.pageSize
}

// Records returns the whole ledger in canonical order.
func (s *LedgerService) Records(ctx context.Context) []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Load(ctx)
}

// AddRecord stores a validated draft and returns the created record.
func (s *LedgerService) AddRecord(ctx context.Context, d core.Draft) (core.Record, error) {
	s.mu.Lock()
	rec, err := s.repo.Add(ctx, d)
	s.mu.Unlock()
	if err != nil {
		return core.Record{}, fmt.Errorf("add record: %w", err)
	}

	s.publish(ctx, amqp.NewLedgerEvent(amqp.RecordAdded, rec.ID, rec.Date))
	return rec, nil
}

// RemoveRecord deletes id and returns the remaining records. Unknown ids are
// not an error.
func (s *LedgerService) RemoveRecord(ctx context.Context, id string) ([]core.Record, error) {
	s.mu.Lock()
	records, err := s.repo.Remove(ctx, id)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("remove record: %w", err)
	}

	s.publish(ctx, amqp.NewLedgerEvent(amqp.RecordRemoved, id, ""))
	return records, nil
}

func (s *LedgerService) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	err := s.repo.ClearAll(ctx)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}

	s.publish(ctx, amqp.NewLedgerEvent(amqp.LedgerCleared, "", ""))
	return nil
}

// Overview returns all-time totals.
func (s *LedgerService) Overview(ctx context.Context) core.Overview {
	return aggregate.Overview(s.Records(ctx))
}

// Export renders the ledger in the given format.
func (s *LedgerService) Export(ctx context.Context, f export.Format) ([]byte, error) {
	data, err := export.Encode(f, s.Records(ctx))
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Ledger exported",
		applog.FieldOperation, applog.OpExport,
		"format", string(f),
		"bytes", len(data))
	return data, nil
}

func (s *LedgerService) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, event); err != nil {
		// The ledger write already succeeded.
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			applog.FieldEventKind, string(event.Kind),
			applog.FieldRecordID, event.RecordID,
			applog.FieldError, err.Error())
	}
}

// NewSession starts a bill view on the month containing now.
func (s *LedgerService) NewSession(id string, now time.Time) *BillSession {
	return newBillSession(id, s.pageSize, core.FormatMonth(now))
}

// MonthView renders the session's current month.
func (s *LedgerService) MonthView(ctx context.Context, sess *BillSession) MonthView {
	records := s.Records(ctx)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(records)
}

// SetMonth switches the session to month. Switching to another month resets
// pagination and expands every group.
func (s *LedgerService) SetMonth(ctx context.Context, sess *BillSession, month string) (MonthView, error) {
	if !core.ValidMonthKey(month) {
		return MonthView{}, fmt.Errorf("%w: %q", core.ErrInvalidMonth, month)
	}
	records := s.Records(ctx)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.setMonth(month)
	return sess.view(records), nil
}

// LoadMore reveals the next page of date groups, if any.
func (s *LedgerService) LoadMore(ctx context.Context, sess *BillSession) MonthView {
	records := s.Records(ctx)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	groups := sess.groups(records)
	sess.pager.LoadMore(len(groups))
	return sess.render(records, groups)
}

// ToggleCollapse folds or unfolds the group for date.
func (s *LedgerService) ToggleCollapse(ctx context.Context, sess *BillSession, date string) MonthView {
	records := s.Records(ctx)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.collapsed = aggregate.ToggleCollapse(sess.collapsed, date)
	return sess.view(records)
}
