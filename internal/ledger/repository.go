// Package ledger is the typed CRUD layer over the record store.
//
// Every call re-reads the store; nothing is cached between calls. Mutations
// are load-modify-write cycles with last-writer-wins semantics, so callers
// that share a Repository across goroutines must serialize access.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bookkeeping/internal/core"
	applog "bookkeeping/internal/log"
	"bookkeeping/internal/store"
)

type Repository struct {
	store  store.Store
	now    func() time.Time
	newID  func() string
	logger *applog.Logger
}

type Option func(*Repository)

// WithClock overrides the time source used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(gen func() string) Option {
	return func(r *Repository) { r.newID = gen }
}

func WithLogger(logger *applog.Logger) Option {
	return func(r *Repository) { r.logger = logger }
}

func NewRepository(s store.Store, opts ...Option) *Repository {
	r := &Repository{
		store:  s,
		now:    time.Now,
		newID:  NewID,
		logger: applog.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithComponent(applog.ComponentLedger)
	return r
}

// Load returns every stored record in canonical order. Missing or corrupt
// data yields an empty slice.
func (r *Repository) Load(ctx context.Context) []core.Record {
	raw, ok := r.store.Read(ctx)
	if !ok {
		return []core.Record{}
	}

	decoded := DecodeRecords(raw)
	if decoded.Corrupt {
		r.logger.WarnContext(ctx, "Stored ledger is not a JSON array, treating as empty",
			"bytes", len(raw))
	}
	if decoded.Dropped > 0 {
		r.logger.WarnContext(ctx, "Dropped malformed ledger entries",
			applog.FieldDropped, decoded.Dropped,
			applog.FieldCount, len(decoded.Records))
	}

	SortRecords(decoded.Records)
	return decoded.Records
}

// Add assigns an id and creation time to d, stores it and returns the new
// record. d is stored as given; validation belongs to the caller.
func (r *Repository) Add(ctx context.Context, d core.Draft) (core.Record, error) {
	records := r.Load(ctx)

	rec := core.Record{
		ID:        r.newID(),
		Type:      d.Type,
		Amount:    d.Amount,
		Category:  d.Category,
		Note:      d.Note,
		Date:      d.Date,
		CreatedAt: r.now().UnixMilli(),
	}

	next := make([]core.Record, 0, len(records)+1)
	next = append(next, rec)
	next = append(next, records...)
	if err := r.save(ctx, next); err != nil {
		return core.Record{}, err
	}

	r.logger.InfoContext(ctx, "Record added", applog.NewFields().
		WithOperation(applog.OpAdd).
		WithRecord(rec.ID, rec.Type.String(), rec.Amount, rec.Category, rec.Date).
		ToSlice()...)
	return rec, nil
}

// Remove deletes the record with the given id and returns what is left.
// An unknown id is not an error.
func (r *Repository) Remove(ctx context.Context, id string) ([]core.Record, error) {
	records := r.Load(ctx)

	next := make([]core.Record, 0, len(records))
	for _, rec := range records {
		if rec.ID != id {
			next = append(next, rec)
		}
	}
	if err := r.save(ctx, next); err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "Record removed",
		applog.FieldOperation, applog.OpRemove,
		applog.FieldRecordID, id,
		"found", len(next) != len(records))
	return next, nil
}

// ClearAll deletes the stored ledger outright.
func (r *Repository) ClearAll(ctx context.Context) error {
	if err := r.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	r.logger.InfoContext(ctx, "Ledger cleared", applog.FieldOperation, applog.OpClear)
	return nil
}

// Export returns the full ledger as indented JSON, in the same shape as the
// persisted array.
func (r *Repository) Export(ctx context.Context) ([]byte, error) {
	return EncodeJSON(r.Load(ctx))
}

// EncodeJSON renders records as a two-space indented JSON array.
func EncodeJSON(records []core.Record) ([]byte, error) {
	if records == nil {
		records = []core.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}
	return data, nil
}

func (r *Repository) save(ctx context.Context, records []core.Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := r.store.Write(ctx, data); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}
