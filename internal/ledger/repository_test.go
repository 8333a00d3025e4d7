package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"bookkeeping/internal/core"
	"bookkeeping/internal/store"
)

type fakeClock struct{ ms int64 }

func (c *fakeClock) Now() time.Time {
	c.ms++
	return time.UnixMilli(c.ms)
}

func newTestRepo(s store.Store) (*Repository, *fakeClock) {
	clock := &fakeClock{ms: 1_700_000_000_000}
	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return NewRepository(s, WithClock(clock.Now), WithIDGenerator(ids)), clock
}

func TestAddRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(store.NewMemory())

	draft := core.Draft{Type: core.Expense, Amount: 12.34, Category: "餐饮", Note: "noodles", Date: "2024-01-15"}
	before := time.Now().UnixMilli()
	created, err := repo.Add(ctx, draft)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(created.ID) != 32 {
		t.Fatalf("expected generated id, got %q", created.ID)
	}
	if created.CreatedAt < before {
		t.Fatalf("createdAt %d earlier than %d", created.CreatedAt, before)
	}

	loaded := repo.Load(ctx)
	if len(loaded) != 1 {
		t.Fatalf("expected 1 record, got %d", len(loaded))
	}
	got := loaded[0]
	if got != created {
		t.Fatalf("loaded %+v != created %+v", got, created)
	}
	if got.Type != draft.Type || got.Amount != draft.Amount || got.Category != draft.Category ||
		got.Note != draft.Note || got.Date != draft.Date {
		t.Fatalf("fields not preserved: %+v", got)
	}
}

func TestAddDoesNotValidate(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(store.NewMemory())
	if _, err := repo.Add(ctx, core.Draft{Type: core.Income, Amount: -5, Date: "2024-01-01"}); err != nil {
		t.Fatalf("repository must accept whatever the caller passes: %v", err)
	}
	if len(repo.Load(ctx)) != 1 {
		t.Fatalf("record should have been stored")
	}
}

func TestLoadSortOrder(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(store.NewMemory())

	dates := []string{"2024-01-15", "2024-02-01", "2024-01-15", "2023-12-31", "2024-02-01", "2024-01-31"}
	for _, d := range dates {
		if _, err := repo.Add(ctx, core.Draft{Type: core.Expense, Amount: 1, Category: "c", Date: d}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	loaded := repo.Load(ctx)
	if len(loaded) != len(dates) {
		t.Fatalf("expected %d records, got %d", len(dates), len(loaded))
	}
	for i := 1; i < len(loaded); i++ {
		a, b := loaded[i-1], loaded[i]
		if !(a.Date > b.Date || (a.Date == b.Date && a.CreatedAt >= b.CreatedAt)) {
			t.Fatalf("order violated at %d: %+v before %+v", i, a, b)
		}
	}
	// Same-day records: most recent entry first.
	if loaded[0].ID != "id-5" || loaded[1].ID != "id-2" {
		t.Fatalf("unexpected head order: %s, %s", loaded[0].ID, loaded[1].ID)
	}
}

func TestLoadSortsUnorderedStoredData(t *testing.T) {
	raw := `[
		{"id":"a","type":"expense","amount":1,"category":"c","date":"2024-01-01","createdAt":5},
		{"id":"b","type":"expense","amount":1,"category":"c","date":"2024-03-01","createdAt":1},
		{"id":"c","type":"expense","amount":1,"category":"c","date":"2024-01-01","createdAt":9}
	]`
	repo, _ := newTestRepo(store.NewMemoryWith(raw))
	loaded := repo.Load(context.Background())
	var ids []string
	for _, r := range loaded {
		ids = append(ids, r.ID)
	}
	if strings.Join(ids, ",") != "b,c,a" {
		t.Fatalf("unexpected order %v", ids)
	}
	if !IsSorted(loaded) {
		t.Fatalf("IsSorted disagrees with Load")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(store.NewMemory())
	for _, d := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		if _, err := repo.Add(ctx, core.Draft{Type: core.Income, Amount: 10, Category: "工资", Date: d}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	first, err := repo.Remove(ctx, "id-2")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	second, err := repo.Remove(ctx, "id-2")
	if err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 remaining records, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("collections differ at %d: %+v vs %+v", i, first[i], second[i])
		}
	}

	unknown, err := repo.Remove(ctx, "missing")
	if err != nil || len(unknown) != 2 {
		t.Fatalf("unknown id should be a no-op, got %d records err=%v", len(unknown), err)
	}
}

func TestCorruptionResilience(t *testing.T) {
	for _, raw := range []string{"not json", `{"records":[]}`} {
		repo, _ := newTestRepo(store.NewMemoryWith(raw))
		if got := repo.Load(context.Background()); len(got) != 0 {
			t.Fatalf("%q: expected empty ledger, got %v", raw, got)
		}
	}
}

func TestAddOverCorruptDataStartsFresh(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(store.NewMemoryWith("not json"))
	if _, err := repo.Add(ctx, core.Draft{Type: core.Expense, Amount: 3, Category: "交通", Date: "2024-05-05"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := repo.Load(ctx); len(got) != 1 {
		t.Fatalf("expected 1 record after add, got %d", len(got))
	}
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	repo, _ := newTestRepo(mem)
	for i := 0; i < 3; i++ {
		if _, err := repo.Add(ctx, core.Draft{Type: core.Expense, Amount: 1, Category: "c", Date: "2024-01-01"}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := repo.ClearAll(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := repo.Load(ctx); len(got) != 0 {
		t.Fatalf("expected empty ledger after clear, got %d", len(got))
	}
	if _, ok := mem.Read(ctx); ok {
		t.Fatalf("store key should be gone")
	}
}

func TestPersistedLayout(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	repo, _ := newTestRepo(mem)
	if _, err := repo.Add(ctx, core.Draft{Type: core.Income, Amount: 100, Category: "工资", Date: "2024-01-31"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	raw, _ := mem.Read(ctx)
	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("stored value is not a JSON array: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	for _, key := range []string{"id", "type", "amount", "category", "date", "createdAt"} {
		if _, ok := entries[0][key]; !ok {
			t.Errorf("missing key %q in %v", key, entries[0])
		}
	}
	if _, ok := entries[0]["note"]; ok {
		t.Errorf("empty note should be omitted")
	}
}

func TestExportIsIndentedJSON(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(store.NewMemory())

	empty, err := repo.Export(ctx)
	if err != nil || string(empty) != "[]" {
		t.Fatalf("empty export = %q, err=%v", empty, err)
	}

	if _, err := repo.Add(ctx, core.Draft{Type: core.Expense, Amount: 9.9, Category: "购物", Date: "2024-04-01"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	data, err := repo.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(string(data), "[\n  {\n    \"id\": ") {
		t.Fatalf("unexpected export layout:\n%s", data)
	}
	var back []core.Record
	if err := json.Unmarshal(data, &back); err != nil || len(back) != 1 || back[0].Amount != 9.9 {
		t.Fatalf("export does not round-trip: %v %+v", err, back)
	}
}

type failingStore struct{ store.Memory }

func (f *failingStore) Write(context.Context, []byte) error { return errors.New("disk full") }

func TestWriteFailuresAreReturned(t *testing.T) {
	repo, _ := newTestRepo(&failingStore{})
	if _, err := repo.Add(context.Background(), core.Draft{Type: core.Expense, Amount: 1, Category: "c", Date: "2024-01-01"}); err == nil {
		t.Fatalf("expected write error to surface")
	}
	if _, err := repo.Remove(context.Background(), "x"); err == nil {
		t.Fatalf("expected write error to surface")
	}
}
