package ledger

import (
	"cmp"
	"slices"

	"bookkeeping/internal/core"
)

// SortRecords puts records in canonical order: newest date first, and
// within a date the most recently created first. Dates compare as strings,
// which matches calendar order for YYYY-MM-DD.
func SortRecords(records []core.Record) {
	slices.SortStableFunc(records, compareRecords)
}

func compareRecords(a, b core.Record) int {
	if a.Date != b.Date {
		return cmp.Compare(b.Date, a.Date)
	}
	return cmp.Compare(b.CreatedAt, a.CreatedAt)
}

// IsSorted reports whether records are in canonical order.
func IsSorted(records []core.Record) bool {
	return slices.IsSortedFunc(records, compareRecords)
}
