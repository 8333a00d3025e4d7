// Package aggregate derives views from an already-loaded, canonically
// ordered ledger. Everything here is pure: no I/O, no shared state, and
// inputs are never modified.
package aggregate

import (
	"strings"

	"github.com/shopspring/decimal"

	"bookkeeping/internal/core"
)

// FilterByMonth keeps records whose date starts with monthKey (YYYY-MM).
// Input order is preserved.
func FilterByMonth(records []core.Record, monthKey string) []core.Record {
	out := make([]core.Record, 0, len(records))
	if len(monthKey) != len(core.MonthLayout) {
		return out
	}
	for _, r := range records {
		if strings.HasPrefix(r.Date, monthKey) {
			out = append(out, r)
		}
	}
	return out
}

// Summarize totals income and expense. Anything that is not an expense is
// counted as income.
func Summarize(records []core.Record) core.Summary {
	income, expense := decimal.Zero, decimal.Zero
	for _, r := range records {
		amount := decimal.NewFromFloat(r.Amount)
		if r.Type == core.Expense {
			expense = expense.Add(amount)
		} else {
			income = income.Add(amount)
		}
	}
	return core.Summary{
		Income:  income.Round(2).InexactFloat64(),
		Expense: expense.Round(2).InexactFloat64(),
	}
}

// Overview is the all-time summary shown on the account page.
func Overview(records []core.Record) core.Overview {
	s := Summarize(records)
	return core.Overview{
		Count:   len(records),
		Income:  s.Income,
		Expense: s.Expense,
		Balance: s.Balance(),
	}
}
