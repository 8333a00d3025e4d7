package services

import (
	"sync"

	"bookkeeping/internal/aggregate"
	"bookkeeping/internal/core"
)

// BillSession is one visitor's bill view state: the month filter, how many
// date groups are revealed and which groups are folded.
type BillSession struct {
	ID string

	mu        sync.Mutex
	pager     *aggregate.Pager
	collapsed aggregate.CollapsedSet
}

func newBillSession(id string, pageSize int, month string) *BillSession {
	return &BillSession{
		ID:        id,
		pager:     aggregate.NewPager(pageSize, month),
		collapsed: aggregate.CollapsedSet{},
	}
}

func (b *BillSession) Month() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pager.Month()
}

func (b *BillSession) setMonth(month string) {
	if b.pager.SetMonth(month) {
		b.collapsed = aggregate.CollapsedSet{}
	}
}

func (b *BillSession) groups(records []core.Record) []aggregate.Group {
	return aggregate.GroupByDate(aggregate.FilterByMonth(records, b.pager.Month()))
}

func (b *BillSession) view(records []core.Record) MonthView {
	return b.render(records, b.groups(records))
}

func (b *BillSession) render(records []core.Record, groups []aggregate.Group) MonthView {
	month := b.pager.Month()
	summary := aggregate.Summarize(aggregate.FilterByMonth(records, month))
	page := b.pager.Page(groups)

	days := make([]DayGroup, 0, len(page.Groups))
	for _, g := range page.Groups {
		day := DayGroup{
			Date:      g.Date,
			Count:     len(g.Records),
			Collapsed: b.collapsed.IsCollapsed(g.Date),
			Records:   g.Records,
		}
		if day.Collapsed {
			day.Records = []core.Record{}
		}
		days = append(days, day)
	}

	return MonthView{
		Month:       month,
		Summary:     summary,
		Balance:     summary.Balance(),
		Groups:      days,
		HasMore:     page.HasMore,
		Empty:       len(groups) == 0,
		Visible:     len(page.Groups),
		TotalGroups: len(groups),
	}
}

// DayGroup is one date heading in the bill view. Records is empty while the
// group is collapsed; Count always reflects the full group.
type DayGroup struct {
	Date      string        `json:"date"`
	Count     int           `json:"count"`
	Collapsed bool          `json:"collapsed"`
	Records   []core.Record `json:"records"`
}

// MonthView is the rendered bill page for one month.
type MonthView struct {
	Month       string       `json:"month"`
	Summary     core.Summary `json:"summary"`
	Balance     float64      `json:"balance"`
	Groups      []DayGroup   `json:"groups"`
	HasMore     bool         `json:"hasMore"`
	Empty       bool         `json:"empty"`
	Visible     int          `json:"visible"`
	TotalGroups int          `json:"totalGroups"`
}
