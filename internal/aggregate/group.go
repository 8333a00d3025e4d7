package aggregate

import "bookkeeping/internal/core"

// Group is every record sharing one calendar date.
type Group struct {
	Date    string        `json:"date"`
	Records []core.Record `json:"records"`
}

// GroupByDate groups records by date. Groups appear in the order their date
// is first seen, and records keep their relative order inside a group. For
// canonically ordered input the groups come out newest first.
func GroupByDate(records []core.Record) []Group {
	groups := make([]Group, 0)
	index := make(map[string]int)
	for _, r := range records {
		i, ok := index[r.Date]
		if !ok {
			i = len(groups)
			index[r.Date] = i
			groups = append(groups, Group{Date: r.Date})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// Page is a prefix of the group list plus whether more groups remain.
type Page struct {
	Groups  []Group `json:"groups"`
	HasMore bool    `json:"hasMore"`
}

// PaginateGroups returns the first min(visible, len(groups)) groups.
// HasMore is true exactly when visible < len(groups).
func PaginateGroups(groups []Group, visible int) Page {
	n := min(max(visible, 0), len(groups))
	return Page{
		Groups:  groups[:n:n],
		HasMore: visible < len(groups),
	}
}
