package aggregate

// DefaultPageSize is how many date groups one page reveals.
const DefaultPageSize = 10

// Pager tracks how many date groups are visible for one month filter.
//
// It starts at one page. LoadMore reveals another page, clamped to the total
// number of groups, and does nothing once everything is visible. Changing
// the month starts over.
type Pager struct {
	pageSize int
	month    string
	visible  int
}

func NewPager(pageSize int, month string) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{pageSize: pageSize, month: month, visible: pageSize}
}

func (p *Pager) Month() string {
	return p.month
}

// Visible is the number of groups the next Page call reveals at most.
func (p *Pager) Visible() int {
	return p.visible
}

func (p *Pager) PageSize() int {
	return p.pageSize
}

// SetMonth switches the filter. A different month resets pagination and
// reports true; setting the current month again is a no-op.
func (p *Pager) SetMonth(month string) bool {
	if month == p.month {
		return false
	}
	p.month = month
	p.visible = p.pageSize
	return true
}

// LoadMore reveals one more page of the total groups and reports whether
// anything changed.
func (p *Pager) LoadMore(total int) bool {
	if p.visible >= total {
		return false
	}
	p.visible = min(p.visible+p.pageSize, total)
	return true
}

// Page applies the pager to groups.
func (p *Pager) Page(groups []Group) Page {
	return PaginateGroups(groups, p.visible)
}
