package aggregate

import (
	"fmt"
	"testing"
)

func makeGroups(n int) []Group {
	groups := make([]Group, n)
	for i := range groups {
		groups[i] = Group{Date: fmt.Sprintf("2024-01-%02d", n-i)}
	}
	return groups
}

func TestPaginateGroups(t *testing.T) {
	groups := makeGroups(5)
	cases := []struct {
		visible     int
		wantLen     int
		wantHasMore bool
	}{
		{-1, 0, true},
		{0, 0, true},
		{3, 3, true},
		{4, 4, true},
		{5, 5, false},
		{50, 5, false},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("visible_%d", tc.visible), func(t *testing.T) {
			page := PaginateGroups(groups, tc.visible)
			if len(page.Groups) != tc.wantLen || page.HasMore != tc.wantHasMore {
				t.Fatalf("got len=%d hasMore=%v, want len=%d hasMore=%v",
					len(page.Groups), page.HasMore, tc.wantLen, tc.wantHasMore)
			}
		})
	}

	if page := PaginateGroups(nil, 10); len(page.Groups) != 0 || page.HasMore {
		t.Fatalf("empty input: %+v", page)
	}
}

func TestPaginateGroupsMonotonic(t *testing.T) {
	for _, total := range []int{0, 1, 9, 10, 11, 37} {
		groups := makeGroups(total)
		prev := -1
		flipped := false
		for visible := 0; visible <= total+12; visible++ {
			page := PaginateGroups(groups, visible)
			if len(page.Groups) < prev {
				t.Fatalf("total=%d visible=%d: shrank from %d to %d", total, visible, prev, len(page.Groups))
			}
			prev = len(page.Groups)
			if page.HasMore != (visible < total) {
				t.Fatalf("total=%d visible=%d: hasMore=%v", total, visible, page.HasMore)
			}
			if !page.HasMore {
				flipped = true
			} else if flipped {
				t.Fatalf("total=%d: hasMore came back after becoming false", total)
			}
		}
	}
}

func TestPaginateGroupsDoesNotAliasAppend(t *testing.T) {
	groups := makeGroups(3)
	page := PaginateGroups(groups, 1)
	page.Groups = append(page.Groups, Group{Date: "x"})
	if groups[1].Date == "x" {
		t.Fatalf("appending to a page must not overwrite the source groups")
	}
}

func TestPagerLifecycle(t *testing.T) {
	p := NewPager(0, "2024-01")
	if p.PageSize() != DefaultPageSize || p.Visible() != DefaultPageSize {
		t.Fatalf("expected default page size, got %d/%d", p.PageSize(), p.Visible())
	}

	groups := makeGroups(25)
	if page := p.Page(groups); len(page.Groups) != 10 || !page.HasMore {
		t.Fatalf("initial page: len=%d hasMore=%v", len(page.Groups), page.HasMore)
	}

	if !p.LoadMore(len(groups)) || p.Visible() != 20 {
		t.Fatalf("expected 20 visible after first load more, got %d", p.Visible())
	}
	if !p.LoadMore(len(groups)) || p.Visible() != 25 {
		t.Fatalf("expected clamp to 25, got %d", p.Visible())
	}
	if page := p.Page(groups); page.HasMore {
		t.Fatalf("everything should be visible")
	}
	if p.LoadMore(len(groups)) || p.Visible() != 25 {
		t.Fatalf("load more past the end must be a no-op, visible=%d", p.Visible())
	}

	if p.SetMonth("2024-01") {
		t.Fatalf("same month should not reset")
	}
	if p.Visible() != 25 {
		t.Fatalf("same month changed visibility")
	}
	if !p.SetMonth("2024-02") || p.Visible() != DefaultPageSize || p.Month() != "2024-02" {
		t.Fatalf("month change should reset, visible=%d month=%s", p.Visible(), p.Month())
	}
}

func TestPagerFewGroups(t *testing.T) {
	p := NewPager(10, "2024-01")
	if p.LoadMore(4) {
		t.Fatalf("nothing more to load with 4 groups")
	}
	if page := p.Page(makeGroups(4)); len(page.Groups) != 4 || page.HasMore {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestToggleCollapse(t *testing.T) {
	var empty CollapsedSet
	once := ToggleCollapse(empty, "2024-01-02")
	if !once.IsCollapsed("2024-01-02") {
		t.Fatalf("expected collapsed after first toggle")
	}
	if empty.IsCollapsed("2024-01-02") {
		t.Fatalf("input must not be modified")
	}
	twice := ToggleCollapse(once, "2024-01-02")
	if twice.IsCollapsed("2024-01-02") {
		t.Fatalf("expected expanded after second toggle")
	}
	if !once.IsCollapsed("2024-01-02") {
		t.Fatalf("previous set must not be modified")
	}
	other := ToggleCollapse(once, "2024-01-03")
	if !other.IsCollapsed("2024-01-02") || !other.IsCollapsed("2024-01-03") {
		t.Fatalf("toggling one date must keep the others: %v", other)
	}
}
