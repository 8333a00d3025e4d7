package aggregate

// CollapsedSet marks dates whose group is folded in the list view. A date
// that is absent is expanded.
type CollapsedSet map[string]bool

// ToggleCollapse returns a copy of set with the flag for date flipped.
func ToggleCollapse(set CollapsedSet, date string) CollapsedSet {
	next := make(CollapsedSet, len(set)+1)
	for k, v := range set {
		next[k] = v
	}
	next[date] = !set[date]
	return next
}

// IsCollapsed reports whether date is folded.
func (s CollapsedSet) IsCollapsed(date string) bool {
	return s[date]
}
