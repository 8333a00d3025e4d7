package core

import (
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// FormatDate renders t as YYYY-MM-DD in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatMonth renders t as a YYYY-MM month key.
func FormatMonth(t time.Time) string {
	return t.Format(MonthLayout)
}

// ParseDate parses a YYYY-MM-DD calendar date. The result carries no zone
// information beyond UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseMonth parses a YYYY-MM month key.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return t, nil
}

// ValidMonthKey reports whether s is a well-formed YYYY-MM key.
func ValidMonthKey(s string) bool {
	if len(s) != len(MonthLayout) {
		return false
	}
	_, err := ParseMonth(s)
	return err == nil
}
