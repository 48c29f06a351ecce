// Package period resolves reporting intervals for the analytics dashboard.
// Every boundary is computed in business local time, obtained by shifting
// the wall clock by a fixed configured offset.
package period

import (
	"fmt"
	"time"
)

// Kind selects the breadth of a reporting period.
type Kind string

const (
	KindDaily   Kind = "daily"
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
	KindYearly  Kind = "yearly"
	KindTotal   Kind = "total"
)

// ParseKind validates a raw period string. An empty string defaults to
// monthly.
func ParseKind(raw string) (Kind, error) {
	if raw == "" {
		return KindMonthly, nil
	}
	switch k := Kind(raw); k {
	case KindDaily, KindWeekly, KindMonthly, KindYearly, KindTotal:
		return k, nil
	}
	return "", fmt.Errorf("unknown period %q", raw)
}

// Range is a current interval plus the immediately preceding interval of
// equal length. Intervals are half-open: [Start, End).
type Range struct {
	CurrentStart  time.Time
	CurrentEnd    time.Time
	PreviousStart time.Time
	PreviousEnd   time.Time
}

// Contains reports whether t falls inside the current interval.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.CurrentStart) && t.Before(r.CurrentEnd)
}

// ContainsPrevious reports whether t falls inside the previous interval.
func (r Range) ContainsPrevious(t time.Time) bool {
	if r.PreviousStart.Equal(r.PreviousEnd) {
		return false
	}
	return !t.Before(r.PreviousStart) && t.Before(r.PreviousEnd)
}

// BusinessTime shifts an instant into business local time. The result is
// expressed in UTC so that Truncate and time.Date arithmetic bucket by the
// business day, not the server day.
func BusinessTime(t time.Time, offset time.Duration) time.Time {
	return t.UTC().Add(offset)
}

// Resolve computes the current and previous interval for a period kind.
// now is shifted by offset before any boundary is derived, so a sale at
// 01:00 UTC with a -3h offset lands on the previous business day. Weeks
// start on Monday. KindTotal has no previous interval; its previous
// boundaries are the zero time.
func Resolve(kind Kind, now time.Time, offset time.Duration) Range {
	bt := BusinessTime(now, offset)
	year, month, day := bt.Date()

	var r Range
	switch kind {
	case KindDaily:
		r.CurrentStart = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		r.CurrentEnd = r.CurrentStart.AddDate(0, 0, 1)
		r.PreviousStart = r.CurrentStart.AddDate(0, 0, -1)
	case KindWeekly:
		weekday := int(bt.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		r.CurrentStart = time.Date(year, month, day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(weekday - 1))
		r.CurrentEnd = r.CurrentStart.AddDate(0, 0, 7)
		r.PreviousStart = r.CurrentStart.AddDate(0, 0, -7)
	case KindMonthly:
		r.CurrentStart = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		r.CurrentEnd = r.CurrentStart.AddDate(0, 1, 0)
		r.PreviousStart = r.CurrentStart.AddDate(0, -1, 0)
	case KindYearly:
		r.CurrentStart = time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		r.CurrentEnd = r.CurrentStart.AddDate(1, 0, 0)
		r.PreviousStart = r.CurrentStart.AddDate(-1, 0, 0)
	case KindTotal:
		r.CurrentStart = time.Time{}
		r.CurrentEnd = bt.Add(time.Nanosecond)
		return r
	}
	r.PreviousEnd = r.CurrentStart
	return r
}

// CalculateChange returns the percent change from previous to current.
// A growth from zero reports 100; no activity in either period reports 0.
func CalculateChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}
