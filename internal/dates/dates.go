// Package dates implements the calendar arithmetic the valuation core relies on:
// lenient parsing, whole-month spans and month stepping that clamps to the end
// of shorter months.
package dates

import (
	"strings"
	"time"
)

// Layout is the canonical date format of parcel records.
const Layout = "2006-01-02"

var layouts = []string{
	Layout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02-01-2006",
}

// Parse interprets value as a calendar date. It accepts time.Time values and
// strings in any of the supported layouts. The result is truncated to midnight UTC.
// ok is false for missing or unparseable input.
func Parse(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return Day(v), true
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return Day(*v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return Day(t), true
			}
		}
	}
	return time.Time{}, false
}

// ParsePtr is Parse returning nil instead of ok=false.
func ParsePtr(value interface{}) *time.Time {
	t, ok := Parse(value)
	if !ok {
		return nil
	}
	return &t
}

// Or returns *t, or fallback when t is nil.
func Or(t *time.Time, fallback time.Time) time.Time {
	if t == nil {
		return Day(fallback)
	}
	return *t
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Format renders t in the canonical record layout.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// FormatPtr renders t or returns "" for nil.
func FormatPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Format(*t)
}

// CalendarMonths is the signed whole-month difference between start and end,
// ignoring the day of month.
func CalendarMonths(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
}

// MonthsBetween is CalendarMonths clamped to at least 1, so that spans are
// always safe to divide by.
func MonthsBetween(start, end time.Time) int {
	return max(CalendarMonths(start, end), 1)
}

// YearsBetween is MonthsBetween expressed in years.
func YearsBetween(start, end time.Time) float64 {
	return float64(MonthsBetween(start, end)) / 12
}

// AddMonths moves t by n calendar months. When the target month is shorter the
// day is clamped to its last day, so Jan 31 + 1 month is Feb 28 (or 29).
func AddMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	day := min(t.Day(), daysIn(first.Year(), first.Month()))
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// AddYears moves t by n years with the same clamping as AddMonths.
func AddYears(t time.Time, n int) time.Time {
	return AddMonths(t, 12*n)
}

// MonthStart returns the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
