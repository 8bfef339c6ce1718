package utils

import (
	"strings"
	"time"
)

// dateLayouts are the accepted input formats: ISO first, then the two
// European forms used on the intake side.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
}

// AddMonths advances t by the given number of calendar months, rolling the
// year over as needed and clamping the day to the last valid day of the
// target month (Jan 31 + 1 month is Feb 28, or Feb 29 in a leap year).
// Zero or negative months return t unchanged.
func AddMonths(t time.Time, months int) time.Time {
	if months <= 0 {
		return t
	}

	month := int(t.Month()) - 1 + months
	year := t.Year() + month/12
	month = month%12 + 1

	day := t.Day()
	if last := lastDayOfMonth(year, time.Month(month)); day > last {
		day = last
	}

	return time.Date(year, time.Month(month), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// lastDayOfMonth returns the number of days in the given month.
func lastDayOfMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseDate parses a date string in ISO (YYYY-MM-DD), DD/MM/YYYY or
// DD-MM-YYYY form. The second return is false when no format matches;
// callers must treat that as "no value yet", not as a failure.
func ParseDate(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// FormatDate renders a date in ISO form for snapshots and exports.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
