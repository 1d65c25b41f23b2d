// Package dates implements the DD/MM/YYYY calendar-date convention used on
// every boundary of the system. Dates travel as strings for round-trip
// fidelity with the storage layer; parsing happens only where a comparison
// is needed.
package dates

import "time"

const (
	// Layout is the wire format for calendar dates.
	Layout = "02/01/2006"
	// TimestampLayout is the wire format for registration timestamps.
	TimestampLayout = "02/01/2006 15:04:05"
)

// Parse converts a DD/MM/YYYY string into a time.Time.
func Parse(s string) (time.Time, error) {
	return time.Parse(Layout, s)
}

// Format renders a time.Time as DD/MM/YYYY.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// FormatTimestamp renders a time.Time as DD/MM/YYYY HH:MM:SS.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ValidRange reports whether both dates parse and end falls strictly after
// start.
func ValidRange(start, end string) bool {
	s, err := Parse(start)
	if err != nil {
		return false
	}
	e, err := Parse(end)
	if err != nil {
		return false
	}
	return e.After(s)
}

// InRange reports whether day falls within [start, end], boundaries included.
// All three must already be parsed.
func InRange(day, start, end time.Time) bool {
	return !day.Before(start) && !day.After(end)
}

// IsFuture reports whether the date falls strictly after now's calendar day.
func IsFuture(d time.Time, now time.Time) bool {
	return truncate(d).After(truncate(now))
}

// IsTodayOrFuture reports whether the date is now's calendar day or later.
// Birth dates must be strictly in the past.
func IsTodayOrFuture(d time.Time, now time.Time) bool {
	return !truncate(d).Before(truncate(now))
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
