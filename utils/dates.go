package utils

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used for completion keys and query params.
const DateLayout = "2006-01-02"

// FormatDate renders the calendar day of t (in t's own location).
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string into midnight UTC of that day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// DayOf returns midnight UTC of the calendar day t falls on in loc.
// All day arithmetic is done on these UTC midnights so DST never shifts a day.
func DayOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a calendar day by n days.
func AddDays(day time.Time, n int) time.Time {
	return day.AddDate(0, 0, n)
}

// DayNumber is the number of whole days since the Unix epoch for a UTC midnight.
func DayNumber(day time.Time) int64 {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return d.Unix() / 86400
}

// DaysBetween returns b - a in calendar days.
func DaysBetween(a, b time.Time) int {
	return int(DayNumber(b) - DayNumber(a))
}

// MondayIndex maps a weekday to 0=Monday … 6=Sunday.
func MondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// StartOfWeek returns the Monday of the week containing day.
func StartOfWeek(day time.Time) time.Time {
	return AddDays(day, -MondayIndex(day))
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
