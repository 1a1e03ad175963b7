package services

import (
	"time"

	"resolveAPI/utils"
)

// Clock resolves "today" in the configured timezone.
type Clock struct {
	now func() time.Time
	loc *time.Location
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{now: time.Now, loc: loc}
}

// FixedClock always reports the given instant. Used by tests and the CLI.
func FixedClock(at time.Time, loc *time.Location) Clock {
	c := NewClock(loc)
	c.now = func() time.Time { return at }
	return c
}

// Today is midnight UTC of the current local calendar day.
func (c Clock) Today() time.Time {
	if c.now == nil {
		return utils.DayOf(time.Now(), c.loc)
	}
	return utils.DayOf(c.now(), c.loc)
}

func (c Clock) TodayString() string {
	return utils.FormatDate(c.Today())
}

// resolveDate returns the requested YYYY-MM-DD day, or today when empty.
func (c Clock) resolveDate(date string) (string, error) {
	if date == "" {
		return c.TodayString(), nil
	}
	d, err := utils.ParseDate(date)
	if err != nil {
		return "", err
	}
	return utils.FormatDate(d), nil
}
