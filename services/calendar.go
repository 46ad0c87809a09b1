package services

import (
	"time"
)

const dayKeyLayout = "2006-01-02"

// Calendar answers "what business day is it" in the canteen timezone.
// Every daily-limit, availability and default date-range decision goes through it,
// so the host locale never leaks into business rules.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// NewCalendar creates a calendar for the given location using the wall clock
func NewCalendar(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{loc: loc, now: time.Now}
}

// WithClock returns a copy of the calendar that reads time from now (used by tests)
func (c *Calendar) WithClock(now func() time.Time) *Calendar {
	return &Calendar{loc: c.loc, now: now}
}

// Location returns the canteen timezone
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now returns the current time in the canteen timezone
func (c *Calendar) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current weekday in the canteen timezone
func (c *Calendar) Today() time.Weekday {
	return c.Now().Weekday()
}

// DayKey formats the business day containing t
func (c *Calendar) DayKey(t time.Time) string {
	return t.In(c.loc).Format(dayKeyLayout)
}

// DayBounds returns [local midnight, next local midnight) for the day containing t
func (c *Calendar) DayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(c.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
	return start, start.AddDate(0, 0, 1)
}

// ParseDay parses a plain YYYY-MM-DD date as a day in the canteen timezone
func (c *Calendar) ParseDay(value string) (time.Time, error) {
	return time.ParseInLocation(dayKeyLayout, value, c.loc)
}
