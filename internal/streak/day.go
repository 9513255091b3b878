package streak

import (
	"fmt"
	"time"
)

// DayID is a calendar day in YYYY-MM-DD form, evaluated in the service's
// fixed civil timezone. String comparison orders DayIDs chronologically.
type DayID string

const dayLayout = "2006-01-02"

// DefaultTimezone is the civil zone all streak accounting runs in.
const DefaultTimezone = "Asia/Kolkata"

// Calendar converts instants to DayIDs in one fixed zone.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

func NewCalendar(tz string) (Calendar, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Calendar{}, fmt.Errorf("load streak timezone %q: %w", tz, err)
	}
	return Calendar{loc: loc, now: time.Now}, nil
}

// NewCalendarAt pins the calendar's clock, for tests.
func NewCalendarAt(tz string, now func() time.Time) (Calendar, error) {
	c, err := NewCalendar(tz)
	if err != nil {
		return Calendar{}, err
	}
	c.now = now
	return c, nil
}

// Location exposes the fixed civil zone for wall-clock scheduling.
func (c Calendar) Location() *time.Location {
	return c.loc
}

func (c Calendar) Today() DayID {
	return c.DayOf(c.now())
}

func (c Calendar) DayOf(t time.Time) DayID {
	return DayID(t.In(c.loc).Format(dayLayout))
}

// PreviousDay decrements by one calendar day rather than subtracting 24h,
// so it stays correct across daylight-saving transitions.
func PreviousDay(d DayID) DayID {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return ""
	}
	return DayID(t.AddDate(0, 0, -1).Format(dayLayout))
}

// ParseDay validates a client-supplied day identifier.
func ParseDay(s string) (DayID, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid day %q: %w", s, err)
	}
	// Round-trip guards against variants like 2024-1-02 that time.Parse
	// would otherwise let through on some layouts.
	if got := t.Format(dayLayout); got != s {
		return "", fmt.Errorf("invalid day %q", s)
	}
	return DayID(s), nil
}
