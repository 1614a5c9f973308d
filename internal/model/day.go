package model

import (
	"fmt"
	"time"
)

// dayLayout is the canonical calendar-day form used for storage keys and
// health export files.
const dayLayout = "2006-01-02"

// Day is a single calendar day with no time component, in its canonical
// "YYYY-MM-DD" form. Days are immutable values; derive neighbors with Prev
// and Sub instead of mutating anything.
type Day string

// ParseDay validates and normalizes a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid day %q (want YYYY-MM-DD): %w", s, err)
	}
	return DayOf(t), nil
}

// DayOf truncates a timestamp to its calendar day.
func DayOf(t time.Time) Day {
	return Day(t.Format(dayLayout))
}

// Today returns the current calendar day in the given location.
func Today(loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	return DayOf(time.Now().In(loc))
}

// Time returns midnight UTC of the day. Day values produced by ParseDay or
// DayOf always parse cleanly.
func (d Day) Time() time.Time {
	t, _ := time.Parse(dayLayout, string(d))
	return t
}

// Prev returns the preceding calendar day.
func (d Day) Prev() Day {
	return DayOf(d.Time().AddDate(0, 0, -1))
}

// Sub returns the day n days earlier.
func (d Day) Sub(n int) Day {
	return DayOf(d.Time().AddDate(0, 0, -n))
}

// Before reports whether d is strictly earlier than other. The canonical
// form makes lexical comparison equivalent to chronological comparison.
func (d Day) Before(other Day) bool { return d < other }

// After reports whether d is strictly later than other.
func (d Day) After(other Day) bool { return d > other }

func (d Day) String() string { return string(d) }
