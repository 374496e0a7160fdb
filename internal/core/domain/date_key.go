package domain

import (
	"errors"
	"fmt"
	"time"
)

// DateKeyLayout is the fixed-width layout of every history key.
// Keys must stay zero-padded so that lexicographic order is chronological order.
const DateKeyLayout = "2006-01-02"

var ErrInvalidDateKey = errors.New("invalid date key (must be YYYY-MM-DD)")

// DateKey identifies one calendar day in the user's local zone.
type DateKey string

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

type FixedClock struct {
	At time.Time
}

func (c *FixedClock) Now() time.Time {
	return c.At
}

func (c *FixedClock) Set(at time.Time) {
	c.At = at
}

// Today returns the calendar day of now as seen from loc.
func Today(now time.Time, loc *time.Location) DateKey {
	if loc == nil {
		loc = time.Local
	}
	return DateKey(now.In(loc).Format(DateKeyLayout))
}

func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(DateKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
	}
	// time.Parse accepts some non-padded inputs; the canonical form must round-trip.
	if t.Format(DateKeyLayout) != s {
		return "", fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
	}
	return DateKey(s), nil
}

func DateKeyOf(year int, month time.Month, day int) DateKey {
	return DateKey(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(DateKeyLayout))
}

// Time returns midnight UTC of the day. Day arithmetic is done on this civil
// representation so that DST transitions in the user's zone never move a key.
func (d DateKey) Time() time.Time {
	t, err := time.Parse(DateKeyLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d DateKey) Valid() bool {
	_, err := ParseDateKey(string(d))
	return err == nil
}

func (d DateKey) String() string {
	return string(d)
}

func (d DateKey) Before(other DateKey) bool {
	return d < other
}

func (d DateKey) After(other DateKey) bool {
	return d > other
}

// Shift moves d by n whole days (n may be negative).
func Shift(d DateKey, n int) DateKey {
	return DateKey(d.Time().AddDate(0, 0, n).Format(DateKeyLayout))
}

// DaysBetween returns b - a in whole days.
func DaysBetween(a, b DateKey) int {
	return int(b.Time().Sub(a.Time()).Hours() / 24)
}

// DateRange returns every day from start to end inclusive, ascending.
// It is empty when start is after end.
func DateRange(start, end DateKey) []DateKey {
	if start.After(end) {
		return nil
	}

	days := make([]DateKey, 0, DaysBetween(start, end)+1)

	current := start.Time()
	last := end.Time()
	for !current.After(last) {
		days = append(days, DateKey(current.Format(DateKeyLayout)))
		current = current.AddDate(0, 0, 1)
	}

	return days
}
