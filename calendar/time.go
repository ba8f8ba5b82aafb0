/*
Package calendar provides the date and time-of-day values the attendance engine
computes over.

KEY CONCEPTS IN THIS FILE (time.go):
  - Date: a calendar day (no time, no zone). Comparable, safe as a map key.
  - Clock: a time of day at second precision ("10:15:00"). Punches are Clocks.
  - Weekday: a Saturday-first week (Saturday = 0 ... Friday = 6), the week
    the shift policies are written against.

All instants are built in UTC. Punches never cross zones, so wall-clock
arithmetic on a single date is exact.

SEE ALSO:
  - period.go: Period (year + month) and month enumeration
  - shift/policy.go: uses Weekday to pick shift windows and rest days
*/
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar value
// =============================================================================

const dateLayout = "2006-01-02"

// Date is a calendar day. Always normalized (Feb 30 becomes Mar 1/2).
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the normalized date for year/month/day.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses an ISO date ("2025-03-08").
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time { return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC) }

// At returns the instant of clock c on this date.
func (d Date) At(c Clock) time.Time { return d.Time().Add(c.Duration()) }

// Comparison
func (d Date) Before(other Date) bool { return d.Time().Before(other.Time()) }

// Arithmetic
func (d Date) AddDays(n int) Date { return DateOf(d.Time().AddDate(0, 0, n)) }

// Weekday returns the Saturday-first weekday of the date.
func (d Date) Weekday() Weekday { return WeekdayOf(d) }

func (d Date) String() string { return d.Time().Format(dateLayout) }

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// CLOCK - Time of day, second precision
// =============================================================================

// Clock is a time of day in seconds since midnight.
type Clock int

// NewClock builds a Clock from hour, minute, second.
func NewClock(hour, minute, second int) Clock {
	return Clock(hour*3600 + minute*60 + second)
}

// ClockOf returns the time of day of t.
func ClockOf(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute(), t.Second())
}

// ParseClock accepts "15:04:05" or "15:04".
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	limits := []int{23, 59, 59}
	values := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || len(p) == 0 || len(p) > 2 || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		values[i] = n
	}
	return NewClock(values[0], values[1], values[2]), nil
}

// MustParseClock is ParseClock for literals. Panics on bad input.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) Hour() int   { return int(c) / 3600 }
func (c Clock) Minute() int { return int(c) % 3600 / 60 }
func (c Clock) Second() int { return int(c) % 60 }

// Duration is the offset of the clock from midnight.
func (c Clock) Duration() time.Duration { return time.Duration(c) * time.Second }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
}

func (c Clock) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// =============================================================================
// WEEKDAY - Saturday-first week
// =============================================================================

// Weekday indexes a Saturday-first week.
type Weekday int

const (
	Saturday Weekday = iota
	Sunday
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
)

// DaysPerWeek is the length of the week table used by shift policies.
const DaysPerWeek = 7

var weekdayNames = [DaysPerWeek]string{
	"Saturday", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday",
}

// WeekdayOf maps the date onto the Saturday-first week.
// time.Weekday counts from Sunday = 0, so shifting by one lands Saturday on 0.
func WeekdayOf(d Date) Weekday {
	return Weekday((int(d.Time().Weekday()) + 1) % DaysPerWeek)
}

// Std converts back to the standard library weekday.
func (w Weekday) Std() time.Weekday { return time.Weekday((int(w) + 6) % DaysPerWeek) }

func (w Weekday) String() string {
	if w < 0 || int(w) >= DaysPerWeek {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

func (w Weekday) MarshalText() ([]byte, error) { return []byte(w.String()), nil }
