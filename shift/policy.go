/*
Package shift defines the shift policies punches are measured against.

PURPOSE:
  A policy answers two questions for a date: what is the nominal paid window
  (start, end), and is this weekday a rest day. Policies are a closed set;
  each one is a row in the schedules table below, so adding a policy means
  adding one Policy constant and one table entry. The calculator never
  branches on the policy key.

AVAILABLE POLICIES:
  sat-wed: 10:00-19:00 every day, Thursday and Friday are rest days
  sat-thu: 10:00-18:00 Saturday-Wednesday, 10:00-14:00 Thursday,
           Friday is the only rest day

  Rest days still carry a window so a rest day that does have punches can be
  measured (sat-wed keeps 10:00-19:00, sat-thu Friday uses 10:00-18:00).

SEE ALSO:
  - calendar/time.go: Saturday-first Weekday
  - attendance/daily.go: consumes Window
*/
package shift

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/warp/attendance-engine/calendar"
)

// ErrUnknownPolicy is returned for an unrecognized shift key.
var ErrUnknownPolicy = errors.New("unknown shift policy")

// Policy is a shift policy key.
type Policy string

const (
	SatWed Policy = "sat-wed"
	SatThu Policy = "sat-thu"
)

// =============================================================================
// SCHEDULE TABLE
// =============================================================================

type span struct {
	start calendar.Clock
	end   calendar.Clock
}

type schedule struct {
	name    string
	windows [calendar.DaysPerWeek]span
	rest    [calendar.DaysPerWeek]bool
}

func everyDay(s span) [calendar.DaysPerWeek]span {
	var w [calendar.DaysPerWeek]span
	for i := range w {
		w[i] = s
	}
	return w
}

var (
	tenToSeven = span{start: calendar.NewClock(10, 0, 0), end: calendar.NewClock(19, 0, 0)}
	tenToSix   = span{start: calendar.NewClock(10, 0, 0), end: calendar.NewClock(18, 0, 0)}
	tenToTwo   = span{start: calendar.NewClock(10, 0, 0), end: calendar.NewClock(14, 0, 0)}
)

var schedules = map[Policy]schedule{
	SatWed: {
		name:    "Saturday to Wednesday",
		windows: everyDay(tenToSeven),
		rest:    restDays(calendar.Thursday, calendar.Friday),
	},
	SatThu: {
		name: "Saturday to Thursday",
		windows: func() [calendar.DaysPerWeek]span {
			w := everyDay(tenToSix)
			w[calendar.Thursday] = tenToTwo
			return w
		}(),
		rest: restDays(calendar.Friday),
	},
}

func restDays(days ...calendar.Weekday) [calendar.DaysPerWeek]bool {
	var r [calendar.DaysPerWeek]bool
	for _, d := range days {
		r[d] = true
	}
	return r
}

// =============================================================================
// LOOKUP
// =============================================================================

// Parse resolves a policy key ("sat-wed", "sat-thu").
func Parse(key string) (Policy, error) {
	p := Policy(strings.ToLower(strings.TrimSpace(key)))
	if _, ok := schedules[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, key)
	}
	return p, nil
}

// Policies lists every policy in a stable order.
func Policies() []Policy { return []Policy{SatWed, SatThu} }

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	_, ok := schedules[p]
	return ok
}

// Name is a human-readable label.
func (p Policy) Name() string { return schedules[p].name }

func (p Policy) String() string { return string(p) }

// =============================================================================
// WINDOW
// =============================================================================

// Window is the nominal paid interval [Start, End) for one date.
type Window struct {
	Date  calendar.Date
	Start time.Time
	End   time.Time
}

// Duration is the nominal length of the window.
func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }

// Minutes is the nominal length in whole minutes.
func (w Window) Minutes() int { return int(w.Duration() / time.Minute) }

// WindowFor returns the shift window of the date under the policy.
func WindowFor(p Policy, date calendar.Date) (Window, error) {
	s, ok := schedules[p]
	if !ok {
		return Window{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, string(p))
	}
	sp := s.windows[calendar.WeekdayOf(date)]
	return Window{Date: date, Start: date.At(sp.start), End: date.At(sp.end)}, nil
}

// IsRestDay reports whether the weekday is a rest day under the policy.
// Unknown policies have no rest days.
func IsRestDay(p Policy, wd calendar.Weekday) bool {
	s, ok := schedules[p]
	if !ok || wd < 0 || int(wd) >= calendar.DaysPerWeek {
		return false
	}
	return s.rest[wd]
}

// DaySpec describes one weekday of a policy's table.
type DaySpec struct {
	Weekday calendar.Weekday
	Start   calendar.Clock
	End     calendar.Clock
	Rest    bool
}

// Week returns the policy's weekly table, Saturday first.
func Week(p Policy) ([]DaySpec, error) {
	s, ok := schedules[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, string(p))
	}
	week := make([]DaySpec, calendar.DaysPerWeek)
	for i := range week {
		week[i] = DaySpec{
			Weekday: calendar.Weekday(i),
			Start:   s.windows[i].start,
			End:     s.windows[i].end,
			Rest:    s.rest[i],
		}
	}
	return week, nil
}
