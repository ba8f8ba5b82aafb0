package attendance

import (
	"fmt"
	"time"

	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/shift"
)

// MaxFloating is the largest late arrival the grace rule forgives.
const MaxFloating = 60 * time.Minute

// =============================================================================
// DAILY CALCULATION
// =============================================================================

// CalculateDay computes the metrics of one day from its punches and shift window.
//
// Punches pair up by position: 1st/2nd, 3rd/4th, ... Every figure is floored to
// whole minutes per interval before summing.
//
// Grace (floating time): when the first entry is late by at most MaxFloating and
// the last exit is at or after end+lateness, the window used for absence slides
// to [first entry, end+lateness] and FloatingUsed is the lateness. The grace is
// then taken back out of exit-side overtime. At most once per day, and it only
// ever excuses late arrival.
//
// A day with no punches yields AbsentDayMetrics. An odd count is ErrMalformedDay.
func CalculateDay(window shift.Window, punches []calendar.Clock) (DailyMetrics, error) {
	if len(punches) == 0 {
		return AbsentDayMetrics(window), nil
	}
	if len(punches)%2 != 0 {
		return DailyMetrics{}, fmt.Errorf("%w: %s has %d punches", ErrMalformedDay, window.Date, len(punches))
	}

	pairs := toPairs(window.Date, sortedCopy(punches))
	var m DailyMetrics

	for _, p := range pairs {
		m.Worked += minutesBetween(p.entry, p.exit)
	}

	effStart, effEnd := window.Start, window.End
	first, last := pairs[0].entry, pairs[len(pairs)-1].exit
	if lateness := first.Sub(window.Start); lateness > 0 && lateness <= MaxFloating {
		if !last.Before(window.End.Add(lateness)) {
			effStart = first
			effEnd = window.End.Add(lateness)
			m.FloatingUsed = Minutes(lateness / time.Minute)
		}
	}

	// Only entries inside (cursor, effEnd) open a gap. A pair that starts at or
	// after the effective end adds nothing, but still moves the cursor.
	cursor := effStart
	for _, p := range pairs {
		if p.entry.After(cursor) && p.entry.Before(effEnd) {
			m.Absence += minutesBetween(latest(cursor, effStart), p.entry)
		}
		cursor = p.exit
	}
	m.Absence += minutesBetween(cursor, effEnd)

	// Measured against the nominal window, per pair and unclamped.
	var early, late Minutes
	for _, p := range pairs {
		if p.entry.Before(window.Start) {
			early += minutesBetween(p.entry, window.Start)
		}
		if p.exit.After(window.End) {
			late += minutesBetween(window.End, p.exit)
		}
	}
	late -= m.FloatingUsed
	if late < 0 {
		late = 0
	}
	m.Overtime = early + late

	return m, nil
}

// AbsentDayMetrics is the figure for a working day with no punches:
// the whole nominal window is absence.
func AbsentDayMetrics(window shift.Window) DailyMetrics {
	return DailyMetrics{Absence: Minutes(window.Minutes())}
}

// =============================================================================
// INTERVAL HELPERS
// =============================================================================

type pair struct {
	entry time.Time
	exit  time.Time
}

func toPairs(date calendar.Date, sorted []calendar.Clock) []pair {
	pairs := make([]pair, 0, len(sorted)/2)
	for i := 0; i+1 < len(sorted); i += 2 {
		pairs = append(pairs, pair{
			entry: date.At(sorted[i]),
			exit:  date.At(sorted[i+1]),
		})
	}
	return pairs
}

// minutesBetween floors to - from to whole minutes; zero if to is not after from.
func minutesBetween(from, to time.Time) Minutes {
	if !to.After(from) {
		return 0
	}
	return Minutes(to.Sub(from) / time.Minute)
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
