/*
Package attendance is the attendance metrics engine.

PURPOSE:
  Turns a day's punches into worked, absence, overtime and floating (grace)
  minutes, and folds a month of days into a MonthlyReport that also lists
  fully absent working days and malformed (odd punch count) days.

KEY CONCEPTS IN THIS FILE (types.go):
  - Minutes: whole minutes, the unit every metric is reported in
  - Punches: one employee's punches for a period, date -> ascending clocks
  - DailyMetrics: the four figures for one complete day
  - MonthlyReport: rows, absent days, malformed days, totals

DESIGN PRINCIPLES:
  1. Pure: CalculateDay and BuildReport take everything as parameters and
     hold no state. The period and policy are always explicit.
  2. No aliasing: results never share slices or maps with the caller's input.
  3. One classification: Classify decides a day's status for every caller.

SEE ALSO:
  - daily.go: CalculateDay (per-day metrics)
  - monthly.go: BuildReport (aggregation)
  - classify.go: Classify (day status)
  - sheet.go: Sheet (editable punch data for one period)
*/
package attendance

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/shift"
)

// =============================================================================
// MINUTES
// =============================================================================

// Minutes is a whole number of minutes.
type Minutes int

var sixty = decimal.NewFromInt(60)

// Hours converts to hours, rounded to two decimal places.
func (m Minutes) Hours() decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(sixty).Round(2)
}

// String formats as "9h 05m".
func (m Minutes) String() string {
	sign := ""
	if m < 0 {
		sign, m = "-", -m
	}
	return fmt.Sprintf("%s%dh %02dm", sign, int(m)/60, int(m)%60)
}

// =============================================================================
// PUNCHES
// =============================================================================

// Punches maps a date to that day's punches in ascending order.
type Punches map[calendar.Date][]calendar.Clock

// Clone returns a deep copy.
func (p Punches) Clone() Punches {
	out := make(Punches, len(p))
	for d, clocks := range p {
		out[d] = sortedCopy(clocks)
	}
	return out
}

// Dates returns the dates that carry punches, ascending.
func (p Punches) Dates() []calendar.Date {
	dates := make([]calendar.Date, 0, len(p))
	for d, clocks := range p {
		if len(clocks) > 0 {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func sortedCopy(clocks []calendar.Clock) []calendar.Clock {
	out := make([]calendar.Clock, len(clocks))
	copy(out, clocks)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// =============================================================================
// DAILY METRICS
// =============================================================================

// DailyMetrics are the figures for one day. All values are >= 0.
type DailyMetrics struct {
	Worked       Minutes `json:"worked_minutes"`
	Absence      Minutes `json:"absence_minutes"`
	Overtime     Minutes `json:"overtime_minutes"`
	FloatingUsed Minutes `json:"floating_minutes_used"`
}

// Add sums two sets of metrics.
func (m DailyMetrics) Add(o DailyMetrics) DailyMetrics {
	return DailyMetrics{
		Worked:       m.Worked + o.Worked,
		Absence:      m.Absence + o.Absence,
		Overtime:     m.Overtime + o.Overtime,
		FloatingUsed: m.FloatingUsed + o.FloatingUsed,
	}
}

// =============================================================================
// DAY STATUS
// =============================================================================

// DayStatus is the single classification of a date within a month.
type DayStatus string

const (
	DayComplete  DayStatus = "complete"  // even, positive punch count
	DayMalformed DayStatus = "malformed" // odd punch count
	DayAbsent    DayStatus = "absent"    // no punches on a working day
	DayRest      DayStatus = "rest"      // no punches on a rest day
)

// =============================================================================
// MONTHLY REPORT
// =============================================================================

// Row is one entry/exit pair. Day carries the metrics of the whole date.
type Row struct {
	Date    calendar.Date    `json:"date"`
	Weekday calendar.Weekday `json:"weekday"`
	Entry   calendar.Clock   `json:"entry"`
	Exit    calendar.Clock   `json:"exit"`
	Day     DailyMetrics     `json:"day"`
}

// AbsentDay is a working day with no punches. ShiftMinutes is the absence
// the day represents: the full nominal window.
type AbsentDay struct {
	Date         calendar.Date    `json:"date"`
	Weekday      calendar.Weekday `json:"weekday"`
	ShiftMinutes Minutes          `json:"shift_minutes"`
}

// MalformedDay is a day with an unmatched entry. Punches are left unresolved.
type MalformedDay struct {
	Date    calendar.Date    `json:"date"`
	Weekday calendar.Weekday `json:"weekday"`
	Punches []calendar.Clock `json:"punches"`
}

// DayResult records the status assigned to one date of the month.
type DayResult struct {
	Date    calendar.Date    `json:"date"`
	Weekday calendar.Weekday `json:"weekday"`
	Status  DayStatus        `json:"status"`
}

// MonthlyReport is the result of BuildReport.
type MonthlyReport struct {
	EmployeeID    string          `json:"employee_id"`
	Period        calendar.Period `json:"period"`
	Policy        shift.Policy    `json:"policy"`
	Days          []DayResult     `json:"days"`
	Rows          []Row           `json:"rows"`
	AbsentDays    []AbsentDay     `json:"absent_days"`
	MalformedDays []MalformedDay  `json:"malformed_days"`

	// Totals are summed over complete days only.
	Totals DailyMetrics `json:"totals"`
}

// CountStatus returns how many dates received the given status.
func (r *MonthlyReport) CountStatus(s DayStatus) int {
	n := 0
	for _, d := range r.Days {
		if d.Status == s {
			n++
		}
	}
	return n
}
