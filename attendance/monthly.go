package attendance

import (
	"fmt"

	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/shift"
)

// =============================================================================
// MONTHLY AGGREGATION
// =============================================================================

// BuildReport folds one employee's month into a MonthlyReport.
//
// Every date of the period is classified once:
//   - complete:  CalculateDay runs, one Row per pair, metrics join Totals
//   - malformed: listed with its raw punches, contributes nothing to Totals
//   - absent:    listed with its nominal shift minutes, not part of Totals
//   - rest:      skipped
//
// Dates in punches that fall outside the period are ignored. The input is never
// retained or modified.
func BuildReport(employeeID string, period calendar.Period, policy shift.Policy, punches Punches) (*MonthlyReport, error) {
	if !policy.Valid() {
		return nil, fmt.Errorf("%w: %q", shift.ErrUnknownPolicy, string(policy))
	}
	days, err := calendar.DaysInMonth(period.Year, int(period.Month))
	if err != nil {
		return nil, err
	}

	report := &MonthlyReport{
		EmployeeID:    employeeID,
		Period:        period,
		Policy:        policy,
		Days:          make([]DayResult, 0, len(days)),
		Rows:          []Row{},
		AbsentDays:    []AbsentDay{},
		MalformedDays: []MalformedDay{},
	}

	for _, date := range days {
		clocks := sortedCopy(punches[date])
		weekday := calendar.WeekdayOf(date)
		status := Classify(policy, date, clocks)
		report.Days = append(report.Days, DayResult{Date: date, Weekday: weekday, Status: status})

		switch status {
		case DayComplete:
			window, err := shift.WindowFor(policy, date)
			if err != nil {
				return nil, err
			}
			metrics, err := CalculateDay(window, clocks)
			if err != nil {
				return nil, err
			}
			report.Totals = report.Totals.Add(metrics)
			for i := 0; i+1 < len(clocks); i += 2 {
				report.Rows = append(report.Rows, Row{
					Date:    date,
					Weekday: weekday,
					Entry:   clocks[i],
					Exit:    clocks[i+1],
					Day:     metrics,
				})
			}

		case DayMalformed:
			report.MalformedDays = append(report.MalformedDays, MalformedDay{
				Date:    date,
				Weekday: weekday,
				Punches: clocks,
			})

		case DayAbsent:
			window, err := shift.WindowFor(policy, date)
			if err != nil {
				return nil, err
			}
			report.AbsentDays = append(report.AbsentDays, AbsentDay{
				Date:         date,
				Weekday:      weekday,
				ShiftMinutes: AbsentDayMetrics(window).Absence,
			})
		}
	}

	return report, nil
}
