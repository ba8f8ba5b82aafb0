/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the attendance model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

DURATIONS:
  Every duration is sent three ways so clients never re-derive them:
    worked_minutes: 545        (integer minutes, the source of truth)
    worked:         "9h 05m"   (display string)
    worked_hours:   "9.08"     (decimal hours, 2 places)

SEE ALSO:
  - handlers.go: Uses these types
  - attendance/types.go: MonthlyReport
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/shift"
	"github.com/warp/attendance-engine/store/sqlite"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Shift     string    `json:"shift"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateEmployeeRequest is the request to create or rename an employee.
type CreateEmployeeRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Shift string `json:"shift,omitempty"` // defaults to the server's default shift
}

// =============================================================================
// PERIODS
// =============================================================================

// ImportDTO describes an accepted feed upload.
type ImportDTO struct {
	ID          string    `json:"id"`
	Period      string    `json:"period"`
	Rows        int       `json:"rows"`
	Imported    int       `json:"imported"`
	OutOfPeriod int       `json:"out_of_period"`
	Skipped     int       `json:"skipped"`
	Employees   []string  `json:"employees,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PeriodEmployeesResponse lists who has punches in a period.
type PeriodEmployeesResponse struct {
	Period    string   `json:"period"`
	Employees []string `json:"employees"`
}

// AddPunchPairRequest adds an entry/exit pair. Times are HH:MM or HH:MM:SS.
type AddPunchPairRequest struct {
	Date  string `json:"date"`
	Entry string `json:"entry"`
	Exit  string `json:"exit"`
}

// DayPunchesDTO is the state of one day after an edit.
type DayPunchesDTO struct {
	EmployeeID string   `json:"employee_id"`
	Date       string   `json:"date"`
	Punches    []string `json:"punches"`
}

// =============================================================================
// REPORT
// =============================================================================

// MetricsDTO is one set of daily metrics or the monthly totals.
type MetricsDTO struct {
	WorkedMinutes       int             `json:"worked_minutes"`
	Worked              string          `json:"worked"`
	WorkedHours         decimal.Decimal `json:"worked_hours"`
	AbsenceMinutes      int             `json:"absence_minutes"`
	Absence             string          `json:"absence"`
	AbsenceHours        decimal.Decimal `json:"absence_hours"`
	OvertimeMinutes     int             `json:"overtime_minutes"`
	Overtime            string          `json:"overtime"`
	OvertimeHours       decimal.Decimal `json:"overtime_hours"`
	FloatingUsedMinutes int             `json:"floating_used_minutes"`
	FloatingUsed        string          `json:"floating_used"`
}

// RowDTO is one entry/exit pair of a complete day.
type RowDTO struct {
	Date    string     `json:"date"`
	Weekday string     `json:"weekday"`
	Entry   string     `json:"entry"`
	Exit    string     `json:"exit"`
	Day     MetricsDTO `json:"day"`
}

// AbsentDayDTO is a scheduled working day without punches.
type AbsentDayDTO struct {
	Date         string `json:"date"`
	Weekday      string `json:"weekday"`
	ShiftMinutes int    `json:"shift_minutes"`
	Shift        string `json:"shift"`
}

// MalformedDayDTO is a day with an odd punch count.
type MalformedDayDTO struct {
	Date    string   `json:"date"`
	Weekday string   `json:"weekday"`
	Punches []string `json:"punches"`
}

// ReportDTO is the monthly report for one employee.
type ReportDTO struct {
	EmployeeID    string            `json:"employee_id"`
	EmployeeName  string            `json:"employee_name"`
	Period        string            `json:"period"`
	Shift         string            `json:"shift"`
	ShiftName     string            `json:"shift_name"`
	Rows          []RowDTO          `json:"rows"`
	AbsentDays    []AbsentDayDTO    `json:"absent_days"`
	MalformedDays []MalformedDayDTO `json:"malformed_days"`
	Totals        MetricsDTO        `json:"totals"`
	DayCounts     map[string]int    `json:"day_counts"`
}

// =============================================================================
// SHIFTS & SCENARIOS
// =============================================================================

// ShiftDTO describes a shift policy and its weekly table.
type ShiftDTO struct {
	Key  string        `json:"key"`
	Name string        `json:"name"`
	Week []ShiftDayDTO `json:"week"`
}

// ShiftDayDTO is one weekday of a shift policy.
type ShiftDayDTO struct {
	Weekday string `json:"weekday"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Rest    bool   `json:"rest"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Period      string `json:"period"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e sqlite.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:        e.ID,
		Name:      e.Name,
		Shift:     string(e.Shift),
		CreatedAt: e.CreatedAt,
	}
}

func toImportDTO(imp *sqlite.Import) ImportDTO {
	return ImportDTO{
		ID:          imp.ID,
		Period:      imp.Period.String(),
		Rows:        imp.Stats.Rows,
		Imported:    imp.Stats.Imported,
		OutOfPeriod: imp.Stats.OutOfPeriod,
		Skipped:     imp.Stats.Skipped,
		CreatedAt:   imp.CreatedAt,
	}
}

func toMetricsDTO(m attendance.DailyMetrics) MetricsDTO {
	return MetricsDTO{
		WorkedMinutes:       int(m.Worked),
		Worked:              m.Worked.String(),
		WorkedHours:         m.Worked.Hours(),
		AbsenceMinutes:      int(m.Absence),
		Absence:             m.Absence.String(),
		AbsenceHours:        m.Absence.Hours(),
		OvertimeMinutes:     int(m.Overtime),
		Overtime:            m.Overtime.String(),
		OvertimeHours:       m.Overtime.Hours(),
		FloatingUsedMinutes: int(m.FloatingUsed),
		FloatingUsed:        m.FloatingUsed.String(),
	}
}

func toReportDTO(report *attendance.MonthlyReport, name string) ReportDTO {
	dto := ReportDTO{
		EmployeeID:    report.EmployeeID,
		EmployeeName:  name,
		Period:        report.Period.String(),
		Shift:         string(report.Policy),
		ShiftName:     report.Policy.Name(),
		Rows:          make([]RowDTO, len(report.Rows)),
		AbsentDays:    make([]AbsentDayDTO, len(report.AbsentDays)),
		MalformedDays: make([]MalformedDayDTO, len(report.MalformedDays)),
		Totals:        toMetricsDTO(report.Totals),
		DayCounts:     make(map[string]int),
	}
	if dto.EmployeeName == "" {
		dto.EmployeeName = report.EmployeeID
	}

	for i, row := range report.Rows {
		dto.Rows[i] = RowDTO{
			Date:    row.Date.String(),
			Weekday: row.Weekday.String(),
			Entry:   row.Entry.String(),
			Exit:    row.Exit.String(),
			Day:     toMetricsDTO(row.Day),
		}
	}
	for i, a := range report.AbsentDays {
		dto.AbsentDays[i] = AbsentDayDTO{
			Date:         a.Date.String(),
			Weekday:      a.Weekday.String(),
			ShiftMinutes: int(a.ShiftMinutes),
			Shift:        a.ShiftMinutes.String(),
		}
	}
	for i, m := range report.MalformedDays {
		dto.MalformedDays[i] = MalformedDayDTO{
			Date:    m.Date.String(),
			Weekday: m.Weekday.String(),
			Punches: clockStrings(m.Punches),
		}
	}
	for _, d := range report.Days {
		dto.DayCounts[string(d.Status)]++
	}
	return dto
}

func toShiftDTO(p shift.Policy) (ShiftDTO, error) {
	week, err := shift.Week(p)
	if err != nil {
		return ShiftDTO{}, err
	}
	dto := ShiftDTO{Key: string(p), Name: p.Name(), Week: make([]ShiftDayDTO, len(week))}
	for i, d := range week {
		dto.Week[i] = ShiftDayDTO{
			Weekday: d.Weekday.String(),
			Start:   d.Start.String(),
			End:     d.End.String(),
			Rest:    d.Rest,
		}
	}
	return dto, nil
}

func clockStrings(clocks []calendar.Clock) []string {
	out := make([]string, len(clocks))
	for i, c := range clocks {
		out[i] = c.String()
	}
	return out
}
