package attendance

import (
	"sort"

	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/shift"
)

// =============================================================================
// SHEET - Punch data for one reporting period
// =============================================================================

// Sheet holds every employee's punches for one period:
// employeeID -> date -> ascending clocks.
//
// Edits validate before they write, so a failed edit leaves the sheet as it was.
// A Sheet is not safe for concurrent use; stores wrap it with a lock and hand
// out clones.
type Sheet struct {
	Period    calendar.Period
	employees map[string]Punches
}

// NewSheet creates an empty sheet for the period.
func NewSheet(period calendar.Period) *Sheet {
	return &Sheet{Period: period, employees: make(map[string]Punches)}
}

// Add records one punch. The day's sequence stays sorted.
func (s *Sheet) Add(employeeID string, date calendar.Date, clock calendar.Clock) error {
	if err := s.check(employeeID, date); err != nil {
		return err
	}
	s.insertSorted(employeeID, date, clock)
	return nil
}

// InsertPair records an entry/exit pair on a date.
func (s *Sheet) InsertPair(employeeID string, date calendar.Date, entry, exit calendar.Clock) error {
	if err := s.check(employeeID, date); err != nil {
		return err
	}
	if entry >= exit {
		return &PunchOrderError{Date: date, Entry: entry, Exit: exit}
	}
	s.insertSorted(employeeID, date, entry)
	s.insertSorted(employeeID, date, exit)
	return nil
}

// DeletePunch removes one punch equal to clock. An emptied date is removed,
// and an employee left with no dates is removed too.
func (s *Sheet) DeletePunch(employeeID string, date calendar.Date, clock calendar.Clock) error {
	days, ok := s.employees[employeeID]
	if !ok {
		return ErrPunchNotFound
	}
	clocks := days[date]
	i := sort.Search(len(clocks), func(i int) bool { return clocks[i] >= clock })
	if i == len(clocks) || clocks[i] != clock {
		return ErrPunchNotFound
	}

	clocks = append(clocks[:i:i], clocks[i+1:]...)
	if len(clocks) == 0 {
		delete(days, date)
	} else {
		days[date] = clocks
	}
	if len(days) == 0 {
		delete(s.employees, employeeID)
	}
	return nil
}

func (s *Sheet) check(employeeID string, date calendar.Date) error {
	if employeeID == "" {
		return ErrInvalidEmployee
	}
	if !s.Period.Contains(date) {
		return &OutOfRangeError{Date: date, Period: s.Period}
	}
	return nil
}

func (s *Sheet) insertSorted(employeeID string, date calendar.Date, clock calendar.Clock) {
	days, ok := s.employees[employeeID]
	if !ok {
		days = make(Punches)
		s.employees[employeeID] = days
	}
	clocks := days[date]

	// Insert after any equal clock so duplicates keep arrival order.
	i := sort.Search(len(clocks), func(i int) bool { return clocks[i] > clock })
	clocks = append(clocks, 0)
	copy(clocks[i+1:], clocks[i:])
	clocks[i] = clock
	days[date] = clocks
}

// =============================================================================
// READS - Always deep copies
// =============================================================================

// Employee returns a copy of one employee's punches.
func (s *Sheet) Employee(employeeID string) (Punches, bool) {
	days, ok := s.employees[employeeID]
	if !ok {
		return Punches{}, false
	}
	return days.Clone(), true
}

// Day returns a copy of one date's punches.
func (s *Sheet) Day(employeeID string, date calendar.Date) []calendar.Clock {
	return sortedCopy(s.employees[employeeID][date])
}

// EmployeeIDs lists employees with at least one punch, sorted.
func (s *Sheet) EmployeeIDs() []string {
	ids := make([]string, 0, len(s.employees))
	for id := range s.employees {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len is the total number of punches on the sheet.
func (s *Sheet) Len() int {
	n := 0
	for _, days := range s.employees {
		for _, clocks := range days {
			n += len(clocks)
		}
	}
	return n
}

// Clone returns an independent copy of the sheet.
func (s *Sheet) Clone() *Sheet {
	out := NewSheet(s.Period)
	for id, days := range s.employees {
		out.employees[id] = days.Clone()
	}
	return out
}

// Report builds the monthly report of one employee over this sheet's period.
// An employee without punches gets a report in which every working day is absent.
func (s *Sheet) Report(employeeID string, policy shift.Policy) (*MonthlyReport, error) {
	return BuildReport(employeeID, s.Period, policy, s.employees[employeeID])
}
