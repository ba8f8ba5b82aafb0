package attendance

import (
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/shift"
)

// Classify assigns exactly one status to a date. Punch count decides first;
// the rest-day rule only applies to dates with no punches, so a rest day that
// was worked is still measured.
func Classify(policy shift.Policy, date calendar.Date, punches []calendar.Clock) DayStatus {
	switch n := len(punches); {
	case n == 0 && shift.IsRestDay(policy, calendar.WeekdayOf(date)):
		return DayRest
	case n == 0:
		return DayAbsent
	case n%2 != 0:
		return DayMalformed
	default:
		return DayComplete
	}
}
