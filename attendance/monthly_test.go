package attendance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/shift"
)

func march2025(t *testing.T) calendar.Period {
	t.Helper()
	p, err := calendar.NewPeriod(2025, 3)
	require.NoError(t, err)
	return p
}

func day(n int) calendar.Date { return calendar.NewDate(2025, time.March, n) }

func TestBuildReport_ClassifiesAndTotals(t *testing.T) {
	// GIVEN: sat-wed, one complete single-pair day, one malformed day,
	//        one complete two-pair day, and a punch outside the period
	// WHEN: Building the March report
	// THEN: Totals only include complete days, lists are disjoint

	april1 := calendar.NewDate(2025, time.April, 1)
	punches := attendance.Punches{
		day(3): clocks("10:15:00", "19:20:00"),
		day(4): clocks("09:00:00"),
		day(5): clocks("14:00:00", "19:00:00", "10:00:00", "13:00:00"),
		april1: clocks("10:00:00", "19:00:00"),
	}

	report, err := attendance.BuildReport("emp-1", march2025(t), shift.SatWed, punches)
	require.NoError(t, err)

	assert.Equal(t, attendance.DailyMetrics{
		Worked:       545 + 480,
		Absence:      0 + 60,
		Overtime:     5,
		FloatingUsed: 15,
	}, report.Totals)

	require.Len(t, report.Rows, 3)
	assert.Equal(t, day(3), report.Rows[0].Date)
	assert.Equal(t, day(5), report.Rows[1].Date)
	assert.Equal(t, "10:00:00", report.Rows[1].Entry.String())
	assert.Equal(t, "13:00:00", report.Rows[1].Exit.String())
	assert.Equal(t, "14:00:00", report.Rows[2].Entry.String())
	assert.Equal(t, attendance.Minutes(480), report.Rows[2].Day.Worked)

	require.Len(t, report.MalformedDays, 1)
	assert.Equal(t, day(4), report.MalformedDays[0].Date)
	assert.Equal(t, clocks("09:00:00"), report.MalformedDays[0].Punches)

	assert.Equal(t, 2, report.CountStatus(attendance.DayComplete))
	assert.Equal(t, 1, report.CountStatus(attendance.DayMalformed))
	assert.Equal(t, 8, report.CountStatus(attendance.DayRest), "4 Thursdays + 4 Fridays")
	assert.Equal(t, 20, report.CountStatus(attendance.DayAbsent))
	assert.Len(t, report.AbsentDays, 20)
	for _, a := range report.AbsentDays {
		assert.Equal(t, attendance.Minutes(540), a.ShiftMinutes)
		assert.NotContains(t, []calendar.Weekday{calendar.Thursday, calendar.Friday}, a.Weekday)
	}
}

func TestBuildReport_PartitionsEveryDate(t *testing.T) {
	punches := attendance.Punches{
		day(1):  clocks("10:00:00", "19:00:00"),
		day(6):  clocks("10:00:00", "14:00:00"), // worked on a sat-wed rest day
		day(7):  clocks("11:00:00"),
		day(31): clocks("10:00:00", "12:00:00", "12:30:00"),
	}

	for _, policy := range shift.Policies() {
		report, err := attendance.BuildReport("emp-1", march2025(t), policy, punches)
		require.NoError(t, err)

		require.Len(t, report.Days, 31)
		seen := make(map[calendar.Date]int)
		for i, d := range report.Days {
			assert.Equal(t, day(i+1), d.Date, "days in calendar order")
			seen[d.Date]++
		}
		for _, a := range report.AbsentDays {
			seen[a.Date]++
		}
		for _, m := range report.MalformedDays {
			seen[m.Date]++
		}
		for d, n := range seen {
			switch report.Days[d.Day-1].Status {
			case attendance.DayAbsent, attendance.DayMalformed:
				assert.Equal(t, 2, n, "%s listed exactly once", d)
			default:
				assert.Equal(t, 1, n, "%s must not appear in a list", d)
			}
		}

		total := report.CountStatus(attendance.DayComplete) + report.CountStatus(attendance.DayMalformed) +
			report.CountStatus(attendance.DayAbsent) + report.CountStatus(attendance.DayRest)
		assert.Equal(t, 31, total, string(policy))
		assert.Equal(t, attendance.DayComplete, report.Days[5].Status, "worked rest day is measured")
	}
}

func TestBuildReport_SinglePunchIsMalformed(t *testing.T) {
	report, err := attendance.BuildReport("emp-1", march2025(t), shift.SatWed, attendance.Punches{
		day(3): clocks("09:00:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, attendance.DailyMetrics{}, report.Totals)
	assert.Empty(t, report.Rows)
	require.Len(t, report.MalformedDays, 1)
	assert.Equal(t, clocks("09:00:00"), report.MalformedDays[0].Punches)
	for _, a := range report.AbsentDays {
		assert.NotEqual(t, day(3), a.Date)
	}
}

func TestBuildReport_FridayRestExcludedUnderSatThu(t *testing.T) {
	report, err := attendance.BuildReport("emp-1", march2025(t), shift.SatThu, nil)
	require.NoError(t, err)

	assert.Equal(t, attendance.DailyMetrics{}, report.Totals)
	assert.Len(t, report.AbsentDays, 27)
	for _, a := range report.AbsentDays {
		assert.NotEqual(t, friday, a.Date)
		assert.NotEqual(t, calendar.Friday, a.Weekday)
		if a.Weekday == calendar.Thursday {
			assert.Equal(t, attendance.Minutes(240), a.ShiftMinutes)
		}
	}
	assert.Equal(t, attendance.DayRest, report.Days[friday.Day-1].Status)
}

func TestBuildReport_DoesNotAliasInput(t *testing.T) {
	input := attendance.Punches{day(3): clocks("19:00:00", "10:00:00")}

	report, err := attendance.BuildReport("emp-1", march2025(t), shift.SatWed, input)
	require.NoError(t, err)

	report.Rows[0].Entry = 0
	assert.Equal(t, clocks("19:00:00", "10:00:00"), input[day(3)])
}

func TestBuildReport_Errors(t *testing.T) {
	_, err := attendance.BuildReport("emp-1", march2025(t), shift.Policy("mon-fri"), nil)
	assert.ErrorIs(t, err, shift.ErrUnknownPolicy)
	assert.True(t, attendance.IsClientError(err))

	_, err = attendance.BuildReport("emp-1", calendar.Period{Year: 2025, Month: 13}, shift.SatWed, nil)
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, attendance.DayRest, attendance.Classify(shift.SatWed, thursday, nil))
	assert.Equal(t, attendance.DayAbsent, attendance.Classify(shift.SatThu, thursday, nil))
	assert.Equal(t, attendance.DayAbsent, attendance.Classify(shift.SatWed, monday, []calendar.Clock{}))
	assert.Equal(t, attendance.DayMalformed, attendance.Classify(shift.SatWed, friday, clocks("09:00:00")))
	assert.Equal(t, attendance.DayComplete, attendance.Classify(shift.SatWed, friday, clocks("09:00:00", "10:00:00")))
}
