package ingest_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/ingest"
)

var march = calendar.Period{Year: 2025, Month: time.March}

func TestReadCSV_GroupsAndSorts(t *testing.T) {
	feed := `employee,timestamp
8,2025-03-03 19:20:00
8,2025-03-03 10:15:00
12,2025-03-04T09:58:10
8,2025/03/05 10:00:00
12,2025-02-28 10:00:00
12,2025-04-01T10:00:00+03:30

8,2025-03-05 18:00
`
	sheet, stats, err := ingest.ReadCSV(strings.NewReader(feed), march, ingest.Options{})
	require.NoError(t, err)

	assert.Equal(t, ingest.Stats{Rows: 7, Imported: 5, OutOfPeriod: 2}, stats)
	assert.Equal(t, []string{"12", "8"}, sheet.EmployeeIDs())

	mar3 := calendar.NewDate(2025, time.March, 3)
	assert.Equal(t, []calendar.Clock{calendar.NewClock(10, 15, 0), calendar.NewClock(19, 20, 0)}, sheet.Day("8", mar3))

	mar5 := calendar.NewDate(2025, time.March, 5)
	assert.Equal(t, []calendar.Clock{calendar.NewClock(10, 0, 0), calendar.NewClock(18, 0, 0)}, sheet.Day("8", mar5))
}

func TestReadCSV_FailsFastOnMalformedRow(t *testing.T) {
	feed := "8,2025-03-03 10:00:00\n8,yesterday\n8,2025-03-03 19:00:00\n"

	_, _, err := ingest.ReadCSV(strings.NewReader(feed), march, ingest.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrInvalidRow)

	var rowErr *ingest.RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 2, rowErr.Line)
}

func TestReadCSV_SkipInvalid(t *testing.T) {
	feed := "8,2025-03-03 10:00:00\n8\n,2025-03-03 11:00:00\n8,2025-03-03 19:00:00\n"

	sheet, stats, err := ingest.ReadCSV(strings.NewReader(feed), march, ingest.Options{SkipInvalid: true})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 2, stats.Imported)
	assert.Equal(t, 2, sheet.Len())
}

func TestReadCSV_HeaderOnlyOnFirstLine(t *testing.T) {
	// GIVEN: The first line is broken CSV and the second is an invalid row
	// WHEN: Reading leniently
	// THEN: Both are skipped; the second line is not mistaken for a header

	feed := "8,2025\"03\n8,whenever\n8,2025-03-03 10:00:00\n"

	sheet, stats, err := ingest.ReadCSV(strings.NewReader(feed), march, ingest.Options{SkipInvalid: true})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 1, sheet.Len())
}
