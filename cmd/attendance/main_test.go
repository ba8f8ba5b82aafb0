package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/attendance"
)

const feed = `employeeId,timestamp
8,2025-03-03 10:15:00
8,2025-03-03 19:20:00
8,2025-03-04 09:00:00
12,2025-03-06 10:00:00
12,2025-03-06 13:00:00
12,2025-04-01 10:00:00
`

func writeFeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "punches.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := newApp(&out, &errOut).Run(append([]string{"attendance"}, args...))
	return out.String(), err
}

func TestReportCommand_Text(t *testing.T) {
	path := writeFeed(t, feed)

	out, err := run(t, "report", "--csv", path, "-y", "2025", "-m", "3", "-e", "8")
	require.NoError(t, err)

	assert.Contains(t, out, "Employee 8, 2025-03, Saturday to Wednesday")
	assert.Contains(t, out, "2025-03-03")
	assert.Contains(t, out, "9h 05m")
	assert.Contains(t, out, "Absent days (21):")
	assert.Contains(t, out, "Incomplete days (1):")
	assert.Contains(t, out, "[09:00:00]")
}

func TestReportCommand_JSONWithShift(t *testing.T) {
	path := writeFeed(t, feed)

	out, err := run(t, "report", "--csv", path, "-y", "2025", "-m", "3", "-e", "12", "--shift", "sat-thu", "--json")
	require.NoError(t, err)

	var report struct {
		Policy string                  `json:"policy"`
		Totals attendance.DailyMetrics `json:"totals"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "sat-thu", report.Policy)
	assert.Equal(t, attendance.DailyMetrics{Worked: 180, Absence: 60}, report.Totals)
}

func TestReportCommand_Errors(t *testing.T) {
	path := writeFeed(t, feed)

	_, err := run(t, "report", "--csv", path, "-y", "2025", "-m", "3", "-e", "99")
	assert.ErrorIs(t, err, attendance.ErrEmployeeNotFound)

	_, err = run(t, "report", "--csv", path, "-y", "2025", "-m", "3", "-e", "8", "--shift", "mon-fri")
	assert.Error(t, err)

	_, err = run(t, "report", "--csv", path, "-y", "2025", "-m", "13", "-e", "8")
	assert.Error(t, err)

	bad := writeFeed(t, feed+"8,whenever\n")
	_, err = run(t, "report", "--csv", bad, "-y", "2025", "-m", "3", "-e", "8")
	assert.Error(t, err)

	_, err = run(t, "report", "--csv", bad, "-y", "2025", "-m", "3", "-e", "8", "--skip-invalid")
	assert.NoError(t, err)
}

func TestEmployeesCommand(t *testing.T) {
	path := writeFeed(t, feed)

	out, err := run(t, "employees", "--csv", path, "-y", "2025", "-m", "3")
	require.NoError(t, err)
	assert.Equal(t, "12\n8\n", out)

	out, err = run(t, "employees", "--csv", path, "-y", "2025", "-m", "4")
	require.NoError(t, err)
	assert.Equal(t, "12\n", out)
}
