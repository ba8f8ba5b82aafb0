/*
Package ingest reads raw punch feeds into an attendance.Sheet.

FORMAT:
  One punch per row: employeeId,timestamp
  Extra columns are ignored. Blank lines are skipped. A first row whose
  timestamp does not parse is taken as a header.

  Accepted timestamps:
    2006-01-02 15:04:05
    2006-01-02T15:04:05
    2006/01/02 15:04:05
    2006-01-02 15:04
    RFC3339 (the wall clock is kept as written; the offset is dropped)

FAILURE MODES:
  By default a malformed row stops the read with a *RowError carrying the line.
  With Options.SkipInvalid the row is counted in Stats.Skipped and logged
  instead. Rows outside the requested period are always counted and dropped.
*/
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/calendar"
)

var layouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// ErrInvalidRow is wrapped by every RowError.
var ErrInvalidRow = errors.New("invalid punch row")

// RowError points at the offending line of the feed.
type RowError struct {
	Line   int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("invalid punch row at line %d: %s", e.Line, e.Reason)
}

func (e *RowError) Unwrap() error { return ErrInvalidRow }

// Options controls how forgiving the reader is.
type Options struct {
	SkipInvalid bool
	Logger      *slog.Logger
}

// Stats summarizes a read.
type Stats struct {
	Rows        int `json:"rows"`
	Imported    int `json:"imported"`
	OutOfPeriod int `json:"out_of_period"`
	Skipped     int `json:"skipped"`
}

// ReadCSV parses the feed and keeps the punches that fall in period.
func ReadCSV(r io.Reader, period calendar.Period, opts Options) (*attendance.Sheet, Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	sheet := attendance.NewSheet(period)
	var stats Stats
	// Only the first physical line may be a header.
	headerChecked := false

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			headerChecked = true
			line := 0
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
			if !opts.SkipInvalid {
				return nil, stats, &RowError{Line: line, Reason: err.Error()}
			}
			stats.Skipped++
			logger.Warn("skipping unreadable punch row", slog.Int("line", line), slog.Any("error", err))
			continue
		}
		stats.Rows++
		line, _ := reader.FieldPos(0)

		first := !headerChecked
		headerChecked = true

		employeeID, at, reason := parseRecord(record)
		if reason != "" {
			if first {
				stats.Rows--
				continue // header
			}
			if !opts.SkipInvalid {
				return nil, stats, &RowError{Line: line, Reason: reason}
			}
			stats.Skipped++
			logger.Warn("skipping invalid punch row", slog.Int("line", line), slog.String("reason", reason))
			continue
		}

		date := calendar.DateOf(at)
		if !period.Contains(date) {
			stats.OutOfPeriod++
			continue
		}
		if err := sheet.Add(employeeID, date, calendar.ClockOf(at)); err != nil {
			return nil, stats, err
		}
		stats.Imported++
	}

	logger.Debug("punch feed read",
		slog.String("period", period.String()),
		slog.Int("rows", stats.Rows),
		slog.Int("imported", stats.Imported),
		slog.Int("out_of_period", stats.OutOfPeriod),
		slog.Int("skipped", stats.Skipped),
	)
	return sheet, stats, nil
}

func parseRecord(record []string) (string, time.Time, string) {
	if len(record) < 2 {
		return "", time.Time{}, "expected employeeId,timestamp"
	}
	employeeID := strings.TrimSpace(record[0])
	raw := strings.TrimSpace(record[1])
	if employeeID == "" || raw == "" {
		return "", time.Time{}, "empty employee id or timestamp"
	}
	at, ok := parseTimestamp(raw)
	if !ok {
		return "", time.Time{}, fmt.Sprintf("unrecognized timestamp %q", raw)
	}
	return employeeID, at, ""
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
