package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate covers a month outside 1-12, a year outside 1-9999, or an
// unparseable date string. ErrInvalidClock covers a bad time of day.
var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidClock = errors.New("invalid time of day")
)

// =============================================================================
// PERIOD - One reporting month
// =============================================================================

// Period is the reporting period the engine works over: one year + month.
// It is always passed explicitly; nothing in the engine holds a "current" period.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod validates year and month.
func NewPeriod(year, month int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}
	if year < 1 || year > 9999 {
		return Period{}, fmt.Errorf("%w: year %d", ErrInvalidDate, year)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// Start is the first day of the month.
func (p Period) Start() Date { return NewDate(p.Year, p.Month, 1) }

// End is the last day of the month.
func (p Period) End() Date { return NewDate(p.Year, p.Month+1, 0) }

// Contains returns true if d falls in the period.
func (p Period) Contains(d Date) bool { return d.Year == p.Year && d.Month == p.Month }

// Days returns every date of the month, ascending.
func (p Period) Days() []Date {
	end := p.End()
	days := make([]Date, 0, end.Day)
	for current := p.Start(); !end.Before(current); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

func (p Period) String() string { return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month)) }

func (p Period) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// DaysInMonth returns every date from day 1 through the last day of the month.
func DaysInMonth(year, month int) ([]Date, error) {
	p, err := NewPeriod(year, month)
	if err != nil {
		return nil, err
	}
	return p.Days(), nil
}
