// Package store provides Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/calendar"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for the CLI and tests)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	sheets map[calendar.Period]*attendance.Sheet
}

var _ attendance.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{sheets: make(map[calendar.Period]*attendance.Sheet)}
}

// ReplacePeriod stores a copy of the sheet, dropping whatever the period held.
func (m *Memory) ReplacePeriod(_ context.Context, sheet *attendance.Sheet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets[sheet.Period] = sheet.Clone()
	return nil
}

// LoadPeriod returns a snapshot the caller may keep and modify freely.
func (m *Memory) LoadPeriod(_ context.Context, period calendar.Period) (*attendance.Sheet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sheets[period]; ok {
		return s.Clone(), nil
	}
	return attendance.NewSheet(period), nil
}

func (m *Memory) InsertPair(_ context.Context, period calendar.Period, employeeID string, date calendar.Date, entry, exit calendar.Clock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sheets[period]
	if !ok {
		s = attendance.NewSheet(period)
	}
	if err := s.InsertPair(employeeID, date, entry, exit); err != nil {
		return err
	}
	m.sheets[period] = s
	return nil
}

func (m *Memory) DeletePunch(_ context.Context, period calendar.Period, employeeID string, date calendar.Date, clock calendar.Clock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sheets[period]
	if !ok {
		return attendance.ErrPunchNotFound
	}
	return s.DeletePunch(employeeID, date, clock)
}

// Periods lists the periods currently held.
func (m *Memory) Periods() []calendar.Period {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]calendar.Period, 0, len(m.sheets))
	for p := range m.sheets {
		out = append(out, p)
	}
	return out
}
