/*
store.go - Persistence interface for punch data

PURPOSE:
  Defines the boundary between the engine and wherever punch data lives.
  The engine itself never holds data between calls: a caller loads a period
  as a Sheet (a private snapshot), builds reports from it, and edits go back
  through the Store.

CONTRACT:
  - LoadPeriod returns a Sheet the caller owns. Later writes never show up in
    a Sheet that was already returned.
  - ReplacePeriod swaps a whole period's punches at once (re-import).
  - InsertPair / DeletePunch are all-or-nothing and follow Sheet semantics:
    ErrOutOfRange, ErrInvalidPunchOrder, ErrPunchNotFound.

IMPLEMENTATIONS:
  - attendance/store/memory.go: in-memory, for the CLI and tests
  - store/sqlite/sqlite.go: SQLite, for the server
*/
package attendance

import (
	"context"

	"github.com/warp/attendance-engine/calendar"
)

// Store persists punch data per period.
type Store interface {
	// ReplacePeriod replaces every punch of sheet.Period with the sheet's contents.
	ReplacePeriod(ctx context.Context, sheet *Sheet) error

	// LoadPeriod returns a snapshot of the period. Empty if nothing was stored.
	LoadPeriod(ctx context.Context, period calendar.Period) (*Sheet, error)

	// InsertPair adds an entry/exit pair for an employee on a date of the period.
	InsertPair(ctx context.Context, period calendar.Period, employeeID string, date calendar.Date, entry, exit calendar.Clock) error

	// DeletePunch removes one punch matching clock.
	DeletePunch(ctx context.Context, period calendar.Period, employeeID string, date calendar.Date, clock calendar.Clock) error
}
