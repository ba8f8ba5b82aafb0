/*
Package sqlite provides a SQLite-backed implementation of attendance.Store.

PURPOSE:
  Persists punch feeds per reporting period, the employee directory, and a
  log of every feed import. The HTTP server runs on this store; the CLI and
  most tests use attendance/store.Memory instead.

INTERFACES IMPLEMENTED:
  attendance.Store: ReplacePeriod, LoadPeriod, InsertPair, DeletePunch

KEY TABLES:
  employees: Directory entries (display name, default shift policy)
  punches:   One row per punch: (period, employee_id, date, clock seconds)
  imports:   One row per accepted feed upload, keyed by a UUID

EDIT SEMANTICS:
  InsertPair and DeletePunch follow attendance.Sheet exactly:
  - entry must be strictly before exit (ErrInvalidPunchOrder)
  - the date must fall in the period (ErrOutOfRange)
  - deleting a punch that is not there is ErrPunchNotFound
  - exactly one duplicate is removed per delete
  Every write happens in a single statement or a single transaction.

CONCURRENCY:
  Uses sync.RWMutex around the handle, as well as SQLite's own locking.
  The pool is capped at one connection so ":memory:" databases are shared
  by every query.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  sheet, err := store.LoadPeriod(ctx, period)

SEE ALSO:
  - attendance/store.go: Interface definition
  - attendance/store/memory.go: In-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/ingest"
	"github.com/warp/attendance-engine/shift"
)

// Store implements attendance.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ attendance.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employee directory
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		shift TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Punches, one row per clock reading
	CREATE TABLE IF NOT EXISTS punches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		period TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		clock INTEGER NOT NULL,
		import_id TEXT
	);

	-- Report hot path: a whole period in (employee, date, clock) order
	CREATE INDEX IF NOT EXISTS idx_punches_period_employee_date
		ON punches(period, employee_id, date, clock);

	-- Feed uploads
	CREATE TABLE IF NOT EXISTS imports (
		id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		row_count INTEGER NOT NULL,
		imported INTEGER NOT NULL,
		out_of_period INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_imports_period
		ON imports(year, month);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PUNCH STORE (attendance.Store interface)
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ReplacePeriod swaps every punch of sheet.Period for the sheet's contents.
func (s *Store) ReplacePeriod(ctx context.Context, sheet *attendance.Sheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer sqlTx.Rollback()

	if err := replacePunches(ctx, sqlTx, sheet, ""); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func replacePunches(ctx context.Context, db execer, sheet *attendance.Sheet, importID string) error {
	period := sheet.Period.String()
	if _, err := db.ExecContext(ctx, "DELETE FROM punches WHERE period = ?", period); err != nil {
		return fmt.Errorf("failed to clear period %s: %w", period, err)
	}

	query := `
		INSERT INTO punches (period, employee_id, date, clock, import_id)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, employeeID := range sheet.EmployeeIDs() {
		punches, _ := sheet.Employee(employeeID)
		for _, date := range punches.Dates() {
			for _, clock := range punches[date] {
				if _, err := db.ExecContext(ctx, query,
					period, employeeID, date.String(), int(clock), nullString(importID),
				); err != nil {
					return fmt.Errorf("failed to store punch: %w", err)
				}
			}
		}
	}
	return nil
}

// LoadPeriod rebuilds the period's Sheet. An unknown period yields an empty sheet.
func (s *Store) LoadPeriod(ctx context.Context, period calendar.Period) (*attendance.Sheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT employee_id, date, clock FROM punches WHERE period = ? ORDER BY employee_id, date, clock",
		period.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sheet := attendance.NewSheet(period)
	for rows.Next() {
		var employeeID, rawDate string
		var clock int
		if err := rows.Scan(&employeeID, &rawDate, &clock); err != nil {
			return nil, err
		}
		date, err := calendar.ParseDate(rawDate)
		if err != nil {
			return nil, fmt.Errorf("corrupt punch date %q: %w", rawDate, err)
		}
		if err := sheet.Add(employeeID, date, calendar.Clock(clock)); err != nil {
			return nil, fmt.Errorf("corrupt punch row: %w", err)
		}
	}
	return sheet, rows.Err()
}

// InsertPair stores an entry/exit pair in one transaction.
func (s *Store) InsertPair(ctx context.Context, period calendar.Period, employeeID string, date calendar.Date, entry, exit calendar.Clock) error {
	// Same checks as the in-memory sheet, before touching the database.
	if err := attendance.NewSheet(period).InsertPair(employeeID, date, entry, exit); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer sqlTx.Rollback()

	query := `
		INSERT INTO punches (period, employee_id, date, clock)
		VALUES (?, ?, ?, ?)
	`
	for _, clock := range []calendar.Clock{entry, exit} {
		if _, err := sqlTx.ExecContext(ctx, query, period.String(), employeeID, date.String(), int(clock)); err != nil {
			return fmt.Errorf("failed to insert punch: %w", err)
		}
	}
	return sqlTx.Commit()
}

// DeletePunch removes a single punch equal to clock.
func (s *Store) DeletePunch(ctx context.Context, period calendar.Period, employeeID string, date calendar.Date, clock calendar.Clock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		DELETE FROM punches WHERE id = (
			SELECT id FROM punches
			WHERE period = ? AND employee_id = ? AND date = ? AND clock = ?
			LIMIT 1
		)
	`
	res, err := s.db.ExecContext(ctx, query, period.String(), employeeID, date.String(), int(clock))
	if err != nil {
		return fmt.Errorf("failed to delete punch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return attendance.ErrPunchNotFound
	}
	return nil
}

// =============================================================================
// IMPORT LOG
// =============================================================================

// Import records one accepted feed upload.
type Import struct {
	ID        string
	Period    calendar.Period
	Stats     ingest.Stats
	CreatedAt time.Time
}

// ImportPeriod replaces the period with sheet and logs the upload, atomically.
func (s *Store) ImportPeriod(ctx context.Context, sheet *attendance.Sheet, stats ingest.Stats) (*Import, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	imp := &Import{
		ID:        uuid.NewString(),
		Period:    sheet.Period,
		Stats:     stats,
		CreatedAt: time.Now().UTC(),
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer sqlTx.Rollback()

	if err := replacePunches(ctx, sqlTx, sheet, imp.ID); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO imports (id, year, month, row_count, imported, out_of_period, skipped, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := sqlTx.ExecContext(ctx, query,
		imp.ID, imp.Period.Year, int(imp.Period.Month),
		stats.Rows, stats.Imported, stats.OutOfPeriod, stats.Skipped,
		imp.CreatedAt.Format(time.RFC3339),
	); err != nil {
		return nil, fmt.Errorf("failed to record import: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return nil, err
	}
	return imp, nil
}

// ListImports returns the period's uploads, newest first.
func (s *Store) ListImports(ctx context.Context, period calendar.Period) ([]Import, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, row_count, imported, out_of_period, skipped, created_at
		FROM imports
		WHERE year = ? AND month = ?
		ORDER BY created_at DESC, rowid DESC
	`, period.Year, int(period.Month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var imports []Import
	for rows.Next() {
		imp := Import{Period: period}
		var createdAt string
		if err := rows.Scan(
			&imp.ID, &imp.Stats.Rows, &imp.Stats.Imported,
			&imp.Stats.OutOfPeriod, &imp.Stats.Skipped, &createdAt,
		); err != nil {
			return nil, err
		}
		imp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		imports = append(imports, imp)
	}
	return imports, rows.Err()
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// Employee represents an employee record.
type Employee struct {
	ID        string
	Name      string
	Shift     shift.Policy
	CreatedAt time.Time
}

// SaveEmployee creates or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp Employee) error {
	if strings.TrimSpace(emp.ID) == "" {
		return attendance.ErrInvalidEmployee
	}
	if !emp.Shift.Valid() {
		return fmt.Errorf("employee %s: %w", emp.ID, shift.ErrUnknownPolicy)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, shift, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			shift = excluded.shift
	`

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, string(emp.Shift),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var emp Employee
	var policy, createdAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, shift, created_at FROM employees WHERE id = ?",
		id,
	).Scan(&emp.ID, &emp.Name, &policy, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("employee %s: %w", id, attendance.ErrEmployeeNotFound)
	}
	if err != nil {
		return nil, err
	}

	emp.Shift = shift.Policy(policy)
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &emp, nil
}

// ListEmployees returns all employees.
func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, shift, created_at FROM employees ORDER BY name, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var emp Employee
		var policy, createdAt string
		if err := rows.Scan(&emp.ID, &emp.Name, &policy, &createdAt); err != nil {
			return nil, err
		}
		emp.Shift = shift.Policy(policy)
		emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"punches", "imports", "employees"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
