package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/ingest"
	"github.com/warp/attendance-engine/shift"
)

var (
	march = calendar.Period{Year: 2025, Month: time.March}
	mar3  = calendar.NewDate(2025, time.March, 3)
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_ReplaceAndLoadPeriod(t *testing.T) {
	// GIVEN: A stored period that is then re-imported
	// WHEN: Loading it back
	// THEN: Only the second sheet's punches remain, sorted per day

	ctx := context.Background()
	store := newStore(t)

	first := attendance.NewSheet(march)
	require.NoError(t, first.Add("emp-old", mar3, calendar.NewClock(10, 0, 0)))
	require.NoError(t, store.ReplacePeriod(ctx, first))

	second := attendance.NewSheet(march)
	require.NoError(t, second.Add("emp-1", mar3, calendar.NewClock(19, 0, 0)))
	require.NoError(t, second.Add("emp-1", mar3, calendar.NewClock(10, 15, 0)))
	require.NoError(t, second.Add("emp-2", mar3.AddDays(1), calendar.NewClock(9, 0, 0)))
	require.NoError(t, store.ReplacePeriod(ctx, second))

	loaded, err := store.LoadPeriod(ctx, march)
	require.NoError(t, err)
	assert.Equal(t, []string{"emp-1", "emp-2"}, loaded.EmployeeIDs())
	assert.Equal(t, []calendar.Clock{calendar.NewClock(10, 15, 0), calendar.NewClock(19, 0, 0)}, loaded.Day("emp-1", mar3))
	assert.Equal(t, 3, loaded.Len())

	other, err := store.LoadPeriod(ctx, calendar.Period{Year: 2025, Month: time.April})
	require.NoError(t, err)
	assert.Equal(t, 0, other.Len())
}

func TestStore_InsertThenDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	entry, exit := calendar.NewClock(10, 0, 0), calendar.NewClock(18, 0, 0)

	require.NoError(t, store.InsertPair(ctx, march, "emp-1", mar3, entry, exit))
	require.NoError(t, store.InsertPair(ctx, march, "emp-1", mar3, entry, exit))

	require.NoError(t, store.DeletePunch(ctx, march, "emp-1", mar3, entry))
	loaded, err := store.LoadPeriod(ctx, march)
	require.NoError(t, err)
	assert.Equal(t, []calendar.Clock{entry, exit, exit}, loaded.Day("emp-1", mar3), "one duplicate removed")

	require.NoError(t, store.DeletePunch(ctx, march, "emp-1", mar3, entry))
	require.NoError(t, store.DeletePunch(ctx, march, "emp-1", mar3, exit))
	require.NoError(t, store.DeletePunch(ctx, march, "emp-1", mar3, exit))

	loaded, err = store.LoadPeriod(ctx, march)
	require.NoError(t, err)
	assert.Empty(t, loaded.EmployeeIDs())
}

func TestStore_EditErrors(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	err := store.InsertPair(ctx, march, "emp-1", mar3, calendar.NewClock(12, 0, 0), calendar.NewClock(12, 0, 0))
	assert.ErrorIs(t, err, attendance.ErrInvalidPunchOrder)

	err = store.InsertPair(ctx, march, "emp-1", calendar.NewDate(2025, time.April, 1), calendar.NewClock(10, 0, 0), calendar.NewClock(11, 0, 0))
	assert.ErrorIs(t, err, attendance.ErrOutOfRange)

	err = store.DeletePunch(ctx, march, "emp-1", mar3, calendar.NewClock(10, 0, 0))
	assert.ErrorIs(t, err, attendance.ErrPunchNotFound)

	loaded, err := store.LoadPeriod(ctx, march)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len(), "rejected edits write nothing")
}

func TestStore_ImportPeriod(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	sheet := attendance.NewSheet(march)
	require.NoError(t, sheet.InsertPair("emp-1", mar3, calendar.NewClock(10, 0, 0), calendar.NewClock(19, 0, 0)))
	stats := ingest.Stats{Rows: 3, Imported: 2, OutOfPeriod: 1}

	imp, err := store.ImportPeriod(ctx, sheet, stats)
	require.NoError(t, err)
	assert.NotEmpty(t, imp.ID)

	imports, err := store.ListImports(ctx, march)
	require.NoError(t, err)
	require.Len(t, imports, 1)
	assert.Equal(t, imp.ID, imports[0].ID)
	assert.Equal(t, stats, imports[0].Stats)

	loaded, err := store.LoadPeriod(ctx, march)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())

	none, err := store.ListImports(ctx, calendar.Period{Year: 2025, Month: time.February})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_Employees(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.SaveEmployee(ctx, Employee{ID: "8", Name: "Sara", Shift: shift.SatWed}))
	require.NoError(t, store.SaveEmployee(ctx, Employee{ID: "12", Name: "Amir", Shift: shift.SatWed}))
	require.NoError(t, store.SaveEmployee(ctx, Employee{ID: "8", Name: "Sara K.", Shift: shift.SatThu}))

	emp, err := store.GetEmployee(ctx, "8")
	require.NoError(t, err)
	assert.Equal(t, "Sara K.", emp.Name)
	assert.Equal(t, shift.SatThu, emp.Shift)

	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, "Amir", employees[0].Name)

	_, err = store.GetEmployee(ctx, "99")
	assert.ErrorIs(t, err, attendance.ErrEmployeeNotFound)
	assert.True(t, attendance.IsNotFound(err))

	err = store.SaveEmployee(ctx, Employee{ID: "7", Name: "X", Shift: "mon-fri"})
	assert.ErrorIs(t, err, shift.ErrUnknownPolicy)
	err = store.SaveEmployee(ctx, Employee{ID: " ", Shift: shift.SatWed})
	assert.ErrorIs(t, err, attendance.ErrInvalidEmployee)

	require.NoError(t, store.Reset(ctx))
	employees, err = store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, employees)
}
