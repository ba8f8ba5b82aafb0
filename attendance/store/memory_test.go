package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/attendance/store"
	"github.com/warp/attendance-engine/calendar"
)

var (
	march = calendar.Period{Year: 2025, Month: time.March}
	mar3  = calendar.NewDate(2025, time.March, 3)
)

func TestMemory_LoadPeriodIsSnapshot(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	require.NoError(t, m.InsertPair(ctx, march, "emp-1", mar3, calendar.NewClock(10, 0, 0), calendar.NewClock(19, 0, 0)))

	snap, err := m.LoadPeriod(ctx, march)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())

	// Writes after the load do not reach the snapshot, and vice versa.
	require.NoError(t, m.DeletePunch(ctx, march, "emp-1", mar3, calendar.NewClock(19, 0, 0)))
	assert.Equal(t, 2, snap.Len())
	require.NoError(t, snap.DeletePunch("emp-1", mar3, calendar.NewClock(10, 0, 0)))

	again, err := m.LoadPeriod(ctx, march)
	require.NoError(t, err)
	assert.Equal(t, []calendar.Clock{calendar.NewClock(10, 0, 0)}, again.Day("emp-1", mar3))
}

func TestMemory_ReplacePeriod(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.InsertPair(ctx, march, "emp-old", mar3, calendar.NewClock(10, 0, 0), calendar.NewClock(11, 0, 0)))

	sheet := attendance.NewSheet(march)
	require.NoError(t, sheet.Add("emp-new", mar3, calendar.NewClock(9, 0, 0)))
	require.NoError(t, m.ReplacePeriod(ctx, sheet))

	// Mutating the caller's sheet afterwards must not leak into the store.
	require.NoError(t, sheet.Add("emp-new", mar3, calendar.NewClock(18, 0, 0)))

	loaded, err := m.LoadPeriod(ctx, march)
	require.NoError(t, err)
	assert.Equal(t, []string{"emp-new"}, loaded.EmployeeIDs())
	assert.Equal(t, 1, loaded.Len())
	assert.Len(t, m.Periods(), 1)
}

func TestMemory_EditErrors(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	err := m.DeletePunch(ctx, march, "emp-1", mar3, calendar.NewClock(10, 0, 0))
	assert.ErrorIs(t, err, attendance.ErrPunchNotFound)

	april := calendar.NewDate(2025, time.April, 2)
	err = m.InsertPair(ctx, march, "emp-1", april, calendar.NewClock(10, 0, 0), calendar.NewClock(11, 0, 0))
	assert.ErrorIs(t, err, attendance.ErrOutOfRange)

	err = m.InsertPair(ctx, march, "emp-1", mar3, calendar.NewClock(11, 0, 0), calendar.NewClock(10, 0, 0))
	assert.ErrorIs(t, err, attendance.ErrInvalidPunchOrder)
	assert.Empty(t, m.Periods(), "rejected edits leave no period behind")

	empty, err := m.LoadPeriod(ctx, calendar.Period{Year: 2024, Month: time.January})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}

func TestMemory_ConcurrentEditsAndReports(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			d := calendar.NewDate(2025, time.March, 1+i)
			assert.NoError(t, m.InsertPair(ctx, march, "emp-1", d, calendar.NewClock(10, 0, 0), calendar.NewClock(19, 0, 0)))
		}(i)
		go func() {
			defer wg.Done()
			snap, err := m.LoadPeriod(ctx, march)
			if assert.NoError(t, err) {
				_, err = snap.Report("emp-1", "sat-wed")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	final, err := m.LoadPeriod(ctx, march)
	require.NoError(t, err)
	assert.Equal(t, 40, final.Len())
}
