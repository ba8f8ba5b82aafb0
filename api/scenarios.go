/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	punch feeds for demos. Every scenario goes through the same path as a real
	upload: a CSV feed is read by package ingest and stored with ImportPeriod.

AVAILABLE SCENARIOS (all in March 2025):

	regular-month:      One sat-wed employee with a full month and two absences
	grace-and-overtime: Late arrivals covered and not covered by grace,
	                    early arrivals, and a short sat-thu Thursday
	messy-feed:         Lone punches, rest-day work, rows outside the month
	                    and unreadable rows (loaded with skip_invalid)

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create directory entries
 3. Build a CSV feed
 4. Read it with ingest.ReadCSV and store it with ImportPeriod

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "grace-and-overtime"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Upload and report handlers
  - ingest/csv.go: Feed format
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/ingest"
	"github.com/warp/attendance-engine/shift"
	"github.com/warp/attendance-engine/store/sqlite"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarioPeriod = calendar.Period{Year: 2025, Month: time.March}

var scenarios = []ScenarioDTO{
	{
		ID:          "regular-month",
		Name:        "Regular Month",
		Description: "Full sat-wed month with two missed days",
		Period:      scenarioPeriod.String(),
	},
	{
		ID:          "grace-and-overtime",
		Name:        "Grace & Overtime",
		Description: "Late arrivals with and without grace, early arrivals, a short Thursday",
		Period:      scenarioPeriod.String(),
	},
	{
		ID:          "messy-feed",
		Name:        "Messy Feed",
		Description: "Lone punches, rest-day work and bad rows skipped on import",
		Period:      scenarioPeriod.String(),
	},
}

type scenarioEmployee struct {
	id, name string
	policy   shift.Policy
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var employees []scenarioEmployee
	var feed string
	switch req.ScenarioID {
	case "regular-month":
		employees, feed = regularMonthScenario()
	case "grace-and-overtime":
		employees, feed = graceAndOvertimeScenario()
	case "messy-feed":
		employees, feed = messyFeedScenario()
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := r.Context()
	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	imp, err := h.loadScenario(ctx, employees, feed)
	if err != nil {
		h.fail(w, r, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"period":   scenarioPeriod.String(),
		"import":   toImportDTO(imp),
	})
}

func (h *Handler) loadScenario(ctx context.Context, employees []scenarioEmployee, feed string) (*sqlite.Import, error) {
	for _, e := range employees {
		if err := h.Store.SaveEmployee(ctx, sqlite.Employee{ID: e.id, Name: e.name, Shift: e.policy}); err != nil {
			return nil, err
		}
	}

	sheet, stats, err := ingest.ReadCSV(strings.NewReader(feed), scenarioPeriod, ingest.Options{
		SkipInvalid: true,
		Logger:      h.Logger,
	})
	if err != nil {
		return nil, err
	}
	return h.Store.ImportPeriod(ctx, sheet, stats)
}

// =============================================================================
// SCENARIO FEEDS
// =============================================================================

type feedBuilder struct {
	b strings.Builder
}

func newFeed() *feedBuilder {
	f := &feedBuilder{}
	f.b.WriteString("employee_id,timestamp\n")
	return f
}

func (f *feedBuilder) punch(employeeID string, day int, clock string) {
	fmt.Fprintf(&f.b, "%s,2025-03-%02d %s\n", employeeID, day, clock)
}

func (f *feedBuilder) raw(line string) {
	f.b.WriteString(line)
	f.b.WriteByte('\n')
}

func (f *feedBuilder) String() string { return f.b.String() }

// regularMonthScenario: every sat-wed working day except the 12th and 20th.
// Arrivals drift up to 15 minutes late and departures up to 20 minutes late.
func regularMonthScenario() ([]scenarioEmployee, string) {
	feed := newFeed()
	for _, d := range scenarioPeriod.Days() {
		if shift.IsRestDay(shift.SatWed, d.Weekday()) || d.Day == 12 || d.Day == 20 {
			continue
		}
		entry := calendar.NewClock(10, d.Day%4*5, 0)
		exit := calendar.NewClock(19, d.Day%3*10, 0)
		feed.punch("8", d.Day, exit.String())
		feed.punch("8", d.Day, entry.String())
	}
	return []scenarioEmployee{{id: "8", name: "Sara Karimi", policy: shift.SatWed}}, feed.String()
}

func graceAndOvertimeScenario() ([]scenarioEmployee, string) {
	feed := newFeed()
	// 15 minutes late, stays 20 minutes: grace covers it, 5 minutes overtime.
	feed.punch("21", 3, "10:15:00")
	feed.punch("21", 3, "19:20:00")
	// 40 minutes late, leaves 19:30: grace not earned.
	feed.punch("21", 4, "10:40:00")
	feed.punch("21", 4, "19:30:00")
	// 30 minutes early, 45 minutes late leaving.
	feed.punch("21", 5, "09:30:00")
	feed.punch("21", 5, "19:45:00")
	// Lunch break outside the building.
	feed.punch("21", 8, "10:00:00")
	feed.punch("21", 8, "13:00:00")
	feed.punch("21", 8, "14:00:00")
	feed.punch("21", 8, "19:00:00")

	// sat-thu Thursday is 10:00-14:00; leaves at 13:00.
	feed.punch("34", 6, "10:00:00")
	feed.punch("34", 6, "13:00:00")

	return []scenarioEmployee{
		{id: "21", name: "Omid Rahimi", policy: shift.SatWed},
		{id: "34", name: "Leila Ahmadi", policy: shift.SatThu},
	}, feed.String()
}

func messyFeedScenario() ([]scenarioEmployee, string) {
	feed := newFeed()
	// Lone punch: malformed.
	feed.punch("55", 3, "09:00:00")
	// Three punches: malformed.
	feed.punch("55", 4, "10:00:00")
	feed.punch("55", 4, "12:00:00")
	feed.punch("55", 4, "12:30:00")
	// Worked on a Friday (rest day for every policy).
	feed.punch("55", 7, "11:00:00")
	feed.punch("55", 7, "15:00:00")
	// A normal day.
	feed.punch("55", 9, "10:00:00")
	feed.punch("55", 9, "19:00:00")
	// Outside the month.
	feed.raw("55,2025-02-28 10:00:00")
	feed.raw("55,2025-04-01 19:00:00")
	// Unreadable.
	feed.raw("55,not-a-time")
	feed.raw(",2025-03-10 10:00:00")

	// An employee with punches but no directory entry.
	feed.punch("77", 10, "10:00:00")
	feed.punch("77", 10, "19:00:00")

	return []scenarioEmployee{{id: "55", name: "Reza Moradi", policy: shift.SatThu}}, feed.String()
}
