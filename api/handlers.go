/*
handlers.go - HTTP API handlers for the attendance engine

PURPOSE:
  Exposes punch ingestion, punch editing and monthly reports via REST API.
  Handles HTTP request/response and JSON serialization, and delegates the
  metrics to package attendance.

ENDPOINTS:
  Employees:
    GET    /api/employees              List the employee directory
    POST   /api/employees              Create or update an employee
    GET    /api/employees/{id}         Get one employee

  Periods (year/month always explicit):
    POST   /api/periods/{year}/{month}/punches                 Upload a CSV feed (replaces the period)
    GET    /api/periods/{year}/{month}/imports                 Upload history
    GET    /api/periods/{year}/{month}/employees               Employees with punches
    GET    /api/periods/{year}/{month}/employees/{id}/report   Monthly report (?shift=)
    POST   /api/periods/{year}/{month}/employees/{id}/punches  Add an entry/exit pair
    DELETE /api/periods/{year}/{month}/employees/{id}/punches  Remove one punch (?date=&time=)

  Shifts:
    GET    /api/shifts                 Shift policies and their weekly tables

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    POST   /api/scenarios/load         Load a demo scenario

SHIFT RESOLUTION (report):
  1. ?shift= query parameter
  2. The employee's directory entry
  3. Handler.DefaultShift

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, malformed feed rows
  - 404: Employee or punch not found
  - 413: Feed larger than the upload limit
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/ingest"
	"github.com/warp/attendance-engine/shift"
	"github.com/warp/attendance-engine/store/sqlite"
)

// DefaultUploadMaxBytes caps a punch feed upload when the handler is not told otherwise.
const DefaultUploadMaxBytes = 10 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store          *sqlite.Store
	Logger         *slog.Logger
	DefaultShift   shift.Policy
	UploadMaxBytes int64

	// Track currently loaded scenario
	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:          store,
		Logger:         logger,
		DefaultShift:   shift.SatWed,
		UploadMaxBytes: DefaultUploadMaxBytes,
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates or updates a directory entry.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	policy := h.DefaultShift
	if req.Shift != "" {
		p, err := shift.Parse(req.Shift)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Unknown shift", err)
			return
		}
		policy = p
	}

	emp := sqlite.Employee{
		ID:    strings.TrimSpace(req.ID),
		Name:  strings.TrimSpace(req.Name),
		Shift: policy,
	}
	if emp.Name == "" {
		emp.Name = emp.ID
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.fail(w, r, "Failed to save employee", err)
		return
	}

	saved, err := h.Store.GetEmployee(r.Context(), emp.ID)
	if err != nil {
		h.fail(w, r, "Failed to load employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(*saved))
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Employee not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// =============================================================================
// PUNCH FEED HANDLERS
// =============================================================================

// UploadPunches replaces a period's punches with an uploaded CSV feed.
// Form fields: csv_file (required), skip_invalid=true to drop bad rows.
func (h *Handler) UploadPunches(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.UploadMaxBytes)
	file, _, err := r.FormFile("csv_file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Punch feed too large", err)
			return
		}
		writeError(w, http.StatusBadRequest, "Missing csv_file upload", err)
		return
	}
	defer file.Close()

	skipInvalid, _ := strconv.ParseBool(r.FormValue("skip_invalid"))
	sheet, stats, err := ingest.ReadCSV(file, period, ingest.Options{
		SkipInvalid: skipInvalid,
		Logger:      h.Logger,
	})
	if err != nil {
		h.fail(w, r, "Failed to read punch feed", err)
		return
	}

	imp, err := h.Store.ImportPeriod(r.Context(), sheet, stats)
	if err != nil {
		h.fail(w, r, "Failed to store punch feed", err)
		return
	}

	h.Logger.Info("punch feed imported",
		slog.String("import_id", imp.ID),
		slog.String("period", period.String()),
		slog.Int("imported", stats.Imported),
		slog.Int("skipped", stats.Skipped),
		slog.Int("out_of_period", stats.OutOfPeriod),
	)

	dto := toImportDTO(imp)
	dto.Employees = sheet.EmployeeIDs()
	writeJSON(w, http.StatusCreated, dto)
}

// ListImports returns the period's upload history, newest first.
func (h *Handler) ListImports(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	imports, err := h.Store.ListImports(r.Context(), period)
	if err != nil {
		h.fail(w, r, "Failed to list imports", err)
		return
	}

	dtos := make([]ImportDTO, len(imports))
	for i := range imports {
		dtos[i] = toImportDTO(&imports[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListPeriodEmployees returns the ids that have punches in the period.
func (h *Handler) ListPeriodEmployees(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	sheet, err := h.Store.LoadPeriod(r.Context(), period)
	if err != nil {
		h.fail(w, r, "Failed to load period", err)
		return
	}
	writeJSON(w, http.StatusOK, PeriodEmployeesResponse{
		Period:    period.String(),
		Employees: sheet.EmployeeIDs(),
	})
}

// =============================================================================
// REPORT HANDLER
// =============================================================================

// GetReport builds the monthly report for one employee.
//
// An employee is known if they appear in the directory or have punches in
// the period; anyone else is a 404.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}
	ctx := r.Context()
	employeeID := chi.URLParam(r, "id")

	policy := h.DefaultShift
	name := ""
	emp, err := h.Store.GetEmployee(ctx, employeeID)
	switch {
	case err == nil:
		policy, name = emp.Shift, emp.Name
	case !attendance.IsNotFound(err):
		h.fail(w, r, "Failed to load employee", err)
		return
	}
	if key := r.URL.Query().Get("shift"); key != "" {
		if policy, err = shift.Parse(key); err != nil {
			writeError(w, http.StatusBadRequest, "Unknown shift", err)
			return
		}
	}

	sheet, err := h.Store.LoadPeriod(ctx, period)
	if err != nil {
		h.fail(w, r, "Failed to load period", err)
		return
	}
	if _, ok := sheet.Employee(employeeID); !ok && emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", attendance.ErrEmployeeNotFound)
		return
	}

	report, err := sheet.Report(employeeID, policy)
	if err != nil {
		h.fail(w, r, "Failed to build report", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report, name))
}

// =============================================================================
// PUNCH EDIT HANDLERS
// =============================================================================

// AddPunchPair records an entry/exit pair for an employee.
func (h *Handler) AddPunchPair(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}
	employeeID := chi.URLParam(r, "id")

	var req AddPunchPairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	entry, err := calendar.ParseClock(req.Entry)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entry time", err)
		return
	}
	exit, err := calendar.ParseClock(req.Exit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid exit time", err)
		return
	}

	if err := h.Store.InsertPair(r.Context(), period, employeeID, date, entry, exit); err != nil {
		h.fail(w, r, "Failed to add punches", err)
		return
	}
	h.writeDay(w, r, http.StatusCreated, period, employeeID, date)
}

// DeletePunch removes one punch: ?date=YYYY-MM-DD&time=HH:MM[:SS].
func (h *Handler) DeletePunch(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}
	employeeID := chi.URLParam(r, "id")

	date, err := calendar.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	clock, err := calendar.ParseClock(r.URL.Query().Get("time"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid time", err)
		return
	}

	if err := h.Store.DeletePunch(r.Context(), period, employeeID, date, clock); err != nil {
		h.fail(w, r, "Failed to delete punch", err)
		return
	}
	h.writeDay(w, r, http.StatusOK, period, employeeID, date)
}

func (h *Handler) writeDay(w http.ResponseWriter, r *http.Request, status int, period calendar.Period, employeeID string, date calendar.Date) {
	sheet, err := h.Store.LoadPeriod(r.Context(), period)
	if err != nil {
		h.fail(w, r, "Failed to load period", err)
		return
	}
	writeJSON(w, status, DayPunchesDTO{
		EmployeeID: employeeID,
		Date:       date.String(),
		Punches:    clockStrings(sheet.Day(employeeID, date)),
	})
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts returns every shift policy with its weekly table.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	policies := shift.Policies()
	dtos := make([]ShiftDTO, 0, len(policies))
	for _, p := range policies {
		dto, err := toShiftDTO(p)
		if err != nil {
			h.fail(w, r, "Failed to describe shift", err)
			return
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func periodParam(r *http.Request) (calendar.Period, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return calendar.Period{}, calendar.ErrInvalidDate
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		return calendar.Period{}, calendar.ErrInvalidDate
	}
	return calendar.NewPeriod(year, month)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case attendance.IsNotFound(err):
		return http.StatusNotFound
	case attendance.IsClientError(err), errors.Is(err, ingest.ErrInvalidRow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the status it maps to. Server-side failures are logged.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.ErrorContext(r.Context(), message,
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	writeError(w, status, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
