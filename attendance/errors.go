/*
errors.go - Error types for the attendance engine

ERROR CATEGORIES:
  1. Input errors - bad period, unknown shift policy, out-of-range or
     misordered punches on edit
  2. Lookup errors - punch or employee not found
  3. Classification - ErrMalformedDay marks an odd punch count. BuildReport
     reports such days as data; only CalculateDay returns it, as a guard.

All of these are local and recoverable. Callers use errors.Is / errors.As.

SEE ALSO:
  - calendar.ErrInvalidDate, shift.ErrUnknownPolicy
  - api/handlers.go: maps these to HTTP status codes
*/
package attendance

import (
	"errors"
	"fmt"

	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/shift"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMalformedDay marks a day with an odd number of punches.
	ErrMalformedDay = errors.New("malformed day: odd punch count")

	// ErrOutOfRange is returned when an edited punch falls outside the period.
	ErrOutOfRange = errors.New("punch outside reporting period")

	// ErrInvalidPunchOrder is returned when an inserted entry is not before its exit.
	ErrInvalidPunchOrder = errors.New("entry must be before exit")

	// ErrPunchNotFound is returned when a delete matches nothing.
	ErrPunchNotFound = errors.New("punch not found")

	// ErrEmployeeNotFound is returned when an employee is unknown.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrInvalidEmployee is returned for an empty employee id.
	ErrInvalidEmployee = errors.New("employee id is required")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// OutOfRangeError names the offending date and the active period.
type OutOfRangeError struct {
	Date   calendar.Date
	Period calendar.Period
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("punch outside reporting period: %s not in %s", e.Date, e.Period)
}

func (e *OutOfRangeError) Unwrap() error { return ErrOutOfRange }

// PunchOrderError names the rejected pair.
type PunchOrderError struct {
	Date  calendar.Date
	Entry calendar.Clock
	Exit  calendar.Clock
}

func (e *PunchOrderError) Error() string {
	return fmt.Sprintf("entry must be before exit: %s entry %s, exit %s", e.Date, e.Entry, e.Exit)
}

func (e *PunchOrderError) Unwrap() error { return ErrInvalidPunchOrder }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, calendar.ErrInvalidDate) ||
		errors.Is(err, calendar.ErrInvalidClock) ||
		errors.Is(err, shift.ErrUnknownPolicy) ||
		errors.Is(err, ErrOutOfRange) ||
		errors.Is(err, ErrInvalidPunchOrder) ||
		errors.Is(err, ErrMalformedDay) ||
		errors.Is(err, ErrInvalidEmployee)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPunchNotFound) ||
		errors.Is(err, ErrEmployeeNotFound)
}
