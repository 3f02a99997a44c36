// Package roster holds the in-memory domain model for the driver-rostering
// engine: shifts, drivers, assignments, and the solution they compose into.
// Types here carry no I/O and no back-references; a Driver holds only the
// ids of its shifts, never pointers to them, so the object graph stays a
// tree instead of a cycle.
package roster

import (
	"time"

	"github.com/google/uuid"
)

// Type aliases for domain ids, following the uuid-handle convention.
type (
	ShiftID  = uuid.UUID
	DriverID = uuid.UUID
	RunID    = uuid.UUID
)

// Now returns the current UTC time. Centralized so tests can wrap it if needed.
func Now() time.Time {
	return time.Now().UTC()
}

// Shift is a single dated driving assignment to be covered.
type Shift struct {
	ID          ShiftID
	ServiceID   string
	ShiftNumber int
	Date        time.Time // date-only, UTC midnight
	StartMinute int       // minute of day, [0, 1440)
	DurationMin int
	ServiceType string
}

// EndMinute is StartMinute+DurationMin, which may exceed 1440 for a shift
// that crosses midnight. Rest/conflict arithmetic always uses this value,
// never a re-wrapped one, so the spill into the next calendar day is implicit.
func (s Shift) EndMinute() int {
	return s.StartMinute + s.DurationMin
}

// Validate checks the invariants from the data model: positive duration,
// start within a single day, an end strictly after the start, and a
// duration that does not itself exceed the daily cap (a shift longer than
// the cap can never be placed on any driver, so it is an InvalidShift, not
// something greedy should discover later as unreachable).
func (s Shift) Validate(maxDailyMinutes int) error {
	if s.DurationMin <= 0 {
		return &InvalidShiftError{ShiftID: s.ID, Reason: "duration must be positive"}
	}
	if s.StartMinute < 0 || s.StartMinute >= 1440 {
		return &InvalidShiftError{ShiftID: s.ID, Reason: "start minute out of range"}
	}
	if s.EndMinute() <= s.StartMinute {
		return &InvalidShiftError{ShiftID: s.ID, Reason: "end must be after start"}
	}
	if s.DurationMin > maxDailyMinutes {
		return &InvalidShiftError{ShiftID: s.ID, Reason: "duration exceeds daily cap"}
	}
	return nil
}

// Driver is a synthetic driver following an N-on/N-off cycle.
// It holds only shift ids; shifts never point back to a driver.
type Driver struct {
	ID            DriverID
	CycleN        int
	WorkStartDate time.Time
	ShiftIDs      []ShiftID
}

// IsWorkDay reports whether date falls in the work half of the driver's
// cycle: (date - WorkStartDate) mod 2N < N.
func (d Driver) IsWorkDay(date time.Time) bool {
	period := 2 * d.CycleN
	days := daysBetween(d.WorkStartDate, date)
	dic := ((days % period) + period) % period
	return dic < d.CycleN
}

// DayInCycle returns (date - WorkStartDate) mod 2N.
func (d Driver) DayInCycle(date time.Time) int {
	period := 2 * d.CycleN
	days := daysBetween(d.WorkStartDate, date)
	return ((days % period) + period) % period
}

func daysBetween(from, to time.Time) int {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// Assignment pairs a driver with a shift it covers.
type Assignment struct {
	DriverID DriverID
	ShiftID  ShiftID
}

// InvalidShiftError indicates a single shift violates a hard limit.
// Per the error taxonomy this is fatal and propagates to the caller.
type InvalidShiftError struct {
	ShiftID ShiftID
	Reason  string
}

func (e *InvalidShiftError) Error() string {
	return "invalid shift " + e.ShiftID.String() + ": " + e.Reason
}

// UnreachableShiftError indicates a shift cannot be placed even on a fresh
// driver. Per §7 this signals a data bug and is fatal.
type UnreachableShiftError struct {
	ShiftID ShiftID
	Reason  string
}

func (e *UnreachableShiftError) Error() string {
	return "unreachable shift " + e.ShiftID.String() + ": " + e.Reason
}
