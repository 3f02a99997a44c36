package roster

import (
	"time"

	"github.com/google/uuid"

	"github.com/arvergara/hualpen-roster/internal/bitset"
)

// Solution is the full in-memory representation of a month's roster: the
// drivers, their assignments, and the cached aggregates everything else
// reads and writes. It is the single source of truth; the bitset index is
// a cache rebuilt from assignments, never authoritative on its own.
type Solution struct {
	Drivers     map[DriverID]*Driver
	Assignments map[ShiftID]Assignment
	driverOrder []DriverID // insertion order, for deterministic scans

	bits *bitset.Index

	// shifts retains the Shift metadata for every currently assigned shift,
	// so callers (e.g. the annual replicator) can recover (date, service,
	// shift-number) for an assignment without threading the original shift
	// list alongside the solution.
	shifts map[ShiftID]Shift

	// driverMinutes/driverDays are derived aggregates kept in sync on every
	// AddAssignment/RemoveAssignment so Cost() never has to rescan.
	driverMinutes map[DriverID]int
	driverDays    map[DriverID]map[time.Time]struct{}
}

// NewSolution returns an empty solution.
func NewSolution() *Solution {
	return &Solution{
		Drivers:       make(map[DriverID]*Driver),
		Assignments:   make(map[ShiftID]Assignment),
		bits:          bitset.NewIndex(),
		shifts:        make(map[ShiftID]Shift),
		driverMinutes: make(map[DriverID]int),
		driverDays:    make(map[DriverID]map[time.Time]struct{}),
	}
}

// Bits exposes the bitset index for feasibility queries performed by
// greedy/lns before calling AddAssignment.
func (s *Solution) Bits() *bitset.Index { return s.bits }

// AddDriver registers a new driver. Callers choose the id
// and work-start-date; this just wires the driver into the solution's
// bookkeeping.
func (s *Solution) AddDriver(d *Driver) {
	s.Drivers[d.ID] = d
	s.driverOrder = append(s.driverOrder, d.ID)
	s.driverMinutes[d.ID] = 0
	s.driverDays[d.ID] = make(map[time.Time]struct{})
}

// DriverOrder returns driver ids in creation order — the stable scan order
// greedy and repair rely on for determinism.
func (s *Solution) DriverOrder() []DriverID {
	return s.driverOrder
}

// AddAssignment assigns shift to driver, updating the bitset index and
// aggregates. Feasibility must already have been checked by the caller.
func (s *Solution) AddAssignment(driverID DriverID, shift Shift) {
	d := s.Drivers[driverID]
	d.ShiftIDs = append(d.ShiftIDs, shift.ID)
	s.Assignments[shift.ID] = Assignment{DriverID: driverID, ShiftID: shift.ID}
	s.shifts[shift.ID] = shift
	s.bits.Set(driverID, shift.Date, shift.StartMinute, shift.EndMinute())
	s.driverMinutes[driverID] += shift.DurationMin
	day := dayOnly(shift.Date)
	s.driverDays[driverID][day] = struct{}{}
}

// RemoveAssignment undoes AddAssignment for shift, which must currently be
// assigned.
func (s *Solution) RemoveAssignment(shift Shift) {
	a, ok := s.Assignments[shift.ID]
	if !ok {
		return
	}
	d := s.Drivers[a.DriverID]
	for i, id := range d.ShiftIDs {
		if id == shift.ID {
			d.ShiftIDs = append(d.ShiftIDs[:i], d.ShiftIDs[i+1:]...)
			break
		}
	}
	delete(s.Assignments, shift.ID)
	delete(s.shifts, shift.ID)
	s.bits.Clear(a.DriverID, shift.Date, shift.StartMinute, shift.EndMinute())
	s.driverMinutes[a.DriverID] -= shift.DurationMin

	day := dayOnly(shift.Date)
	if s.bits.Popcount(a.DriverID, day) == 0 {
		delete(s.driverDays[a.DriverID], day)
	}
}

// DropDriver removes a driver and all its bookkeeping. The caller is
// responsible for having already reinserted (or intentionally discarded)
// its shifts.
func (s *Solution) DropDriver(driverID DriverID) {
	delete(s.Drivers, driverID)
	delete(s.driverMinutes, driverID)
	delete(s.driverDays, driverID)
	s.bits.RemoveDriver(driverID)
	for i, id := range s.driverOrder {
		if id == driverID {
			s.driverOrder = append(s.driverOrder[:i], s.driverOrder[i+1:]...)
			break
		}
	}
}

// DriverMinutes returns the total assigned minutes for a driver.
func (s *Solution) DriverMinutes(driverID DriverID) int {
	return s.driverMinutes[driverID]
}

// DriverDaysWorked returns the number of distinct dates a driver has an
// assignment on.
func (s *Solution) DriverDaysWorked(driverID DriverID) int {
	return len(s.driverDays[driverID])
}

// Cost returns the primary (driver count) and secondary (total assigned
// minutes) comparators used by the SA acceptance rule.
func (s *Solution) Cost() (drivers int, totalMinutes int) {
	drivers = len(s.Drivers)
	for _, m := range s.driverMinutes {
		totalMinutes += m
	}
	return drivers, totalMinutes
}

// Clone deep-copies the solution in O(|assignments|), so speculative LNS
// moves can be rolled back by discarding the clone instead of recomputing
// bitsets from scratch.
func (s *Solution) Clone() *Solution {
	out := NewSolution()
	out.bits = s.bits.Clone()
	out.driverOrder = append([]DriverID(nil), s.driverOrder...)

	for id, d := range s.Drivers {
		cp := *d
		cp.ShiftIDs = append([]ShiftID(nil), d.ShiftIDs...)
		out.Drivers[id] = &cp
	}
	for id, a := range s.Assignments {
		out.Assignments[id] = a
	}
	for id, sh := range s.shifts {
		out.shifts[id] = sh
	}
	for id, m := range s.driverMinutes {
		out.driverMinutes[id] = m
	}
	for id, days := range s.driverDays {
		cp := make(map[time.Time]struct{}, len(days))
		for d := range days {
			cp[d] = struct{}{}
		}
		out.driverDays[id] = cp
	}
	return out
}

// AssignedShiftIDs returns the set of shift ids currently assigned (to any
// driver), usable for coverage checks.
func (s *Solution) AssignedShiftIDs() map[ShiftID]struct{} {
	out := make(map[ShiftID]struct{}, len(s.Assignments))
	for id := range s.Assignments {
		out[id] = struct{}{}
	}
	return out
}

// AssignedShiftSet returns the shift ids assigned to driverID as a set,
// suitable for conflict.Set.IntersectsAny.
func (s *Solution) AssignedShiftSet(driverID DriverID) map[ShiftID]struct{} {
	d, ok := s.Drivers[driverID]
	if !ok {
		return nil
	}
	out := make(map[ShiftID]struct{}, len(d.ShiftIDs))
	for _, id := range d.ShiftIDs {
		out[id] = struct{}{}
	}
	return out
}

// Shift returns the Shift metadata for a currently assigned shift id.
func (s *Solution) Shift(id ShiftID) (Shift, bool) {
	sh, ok := s.shifts[id]
	return sh, ok
}

// Shifts returns every currently assigned Shift, in no particular order.
func (s *Solution) Shifts() []Shift {
	out := make([]Shift, 0, len(s.shifts))
	for _, sh := range s.shifts {
		out = append(out, sh)
	}
	return out
}

func dayOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewDriverID generates a fresh random driver id.
func NewDriverID() DriverID { return uuid.New() }
