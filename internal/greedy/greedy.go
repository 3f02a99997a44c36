// Package greedy builds an initial feasible roster (C4): walk the month's
// calendar days in order and assign each day's shifts to the first
// pattern-respecting driver that can take them, creating a new driver only
// when no existing one fits. Deterministic: the same shifts and conflict
// set always produce the same solution.
package greedy

import (
	"math/rand"
	"sort"
	"time"

	"github.com/arvergara/hualpen-roster/internal/conflict"
	"github.com/arvergara/hualpen-roster/internal/config"
	"github.com/arvergara/hualpen-roster/internal/roster"
)

// Build constructs a feasible Solution covering every shift, or returns an
// UnreachableShiftError if a shift cannot be placed even on a fresh driver —
// per spec this can only happen if the shift itself violates a hard limit,
// which should already have been caught by Shift.Validate.
//
// rnd is accepted for API symmetry with lns.Engine; greedy breaks ties by
// driver creation order, never randomness, so rnd may be nil.
func Build(cfg config.Config, shifts []roster.Shift, conflicts conflict.Set, cycleN int, rnd *rand.Rand) (*roster.Solution, error) {
	_ = rnd

	byDate := groupByDate(shifts)
	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	sol := roster.NewSolution()

	for _, d := range dates {
		dayShifts := byDate[d]
		sort.Slice(dayShifts, func(i, j int) bool {
			return dayShifts[i].StartMinute < dayShifts[j].StartMinute
		})

		for _, s := range dayShifts {
			if err := placeShift(cfg, sol, s, conflicts, cycleN); err != nil {
				return nil, err
			}
		}
	}
	return sol, nil
}

func placeShift(cfg config.Config, sol *roster.Solution, s roster.Shift, conflicts conflict.Set, cycleN int) error {
	for _, driverID := range sol.DriverOrder() {
		d := sol.Drivers[driverID]
		if !d.IsWorkDay(s.Date) {
			continue
		}
		if conflicts.IntersectsAny(s.ID, sol.AssignedShiftSet(driverID)) {
			continue
		}
		if !fits(cfg, sol, driverID, s) {
			continue
		}
		sol.AddAssignment(driverID, s)
		return nil
	}

	d := &roster.Driver{
		ID:            roster.NewDriverID(),
		CycleN:        cycleN,
		WorkStartDate: s.Date,
	}
	sol.AddDriver(d)
	if !fits(cfg, sol, d.ID, s) {
		return &roster.UnreachableShiftError{ShiftID: s.ID, Reason: "violates a hard limit even on a fresh driver"}
	}
	sol.AddAssignment(d.ID, s)
	return nil
}

func fits(cfg config.Config, sol *roster.Solution, driverID roster.DriverID, s roster.Shift) bool {
	bits := sol.Bits()
	if bits.Overlaps(driverID, s.Date, s.StartMinute, s.EndMinute()) {
		return false
	}
	if !bits.FitsDaily(driverID, s.Date, s.StartMinute, s.EndMinute(), cfg.MaxDailyMinutes) {
		return false
	}
	if !bits.SameDayRestOK(driverID, s.Date, s.StartMinute, s.EndMinute(), cfg.MinSameDayRestMinutes) {
		return false
	}
	if !bits.InterDayRestOK(driverID, s.Date, s.StartMinute, s.EndMinute(), cfg.MinInterDayRestMinutes) {
		return false
	}
	return true
}

func groupByDate(shifts []roster.Shift) map[time.Time][]roster.Shift {
	out := make(map[time.Time][]roster.Shift)
	for _, s := range shifts {
		k := time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), 0, 0, 0, 0, time.UTC)
		out[k] = append(out[k], s)
	}
	return out
}
