// Package conflict precomputes, for every shift, the set of other shifts
// that can never share a driver (C2). Like the coverage algorithm in the
// teacher repo, this package is a pure function: no I/O, no side effects,
// deterministic given its inputs.
package conflict

import (
	"github.com/arvergara/hualpen-roster/internal/config"
	"github.com/arvergara/hualpen-roster/internal/roster"
)

// Set maps a shift id to the set of shift ids it cannot share a driver
// with. It is symmetric and immutable once built.
type Set map[roster.ShiftID]map[roster.ShiftID]struct{}

// Conflicts returns the set of shifts conflicting with shiftID, or nil.
func (s Set) Conflicts(shiftID roster.ShiftID) map[roster.ShiftID]struct{} {
	return s[shiftID]
}

// IntersectsAny reports whether any id in assigned also appears in the
// conflict set for shiftID — the O(min(|A|,|C|)) check used by repair.
func (s Set) IntersectsAny(shiftID roster.ShiftID, assigned map[roster.ShiftID]struct{}) bool {
	c := s[shiftID]
	if len(c) == 0 || len(assigned) == 0 {
		return false
	}
	small, big := c, assigned
	if len(assigned) < len(c) {
		small, big = assigned, c
	}
	for id := range small {
		if _, ok := big[id]; ok {
			return true
		}
	}
	return false
}

func (s Set) add(a, b roster.ShiftID) {
	if s[a] == nil {
		s[a] = make(map[roster.ShiftID]struct{})
	}
	s[a][b] = struct{}{}
}

// Build computes the conflict set for the given dated shifts, bucketing by
// date so only same-day and adjacent-day pairs are ever compared. The rest
// thresholds come from cfg rather than a package default, so a caller
// running a non-default regime gets a conflict set consistent with the
// feasibility checks it later runs against the same cfg.
func Build(cfg config.Config, shifts []roster.Shift) Set {
	byDate := make(map[string][]roster.Shift)
	key := func(s roster.Shift) string {
		y, m, d := s.Date.Date()
		return dateKey(y, int(m), d)
	}
	for _, s := range shifts {
		k := key(s)
		byDate[k] = append(byDate[k], s)
	}

	set := make(Set, len(shifts))
	for i := range shifts {
		set[shifts[i].ID] = nil // ensure presence even with empty conflict set
	}

	for _, s := range shifts {
		y, m, d := s.Date.Date()
		sameDayKey := dateKey(y, int(m), d)
		nextDayKey := dateKey(s.Date.AddDate(0, 0, 1).Date())
		for _, other := range byDate[sameDayKey] {
			if other.ID == s.ID {
				continue
			}
			if sameDayConflict(s, other, cfg.MinSameDayRestMinutes) {
				set.add(s.ID, other.ID)
			}
		}
		for _, other := range byDate[nextDayKey] {
			if adjacentDayConflict(s, other, cfg.MinInterDayRestMinutes) {
				set.add(s.ID, other.ID)
				set.add(other.ID, s.ID)
			}
		}
	}
	return set
}

func dateKey(y, m, d int) string {
	// Fixed-width key, avoids allocating via fmt.Sprintf on the hot path.
	buf := [10]byte{}
	writeInt(buf[0:4], y)
	buf[4] = '-'
	writeInt(buf[5:7], m)
	buf[7] = '-'
	writeInt(buf[8:10], d)
	return string(buf[:])
}

func writeInt(dst []byte, v int) {
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = byte('0' + v%10)
		v /= 10
	}
}

// sameDayConflict implements the §4.2 same-date rule: overlap, or a gap
// under minSameDayRestMinutes in either ordering.
func sameDayConflict(a, b roster.Shift, minSameDayRestMinutes int) bool {
	if overlaps(a.StartMinute, a.EndMinute(), b.StartMinute, b.EndMinute()) {
		return true
	}
	gapAB := b.StartMinute - a.EndMinute()
	gapBA := a.StartMinute - b.EndMinute()
	if gapAB >= 0 && gapAB < minSameDayRestMinutes {
		return true
	}
	if gapBA >= 0 && gapBA < minSameDayRestMinutes {
		return true
	}
	return false
}

// adjacentDayConflict implements the §4.2 next-day rule: a is on date D, b
// is on date D+1; the gap from a's end to b's start across midnight must be
// at least minInterDayRestMinutes. Using a's raw (possibly >1440) end
// minute keeps this correct even when a itself crosses midnight into D+1.
func adjacentDayConflict(a, b roster.Shift, minInterDayRestMinutes int) bool {
	gap := (1440 - a.EndMinute()) + b.StartMinute
	return gap < minInterDayRestMinutes
}

func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// AverageSetSize is a diagnostic: the mean conflict-set cardinality across
// all shifts, reported once per build per §4.2.
func AverageSetSize(s Set) float64 {
	if len(s) == 0 {
		return 0
	}
	total := 0
	for _, c := range s {
		total += len(c)
	}
	return float64(total) / float64(len(s))
}
