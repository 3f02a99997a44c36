// Package bitset provides the per-driver-per-day minute-occupancy index
// (C3). Each (driver, date) pair maps to a 1440-bit word array supporting
// overlap, daily-hours, and rest queries. The daily-hours query reads a
// cached total in O(1); the overlap and rest queries test the day's bits one
// minute at a time. The index is a cache rebuilt from assignments, never a
// source of truth.
package bitset

import (
	"time"

	"github.com/google/uuid"
)

const (
	minutesPerDay = 1440
	wordBits      = 64
	words         = (minutesPerDay + wordBits - 1) / wordBits // 23
)

// dayKey normalizes a time.Time to a comparable date-only key.
func dayKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayBits is the 1440-bit occupancy map for one (driver, date) pair, plus a
// cached duration total so fits_daily is O(1) rather than a rescan.
//
// count is the sum of full durations of shifts anchored (by start date) to
// this day, not a literal popcount of bits: a shift that crosses midnight
// belongs entirely to its start date for cap purposes (spec: "a shift whose
// local end time exceeds 24:00 still belongs to its start date"), even
// though only part of its minutes fit in this day's 1440-bit window. The
// remainder is mirrored onto day D+1's bits (by Index.Set/Index.Clear) purely
// so overlap and rest queries on D+1 see those minutes as occupied; it is
// never added to D+1's own count.
type DayBits struct {
	bits  [words]uint64
	count int
}

// setBits marks [start,end) occupied, clamped to this day's window. It does
// not touch count; callers combine it with a count adjustment that reflects
// the full (possibly cross-midnight) duration.
func (d *DayBits) setBits(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > minutesPerDay {
		end = minutesPerDay
	}
	for m := start; m < end; m++ {
		w, b := m/wordBits, uint(m%wordBits)
		d.bits[w] |= 1 << b
	}
}

// clearBits is the inverse of setBits.
func (d *DayBits) clearBits(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > minutesPerDay {
		end = minutesPerDay
	}
	for m := start; m < end; m++ {
		w, b := m/wordBits, uint(m%wordBits)
		d.bits[w] &^= 1 << b
	}
}

func (d *DayBits) overlaps(start, end int) bool {
	for m := start; m < end && m < minutesPerDay; m++ {
		w, b := m/wordBits, uint(m%wordBits)
		if d.bits[w]&(1<<b) != 0 {
			return true
		}
	}
	return false
}

// lastSet returns the highest occupied minute < minutesPerDay, or -1.
func (d *DayBits) lastSet() int {
	for m := minutesPerDay - 1; m >= 0; m-- {
		w, b := m/wordBits, uint(m%wordBits)
		if d.bits[w]&(1<<b) != 0 {
			return m
		}
	}
	return -1
}

// firstSet returns the lowest occupied minute, or -1 if none.
func (d *DayBits) firstSet() int {
	for m := 0; m < minutesPerDay; m++ {
		w, b := m/wordBits, uint(m%wordBits)
		if d.bits[w]&(1<<b) != 0 {
			return m
		}
	}
	return -1
}

// runs returns the maximal contiguous occupied [start,end) intervals, used
// by the same-day rest check.
func (d *DayBits) runs() [][2]int {
	var out [][2]int
	inRun := false
	runStart := 0
	for m := 0; m < minutesPerDay; m++ {
		w, b := m/wordBits, uint(m%wordBits)
		set := d.bits[w]&(1<<b) != 0
		if set && !inRun {
			inRun = true
			runStart = m
		} else if !set && inRun {
			inRun = false
			out = append(out, [2]int{runStart, m})
		}
	}
	if inRun {
		out = append(out, [2]int{runStart, minutesPerDay})
	}
	return out
}

// Index is the full per-driver-per-day occupancy store.
type Index struct {
	days map[uuid.UUID]map[time.Time]*DayBits
}

// NewIndex creates an empty bitset index.
func NewIndex() *Index {
	return &Index{days: make(map[uuid.UUID]map[time.Time]*DayBits)}
}

func (ix *Index) dayBits(driver uuid.UUID, date time.Time, create bool) *DayBits {
	dk := dayKey(date)
	byDate, ok := ix.days[driver]
	if !ok {
		if !create {
			return nil
		}
		byDate = make(map[time.Time]*DayBits)
		ix.days[driver] = byDate
	}
	db, ok := byDate[dk]
	if !ok {
		if !create {
			return nil
		}
		db = &DayBits{}
		byDate[dk] = db
	}
	return db
}

// Set marks minutes [start,end) as occupied for (driver, date). end may
// exceed minutesPerDay for a shift that crosses midnight; the portion past
// minutesPerDay is mirrored onto day+1's bits (not its count — the full
// duration counts toward date's cap per spec) so overlap and rest queries
// against day+1 see those minutes as busy.
func (ix *Index) Set(driver uuid.UUID, date time.Time, start, end int) {
	db := ix.dayBits(driver, date, true)
	db.setBits(start, end)
	db.count += end - start
	if end > minutesPerDay {
		spill := ix.dayBits(driver, dayKey(date).AddDate(0, 0, 1), true)
		spill.setBits(0, end-minutesPerDay)
	}
}

// Clear marks minutes [start,end) as free for (driver, date), undoing the
// effect of the matching Set call including any next-day spillover.
func (ix *Index) Clear(driver uuid.UUID, date time.Time, start, end int) {
	if db := ix.dayBits(driver, date, false); db != nil {
		db.clearBits(start, end)
		db.count -= end - start
	}
	if end > minutesPerDay {
		if spill := ix.dayBits(driver, dayKey(date).AddDate(0, 0, 1), false); spill != nil {
			spill.clearBits(0, end-minutesPerDay)
		}
	}
}

// Overlaps reports whether any minute in [start,end) is already occupied,
// including the day+1 portion of a candidate that itself crosses midnight.
func (ix *Index) Overlaps(driver uuid.UUID, date time.Time, start, end int) bool {
	if db := ix.dayBits(driver, date, false); db != nil && db.overlaps(start, end) {
		return true
	}
	if end > minutesPerDay {
		if spill := ix.dayBits(driver, dayKey(date).AddDate(0, 0, 1), false); spill != nil {
			return spill.overlaps(0, end-minutesPerDay)
		}
	}
	return false
}

// FitsDaily reports whether adding a duration of (end-start) minutes would
// keep the driver within maxDailyMinutes on date. maxDailyMinutes is the
// caller's config.Config.MaxDailyMinutes, never a package-level default, so
// a run can tune the regime without touching this package.
func (ix *Index) FitsDaily(driver uuid.UUID, date time.Time, start, end, maxDailyMinutes int) bool {
	db := ix.dayBits(driver, date, false)
	occupied := 0
	if db != nil {
		occupied = db.count
	}
	return occupied+(end-start) <= maxDailyMinutes
}

// SameDayRestOK reports whether [start,end) keeps at least
// minSameDayRestMinutes away from every existing run on date, including any
// run formed by a previous day's shift spilling past midnight into date.
func (ix *Index) SameDayRestOK(driver uuid.UUID, date time.Time, start, end, minSameDayRestMinutes int) bool {
	db := ix.dayBits(driver, date, false)
	if db == nil {
		return true
	}
	for _, run := range db.runs() {
		rs, re := run[0], run[1]
		if end <= rs {
			if rs-end < minSameDayRestMinutes {
				return false
			}
			continue
		}
		if start >= re {
			if start-re < minSameDayRestMinutes {
				return false
			}
			continue
		}
		// overlapping run: caller's Overlaps check should have caught this.
		return false
	}
	return true
}

// InterDayRestOK reports whether the gap to the previous day's last shift
// and to the next day's first shift both meet minInterDayRestMinutes.
func (ix *Index) InterDayRestOK(driver uuid.UUID, date time.Time, start, end, minInterDayRestMinutes int) bool {
	prev := dayKey(date).AddDate(0, 0, -1)
	next := dayKey(date).AddDate(0, 0, 1)

	if db := ix.dayBits(driver, prev, false); db != nil {
		if last := db.lastSet(); last >= 0 {
			gap := (minutesPerDay - last - 1) + start
			if gap < minInterDayRestMinutes {
				return false
			}
		}
	}
	if db := ix.dayBits(driver, next, false); db != nil {
		if first := db.firstSet(); first >= 0 {
			gap := (minutesPerDay - end) + first
			if gap < minInterDayRestMinutes {
				return false
			}
		}
	}
	return true
}

// Popcount returns the cached duration total for (driver, date): the full
// durations of the shifts that start on date, including minutes that spill
// past midnight, and none of the minutes spilled onto date from the day
// before. It is not a literal count of set bits.
func (ix *Index) Popcount(driver uuid.UUID, date time.Time) int {
	db := ix.dayBits(driver, date, false)
	if db == nil {
		return 0
	}
	return db.count
}

// Clone deep-copies the index.
func (ix *Index) Clone() *Index {
	out := NewIndex()
	for driver, byDate := range ix.days {
		nd := make(map[time.Time]*DayBits, len(byDate))
		for date, db := range byDate {
			cp := *db
			nd[date] = &cp
		}
		out.days[driver] = nd
	}
	return out
}

// RemoveDriver drops all cached bitsets for a driver (used when a driver is
// dropped from the solution).
func (ix *Index) RemoveDriver(driver uuid.UUID) {
	delete(ix.days, driver)
}
