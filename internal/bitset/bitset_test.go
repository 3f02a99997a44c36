package bitset

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	ix := NewIndex()
	driver := uuid.New()
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	ix.Set(driver, date, 6*60, 14*60)

	assert.True(t, ix.Overlaps(driver, date, 13*60, 15*60))
	assert.False(t, ix.Overlaps(driver, date, 14*60, 16*60))
}

func TestFitsDaily(t *testing.T) {
	ix := NewIndex()
	driver := uuid.New()
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	ix.Set(driver, date, 0, 12*60)
	assert.True(t, ix.FitsDaily(driver, date, 12*60, 14*60, 840))    // exactly 14h total
	assert.False(t, ix.FitsDaily(driver, date, 12*60, 14*60+1, 840)) // 1 minute over
}

func TestSameDayRestOK(t *testing.T) {
	ix := NewIndex()
	driver := uuid.New()
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	ix.Set(driver, date, 4*60, 8*60+30) // 04:00-08:30

	assert.False(t, ix.SameDayRestOK(driver, date, 12*60, 16*60+30, 300)) // gap = 3.5h < 5h
	assert.True(t, ix.SameDayRestOK(driver, date, 13*60+30, 17*60, 300))  // gap = 5h exactly
}

func TestInterDayRestOK(t *testing.T) {
	ix := NewIndex()
	driver := uuid.New()
	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	ix.Set(driver, day1, 20*60, 24*60) // 20:00-24:00 (ends at midnight)

	// gap to 05:00 next day = 5h, under the 10h floor.
	assert.False(t, ix.InterDayRestOK(driver, day2, 5*60, 9*60, 600))
	// gap to 06:00 next day = 6h, still under 10h.
	assert.False(t, ix.InterDayRestOK(driver, day2, 6*60, 10*60, 600))
	// gap to 10:00 next day = 10h exactly, at the floor.
	assert.True(t, ix.InterDayRestOK(driver, day2, 10*60, 14*60, 600))
}

// TestCrossMidnightShiftSpillsIntoNextDay exercises spec §8 Scenario 3: a
// 19:30-00:45 shift (start=1170, duration=315) belongs entirely to its start
// date for cap purposes, but its last 45 minutes must read as occupied on
// day+1 for overlap and rest queries.
func TestCrossMidnightShiftSpillsIntoNextDay(t *testing.T) {
	ix := NewIndex()
	driver := uuid.New()
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	next := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	start, duration := 19*60+30, 5*60+15 // 19:30, 5h15m
	end := start + duration              // 1485
	ix.Set(driver, date, start, end)

	// Full duration counts against the start date, not the spillover day.
	assert.Equal(t, duration, ix.Popcount(driver, date))
	assert.Equal(t, 0, ix.Popcount(driver, next))

	// The 45 minutes past midnight (00:00-00:45) read as occupied on day+1.
	assert.True(t, ix.Overlaps(driver, next, 0, 45))
	assert.False(t, ix.Overlaps(driver, next, 45, 60))

	// Scenario 3's pairing: an earlier same-driver shift (04:00-08:30, 270
	// min) leaves an 11h gap to this one, clearing the same-day rest floor,
	// and the pair totals 585 min, under the 840 cap.
	assert.True(t, ix.SameDayRestOK(driver, date, 4*60, 8*60+30, 300))
	ix.Set(driver, date, 4*60, 8*60+30)
	assert.Equal(t, 270+duration, ix.Popcount(driver, date))
	assert.True(t, ix.FitsDaily(driver, date, 0, 0, 840))

	// Clear undoes both the day's bits/count and the day+1 spillover.
	ix.Clear(driver, date, start, end)
	assert.Equal(t, 270, ix.Popcount(driver, date))
	assert.False(t, ix.Overlaps(driver, next, 0, 45))
}

func TestPopcountAndClear(t *testing.T) {
	ix := NewIndex()
	driver := uuid.New()
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	ix.Set(driver, date, 0, 100)
	assert.Equal(t, 100, ix.Popcount(driver, date))

	ix.Clear(driver, date, 0, 50)
	assert.Equal(t, 50, ix.Popcount(driver, date))
}

func TestCloneIsIndependent(t *testing.T) {
	ix := NewIndex()
	driver := uuid.New()
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ix.Set(driver, date, 0, 100)

	clone := ix.Clone()
	clone.Set(driver, date, 100, 200)

	assert.Equal(t, 100, ix.Popcount(driver, date))
	assert.Equal(t, 200, clone.Popcount(driver, date))
}

func TestRemoveDriver(t *testing.T) {
	ix := NewIndex()
	driver := uuid.New()
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ix.Set(driver, date, 0, 100)

	ix.RemoveDriver(driver)
	assert.Equal(t, 0, ix.Popcount(driver, date))
}
