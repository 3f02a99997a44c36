package conflict

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/arvergara/hualpen-roster/internal/config"
	"github.com/arvergara/hualpen-roster/internal/roster"
)

func shift(id string, date time.Time, start, duration int) roster.Shift {
	return roster.Shift{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)), Date: date, StartMinute: start, DurationMin: duration, ServiceID: "S1"}
}

func TestOverlappingShiftsConflict(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := shift("a", date, 6*60, 8*60)  // 06:00-14:00
	b := shift("b", date, 13*60, 2*60) // 13:00-15:00, overlaps a

	set := Build(config.Default(), []roster.Shift{a, b})
	assert.True(t, set.IntersectsAny(a.ID, map[roster.ShiftID]struct{}{b.ID: {}}))
}

func TestSameDayGapUnderFiveHoursConflicts(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := shift("a", date, 4*60, 4*60+30)    // 04:00-08:30
	b := shift("b", date, 12*60+30, 4*60)   // 12:30-16:30, gap = 4h

	set := Build(config.Default(), []roster.Shift{a, b})
	assert.Contains(t, set.Conflicts(a.ID), b.ID)
	assert.Contains(t, set.Conflicts(b.ID), a.ID)
}

func TestSameDayGapAtFloorDoesNotConflict(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := shift("a", date, 0, 4*60)      // 00:00-04:00
	b := shift("b", date, 9*60, 4*60)   // 09:00-13:00, gap = 5h exactly

	set := Build(config.Default(), []roster.Shift{a, b})
	assert.NotContains(t, set.Conflicts(a.ID), b.ID)
}

func TestAdjacentDayGapUnderTenHoursConflicts(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	a := shift("a", day1, 20*60, 4*60) // ends 24:00
	b := shift("b", day2, 5*60, 4*60)  // gap = 5h

	set := Build(config.Default(), []roster.Shift{a, b})
	assert.Contains(t, set.Conflicts(a.ID), b.ID)
	assert.Contains(t, set.Conflicts(b.ID), a.ID)
}

func TestNonAdjacentShiftsNeverConflict(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day3 := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	a := shift("a", day1, 6*60, 8*60)
	b := shift("b", day3, 6*60, 8*60)

	set := Build(config.Default(), []roster.Shift{a, b})
	assert.Empty(t, set.Conflicts(a.ID))
}

func TestIntersectsAnyUsesSmallerSet(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := shift("a", date, 6*60, 8*60)
	b := shift("b", date, 13*60, 2*60)
	c := shift("c", date, 20*60, 2*60)

	set := Build(config.Default(), []roster.Shift{a, b, c})
	assigned := map[roster.ShiftID]struct{}{b.ID: {}, c.ID: {}}
	assert.True(t, set.IntersectsAny(a.ID, assigned))

	assigned2 := map[roster.ShiftID]struct{}{c.ID: {}}
	assert.False(t, set.IntersectsAny(a.ID, assigned2))
}

func TestAverageSetSize(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := shift("a", date, 6*60, 8*60)
	b := shift("b", date, 13*60, 2*60)

	set := Build(config.Default(), []roster.Shift{a, b})
	assert.Greater(t, AverageSetSize(set), 0.0)
}
