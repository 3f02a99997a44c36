package greedy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvergara/hualpen-roster/internal/conflict"
	"github.com/arvergara/hualpen-roster/internal/config"
	"github.com/arvergara/hualpen-roster/internal/roster"
	"github.com/arvergara/hualpen-roster/tests/helpers"
)

func TestSmallHomogeneousMonthProducesTwoDrivers(t *testing.T) {
	monthShifts := helpers.DailyShiftsForMonth(2026, time.March, "S1", 1, 6*60, 8*60+6) // 06:00-14:06, 8h6m

	conflicts := conflict.Build(config.Default(), monthShifts)
	sol, err := Build(config.Default(), monthShifts, conflicts, 7, nil)
	require.NoError(t, err)

	drivers, _ := sol.Cost()
	assert.Equal(t, 2, drivers)
	assert.Len(t, sol.Assignments, len(monthShifts))
}

func TestGreedyIdempotentUnderReplay(t *testing.T) {
	monthShifts := helpers.DailyShiftsForMonth(2026, time.March, "S1", 1, 6*60, 8*60)

	conflicts := conflict.Build(config.Default(), monthShifts)
	sol1, err := Build(config.Default(), monthShifts, conflicts, 7, nil)
	require.NoError(t, err)
	sol2, err := Build(config.Default(), monthShifts, conflicts, 7, nil)
	require.NoError(t, err)

	d1, m1 := sol1.Cost()
	d2, m2 := sol2.Cost()
	assert.Equal(t, d1, d2)
	assert.Equal(t, m1, m2)
}

func TestTwoShiftDayWithFourHourGapUsesDifferentDrivers(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	s1 := helpers.NewShiftBuilder().WithDate(date).WithStartMinute(4 * 60).WithDurationMin(4*60 + 30).Build()
	s2 := helpers.NewShiftBuilder().WithDate(date).WithStartMinute(12*60 + 30).WithDurationMin(4 * 60).Build()

	shifts := []roster.Shift{s1, s2}
	conflicts := conflict.Build(config.Default(), shifts)
	sol, err := Build(config.Default(), shifts, conflicts, 7, nil)
	require.NoError(t, err)

	a1 := sol.Assignments[s1.ID]
	a2 := sol.Assignments[s2.ID]
	assert.NotEqual(t, a1.DriverID, a2.DriverID)
}

func TestTwoShiftDayWithElevenHourGapFitsOneDriver(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	s1 := helpers.NewShiftBuilder().WithDate(date).WithStartMinute(4 * 60).WithDurationMin(4*60 + 30).Build()
	// 19:30-00:45, crosses midnight: start=1170, duration=315 (5h15m), end=1485.
	s2 := helpers.NewShiftBuilder().WithDate(date).WithStartMinute(19*60 + 30).WithDurationMin(5*60 + 15).Build()

	shifts := []roster.Shift{s1, s2}
	conflicts := conflict.Build(config.Default(), shifts)
	sol, err := Build(config.Default(), shifts, conflicts, 7, nil)
	require.NoError(t, err)

	a1 := sol.Assignments[s1.ID]
	a2 := sol.Assignments[s2.ID]
	assert.Equal(t, a1.DriverID, a2.DriverID, "11h gap and 9.75h total should fit one driver")
}

func TestCoverageIsComplete(t *testing.T) {
	monthShifts := helpers.DailyShiftsForMonth(2026, time.March, "S1", 1, 6*60, 8*60)
	conflicts := conflict.Build(config.Default(), monthShifts)
	sol, err := Build(config.Default(), monthShifts, conflicts, 7, nil)
	require.NoError(t, err)

	assigned := sol.AssignedShiftIDs()
	for _, s := range monthShifts {
		assert.Contains(t, assigned, s.ID)
	}
}
