package replicate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvergara/hualpen-roster/internal/conflict"
	"github.com/arvergara/hualpen-roster/internal/config"
	"github.com/arvergara/hualpen-roster/internal/greedy"
	"github.com/arvergara/hualpen-roster/tests/helpers"
)

func TestReplicateReusesDriverIdentity(t *testing.T) {
	sourceAnchor := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sourceShifts := helpers.DailyShiftsForMonth(2026, time.March, "S1", 1, 6*60, 8*60)
	conflicts := conflict.Build(config.Default(), sourceShifts)
	source, err := greedy.Build(config.Default(), sourceShifts, conflicts, 7, nil)
	require.NoError(t, err)
	sourceDrivers, _ := source.Cost()

	targetAnchor := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	targetShifts := helpers.DailyShiftsForMonth(2026, time.April, "S1", 1, 6*60, 8*60)

	target, result, err := Replicate(config.Default(), source, sourceAnchor, targetShifts, targetAnchor)
	require.NoError(t, err)

	targetDrivers, _ := target.Cost()
	assert.Equal(t, sourceDrivers, targetDrivers, "annual replication must reuse the source month's driver count")
	assert.Equal(t, len(targetShifts), len(target.Assignments))
	assert.False(t, result.HasWarnings(), "matching month shapes should produce no replication gaps")

	for id := range source.Drivers {
		assert.Contains(t, target.Drivers, id)
	}
}

func TestReplicateReportsGapsForUnmatchedSlots(t *testing.T) {
	sourceAnchor := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sourceShifts := helpers.DailyShiftsForMonth(2026, time.March, "S1", 1, 6*60, 8*60)
	conflicts := conflict.Build(config.Default(), sourceShifts)
	source, err := greedy.Build(config.Default(), sourceShifts, conflicts, 7, nil)
	require.NoError(t, err)

	targetAnchor := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	// A service-id with no counterpart in the source month has no matching slot.
	targetShifts := helpers.DailyShiftsForMonth(2026, time.April, "S-UNKNOWN", 1, 6*60, 8*60)

	_, result, err := Replicate(config.Default(), source, sourceAnchor, targetShifts, targetAnchor)
	require.NoError(t, err)
	assert.True(t, result.HasWarnings())

	for _, msg := range result.Messages {
		assert.Equal(t, "REPLICATION_GAP", msg.Code)
	}
}
