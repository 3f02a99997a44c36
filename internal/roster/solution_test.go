package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShift(date time.Time, start, duration int) Shift {
	return Shift{ID: NewDriverID(), Date: date, StartMinute: start, DurationMin: duration, ServiceID: "S1"}
}

func TestSolutionAddAndRemoveAssignment(t *testing.T) {
	sol := NewSolution()
	d := &Driver{ID: NewDriverID(), CycleN: 7, WorkStartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	sol.AddDriver(d)

	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s := newTestShift(date, 6*60, 8*60)

	sol.AddAssignment(d.ID, s)

	require.Contains(t, sol.Assignments, s.ID)
	assert.Equal(t, 8*60, sol.DriverMinutes(d.ID))
	assert.Equal(t, 1, sol.DriverDaysWorked(d.ID))
	assert.True(t, sol.Bits().Overlaps(d.ID, date, 6*60, 6*60+10))

	sol.RemoveAssignment(s)
	assert.NotContains(t, sol.Assignments, s.ID)
	assert.Equal(t, 0, sol.DriverMinutes(d.ID))
	assert.Equal(t, 0, sol.DriverDaysWorked(d.ID))
	assert.False(t, sol.Bits().Overlaps(d.ID, date, 6*60, 6*60+10))
}

func TestSolutionCloneIsIndependent(t *testing.T) {
	sol := NewSolution()
	d := &Driver{ID: NewDriverID(), CycleN: 7, WorkStartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	sol.AddDriver(d)
	s := newTestShift(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 6*60, 8*60)
	sol.AddAssignment(d.ID, s)

	clone := sol.Clone()
	clone.RemoveAssignment(s)

	assert.Contains(t, sol.Assignments, s.ID, "original solution must be unaffected by mutating the clone")
	assert.NotContains(t, clone.Assignments, s.ID)
	assert.Equal(t, 8*60, sol.DriverMinutes(d.ID))
	assert.Equal(t, 0, clone.DriverMinutes(d.ID))
}

func TestSolutionCost(t *testing.T) {
	sol := NewSolution()
	d1 := &Driver{ID: NewDriverID(), CycleN: 7, WorkStartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	d2 := &Driver{ID: NewDriverID(), CycleN: 7, WorkStartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	sol.AddDriver(d1)
	sol.AddDriver(d2)

	sol.AddAssignment(d1.ID, newTestShift(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 6*60, 8*60))
	sol.AddAssignment(d2.ID, newTestShift(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 6*60, 4*60))

	drivers, minutes := sol.Cost()
	assert.Equal(t, 2, drivers)
	assert.Equal(t, 12*60, minutes)
}

func TestSolutionDropDriver(t *testing.T) {
	sol := NewSolution()
	d := &Driver{ID: NewDriverID(), CycleN: 7, WorkStartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	sol.AddDriver(d)
	s := newTestShift(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 6*60, 8*60)
	sol.AddAssignment(d.ID, s)
	sol.RemoveAssignment(s)

	sol.DropDriver(d.ID)
	assert.NotContains(t, sol.Drivers, d.ID)
	assert.Empty(t, sol.DriverOrder())
}

func TestDriverIsWorkDayCycle(t *testing.T) {
	d := Driver{ID: NewDriverID(), CycleN: 7, WorkStartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}

	assert.True(t, d.IsWorkDay(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, d.IsWorkDay(time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)))
	assert.False(t, d.IsWorkDay(time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)))
	assert.False(t, d.IsWorkDay(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)))
	assert.True(t, d.IsWorkDay(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)))
}

func TestShiftValidate(t *testing.T) {
	valid := Shift{ID: NewDriverID(), Date: time.Now(), StartMinute: 60, DurationMin: 60}
	assert.NoError(t, valid.Validate(840))

	zeroDuration := valid
	zeroDuration.DurationMin = 0
	assert.Error(t, zeroDuration.Validate(840))

	badStart := valid
	badStart.StartMinute = 1440
	assert.Error(t, badStart.Validate(840))

	overCap := valid
	overCap.DurationMin = 900
	assert.Error(t, overCap.Validate(840))
}
