// Package helpers provides fluent builders for constructing domain
// fixtures in tests.
package helpers

import (
	"time"

	"github.com/google/uuid"

	"github.com/arvergara/hualpen-roster/internal/roster"
)

// ShiftBuilder builds roster.Shift values with a fluent interface.
type ShiftBuilder struct {
	id          uuid.UUID
	serviceID   string
	shiftNumber int
	date        time.Time
	startMinute int
	durationMin int
	serviceType string
}

// NewShiftBuilder creates a ShiftBuilder with sensible defaults: an 8-hour
// shift starting at 06:00 on 2026-03-01 for service "S1".
func NewShiftBuilder() *ShiftBuilder {
	return &ShiftBuilder{
		id:          uuid.New(),
		serviceID:   "S1",
		shiftNumber: 1,
		date:        time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		startMinute: 6 * 60,
		durationMin: 8 * 60,
		serviceType: "standard",
	}
}

func (b *ShiftBuilder) WithID(id uuid.UUID) *ShiftBuilder {
	b.id = id
	return b
}

func (b *ShiftBuilder) WithServiceID(serviceID string) *ShiftBuilder {
	b.serviceID = serviceID
	return b
}

func (b *ShiftBuilder) WithShiftNumber(n int) *ShiftBuilder {
	b.shiftNumber = n
	return b
}

func (b *ShiftBuilder) WithDate(date time.Time) *ShiftBuilder {
	b.date = date
	return b
}

func (b *ShiftBuilder) WithStartMinute(m int) *ShiftBuilder {
	b.startMinute = m
	return b
}

func (b *ShiftBuilder) WithDurationMin(m int) *ShiftBuilder {
	b.durationMin = m
	return b
}

func (b *ShiftBuilder) WithServiceType(t string) *ShiftBuilder {
	b.serviceType = t
	return b
}

// Build returns the constructed Shift.
func (b *ShiftBuilder) Build() roster.Shift {
	return roster.Shift{
		ID:          b.id,
		ServiceID:   b.serviceID,
		ShiftNumber: b.shiftNumber,
		Date:        b.date,
		StartMinute: b.startMinute,
		DurationMin: b.durationMin,
		ServiceType: b.serviceType,
	}
}

// DailyShiftsForMonth builds one shift per day in [year, month], all with
// the same service/start/duration, useful for the "small homogeneous month"
// style fixtures.
func DailyShiftsForMonth(year int, month time.Month, serviceID string, shiftNumber, startMinute, durationMin int) []roster.Shift {
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	out := make([]roster.Shift, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		out = append(out, NewShiftBuilder().
			WithServiceID(serviceID).
			WithShiftNumber(shiftNumber).
			WithDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC)).
			WithStartMinute(startMinute).
			WithDurationMin(durationMin).
			Build())
	}
	return out
}
