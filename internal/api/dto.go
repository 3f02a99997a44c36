package api

import (
	"time"

	"github.com/arvergara/hualpen-roster/internal/roster"
)

// AssignmentView is the §6 "solution output contract" per-assignment shape.
type AssignmentView struct {
	DriverID    roster.DriverID `json:"driver_id"`
	ShiftID     roster.ShiftID  `json:"shift_id"`
	Date        time.Time       `json:"date"`
	StartMinute int             `json:"start_minute"`
	EndMinute   int             `json:"end_minute"`
	DurationMin int             `json:"duration_min"`
	CycleN      int             `json:"cycle_n"`
}

// DriverView is the §6 per-driver shape.
type DriverView struct {
	ID            roster.DriverID `json:"id"`
	CycleN        int             `json:"cycle_n"`
	WorkStartDate time.Time       `json:"work_start_date"`
	TotalMinutes  int             `json:"total_minutes"`
	TotalShifts   int             `json:"total_shifts"`
	DaysWorked    int             `json:"days_worked"`
}

// SolutionView flattens a roster.Solution for JSON responses.
type SolutionView struct {
	Drivers     []DriverView     `json:"drivers"`
	Assignments []AssignmentView `json:"assignments"`
	DriverCount int              `json:"driver_count"`
	TotalMinutes int             `json:"total_minutes"`
}

// NewSolutionView builds a SolutionView from sol.
func NewSolutionView(sol *roster.Solution) SolutionView {
	drivers := make([]DriverView, 0, len(sol.Drivers))
	for id, d := range sol.Drivers {
		drivers = append(drivers, DriverView{
			ID:            id,
			CycleN:        d.CycleN,
			WorkStartDate: d.WorkStartDate,
			TotalMinutes:  sol.DriverMinutes(id),
			TotalShifts:   len(d.ShiftIDs),
			DaysWorked:    sol.DriverDaysWorked(id),
		})
	}

	assignments := make([]AssignmentView, 0, len(sol.Assignments))
	for sid, a := range sol.Assignments {
		s, ok := sol.Shift(sid)
		if !ok {
			continue
		}
		d := sol.Drivers[a.DriverID]
		cycleN := 0
		if d != nil {
			cycleN = d.CycleN
		}
		assignments = append(assignments, AssignmentView{
			DriverID:    a.DriverID,
			ShiftID:     sid,
			Date:        s.Date,
			StartMinute: s.StartMinute,
			EndMinute:   s.EndMinute(),
			DurationMin: s.DurationMin,
			CycleN:      cycleN,
		})
	}

	driverCount, minutes := sol.Cost()
	return SolutionView{
		Drivers:      drivers,
		Assignments:  assignments,
		DriverCount:  driverCount,
		TotalMinutes: minutes,
	}
}
