// Package replicate expands one solved month to other months of the year
// by mapping each target shift to the source solution's driver for the same
// (day-in-cycle, service, shift-number) slot (C6).
package replicate

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arvergara/hualpen-roster/internal/config"
	"github.com/arvergara/hualpen-roster/internal/logging"
	"github.com/arvergara/hualpen-roster/internal/roster"
	"github.com/arvergara/hualpen-roster/internal/validation"
)

var log = logging.New("replicate")

type slotKey struct {
	dayInCycle  int
	serviceID   string
	shiftNumber int
}

// Replicate expands source (anchored at sourceAnchor, the source month's
// first day) onto targetShifts (anchored at targetAnchor), preserving
// driver identity across months — the returned solution reuses exactly
// source's driver ids. Target shifts with no matching source slot are
// reported in the returned validation.Result as CodeReplicationGap
// warnings and left unassigned; this is soft/advisory per the error
// taxonomy, not a failure of the whole run.
func Replicate(cfg config.Config, source *roster.Solution, sourceAnchor time.Time, targetShifts []roster.Shift, targetAnchor time.Time) (*roster.Solution, *validation.Result, error) {
	result := validation.NewResult()
	period := 2 * cfg.CycleN

	slots := make(map[slotKey]roster.DriverID, len(source.Assignments))
	for sid, a := range source.Assignments {
		s, ok := source.Shift(sid)
		if !ok {
			continue
		}
		dic := dayInCycle(sourceAnchor, s.Date, period)
		slots[slotKey{dic, s.ServiceID, s.ShiftNumber}] = a.DriverID
	}

	out := roster.NewSolution()
	driverTemplates := make(map[roster.DriverID]*roster.Driver, len(source.Drivers))
	for id, d := range source.Drivers {
		cp := *d
		cp.ShiftIDs = nil
		driverTemplates[id] = &cp
	}

	gaps := 0
	for _, s := range targetShifts {
		dic := dayInCycle(targetAnchor, s.Date, period)
		key := slotKey{dic, s.ServiceID, s.ShiftNumber}
		driverID, ok := slots[key]
		if !ok {
			gaps++
			result.AddWarning(validation.CodeReplicationGap,
				fmt.Sprintf("no source slot for service %s shift %d on %s (day-in-cycle %d)",
					s.ServiceID, s.ShiftNumber, s.Date.Format("2006-01-02"), dic))
			continue
		}
		if _, ok := out.Drivers[driverID]; !ok {
			d, ok := driverTemplates[driverID]
			if !ok {
				d = &roster.Driver{ID: driverID, CycleN: cfg.CycleN, WorkStartDate: targetAnchor}
			}
			out.AddDriver(d)
		}
		out.AddAssignment(driverID, s)
	}

	log.Debug("replication complete",
		zap.Int("target_shifts", len(targetShifts)),
		zap.Int("gaps", gaps),
		zap.Int("drivers", len(out.Drivers)))

	return out, result, nil
}

func dayInCycle(anchor, date time.Time, period int) int {
	days := int(dayOnly(date).Sub(dayOnly(anchor)).Hours() / 24)
	return ((days % period) + period) % period
}

func dayOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
