// Package expand turns service templates or already-dated shift specs into
// a flat, date-bound shift list for one target month (C1). Mode detection
// guards against the double-expansion bug: a dated input re-walked by
// weekday frequency would multiply shift counts by roughly the number of
// weeks in the month.
package expand

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arvergara/hualpen-roster/internal/config"
	"github.com/arvergara/hualpen-roster/internal/logging"
	"github.com/arvergara/hualpen-roster/internal/roster"
	"github.com/arvergara/hualpen-roster/internal/validation"
)

var log = logging.New("expand")

// WeekdaySpec is one per-weekday shift specification within a template
// service record: shift-number, start time, duration, and which weekdays it
// runs on.
type WeekdaySpec struct {
	ShiftNumber int
	StartMinute int
	DurationMin int
	Weekdays    map[time.Weekday]bool
}

// DatedSpec is a single already-dated shift within a dated service record.
type DatedSpec struct {
	ShiftNumber int
	StartMinute int
	DurationMin int
	Date        time.Time
}

// ServiceRecord is one service's shift specifications, in either template or
// dated mode. Exactly one of TemplateShifts/DatedShifts should be populated;
// mixing within a single record is an expansion ambiguity.
type ServiceRecord struct {
	ServiceID      string
	ServiceType    string
	TemplateShifts []WeekdaySpec
	DatedShifts    []DatedSpec
}

// ErrExpansionAmbiguity indicates a set of service records mixes template
// and dated shift specifications, so the mode cannot be determined safely.
type ErrExpansionAmbiguity struct {
	ServiceID string
}

func (e *ErrExpansionAmbiguity) Error() string {
	return fmt.Sprintf("expand: service %s mixes template and dated shift specs", e.ServiceID)
}

// detectMode reports whether records are uniformly in template mode (true)
// or dated mode (false), or returns ErrExpansionAmbiguity if they mix.
func detectMode(records []ServiceRecord) (templateMode bool, err error) {
	seenTemplate, seenDated := false, false
	for _, r := range records {
		hasTemplate := len(r.TemplateShifts) > 0
		hasDated := len(r.DatedShifts) > 0
		if hasTemplate && hasDated {
			return false, &ErrExpansionAmbiguity{ServiceID: r.ServiceID}
		}
		if hasTemplate {
			seenTemplate = true
		}
		if hasDated {
			seenDated = true
		}
	}
	if seenTemplate && seenDated {
		return false, &ErrExpansionAmbiguity{ServiceID: "<mixed across records>"}
	}
	return seenTemplate, nil
}

// Expand produces the flat dated shift list for (year, month) from records,
// detecting template-vs-dated mode once for the whole batch and never
// re-expanding an already-dated input. cfg.MaxDailyMinutes bounds each
// emitted shift's duration during validation.
func Expand(cfg config.Config, year int, month time.Month, records []ServiceRecord) ([]roster.Shift, *validation.Result, error) {
	result := validation.NewResult()

	templateMode, err := detectMode(records)
	if err != nil {
		return nil, nil, err
	}

	var shifts []roster.Shift
	if templateMode {
		shifts = expandTemplate(year, month, records)
	} else {
		shifts = filterDated(year, month, records, result)
	}

	for i := range shifts {
		if verr := shifts[i].Validate(cfg.MaxDailyMinutes); verr != nil {
			return nil, nil, verr
		}
	}

	mode := "dated"
	if templateMode {
		mode = "template"
	}
	log.Debug("expanded shifts", zap.String("mode", mode), zap.Int("count", len(shifts)))

	return shifts, result, nil
}

func expandTemplate(year int, month time.Month, records []ServiceRecord) []roster.Shift {
	var out []roster.Shift
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	for _, r := range records {
		for day := 1; day <= daysInMonth; day++ {
			date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			wd := date.Weekday()
			for _, spec := range r.TemplateShifts {
				if !spec.Weekdays[wd] {
					continue
				}
				out = append(out, roster.Shift{
					ID:          uuid.New(),
					ServiceID:   r.ServiceID,
					ShiftNumber: spec.ShiftNumber,
					Date:        date,
					StartMinute: spec.StartMinute,
					DurationMin: spec.DurationMin,
					ServiceType: r.ServiceType,
				})
			}
		}
	}
	return out
}

// filterDated passes through only shifts whose date falls within the target
// month, defending against upstream leakage from adjacent months, and
// records a warning for each dropped shift.
func filterDated(year int, month time.Month, records []ServiceRecord, result *validation.Result) []roster.Shift {
	var out []roster.Shift
	for _, r := range records {
		for _, spec := range r.DatedShifts {
			if spec.Date.Year() != year || spec.Date.Month() != month {
				result.AddWarning(validation.CodeInvalidDateRange,
					fmt.Sprintf("shift for service %s on %s falls outside target month %04d-%02d, dropped",
						r.ServiceID, spec.Date.Format("2006-01-02"), year, int(month)))
				continue
			}
			out = append(out, roster.Shift{
				ID:          uuid.New(),
				ServiceID:   r.ServiceID,
				ShiftNumber: spec.ShiftNumber,
				Date:        time.Date(spec.Date.Year(), spec.Date.Month(), spec.Date.Day(), 0, 0, 0, 0, time.UTC),
				StartMinute: spec.StartMinute,
				DurationMin: spec.DurationMin,
				ServiceType: r.ServiceType,
			})
		}
	}
	return out
}
