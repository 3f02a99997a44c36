package roster

import (
	"time"

	"github.com/google/uuid"

	"github.com/arvergara/hualpen-roster/internal/validation"
)

// ScheduleRun wraps a Solution with the bookkeeping the repository, job, and
// API adapters need to persist and fetch it: an id, the month it covers,
// when it was produced, and the validation result from whichever operation
// produced it (expand, greedy, refine, or replicate).
type ScheduleRun struct {
	ID         RunID
	Year       int
	Month      time.Month
	CreatedAt  time.Time
	Solution   *Solution
	Validation *validation.Result
}

// NewScheduleRun wraps sol with a fresh id and timestamp.
func NewScheduleRun(year int, month time.Month, sol *Solution, v *validation.Result) *ScheduleRun {
	if v == nil {
		v = validation.NewResult()
	}
	return &ScheduleRun{
		ID:         uuid.New(),
		Year:       year,
		Month:      month,
		CreatedAt:  Now(),
		Solution:   sol,
		Validation: v,
	}
}
