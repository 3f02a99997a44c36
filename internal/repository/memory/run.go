// Package memory is a mutex-guarded, process-local implementation of the
// run repository used by the job and API adapters. It is not a cache: for
// this core, it is the only persistence backend, since the spec explicitly
// excludes database access.
package memory

import (
	"context"
	"sync"

	"github.com/arvergara/hualpen-roster/internal/repository"
	"github.com/arvergara/hualpen-roster/internal/roster"
)

// RunRepository stores ScheduleRun values in memory.
type RunRepository struct {
	mu      sync.RWMutex
	runs    map[roster.RunID]*roster.ScheduleRun
	byMonth map[int][]roster.RunID // keyed by year

	queryCount int
}

// NewRunRepository returns an empty repository.
func NewRunRepository() *RunRepository {
	return &RunRepository{
		runs:    make(map[roster.RunID]*roster.ScheduleRun),
		byMonth: make(map[int][]roster.RunID),
	}
}

// Create stores run, keyed by its own id.
func (r *RunRepository) Create(_ context.Context, run *roster.ScheduleRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run
	r.byMonth[run.Year] = append(r.byMonth[run.Year], run.ID)
	return nil
}

// GetByID returns the run for id, or a *repository.NotFoundError.
func (r *RunRepository) GetByID(_ context.Context, id roster.RunID) (*roster.ScheduleRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.queryCount++
	run, ok := r.runs[id]
	if !ok {
		return nil, &repository.NotFoundError{Kind: "ScheduleRun", ID: id.String()}
	}
	return run, nil
}

// ListByYear returns every run created for the given year, in creation order.
func (r *RunRepository) ListByYear(_ context.Context, year int) ([]*roster.ScheduleRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.queryCount++
	ids := r.byMonth[year]
	out := make([]*roster.ScheduleRun, 0, len(ids))
	for _, id := range ids {
		if run, ok := r.runs[id]; ok {
			out = append(out, run)
		}
	}
	return out, nil
}

// Count returns the total number of stored runs.
func (r *RunRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.runs), nil
}

// QueryCount reports how many read operations have been served, for test
// introspection.
func (r *RunRepository) QueryCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.queryCount
}
