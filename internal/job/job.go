// Package job adapts the LNS engine to asynq for the one operation worth
// running asynchronously: refine. Expand, greedy, and replicate are cheap
// enough to run synchronously in the HTTP handler.
package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/arvergara/hualpen-roster/internal/conflict"
	"github.com/arvergara/hualpen-roster/internal/config"
	"github.com/arvergara/hualpen-roster/internal/logging"
	"github.com/arvergara/hualpen-roster/internal/lns"
	"github.com/arvergara/hualpen-roster/internal/repository/memory"
	"github.com/arvergara/hualpen-roster/internal/roster"
)

// TaskTypeRefine is the single asynq task type this package handles.
const TaskTypeRefine = "roster:refine"

// RefinePayload is the task payload for a refine job: only the id of the run
// to refine. The solution, its shifts, and the conflict set are recovered
// from the repository when the job runs, not embedded in the payload.
type RefinePayload struct {
	RunID roster.RunID `json:"run_id"`
}

// Scheduler enqueues refine jobs.
type Scheduler struct {
	client *asynq.Client
	logger *zap.Logger
}

// NewScheduler wraps an asynq.Client.
func NewScheduler(client *asynq.Client) *Scheduler {
	return &Scheduler{client: client, logger: logging.New("job-scheduler")}
}

// EnqueueRefine submits a refine job for runID.
func (s *Scheduler) EnqueueRefine(ctx context.Context, runID roster.RunID) (*asynq.TaskInfo, error) {
	payload, err := json.Marshal(RefinePayload{RunID: runID})
	if err != nil {
		return nil, fmt.Errorf("job: marshal refine payload: %w", err)
	}
	task := asynq.NewTask(TaskTypeRefine, payload)
	info, err := s.client.EnqueueContext(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("job: enqueue refine: %w", err)
	}
	s.logger.Info("enqueued refine job", zap.String("run_id", runID.String()), zap.String("task_id", info.ID))
	return info, nil
}

// Handlers runs refine jobs pulled off the asynq queue.
type Handlers struct {
	repo   *memory.RunRepository
	cfg    config.Config
	logger *zap.Logger
}

// NewHandlers wires a Handlers against repo. The shift list for a refine job
// is never passed in separately — it is recovered from the run's own
// solution (Solution.Shifts), so a refine always runs against exactly the
// shifts the run was built from, never a worker-wide list that might belong
// to a different month.
func NewHandlers(repo *memory.RunRepository, cfg config.Config) *Handlers {
	return &Handlers{repo: repo, cfg: cfg, logger: logging.New("job-handlers")}
}

// HandleRefine implements asynq.Handler.
func (h *Handlers) HandleRefine(ctx context.Context, t *asynq.Task) error {
	var payload RefinePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("job: unmarshal refine payload: %w", err)
	}

	run, err := h.repo.GetByID(ctx, payload.RunID)
	if err != nil {
		return fmt.Errorf("job: load run %s: %w", payload.RunID, err)
	}

	shifts := run.Solution.Shifts()
	conflicts := conflict.Build(h.cfg, shifts)

	budget := time.Duration(h.cfg.TimeBudgetSeconds) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	engine := lns.NewEngine(h.cfg, nil)
	refined, stats, err := engine.Run(runCtx, run.Solution, shifts, conflicts)
	if err != nil {
		return fmt.Errorf("job: refine run %s: %w", payload.RunID, err)
	}

	refinedRun := roster.NewScheduleRun(run.Year, run.Month, refined, run.Validation.Clone())
	if stats.Cancelled {
		refinedRun.Validation.AddInfo("REFINE_CANCELLED", "refine stopped at time budget or cancellation")
	}
	if err := h.repo.Create(ctx, refinedRun); err != nil {
		return fmt.Errorf("job: persist refined run: %w", err)
	}

	h.logger.Info("refine job complete",
		zap.String("source_run_id", payload.RunID.String()),
		zap.String("refined_run_id", refinedRun.ID.String()),
		zap.Int("iterations", stats.Iterations))
	return nil
}
