// Package api exposes the core over HTTP via echo. Every handler returns an
// APIResponse envelope; the core itself never touches the network or the
// filesystem, so this package is the only place request/response framing
// happens.
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/arvergara/hualpen-roster/internal/conflict"
	"github.com/arvergara/hualpen-roster/internal/config"
	"github.com/arvergara/hualpen-roster/internal/expand"
	"github.com/arvergara/hualpen-roster/internal/greedy"
	"github.com/arvergara/hualpen-roster/internal/job"
	"github.com/arvergara/hualpen-roster/internal/logging"
	"github.com/arvergara/hualpen-roster/internal/replicate"
	"github.com/arvergara/hualpen-roster/internal/repository/memory"
	"github.com/arvergara/hualpen-roster/internal/roster"
)

// Server wires the core's components into an echo.Echo instance.
type Server struct {
	Echo *echo.Echo

	cfg       config.Config
	runs      *memory.RunRepository
	scheduler *job.Scheduler
}

// NewServer builds a Server. cfg is the default engine configuration used
// when a request omits overrides.
func NewServer(cfg config.Config, runs *memory.RunRepository, scheduler *job.Scheduler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	s := &Server{Echo: e, cfg: cfg, runs: runs, scheduler: scheduler}

	e.POST("/api/expand", s.handleExpand)
	e.POST("/api/greedy", s.handleGreedy)
	e.POST("/api/refine", s.handleRefine)
	e.GET("/api/jobs/:id", s.handleJobStatus)
	e.POST("/api/replicate", s.handleReplicate)
	e.GET("/api/runs/:id", s.handleGetRun)

	return s
}

var log = logging.New("api")

// expandRequest is the JSON body for POST /api/expand.
type expandRequest struct {
	Year     int                    `json:"year"`
	Month    int                    `json:"month"`
	Services []expand.ServiceRecord `json:"services"`
}

func (s *Server) handleExpand(c echo.Context) error {
	var req expandRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fail(err))
	}

	shifts, v, err := expand.Expand(s.cfg, req.Year, time.Month(req.Month), req.Services)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, fail(err))
	}
	return c.JSON(http.StatusOK, ok(shifts, v))
}

// greedyRequest is the JSON body for POST /api/greedy.
type greedyRequest struct {
	Shifts []roster.Shift `json:"shifts"`
	CycleN int            `json:"cycle_n"`
}

func (s *Server) handleGreedy(c echo.Context) error {
	var req greedyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fail(err))
	}
	cycleN := req.CycleN
	if cycleN == 0 {
		cycleN = s.cfg.CycleN
	}

	conflicts := conflict.Build(s.cfg, req.Shifts)
	sol, err := greedy.Build(s.cfg, req.Shifts, conflicts, cycleN, nil)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, fail(err))
	}

	run := roster.NewScheduleRun(0, 0, sol, nil)
	if err := s.runs.Create(c.Request().Context(), run); err != nil {
		return c.JSON(http.StatusInternalServerError, fail(err))
	}

	return c.JSON(http.StatusOK, ok(map[string]interface{}{
		"run_id":   run.ID,
		"solution": NewSolutionView(sol),
	}, nil))
}

// refineRequest is the JSON body for POST /api/refine.
type refineRequest struct {
	RunID roster.RunID `json:"run_id"`
}

func (s *Server) handleRefine(c echo.Context) error {
	var req refineRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fail(err))
	}

	info, err := s.scheduler.EnqueueRefine(c.Request().Context(), req.RunID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, fail(err))
	}

	return c.JSON(http.StatusAccepted, ok(map[string]string{"job_id": info.ID}, nil))
}

func (s *Server) handleJobStatus(c echo.Context) error {
	// Job status introspection goes through asynq's inspector, which needs
	// the same redis connection the scheduler's client holds; wiring that
	// inspector is the caller's responsibility via cmd/roster, which has the
	// connection string.
	return c.JSON(http.StatusNotImplemented, fail(echo.NewHTTPError(http.StatusNotImplemented, "job status requires an asynq.Inspector, wire one in cmd/roster")))
}

// replicateRequest is the JSON body for POST /api/replicate.
type replicateRequest struct {
	SourceRunID  roster.RunID   `json:"source_run_id"`
	SourceAnchor time.Time      `json:"source_anchor"`
	TargetShifts []roster.Shift `json:"target_shifts"`
	TargetAnchor time.Time      `json:"target_anchor"`
}

func (s *Server) handleReplicate(c echo.Context) error {
	var req replicateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fail(err))
	}

	sourceRun, err := s.runs.GetByID(c.Request().Context(), req.SourceRunID)
	if err != nil {
		return c.JSON(http.StatusNotFound, fail(err))
	}

	sol, v, err := replicate.Replicate(s.cfg, sourceRun.Solution, req.SourceAnchor, req.TargetShifts, req.TargetAnchor)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, fail(err))
	}

	run := roster.NewScheduleRun(req.TargetAnchor.Year(), req.TargetAnchor.Month(), sol, v)
	if err := s.runs.Create(c.Request().Context(), run); err != nil {
		return c.JSON(http.StatusInternalServerError, fail(err))
	}

	return c.JSON(http.StatusOK, ok(map[string]interface{}{
		"run_id":   run.ID,
		"solution": NewSolutionView(sol),
	}, v))
}

func (s *Server) handleGetRun(c echo.Context) error {
	id, err := parseUUID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, fail(err))
	}

	run, err := s.runs.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, fail(err))
	}

	return c.JSON(http.StatusOK, ok(map[string]interface{}{
		"run_id":   run.ID,
		"year":     run.Year,
		"month":    run.Month,
		"solution": NewSolutionView(run.Solution),
	}, run.Validation))
}
