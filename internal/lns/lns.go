// Package lns implements the LNS/ALNS refinement engine (C5): repeatedly
// destroy part of the current roster and repair it, accepting moves by
// simulated annealing and adapting operator weights by observed success.
package lns

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/arvergara/hualpen-roster/internal/conflict"
	"github.com/arvergara/hualpen-roster/internal/config"
	"github.com/arvergara/hualpen-roster/internal/logging"
	"github.com/arvergara/hualpen-roster/internal/metrics"
	"github.com/arvergara/hualpen-roster/internal/roster"
)

const (
	opDropDriver = iota
	opDestroyWindow
	opDestroyService
	numOperators
)

var opNames = [numOperators]string{"drop-driver", "destroy-window", "destroy-service"}

const (
	rewardImproved = 1.0
	rewardAccepted = 0.4
	rewardRejected = 0.0
	lambda         = 0.1
)

// OperatorStats tracks accept/reject/improve counts for one operator.
type OperatorStats struct {
	Attempts int
	Improved int
	Accepted int
	Rejected int
}

// Stats summarizes one Run call.
type Stats struct {
	Iterations        int
	BestDriverHistory []int
	Operators         [numOperators]OperatorStats
	Cancelled         bool
}

// Engine holds the mutable search state for a single LNS/ALNS run. It has
// no package-level state, so multiple Engines can run concurrently as
// independent multi-start instances.
type Engine struct {
	rnd         *rand.Rand
	weights     [numOperators]float64
	temperature float64
	cfg         config.Config
	logger      *zap.Logger
	metrics     *metrics.Recorder
}

// NewEngine builds an Engine seeded deterministically from cfg.Seed.
func NewEngine(cfg config.Config, rec *metrics.Recorder) *Engine {
	e := &Engine{
		rnd:         rand.New(rand.NewSource(cfg.Seed)),
		temperature: cfg.SAInitialTemperature,
		cfg:         cfg,
		logger:      logging.New("lns"),
		metrics:     rec,
	}
	for i := range e.weights {
		e.weights[i] = 1.0
	}
	return e
}

// Run refines a working clone of sol (sol itself is left unchanged) until
// ctx is done or the stagnation limit is reached, returning the best
// solution found.
func (e *Engine) Run(ctx context.Context, sol *roster.Solution, shifts []roster.Shift, conflicts conflict.Set) (*roster.Solution, Stats, error) {
	shiftByID := make(map[roster.ShiftID]roster.Shift, len(shifts))
	for _, s := range shifts {
		shiftByID[s.ID] = s
	}

	current := sol.Clone()
	best := current.Clone()
	bestDrivers, bestMinutes := best.Cost()

	var stats Stats
	stagnant := 0

	for {
		select {
		case <-ctx.Done():
			stats.Cancelled = true
			return finish(best, e, &stats), stats, nil
		default:
		}
		if stagnant >= e.cfg.StagnationLimit {
			return finish(best, e, &stats), stats, nil
		}

		op := e.selectOperator()
		candidate := current.Clone()
		ok := e.applyOperator(op, candidate, shiftByID, conflicts)

		stats.Iterations++
		stats.Operators[op].Attempts++
		if e.metrics != nil {
			e.metrics.LNSIterationsTotal.Inc()
		}

		if !ok {
			stats.Operators[op].Rejected++
			e.updateWeight(op, rewardRejected)
			if e.metrics != nil {
				e.metrics.LNSOperatorTotal.WithLabelValues(opNames[op], "rejected").Inc()
			}
			e.cool()
			stagnant++
			continue
		}

		candDrivers, candMinutes := candidate.Cost()
		curDrivers, curMinutes := current.Cost()
		delta := candDrivers - curDrivers
		if delta == 0 {
			delta2 := candMinutes - curMinutes
			if delta2 != 0 {
				delta = sign(delta2)
			}
		}

		accept := delta < 0 || e.rnd.Float64() < math.Exp(-float64(delta)/e.temperature)
		if !accept {
			stats.Operators[op].Rejected++
			e.updateWeight(op, rewardRejected)
			if e.metrics != nil {
				e.metrics.LNSOperatorTotal.WithLabelValues(opNames[op], "rejected").Inc()
			}
			e.cool()
			stagnant++
			continue
		}

		current = candidate
		improved := candDrivers < bestDrivers || (candDrivers == bestDrivers && candMinutes < bestMinutes)
		if improved {
			best = current.Clone()
			bestDrivers, bestMinutes = candDrivers, candMinutes
			stats.Operators[op].Improved++
			e.updateWeight(op, rewardImproved)
			stagnant = 0
			if e.metrics != nil {
				e.metrics.LNSOperatorTotal.WithLabelValues(opNames[op], "improved").Inc()
				e.metrics.DriversTotal.Set(float64(bestDrivers))
			}
		} else {
			stats.Operators[op].Accepted++
			e.updateWeight(op, rewardAccepted)
			stagnant++
			if e.metrics != nil {
				e.metrics.LNSOperatorTotal.WithLabelValues(opNames[op], "accepted").Inc()
			}
		}
		stats.BestDriverHistory = append(stats.BestDriverHistory, bestDrivers)

		if e.cfg.ConsolidationPeriod > 0 && stats.Iterations%e.cfg.ConsolidationPeriod == 0 {
			e.consolidate(current, shiftByID, conflicts)
		}

		e.cool()
	}
}

func finish(best *roster.Solution, e *Engine, stats *Stats) *roster.Solution {
	d, _ := best.Cost()
	e.logger.Info("lns run finished",
		zap.Int("iterations", stats.Iterations),
		zap.Int("best_drivers", d),
		zap.Bool("cancelled", stats.Cancelled))
	return best
}

func sign(v int) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}

func (e *Engine) cool() {
	e.temperature *= e.cfg.SACoolingRate
}

// selectOperator does a roulette-wheel pick over the current weights.
func (e *Engine) selectOperator() int {
	total := 0.0
	for _, w := range e.weights {
		total += w
	}
	r := e.rnd.Float64() * total
	acc := 0.0
	for i, w := range e.weights {
		acc += w
		if r <= acc {
			return i
		}
	}
	return numOperators - 1
}

func (e *Engine) updateWeight(op int, reward float64) {
	e.weights[op] = (1-lambda)*e.weights[op] + lambda*reward
}

// applyOperator mutates sol in place according to op, returning false if the
// operator could not complete (e.g. repair could not place every shift
// without growing the driver count for drop-driver). The caller discards
// sol on false.
func (e *Engine) applyOperator(op int, sol *roster.Solution, shiftByID map[roster.ShiftID]roster.Shift, conflicts conflict.Set) bool {
	switch op {
	case opDropDriver:
		return e.dropDriver(sol, shiftByID, conflicts)
	case opDestroyWindow:
		return e.destroyWindow(sol, shiftByID, conflicts)
	case opDestroyService:
		return e.destroyService(sol, shiftByID, conflicts)
	}
	return false
}

func (e *Engine) dropDriver(sol *roster.Solution, shiftByID map[roster.ShiftID]roster.Shift, conflicts conflict.Set) bool {
	order := sol.DriverOrder()
	if len(order) == 0 {
		return false
	}
	var weakest roster.DriverID
	weakestMinutes := -1
	for _, id := range order {
		m := sol.DriverMinutes(id)
		if weakestMinutes == -1 || m < weakestMinutes {
			weakestMinutes = m
			weakest = id
		}
	}

	driversBefore := len(sol.Drivers)
	d := sol.Drivers[weakest]
	displaced := make([]roster.Shift, 0, len(d.ShiftIDs))
	for _, sid := range d.ShiftIDs {
		displaced = append(displaced, shiftByID[sid])
	}
	sort.Slice(displaced, func(i, j int) bool { return displaced[i].DurationMin > displaced[j].DurationMin })

	for _, s := range displaced {
		sol.RemoveAssignment(s)
	}
	sol.DropDriver(weakest)

	for _, s := range displaced {
		if !repair(e.cfg, sol, s, conflicts, d.CycleN) {
			return false
		}
	}
	return len(sol.Drivers) < driversBefore
}

func (e *Engine) destroyWindow(sol *roster.Solution, shiftByID map[roster.ShiftID]roster.Shift, conflicts conflict.Set) bool {
	dates := assignedDates(sol, shiftByID)
	if len(dates) == 0 {
		return false
	}
	windowLen := 3 + e.rnd.Intn(2)
	start := dates[e.rnd.Intn(len(dates))]
	return e.destroyAndRepair(sol, shiftByID, conflicts, func(s roster.Shift) bool {
		days := daysDiff(start, s.Date)
		return days >= 0 && days < windowLen
	})
}

func (e *Engine) destroyService(sol *roster.Solution, shiftByID map[roster.ShiftID]roster.Shift, conflicts conflict.Set) bool {
	serviceIDs := make([]string, 0)
	seen := make(map[string]struct{})
	for _, s := range shiftByID {
		if _, ok := seen[s.ServiceID]; !ok {
			seen[s.ServiceID] = struct{}{}
			serviceIDs = append(serviceIDs, s.ServiceID)
		}
	}
	if len(serviceIDs) == 0 {
		return false
	}
	sort.Strings(serviceIDs)
	target := serviceIDs[e.rnd.Intn(len(serviceIDs))]
	return e.destroyAndRepair(sol, shiftByID, conflicts, func(s roster.Shift) bool {
		return s.ServiceID == target
	})
}

func (e *Engine) destroyAndRepair(sol *roster.Solution, shiftByID map[roster.ShiftID]roster.Shift, conflicts conflict.Set, match func(roster.Shift) bool) bool {
	var removed []roster.Shift
	for sid, a := range sol.Assignments {
		s := shiftByID[sid]
		if match(s) {
			removed = append(removed, s)
			_ = a
		}
	}
	if len(removed) == 0 {
		return false
	}
	for _, s := range removed {
		sol.RemoveAssignment(s)
	}
	sort.Slice(removed, func(i, j int) bool {
		if removed[i].DurationMin != removed[j].DurationMin {
			return removed[i].DurationMin > removed[j].DurationMin
		}
		ci, cj := len(conflicts.Conflicts(removed[i].ID)), len(conflicts.Conflicts(removed[j].ID))
		if ci != cj {
			return ci > cj
		}
		// Final tiebreaker so ordering never depends on Go's randomized map
		// iteration order: the run must be deterministic given a fixed seed.
		return removed[i].ID.String() < removed[j].ID.String()
	})
	for _, s := range removed {
		if !repair(e.cfg, sol, s, conflicts, e.cfg.CycleN) {
			return false
		}
	}
	return true
}

// repair places s onto the first existing driver that accepts it (scanned in
// creation order), else spawns a new driver anchored on s's date.
func repair(cfg config.Config, sol *roster.Solution, s roster.Shift, conflicts conflict.Set, cycleN int) bool {
	for _, driverID := range sol.DriverOrder() {
		d := sol.Drivers[driverID]
		if !d.IsWorkDay(s.Date) {
			continue
		}
		if conflicts.IntersectsAny(s.ID, sol.AssignedShiftSet(driverID)) {
			continue
		}
		if !fits(cfg, sol, driverID, s) {
			continue
		}
		sol.AddAssignment(driverID, s)
		return true
	}

	d := &roster.Driver{ID: roster.NewDriverID(), CycleN: cycleN, WorkStartDate: s.Date}
	sol.AddDriver(d)
	if !fits(cfg, sol, d.ID, s) {
		sol.DropDriver(d.ID)
		return false
	}
	sol.AddAssignment(d.ID, s)
	return true
}

func fits(cfg config.Config, sol *roster.Solution, driverID roster.DriverID, s roster.Shift) bool {
	bits := sol.Bits()
	if bits.Overlaps(driverID, s.Date, s.StartMinute, s.EndMinute()) {
		return false
	}
	if !bits.FitsDaily(driverID, s.Date, s.StartMinute, s.EndMinute(), cfg.MaxDailyMinutes) {
		return false
	}
	if !bits.SameDayRestOK(driverID, s.Date, s.StartMinute, s.EndMinute(), cfg.MinSameDayRestMinutes) {
		return false
	}
	if !bits.InterDayRestOK(driverID, s.Date, s.StartMinute, s.EndMinute(), cfg.MinInterDayRestMinutes) {
		return false
	}
	return true
}

// consolidate runs a greedy drop-driver pass on the current (not best)
// solution, keeping only strict improvements, per the periodic
// consolidation rule.
func (e *Engine) consolidate(sol *roster.Solution, shiftByID map[roster.ShiftID]roster.Shift, conflicts conflict.Set) {
	for {
		order := sol.DriverOrder()
		if len(order) == 0 {
			return
		}
		var weakest roster.DriverID
		weakestMinutes := -1
		for _, id := range order {
			m := sol.DriverMinutes(id)
			if weakestMinutes == -1 || m < weakestMinutes {
				weakestMinutes = m
				weakest = id
			}
		}

		snapshot := sol.Clone()
		driversBefore := len(sol.Drivers)
		d := sol.Drivers[weakest]
		displaced := make([]roster.Shift, 0, len(d.ShiftIDs))
		for _, sid := range d.ShiftIDs {
			displaced = append(displaced, shiftByID[sid])
		}
		sort.Slice(displaced, func(i, j int) bool { return displaced[i].DurationMin > displaced[j].DurationMin })
		for _, s := range displaced {
			sol.RemoveAssignment(s)
		}
		sol.DropDriver(weakest)

		ok := true
		for _, s := range displaced {
			if !repair(e.cfg, sol, s, conflicts, d.CycleN) {
				ok = false
				break
			}
		}
		if !ok || len(sol.Drivers) >= driversBefore {
			*sol = *snapshot
			return
		}
	}
}

func assignedDates(sol *roster.Solution, shiftByID map[roster.ShiftID]roster.Shift) []time.Time {
	seen := make(map[time.Time]struct{})
	var out []time.Time
	for sid := range sol.Assignments {
		d := shiftByID[sid].Date
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func daysDiff(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
