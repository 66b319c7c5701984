// Package bnb solves models with integral variables by LP-based branch and
// bound.
//
// Each node solves the continuous relaxation of the model under tightened
// variable bounds. An integral relaxation optimum becomes a candidate
// incumbent; a fractional one branches on the most fractional integral
// variable (value closest to one half, lowest index on ties) into a floor
// child and a ceiling child. Nodes whose relaxation bound cannot beat the
// incumbent are pruned, as are infeasible ones. Children are explored
// depth-first, floor side first; when spare workers are available the
// ceiling side runs concurrently.
package bnb

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/chriso345/cnvx/model"
	"github.com/chriso345/cnvx/solver"
	"github.com/chriso345/cnvx/solver/simplex"
)

// BranchAndBound implements solver.Solver.
type BranchAndBound struct{}

// Solve runs branch and bound on the model. Models without integral
// variables degenerate to a single relaxation solve.
func (BranchAndBound) Solve(ctx context.Context, m *model.Model, opts ...solver.Option) (*solver.Solution, error) {
	cfg, err := solver.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return SolveWithConfig(ctx, m, cfg)
}

// Solve runs branch and bound with the given options.
func Solve(ctx context.Context, m *model.Model, opts ...solver.Option) (*solver.Solution, error) {
	return BranchAndBound{}.Solve(ctx, m, opts...)
}

// SolveWithConfig runs branch and bound with an already-built Config.
func SolveWithConfig(ctx context.Context, m *model.Model, cfg solver.Config) (*solver.Solution, error) {
	obj, ok := m.Objective()
	if !ok {
		return nil, solver.ErrNoObjective
	}

	e := &engine{
		cfg:      cfg,
		relaxCfg: cfg,
		log:      cfg.Logger.With().Str("engine", "bnb").Logger(),
		model:    m,
		maximize: obj.Sense() == model.SenseMaximize,
		integral: bitset.New(uint(m.NumVariables())),
	}
	for j, v := range m.Variables() {
		if v.Kind().IsIntegral() {
			e.integral.Set(uint(j))
		}
	}

	// One wall-clock budget covers the whole tree; per-node relaxations
	// observe it through the context instead of restarting their own clock.
	e.relaxCfg.TimeLimit = 0
	if dl, ok := cfg.Deadline(time.Now()); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, dl)
		defer cancel()
	}

	lower := make([]float64, m.NumVariables())
	upper := make([]float64, m.NumVariables())
	for j, v := range m.Variables() {
		lower[j], upper[j] = v.Bounds()
	}

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(cfg.NbTasks)
	e.grp = grp
	grp.Go(func() error {
		return e.node(gctx, lower, upper)
	})
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return e.finish()
}

// engine is the shared state of one branch-and-bound run. best, nodes and
// the limit flags are guarded by mu; everything else is read-only after
// SolveWithConfig builds it.
type engine struct {
	cfg      solver.Config
	relaxCfg solver.Config
	log      zerolog.Logger
	model    *model.Model
	maximize bool
	integral *bitset.BitSet

	grp *errgroup.Group

	mu          sync.Mutex
	best        *solver.Solution
	nodes       int
	nodeLimited bool
	timeLimited bool
}

func (e *engine) node(ctx context.Context, lower, upper []float64) error {
	// per-node LPs are often just a handful of pivots, so cancellation is
	// observed here, once per node, not only inside the simplex loop.
	if ctx.Err() != nil {
		e.markTimeLimited()
		return nil
	}
	if !e.enterNode() {
		return nil
	}

	rel, err := simplex.SolveWithConfig(ctx, e.model, e.relaxCfg, lower, upper)
	switch {
	case errors.Is(err, solver.ErrInfeasible):
		return nil
	case errors.Is(err, solver.ErrTimeLimit):
		e.markTimeLimited()
		return nil
	case err != nil:
		return err
	}

	if e.dominated(rel.Objective()) {
		return nil
	}

	j, v, fractional := e.mostFractional(rel)
	if !fractional {
		e.offer(rel)
		return nil
	}

	ceilLower := append([]float64(nil), lower...)
	ceilLower[j] = math.Ceil(v)
	floorUpper := append([]float64(nil), upper...)
	floorUpper[j] = math.Floor(v)

	// Hand the ceiling child to a spare worker when one exists; dive into
	// the floor child on this goroutine either way.
	if !e.grp.TryGo(func() error { return e.node(ctx, ceilLower, upper) }) {
		if err := e.node(ctx, ceilLower, upper); err != nil {
			return err
		}
	}
	return e.node(ctx, lower, floorUpper)
}

// enterNode charges the node against the budget. Once the limit flag is
// set every pending node returns without solving, which drains the tree.
func (e *engine) enterNode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.nodeLimited || e.timeLimited {
		return false
	}
	if e.cfg.NodeLimit > 0 && e.nodes >= e.cfg.NodeLimit {
		e.nodeLimited = true
		e.log.Debug().Int("nodes", e.nodes).Msg("node limit reached")
		return false
	}
	e.nodes++
	return true
}

func (e *engine) markTimeLimited() {
	e.mu.Lock()
	e.timeLimited = true
	e.mu.Unlock()
}

// dominated reports whether the relaxation bound cannot improve on the
// incumbent.
func (e *engine) dominated(relaxObj float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.best == nil {
		return false
	}
	if e.maximize {
		return relaxObj <= e.best.Objective()+e.cfg.Tolerance
	}
	return relaxObj >= e.best.Objective()-e.cfg.Tolerance
}

// mostFractional picks the branching variable: among integral variables
// whose relaxation value is not integer within tolerance, the one whose
// fractional part lies closest to one half, lowest index on ties.
func (e *engine) mostFractional(rel *solver.Solution) (j int, v float64, fractional bool) {
	tol := e.cfg.Tolerance
	bestScore := math.Inf(1)
	j = -1
	for k, ok := e.integral.NextSet(0); ok; k, ok = e.integral.NextSet(k + 1) {
		val := rel.ValueAt(int(k))
		nearest := math.Round(val)
		if math.Abs(val-nearest) <= tol*(1+math.Abs(nearest)) {
			continue
		}
		score := math.Abs(val - math.Floor(val) - 0.5)
		if score < bestScore {
			j, v, bestScore = int(k), val, score
		}
	}
	return j, v, j >= 0
}

// offer installs the candidate as incumbent when it beats the current one.
func (e *engine) offer(candidate *solver.Solution) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.best != nil {
		if e.maximize && candidate.Objective() <= e.best.Objective() {
			return
		}
		if !e.maximize && candidate.Objective() >= e.best.Objective() {
			return
		}
	}
	e.best = candidate
	e.log.Debug().Float64("objective", candidate.Objective()).Int("nodes", e.nodes).Msg("new incumbent")
}

// finish translates the terminal engine state into a Solution or error.
// A fully explored tree proves the incumbent optimal (or the model
// infeasible when there is none); a truncated tree downgrades the
// incumbent to feasible, and without one the exhausted budget is the
// error.
func (e *engine) finish() (*solver.Solution, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	limited := e.nodeLimited || e.timeLimited
	switch {
	case e.best == nil && e.nodeLimited:
		return nil, errors.Wrapf(solver.ErrNodeLimit, "no incumbent after %d nodes", e.nodes)
	case e.best == nil && e.timeLimited:
		return nil, errors.Wrap(solver.ErrTimeLimit, "no incumbent found in time")
	case e.best == nil:
		return nil, errors.Wrap(solver.ErrInfeasible, "no integral point satisfies the constraints")
	case limited:
		return solver.NewSolution(e.best.Values(), e.best.Objective(), solver.StatusFeasible), nil
	default:
		e.log.Debug().Int("nodes", e.nodes).Float64("objective", e.best.Objective()).Msg("tree exhausted, incumbent optimal")
		return e.best, nil
	}
}
