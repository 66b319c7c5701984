package simplex

import (
	"context"
	"math"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/chriso345/cnvx/debug"
	"github.com/chriso345/cnvx/model"
	"github.com/chriso345/cnvx/solver"
)

// blandWindow is the number of consecutive pivots without objective
// improvement after which the engine assumes degenerate cycling and
// switches to Bland's smallest-index rule until the objective moves again.
const blandWindow = 16

// engine holds the dense standard form and the running basis. It is owned
// by a single solve call; nothing here is shared.
type engine struct {
	cfg   solver.Config
	log   zerolog.Logger
	model *model.Model
	obj   model.Objective

	nrows   int // constraint rows
	nstruct int // structural (decision) columns
	ncols   int // structural + slack columns

	a     *mat.Dense // nrows x ncols, nil when nrows == 0
	binv  *mat.Dense // nrows x nrows basis inverse
	b     []float64
	lower []float64
	upper []float64
	cost  []float64 // phase-2 cost, internally minimized
	x     []float64 // current point over all columns

	maximize bool

	basis   []int          // column basic in each row
	inBasis *bitset.BitSet // column membership in the basis
	atUpper *bitset.BitSet // nonbasic columns resting at their upper bound

	iter        int
	deadline    time.Time
	hasDeadline bool
	bland       bool
	stall       int
}

func (e *engine) solve(ctx context.Context) (*solver.Solution, error) {
	e.deadline, e.hasDeadline = e.cfg.Deadline(time.Now())

	if e.nrows == 0 {
		return e.solveBoundsOnly()
	}

	e.initBasis()

	if err := e.phase1(ctx); err != nil {
		return nil, err
	}
	if err := e.phase2(ctx); err != nil {
		return nil, err
	}

	e.log.Debug().Int("iterations", e.iter).Msg("optimal basis reached")
	return e.assemble(solver.StatusOptimal), nil
}

// solveBoundsOnly handles the degenerate standard form with no constraint
// rows: every variable independently moves to the bound favored by its
// cost, and a favorable infinite bound makes the problem unbounded.
func (e *engine) solveBoundsOnly() (*solver.Solution, error) {
	tol := e.cfg.Tolerance
	for j := 0; j < e.nstruct; j++ {
		switch {
		case e.cost[j] < -tol:
			if math.IsInf(e.upper[j], 1) {
				return nil, errors.Wrapf(solver.ErrUnbounded, "variable %v has no upper bound", e.model.Variable(j))
			}
			e.x[j] = e.upper[j]
		case e.cost[j] > tol:
			if math.IsInf(e.lower[j], -1) {
				return nil, errors.Wrapf(solver.ErrUnbounded, "variable %v has no lower bound", e.model.Variable(j))
			}
			e.x[j] = e.lower[j]
		default:
			switch {
			case !math.IsInf(e.lower[j], -1):
				e.x[j] = e.lower[j]
			case !math.IsInf(e.upper[j], 1):
				e.x[j] = e.upper[j]
			default:
				e.x[j] = 0
			}
		}
	}
	return e.assemble(solver.StatusOptimal), nil
}

// initBasis places every nonbasic structural at a finite bound (or 0 when
// free), takes the slack columns as the initial basis and computes their
// values from the row equations. binv starts as the identity.
func (e *engine) initBasis() {
	e.basis = make([]int, e.nrows)
	e.inBasis = bitset.New(uint(e.ncols))
	e.atUpper = bitset.New(uint(e.ncols))

	for j := 0; j < e.nstruct; j++ {
		switch {
		case !math.IsInf(e.lower[j], -1):
			e.x[j] = e.lower[j]
		case !math.IsInf(e.upper[j], 1):
			e.x[j] = e.upper[j]
			e.atUpper.Set(uint(j))
		default:
			e.x[j] = 0
		}
	}
	for i := 0; i < e.nrows; i++ {
		s := e.nstruct + i
		e.basis[i] = s
		e.inBasis.Set(uint(s))
		e.binv.Set(i, i, 1)

		sum := 0.0
		for j := 0; j < e.nstruct; j++ {
			sum += e.a.At(i, j) * e.x[j]
		}
		e.x[s] = e.b[i] - sum
	}
}

// phase1 drives the sum of bound violations of the basic variables to zero.
// The composite cost vector (±1 on violating basics, 0 elsewhere) is
// recomputed every pivot; optimality with violations left over proves
// infeasibility.
func (e *engine) phase1(ctx context.Context) error {
	tol := e.cfg.Tolerance
	prev := math.Inf(1)
	e.bland, e.stall = false, 0

	for {
		c1, infeas := e.phase1Cost()
		if infeas <= tol {
			e.log.Debug().Int("iterations", e.iter).Msg("phase 1 feasible")
			return nil
		}
		e.trackProgress(prev - infeas)
		prev = infeas

		if err := e.checkBudget(ctx); err != nil {
			return err
		}

		q, dir, ok := e.price(c1)
		if !ok {
			return errors.Wrapf(solver.ErrInfeasible, "phase 1 optimum keeps %g infeasibility", infeas)
		}
		alpha := e.ftran(q)
		t, leaveRow, leaveAtUpper := e.ratio(q, dir, alpha, true)
		if math.IsInf(t, 1) {
			// the infeasibility sum is bounded below by zero; an unblocked
			// improving ray can only come from numerical breakdown.
			if debug.Debug {
				e.log.Error().Str("stack", debug.Stack()).Int("column", q).Msg("phase 1 ratio test found no blocking bound")
			}
			return errors.Wrap(solver.ErrIterationLimit, "phase 1 ratio test found no blocking bound")
		}
		e.pivot(q, dir, t, alpha, leaveRow, leaveAtUpper)
	}
}

// phase2 optimizes the model objective from the feasible basis.
func (e *engine) phase2(ctx context.Context) error {
	prev := math.Inf(1)
	e.bland, e.stall = false, 0

	for {
		if err := e.checkBudget(ctx); err != nil {
			return err
		}

		q, dir, ok := e.price(e.cost)
		if !ok {
			return nil
		}
		alpha := e.ftran(q)
		t, leaveRow, leaveAtUpper := e.ratio(q, dir, alpha, false)
		if math.IsInf(t, 1) {
			return errors.Wrapf(solver.ErrUnbounded, "column %d improves without a blocking bound", q)
		}
		e.pivot(q, dir, t, alpha, leaveRow, leaveAtUpper)

		cur := floats.Dot(e.cost, e.x)
		e.trackProgress(prev - cur)
		prev = cur
	}
}

// trackProgress flips the pivot rule to Bland's once the objective has
// stagnated for blandWindow consecutive pivots, and back once it moves.
func (e *engine) trackProgress(improvement float64) {
	if improvement > e.cfg.Tolerance {
		e.stall, e.bland = 0, false
		return
	}
	e.stall++
	if e.stall >= blandWindow && !e.bland {
		e.bland = true
		e.log.Debug().Int("iteration", e.iter).Msg("degenerate stall, switching to Bland's rule")
	}
}

// phase1Cost builds the composite phase-1 cost vector and returns it with
// the current infeasibility sum.
func (e *engine) phase1Cost() ([]float64, float64) {
	tol := e.cfg.Tolerance
	c1 := make([]float64, e.ncols)
	infeas := 0.0
	for i := 0; i < e.nrows; i++ {
		k := e.basis[i]
		switch {
		case e.x[k] > e.upper[k]+tol:
			c1[k] = 1
			infeas += e.x[k] - e.upper[k]
		case e.x[k] < e.lower[k]-tol:
			c1[k] = -1
			infeas += e.lower[k] - e.x[k]
		}
	}
	return c1, infeas
}

func (e *engine) checkBudget(ctx context.Context) error {
	e.iter++
	if e.iter > e.cfg.MaxIterations {
		return errors.Wrapf(solver.ErrIterationLimit, "after %d pivots", e.cfg.MaxIterations)
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(solver.ErrTimeLimit, err.Error())
	}
	if e.hasDeadline && time.Now().After(e.deadline) {
		return errors.Wrapf(solver.ErrTimeLimit, "after %d pivots", e.iter)
	}
	return nil
}

// price computes reduced costs for the nonbasic columns and selects the
// entering column: most negative improvement rate with the lowest index on
// ties, or the first eligible index under Bland's rule. dir is +1 when the
// entering variable increases off its lower bound (or 0 for free columns),
// -1 when it decreases off its upper bound.
func (e *engine) price(cost []float64) (q int, dir float64, ok bool) {
	tol := e.cfg.Tolerance
	y := e.dualValues(cost)

	bestRate := 0.0
	q = -1
	for j := 0; j < e.ncols; j++ {
		if e.inBasis.Test(uint(j)) {
			continue
		}
		lo, hi := e.lower[j], e.upper[j]
		if lo == hi {
			continue // fixed column, cannot move
		}
		d := cost[j]
		for i := 0; i < e.nrows; i++ {
			d -= y[i] * e.a.At(i, j)
		}

		free := math.IsInf(lo, -1) && math.IsInf(hi, 1)
		var cand float64
		switch {
		case d < -tol && (free || !e.atUpper.Test(uint(j))):
			cand = 1
		case d > tol && (free || e.atUpper.Test(uint(j))):
			cand = -1
		default:
			continue
		}
		if e.bland {
			return j, cand, true
		}
		if rate := d * cand; q < 0 || rate < bestRate {
			q, dir, bestRate = j, cand, rate
		}
	}
	if q < 0 {
		return 0, 0, false
	}
	return q, dir, true
}

// dualValues computes y = binv^T c_B.
func (e *engine) dualValues(cost []float64) []float64 {
	cb := make([]float64, e.nrows)
	for i := 0; i < e.nrows; i++ {
		cb[i] = cost[e.basis[i]]
	}
	y := mat.NewVecDense(e.nrows, nil)
	y.MulVec(e.binv.T(), mat.NewVecDense(e.nrows, cb))
	return y.RawVector().Data
}

// ftran computes alpha = binv * A_q, the direction the basic variables move
// against the entering column.
func (e *engine) ftran(q int) []float64 {
	alpha := mat.NewVecDense(e.nrows, nil)
	alpha.MulVec(e.binv, e.a.ColView(q))
	return alpha.RawVector().Data
}

// ratio finds how far the entering column can travel. Every basic variable
// may block at either of its own bounds; in phase 1 a basic currently
// violating a bound blocks at the violated bound when it moves toward
// feasibility and never blocks while moving away. The entering variable's
// own opposite bound is a candidate too (a bound flip, leaveRow == -1).
// Ties prefer the smallest leaving variable index, keeping pivoting
// deterministic and Bland-compatible.
func (e *engine) ratio(q int, dir float64, alpha []float64, phase1 bool) (t float64, leaveRow int, leaveAtUpper bool) {
	tol := e.cfg.Tolerance
	t = math.Inf(1)
	leaveRow = -1

	if !math.IsInf(e.lower[q], -1) && !math.IsInf(e.upper[q], 1) {
		t = e.upper[q] - e.lower[q]
	}

	for i := 0; i < e.nrows; i++ {
		ai := alpha[i]
		if math.Abs(ai) <= tol {
			continue
		}
		delta := -dir * ai // change of the basic value per unit step
		k := e.basis[i]
		lo, hi := e.lower[k], e.upper[k]

		var target float64
		var hitsUpper bool
		switch {
		case phase1 && e.x[k] < lo-tol:
			if delta <= 0 {
				continue // moving further below; no breakpoint
			}
			target, hitsUpper = lo, false
		case phase1 && e.x[k] > hi+tol:
			if delta >= 0 {
				continue
			}
			target, hitsUpper = hi, true
		case delta > 0:
			if math.IsInf(hi, 1) {
				continue
			}
			target, hitsUpper = hi, true
		default:
			if math.IsInf(lo, -1) {
				continue
			}
			target, hitsUpper = lo, false
		}

		ti := (target - e.x[k]) / delta
		if ti < 0 {
			ti = 0 // degenerate step
		}
		switch {
		case ti < t-tol:
			t, leaveRow, leaveAtUpper = ti, i, hitsUpper
		case ti <= t+tol && leaveRow >= 0 && k < e.basis[leaveRow]:
			t, leaveRow, leaveAtUpper = ti, i, hitsUpper
		}
	}
	return t, leaveRow, leaveAtUpper
}

// pivot applies a step of length t along the entering direction. With
// leaveRow < 0 the entering variable flips to its opposite bound and the
// basis is unchanged; otherwise the blocked basic variable leaves exactly
// at its blocking bound and binv is updated in place.
func (e *engine) pivot(q int, dir, t float64, alpha []float64, leaveRow int, leaveAtUpper bool) {
	e.x[q] += dir * t
	for i := 0; i < e.nrows; i++ {
		e.x[e.basis[i]] -= dir * alpha[i] * t
	}

	if leaveRow < 0 {
		if dir > 0 {
			e.x[q] = e.upper[q]
			e.atUpper.Set(uint(q))
		} else {
			e.x[q] = e.lower[q]
			e.atUpper.Clear(uint(q))
		}
		return
	}

	k := e.basis[leaveRow]
	if leaveAtUpper {
		e.x[k] = e.upper[k]
	} else {
		e.x[k] = e.lower[k]
	}
	e.atUpper.SetTo(uint(k), leaveAtUpper)
	e.atUpper.Clear(uint(q))
	e.inBasis.Clear(uint(k))
	e.inBasis.Set(uint(q))
	e.basis[leaveRow] = q

	// binv <- E * binv, with E the elementary matrix eliminating alpha on
	// the pivot row.
	ar := alpha[leaveRow]
	for i := 0; i < e.nrows; i++ {
		if i == leaveRow {
			continue
		}
		f := alpha[i] / ar
		if f == 0 {
			continue
		}
		for c := 0; c < e.nrows; c++ {
			e.binv.Set(i, c, e.binv.At(i, c)-f*e.binv.At(leaveRow, c))
		}
	}
	for c := 0; c < e.nrows; c++ {
		e.binv.Set(leaveRow, c, e.binv.At(leaveRow, c)/ar)
	}
}
