// Package simplex implements the bounded-variable two-phase primal simplex
// method on a dense standard form.
//
// Standard-form construction attaches one slack column per constraint row;
// the slack's bounds encode the relation (Le: [0,+Inf), Ge: (-Inf,0],
// Eq: fixed at 0). Structural variables keep their own finite or infinite
// bounds, so two-sided bounds are handled natively by the ratio test rather
// than by substitution.
//
// Phase 1 minimizes the sum of bound violations of the basic variables
// starting from the all-slack basis; Phase 2 optimizes the model objective
// from the feasible basis Phase 1 found. Entering columns are picked by
// most-negative reduced cost with the lowest index on ties; while the
// objective stagnates across degenerate pivots the engine switches to
// Bland's smallest-index rule, which guarantees termination on cycling
// instances.
package simplex

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/chriso345/cnvx/model"
	"github.com/chriso345/cnvx/solver"
)

// PrimalSimplex implements solver.Solver.
type PrimalSimplex struct{}

// Solve runs the two-phase simplex on the model's continuous relaxation
// (integrality restrictions are ignored; see solver/bnb for integral
// models).
func (PrimalSimplex) Solve(ctx context.Context, m *model.Model, opts ...solver.Option) (*solver.Solution, error) {
	cfg, err := solver.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return SolveWithConfig(ctx, m, cfg, nil, nil)
}

// Solve runs the two-phase simplex with the given options.
func Solve(ctx context.Context, m *model.Model, opts ...solver.Option) (*solver.Solution, error) {
	return PrimalSimplex{}.Solve(ctx, m, opts...)
}

// SolveWithConfig runs the engine with an already-built Config. When lower
// and upper are non-nil they override the structural variable bounds
// (len = m.NumVariables()); branch-and-bound uses this to solve restricted
// sub-models without touching the model itself.
func SolveWithConfig(ctx context.Context, m *model.Model, cfg solver.Config, lower, upper []float64) (*solver.Solution, error) {
	obj, ok := m.Objective()
	if !ok {
		return nil, solver.ErrNoObjective
	}

	e, err := newEngine(m, obj, cfg, lower, upper)
	if err != nil {
		return nil, err
	}
	return e.solve(ctx)
}

// newEngine builds the dense standard form.
func newEngine(m *model.Model, obj model.Objective, cfg solver.Config, lower, upper []float64) (*engine, error) {
	nrows := m.NumConstraints()
	nstruct := m.NumVariables()
	ncols := nstruct + nrows

	e := &engine{
		cfg:     cfg,
		log:     cfg.Logger.With().Str("engine", "simplex").Logger(),
		nrows:   nrows,
		nstruct: nstruct,
		ncols:   ncols,
		b:       make([]float64, nrows),
		lower:   make([]float64, ncols),
		upper:   make([]float64, ncols),
		cost:    make([]float64, ncols),
		x:       make([]float64, ncols),
		model:   m,
		obj:     obj,
	}

	for j, v := range m.Variables() {
		lo, hi := v.Bounds()
		if lower != nil {
			lo = lower[j]
		}
		if upper != nil {
			hi = upper[j]
		}
		if lo > hi {
			// branch bounds crossed; the sub-model is trivially infeasible.
			return nil, errors.Wrapf(solver.ErrInfeasible, "variable %v: empty domain [%v, %v]", v, lo, hi)
		}
		e.lower[j], e.upper[j] = lo, hi
	}

	if nrows > 0 {
		e.a = mat.NewDense(nrows, ncols, nil)
		e.binv = mat.NewDense(nrows, nrows, nil)
		for i := 0; i < nrows; i++ {
			c := m.Constraint(i)
			expr := c.Expr()
			for k := 0; k < expr.NumTerms(); k++ {
				t := expr.TermAt(k)
				e.a.Set(i, t.Var.Index(), t.Coeff)
			}
			e.b[i] = c.RHS() - expr.Offset()

			s := nstruct + i
			e.a.Set(i, s, 1)
			switch c.Relation() {
			case model.Le:
				e.lower[s], e.upper[s] = 0, math.Inf(1)
			case model.Ge:
				e.lower[s], e.upper[s] = math.Inf(-1), 0
			case model.Eq:
				e.lower[s], e.upper[s] = 0, 0
			}
		}
	}

	e.maximize = obj.Sense() == model.SenseMaximize
	objExpr := obj.Expr()
	for k := 0; k < objExpr.NumTerms(); k++ {
		t := objExpr.TermAt(k)
		e.cost[t.Var.Index()] = t.Coeff
	}
	if e.maximize {
		for j := range e.cost {
			e.cost[j] = -e.cost[j]
		}
	}
	return e, nil
}

// assemble maps the engine's terminal point back onto the decision
// variables: slack columns are dropped, values are clamped into their
// bounds, integral variables are snapped to the nearest integer within
// tolerance, and the objective is recomputed from the model expression
// rather than trusted from tableau bookkeeping.
func (e *engine) assemble(status solver.Status) *solver.Solution {
	tol := e.cfg.Tolerance
	values := make([]float64, e.nstruct)
	copy(values, e.x[:e.nstruct])
	for j, v := range e.model.Variables() {
		if values[j] < e.lower[j] {
			values[j] = e.lower[j]
		}
		if values[j] > e.upper[j] {
			values[j] = e.upper[j]
		}
		if v.Kind().IsIntegral() {
			if snapped := math.Round(values[j]); math.Abs(values[j]-snapped) <= tol*(1+math.Abs(snapped)) {
				values[j] = snapped
			}
		}
	}
	objective := e.obj.Expr().Eval(values)
	return solver.NewSolution(values, objective, status)
}
