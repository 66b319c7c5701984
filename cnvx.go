package cnvx

import (
	"context"

	"github.com/chriso345/cnvx/model"
	"github.com/chriso345/cnvx/solver"
	"github.com/chriso345/cnvx/solver/bnb"
	"github.com/chriso345/cnvx/solver/simplex"
)

// Solve solves the model with a strategy chosen from its variables:
// branch and bound when any variable is integral, plain two-phase simplex
// otherwise.
func Solve(ctx context.Context, m *model.Model, opts ...solver.Option) (*solver.Solution, error) {
	return NewSolver(m).Solve(ctx, m, opts...)
}

// NewSolver returns the solver Solve would use for the model.
func NewSolver(m *model.Model) solver.Solver {
	if m.HasIntegral() {
		return bnb.BranchAndBound{}
	}
	return simplex.PrimalSimplex{}
}
