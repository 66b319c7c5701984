package cnvx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chriso345/cnvx"
	"github.com/chriso345/cnvx/model"
	"github.com/chriso345/cnvx/solver"
	"github.com/chriso345/cnvx/solver/bnb"
	"github.com/chriso345/cnvx/solver/simplex"
)

func TestSolveDispatch(t *testing.T) {
	assert := require.New(t)

	continuous := model.New()
	x, _ := continuous.AddVariable(0, 4, model.Continuous, "x")
	assert.NoError(continuous.SetObjective(model.Maximize(x.Expr())))
	assert.IsType(simplex.PrimalSimplex{}, cnvx.NewSolver(continuous))

	sol, err := cnvx.Solve(context.Background(), continuous)
	assert.NoError(err)
	assert.Equal(4.0, sol.Value(x))

	integral := model.New()
	n, _ := integral.AddIntegerVariable(0, 10, "n")
	_, err = integral.AddConstraint(n.Mul(2).Expr().Le(7))
	assert.NoError(err)
	assert.NoError(integral.SetObjective(model.Maximize(n.Expr())))
	assert.IsType(bnb.BranchAndBound{}, cnvx.NewSolver(integral))

	sol, err = cnvx.Solve(context.Background(), integral)
	assert.NoError(err)
	assert.Equal(solver.StatusOptimal, sol.Status())
	assert.Equal(3.0, sol.Value(n))
}

func TestVersion(t *testing.T) {
	require.NotEmpty(t, cnvx.Version.String())
}
