package simplex

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chriso345/cnvx/model"
	"github.com/chriso345/cnvx/solver"
)

func TestEqualityConstrainedOptimum(t *testing.T) {
	assert := require.New(t)

	// maximize 3x+2y subject to x+y = 4 and 2x+3y = 9, x,y >= 0.
	// The two equalities pin the unique point (3, 1).
	m := model.New()
	x, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "x")
	y, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "y")
	_, err := m.AddConstraint(x.Add(y).Eq(4))
	assert.NoError(err)
	_, err = m.AddConstraint(x.Mul(2).Expr().AddTerm(y.Mul(3)).Eq(9))
	assert.NoError(err)
	assert.NoError(m.SetObjective(model.Maximize(x.Mul(3).Expr().AddTerm(y.Mul(2)))))

	sol, err := Solve(context.Background(), m)
	assert.NoError(err)
	assert.Equal(solver.StatusOptimal, sol.Status())
	assert.InDelta(3, sol.Value(x), 1e-6)
	assert.InDelta(1, sol.Value(y), 1e-6)
	assert.InDelta(11, sol.Objective(), 1e-6)
}

func TestInequalityOptimum(t *testing.T) {
	assert := require.New(t)

	// maximize 2x+3y subject to x+2y <= 14, 3x-y >= 0, x-y <= 2 on free
	// variables; the optimum sits at (6, 4).
	m := model.New()
	x, _ := m.AddContinuousVariable("x")
	y, _ := m.AddContinuousVariable("y")
	m.AddConstraint(x.Expr().AddTerm(y.Mul(2)).Le(14))
	m.AddConstraint(x.Mul(3).Expr().AddTerm(y.Mul(-1)).Ge(0))
	m.AddConstraint(x.Expr().AddTerm(y.Mul(-1)).Le(2))
	assert.NoError(m.SetObjective(model.Maximize(x.Mul(2).Expr().AddTerm(y.Mul(3)))))

	sol, err := Solve(context.Background(), m)
	assert.NoError(err)
	assert.InDelta(6, sol.Value(x), 1e-6)
	assert.InDelta(4, sol.Value(y), 1e-6)
	assert.InDelta(24, sol.Objective(), 1e-6)
}

func TestTwoSidedBounds(t *testing.T) {
	assert := require.New(t)

	// maximize 2x+y with 1 <= x <= 3, 0 <= y <= 2, x+y <= 4; the unique
	// optimum (3, 1) has x pinned at its own upper bound.
	m := model.New()
	x, _ := m.AddVariable(1, 3, model.Continuous, "x")
	y, _ := m.AddVariable(0, 2, model.Continuous, "y")
	m.AddConstraint(x.Add(y).Le(4))
	assert.NoError(m.SetObjective(model.Maximize(x.Mul(2).Expr().AddTerm(y.Term()))))

	sol, err := Solve(context.Background(), m)
	assert.NoError(err)
	assert.InDelta(3, sol.Value(x), 1e-6)
	assert.InDelta(1, sol.Value(y), 1e-6)
	assert.InDelta(7, sol.Objective(), 1e-6)
}

func TestMinimization(t *testing.T) {
	assert := require.New(t)

	// minimize x+y subject to x+y >= 3, x >= 0.5, y >= 0
	m := model.New()
	x, _ := m.AddVariable(0.5, math.Inf(1), model.Continuous, "x")
	y, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "y")
	m.AddConstraint(x.Add(y).Ge(3))
	assert.NoError(m.SetObjective(model.Minimize(x.Add(y))))

	sol, err := Solve(context.Background(), m)
	assert.NoError(err)
	assert.InDelta(3, sol.Objective(), 1e-6)
}

func TestInfeasible(t *testing.T) {
	assert := require.New(t)

	m := model.New()
	x, _ := m.AddContinuousVariable("x")
	m.AddConstraint(x.Ge(5))
	m.AddConstraint(x.Le(2))
	assert.NoError(m.SetObjective(model.Minimize(x.Expr())))

	sol, err := Solve(context.Background(), m)
	assert.Nil(sol)
	assert.ErrorIs(err, solver.ErrInfeasible)
}

func TestUnbounded(t *testing.T) {
	t.Run("no constraints", func(t *testing.T) {
		m := model.New()
		x, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "x")
		require.NoError(t, m.SetObjective(model.Maximize(x.Expr())))

		_, err := Solve(context.Background(), m)
		require.ErrorIs(t, err, solver.ErrUnbounded)
	})

	t.Run("unbounded ray", func(t *testing.T) {
		m := model.New()
		x, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "x")
		y, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "y")
		m.AddConstraint(x.Expr().AddTerm(y.Mul(-1)).Le(1))
		require.NoError(t, m.SetObjective(model.Maximize(x.Add(y))))

		_, err := Solve(context.Background(), m)
		require.ErrorIs(t, err, solver.ErrUnbounded)
	})
}

func TestBoundsOnlyModel(t *testing.T) {
	assert := require.New(t)

	// no constraint rows at all: each variable moves to the bound its cost
	// favors.
	m := model.New()
	x, _ := m.AddVariable(-2, 5, model.Continuous, "x")
	y, _ := m.AddVariable(-3, 4, model.Continuous, "y")
	assert.NoError(m.SetObjective(model.Maximize(x.Expr().AddTerm(y.Mul(-1)))))

	sol, err := Solve(context.Background(), m)
	assert.NoError(err)
	assert.Equal(5.0, sol.Value(x))
	assert.Equal(-3.0, sol.Value(y))
	assert.InDelta(8, sol.Objective(), 1e-9)
}

func TestNoObjective(t *testing.T) {
	m := model.New()
	m.AddContinuousVariable("x")
	_, err := Solve(context.Background(), m)
	require.ErrorIs(t, err, solver.ErrNoObjective)
}

func TestIterationLimit(t *testing.T) {
	m := model.New()
	x, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "x")
	y, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "y")
	m.AddConstraint(x.Add(y).Eq(4))
	m.AddConstraint(x.Mul(2).Expr().AddTerm(y.Mul(3)).Eq(9))
	require.NoError(t, m.SetObjective(model.Maximize(x.Add(y))))

	_, err := Solve(context.Background(), m, solver.WithMaxIterations(1))
	require.ErrorIs(t, err, solver.ErrIterationLimit)
}

func TestTimeLimit(t *testing.T) {
	m := model.New()
	x, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "x")
	y, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "y")
	m.AddConstraint(x.Add(y).Le(4))
	require.NoError(t, m.SetObjective(model.Maximize(x.Add(y))))

	// a deadline in the past must surface before the first pivot completes
	_, err := Solve(context.Background(), m, solver.WithTimeLimit(time.Nanosecond))
	require.ErrorIs(t, err, solver.ErrTimeLimit)
}

func TestContextCancellation(t *testing.T) {
	m := model.New()
	x, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "x")
	y, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "y")
	m.AddConstraint(x.Add(y).Le(4))
	require.NoError(t, m.SetObjective(model.Maximize(x.Add(y))))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Solve(ctx, m)
	require.ErrorIs(t, err, solver.ErrTimeLimit)
}

func TestDeterministicResolve(t *testing.T) {
	assert := require.New(t)

	m := model.New()
	x, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "x")
	y, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "y")
	z, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "z")
	m.AddConstraint(x.Add(y).AddVar(z).Le(10))
	m.AddConstraint(x.Mul(2).Expr().AddTerm(y.Mul(-1)).AddTerm(z.Mul(3)).Le(12))
	assert.NoError(m.SetObjective(model.Maximize(x.Add(y).AddTerm(z.Mul(2)))))

	first, err := Solve(context.Background(), m)
	assert.NoError(err)
	second, err := Solve(context.Background(), m)
	assert.NoError(err)

	// pivot tie-breaking is deterministic, so the runs agree bit for bit
	assert.Equal(first.Values(), second.Values())
	assert.Equal(first.Objective(), second.Objective())
}

func TestDegenerateCyclingTerminates(t *testing.T) {
	assert := require.New(t)

	// Beale's example cycles forever under naive most-negative pricing.
	// The stagnation fallback to Bland's rule must drive it to the optimum
	// x = (1/25, 0, 1, 0) with objective -1/20.
	m := model.New()
	x1, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "x1")
	x2, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "x2")
	x3, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "x3")
	x4, _ := m.AddVariable(0, math.Inf(1), model.Continuous, "x4")

	m.AddConstraint(x1.Mul(0.25).Expr().
		AddTerm(x2.Mul(-60)).
		AddTerm(x3.Mul(-1.0 / 25)).
		AddTerm(x4.Mul(9)).Le(0))
	m.AddConstraint(x1.Mul(0.5).Expr().
		AddTerm(x2.Mul(-90)).
		AddTerm(x3.Mul(-1.0 / 50)).
		AddTerm(x4.Mul(3)).Le(0))
	m.AddConstraint(x3.Le(1))
	assert.NoError(m.SetObjective(model.Minimize(x1.Mul(-0.75).Expr().
		AddTerm(x2.Mul(150)).
		AddTerm(x3.Mul(-1.0 / 50)).
		AddTerm(x4.Mul(6)))))

	sol, err := Solve(context.Background(), m, solver.WithMaxIterations(1000))
	assert.NoError(err)
	assert.Equal(solver.StatusOptimal, sol.Status())
	assert.InDelta(-0.05, sol.Objective(), 1e-6)
	assert.InDelta(0.04, sol.Value(x1), 1e-6)
	assert.InDelta(1, sol.Value(x3), 1e-6)
}

func TestBoundOverrides(t *testing.T) {
	assert := require.New(t)

	m := model.New()
	x, _ := m.AddVariable(0, 10, model.Continuous, "x")
	assert.NoError(m.SetObjective(model.Maximize(x.Expr())))

	cfg, err := solver.NewConfig()
	assert.NoError(err)

	sol, err := SolveWithConfig(context.Background(), m, cfg, []float64{2}, []float64{3})
	assert.NoError(err)
	assert.Equal(3.0, sol.Value(x))

	// crossed override bounds are reported as infeasible without solving
	_, err = SolveWithConfig(context.Background(), m, cfg, []float64{4}, []float64{3})
	assert.ErrorIs(err, solver.ErrInfeasible)
}
