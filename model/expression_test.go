package model_test

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/chriso345/cnvx/model"
)

func TestExprBuilding(t *testing.T) {
	assert := require.New(t)

	m := model.New()
	x, err := m.AddVariable(0, 10, model.Continuous, "x")
	assert.NoError(err)
	y, err := m.AddVariable(0, 10, model.Continuous, "y")
	assert.NoError(err)

	e := x.Mul(3).Expr().AddTerm(y.Mul(2)).AddConst(1)
	assert.Equal(2, e.NumTerms())
	assert.Equal(1.0, e.Offset())
	assert.Equal(3.0, e.TermAt(0).Coeff)
	assert.Equal(x.Index(), e.TermAt(0).Var.Index())
	assert.Equal(11.0, e.Eval([]float64{2, 2}))

	// receivers are never mutated
	e2 := e.AddVar(y)
	assert.Equal(2, e.NumTerms())
	assert.Equal(3, e2.NumTerms())

	sum := model.Sum(x.Expr(), y.Expr(), model.Constant(5))
	assert.Equal(9.0, sum.Eval([]float64{1, 3}))
}

func TestExprConstraintDrafts(t *testing.T) {
	assert := require.New(t)

	m := model.New()
	x, _ := m.AddVariable(0, 10, model.Continuous, "x")
	y, _ := m.AddVariable(0, 10, model.Continuous, "y")

	c := x.Add(y).Le(4)
	assert.Equal(model.Le, c.Relation())
	assert.Equal(4.0, c.RHS())
	assert.Equal(2, c.Expr().NumTerms())

	// expression-vs-expression comparison folds onto the left-hand side
	c = x.Expr().GeExpr(y.Mul(2).Expr())
	assert.Equal(model.Ge, c.Relation())
	assert.Equal(0.0, c.RHS())
	assert.Equal(1.0, c.Expr().Eval([]float64{3, 1}))
}

func TestExprAlgebraProperties(t *testing.T) {
	const nbVars = 4

	m := model.New()
	vars := make([]model.Variable, nbVars)
	for i := range vars {
		v, err := m.AddContinuousVariable("")
		require.NoError(t, err)
		vars[i] = v
	}
	fromCoeffs := func(coeffs []float64) model.LinExpr {
		var e model.LinExpr
		for i, c := range coeffs {
			e = e.AddTerm(vars[i].Mul(c))
		}
		return e
	}
	genVec := gen.SliceOfN(nbVars, gen.Float64Range(-100, 100))
	approx := func(a, b float64) bool {
		return math.Abs(a-b) <= 1e-6*(1+math.Abs(a))
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("addition commutes under evaluation", prop.ForAll(
		func(a, b, at []float64) bool {
			ea, eb := fromCoeffs(a), fromCoeffs(b)
			return approx(ea.Add(eb).Eval(at), eb.Add(ea).Eval(at))
		},
		genVec, genVec, genVec,
	))

	properties.Property("addition associates under evaluation", prop.ForAll(
		func(a, b, c, at []float64) bool {
			ea, eb, ec := fromCoeffs(a), fromCoeffs(b), fromCoeffs(c)
			return approx(ea.Add(eb).Add(ec).Eval(at), ea.Add(eb.Add(ec)).Eval(at))
		},
		genVec, genVec, genVec, genVec,
	))

	properties.Property("scaling is linear under evaluation", prop.ForAll(
		func(a, at []float64, c float64) bool {
			e := fromCoeffs(a)
			return approx(e.Scale(c).Eval(at), c*e.Eval(at))
		},
		genVec, genVec, gen.Float64Range(-10, 10),
	))

	properties.Property("an expression cancels its negation", prop.ForAll(
		func(a, at []float64) bool {
			e := fromCoeffs(a).AddConst(7)
			return approx(e.Sub(e).Eval(at), 0)
		},
		genVec, genVec,
	))

	properties.TestingRun(t)
}
