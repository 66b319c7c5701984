package model_test

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/chriso345/cnvx/model"
)

func TestAddVariable(t *testing.T) {
	assert := require.New(t)
	m := model.New()

	x, err := m.AddVariable(-1, 3, model.Continuous, "x")
	assert.NoError(err)
	assert.Equal(0, x.Index())
	assert.Equal("x", x.Name())
	lo, hi := x.Bounds()
	assert.Equal(-1.0, lo)
	assert.Equal(3.0, hi)

	_, err = m.AddVariable(2, 1, model.Continuous, "bad")
	assert.ErrorIs(err, model.ErrInvalidBounds)
	_, err = m.AddVariable(math.NaN(), 1, model.Continuous, "nan")
	assert.ErrorIs(err, model.ErrInvalidBounds)

	// failed additions leave the model untouched
	assert.Equal(1, m.NumVariables())

	free, err := m.AddContinuousVariable("free")
	assert.NoError(err)
	lo, hi = free.Bounds()
	assert.True(math.IsInf(lo, -1))
	assert.True(math.IsInf(hi, 1))
}

func TestBinaryBoundsNormalized(t *testing.T) {
	assert := require.New(t)
	m := model.New()

	// supplied bounds on a binary variable are ignored, not rejected
	b, err := m.AddVariable(-5, 17, model.Binary, "b")
	assert.NoError(err)
	lo, hi := b.Bounds()
	assert.Equal(0.0, lo)
	assert.Equal(1.0, hi)
	assert.True(b.Kind().IsIntegral())

	b2, err := m.AddBinaryVariable("b2")
	assert.NoError(err)
	lo, hi = b2.Bounds()
	assert.Equal(0.0, lo)
	assert.Equal(1.0, hi)
}

func TestAddConstraint(t *testing.T) {
	assert := require.New(t)
	m := model.New()
	x, _ := m.AddVariable(0, 10, model.Continuous, "x")
	y, _ := m.AddVariable(0, 10, model.Continuous, "y")

	idx, err := m.AddConstraint(x.Add(y).Le(4))
	assert.NoError(err)
	assert.Equal(0, idx)
	assert.Equal(1, m.NumConstraints())

	// duplicate references are combined by summation
	idx, err = m.AddConstraint(x.Expr().AddVar(x).AddTerm(y.Mul(2)).Eq(6))
	assert.NoError(err)
	c := m.Constraint(idx)
	assert.Equal(2, c.Expr().NumTerms())
	assert.Equal(2.0, c.Expr().TermAt(0).Coeff)

	// terms that cancel to zero are dropped
	idx, err = m.AddConstraint(x.Expr().Sub(x.Expr()).AddVar(y).Ge(1))
	assert.NoError(err)
	assert.Equal(1, m.Constraint(idx).Expr().NumTerms())
}

func TestCrossModelReferenceRejected(t *testing.T) {
	assert := require.New(t)
	m1 := model.New()
	m2 := model.New()
	x, _ := m1.AddVariable(0, 1, model.Continuous, "x")
	y, _ := m2.AddVariable(0, 1, model.Continuous, "y")

	_, err := m2.AddConstraint(x.Add(y).Le(1))
	assert.ErrorIs(err, model.ErrUnknownVariable)
	assert.Equal(0, m2.NumConstraints())

	err = m2.SetObjective(model.Minimize(x.Expr()))
	assert.ErrorIs(err, model.ErrUnknownVariable)
	_, ok := m2.Objective()
	assert.False(ok)

	// sentinel survives wrapping
	_, err = m2.AddConstraint(x.Le(1))
	assert.True(errors.Is(err, model.ErrUnknownVariable))
}

func TestObjectives(t *testing.T) {
	assert := require.New(t)
	m := model.New()
	x, _ := m.AddVariable(0, 10, model.Continuous, "x")
	y, _ := m.AddVariable(0, 10, model.Continuous, "y")

	_, ok := m.Objective()
	assert.False(ok)

	assert.NoError(m.SetObjective(model.Maximize(x.Expr()).WithName("profit")))
	obj, ok := m.Objective()
	assert.True(ok)
	assert.Equal(model.SenseMaximize, obj.Sense())
	assert.Equal("profit", obj.Name())

	// SetObjective replaces the active objective, keeping the old one stored
	assert.NoError(m.SetObjective(model.Minimize(y.Expr())))
	obj, _ = m.Objective()
	assert.Equal(model.SenseMinimize, obj.Sense())
	assert.Len(m.Objectives(), 2)

	// AddObjective stores without stealing the active slot
	idx, err := m.AddObjective(model.Maximize(x.Add(y)))
	assert.NoError(err)
	assert.Equal(2, idx)
	obj, _ = m.Objective()
	assert.Equal(model.SenseMinimize, obj.Sense())
}

func TestHasIntegral(t *testing.T) {
	assert := require.New(t)
	m := model.New()
	m.AddVariable(0, 1, model.Continuous, "x")
	assert.False(m.HasIntegral())
	m.AddIntegerVariable(0, 5, "n")
	assert.True(m.HasIntegral())
}
