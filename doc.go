// Package cnvx builds and solves linear and mixed-integer linear programs.
//
// Models are assembled from variables and linear expressions:
//
//	m := model.New()
//	x, _ := m.AddContinuousVariable("x")
//	y, _ := m.AddIntegerVariable(0, 10, "y")
//	m.AddConstraint(x.Add(y).Le(4))
//	m.SetObjective(model.Maximize(x.Mul(2).Expr().AddTerm(y.Mul(3))))
//
// Solve picks the solving strategy from the model: a pure simplex run for
// continuous models, LP-based branch and bound as soon as an integer or
// binary variable is present. Both engines are also available directly
// under solver/simplex and solver/bnb.
package cnvx

import (
	"github.com/blang/semver/v4"

	"github.com/chriso345/cnvx/internal/version"
)

// Version of the cnvx library.
var Version semver.Version = version.Version
