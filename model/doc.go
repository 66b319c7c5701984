// Package model implements the modeling layer of cnvx: decision variables,
// a small linear-expression algebra, constraints and objectives.
//
// A Model is mutable while the problem is being described and is treated as
// read-only input by the solvers. Variables and constraints are append-only;
// indices handed out by AddVariable and AddConstraint stay valid for the
// lifetime of the model.
//
// Expressions are immutable value types. Building blocks compose without
// touching any model:
//
//	x, _ := m.AddContinuousVariable("x")
//	y, _ := m.AddContinuousVariable("y")
//	profit := x.Mul(3).Expr().AddTerm(y.Mul(2))
//	_, err := m.AddConstraint(x.Add(y).Eq(4))
//	err = m.SetObjective(model.Maximize(profit))
//
// A Constraint produced by Le, Ge or Eq is a draft: it binds only once
// registered with AddConstraint, which is where variable ownership is
// validated.
package model
