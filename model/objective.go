package model

import "fmt"

// Sense is the optimization direction of an objective.
type Sense uint8

const (
	// SenseMinimize seeks the smallest objective value.
	SenseMinimize Sense = iota
	// SenseMaximize seeks the largest objective value.
	SenseMaximize
)

// String returns the string representation of an optimization sense.
func (s Sense) String() string {
	switch s {
	case SenseMinimize:
		return "minimize"
	case SenseMaximize:
		return "maximize"
	default:
		return "unknown"
	}
}

// An Objective is an optimization direction applied to a linear expression,
// with an optional name. The solver operates on exactly one active objective
// per solve call; additional stored objectives are kept for future
// multi-objective extensions.
type Objective struct {
	sense Sense
	expr  LinExpr
	name  string
}

// Minimize builds a minimizing objective over expr.
func Minimize(expr LinExpr) Objective {
	return Objective{sense: SenseMinimize, expr: expr}
}

// Maximize builds a maximizing objective over expr.
func Maximize(expr LinExpr) Objective {
	return Objective{sense: SenseMaximize, expr: expr}
}

// WithName returns a copy of the objective carrying the given name.
func (o Objective) WithName(name string) Objective {
	o.name = name
	return o
}

// Sense returns the optimization direction.
func (o Objective) Sense() Sense { return o.sense }

// Expr returns the objective expression.
func (o Objective) Expr() LinExpr { return o.expr }

// Name returns the objective name, or "" if unnamed.
func (o Objective) Name() string { return o.name }

// String implements fmt.Stringer.
func (o Objective) String() string {
	if o.name != "" {
		return fmt.Sprintf("%v %v (%s)", o.sense, o.expr, o.name)
	}
	return fmt.Sprintf("%v %v", o.sense, o.expr)
}
