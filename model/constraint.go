package model

import "fmt"

// Relation is the comparison of a constraint's expression against its
// right-hand side.
type Relation uint8

const (
	// Eq constrains the expression to equal the right-hand side.
	Eq Relation = iota
	// Le constrains the expression to be at most the right-hand side.
	Le
	// Ge constrains the expression to be at least the right-hand side.
	Ge
)

// String returns the string representation of a relation.
func (r Relation) String() string {
	switch r {
	case Eq:
		return "=="
	case Le:
		return "<="
	case Ge:
		return ">="
	default:
		return "?"
	}
}

// A Constraint couples a linear expression with a relation and a right-hand
// side constant. Values built by Le, Ge and Eq are drafts: they become
// binding only when registered with Model.AddConstraint.
type Constraint struct {
	expr LinExpr
	rel  Relation
	rhs  float64
}

// Expr returns the constraint's left-hand-side expression.
func (c Constraint) Expr() LinExpr { return c.expr }

// Relation returns the constraint's relation.
func (c Constraint) Relation() Relation { return c.rel }

// RHS returns the right-hand-side constant.
func (c Constraint) RHS() float64 { return c.rhs }

// String implements fmt.Stringer.
func (c Constraint) String() string {
	return fmt.Sprintf("%v %v %v", c.expr, c.rel, c.rhs)
}
