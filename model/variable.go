package model

import "fmt"

// Kind describes the domain of a decision variable.
type Kind uint8

const (
	// Continuous variables take any real value within their bounds.
	Continuous Kind = iota
	// Integer variables are restricted to integral values by the
	// branch-and-bound layer; the LP relaxation ignores the restriction.
	Integer
	// Binary variables are Integer variables with bounds fixed to [0,1].
	Binary
)

// String returns the string representation of a variable kind.
func (k Kind) String() string {
	switch k {
	case Continuous:
		return "continuous"
	case Integer:
		return "integer"
	case Binary:
		return "binary"
	default:
		return "unknown"
	}
}

// IsIntegral reports whether the kind carries an integrality restriction.
func (k Kind) IsIntegral() bool {
	return k == Integer || k == Binary
}

// variable is the model-owned record; Variable is the caller-facing handle.
type variable struct {
	name         string
	lower, upper float64
	kind         Kind
}

// Variable is a handle on a decision variable. The zero value references no
// model and is rejected wherever ownership is validated.
type Variable struct {
	m     *Model
	index int
}

// Index returns the stable index of the variable within its model.
func (v Variable) Index() int { return v.index }

// Name returns the name given at creation, or "" for unnamed variables.
func (v Variable) Name() string { return v.m.vars[v.index].name }

// Kind returns the variable kind.
func (v Variable) Kind() Kind { return v.m.vars[v.index].kind }

// Bounds returns the lower and upper bound. Unbounded sides are ±Inf.
func (v Variable) Bounds() (lower, upper float64) {
	rec := v.m.vars[v.index]
	return rec.lower, rec.upper
}

// String implements fmt.Stringer; unnamed variables print as x#index.
func (v Variable) String() string {
	if v.m == nil {
		return "x?"
	}
	if name := v.m.vars[v.index].name; name != "" {
		return name
	}
	return fmt.Sprintf("x%d", v.index)
}

// Mul scales the variable by a coefficient, producing a Term.
func (v Variable) Mul(coeff float64) Term {
	return Term{Coeff: coeff, Var: v}
}

// Term returns the variable as a Term with coefficient 1.
func (v Variable) Term() Term {
	return Term{Coeff: 1, Var: v}
}

// Expr returns the variable as a single-term expression.
func (v Variable) Expr() LinExpr {
	return v.Term().Expr()
}

// Add combines two variables into an expression with unit coefficients.
func (v Variable) Add(o Variable) LinExpr {
	return LinExpr{terms: []Term{v.Term(), o.Term()}}
}

// Le drafts the constraint v <= rhs.
func (v Variable) Le(rhs float64) Constraint { return v.Expr().Le(rhs) }

// Ge drafts the constraint v >= rhs.
func (v Variable) Ge(rhs float64) Constraint { return v.Expr().Ge(rhs) }

// Eq drafts the constraint v == rhs.
func (v Variable) Eq(rhs float64) Constraint { return v.Expr().Eq(rhs) }
