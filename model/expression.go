package model

import (
	"fmt"
	"strings"
)

// A Term is a coeff * variable pair inside a linear expression.
type Term struct {
	Coeff float64
	Var   Variable
}

// Expr returns the term as a single-term expression.
func (t Term) Expr() LinExpr {
	return LinExpr{terms: []Term{t}}
}

// A LinExpr is a linear combination of Terms plus a constant offset. The
// zero value is the empty expression (constant 0). All methods are pure:
// they return fresh expressions and never mutate their receiver, so an
// expression can be shared across constraints and objectives.
type LinExpr struct {
	terms    []Term
	constant float64
}

// Expr builds an expression from the given terms.
func Expr(terms ...Term) LinExpr {
	e := LinExpr{terms: make([]Term, len(terms))}
	copy(e.terms, terms)
	return e
}

// Constant returns the expression holding only the constant c.
func Constant(c float64) LinExpr {
	return LinExpr{constant: c}
}

// Sum adds any number of expressions together.
func Sum(exprs ...LinExpr) LinExpr {
	var out LinExpr
	n := 0
	for _, e := range exprs {
		n += len(e.terms)
	}
	out.terms = make([]Term, 0, n)
	for _, e := range exprs {
		out.terms = append(out.terms, e.terms...)
		out.constant += e.constant
	}
	return out
}

// Add returns the sum of two expressions.
func (e LinExpr) Add(o LinExpr) LinExpr {
	terms := make([]Term, 0, len(e.terms)+len(o.terms))
	terms = append(terms, e.terms...)
	terms = append(terms, o.terms...)
	return LinExpr{terms: terms, constant: e.constant + o.constant}
}

// Sub returns e - o.
func (e LinExpr) Sub(o LinExpr) LinExpr {
	return e.Add(o.Neg())
}

// Neg returns the expression with every coefficient and the constant negated.
func (e LinExpr) Neg() LinExpr {
	terms := make([]Term, len(e.terms))
	for i, t := range e.terms {
		terms[i] = Term{Coeff: -t.Coeff, Var: t.Var}
	}
	return LinExpr{terms: terms, constant: -e.constant}
}

// Scale returns the expression with every coefficient and the constant
// multiplied by c.
func (e LinExpr) Scale(c float64) LinExpr {
	terms := make([]Term, len(e.terms))
	for i, t := range e.terms {
		terms[i] = Term{Coeff: c * t.Coeff, Var: t.Var}
	}
	return LinExpr{terms: terms, constant: c * e.constant}
}

// AddTerm returns the expression extended by one term.
func (e LinExpr) AddTerm(t Term) LinExpr {
	terms := make([]Term, 0, len(e.terms)+1)
	terms = append(terms, e.terms...)
	terms = append(terms, t)
	return LinExpr{terms: terms, constant: e.constant}
}

// AddVar returns the expression extended by the variable with coefficient 1.
func (e LinExpr) AddVar(v Variable) LinExpr {
	return e.AddTerm(v.Term())
}

// AddConst returns the expression with c added to its constant offset.
func (e LinExpr) AddConst(c float64) LinExpr {
	e2 := e
	e2.constant += c
	return e2
}

// Terms returns a copy of the expression's terms in order.
func (e LinExpr) Terms() []Term {
	out := make([]Term, len(e.terms))
	copy(out, e.terms)
	return out
}

// NumTerms returns the number of terms without copying.
func (e LinExpr) NumTerms() int { return len(e.terms) }

// TermAt returns the i-th term.
func (e LinExpr) TermAt(i int) Term { return e.terms[i] }

// Offset returns the constant offset of the expression.
func (e LinExpr) Offset() float64 { return e.constant }

// Le drafts the constraint e <= rhs.
func (e LinExpr) Le(rhs float64) Constraint {
	return Constraint{expr: e, rel: Le, rhs: rhs}
}

// Ge drafts the constraint e >= rhs.
func (e LinExpr) Ge(rhs float64) Constraint {
	return Constraint{expr: e, rel: Ge, rhs: rhs}
}

// Eq drafts the constraint e == rhs.
func (e LinExpr) Eq(rhs float64) Constraint {
	return Constraint{expr: e, rel: Eq, rhs: rhs}
}

// LeExpr drafts e <= o by folding o onto the left-hand side.
func (e LinExpr) LeExpr(o LinExpr) Constraint { return e.Sub(o).Le(0) }

// GeExpr drafts e >= o by folding o onto the left-hand side.
func (e LinExpr) GeExpr(o LinExpr) Constraint { return e.Sub(o).Ge(0) }

// EqExpr drafts e == o by folding o onto the left-hand side.
func (e LinExpr) EqExpr(o LinExpr) Constraint { return e.Sub(o).Eq(0) }

// Eval computes the value of the expression under the given assignment,
// indexed by variable index.
func (e LinExpr) Eval(values []float64) float64 {
	v := e.constant
	for _, t := range e.terms {
		v += t.Coeff * values[t.Var.index]
	}
	return v
}

// String implements fmt.Stringer.
func (e LinExpr) String() string {
	var sbb strings.Builder
	for i, t := range e.terms {
		if i > 0 {
			sbb.WriteString(" + ")
		}
		fmt.Fprintf(&sbb, "%v*%v", t.Coeff, t.Var)
	}
	if e.constant != 0 || len(e.terms) == 0 {
		if len(e.terms) > 0 {
			sbb.WriteString(" + ")
		}
		fmt.Fprintf(&sbb, "%v", e.constant)
	}
	return sbb.String()
}

// reduce combines duplicate variable references by summing their
// coefficients and drops terms that cancelled to zero. First-occurrence
// order is preserved so that reduction stays deterministic.
func (e LinExpr) reduce() LinExpr {
	if len(e.terms) < 2 {
		return e
	}
	pos := make(map[int]int, len(e.terms))
	terms := make([]Term, 0, len(e.terms))
	for _, t := range e.terms {
		if i, ok := pos[t.Var.index]; ok && terms[i].Var.m == t.Var.m {
			terms[i].Coeff += t.Coeff
			continue
		}
		pos[t.Var.index] = len(terms)
		terms = append(terms, t)
	}
	out := terms[:0:0]
	for _, t := range terms {
		if t.Coeff != 0 {
			out = append(out, t)
		}
	}
	return LinExpr{terms: out, constant: e.constant}
}
