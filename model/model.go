package model

import (
	"math"

	"github.com/pkg/errors"
)

// A Model owns the variable, constraint and objective collections of one
// optimization problem. It is built single-threaded and is read-only input
// to the solvers afterwards; variables and constraints are append-only so
// indices never shift.
type Model struct {
	vars        []variable
	constraints []Constraint
	objectives  []Objective
	active      int // index into objectives, -1 when none is set
}

// New returns an empty model.
func New() *Model {
	return &Model{active: -1}
}

// AddVariable appends a decision variable with the given bounds, kind and
// name (may be empty) and returns its handle.
//
// It returns ErrInvalidBounds when lower > upper or a bound is NaN. For
// Binary variables the supplied bounds are ignored and silently normalized
// to [0,1]; this is the documented policy, chosen so that generated models
// never trip over a redundant bound row.
func (m *Model) AddVariable(lower, upper float64, kind Kind, name string) (Variable, error) {
	if kind == Binary {
		lower, upper = 0, 1
	}
	if math.IsNaN(lower) || math.IsNaN(upper) {
		return Variable{}, errors.Wrapf(ErrInvalidBounds, "variable %q: NaN bound", name)
	}
	if lower > upper {
		return Variable{}, errors.Wrapf(ErrInvalidBounds, "variable %q: [%v, %v]", name, lower, upper)
	}
	m.vars = append(m.vars, variable{name: name, lower: lower, upper: upper, kind: kind})
	return Variable{m: m, index: len(m.vars) - 1}, nil
}

// AddContinuousVariable appends a free continuous variable.
func (m *Model) AddContinuousVariable(name string) (Variable, error) {
	return m.AddVariable(math.Inf(-1), math.Inf(1), Continuous, name)
}

// AddIntegerVariable appends an integer variable with the given bounds.
func (m *Model) AddIntegerVariable(lower, upper float64, name string) (Variable, error) {
	return m.AddVariable(lower, upper, Integer, name)
}

// AddBinaryVariable appends a binary variable with bounds [0,1].
func (m *Model) AddBinaryVariable(name string) (Variable, error) {
	return m.AddVariable(0, 1, Binary, name)
}

// AddConstraint registers a draft constraint and returns its index.
//
// Every variable referenced by the constraint must have been created by this
// model; otherwise ErrUnknownVariable is returned and the model is left
// untouched. Duplicate variable references are combined by summation.
func (m *Model) AddConstraint(c Constraint) (int, error) {
	if err := m.validateExpr(c.expr); err != nil {
		return 0, errors.Wrapf(err, "constraint %d", len(m.constraints))
	}
	c.expr = c.expr.reduce()
	m.constraints = append(m.constraints, c)
	return len(m.constraints) - 1, nil
}

// SetObjective stores obj and makes it the active objective, replacing any
// previously active one. Ownership of referenced variables is validated the
// same way as for constraints.
func (m *Model) SetObjective(obj Objective) error {
	if err := m.validateExpr(obj.expr); err != nil {
		return errors.Wrap(err, "objective")
	}
	obj.expr = obj.expr.reduce()
	m.objectives = append(m.objectives, obj)
	m.active = len(m.objectives) - 1
	return nil
}

// AddObjective stores obj without activating it and returns its index. The
// first objective stored through SetObjective remains the one solved;
// stored objectives are kept for future multi-objective extensions.
func (m *Model) AddObjective(obj Objective) (int, error) {
	if err := m.validateExpr(obj.expr); err != nil {
		return 0, errors.Wrap(err, "objective")
	}
	obj.expr = obj.expr.reduce()
	m.objectives = append(m.objectives, obj)
	if m.active < 0 {
		m.active = len(m.objectives) - 1
	}
	return len(m.objectives) - 1, nil
}

// Objective returns the active objective, if any.
func (m *Model) Objective() (Objective, bool) {
	if m.active < 0 {
		return Objective{}, false
	}
	return m.objectives[m.active], true
}

// Objectives returns all stored objectives in insertion order.
func (m *Model) Objectives() []Objective {
	out := make([]Objective, len(m.objectives))
	copy(out, m.objectives)
	return out
}

// NumVariables returns the number of variables.
func (m *Model) NumVariables() int { return len(m.vars) }

// NumConstraints returns the number of registered constraints.
func (m *Model) NumConstraints() int { return len(m.constraints) }

// Variable returns the handle for the i-th variable.
func (m *Model) Variable(i int) Variable {
	return Variable{m: m, index: i}
}

// Variables returns handles for all variables in index order.
func (m *Model) Variables() []Variable {
	out := make([]Variable, len(m.vars))
	for i := range m.vars {
		out[i] = Variable{m: m, index: i}
	}
	return out
}

// Constraint returns the i-th registered constraint.
func (m *Model) Constraint(i int) Constraint { return m.constraints[i] }

// Constraints returns all registered constraints in index order.
func (m *Model) Constraints() []Constraint {
	out := make([]Constraint, len(m.constraints))
	copy(out, m.constraints)
	return out
}

// HasIntegral reports whether any variable carries an integrality
// restriction; it decides the top-level LP vs branch-and-bound dispatch.
func (m *Model) HasIntegral() bool {
	for i := range m.vars {
		if m.vars[i].kind.IsIntegral() {
			return true
		}
	}
	return false
}

func (m *Model) validateExpr(e LinExpr) error {
	for i := 0; i < e.NumTerms(); i++ {
		t := e.TermAt(i)
		if t.Var.m != m {
			return errors.Wrapf(ErrUnknownVariable, "term %d (%v)", i, t.Var)
		}
		if t.Var.index < 0 || t.Var.index >= len(m.vars) {
			return errors.Wrapf(ErrUnknownVariable, "term %d: index %d out of range", i, t.Var.index)
		}
	}
	return nil
}
