package solver

import (
	"github.com/chriso345/cnvx/model"
)

// Status is the terminal state of a solve call.
type Status uint8

const (
	// StatusNotSolved means no solve was attempted on the model.
	StatusNotSolved Status = iota
	// StatusOptimal means the reported solution is proven optimal.
	StatusOptimal
	// StatusFeasible means an integral solution was found but optimality
	// was not proven before a node or time budget ran out.
	StatusFeasible
	// StatusInfeasible means no point satisfies all constraints.
	StatusInfeasible
	// StatusUnbounded means the objective improves without limit.
	StatusUnbounded
)

// String returns the string representation of a status.
func (s Status) String() string {
	switch s {
	case StatusNotSolved:
		return "not solved"
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return "unknown"
	}
}

// A Solution is the immutable result of a solve call: one value per decision
// variable (auxiliary solver columns are never exposed), the objective value
// recomputed from the model's expression, and a status.
type Solution struct {
	values    []float64
	objective float64
	status    Status
}

// NewSolution builds a solution; it takes ownership of values.
func NewSolution(values []float64, objective float64, status Status) *Solution {
	return &Solution{values: values, objective: objective, status: status}
}

// Value returns the solved value of v.
func (s *Solution) Value(v model.Variable) float64 {
	return s.values[v.Index()]
}

// ValueAt returns the solved value of the variable with index i.
func (s *Solution) ValueAt(i int) float64 {
	return s.values[i]
}

// Values returns a copy of all variable values in index order.
func (s *Solution) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Objective returns the objective value of the solution.
func (s *Solution) Objective() float64 { return s.objective }

// Status returns the solve status.
func (s *Solution) Status() Status { return s.status }
