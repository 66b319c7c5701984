package solver

import "errors"

var (
	// ErrNoObjective is returned when the model carries no active objective.
	ErrNoObjective = errors.New("cnvx: model has no active objective")

	// ErrInfeasible is returned when no point satisfies all constraints.
	ErrInfeasible = errors.New("cnvx: problem is infeasible")

	// ErrUnbounded is returned when the objective can be improved without
	// limit in the optimizing direction.
	ErrUnbounded = errors.New("cnvx: problem is unbounded")

	// ErrIterationLimit is returned when the simplex iteration budget is
	// exhausted before a definitive answer.
	ErrIterationLimit = errors.New("cnvx: simplex iteration limit exceeded")

	// ErrNodeLimit is returned when the branch-and-bound node budget is
	// exhausted before any integral solution was found. When an incumbent
	// exists the search instead returns it with StatusFeasible.
	ErrNodeLimit = errors.New("cnvx: branch-and-bound node limit exceeded")

	// ErrTimeLimit is returned when the time budget or context expired
	// before any usable result existed.
	ErrTimeLimit = errors.New("cnvx: time limit exceeded")
)
