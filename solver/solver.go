package solver

import (
	"context"

	"github.com/chriso345/cnvx/model"
)

// Solver is the capability interface implemented by every solving engine.
//
// Solve inspects the model's active objective and constraint set and
// returns either a Solution or one of the sentinel error kinds declared in
// this package. The model is treated as read-only for the duration of the
// call. Cancellation through ctx is cooperative: engines check it at loop
// granularity.
type Solver interface {
	Solve(ctx context.Context, m *model.Model, opts ...Option) (*Solution, error)
}
