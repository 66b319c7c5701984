package solver

import (
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/chriso345/cnvx/logger"
)

const (
	// DefaultTolerance governs feasibility checks, reduced-cost sign checks
	// and zero comparisons when WithTolerance is not given.
	DefaultTolerance = 1e-9

	// DefaultMaxIterations caps simplex pivots when WithMaxIterations is
	// not given.
	DefaultMaxIterations = 100000
)

// Option defines an option for altering the behavior of a solving engine.
// See the descriptions of functions returning instances of this type for
// implemented options.
type Option func(*Config) error

// Config is the engine configuration with the options applied.
type Config struct {
	Tolerance     float64        // absolute/relative numerical tolerance
	MaxIterations int            // simplex pivot budget
	TimeLimit     time.Duration  // 0 means no time limit
	NodeLimit     int            // branch-and-bound only; 0 means no limit
	NbTasks       int            // parallel workers; defaults to runtime.NumCPU()
	Logger        zerolog.Logger // defaults to the cnvx logger
}

// NewConfig returns a default Config with the given options applied.
func NewConfig(opts ...Option) (Config, error) {
	opt := Config{
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
		NbTasks:       runtime.NumCPU(),
		Logger:        logger.Logger(),
	}
	for _, option := range opts {
		if err := option(&opt); err != nil {
			return Config{}, err
		}
	}
	return opt, nil
}

// Deadline returns the absolute deadline implied by the time limit, counted
// from now. ok is false when no time limit is set.
func (cfg Config) Deadline(now time.Time) (deadline time.Time, ok bool) {
	if cfg.TimeLimit <= 0 {
		return time.Time{}, false
	}
	return now.Add(cfg.TimeLimit), true
}

// WithTolerance sets the numerical tolerance used for feasibility checks,
// reduced-cost sign checks and zero comparisons.
func WithTolerance(tol float64) Option {
	return func(opt *Config) error {
		if tol <= 0 {
			return fmt.Errorf("invalid tolerance: %v", tol)
		}
		opt.Tolerance = tol
		return nil
	}
}

// WithMaxIterations caps the number of simplex pivots per LP solve.
func WithMaxIterations(n int) Option {
	return func(opt *Config) error {
		if n <= 0 {
			return fmt.Errorf("invalid iteration limit: %d", n)
		}
		opt.MaxIterations = n
		return nil
	}
}

// WithTimeLimit sets a soft wall-clock budget checked at loop granularity.
// On expiry the best-known result is returned rather than an error, except
// when no feasible result exists yet.
func WithTimeLimit(d time.Duration) Option {
	return func(opt *Config) error {
		if d <= 0 {
			return fmt.Errorf("invalid time limit: %v", d)
		}
		opt.TimeLimit = d
		return nil
	}
}

// WithNodeLimit caps the number of branch-and-bound nodes explored. The
// option has no effect on plain LP solves.
func WithNodeLimit(n int) Option {
	return func(opt *Config) error {
		if n <= 0 {
			return fmt.Errorf("invalid node limit: %d", n)
		}
		opt.NodeLimit = n
		return nil
	}
}

// WithNbTasks sets the number of parallel workers used by branch-and-bound.
// If not set, the number of workers is set to runtime.NumCPU(). With more
// than one worker, tie-breaking among equally-valued incumbents is
// nondeterministic; the optimal objective value is unaffected.
func WithNbTasks(nbTasks int) Option {
	return func(opt *Config) error {
		if nbTasks <= 0 {
			return fmt.Errorf("invalid number of tasks: %d", nbTasks)
		}
		if nbTasks > 512 {
			// avoid saturating the runtime scheduler.
			nbTasks = 512
		}
		opt.NbTasks = nbTasks
		return nil
	}
}

// WithLogger specifies a zerolog.Logger as the destination for engine logs.
// By default the cnvx/logger package logger is used; zerolog.Nop() disables
// logging.
func WithLogger(l zerolog.Logger) Option {
	return func(opt *Config) error {
		opt.Logger = l
		return nil
	}
}
