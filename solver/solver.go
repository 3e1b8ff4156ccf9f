package solver

import (
	"github.com/finsum-ml/finsum/internal/solver"
	"github.com/finsum-ml/finsum/internal/vec"
)

// Scalar constrains the supported iterate element types: real or
// complex, single or double precision.
type Scalar = vec.Scalar

// Component is one smooth term f_i of the finite sum. Gradient writes
// ∇f_i(x) into dst and returns f_i(x).
type Component[T Scalar] = solver.Component[T]

// Regularizer is the nonsmooth term g, accessed through its proximal
// operator.
type Regularizer[T Scalar] = solver.Regularizer[T]

// Lipschitzer is implemented by components carrying a gradient
// Lipschitz estimate, used for default step sizes.
type Lipschitzer = solver.Lipschitzer

// Dimensioner is implemented by components that know their expected
// iterate dimension.
type Dimensioner = solver.Dimensioner

// Valuer is optionally implemented by regularizers that can evaluate
// g at arbitrary points.
type Valuer[T Scalar] = solver.Valuer[T]

// Method identifies the update rule.
type Method = solver.Method

// Supported update rules.
const (
	Finito = solver.Finito
	SAGA   = solver.SAGA
	SAG    = solver.SAG
	SVRG   = solver.SVRG
)

// Sweeping selects the index-selection policy.
type Sweeping = solver.Sweeping

// Supported sweeping strategies.
const (
	Randomized = solver.Randomized
	Cyclic     = solver.Cyclic
	Shuffled   = solver.Shuffled
)

// Options configures an Iterator or a Solve call.
type Options = solver.Options

// Result holds the outcome of a Solve call.
type Result[T Scalar] = solver.Result[T]

// State is one element of the iterator's state sequence.
type State[T Scalar] = solver.State[T]

// Iterator lazily produces algorithm states, one per inner step.
type Iterator[T Scalar] = solver.Iterator[T]

// Sentinel errors surfaced by construction and stepping.
var (
	ErrConfiguration = solver.ErrConfiguration
	ErrDimension     = solver.ErrDimension
	ErrNumericDomain = solver.ErrNumericDomain
)

// NewIterator builds the lazy state sequence for the configured
// method, positioned before the first step.
func NewIterator[T Scalar](x0 []T, comps []Component[T], reg Regularizer[T], opts Options) (*Iterator[T], error) {
	return solver.NewIterator(x0, comps, reg, opts)
}

// Solve drives an iterator until MaxIterations or, when Tolerance is
// positive, until the fixed-point residual drops below it.
func Solve[T Scalar](x0 []T, comps []Component[T], reg Regularizer[T], opts Options) (Result[T], error) {
	return solver.Solve(x0, comps, reg, opts)
}

// Objective evaluates (1/N)·Σ f_i(x) + g(x).
func Objective[T Scalar](comps []Component[T], reg Regularizer[T], x []T) float64 {
	return solver.Objective(comps, reg, x)
}
