// Package solver implements incremental variance-reduced proximal
// algorithms for finite-sum composite problems
//
//	minimize (1/N)·Σ f_i(x) + g(x)
//
// where each f_i is smooth and g is accessed through its proximal
// operator. Four update rules share one driving loop: Finito (with
// limited-memory, minibatch and adaptive variants), SAGA, SAG and
// SVRG (with the "++" schedule).
package solver

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/finsum-ml/finsum/internal/sampling"
	"github.com/finsum-ml/finsum/internal/stepsize"
	"github.com/finsum-ml/finsum/internal/vec"
)

// Component is one smooth term f_i of the finite sum.
//
// Gradient writes ∇f_i(x) into dst and returns f_i(x); dst always has
// the dimension of the iterate. Components may additionally implement
// Lipschitzer and Dimensioner.
type Component[T vec.Scalar] interface {
	Value(x []T) float64
	Gradient(dst, x []T) float64
}

// Lipschitzer is implemented by components that carry an estimate of
// the Lipschitz constant of their gradient. When every component
// provides one and Options.Lipschitz is empty, these estimates drive
// the default step sizes.
type Lipschitzer interface {
	Lipschitz() float64
}

// Dimensioner is implemented by components that know the iterate
// dimension they expect. It is checked against the initial point at
// construction.
type Dimensioner interface {
	Dim() int
}

// Regularizer is the nonsmooth term g, accessed through its proximal
// operator. Prox writes the proximal point of x with parameter γ into
// dst and returns g at that point. dst and x may alias.
type Regularizer[T vec.Scalar] interface {
	Prox(dst, x []T, gamma float64) float64
}

// Valuer is optionally implemented by regularizers that can evaluate
// g at arbitrary points. Objective uses it when available.
type Valuer[T vec.Scalar] interface {
	Value(x []T) float64
}

// Method identifies the update rule.
type Method int

// Supported update rules.
const (
	Finito Method = iota + 1
	SAGA
	SAG
	SVRG
)

// String returns a human-readable name for the method.
func (m Method) String() string {
	switch m {
	case Finito:
		return "finito"
	case SAGA:
		return "saga"
	case SAG:
		return "sag"
	case SVRG:
		return "svrg"
	default:
		return "unknown"
	}
}

// Sweeping selects the index-selection policy.
type Sweeping int

// Supported sweeping strategies.
const (
	Randomized Sweeping = iota + 1
	Cyclic
	Shuffled
)

// String returns a human-readable name for the sweeping strategy.
func (s Sweeping) String() string { return s.strategy().String() }

func (s Sweeping) strategy() sampling.Strategy {
	switch s {
	case Randomized:
		return sampling.Randomized
	case Cyclic:
		return sampling.Cyclic
	case Shuffled:
		return sampling.Shuffled
	default:
		return sampling.Strategy(-1)
	}
}

// Sentinel errors. Construction and stepping errors wrap one of these.
var (
	// ErrConfiguration reports an unusable option combination, such as
	// no resolvable stepsize source or LowMemory with Randomized
	// sweeping.
	ErrConfiguration = errors.New("solver: invalid configuration")
	// ErrDimension reports a disagreement between the initial point
	// and the component functions.
	ErrDimension = errors.New("solver: dimension mismatch")
	// ErrNumericDomain reports that the adaptive backtracking search
	// could not find a valid Lipschitz estimate.
	ErrNumericDomain = errors.New("solver: numeric domain error")
)

// Options configures an Iterator or a Solve call. The zero value
// selects Finito with randomized sweeping, batch 1 and 1000 iterations;
// a stepsize source (Gamma, GammaBlocks, Lipschitz data on the options
// or on the components, or Adaptive) must be available.
type Options struct {
	Method        Method
	MaxIterations int     // default 1000
	Tolerance     float64 // 0 disables the residual stopping test
	Gamma         float64
	GammaBlocks   []float64 // per-component steps, Finito only
	Lipschitz     []float64 // len 1 (shared) or one per component
	Sweeping      Sweeping
	Batch         int  // minibatch size, default 1
	NoReplacement bool // randomized minibatch without replacement
	LowMemory     bool // Finito limited-memory variant
	Adaptive      bool // Finito backtracking variant
	InnerSteps    int  // SVRG inner-loop length m, default N
	Plus          bool // SVRG++ schedule: m doubles each epoch
	Seed          int64
	Rand          *rand.Rand
}

func (o *Options) withDefaults() {
	if o.Method == 0 {
		o.Method = Finito
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = 1000
	}
	if o.Sweeping == 0 {
		o.Sweeping = Randomized
	}
	if o.Batch == 0 {
		o.Batch = 1
	}
}

// Result holds the outcome of a Solve call. X is a snapshot copy of
// the final solution view; it is not aliased to solver-internal state.
type Result[T vec.Scalar] struct {
	X          []T
	Iterations int
	Residual   float64
	Converged  bool
}

// Solve drives an Iterator until MaxIterations steps have been taken
// or, when Tolerance is positive, the fixed-point residual
// ‖x_new - x_old‖ drops below it. Reaching MaxIterations without
// meeting the tolerance is a normal outcome, not an error.
func Solve[T vec.Scalar](x0 []T, comps []Component[T], reg Regularizer[T], opts Options) (Result[T], error) {
	it, err := NewIterator(x0, comps, reg, opts)
	if err != nil {
		return Result[T]{}, err
	}
	opts.withDefaults()

	var st State[T]
	for k := 0; k < opts.MaxIterations; k++ {
		st, err = it.Next()
		if err != nil {
			return Result[T]{}, err
		}
		if opts.Tolerance > 0 && st.Residual() < opts.Tolerance {
			return Result[T]{
				X:          vec.Clone(st.Solution()),
				Iterations: k + 1,
				Residual:   st.Residual(),
				Converged:  true,
			}, nil
		}
	}
	return Result[T]{
		X:          vec.Clone(st.Solution()),
		Iterations: opts.MaxIterations,
		Residual:   st.Residual(),
	}, nil
}

// Objective evaluates (1/N)·Σ f_i(x) + g(x). The regularizer value is
// taken from Valuer when implemented, otherwise it is approximated by
// a proximal evaluation with a vanishing parameter.
func Objective[T vec.Scalar](comps []Component[T], reg Regularizer[T], x []T) float64 {
	var smooth float64
	for _, c := range comps {
		smooth += c.Value(x)
	}
	smooth /= float64(len(comps))
	if reg == nil {
		return smooth
	}
	if v, ok := reg.(Valuer[T]); ok {
		return smooth + v.Value(x)
	}
	dst := make([]T, len(x))
	return smooth + reg.Prox(dst, x, 1e-12)
}

// stepsizeConfig assembles the stepsize inputs, falling back to
// Lipschitz estimates carried by the components when the options do
// not supply any.
func stepsizeConfig[T vec.Scalar](opts Options, comps []Component[T]) stepsize.Config {
	cfg := stepsize.Config{
		Gamma:     opts.Gamma,
		Lipschitz: opts.Lipschitz,
		Adaptive:  opts.Adaptive,
	}
	if len(cfg.Lipschitz) == 0 {
		lips := make([]float64, 0, len(comps))
		for _, c := range comps {
			lc, ok := c.(Lipschitzer)
			if !ok || lc.Lipschitz() <= 0 {
				lips = nil
				break
			}
			lips = append(lips, lc.Lipschitz())
		}
		cfg.Lipschitz = lips
	}
	return cfg
}

func configErr(err error) error {
	if errors.Is(err, stepsize.ErrNoSource) {
		return fmt.Errorf("%w: no stepsize source: supply Gamma, Lipschitz data or Adaptive", ErrConfiguration)
	}
	return fmt.Errorf("%w: %v", ErrConfiguration, err)
}
