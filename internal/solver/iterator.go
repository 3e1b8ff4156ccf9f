package solver

import (
	"fmt"

	"github.com/finsum-ml/finsum/internal/sampling"
	"github.com/finsum-ml/finsum/internal/vec"
)

// State is one element of the sequence produced by an Iterator.
//
// Solution returns the algorithm's solution view: the live iterate for
// Finito, SAGA and SAG, and the snapshot point for SVRG. The slice is
// owned by the iterator and mutated in place by subsequent steps;
// consumers that need a stable value must copy it (Solve does).
type State[T vec.Scalar] interface {
	Solution() []T
	// Residual is the fixed-point increment ‖x_new - x_old‖ of the
	// last inner step.
	Residual() float64
	// Epoch counts completed full passes (Finito/SAGA/SAG) or
	// snapshot refreshes (SVRG).
	Epoch() int
	// Step counts inner steps taken so far.
	Step() int
}

// rule is the per-algorithm update strategy consulted by the Iterator.
// advance performs one inner step for the sampled minibatch, mutating
// the rule's state in place.
type rule[T vec.Scalar] interface {
	advance(batch []int) error
	solution() []T
	residual() float64
	epoch() int
}

// Iterator lazily produces the sequence of algorithm states, one per
// inner step. It is an unbounded generator: termination is decided by
// the consumer, and a sequence is restarted only by constructing a
// fresh Iterator.
type Iterator[T vec.Scalar] struct {
	x0      []T // the originally supplied initial point, never copied
	rule    rule[T]
	sampler *sampling.Sampler
	batch   []int
	steps   int
}

// NewIterator validates the configuration, builds the algorithm state
// from the initial point and the N component functions, and returns
// the iterator positioned before the first step.
func NewIterator[T vec.Scalar](x0 []T, comps []Component[T], reg Regularizer[T], opts Options) (*Iterator[T], error) {
	opts.withDefaults()

	n := len(x0)
	bigN := len(comps)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty initial point", ErrDimension)
	}
	if bigN == 0 {
		return nil, fmt.Errorf("%w: no component functions", ErrConfiguration)
	}
	if reg == nil {
		return nil, fmt.Errorf("%w: nil regularizer", ErrConfiguration)
	}
	for i, c := range comps {
		if d, ok := c.(Dimensioner); ok && d.Dim() != n {
			return nil, fmt.Errorf("%w: component %d has dimension %d, iterate has %d", ErrDimension, i, d.Dim(), n)
		}
	}
	if err := checkMethodOptions(opts); err != nil {
		return nil, err
	}

	smp, err := sampling.New(bigN, sampling.Config{
		Strategy:      opts.Sweeping.strategy(),
		Batch:         opts.Batch,
		NoReplacement: opts.NoReplacement,
		Seed:          opts.Seed,
		Rand:          opts.Rand,
	})
	if err != nil {
		return nil, configErr(err)
	}

	var r rule[T]
	switch opts.Method {
	case Finito:
		if opts.LowMemory {
			r, err = newLowMemFinito(x0, comps, reg, opts)
		} else {
			r, err = newFinito(x0, comps, reg, opts)
		}
	case SAGA:
		r, err = newSAGA(x0, comps, reg, opts)
	case SAG:
		r, err = newSAG(x0, comps, reg, opts)
	case SVRG:
		r, err = newSVRG(x0, comps, reg, opts)
	default:
		err = fmt.Errorf("%w: unknown method %d", ErrConfiguration, opts.Method)
	}
	if err != nil {
		return nil, err
	}

	return &Iterator[T]{
		x0:      x0,
		rule:    r,
		sampler: smp,
		batch:   make([]int, 0, opts.Batch),
	}, nil
}

// checkMethodOptions rejects option combinations that only make sense
// for a different update rule.
func checkMethodOptions(opts Options) error {
	if opts.Method != Finito {
		if opts.LowMemory {
			return fmt.Errorf("%w: LowMemory is specific to Finito", ErrConfiguration)
		}
		if opts.Adaptive {
			return fmt.Errorf("%w: Adaptive is specific to Finito", ErrConfiguration)
		}
		if len(opts.GammaBlocks) > 0 {
			return fmt.Errorf("%w: GammaBlocks is specific to Finito", ErrConfiguration)
		}
	}
	if opts.Method != SVRG {
		if opts.InnerSteps != 0 {
			return fmt.Errorf("%w: InnerSteps is specific to SVRG", ErrConfiguration)
		}
		if opts.Plus {
			return fmt.Errorf("%w: Plus is specific to SVRG", ErrConfiguration)
		}
	}
	if opts.Adaptive && (opts.Gamma != 0 || len(opts.GammaBlocks) > 0) {
		return fmt.Errorf("%w: Adaptive excludes explicit step sizes", ErrConfiguration)
	}
	if opts.LowMemory {
		if opts.Sweeping == Randomized {
			return fmt.Errorf("%w: LowMemory Finito requires Cyclic or Shuffled sweeping", ErrConfiguration)
		}
		if opts.Adaptive {
			return fmt.Errorf("%w: LowMemory Finito does not support Adaptive steps", ErrConfiguration)
		}
	}
	return nil
}

// Next advances the sequence by one inner step and returns the new
// state. The returned State shares storage with the iterator; it is
// valid until the next call to Next.
func (it *Iterator[T]) Next() (State[T], error) {
	it.batch = it.sampler.Next(it.batch)
	if err := it.rule.advance(it.batch); err != nil {
		return nil, err
	}
	it.steps++
	return (*iterState[T])(it), nil
}

// X0 returns the initial point exactly as supplied at construction,
// for diagnostic comparison against later states.
func (it *Iterator[T]) X0() []T { return it.x0 }

// Steps returns the number of inner steps taken so far.
func (it *Iterator[T]) Steps() int { return it.steps }

// iterState adapts the iterator to the State interface. States are
// reused in place rather than allocated per step.
type iterState[T vec.Scalar] Iterator[T]

func (s *iterState[T]) Solution() []T     { return s.rule.solution() }
func (s *iterState[T]) Residual() float64 { return s.rule.residual() }
func (s *iterState[T]) Epoch() int        { return s.rule.epoch() }
func (s *iterState[T]) Step() int         { return s.steps }
