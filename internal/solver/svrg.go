package solver

import (
	"fmt"

	"github.com/finsum-ml/finsum/internal/stepsize"
	"github.com/finsum-ml/finsum/internal/vec"
)

// svrgDefaultFraction is the conventional SVRG step 1/(7·max L).
const svrgDefaultFraction = 1.0 / 7.0

// svrgRule implements SVRG. An outer epoch holds a snapshot point x̄
// and its full gradient average g_full = (1/N)·Σ ∇f_i(x̄), computed
// once per epoch; the inner loop of m steps uses the direction
//
//	d = mean_batch(∇f_i(x) - ∇f_i(x̄)) + g_full
//
// and x⁺ = prox_g(x - γ·d, γ). At the epoch boundary the snapshot is
// refreshed to the latest inner iterate, or to the epoch average under
// the "++" schedule, which additionally doubles m each epoch.
type svrgRule[T vec.Scalar] struct {
	comps []Component[T]
	reg   Regularizer[T]
	n, N  int
	gamma float64
	m     int
	plus  bool

	x     []T
	snap  []T // snapshot point x̄, the solution view
	gfull []T

	xNext    []T
	scratch  []T
	grad     []T
	gradSnap []T
	dir      []T

	avgSum   []T // Σ of inner iterates, "++" refresh only
	avgCount int

	inner  int
	epochs int
	res    float64
}

func newSVRG[T vec.Scalar](x0 []T, comps []Component[T], reg Regularizer[T], opts Options) (*svrgRule[T], error) {
	gamma, err := stepsize.Scalar(stepsizeConfig(opts, comps), svrgDefaultFraction)
	if err != nil {
		return nil, configErr(err)
	}
	m := opts.InnerSteps
	if m == 0 {
		m = len(comps)
	}
	if m < 0 {
		return nil, fmt.Errorf("%w: negative inner-loop length %d", ErrConfiguration, m)
	}
	r := &svrgRule[T]{
		comps:    comps,
		reg:      reg,
		n:        len(x0),
		N:        len(comps),
		gamma:    gamma,
		m:        m,
		plus:     opts.Plus,
		x:        vec.Clone(x0),
		snap:     vec.Clone(x0),
		gfull:    make([]T, len(x0)),
		xNext:    make([]T, len(x0)),
		scratch:  make([]T, len(x0)),
		grad:     make([]T, len(x0)),
		gradSnap: make([]T, len(x0)),
		dir:      make([]T, len(x0)),
	}
	if r.plus {
		r.avgSum = make([]T, len(x0))
	}
	r.fullGradient()
	return r, nil
}

// fullGradient recomputes g_full at the current snapshot. O(N) cost,
// once per epoch.
func (r *svrgRule[T]) fullGradient() {
	vec.Zero(r.gfull)
	for i := 0; i < r.N; i++ {
		r.comps[i].Gradient(r.grad, r.snap)
		for j := range r.gfull {
			r.gfull[j] += r.grad[j]
		}
	}
	vec.Scale(r.gfull, 1.0/float64(r.N), r.gfull)
}

// refresh moves the snapshot forward and starts a new epoch.
func (r *svrgRule[T]) refresh() {
	if r.plus && r.avgCount > 0 {
		vec.Scale(r.snap, 1.0/float64(r.avgCount), r.avgSum)
		vec.Zero(r.avgSum)
		r.avgCount = 0
		r.m *= 2
	} else {
		copy(r.snap, r.x)
	}
	r.fullGradient()
	r.inner = 0
	r.epochs++
}

func (r *svrgRule[T]) advance(batch []int) error {
	if r.inner == r.m {
		r.refresh()
	}
	copy(r.dir, r.gfull)
	invB := vec.FromReal[T](1.0 / float64(len(batch)))
	for _, i := range batch {
		r.comps[i].Gradient(r.grad, r.x)
		r.comps[i].Gradient(r.gradSnap, r.snap)
		for j := range r.dir {
			r.dir[j] += invB * (r.grad[j] - r.gradSnap[j])
		}
	}
	vec.AddScaledTo(r.scratch, r.x, -r.gamma, r.dir)
	r.reg.Prox(r.xNext, r.scratch, r.gamma)
	r.res = vec.Distance(r.xNext, r.x)
	r.x, r.xNext = r.xNext, r.x

	if r.plus {
		for j := range r.avgSum {
			r.avgSum[j] += r.x[j]
		}
		r.avgCount++
	}
	r.inner++
	return nil
}

func (r *svrgRule[T]) solution() []T     { return r.snap }
func (r *svrgRule[T]) residual() float64 { return r.res }
func (r *svrgRule[T]) epoch() int        { return r.epochs }
