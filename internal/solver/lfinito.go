package solver

import (
	"github.com/finsum-ml/finsum/internal/stepsize"
	"github.com/finsum-ml/finsum/internal/vec"
)

// lowMemFinito is the limited-memory Finito variant. Instead of a
// per-component surrogate table it anchors every entry at the point
// where the current epoch started: the aggregate is rebuilt in one
// pass at the anchor, and during the sweep the stale contribution of a
// visited component is reconstructed on demand by re-evaluating its
// gradient at the anchor. Memory drops from O(N·n) to O(n) plus the
// active minibatch, at the price of one extra gradient evaluation per
// touched component.
//
// Reconstruction relies on every index being visited exactly once per
// epoch, so this variant requires cyclic or shuffled sweeping.
type lowMemFinito[T vec.Scalar] struct {
	comps []Component[T]
	reg   Regularizer[T]
	n, N  int

	gam    []float64
	sumInv float64
	hat    float64

	anchor []T // epoch anchor point x̄
	m      []T // mixed weighted aggregate for the running epoch

	x       []T
	xNext   []T
	scratch []T
	grad    []T
	gradAnc []T

	res     float64
	visited int // index slots consumed in the current epoch
	epochs  int
}

func newLowMemFinito[T vec.Scalar](x0 []T, comps []Component[T], reg Regularizer[T], opts Options) (*lowMemFinito[T], error) {
	n, bigN := len(x0), len(comps)
	gam, err := stepsize.PerComponent(bigN, stepsizeConfig(opts, comps), opts.GammaBlocks)
	if err != nil {
		return nil, configErr(err)
	}

	r := &lowMemFinito[T]{
		comps:   comps,
		reg:     reg,
		n:       n,
		N:       bigN,
		gam:     gam,
		anchor:  vec.Clone(x0),
		m:       make([]T, n),
		x:       vec.Clone(x0),
		xNext:   make([]T, n),
		scratch: make([]T, n),
		grad:    make([]T, n),
		gradAnc: make([]T, n),
	}
	for _, g := range gam {
		r.sumInv += 1.0 / g
	}
	r.hat = 1.0 / r.sumInv
	r.rebuildAggregate()
	return r, nil
}

// rebuildAggregate recomputes m = Σ (z̄_i/γ_i) with every entry
// anchored at the current anchor point. One full pass, once per epoch.
func (r *lowMemFinito[T]) rebuildAggregate() {
	vec.Zero(r.m)
	for i := 0; i < r.N; i++ {
		r.comps[i].Gradient(r.grad, r.anchor)
		gi := r.gam[i]
		cg := vec.FromReal[T](gi / float64(r.N))
		cw := vec.FromReal[T](1.0 / gi)
		for j := range r.m {
			r.m[j] += cw * (r.anchor[j] - cg*r.grad[j])
		}
	}
}

func (r *lowMemFinito[T]) advance(batch []int) error {
	for _, i := range batch {
		r.comps[i].Gradient(r.grad, r.x)
		r.comps[i].Gradient(r.gradAnc, r.anchor)
		gi := r.gam[i]
		cg := vec.FromReal[T](gi / float64(r.N))
		cw := vec.FromReal[T](1.0 / gi)
		for j := range r.m {
			zNew := r.x[j] - cg*r.grad[j]
			zOld := r.anchor[j] - cg*r.gradAnc[j]
			r.m[j] += cw * (zNew - zOld)
		}
	}
	vec.Scale(r.scratch, r.hat, r.m)
	r.reg.Prox(r.xNext, r.scratch, r.hat)
	r.res = vec.Distance(r.xNext, r.x)
	r.x, r.xNext = r.xNext, r.x

	r.visited += len(batch)
	if r.visited >= r.N {
		r.visited = 0
		r.epochs++
		copy(r.anchor, r.x)
		r.rebuildAggregate()
	}
	return nil
}

func (r *lowMemFinito[T]) solution() []T     { return r.x }
func (r *lowMemFinito[T]) residual() float64 { return r.res }
func (r *lowMemFinito[T]) epoch() int        { return r.epochs }
