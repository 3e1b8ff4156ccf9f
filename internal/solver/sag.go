package solver

import (
	"github.com/finsum-ml/finsum/internal/stepsize"
	"github.com/finsum-ml/finsum/internal/vec"
)

// sagDefaultFraction is the conventional SAG step 1/(16·max L).
const sagDefaultFraction = 1.0 / 16.0

// sagRule implements SAG. It shares SAGA's table/aggregate structure
// but drops the per-draw correction: after refreshing the touched
// entries the direction is simply the table average G/N.
//
// The resulting gradient estimator is biased, and for the proximal
// (nonsmooth) case this scheme carries no theoretical convergence
// guarantee. That behavior is intentional and preserved as-is; do not
// "fix" it towards SAGA's corrected estimator.
type sagRule[T vec.Scalar] struct {
	comps []Component[T]
	reg   Regularizer[T]
	n, N  int
	gamma float64

	g [][]T
	G []T

	x       []T
	xNext   []T
	scratch []T
	grad    []T
	dir     []T

	res   float64
	slots int
}

func newSAG[T vec.Scalar](x0 []T, comps []Component[T], reg Regularizer[T], opts Options) (*sagRule[T], error) {
	gamma, err := stepsize.Scalar(stepsizeConfig(opts, comps), sagDefaultFraction)
	if err != nil {
		return nil, configErr(err)
	}
	r := &sagRule[T]{
		comps:   comps,
		reg:     reg,
		n:       len(x0),
		N:       len(comps),
		gamma:   gamma,
		x:       vec.Clone(x0),
		xNext:   make([]T, len(x0)),
		scratch: make([]T, len(x0)),
		grad:    make([]T, len(x0)),
		dir:     make([]T, len(x0)),
		G:       make([]T, len(x0)),
		g:       make([][]T, len(comps)),
	}
	for i := range r.g {
		gi := make([]T, r.n)
		r.comps[i].Gradient(gi, x0)
		for j := range gi {
			r.G[j] += gi[j]
		}
		r.g[i] = gi
	}
	return r, nil
}

func (r *sagRule[T]) advance(batch []int) error {
	for _, i := range batch {
		r.comps[i].Gradient(r.grad, r.x)
		gi := r.g[i]
		for j := range r.grad {
			r.G[j] += r.grad[j] - gi[j]
			gi[j] = r.grad[j]
		}
	}
	vec.Scale(r.dir, 1.0/float64(r.N), r.G)
	vec.AddScaledTo(r.scratch, r.x, -r.gamma, r.dir)
	r.reg.Prox(r.xNext, r.scratch, r.gamma)
	r.res = vec.Distance(r.xNext, r.x)
	r.x, r.xNext = r.xNext, r.x
	r.slots += len(batch)
	return nil
}

func (r *sagRule[T]) solution() []T     { return r.x }
func (r *sagRule[T]) residual() float64 { return r.res }
func (r *sagRule[T]) epoch() int        { return r.slots / r.N }
