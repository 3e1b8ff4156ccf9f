package solver

import (
	"github.com/finsum-ml/finsum/internal/stepsize"
	"github.com/finsum-ml/finsum/internal/vec"
)

// sagaDefaultFraction is the conventional SAGA step 1/(3·max L).
const sagaDefaultFraction = 1.0 / 3.0

// sagaRule implements SAGA: a gradient table g_i with running sum
// G = Σ g_i, and the unbiased variance-reduced direction
//
//	d = mean_batch(∇f_i(x) - g_i) + G/N
//
// followed by x⁺ = prox_g(x - γ·d, γ). The aggregate is maintained by
// replacing only the touched entries.
type sagaRule[T vec.Scalar] struct {
	comps []Component[T]
	reg   Regularizer[T]
	n, N  int
	gamma float64

	g [][]T // gradient table
	G []T   // Σ g_i

	x       []T
	xNext   []T
	scratch []T
	grad    []T
	dir     []T

	res   float64
	slots int
}

func newSAGA[T vec.Scalar](x0 []T, comps []Component[T], reg Regularizer[T], opts Options) (*sagaRule[T], error) {
	gamma, err := stepsize.Scalar(stepsizeConfig(opts, comps), sagaDefaultFraction)
	if err != nil {
		return nil, configErr(err)
	}
	r := &sagaRule[T]{
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

func (r *sagaRule[T]) advance(batch []int) error {
	// G/N first: the correction term uses the aggregate as it stood
	// before this step's table refresh.
	vec.Scale(r.dir, 1.0/float64(r.N), r.G)
	invB := vec.FromReal[T](1.0 / float64(len(batch)))
	for _, i := range batch {
		r.comps[i].Gradient(r.grad, r.x)
		gi := r.g[i]
		for j := range r.grad {
			delta := r.grad[j] - gi[j]
			r.dir[j] += invB * delta
			r.G[j] += delta
			gi[j] = r.grad[j]
		}
	}
	vec.AddScaledTo(r.scratch, r.x, -r.gamma, r.dir)
	r.reg.Prox(r.xNext, r.scratch, r.gamma)
	r.res = vec.Distance(r.xNext, r.x)
	r.x, r.xNext = r.xNext, r.x
	r.slots += len(batch)
	return nil
}

func (r *sagaRule[T]) solution() []T     { return r.x }
func (r *sagaRule[T]) residual() float64 { return r.res }
func (r *sagaRule[T]) epoch() int        { return r.slots / r.N }
