// Package problems builds optimization test problems for the finsum
// solvers. It lives outside the algorithmic core: solvers consume its
// output only through the Component/Regularizer interfaces.
package problems

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/finsum-ml/finsum/internal/solver"
	"github.com/finsum-ml/finsum/internal/vec"
)

// LeastSquares is one row of a linear least-squares problem,
//
//	f(x) = ½·|⟨a, x⟩ - b|²,
//
// with ⟨a, x⟩ = Σ conj(a_j)·x_j. Its gradient Lipschitz constant is
// ‖a‖².
type LeastSquares[T vec.Scalar] struct {
	a   []T
	b   T
	lip float64
}

// NewLeastSquares builds a component from a row a and observation b.
func NewLeastSquares[T vec.Scalar](a []T, b T) *LeastSquares[T] {
	return &LeastSquares[T]{a: vec.Clone(a), b: b, lip: vec.SqNorm(a)}
}

// Value returns ½|⟨a,x⟩-b|².
func (c *LeastSquares[T]) Value(x []T) float64 {
	r := vec.DotConj(c.a, x) - c.b
	ar := vec.Abs(r)
	return 0.5 * ar * ar
}

// Gradient writes r·a into dst, with r = ⟨a,x⟩-b, and returns the value.
func (c *LeastSquares[T]) Gradient(dst, x []T) float64 {
	r := vec.DotConj(c.a, x) - c.b
	for j := range dst {
		dst[j] = c.a[j] * r
	}
	ar := vec.Abs(r)
	return 0.5 * ar * ar
}

// Lipschitz returns ‖a‖².
func (c *LeastSquares[T]) Lipschitz() float64 { return c.lip }

// Dim returns the expected iterate dimension.
func (c *LeastSquares[T]) Dim() int { return len(c.a) }

// L1 is the regularizer g(x) = λ·‖x‖₁, with the magnitude
// soft-threshold as its proximal operator. For complex scalars the
// threshold acts on the modulus and preserves the phase.
type L1[T vec.Scalar] struct {
	Lambda float64
}

// Prox writes the soft-threshold of x with level γλ into dst and
// returns g at the proximal point.
func (l L1[T]) Prox(dst, x []T, gamma float64) float64 {
	tau := gamma * l.Lambda
	var val float64
	var zero T
	for j := range x {
		m := vec.Abs(x[j])
		if m <= tau {
			dst[j] = zero
			continue
		}
		dst[j] = x[j] * vec.FromReal[T](1-tau/m)
		val += m - tau
	}
	return l.Lambda * val
}

// Value returns λ‖x‖₁.
func (l L1[T]) Value(x []T) float64 {
	var s float64
	for _, v := range x {
		s += vec.Abs(v)
	}
	return l.Lambda * s
}

// FromRows assembles a Lasso instance
//
//	minimize (1/N)·Σ ½|⟨a_i,x⟩-b_i|² + λ‖x‖₁
//
// from explicit rows. Rows and observations must agree in count.
func FromRows[T vec.Scalar](rows [][]T, b []T, lambda float64) ([]solver.Component[T], L1[T]) {
	comps := make([]solver.Component[T], len(rows))
	for i, row := range rows {
		comps[i] = NewLeastSquares(row, b[i])
	}
	return comps, L1[T]{Lambda: lambda}
}

// FromMatrix assembles a Lasso instance from a dense design matrix,
// one component per row of a.
func FromMatrix(a *mat.Dense, b []float64, lambda float64) ([]solver.Component[float64], L1[float64]) {
	rows, _ := a.Dims()
	comps := make([]solver.Component[float64], rows)
	for i := 0; i < rows; i++ {
		comps[i] = NewLeastSquares(mat.Row(nil, i, a), b[i])
	}
	return comps, L1[float64]{Lambda: lambda}
}

// Random draws a dense standard-Gaussian Lasso instance with N rows
// and n unknowns.
func Random(seed uint64, bigN, n int, lambda float64) ([]solver.Component[float64], L1[float64]) {
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}
	a := mat.NewDense(bigN, n, nil)
	b := make([]float64, bigN)
	for i := 0; i < bigN; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, norm.Rand())
		}
		b[i] = norm.Rand()
	}
	return FromMatrix(a, b, lambda)
}
