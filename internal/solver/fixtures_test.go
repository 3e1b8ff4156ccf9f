package solver

import (
	"github.com/finsum-ml/finsum/internal/vec"
)

// lsRow is a single least-squares component ½|⟨a,x⟩-b|², defined
// locally so the white-box tests do not depend on the problems
// package.
type lsRow[T vec.Scalar] struct {
	a   []T
	b   T
	lip float64
}

func newRow[T vec.Scalar](a []T, b T) *lsRow[T] {
	return &lsRow[T]{a: a, b: b, lip: vec.SqNorm(a)}
}

func (c *lsRow[T]) Value(x []T) float64 {
	r := vec.DotConj(c.a, x) - c.b
	ar := vec.Abs(r)
	return 0.5 * ar * ar
}

func (c *lsRow[T]) Gradient(dst, x []T) float64 {
	r := vec.DotConj(c.a, x) - c.b
	for j := range dst {
		dst[j] = c.a[j] * r
	}
	ar := vec.Abs(r)
	return 0.5 * ar * ar
}

func (c *lsRow[T]) Lipschitz() float64 { return c.lip }
func (c *lsRow[T]) Dim() int           { return len(c.a) }

// noLipRow hides the Lipschitz estimate, for configuration-error tests.
type noLipRow[T vec.Scalar] struct{ *lsRow[T] }

func (c noLipRow[T]) Lipschitz() float64 { return 0 }

// l1Reg is λ‖x‖₁ with the magnitude soft-threshold prox.
type l1Reg[T vec.Scalar] struct{ lam float64 }

func (l l1Reg[T]) Prox(dst, x []T, gamma float64) float64 {
	tau := gamma * l.lam
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
	return l.lam * val
}

func (l l1Reg[T]) Value(x []T) float64 {
	var s float64
	for _, v := range x {
		s += vec.Abs(v)
	}
	return l.lam * s
}

// lassoFixture builds a 6-component, 3-dimensional Lasso instance with
// an orthogonal design, so the optimum has the closed form of a
// coordinate-wise soft threshold:
//
//	x* = (1.1, 0, -1.5)
//
// Row i acts on coordinate i mod 3 with scale 2 (first three rows) or
// 1 (last three), giving per-coordinate curvature 5/6 and component
// Lipschitz constants 4 and 1.
func lassoFixture[T vec.Scalar]() (comps []Component[T], reg l1Reg[T], xstar []T) {
	scales := []float64{2, 2, 2, 1, 1, 1}
	rhs := []float64{3, 0.5, -4, 1, 0.1, -1}
	comps = make([]Component[T], 6)
	for i := range comps {
		a := make([]T, 3)
		a[i%3] = vec.FromReal[T](scales[i])
		comps[i] = newRow(a, vec.FromReal[T](rhs[i]))
	}
	reg = l1Reg[T]{lam: 0.25}
	xstar = []T{vec.FromReal[T](1.1), vec.FromReal[T](0), vec.FromReal[T](-1.5)}
	return comps, reg, xstar
}

// fixtureGap returns objective(x) - objective(x*) for the fixture.
func fixtureGap[T vec.Scalar](comps []Component[T], reg l1Reg[T], x, xstar []T) float64 {
	return Objective[T](comps, reg, x) - Objective[T](comps, reg, xstar)
}
