// Package problems provides ready-made optimization test problems for
// the finsum solvers, built around linear least squares with an L1
// regularizer (Lasso).
package problems

import (
	"gonum.org/v1/gonum/mat"

	"github.com/finsum-ml/finsum/internal/problems"
	"github.com/finsum-ml/finsum/internal/solver"
	"github.com/finsum-ml/finsum/internal/vec"
)

// LeastSquares is one least-squares row f(x) = ½|⟨a,x⟩-b|².
type LeastSquares[T vec.Scalar] = problems.LeastSquares[T]

// L1 is the regularizer g(x) = λ‖x‖₁.
type L1[T vec.Scalar] = problems.L1[T]

// NewLeastSquares builds a component from a row a and observation b.
func NewLeastSquares[T vec.Scalar](a []T, b T) *LeastSquares[T] {
	return problems.NewLeastSquares(a, b)
}

// FromRows assembles a Lasso instance from explicit rows.
func FromRows[T vec.Scalar](rows [][]T, b []T, lambda float64) ([]solver.Component[T], L1[T]) {
	return problems.FromRows(rows, b, lambda)
}

// FromMatrix assembles a Lasso instance from a dense design matrix.
func FromMatrix(a *mat.Dense, b []float64, lambda float64) ([]solver.Component[float64], L1[float64]) {
	return problems.FromMatrix(a, b, lambda)
}

// Random draws a dense standard-Gaussian Lasso instance.
func Random(seed uint64, n, dim int, lambda float64) ([]solver.Component[float64], L1[float64]) {
	return problems.Random(seed, n, dim, lambda)
}
