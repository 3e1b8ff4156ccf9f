// Package stepsize resolves step sizes for the incremental solvers
// from one of three sources: an explicit γ, supplied Lipschitz
// constants, or an adaptive backtracking estimate.
package stepsize

import (
	"errors"
	"fmt"
)

// ErrNoSource reports that neither γ nor Lipschitz data was supplied
// and adaptive estimation is disabled.
var ErrNoSource = errors.New("stepsize: no γ, no Lipschitz data, and adaptive estimation disabled")

// ErrSearchFailed reports that the backtracking search exhausted its
// doubling budget without finding a valid Lipschitz estimate.
var ErrSearchFailed = errors.New("stepsize: backtracking search failed to find a valid Lipschitz estimate")

// Config holds the user-facing stepsize inputs. The three sources are
// mutually exclusive in priority order: Gamma, Lipschitz, Adaptive.
type Config struct {
	Gamma     float64   // explicit scalar step
	Lipschitz []float64 // len 1 (shared) or one per component
	Adaptive  bool
}

// Scalar resolves a single shared step size γ = frac/max(L) from the
// configuration, where frac is the algorithm's conventional fraction
// (e.g. 1/3 for SAGA). An explicit Gamma takes precedence.
func Scalar(cfg Config, frac float64) (float64, error) {
	if cfg.Gamma != 0 {
		if cfg.Gamma < 0 {
			return 0, fmt.Errorf("stepsize: negative γ %v", cfg.Gamma)
		}
		return cfg.Gamma, nil
	}
	if len(cfg.Lipschitz) > 0 {
		l, err := MaxLipschitz(cfg.Lipschitz)
		if err != nil {
			return 0, err
		}
		return frac / l, nil
	}
	return 0, ErrNoSource
}

// MaxLipschitz validates the supplied constants and returns their maximum.
func MaxLipschitz(lips []float64) (float64, error) {
	var m float64
	for i, l := range lips {
		if l <= 0 {
			return 0, fmt.Errorf("stepsize: non-positive Lipschitz constant %v at index %d", l, i)
		}
		if l > m {
			m = l
		}
	}
	return m, nil
}

// PerComponent resolves one step size per component for the Finito
// family: explicit per-block γ_i, a shared explicit γ, or γ_i = n/L_i
// from Lipschitz data.
func PerComponent(n int, cfg Config, blocks []float64) ([]float64, error) {
	out := make([]float64, n)
	switch {
	case len(blocks) > 0:
		if len(blocks) != n {
			return nil, fmt.Errorf("stepsize: got %d per-block steps, want %d", len(blocks), n)
		}
		for i, g := range blocks {
			if g <= 0 {
				return nil, fmt.Errorf("stepsize: non-positive per-block step %v at index %d", g, i)
			}
			out[i] = g
		}
	case cfg.Gamma != 0:
		if cfg.Gamma < 0 {
			return nil, fmt.Errorf("stepsize: negative γ %v", cfg.Gamma)
		}
		for i := range out {
			out[i] = cfg.Gamma
		}
	case len(cfg.Lipschitz) == 1:
		l, err := MaxLipschitz(cfg.Lipschitz)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i] = float64(n) / l
		}
	case len(cfg.Lipschitz) == n:
		for i, l := range cfg.Lipschitz {
			if l <= 0 {
				return nil, fmt.Errorf("stepsize: non-positive Lipschitz constant %v at index %d", l, i)
			}
			out[i] = float64(n) / l
		}
	case len(cfg.Lipschitz) != 0:
		return nil, fmt.Errorf("stepsize: got %d Lipschitz constants, want 1 or %d", len(cfg.Lipschitz), n)
	default:
		return nil, ErrNoSource
	}
	return out, nil
}

// Backtrack maintains per-component Lipschitz estimates for the
// adaptive variant. Estimates only ever grow within a run: each failed
// majorization check doubles the offending estimate, shrinking the
// implied step, until the check passes or the doubling budget runs out.
type Backtrack struct {
	lips    []float64
	budget  int
	slack   float64 // absolute slack for the majorization check
	doubled int     // doublings consumed in the current step
}

// NewBacktrack creates an estimator seeded with initial per-component
// estimates. budget bounds the doublings allowed within a single step;
// a zero budget selects the default of 60.
func NewBacktrack(initial []float64, budget int) (*Backtrack, error) {
	if budget == 0 {
		budget = 60
	}
	lips := make([]float64, len(initial))
	for i, l := range initial {
		if l <= 0 {
			return nil, fmt.Errorf("stepsize: non-positive initial Lipschitz estimate %v at index %d", l, i)
		}
		lips[i] = l
	}
	return &Backtrack{lips: lips, budget: budget, slack: 1e-10}, nil
}

// Lipschitz returns the current estimate for component i.
func (b *Backtrack) Lipschitz(i int) float64 { return b.lips[i] }

// BeginStep resets the per-step doubling budget.
func (b *Backtrack) BeginStep() { b.doubled = 0 }

// Holds reports whether the quadratic majorization
//
//	f(x⁺) ≤ f(x) + Re⟨∇f(x), x⁺-x⟩ + L/2·‖x⁺-x‖²
//
// is satisfied for component i, given the two function values, the
// linearization term Re⟨∇f(x), x⁺-x⟩ and the squared distance.
func (b *Backtrack) Holds(i int, fNew, fOld, linear, sqDist float64) bool {
	return fNew <= fOld+linear+0.5*b.lips[i]*sqDist+b.slack
}

// Double doubles the estimate for component i. It fails once the
// per-step budget is exhausted, which signals a numeric domain problem
// in the supplied oracles rather than a solvable configuration issue.
func (b *Backtrack) Double(i int) error {
	if b.doubled >= b.budget {
		return fmt.Errorf("%w: component %d exceeded %d doublings", ErrSearchFailed, i, b.budget)
	}
	b.doubled++
	b.lips[i] *= 2
	return nil
}
