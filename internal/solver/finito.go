package solver

import (
	"fmt"
	"math"

	"github.com/finsum-ml/finsum/internal/stepsize"
	"github.com/finsum-ml/finsum/internal/vec"
)

// finitoRule implements the Finito/MISO update with a full surrogate
// table. Each component owns a surrogate point
//
//	z_i = φ_i - (γ_i/N)·∇f_i(φ_i)
//
// where φ_i is the iterate at which component i was last touched. The
// rule keeps the weighted aggregate s = Σ z_i/γ_i incrementally
// consistent with the table and produces
//
//	x⁺ = prox_g(γ̂·s, γ̂),  γ̂ = 1/Σ(1/γ_i),
//
// whose fixed points coincide with proximal-gradient fixed points.
// With the default γ_i = N/L_i this reduces to an effective step of
// 1/max(L) in the shared-constant case.
type finitoRule[T vec.Scalar] struct {
	comps []Component[T]
	reg   Regularizer[T]
	n, N  int

	gam    []float64 // per-component step γ_i
	wz     []float64 // weight 1/γ_i each table entry was inserted with
	sumInv float64   // Σ wz_i
	hat    float64   // 1/sumInv

	z [][]T // surrogate table
	s []T   // Σ wz_i·z_i

	x       []T
	xNext   []T
	scratch []T
	grad    []T

	bt *stepsize.Backtrack // non-nil for the adaptive variant

	// adaptive per-step scratch, sized to the batch
	zB    [][]T
	gradB [][]T
	gamB  []float64
	fOld  []float64
	sCand []T

	res   float64
	slots int // processed index slots, for epoch accounting
}

func newFinito[T vec.Scalar](x0 []T, comps []Component[T], reg Regularizer[T], opts Options) (*finitoRule[T], error) {
	n, bigN := len(x0), len(comps)
	cfg := stepsizeConfig(opts, comps)

	r := &finitoRule[T]{
		comps:   comps,
		reg:     reg,
		n:       n,
		N:       bigN,
		x:       vec.Clone(x0),
		xNext:   make([]T, n),
		scratch: make([]T, n),
		grad:    make([]T, n),
		s:       make([]T, n),
		wz:      make([]float64, bigN),
		z:       make([][]T, bigN),
	}

	if opts.Adaptive {
		lips := initialLipschitz(comps, x0, cfg)
		bt, err := stepsize.NewBacktrack(lips, 0)
		if err != nil {
			return nil, configErr(err)
		}
		r.bt = bt
		r.gam = make([]float64, bigN)
		for i := range r.gam {
			r.gam[i] = float64(bigN) / bt.Lipschitz(i)
		}
		batch := opts.Batch
		r.zB = make([][]T, batch)
		r.gradB = make([][]T, batch)
		for k := range r.zB {
			r.zB[k] = make([]T, n)
			r.gradB[k] = make([]T, n)
		}
		r.gamB = make([]float64, batch)
		r.fOld = make([]float64, batch)
		r.sCand = make([]T, n)
	} else {
		gam, err := stepsize.PerComponent(bigN, cfg, opts.GammaBlocks)
		if err != nil {
			return nil, configErr(err)
		}
		r.gam = gam
	}

	r.initTable(x0)
	return r, nil
}

// initTable fills the surrogate table at the initial point and
// computes the aggregate from scratch, the only time it ever is.
func (r *finitoRule[T]) initTable(x0 []T) {
	for i := range r.z {
		r.comps[i].Gradient(r.grad, x0)
		gi := r.gam[i]
		w := 1.0 / gi
		zi := make([]T, r.n)
		cg := vec.FromReal[T](gi / float64(r.N))
		cw := vec.FromReal[T](w)
		for j := range zi {
			zi[j] = x0[j] - cg*r.grad[j]
			r.s[j] += cw * zi[j]
		}
		r.z[i] = zi
		r.wz[i] = w
		r.sumInv += w
	}
	r.hat = 1.0 / r.sumInv
}

func (r *finitoRule[T]) advance(batch []int) error {
	if r.bt != nil {
		if err := r.adaptiveStep(batch); err != nil {
			return err
		}
	} else {
		r.plainStep(batch)
	}
	r.slots += len(batch)
	return nil
}

func (r *finitoRule[T]) plainStep(batch []int) {
	for _, i := range batch {
		r.comps[i].Gradient(r.grad, r.x)
		gi := r.gam[i]
		cg := vec.FromReal[T](gi / float64(r.N))
		cw := vec.FromReal[T](1.0 / gi)
		zi := r.z[i]
		for j := range r.x {
			zn := r.x[j] - cg*r.grad[j]
			r.s[j] += cw * (zn - zi[j])
			zi[j] = zn
		}
	}
	r.proxStep(r.s, r.hat)
}

// adaptiveStep wraps the Finito update in the backtracking search:
// the step is recomputed from scratch buffers and only committed once
// the majorization check passes for every sampled component.
func (r *finitoRule[T]) adaptiveStep(batch []int) error {
	batch = dedupe(batch)
	r.bt.BeginStep()
	for k, i := range batch {
		r.fOld[k] = r.comps[i].Gradient(r.gradB[k], r.x)
	}

	for {
		copy(r.sCand, r.s)
		sumInv := r.sumInv
		for k, i := range batch {
			gi := float64(r.N) / r.bt.Lipschitz(i)
			w := 1.0 / gi
			cg := vec.FromReal[T](gi / float64(r.N))
			cw := vec.FromReal[T](w)
			cwOld := vec.FromReal[T](r.wz[i])
			zb, zi, gb := r.zB[k], r.z[i], r.gradB[k]
			for j := range r.x {
				zb[j] = r.x[j] - cg*gb[j]
				r.sCand[j] += cw*zb[j] - cwOld*zi[j]
			}
			sumInv += w - r.wz[i]
			r.gamB[k] = gi
		}
		hat := 1.0 / sumInv
		vec.Scale(r.scratch, hat, r.sCand)
		r.reg.Prox(r.xNext, r.scratch, hat)

		sq := vec.SqDistance(r.xNext, r.x)
		ok := true
		for k, i := range batch {
			lin := vec.RealDotDiff(r.gradB[k], r.xNext, r.x)
			fNew := r.comps[i].Value(r.xNext)
			if !r.bt.Holds(i, fNew, r.fOld[k], lin, sq) {
				if err := r.bt.Double(i); err != nil {
					return fmt.Errorf("%w: %v", ErrNumericDomain, err)
				}
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		for k, i := range batch {
			copy(r.z[i], r.zB[k])
			r.gam[i] = r.gamB[k]
			r.wz[i] = 1.0 / r.gamB[k]
		}
		copy(r.s, r.sCand)
		r.sumInv = sumInv
		r.hat = hat
		r.res = math.Sqrt(sq)
		r.x, r.xNext = r.xNext, r.x
		return nil
	}
}

func (r *finitoRule[T]) proxStep(sum []T, hat float64) {
	vec.Scale(r.scratch, hat, sum)
	r.reg.Prox(r.xNext, r.scratch, hat)
	r.res = vec.Distance(r.xNext, r.x)
	r.x, r.xNext = r.xNext, r.x
}

func (r *finitoRule[T]) solution() []T     { return r.x }
func (r *finitoRule[T]) residual() float64 { return r.res }
func (r *finitoRule[T]) epoch() int        { return r.slots / r.N }

// dedupe drops repeated indices from a minibatch. Repeats arise only
// under randomized sampling with replacement, where replacing the same
// table entry twice at one iterate is equivalent to replacing it once.
func dedupe(batch []int) []int {
	out := batch[:0:len(batch)]
	for _, i := range batch {
		seen := false
		for _, j := range out {
			if i == j {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, i)
		}
	}
	return out
}

// initialLipschitz seeds the adaptive estimates from supplied
// Lipschitz data when present, otherwise from a one-shot secant probe
// of each component gradient around the initial point.
func initialLipschitz[T vec.Scalar](comps []Component[T], x0 []T, cfg stepsize.Config) []float64 {
	lips := make([]float64, len(comps))
	switch len(cfg.Lipschitz) {
	case len(comps):
		copy(lips, cfg.Lipschitz)
		return lips
	case 1:
		for i := range lips {
			lips[i] = cfg.Lipschitz[0]
		}
		return lips
	}

	delta := 1e-3 * (1 + vec.Norm(x0))
	xp := vec.Clone(x0)
	xp[0] += vec.FromReal[T](delta)
	g0 := make([]T, len(x0))
	g1 := make([]T, len(x0))
	for i, c := range comps {
		c.Gradient(g0, x0)
		c.Gradient(g1, xp)
		l := vec.Distance(g0, g1) / delta
		if l < 1e-12 {
			l = 1
		}
		lips[i] = l
	}
	return lips
}
