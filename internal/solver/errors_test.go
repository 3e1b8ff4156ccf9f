package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsum-ml/finsum/internal/vec"
)

func newBlindFixture() ([]Component[float64], l1Reg[float64]) {
	comps, reg, _ := lassoFixture[float64]()
	blind := make([]Component[float64], len(comps))
	for i, c := range comps {
		blind[i] = noLipRow[float64]{c.(*lsRow[float64])}
	}
	return blind, reg
}

func TestNewIterator_NoStepsizeSource(t *testing.T) {
	blind, reg := newBlindFixture()
	for _, method := range []Method{Finito, SAGA, SAG, SVRG} {
		t.Run(method.String(), func(t *testing.T) {
			_, err := NewIterator([]float64{0, 0, 0}, blind, reg, Options{Method: method})
			require.ErrorIs(t, err, ErrConfiguration)
			assert.Contains(t, err.Error(), "stepsize")
		})
	}
}

func TestNewIterator_GammaResolvesWithoutLipschitz(t *testing.T) {
	blind, reg := newBlindFixture()
	_, err := NewIterator([]float64{0, 0, 0}, blind, reg, Options{Method: SAGA, Gamma: 0.01})
	require.NoError(t, err)
}

func TestNewIterator_EmptyInitialPoint(t *testing.T) {
	comps, reg, _ := lassoFixture[float64]()
	_, err := NewIterator(nil, comps, reg, Options{})
	require.ErrorIs(t, err, ErrDimension)
}

func TestNewIterator_NoComponents(t *testing.T) {
	_, reg, _ := lassoFixture[float64]()
	_, err := NewIterator([]float64{0}, nil, reg, Options{})
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestNewIterator_NilRegularizer(t *testing.T) {
	comps, _, _ := lassoFixture[float64]()
	_, err := NewIterator([]float64{0, 0, 0}, comps, nil, Options{})
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestNewIterator_DimensionMismatch(t *testing.T) {
	comps, reg, _ := lassoFixture[float64]() // components expect dimension 3
	_, err := NewIterator([]float64{0, 0}, comps, reg, Options{})
	require.ErrorIs(t, err, ErrDimension)
	assert.Contains(t, err.Error(), "dimension")
}

func TestNewIterator_MethodSpecificOptions(t *testing.T) {
	comps, reg, _ := lassoFixture[float64]()
	cases := []struct {
		name string
		opts Options
	}{
		{"low_memory_saga", Options{Method: SAGA, LowMemory: true}},
		{"adaptive_svrg", Options{Method: SVRG, Adaptive: true}},
		{"gamma_blocks_sag", Options{Method: SAG, GammaBlocks: []float64{1, 1, 1, 1, 1, 1}}},
		{"inner_steps_finito", Options{Method: Finito, InnerSteps: 5}},
		{"plus_saga", Options{Method: SAGA, Plus: true}},
		{"adaptive_with_gamma", Options{Method: Finito, Adaptive: true, Gamma: 0.1}},
		{"adaptive_with_blocks", Options{Method: Finito, Adaptive: true, GammaBlocks: []float64{1, 1, 1, 1, 1, 1}}},
		{"low_memory_randomized", Options{Method: Finito, LowMemory: true, Sweeping: Randomized}},
		{"low_memory_adaptive", Options{Method: Finito, LowMemory: true, Adaptive: true, Sweeping: Cyclic}},
		{"unknown_method", Options{Method: Method(99)}},
		{"negative_inner_steps", Options{Method: SVRG, InnerSteps: -3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewIterator([]float64{0, 0, 0}, comps, reg, tc.opts)
			require.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestNewIterator_BadSamplingConfig(t *testing.T) {
	comps, reg, _ := lassoFixture[float64]()
	_, err := NewIterator([]float64{0, 0, 0}, comps, reg, Options{Batch: 7}) // batch > N = 6
	require.ErrorIs(t, err, ErrConfiguration)

	_, err = NewIterator([]float64{0, 0, 0}, comps, reg, Options{Sweeping: Sweeping(42)})
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestNewIterator_GammaBlocksWrongLength(t *testing.T) {
	comps, reg, _ := lassoFixture[float64]()
	_, err := NewIterator([]float64{0, 0, 0}, comps, reg, Options{
		Method:      Finito,
		GammaBlocks: []float64{1, 2},
	})
	require.ErrorIs(t, err, ErrConfiguration)
}

// lyingComponent reports an enormous value with a vanishing gradient,
// so no finite Lipschitz estimate can ever majorize it.
type lyingComponent struct{ dim int }

func (c lyingComponent) Value(x []float64) float64 {
	for _, v := range x {
		if v != 0 {
			return 1e300
		}
	}
	return 0
}

func (c lyingComponent) Gradient(dst, x []float64) float64 {
	vec.Zero(dst)
	if c.Value(x) != 0 {
		return 1e300
	}
	// Push the iterate off the origin so the next evaluation lands in
	// the discontinuity.
	dst[0] = -1
	return 0
}

func (c lyingComponent) Dim() int { return c.dim }

// zeroReg is the identity prox, g ≡ 0.
type zeroReg struct{}

func (zeroReg) Prox(dst, x []float64, gamma float64) float64 {
	copy(dst, x)
	return 0
}

// TestAdaptive_BacktrackingBudgetExhausted drives the adaptive search
// against a discontinuous component until the doubling budget runs out.
func TestAdaptive_BacktrackingBudgetExhausted(t *testing.T) {
	comps := []Component[float64]{lyingComponent{dim: 2}}
	it, err := NewIterator([]float64{0, 0}, comps, zeroReg{}, Options{
		Method:   Finito,
		Adaptive: true,
		Sweeping: Cyclic,
	})
	require.NoError(t, err)

	var stepErr error
	for k := 0; k < 5 && stepErr == nil; k++ {
		_, stepErr = it.Next()
	}
	require.ErrorIs(t, stepErr, ErrNumericDomain)
}
