package vec

import (
	"math"
	"testing"
)

func almost(t *testing.T, got, want, eps float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

func TestNorm_Real(t *testing.T) {
	x := []float64{3, 4}
	almost(t, Norm(x), 5, 1e-12, "Norm")
	almost(t, SqNorm(x), 25, 1e-12, "SqNorm")
}

func TestNorm_Complex(t *testing.T) {
	x := []complex128{3 + 4i, 0}
	almost(t, Norm(x), 5, 1e-12, "Norm")

	y := []complex64{1i, 1}
	almost(t, SqNorm(y), 2, 1e-6, "SqNorm complex64")
}

func TestAddScaled(t *testing.T) {
	dst := []float64{1, 2}
	AddScaled(dst, 0.5, []float64{2, 4})
	almost(t, dst[0], 2, 1e-12, "dst[0]")
	almost(t, dst[1], 4, 1e-12, "dst[1]")

	out := make([]float64, 2)
	AddScaledTo(out, []float64{1, 1}, -1, []float64{3, 5})
	almost(t, out[0], -2, 1e-12, "out[0]")
	almost(t, out[1], -4, 1e-12, "out[1]")
}

func TestScale_Complex(t *testing.T) {
	dst := make([]complex128, 1)
	Scale(dst, 2, []complex128{1 + 1i})
	if dst[0] != 2+2i {
		t.Errorf("Scale: got %v, want (2+2i)", dst[0])
	}
}

func TestRealDot(t *testing.T) {
	// Re⟨x, y⟩ with conjugation: ⟨i, i⟩ = conj(i)·i = 1.
	x := []complex128{1i}
	y := []complex128{1i}
	almost(t, RealDot(x, y), 1, 1e-12, "RealDot conj")

	a := []float64{1, 2}
	b := []float64{3, -1}
	almost(t, RealDot(a, b), 1, 1e-12, "RealDot real")
}

func TestRealDotDiff(t *testing.T) {
	g := []float64{2, -1}
	a := []float64{1, 1}
	b := []float64{0, 3}
	almost(t, RealDotDiff(g, a, b), 2*1+(-1)*(-2), 1e-12, "RealDotDiff")
}

func TestDotConj(t *testing.T) {
	a := []complex128{1 + 1i}
	x := []complex128{1 - 1i}
	got := DotConj(a, x)
	// conj(1+i)·(1-i) = (1-i)² = -2i
	if got != -2i {
		t.Errorf("DotConj: got %v, want -2i", got)
	}
}

func TestFromReal(t *testing.T) {
	if v := FromReal[float32](1.5); v != 1.5 {
		t.Errorf("FromReal[float32]: got %v", v)
	}
	if v := FromReal[complex128](2); v != complex(2, 0) {
		t.Errorf("FromReal[complex128]: got %v", v)
	}
	if v := FromReal[complex64](-1); v != complex64(complex(-1, 0)) {
		t.Errorf("FromReal[complex64]: got %v", v)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	x := []float64{1, 2}
	y := Clone(x)
	y[0] = 9
	if x[0] != 1 {
		t.Error("Clone must not share storage with its input")
	}
}

func TestDistance(t *testing.T) {
	almost(t, Distance([]float64{0, 0}, []float64{3, 4}), 5, 1e-12, "Distance")
	almost(t, SqDistance([]complex128{1i}, []complex128{0}), 1, 1e-12, "SqDistance")
}

func TestAbsConj(t *testing.T) {
	almost(t, Abs(complex128(3+4i)), 5, 1e-12, "Abs")
	almost(t, Abs(float32(-2)), 2, 1e-6, "Abs real")
	if Conj(complex64(1+2i)) != complex64(1-2i) {
		t.Error("Conj complex64")
	}
	if Conj(2.5) != 2.5 {
		t.Error("Conj real passthrough")
	}
}
