// Package vec provides generic dense vector kernels for the finsum solvers.
package vec

import "math"

// Scalar is a constraint for supported iterate element types.
// Real and complex vectors share the same kernels; all stepsize and
// norm arithmetic is carried out in float64.
type Scalar interface {
	~float32 | ~float64 | ~complex64 | ~complex128
}

// FromReal lifts a real coefficient into the scalar type T.
func FromReal[T Scalar](v float64) T {
	var t T
	switch any(t).(type) {
	case float32:
		return any(float32(v)).(T)
	case float64:
		return any(v).(T)
	case complex64:
		return any(complex(float32(v), 0)).(T)
	case complex128:
		return any(complex(v, 0)).(T)
	default:
		panic("vec: unsupported scalar type")
	}
}

// Clone returns a freshly allocated copy of x.
func Clone[T Scalar](x []T) []T {
	out := make([]T, len(x))
	copy(out, x)
	return out
}

// Zero sets every element of x to zero.
func Zero[T Scalar](x []T) {
	var z T
	for i := range x {
		x[i] = z
	}
}

// AddScaled computes dst[i] += a*x[i] with a real coefficient a.
func AddScaled[T Scalar](dst []T, a float64, x []T) {
	c := FromReal[T](a)
	for i, v := range x {
		dst[i] += c * v
	}
}

// AddScaledTo computes dst[i] = y[i] + a*x[i] with a real coefficient a.
func AddScaledTo[T Scalar](dst []T, y []T, a float64, x []T) {
	c := FromReal[T](a)
	for i := range dst {
		dst[i] = y[i] + c*x[i]
	}
}

// Scale computes dst[i] = a*x[i] with a real coefficient a.
func Scale[T Scalar](dst []T, a float64, x []T) {
	c := FromReal[T](a)
	for i, v := range x {
		dst[i] = c * v
	}
}

// SqNorm returns the squared Euclidean norm of x.
func SqNorm[T Scalar](x []T) float64 {
	var s float64
	for _, v := range x {
		s += absSq(v)
	}
	return s
}

// Norm returns the Euclidean norm of x.
func Norm[T Scalar](x []T) float64 {
	return math.Sqrt(SqNorm(x))
}

// SqDistance returns the squared Euclidean distance between x and y.
func SqDistance[T Scalar](x, y []T) float64 {
	var s float64
	for i := range x {
		s += absSq(x[i] - y[i])
	}
	return s
}

// Distance returns the Euclidean distance between x and y.
func Distance[T Scalar](x, y []T) float64 {
	return math.Sqrt(SqDistance(x, y))
}

// RealDot returns Re⟨x, y⟩, the real part of the conjugated inner product.
func RealDot[T Scalar](x, y []T) float64 {
	var s float64
	for i := range x {
		s += realMulConj(x[i], y[i])
	}
	return s
}

// Abs returns the modulus of v as a float64.
func Abs[T Scalar](v T) float64 {
	return math.Sqrt(absSq(v))
}

// Conj returns the complex conjugate of v; real scalars pass through.
func Conj[T Scalar](v T) T {
	switch w := any(v).(type) {
	case float32, float64:
		return v
	case complex64:
		return any(complex(real(w), -imag(w))).(T)
	case complex128:
		return any(complex(real(w), -imag(w))).(T)
	default:
		panic("vec: unsupported scalar type")
	}
}

// DotConj returns ⟨a, x⟩ = Σ conj(a_i)·x_i.
func DotConj[T Scalar](a, x []T) T {
	var s T
	for i := range a {
		s += Conj(a[i]) * x[i]
	}
	return s
}

// RealDotDiff returns Re⟨g, a-b⟩ without materializing the difference.
func RealDotDiff[T Scalar](g, a, b []T) float64 {
	var s float64
	for i := range g {
		s += realMulConj(g[i], a[i]-b[i])
	}
	return s
}

func absSq[T Scalar](v T) float64 {
	switch w := any(v).(type) {
	case float32:
		return float64(w) * float64(w)
	case float64:
		return w * w
	case complex64:
		re, im := float64(real(w)), float64(imag(w))
		return re*re + im*im
	case complex128:
		re, im := real(w), imag(w)
		return re*re + im*im
	default:
		panic("vec: unsupported scalar type")
	}
}

// realMulConj returns Re(conj(a)*b).
func realMulConj[T Scalar](a, b T) float64 {
	switch x := any(a).(type) {
	case float32:
		return float64(x) * float64(any(b).(float32))
	case float64:
		return x * any(b).(float64)
	case complex64:
		y := any(b).(complex64)
		return float64(real(x))*float64(real(y)) + float64(imag(x))*float64(imag(y))
	case complex128:
		y := any(b).(complex128)
		return real(x)*real(y) + imag(x)*imag(y)
	default:
		panic("vec: unsupported scalar type")
	}
}
