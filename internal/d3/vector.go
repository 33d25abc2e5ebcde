package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// R3 vector helpers shared by the overlay and deformation packages.

// Elem returns a vector with all components set to v.
func Elem(v float64) r3.Vec {
	return r3.Vec{X: v, Y: v, Z: v}
}

// EqualWithin reports whether every component of a and b differ by at most tol.
func EqualWithin(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// IsZero reports whether v is the zero vector. Trackers use
// the zero vector to signal an unavailable position.
func IsZero(v r3.Vec) bool { return v == (r3.Vec{}) }

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// Unit returns p normalized. Unlike r3.Unit the zero vector
// is returned unchanged instead of a NaN vector.
func Unit(p r3.Vec) r3.Vec {
	n := r3.Norm(p)
	if n < 1e-12 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, p)
}

// Clamp x between lo and hi, assumes lo <= hi.
func Clamp(x, lo, hi float64) float64 {
	return math.Min(hi, math.Max(x, lo))
}

type Set []r3.Vec

// Min return the minimum components of a set of vectors.
func (a Set) Min() r3.Vec {
	vmin := a[0]
	for _, v := range a[1:] {
		vmin = MinElem(vmin, v)
	}
	return vmin
}

// Max return the maximum components of a set of vectors.
func (a Set) Max() r3.Vec {
	vmax := a[0]
	for _, v := range a[1:] {
		vmax = MaxElem(vmax, v)
	}
	return vmax
}

// Clone returns a deep copy of the set. A nil set yields an empty, non-nil set.
func (a Set) Clone() Set {
	c := make(Set, len(a))
	copy(c, a)
	return c
}
