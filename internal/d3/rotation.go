package d3

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

const deg2rad = math.Pi / 180

// Identity is the rotation that leaves vectors unchanged. Note the
// zero value of r3.Rotation is not a valid rotation.
var Identity = r3.Rotation{Real: 1}

// Mul composes two rotations. The result applies b first, then a.
func Mul(a, b r3.Rotation) r3.Rotation {
	return r3.Rotation(quat.Mul(quat.Number(a), quat.Number(b)))
}

// Euler returns a rotation of z degrees around the z axis, x degrees
// around the x axis and y degrees around the y axis, applied in that order.
func Euler(x, y, z float64) r3.Rotation {
	qx := r3.NewRotation(x*deg2rad, r3.Vec{X: 1})
	qy := r3.NewRotation(y*deg2rad, r3.Vec{Y: 1})
	qz := r3.NewRotation(z*deg2rad, r3.Vec{Z: 1})
	return Mul(qy, Mul(qx, qz))
}

// EulerAngles returns the angles in degrees, each in [0, 360), such that
// Euler(EulerAngles(q)) represents the same rotation as q.
func EulerAngles(q r3.Rotation) r3.Vec {
	m := q.Mat()
	var x, y, z float64
	sx := Clamp(-m.At(1, 2), -1, 1)
	x = math.Asin(sx)
	if math.Abs(sx) < 1-1e-9 {
		y = math.Atan2(m.At(0, 2), m.At(2, 2))
		z = math.Atan2(m.At(1, 0), m.At(1, 1))
	} else {
		// Gimbal lock, z is folded into y.
		y = math.Atan2(-m.At(2, 0), m.At(0, 0))
	}
	return r3.Vec{X: wrapDegrees(x / deg2rad), Y: wrapDegrees(y / deg2rad), Z: wrapDegrees(z / deg2rad)}
}

func wrapDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// LookRotation returns the rotation that maps the z axis onto forward
// and the y axis onto up projected on the plane normal to forward.
// A zero forward vector yields the Identity rotation.
func LookRotation(forward, up r3.Vec) r3.Rotation {
	z := Unit(forward)
	if IsZero(z) {
		return Identity
	}
	x := Unit(r3.Cross(up, z))
	if IsZero(x) {
		// up is parallel to forward, pick any orthogonal axis.
		alt := r3.Vec{X: 1}
		if math.Abs(z.X) > 0.9 {
			alt = r3.Vec{Y: 1}
		}
		x = Unit(r3.Cross(alt, z))
	}
	y := r3.Cross(z, x)
	return fromBasis(x, y, z)
}

// fromBasis converts the orthonormal basis (matrix columns x, y, z) to a rotation.
func fromBasis(x, y, z r3.Vec) r3.Rotation {
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z
	var q quat.Number
	switch trace := m00 + m11 + m22; {
	case trace > 0:
		s := 2 * math.Sqrt(trace+1)
		q = quat.Number{Real: s / 4, Imag: (m21 - m12) / s, Jmag: (m02 - m20) / s, Kmag: (m10 - m01) / s}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = quat.Number{Real: (m21 - m12) / s, Imag: s / 4, Jmag: (m01 + m10) / s, Kmag: (m02 + m20) / s}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = quat.Number{Real: (m02 - m20) / s, Imag: (m01 + m10) / s, Jmag: s / 4, Kmag: (m12 + m21) / s}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = quat.Number{Real: (m10 - m01) / s, Imag: (m02 + m20) / s, Jmag: (m12 + m21) / s, Kmag: s / 4}
	}
	return r3.Rotation(quat.Scale(1/quat.Abs(q), q))
}

// Slerp spherically interpolates between a and b. t is clamped to [0, 1].
func Slerp(a, b r3.Rotation, t float64) r3.Rotation {
	t = Clamp(t, 0, 1)
	qa, qb := quat.Number(a), quat.Number(b)
	dot := qa.Real*qb.Real + qa.Imag*qb.Imag + qa.Jmag*qb.Jmag + qa.Kmag*qb.Kmag
	if dot < 0 {
		qb = quat.Scale(-1, qb)
		dot = -dot
	}
	var q quat.Number
	if dot > 0.9995 {
		// Nearly parallel, fall back to normalized lerp.
		q = quat.Add(quat.Scale(1-t, qa), quat.Scale(t, qb))
	} else {
		theta := math.Acos(dot)
		sin := math.Sin(theta)
		q = quat.Add(quat.Scale(math.Sin((1-t)*theta)/sin, qa), quat.Scale(math.Sin(t*theta)/sin, qb))
	}
	return r3.Rotation(quat.Scale(1/quat.Abs(q), q))
}

// Angle returns the angle in degrees of the rotation taking a to b.
func Angle(a, b r3.Rotation) float64 {
	qa, qb := quat.Number(a), quat.Number(b)
	dot := math.Abs(qa.Real*qb.Real + qa.Imag*qb.Imag + qa.Jmag*qb.Jmag + qa.Kmag*qb.Kmag)
	return 2 * math.Acos(math.Min(dot, 1)) / deg2rad
}

// DeltaAngle returns the shortest difference in degrees between
// angles a and b, in [0, 180].
func DeltaAngle(a, b float64) float64 {
	d := math.Abs(wrapDegrees(b - a))
	if d > 180 {
		d = 360 - d
	}
	return d
}
