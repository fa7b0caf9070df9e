package math

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// RotationQuat returns the unit quaternion of the rotation held in the
// upper-left 3x3 block of t. The block is assumed orthonormal.
func RotationQuat(t Tran3D) quat.Number {
	m00, m01, m02 := float64(t.m[0][0]), float64(t.m[0][1]), float64(t.m[0][2])
	m10, m11, m12 := float64(t.m[1][0]), float64(t.m[1][1]), float64(t.m[1][2])
	m20, m21, m22 := float64(t.m[2][0]), float64(t.m[2][1]), float64(t.m[2][2])

	// Pick the largest diagonal term to keep the divisor away from zero.
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
	return quat.Scale(1/quat.Abs(q), q)
}

// FromQuat returns the rotation transform of q. q need not be unit length;
// the zero quaternion gives the identity.
func FromQuat(q quat.Number) Tran3D {
	n := quat.Abs(q)
	if n == 0 {
		return Identity()
	}
	q = quat.Scale(1/n, q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	return Tran3D{m: [4][4]float32{
		{float32(1 - 2*(y*y+z*z)), float32(2 * (x*y - z*w)), float32(2 * (x*z + y*w)), 0},
		{float32(2 * (x*y + z*w)), float32(1 - 2*(x*x+z*z)), float32(2 * (y*z - x*w)), 0},
		{float32(2 * (x*z - y*w)), float32(2 * (y*z + x*w)), float32(1 - 2*(x*x+y*y)), 0},
		{0, 0, 0, 1},
	}}
}

// RotateVec rotates the 3D part of v by the unit quaternion q, keeping W.
func RotateVec(q quat.Number, v Vec4) Vec4 {
	p := quat.Number{Imag: float64(v.X), Jmag: float64(v.Y), Kmag: float64(v.Z)}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return Vec4{X: float32(r.Imag), Y: float32(r.Jmag), Z: float32(r.Kmag), W: v.W}
}

// Slerp interpolates between unit quaternions a and b along the shorter arc.
// t should be in range [0, 1].
func Slerp(a, b quat.Number, t float64) quat.Number {
	dot := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	if dot < 0 {
		b = quat.Scale(-1, b)
		dot = -dot
	}

	// Nearly parallel: fall back to normalized linear interpolation.
	if dot > 0.9995 {
		l := quat.Add(a, quat.Scale(t, quat.Sub(b, a)))
		return quat.Scale(1/quat.Abs(l), l)
	}

	theta0 := math.Acos(dot)
	theta := theta0 * t
	s0 := math.Cos(theta) - dot*math.Sin(theta)/math.Sin(theta0)
	s1 := math.Sin(theta) / math.Sin(theta0)
	return quat.Add(quat.Scale(s0, a), quat.Scale(s1, b))
}
