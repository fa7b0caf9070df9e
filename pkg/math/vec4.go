// Package math provides homogeneous vectors and 4x4 transforms for
// instrument geometry: detector placement, sample goniometer rotations and
// view transforms.
package math

import "github.com/chewxy/math32"

// Vec4 is a homogeneous 3D vector. W is 1 for points and 0 for directions.
// Arithmetic acts on X, Y and Z only and keeps the receiver's W.
type Vec4 struct {
	X, Y, Z, W float32
}

// Point returns the position (x, y, z, 1).
func Point(x, y, z float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: 1}
}

// Direction returns the direction (x, y, z, 0).
func Direction(x, y, z float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: 0}
}

// Add returns v + other.
func (v Vec4) Add(other Vec4) Vec4 {
	return Vec4{v.X + other.X, v.Y + other.Y, v.Z + other.Z, v.W}
}

// Sub returns v - other.
func (v Vec4) Sub(other Vec4) Vec4 {
	return Vec4{v.X - other.X, v.Y - other.Y, v.Z - other.Z, v.W}
}

// Scale returns v * scalar.
func (v Vec4) Scale(s float32) Vec4 {
	return Vec4{v.X * s, v.Y * s, v.Z * s, v.W}
}

// Dot returns the dot product of the 3D parts.
func (v Vec4) Dot(other Vec4) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product as a direction.
func (v Vec4) Cross(other Vec4) Vec4 {
	return Vec4{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude of the 3D part.
func (v Vec4) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns a unit vector. The zero vector is returned unchanged.
func (v Vec4) Normalize() Vec4 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return Vec4{v.X / l, v.Y / l, v.Z / l, v.W}
}

// Standardize divides through by W so that W becomes 1.
// Directions (W == 0) are returned unchanged.
func (v Vec4) Standardize() Vec4 {
	if v.W == 0 || v.W == 1 {
		return v
	}
	return Vec4{v.X / v.W, v.Y / v.W, v.Z / v.W, 1}
}

// Distance returns the distance to another point.
func (v Vec4) Distance(other Vec4) float32 {
	return v.Sub(other).Length()
}

// ApproxEqual reports whether all four components differ by at most tol.
func (v Vec4) ApproxEqual(other Vec4, tol float32) bool {
	return math32.Abs(v.X-other.X) <= tol &&
		math32.Abs(v.Y-other.Y) <= tol &&
		math32.Abs(v.Z-other.Z) <= tol &&
		math32.Abs(v.W-other.W) <= tol
}

// XYZ returns the 3D part as an array.
func (v Vec4) XYZ() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}
