package math

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"github.com/ipns/isaw/pkg/linalg"
)

// axisEpsilon is the smallest axis or basis length treated as non-zero.
const axisEpsilon = 1e-10

// pivotTolerance is the smallest ratio of R pivots that Inverse accepts.
// float32 entries carry about 1e-7 relative rounding, so a rank-deficient
// transform shows up as a pivot ratio near that rather than an exact zero.
const pivotTolerance = 1e-6

var (
	ErrZeroAxis              = errors.New("rotation axis has zero length")
	ErrDegenerateOrientation = errors.New("base and up vectors are zero or collinear")
	ErrDegenerateView        = errors.New("view direction is zero or parallel to the up vector")
	ErrNotInvertible         = errors.New("transform is not invertible")
	ErrNilVector             = errors.New("nil vector")
	ErrLengthMismatch        = errors.New("vector slices differ in length")
	ErrBadShape              = errors.New("matrix must be 3x3 or 4x4")
)

// Tran3D is a 4x4 homogeneous transform stored in row-major order and
// applied to column vectors: v' = T·v.
//
// Tran3D is a value type. Assignment copies the matrix, so two variables
// never share storage. The Set* methods replace the whole matrix rather than
// composing with it.
type Tran3D struct {
	m [4][4]float32
}

// Identity returns the identity transform.
func Identity() Tran3D {
	return Tran3D{m: [4][4]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}}
}

// NewTran3D builds a transform from a 4x4 matrix, or from a 3x3 matrix
// padded with a last row and column of [0 0 0 1].
func NewTran3D(rows [][]float32) (Tran3D, error) {
	n := len(rows)
	if n != 3 && n != 4 {
		return Identity(), fmt.Errorf("%d rows: %w", n, ErrBadShape)
	}
	t := Identity()
	for i, row := range rows {
		if len(row) != n {
			return Identity(), fmt.Errorf("row %d has %d columns: %w", i, len(row), ErrBadShape)
		}
		copy(t.m[i][:], row)
	}
	return t, nil
}

// FromArray builds a transform from 16 values in row-major order.
func FromArray(a [16]float32) Tran3D {
	var t Tran3D
	for i := 0; i < 16; i++ {
		t.m[i/4][i%4] = a[i]
	}
	return t
}

// FromSlice builds a transform from a row-major slice of exactly 16 values.
func FromSlice(s []float32) (Tran3D, error) {
	if len(s) != 16 {
		return Identity(), fmt.Errorf("%d values: %w", len(s), ErrBadShape)
	}
	var a [16]float32
	copy(a[:], s)
	return FromArray(a), nil
}

// Get returns a copy of the matrix.
func (t Tran3D) Get() [4][4]float32 {
	return t.m
}

// At returns the element at row r, column c.
func (t Tran3D) At(r, c int) float32 {
	return t.m[r][c]
}

// Array returns the matrix flattened in row-major order.
func (t Tran3D) Array() [16]float32 {
	var a [16]float32
	for i := 0; i < 16; i++ {
		a[i] = t.m[i/4][i%4]
	}
	return a
}

// Translation returns a transform that moves points by v.
func Translation(v Vec4) Tran3D {
	t := Identity()
	t.m[0][3] = v.X
	t.m[1][3] = v.Y
	t.m[2][3] = v.Z
	return t
}

// Scaling returns a transform that scales along x, y and z by v's components.
func Scaling(v Vec4) Tran3D {
	t := Identity()
	t.m[0][0] = v.X
	t.m[1][1] = v.Y
	t.m[2][2] = v.Z
	return t
}

// Rotation returns a right-handed rotation of angle degrees about axis.
// The axis need not be normalized. If its length is below 1e-10 the
// identity is returned together with ErrZeroAxis.
func Rotation(angle float32, axis Vec4) (Tran3D, error) {
	l := axis.Length()
	if l < axisEpsilon {
		return Identity(), ErrZeroAxis
	}
	x, y, z := axis.X/l, axis.Y/l, axis.Z/l

	rad := angle * math32.Pi / 180
	c := math32.Cos(rad)
	s := math32.Sin(rad)
	k := 1 - c

	return Tran3D{m: [4][4]float32{
		{k*x*x + c, k*x*y - s*z, k*x*z + s*y, 0},
		{k*x*y + s*z, k*y*y + c, k*y*z - s*x, 0},
		{k*x*z - s*y, k*y*z + s*x, k*z*z + c, 0},
		{0, 0, 0, 1},
	}}, nil
}

// Orientation returns a transform that maps the local +x axis onto base,
// the local +y axis onto up made perpendicular to base within their common
// plane, and the origin onto translation.
func Orientation(base, up, translation Vec4) (Tran3D, error) {
	z := base.Cross(up)
	if base.Length() < axisEpsilon || z.Length() < axisEpsilon {
		return Identity(), ErrDegenerateOrientation
	}
	x := Direction(base.X, base.Y, base.Z).Normalize()
	z = z.Normalize()
	y := z.Cross(x)

	return Tran3D{m: [4][4]float32{
		{x.X, y.X, z.X, translation.X},
		{x.Y, y.Y, z.Y, translation.Y},
		{x.Z, y.Z, z.Z, translation.Z},
		{0, 0, 0, 1},
	}}, nil
}

// ViewMatrix returns a right-handed viewing transform. The view reference
// point vrp moves to the origin, the direction from vrp towards the centre
// of projection cop becomes +z, and vuv projected onto the view plane
// becomes +y. With perspective set, the result is left-multiplied by a
// projection whose row 3 column 2 entry is -1/|cop - vrp|.
//
// If cop equals vrp, or vuv is parallel to the view direction, the result
// is the identity (with the perspective entry when it can be computed) and
// ErrDegenerateView.
func ViewMatrix(cop, vrp, vuv Vec4, perspective bool) (Tran3D, error) {
	n := Direction(cop.X-vrp.X, cop.Y-vrp.Y, cop.Z-vrp.Z)
	d := n.Length()

	fallback := Identity()
	if perspective && d >= axisEpsilon {
		fallback.m[3][2] = -1 / d
	}
	if d < axisEpsilon {
		return fallback, ErrDegenerateView
	}
	u := vuv.Cross(n)
	if u.Length() < axisEpsilon {
		return fallback, ErrDegenerateView
	}

	n = n.Normalize()
	u = u.Normalize()
	v := n.Cross(u)

	view := Tran3D{m: [4][4]float32{
		{u.X, u.Y, u.Z, -u.Dot(vrp)},
		{v.X, v.Y, v.Z, -v.Dot(vrp)},
		{n.X, n.Y, n.Z, -n.Dot(vrp)},
		{0, 0, 0, 1},
	}}
	if perspective {
		p := Identity()
		p.m[3][2] = -1 / d
		view = p.Mul(view)
	}
	return view, nil
}

// Mul returns t·other. Applied to a vector, other acts first.
func (t Tran3D) Mul(other Tran3D) Tran3D {
	var r Tran3D
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r.m[i][j] = t.m[i][0]*other.m[0][j] +
				t.m[i][1]*other.m[1][j] +
				t.m[i][2]*other.m[2][j] +
				t.m[i][3]*other.m[3][j]
		}
	}
	return r
}

// Transposed returns the transpose of t.
func (t Tran3D) Transposed() Tran3D {
	var r Tran3D
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r.m[i][j] = t.m[j][i]
		}
	}
	return r
}

// Inverse returns the inverse of t. A singular or numerically singular t
// (smallest R pivot within 1e-6 of the largest) is returned unchanged
// together with an error wrapping ErrNotInvertible.
func (t Tran3D) Inverse() (Tran3D, error) {
	a := make([][]float64, 4)
	for i := range a {
		a[i] = make([]float64, 4)
		for j := range a[i] {
			a[i][j] = float64(t.m[i][j])
		}
	}
	inv, err := linalg.InverseTol(a, pivotTolerance)
	if err != nil {
		return t, fmt.Errorf("%w: %w", ErrNotInvertible, err)
	}

	var r Tran3D
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r.m[i][j] = float32(inv[i][j])
		}
	}
	return r, nil
}

// Apply returns t·v using all four components of v.
func (t Tran3D) Apply(v Vec4) Vec4 {
	m := &t.m
	return Vec4{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z + m[0][3]*v.W,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z + m[1][3]*v.W,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z + m[2][3]*v.W,
		W: m[3][0]*v.X + m[3][1]*v.Y + m[3][2]*v.Z + m[3][3]*v.W,
	}
}

// ApplyAll returns a new slice with t applied to every vector.
func (t Tran3D) ApplyAll(vs []Vec4) []Vec4 {
	out := make([]Vec4, len(vs))
	for i, v := range vs {
		out[i] = t.Apply(v)
	}
	return out
}

// RotationEquals reports whether the upper-left 3x3 blocks are identical.
// Translation and the projection row are ignored.
func (t Tran3D) RotationEquals(other Tran3D) bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if t.m[i][j] != other.m[i][j] {
				return false
			}
		}
	}
	return true
}

// FullEquals reports whether all sixteen entries are identical.
func (t Tran3D) FullEquals(other Tran3D) bool {
	return t.m == other.m
}

// ApproxEqual reports whether all entries differ by at most tol.
func (t Tran3D) ApproxEqual(other Tran3D, tol float32) bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math32.Abs(t.m[i][j]-other.m[i][j]) > tol {
				return false
			}
		}
	}
	return true
}

func (t Tran3D) String() string {
	var b strings.Builder
	for i, row := range t.m {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%10.5f %10.5f %10.5f %10.5f]", row[0], row[1], row[2], row[3])
	}
	return b.String()
}
