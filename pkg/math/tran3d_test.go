package math

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-5

func mustRotation(t *testing.T, angle float32, axis Vec4) Tran3D {
	t.Helper()
	r, err := Rotation(angle, axis)
	if err != nil {
		t.Fatalf("Rotation(%v, %v): %v", angle, axis, err)
	}
	return r
}

func TestIdentity(t *testing.T) {
	m := Identity()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := float32(0)
			if i == j {
				want = 1
			}
			if m.At(i, j) != want {
				t.Errorf("Identity[%d][%d] = %v, want %v", i, j, m.At(i, j), want)
			}
		}
	}
}

func TestIdentityNotShared(t *testing.T) {
	a := Identity()
	a.SetTranslation(Point(1, 2, 3))
	if !Identity().FullEquals(Tran3D{m: [4][4]float32{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}}) {
		t.Error("mutating a copy of Identity() changed Identity()")
	}
}

func TestNewTran3D(t *testing.T) {
	m, err := NewTran3D([][]float32{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	if err != nil {
		t.Fatal(err)
	}
	if m.At(1, 2) != 6 || m.At(3, 3) != 1 || m.At(0, 3) != 0 || m.At(3, 0) != 0 {
		t.Errorf("padded 3x3 = \n%v", m)
	}

	if _, err := NewTran3D([][]float32{{1, 2}, {3, 4}}); !errors.Is(err, ErrBadShape) {
		t.Errorf("NewTran3D(2x2) err = %v, want ErrBadShape", err)
	}
	if _, err := NewTran3D([][]float32{{1, 2, 3}, {4, 5}, {7, 8, 9}}); !errors.Is(err, ErrBadShape) {
		t.Errorf("NewTran3D(ragged) err = %v, want ErrBadShape", err)
	}

	a := [16]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	f := FromArray(a)
	if f.At(1, 0) != 5 || f.Array() != a {
		t.Errorf("FromArray row-major mismatch:\n%v", f)
	}
	if _, err := FromSlice(a[:15]); !errors.Is(err, ErrBadShape) {
		t.Errorf("FromSlice(15) err = %v, want ErrBadShape", err)
	}
}

func TestRotationZ90(t *testing.T) {
	r := mustRotation(t, 90, Direction(0, 0, 1))
	got := r.Apply(Point(1, 0, 0))
	if !got.ApproxEqual(Point(0, 1, 0), eps) {
		t.Errorf("Rz(90)·(1,0,0) = %v, want (0,1,0)", got)
	}
}

func TestRotationUnnormalizedAxis(t *testing.T) {
	a := mustRotation(t, 30, Direction(0, 5, 0))
	b := mustRotation(t, 30, Direction(0, 1, 0))
	if !a.ApproxEqual(b, eps) {
		t.Errorf("axis length changed the rotation:\n%v\n%v", a, b)
	}
}

func TestRotationInverseRoundTrip(t *testing.T) {
	axes := []Vec4{
		Direction(1, 0, 0),
		Direction(0, 1, 0),
		Direction(0, 0, 1),
		Direction(1, 1, 1),
		Direction(-0.3, 2, 0.7),
	}
	angles := []float32{-170, -45, 0, 12.5, 90, 179}

	for _, axis := range axes {
		for _, angle := range angles {
			r := mustRotation(t, angle, axis)
			inv := r
			if err := inv.Invert(); err != nil {
				t.Fatalf("Invert(%v about %v): %v", angle, axis, err)
			}
			r.MultiplyBy(inv)
			if !r.ApproxEqual(Identity(), eps) {
				t.Errorf("R·R⁻¹ for %v about %v is not identity:\n%v", angle, axis, r)
			}
		}
	}
}

func TestRotationZeroAxis(t *testing.T) {
	r, err := Rotation(45, Direction(0, 0, 0))
	if !errors.Is(err, ErrZeroAxis) {
		t.Errorf("Rotation(zero axis) err = %v, want ErrZeroAxis", err)
	}
	if !r.FullEquals(Identity()) {
		t.Errorf("Rotation(zero axis) = \n%v, want identity", r)
	}

	m := Translation(Point(1, 2, 3))
	if err := m.SetRotation(45, Direction(1e-12, 0, 0)); !errors.Is(err, ErrZeroAxis) {
		t.Errorf("SetRotation(tiny axis) err = %v, want ErrZeroAxis", err)
	}
	if !m.FullEquals(Identity()) {
		t.Errorf("SetRotation fallback = \n%v, want identity", m)
	}
}

func TestTranslateThenRotate(t *testing.T) {
	m := Translation(Point(1, 2, 3))
	m.MultiplyBy(mustRotation(t, 90, Direction(0, 0, 1)))

	// The rotation acts first: (1,0,0) -> (0,1,0) -> (1,3,3).
	var out Vec4
	in := Point(1, 0, 0)
	if err := m.ApplyTo(&in, &out); err != nil {
		t.Fatal(err)
	}
	if !out.ApproxEqual(Point(1, 3, 3), eps) {
		t.Errorf("T·R·(1,0,0) = %v, want (1,3,3)", out)
	}
}

func TestSetBuildersReplace(t *testing.T) {
	m := mustRotation(t, 30, Direction(1, 0, 0))
	m.SetTranslation(Point(4, 5, 6))
	if !m.FullEquals(Translation(Point(4, 5, 6))) {
		t.Errorf("SetTranslation composed instead of replacing:\n%v", m)
	}
	m.SetScale(Point(2, 3, 4))
	if got := m.Apply(Point(1, 1, 1)); got != Point(2, 3, 4) {
		t.Errorf("SetScale·(1,1,1) = %v, want (2,3,4)", got)
	}
	m.SetIdentity()
	if !m.FullEquals(Identity()) {
		t.Error("SetIdentity did not reset")
	}
}

func TestMultiplyBySelf(t *testing.T) {
	m := mustRotation(t, 45, Direction(0, 0, 1))
	m.MultiplyBy(m)
	want := mustRotation(t, 90, Direction(0, 0, 1))
	if !m.ApproxEqual(want, eps) {
		t.Errorf("R45·R45 = \n%v, want\n%v", m, want)
	}
}

func TestTranspose(t *testing.T) {
	m := FromArray([16]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16})
	m.Transpose()
	if m.At(0, 1) != 5 || m.At(3, 0) != 4 || m.At(2, 2) != 11 {
		t.Errorf("Transpose() = \n%v", m)
	}
}

func TestInvertGeneral(t *testing.T) {
	m := Translation(Point(1, -2, 3))
	m.MultiplyBy(mustRotation(t, 33, Direction(1, 2, 3)))
	m.MultiplyBy(Scaling(Point(2, 0.5, 4)))

	inv, err := m.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	p := Point(0.25, 7, -1)
	if got := inv.Apply(m.Apply(p)); !got.ApproxEqual(p, 1e-4) {
		t.Errorf("M⁻¹·M·p = %v, want %v", got, p)
	}
}

func TestInvertSingularLeavesUnchanged(t *testing.T) {
	m := Scaling(Point(0, 1, 1))
	before := m
	err := m.Invert()
	if !errors.Is(err, ErrNotInvertible) {
		t.Errorf("Invert(singular) err = %v, want ErrNotInvertible", err)
	}
	if !m.FullEquals(before) {
		t.Errorf("Invert(singular) modified the matrix:\n%v", m)
	}
}

func TestInvertRankDeficientLeavesUnchanged(t *testing.T) {
	// Flattening along a rotated axis leaves no exactly zero row or pivot.
	r := mustRotation(t, 37, Direction(1, 2, 3))
	m := r.Mul(Scaling(Point(1, 0, 1))).Mul(r)
	before := m

	err := m.Invert()
	if !errors.Is(err, ErrNotInvertible) {
		t.Errorf("Invert(rank 2) err = %v, want ErrNotInvertible", err)
	}
	if !m.FullEquals(before) {
		t.Errorf("Invert(rank 2) modified the matrix:\n%v", m)
	}
	if _, err := before.Inverse(); !errors.Is(err, ErrNotInvertible) {
		t.Errorf("Inverse(rank 2) err = %v, want ErrNotInvertible", err)
	}
}

func TestOrientation(t *testing.T) {
	// up is not perpendicular to base; it is orthogonalized within their plane.
	m, err := Orientation(Direction(2, 0, 0), Direction(1, 1, 0), Point(5, 6, 7))
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Apply(Direction(1, 0, 0)); !got.ApproxEqual(Direction(1, 0, 0), eps) {
		t.Errorf("local x -> %v, want (1,0,0)", got)
	}
	if got := m.Apply(Direction(0, 1, 0)); !got.ApproxEqual(Direction(0, 1, 0), eps) {
		t.Errorf("local y -> %v, want (0,1,0)", got)
	}
	if got := m.Apply(Point(0, 0, 0)); !got.ApproxEqual(Point(5, 6, 7), eps) {
		t.Errorf("origin -> %v, want (5,6,7)", got)
	}

	// A tilted basis stays orthonormal.
	m, err = Orientation(Direction(0, 1, 1), Direction(0, 0, 1), Point(0, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	x := m.Apply(Direction(1, 0, 0))
	y := m.Apply(Direction(0, 1, 0))
	if d := x.Dot(y); d > eps || d < -eps {
		t.Errorf("images of x and y not perpendicular: dot = %v", d)
	}
}

func TestOrientationDegenerate(t *testing.T) {
	tests := []struct {
		name     string
		base, up Vec4
	}{
		{"collinear", Direction(1, 0, 0), Direction(1, 0, 0)},
		{"antiparallel", Direction(1, 0, 0), Direction(-3, 0, 0)},
		{"zero base", Direction(0, 0, 0), Direction(0, 1, 0)},
		{"zero up", Direction(0, 1, 0), Direction(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Translation(Point(1, 2, 3))
			before := m
			err := m.SetOrientation(tt.base, tt.up, Point(0, 0, 0))
			if !errors.Is(err, ErrDegenerateOrientation) {
				t.Errorf("err = %v, want ErrDegenerateOrientation", err)
			}
			if !m.FullEquals(before) {
				t.Errorf("matrix changed on failure:\n%v", m)
			}
		})
	}
}

func TestViewMatrix(t *testing.T) {
	cop := Point(0, 0, 10)
	vrp := Point(0, 0, 0)
	vuv := Direction(0, 1, 0)

	v, err := ViewMatrix(cop, vrp, vuv, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Apply(Point(1, 2, 3)); !got.ApproxEqual(Point(1, 2, 3), eps) {
		t.Errorf("axis-aligned view moved point to %v", got)
	}

	// Looking down -x from +x with z up.
	v, err = ViewMatrix(Point(10, 0, 0), Point(2, 0, 0), Direction(0, 0, 1), false)
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Apply(Point(2, 0, 0)); !got.ApproxEqual(Point(0, 0, 0), eps) {
		t.Errorf("vrp -> %v, want origin", got)
	}
	if got := v.Apply(Direction(0, 0, 1)); !got.ApproxEqual(Direction(0, 1, 0), eps) {
		t.Errorf("up -> %v, want +y", got)
	}
	if got := v.Apply(Direction(1, 0, 0)); !got.ApproxEqual(Direction(0, 0, 1), eps) {
		t.Errorf("towards cop -> %v, want +z", got)
	}

	p, err := ViewMatrix(cop, vrp, vuv, true)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.At(3, 2); got != -0.1 {
		t.Errorf("perspective entry = %v, want -0.1", got)
	}
	if got := p.Apply(cop); got.W > eps || got.W < -eps {
		t.Errorf("centre of projection W = %v, want 0", got.W)
	}
}

func TestViewMatrixDegenerate(t *testing.T) {
	m := Translation(Point(1, 1, 1))
	err := m.SetViewMatrix(Point(1, 2, 3), Point(1, 2, 3), Direction(0, 1, 0), true)
	if !errors.Is(err, ErrDegenerateView) {
		t.Errorf("cop == vrp err = %v, want ErrDegenerateView", err)
	}
	if !m.FullEquals(Identity()) {
		t.Errorf("cop == vrp fallback = \n%v, want identity", m)
	}

	err = m.SetViewMatrix(Point(0, 4, 0), Point(0, 0, 0), Direction(0, 1, 0), true)
	if !errors.Is(err, ErrDegenerateView) {
		t.Errorf("vuv parallel err = %v, want ErrDegenerateView", err)
	}
	want := Identity()
	want.m[3][2] = -0.25
	if !m.FullEquals(want) {
		t.Errorf("vuv parallel fallback = \n%v, want\n%v", m, want)
	}
}

func TestRotationEquals(t *testing.T) {
	r := mustRotation(t, 60, Direction(0, 1, 0))
	moved := Translation(Point(9, 9, 9))
	moved.MultiplyBy(r)

	if !r.RotationEquals(moved) {
		t.Error("RotationEquals should ignore translation")
	}
	if r.FullEquals(moved) {
		t.Error("FullEquals should compare translation")
	}
}

func TestApplyToErrors(t *testing.T) {
	m := Identity()
	v := Point(1, 2, 3)
	if err := m.ApplyTo(nil, &v); !errors.Is(err, ErrNilVector) {
		t.Errorf("ApplyTo(nil, v) = %v, want ErrNilVector", err)
	}
	if err := m.ApplyTo(&v, nil); !errors.Is(err, ErrNilVector) {
		t.Errorf("ApplyTo(v, nil) = %v, want ErrNilVector", err)
	}
	if v != Point(1, 2, 3) {
		t.Errorf("vector changed on failure: %v", v)
	}
}

func TestApplyToAll(t *testing.T) {
	m := Translation(Point(1, 0, 0))
	vs := []Vec4{Point(0, 0, 0), Direction(0, 1, 0)}

	if err := m.ApplyToAll(vs, make([]Vec4, 1)); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("ApplyToAll(mismatch) = %v, want ErrLengthMismatch", err)
	}

	// In place; directions ignore translation.
	if err := m.ApplyToAll(vs, vs); err != nil {
		t.Fatal(err)
	}
	if vs[0] != Point(1, 0, 0) || vs[1] != Direction(0, 1, 0) {
		t.Errorf("ApplyToAll in place = %v", vs)
	}

	out := m.ApplyAll([]Vec4{Point(1, 1, 1)})
	if len(out) != 1 || out[0] != Point(2, 1, 1) {
		t.Errorf("ApplyAll() = %v", out)
	}
}

func TestGLMatchesMathGL(t *testing.T) {
	tr := Translation(Point(1, 2, 3))
	if tr.GL() != mgl32.Translate3D(1, 2, 3) {
		t.Errorf("Translation.GL() = %v, want %v", tr.GL(), mgl32.Translate3D(1, 2, 3))
	}

	r := mustRotation(t, 90, Direction(0, 0, 1))
	want := mgl32.HomogRotate3D(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})
	if !r.GL().ApproxEqualThreshold(want, eps) {
		t.Errorf("Rotation.GL() = %v, want %v", r.GL(), want)
	}

	if back := FromGL(r.GL()); !back.FullEquals(r) {
		t.Errorf("FromGL(GL()) = \n%v, want\n%v", back, r)
	}
}
