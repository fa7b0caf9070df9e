package math

// In-place forms of the Tran3D builders. Each one replaces the receiver;
// none composes with the previous content.

// Set copies other into t.
func (t *Tran3D) Set(other Tran3D) {
	t.m = other.m
}

// SetIdentity resets t to the identity.
func (t *Tran3D) SetIdentity() {
	*t = Identity()
}

// SetTranslation replaces t with a translation by v.
func (t *Tran3D) SetTranslation(v Vec4) {
	*t = Translation(v)
}

// SetScale replaces t with a scale by v's components.
func (t *Tran3D) SetScale(v Vec4) {
	*t = Scaling(v)
}

// SetRotation replaces t with a rotation of angle degrees about axis.
// A zero-length axis leaves t as the identity and returns ErrZeroAxis.
func (t *Tran3D) SetRotation(angle float32, axis Vec4) error {
	r, err := Rotation(angle, axis)
	*t = r
	return err
}

// SetOrientation replaces t with Orientation(base, up, translation).
// On failure t is left unchanged.
func (t *Tran3D) SetOrientation(base, up, translation Vec4) error {
	o, err := Orientation(base, up, translation)
	if err != nil {
		return err
	}
	*t = o
	return nil
}

// SetViewMatrix replaces t with ViewMatrix(cop, vrp, vuv, perspective),
// including its identity fallback on failure.
func (t *Tran3D) SetViewMatrix(cop, vrp, vuv Vec4, perspective bool) error {
	v, err := ViewMatrix(cop, vrp, vuv, perspective)
	*t = v
	return err
}

// Transpose transposes t in place.
func (t *Tran3D) Transpose() {
	*t = t.Transposed()
}

// Invert replaces t with its inverse. On failure t is left unchanged.
func (t *Tran3D) Invert() error {
	inv, err := t.Inverse()
	if err != nil {
		return err
	}
	*t = inv
	return nil
}

// MultiplyBy sets t to t·other, so other acts first on applied vectors.
// t.MultiplyBy(*t) squares t.
func (t *Tran3D) MultiplyBy(other Tran3D) {
	*t = t.Mul(other)
}

// ApplyTo stores t·in into out. in and out may point to the same vector.
func (t *Tran3D) ApplyTo(in, out *Vec4) error {
	if in == nil || out == nil {
		return ErrNilVector
	}
	*out = t.Apply(*in)
	return nil
}

// ApplyToAll stores t·in[i] into out[i]. The slices must have equal length
// and may be the same slice.
func (t *Tran3D) ApplyToAll(in, out []Vec4) error {
	if len(in) != len(out) {
		return ErrLengthMismatch
	}
	for i := range in {
		out[i] = t.Apply(in[i])
	}
	return nil
}
