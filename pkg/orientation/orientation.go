// Package orientation describes how a sample sits on a goniometer.
//
// A SampleOrientation holds the facility's (phi, chi, omega) angle triple in
// degrees together with the goniometer rotation and its inverse, computed
// once at construction. The value is immutable: build a new one to change
// the angles.
package orientation

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/num/quat"

	"github.com/ipns/isaw/pkg/math"
)

var (
	ErrUnknownConvention = errors.New("unknown goniometer convention")
	ErrUnsupportedUnits  = errors.New("angle units must be degree")
)

// Convention selects a facility's Euler-angle convention.
type Convention int

const (
	// Standard rotates by phi about +z, then chi about +x, then omega about +z.
	Standard Convention = iota
	// IPNSSCD matches the IPNS single-crystal diffractometer, whose omega
	// circle turns the opposite way: omega is negated.
	IPNSSCD
)

var conventionNames = map[Convention]string{
	Standard: "standard",
	IPNSSCD:  "ipns_scd",
}

func (c Convention) String() string {
	if name, ok := conventionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Convention(%d)", int(c))
}

// ParseConvention parses a name such as "standard" or "ipns_scd".
// Matching is case-insensitive and accepts '-' in place of '_'.
func ParseConvention(s string) (Convention, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for c, name := range conventionNames {
		if key == name {
			return c, nil
		}
	}
	return Standard, fmt.Errorf("%q: %w", s, ErrUnknownConvention)
}

var (
	xAxis = math.Direction(1, 0, 0)
	zAxis = math.Direction(0, 0, 1)
)

// Transforms computes the goniometer rotation for the given angles in
// degrees, and its inverse. Applied to a vector in the sample frame the
// rotation gives the laboratory frame: phi acts first and omega last.
func (c Convention) Transforms(phi, chi, omega float32) (rot, inv math.Tran3D) {
	if c == IPNSSCD {
		omega = -omega
	}

	// The axes are constant unit vectors, so Rotation cannot fail here.
	phiR, _ := math.Rotation(phi, zAxis)
	chiR, _ := math.Rotation(chi, xAxis)
	omegaR, _ := math.Rotation(omega, zAxis)

	rot = omegaR
	rot.MultiplyBy(chiR)
	rot.MultiplyBy(phiR)

	// Pure rotation: the inverse is the transpose.
	inv = rot.Transposed()
	return rot, inv
}

// SampleOrientation is an immutable goniometer setting.
type SampleOrientation struct {
	convention Convention
	phi        float32
	chi        float32
	omega      float32
	rot        math.Tran3D
	inv        math.Tran3D
}

// New builds the orientation for angles in degrees under convention c.
func New(c Convention, phi, chi, omega float32) SampleOrientation {
	rot, inv := c.Transforms(phi, chi, omega)
	return SampleOrientation{
		convention: c,
		phi:        phi,
		chi:        chi,
		omega:      omega,
		rot:        rot,
		inv:        inv,
	}
}

// NewStandard builds an orientation under the Standard convention.
func NewStandard(phi, chi, omega float32) SampleOrientation {
	return New(Standard, phi, chi, omega)
}

// NewIPNSSCD builds an orientation under the IPNS SCD convention.
func NewIPNSSCD(phi, chi, omega float32) SampleOrientation {
	return New(IPNSSCD, phi, chi, omega)
}

func (o SampleOrientation) Convention() Convention { return o.convention }
func (o SampleOrientation) Phi() float32           { return o.phi }
func (o SampleOrientation) Chi() float32           { return o.chi }
func (o SampleOrientation) Omega() float32         { return o.omega }

// Angles returns phi, chi and omega in degrees.
func (o SampleOrientation) Angles() (phi, chi, omega float32) {
	return o.phi, o.chi, o.omega
}

// GoniometerRotation returns the cached sample-to-laboratory rotation.
func (o SampleOrientation) GoniometerRotation() math.Tran3D {
	return o.rot
}

// GoniometerRotationInverse returns the cached laboratory-to-sample rotation.
func (o SampleOrientation) GoniometerRotationInverse() math.Tran3D {
	return o.inv
}

// ToLab maps a sample-frame vector into the laboratory frame.
func (o SampleOrientation) ToLab(v math.Vec4) math.Vec4 {
	return o.rot.Apply(v)
}

// ToSample maps a laboratory-frame vector into the sample frame.
func (o SampleOrientation) ToSample(v math.Vec4) math.Vec4 {
	return o.inv.Apply(v)
}

// Quat returns the goniometer rotation as a unit quaternion, for renderers
// that interpolate between settings.
func (o SampleOrientation) Quat() quat.Number {
	return math.RotationQuat(o.rot)
}

func (o SampleOrientation) String() string {
	return fmt.Sprintf("%s(phi=%g, chi=%g, omega=%g)", o.convention, o.phi, o.chi, o.omega)
}
