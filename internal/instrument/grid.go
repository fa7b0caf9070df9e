// Package instrument places detector pixels in the laboratory frame.
//
// The lab frame has the sample at the origin and the incident beam
// travelling along +x.
package instrument

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/ipns/isaw/internal/config"
	"github.com/ipns/isaw/internal/logger"
	"github.com/ipns/isaw/pkg/math"
	"github.com/ipns/isaw/pkg/orientation"
)

var (
	ErrBadGrid        = errors.New("grid needs positive size and at least one row and column")
	ErrOutOfRange     = errors.New("pixel outside the grid")
	ErrForwardScatter = errors.New("no scattering: position lies on the beam axis")
)

// minQ is the smallest |k_out - k_in| (in units of |k|) treated as scattering.
const minQ = 1e-6

// beam is the unit incident beam direction.
var beam = math.Direction(1, 0, 0)

// Grid is a flat rectangular detector with uniformly spaced pixels.
type Grid struct {
	Center math.Vec4 // lab position of the detector centre
	Base   math.Vec4 // direction of increasing column
	Up     math.Vec4 // direction of increasing row
	Width  float32   // extent along Base
	Height float32   // extent along Up
	Rows   int
	Cols   int

	toLab math.Tran3D
}

// NewGrid builds a grid and its local-to-lab transform. Up need not be
// perpendicular to base; only its component orthogonal to base is used.
func NewGrid(center, base, up math.Vec4, width, height float32, rows, cols int) (*Grid, error) {
	log := logger.Named("instrument")

	if width <= 0 || height <= 0 || rows < 1 || cols < 1 {
		log.Warn("rejecting detector grid",
			zap.Float32("width", width), zap.Float32("height", height),
			zap.Int("rows", rows), zap.Int("cols", cols))
		return nil, ErrBadGrid
	}

	toLab, err := math.Orientation(base, up, center)
	if err != nil {
		b, u := base.XYZ(), up.XYZ()
		log.Warn("degenerate detector orientation",
			zap.Error(err),
			zap.Float32s("base", b[:]),
			zap.Float32s("up", u[:]))
		return nil, fmt.Errorf("detector orientation: %w", err)
	}

	return &Grid{
		Center: center,
		Base:   base,
		Up:     up,
		Width:  width,
		Height: height,
		Rows:   rows,
		Cols:   cols,
		toLab:  toLab,
	}, nil
}

// GridFromConfig places a grid at the configured distance and scattering
// angle in the horizontal (x-y) plane, facing the sample. Columns run
// horizontally and rows run along +z.
func GridFromConfig(d config.DetectorConfig) (*Grid, error) {
	rad := d.Angle * math32.Pi / 180
	sin, cos := math32.Sin(rad), math32.Cos(rad)

	center := math.Point(d.Distance*cos, d.Distance*sin, 0)
	base := math.Direction(-sin, cos, 0)
	up := math.Direction(0, 0, 1)

	return NewGrid(center, base, up, d.Width, d.Height, d.Rows, d.Cols)
}

// Local returns the centre of pixel (row, col) in detector-face coordinates
// relative to the detector centre. Indices are zero-based and are not range
// checked.
func (g *Grid) Local(row, col int) math.Vec2 {
	return math.Vec2{
		X: (float32(col)+0.5)*g.Width/float32(g.Cols) - g.Width/2,
		Y: (float32(row)+0.5)*g.Height/float32(g.Rows) - g.Height/2,
	}
}

// Position returns the lab position of pixel (row, col).
func (g *Grid) Position(row, col int) (math.Vec4, error) {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return math.Vec4{}, fmt.Errorf("pixel (%d, %d) in %dx%d grid: %w", row, col, g.Rows, g.Cols, ErrOutOfRange)
	}
	return g.toLab.Apply(g.Local(row, col).Point()), nil
}

// Positions returns the lab position of every pixel in row-major order.
func (g *Grid) Positions() []math.Vec4 {
	local := make([]math.Vec4, 0, g.Rows*g.Cols)
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			local = append(local, g.Local(row, col).Point())
		}
	}
	return g.toLab.ApplyAll(local)
}

// Transform returns the local-to-lab transform.
func (g *Grid) Transform() math.Tran3D {
	return g.toLab
}

// ModelMatrix returns the local-to-lab transform for an OpenGL renderer.
func (g *Grid) ModelMatrix() mgl32.Mat4 {
	return g.toLab.GL()
}

// QDirection returns the unit direction of the elastic scattering vector
// for a neutron detected at lab position pos.
func QDirection(pos math.Vec4) (math.Vec4, error) {
	out := math.Direction(pos.X, pos.Y, pos.Z).Normalize()
	if out.Length() == 0 {
		return math.Vec4{}, ErrForwardScatter
	}
	q := out.Sub(beam)
	if q.Length() < minQ {
		return math.Vec4{}, ErrForwardScatter
	}
	return q.Normalize(), nil
}

// SampleQDirections returns the scattering direction of every pixel,
// row-major, rotated from the lab frame into the sample frame of o.
func (g *Grid) SampleQDirections(o orientation.SampleOrientation) ([]math.Vec4, error) {
	positions := g.Positions()
	qs := make([]math.Vec4, len(positions))
	for i, pos := range positions {
		q, err := QDirection(pos)
		if err != nil {
			logger.Named("instrument").Debug("pixel on beam axis",
				zap.Int("row", i/g.Cols), zap.Int("col", i%g.Cols))
			return nil, fmt.Errorf("pixel (%d, %d): %w", i/g.Cols, i%g.Cols, err)
		}
		qs[i] = q
	}

	inv := o.GoniometerRotationInverse()
	if err := inv.ApplyToAll(qs, qs); err != nil {
		return nil, err
	}
	return qs, nil
}
