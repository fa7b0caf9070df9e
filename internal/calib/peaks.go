// Package calib refines a crystal orientation (UB) matrix from indexed
// Bragg peaks and indexes new peaks against it.
package calib

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ipns/isaw/pkg/math"
	"github.com/ipns/isaw/pkg/orientation"
)

// Peak pairs Miller indices with the measured scattering vector.
type Peak struct {
	HKL [3]float64 `yaml:"hkl,flow"`
	Q   [3]float64 `yaml:"q,flow"`
}

// PeakSet is the on-disk peak list. Orientation, when present, is the
// goniometer setting the Q vectors were measured at, in the lab frame.
type PeakSet struct {
	Orientation *orientation.SampleOrientation `yaml:"orientation,omitempty"`
	Peaks       []Peak                         `yaml:"peaks"`
}

// LoadPeaks reads a peak set from a YAML file.
func LoadPeaks(path string) (*PeakSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var set PeakSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &set, nil
}

// SavePeaks writes a peak set to path, creating parent directories.
func SavePeaks(path string, set *PeakSet) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(set)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ToSampleFrame returns copies of peaks with Q rotated from the lab frame
// into the sample frame of o.
func ToSampleFrame(peaks []Peak, o orientation.SampleOrientation) []Peak {
	out := make([]Peak, len(peaks))
	for i, p := range peaks {
		q := o.ToSample(math.Direction(float32(p.Q[0]), float32(p.Q[1]), float32(p.Q[2])))
		out[i] = Peak{
			HKL: p.HKL,
			Q:   [3]float64{float64(q.X), float64(q.Y), float64(q.Z)},
		}
	}
	return out
}

// SampleFrame returns the peaks in the sample frame. Sets without an
// orientation are assumed to be measured at the home setting already.
func (s *PeakSet) SampleFrame() []Peak {
	if s.Orientation == nil {
		return append([]Peak(nil), s.Peaks...)
	}
	return ToSampleFrame(s.Peaks, *s.Orientation)
}
