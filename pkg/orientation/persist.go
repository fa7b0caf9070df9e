package orientation

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Units is the only angle unit written or accepted.
const Units = "degree"

// record is the persisted form: the source angles only, never the matrices.
type record struct {
	Convention string  `yaml:"convention"`
	Phi        float32 `yaml:"phi"`
	Chi        float32 `yaml:"chi"`
	Omega      float32 `yaml:"omega"`
	Units      string  `yaml:"units"`
}

// MarshalYAML implements yaml.Marshaler.
func (o SampleOrientation) MarshalYAML() (any, error) {
	return record{
		Convention: o.convention.String(),
		Phi:        o.phi,
		Chi:        o.chi,
		Omega:      o.omega,
		Units:      Units,
	}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler. The cached rotations are
// rebuilt from the decoded angles. A missing convention or unit defaults to
// standard and degree.
func (o *SampleOrientation) UnmarshalYAML(node *yaml.Node) error {
	var r record
	if err := node.Decode(&r); err != nil {
		return err
	}
	if r.Units != "" && r.Units != Units && r.Units != "degrees" {
		return fmt.Errorf("%q: %w", r.Units, ErrUnsupportedUnits)
	}
	c := Standard
	if r.Convention != "" {
		var err error
		if c, err = ParseConvention(r.Convention); err != nil {
			return err
		}
	}
	*o = New(c, r.Phi, r.Chi, r.Omega)
	return nil
}
