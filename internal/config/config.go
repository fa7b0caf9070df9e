// Package config handles workbench configuration loading and management.
package config

// Config holds all geometry workbench settings.
type Config struct {
	Orientation OrientationConfig `yaml:"orientation"`
	Detector    DetectorConfig    `yaml:"detector"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// OrientationConfig holds the default goniometer setting.
type OrientationConfig struct {
	Convention string  `yaml:"convention"` // "standard" or "ipns_scd"
	Phi        float32 `yaml:"phi"`        // degrees
	Chi        float32 `yaml:"chi"`        // degrees
	Omega      float32 `yaml:"omega"`      // degrees
}

// DetectorConfig describes a flat rectangular detector facing the sample.
// Lengths are in metres.
type DetectorConfig struct {
	Distance float32 `yaml:"distance"` // sample to detector centre
	Angle    float32 `yaml:"angle"`    // scattering angle of the centre, degrees
	Width    float32 `yaml:"width"`
	Height   float32 `yaml:"height"`
	Rows     int     `yaml:"rows"`
	Cols     int     `yaml:"cols"`
}

// CalibrationConfig holds orientation-matrix fit settings.
type CalibrationConfig struct {
	MinPeaks    int     `yaml:"min_peaks"`
	MaxResidual float64 `yaml:"max_residual"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Orientation: OrientationConfig{
			Convention: "ipns_scd",
		},
		Detector: DetectorConfig{
			Distance: 0.25,
			Angle:    90,
			Width:    0.15,
			Height:   0.15,
			Rows:     100,
			Cols:     100,
		},
		Calibration: CalibrationConfig{
			MinPeaks:    3,
			MaxResidual: 0.05,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
