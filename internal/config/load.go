package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/ipns/isaw/pkg/orientation"
)

// FileName is the config file looked up in the working and config dirs.
const FileName = "isaw.yaml"

var ErrInvalid = errors.New("invalid configuration")

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would make later geometry silently wrong.
func (c *Config) Validate() error {
	if _, err := orientation.ParseConvention(c.Orientation.Convention); err != nil {
		return fmt.Errorf("%w: orientation: %w", ErrInvalid, err)
	}
	d := c.Detector
	if d.Distance <= 0 || d.Width <= 0 || d.Height <= 0 || d.Rows < 1 || d.Cols < 1 {
		return fmt.Errorf("%w: detector needs positive distance, size, rows and cols", ErrInvalid)
	}
	if c.Calibration.MinPeaks < 3 {
		return fmt.Errorf("%w: calibration.min_peaks must be at least 3, got %d", ErrInvalid, c.Calibration.MinPeaks)
	}
	return nil
}

// SampleOrientation builds the configured goniometer setting.
func (c *Config) SampleOrientation() (orientation.SampleOrientation, error) {
	conv, err := orientation.ParseConvention(c.Orientation.Convention)
	if err != nil {
		return orientation.SampleOrientation{}, err
	}
	o := c.Orientation
	return orientation.New(conv, o.Phi, o.Chi, o.Omega), nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		filepath.Join(".", FileName),
		filepath.Join(ConfigDir(), FileName),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "ISAW")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "ISAW")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "isaw")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "isaw")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
