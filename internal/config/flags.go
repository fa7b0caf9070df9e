package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagLog        = flag.String("log", "", "Write a rotated JSON log to this file")
	flagConvention = flag.String("convention", "", "Goniometer convention (standard, ipns_scd)")
	flagMinPeaks   = flag.Int("min-peaks", 0, "Minimum peaks for an orientation-matrix fit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments left after ParseFlags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLog != "" {
		cfg.Logging.LogFile = *flagLog
	}
	if *flagConvention != "" {
		cfg.Orientation.Convention = *flagConvention
	}
	if *flagMinPeaks > 0 {
		cfg.Calibration.MinPeaks = *flagMinPeaks
	}
}
