// isawgeom is a CLI for instrument geometry: goniometer rotations, detector
// pixel positions and orientation-matrix fits.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/ipns/isaw/internal/calib"
	"github.com/ipns/isaw/internal/config"
	"github.com/ipns/isaw/internal/instrument"
	"github.com/ipns/isaw/internal/logger"
	"github.com/ipns/isaw/pkg/orientation"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	command := args[0]
	args = args[1:]

	switch command {
	case "orient":
		err = cmdOrient(cfg, args)
	case "grid":
		err = cmdGrid(cfg, args)
	case "fit":
		err = cmdFit(cfg, args)
	case "index":
		err = cmdIndex(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`isawgeom - instrument geometry workbench

Usage:
  isawgeom [flags] <command> [options]

Flags:
  -config <file>       Config file (default ./isaw.yaml)
  -convention <name>   Goniometer convention: standard, ipns_scd
  -debug               Debug logging
  -log <file>          Also write a rotated JSON log
  -min-peaks <n>       Minimum peaks for a fit

Commands:
  orient [phi chi omega]        Print the goniometer rotation and its inverse
  grid [-n N]                   Print detector pixel positions and Q directions
  fit <peaks.yaml>              Fit an orientation matrix to indexed peaks
  index [-ref ref.yaml] <peaks.yaml>
                                Index peaks against a fitted orientation matrix

Examples:
  isawgeom orient 0 45 90
  isawgeom -convention standard grid -n 10
  isawgeom -min-peaks 6 fit run42.yaml`)
}

func cmdOrient(cfg *config.Config, args []string) error {
	o, err := cfg.SampleOrientation()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		if len(args) != 3 {
			return fmt.Errorf("usage: isawgeom orient [phi chi omega]")
		}
		var angles [3]float32
		for i, a := range args {
			v, err := strconv.ParseFloat(a, 32)
			if err != nil {
				return fmt.Errorf("angle %q: %w", a, err)
			}
			angles[i] = float32(v)
		}
		o = orientation.New(o.Convention(), angles[0], angles[1], angles[2])
	}

	fmt.Printf("Orientation: %s\n\n", o)
	fmt.Println("Sample to lab:")
	fmt.Println(o.GoniometerRotation())
	fmt.Println()
	fmt.Println("Lab to sample:")
	fmt.Println(o.GoniometerRotationInverse())
	fmt.Println()
	fmt.Printf("Quaternion: %v\n", o.Quat())
	return nil
}

func cmdGrid(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("grid", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N pixels (0 = all)")
	fs.Parse(args)

	g, err := instrument.GridFromConfig(cfg.Detector)
	if err != nil {
		return err
	}
	o, err := cfg.SampleOrientation()
	if err != nil {
		return err
	}
	qs, err := g.SampleQDirections(o)
	if err != nil {
		return err
	}

	fmt.Printf("Detector: %dx%d, %.3f x %.3f m at %.3f m, %.1f deg\n",
		g.Rows, g.Cols, g.Width, g.Height, cfg.Detector.Distance, cfg.Detector.Angle)
	fmt.Printf("Orientation: %s\n\n", o)
	fmt.Printf("%5s %5s  %28s  %28s\n", "row", "col", "lab position", "sample Q direction")

	for i, pos := range g.Positions() {
		if *limit > 0 && i >= *limit {
			fmt.Printf("... and %d more\n", len(qs)-i)
			break
		}
		q := qs[i]
		fmt.Printf("%5d %5d  (%8.4f %8.4f %8.4f)  (%8.4f %8.4f %8.4f)\n",
			i/g.Cols, i%g.Cols, pos.X, pos.Y, pos.Z, q.X, q.Y, q.Z)
	}
	return nil
}

func cmdFit(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: isawgeom fit <peaks.yaml>")
	}
	res, err := fitFile(cfg, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Peaks:    %d\n", len(res.Errors))
	fmt.Println("UB:")
	for _, row := range res.UB {
		fmt.Printf("  [%12.6f %12.6f %12.6f]\n", row[0], row[1], row[2])
	}
	fmt.Printf("Residual: %.6g\n", res.Residual)
	fmt.Printf("RMS:      %.6g\n", res.RMS())
	fmt.Printf("Error:    mean %.6g, std dev %.6g\n", res.Mean, res.StdDev)
	fmt.Printf("det(UB):  %.6g (right-handed: %t)\n", res.Det, res.RightHanded())

	if !res.Acceptable(cfg.Calibration.MaxResidual) {
		logger.Warn("fit exceeds residual limit",
			zap.Float64("rms", res.RMS()),
			zap.Float64("max_residual", cfg.Calibration.MaxResidual))
		return fmt.Errorf("RMS %.6g above limit %.6g", res.RMS(), cfg.Calibration.MaxResidual)
	}
	return nil
}

func cmdIndex(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	ref := fs.String("ref", "", "Peak file to fit the orientation matrix from (default: the indexed file)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: isawgeom index [-ref ref.yaml] <peaks.yaml>")
	}
	path := fs.Arg(0)
	if *ref == "" {
		*ref = path
	}

	res, err := fitFile(cfg, *ref)
	if err != nil {
		return err
	}
	set, err := calib.LoadPeaks(path)
	if err != nil {
		return err
	}
	peaks := set.SampleFrame()
	hkls, err := calib.IndexAll(res.UB, peaks)
	if err != nil {
		return err
	}

	fmt.Printf("%28s  %28s\n", "listed hkl", "indexed hkl")
	for i, h := range hkls {
		p := peaks[i].HKL
		fmt.Printf("(%8.3f %8.3f %8.3f)  (%8.3f %8.3f %8.3f)\n", p[0], p[1], p[2], h[0], h[1], h[2])
	}
	return nil
}

// fitFile loads a peak file, moves it into the sample frame and fits UB.
func fitFile(cfg *config.Config, path string) (*calib.Result, error) {
	set, err := calib.LoadPeaks(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded peaks", zap.String("path", path), zap.Int("count", len(set.Peaks)))
	return calib.FitUB(set.SampleFrame(), cfg.Calibration.MinPeaks)
}
