package calib

import (
	"errors"
	"fmt"
	gomath "math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ipns/isaw/internal/logger"
	"github.com/ipns/isaw/pkg/linalg"
)

// MinPeaks is the fewest peaks that determine a 3x3 UB matrix.
const MinPeaks = 3

var ErrTooFewPeaks = errors.New("too few peaks to fit an orientation matrix")

// Result is a fitted orientation matrix with its quality measures.
type Result struct {
	UB       [][]float64 // 3x3, maps hkl to Q
	Residual float64     // sqrt of the summed squared residuals
	Errors   []float64   // |UB·hkl - Q| per peak, in input order
	Mean     float64     // mean of Errors
	StdDev   float64     // sample standard deviation of Errors
	Det      float64     // det(UB): reciprocal cell volume, negative if left-handed
}

// RightHanded reports whether UB indexes a right-handed reciprocal cell.
func (r *Result) RightHanded() bool {
	return r.Det > 0
}

// RMS returns the root-mean-square per-peak error.
func (r *Result) RMS() float64 {
	if len(r.Errors) == 0 {
		return gomath.NaN()
	}
	return r.Residual / gomath.Sqrt(float64(len(r.Errors)))
}

// Acceptable reports whether the RMS error is at most maxResidual.
func (r *Result) Acceptable(maxResidual float64) bool {
	rms := r.RMS()
	return !gomath.IsNaN(rms) && rms <= maxResidual
}

// FitUB finds the UB matrix minimising Σ|UB·hkl - Q|² over peaks. Q must
// already be in the sample frame. minPeaks below MinPeaks is raised to it.
// peaks is not modified.
func FitUB(peaks []Peak, minPeaks int) (*Result, error) {
	log := logger.Named("calib")

	if minPeaks < MinPeaks {
		minPeaks = MinPeaks
	}
	if len(peaks) < minPeaks {
		log.Warn("not enough peaks for fit", zap.Int("peaks", len(peaks)), zap.Int("min_peaks", minPeaks))
		return nil, fmt.Errorf("%d peaks, need %d: %w", len(peaks), minPeaks, ErrTooFewPeaks)
	}

	hkl := make([][]float64, len(peaks))
	q := make([][]float64, len(peaks))
	for i, p := range peaks {
		hkl[i] = append([]float64(nil), p.HKL[:]...)
		q[i] = append([]float64(nil), p.Q[:]...)
	}

	ub := linalg.Identity(3)
	residual, err := linalg.BestFitMatrix(ub, linalg.Copy(hkl), q)
	if err != nil {
		log.Error("orientation matrix fit failed", zap.Error(err), zap.Int("peaks", len(peaks)))
		return nil, fmt.Errorf("fitting UB: %w", err)
	}

	errs := make([]float64, len(peaks))
	for i := range peaks {
		pred, err := linalg.MultiplyVec(ub, hkl[i])
		if err != nil {
			return nil, err
		}
		errs[i] = floats.Distance(pred, q[i], 2)
	}

	det, err := linalg.Determinant(ub)
	if err != nil {
		return nil, err
	}

	res := &Result{
		UB:       ub,
		Residual: residual,
		Errors:   errs,
		Mean:     stat.Mean(errs, nil),
		StdDev:   stat.StdDev(errs, nil),
		Det:      det,
	}
	if !res.RightHanded() {
		log.Warn("orientation matrix is not right-handed", zap.Float64("det", det))
	}
	log.Info("fitted orientation matrix",
		zap.Int("peaks", len(peaks)),
		zap.Float64("residual", res.Residual),
		zap.Float64("mean_error", res.Mean),
		zap.Float64("stddev_error", res.StdDev),
		zap.Float64("det", res.Det))
	return res, nil
}

// Index returns the fractional Miller indices of the sample-frame
// scattering vector q: hkl = UB⁻¹·q.
func Index(ub [][]float64, q [3]float64) ([3]float64, error) {
	inv, err := linalg.Inverse(ub)
	if err != nil {
		return [3]float64{}, fmt.Errorf("inverting UB: %w", err)
	}
	h, err := linalg.MultiplyVec(inv, q[:])
	if err != nil {
		return [3]float64{}, err
	}
	return [3]float64{h[0], h[1], h[2]}, nil
}

// IndexAll indexes every peak's Q against ub, factoring UB once.
func IndexAll(ub [][]float64, peaks []Peak) ([][3]float64, error) {
	inv, err := linalg.Inverse(ub)
	if err != nil {
		logger.Named("calib").Error("cannot index with singular UB", zap.Error(err))
		return nil, fmt.Errorf("inverting UB: %w", err)
	}
	out := make([][3]float64, len(peaks))
	for i, p := range peaks {
		h, err := linalg.MultiplyVec(inv, p.Q[:])
		if err != nil {
			return nil, err
		}
		out[i] = [3]float64{h[0], h[1], h[2]}
	}
	return out, nil
}
