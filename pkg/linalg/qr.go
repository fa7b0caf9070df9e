package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// QRFactorization factors a (rows ≥ cols) with Householder reflections.
//
// On return a holds the upper-triangular R and the result holds one unit
// reflection vector per column, each of length rows. Row i of the result is
// zero in positions before i. A column whose tail is already zero yields a
// zero reflection vector, which acts as the identity.
func QRFactorization(a [][]float64) ([][]float64, error) {
	if err := CheckRectangular(a); err != nil {
		return nil, err
	}
	rows, cols := len(a), len(a[0])
	if rows < cols {
		return nil, fmt.Errorf("%d rows, %d columns: %w", rows, cols, ErrUnderdetermined)
	}

	u := make([][]float64, cols)
	y := make([]float64, rows)
	for col := 0; col < cols; col++ {
		u[col] = make([]float64, rows)

		var s float64
		for row := col; row < rows; row++ {
			s += a[row][col] * a[row][col]
		}
		s = math.Sqrt(s)
		if s == 0 {
			continue
		}

		for row := col; row < rows; row++ {
			u[col][row] = a[row][col]
		}
		// Add s with the sign of the diagonal to avoid cancellation.
		if a[col][col] < 0 {
			u[col][col] -= s
		} else {
			u[col][col] += s
		}
		Normalize(u[col])

		for c := col; c < cols; c++ {
			for row := range y {
				y[row] = a[row][c]
			}
			floats.AddScaled(y, -2*floats.Dot(u[col], y), u[col])
			for row := range y {
				a[row][c] = y[row]
			}
		}
		for row := col + 1; row < rows; row++ {
			a[row][col] = 0
		}
	}
	return u, nil
}

// HouseholderTransform applies the reflection y ← y − 2(u·y)u in place.
func HouseholderTransform(u, y []float64) error {
	if len(u) == 0 || len(u) != len(y) {
		return fmt.Errorf("reflection of length %d, vector of length %d: %w", len(u), len(y), ErrLengthMismatch)
	}
	floats.AddScaled(y, -2*floats.Dot(u, y), u)
	return nil
}

// QRSolve solves a·x = b in the least-squares sense, where a and u come from
// QRFactorization. The solution overwrites the leading cols entries of b and
// the remaining entries hold the residual vector. It returns the residual
// norm, which is 0 for square systems.
func QRSolve(a, u [][]float64, b []float64) (float64, error) {
	if err := CheckRectangular(a); err != nil {
		return math.NaN(), err
	}
	rows, cols := len(a), len(a[0])
	if len(u) != cols {
		return math.NaN(), fmt.Errorf("%d reflections for %d columns: %w", len(u), cols, ErrShapeMismatch)
	}
	if len(b) != rows {
		return math.NaN(), fmt.Errorf("%d rows, right-hand side of %d: %w", rows, len(b), ErrLengthMismatch)
	}
	for i, ui := range u {
		if len(ui) != rows {
			return math.NaN(), fmt.Errorf("reflection %d has length %d, want %d: %w", i, len(ui), rows, ErrLengthMismatch)
		}
	}
	for i := 0; i < cols; i++ {
		if a[i][i] == 0 {
			return math.NaN(), fmt.Errorf("zero pivot in column %d: %w", i, ErrSingular)
		}
	}

	for _, ui := range u {
		if err := HouseholderTransform(ui, b); err != nil {
			return math.NaN(), err
		}
	}

	for i := cols - 1; i >= 0; i-- {
		sum := b[i]
		for j := i + 1; j < cols; j++ {
			sum -= a[i][j] * b[j]
		}
		b[i] = sum / a[i][i]
	}

	if rows == cols {
		return 0, nil
	}
	return floats.Norm(b[cols:], 2), nil
}

// Solve solves a·x = b (rows ≥ cols) by QR factorization. Both a and b are
// consumed: a becomes R and the solution is left in the leading entries of b.
// It returns the residual norm, or NaN and an error on failure.
func Solve(a [][]float64, b []float64) (float64, error) {
	u, err := QRFactorization(a)
	if err != nil {
		return math.NaN(), err
	}
	return QRSolve(a, u, b)
}

// SolveMulti solves a·X = B for every column of B using a single
// factorization of a. Solutions overwrite the leading rows of b. The returned
// slice holds the residual norm of each column.
func SolveMulti(a, b [][]float64) ([]float64, error) {
	if err := CheckRectangular(b); err != nil {
		return nil, err
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("%d rows, right-hand sides of %d: %w", len(a), len(b), ErrShapeMismatch)
	}
	u, err := QRFactorization(a)
	if err != nil {
		return nil, err
	}

	nrhs := len(b[0])
	residuals := make([]float64, nrhs)
	col := make([]float64, len(b))
	for j := 0; j < nrhs; j++ {
		for i := range col {
			col[i] = b[i][j]
		}
		res, err := QRSolve(a, u, col)
		if err != nil {
			return nil, err
		}
		for i := range col {
			b[i][j] = col[i]
		}
		residuals[j] = res
	}
	return residuals, nil
}

// BestFitMatrix finds the n×m matrix M minimising Σ‖M·qᵢ − rᵢ‖² over k data
// pairs. Each row of q is one data vector qᵢ (length m) and each row of r the
// matching rᵢ (length n), so q is k×m and r is k×n. The result is written to
// m, which must already be n×m.
//
// q is factored once and overwritten; callers that need it afterwards must
// copy it first. The return value is the square root of the summed squared
// residuals of every row fit. With fewer data pairs than columns (k < m) or a
// singular q, it returns NaN and an error and leaves m untouched.
func BestFitMatrix(m, q, r [][]float64) (float64, error) {
	for _, x := range [][][]float64{m, q, r} {
		if err := CheckRectangular(x); err != nil {
			return math.NaN(), err
		}
	}
	k, dimQ := len(q), len(q[0])
	dimR := len(r[0])
	if len(r) != k {
		return math.NaN(), fmt.Errorf("%d data vectors, %d targets: %w", k, len(r), ErrShapeMismatch)
	}
	if len(m) != dimR || len(m[0]) != dimQ {
		return math.NaN(), fmt.Errorf("result is %dx%d, want %dx%d: %w", len(m), len(m[0]), dimR, dimQ, ErrShapeMismatch)
	}

	u, err := QRFactorization(q)
	if err != nil {
		return math.NaN(), fmt.Errorf("factoring data vectors: %w", err)
	}

	fit := make([][]float64, dimR)
	b := make([]float64, k)
	var sumSq float64
	for row := 0; row < dimR; row++ {
		for i := range b {
			b[i] = r[i][row]
		}
		res, err := QRSolve(q, u, b)
		if err != nil {
			return math.NaN(), fmt.Errorf("fitting row %d: %w", row, err)
		}
		fit[row] = append([]float64(nil), b[:dimQ]...)
		sumSq += res * res
	}

	for row := range fit {
		copy(m[row], fit[row])
	}
	return math.Sqrt(sumSq), nil
}

// Inverse returns the inverse of the square matrix a. a is not modified.
func Inverse(a [][]float64) ([][]float64, error) {
	return InverseTol(a, 0)
}

// InverseTol is Inverse that also rejects a as singular when its smallest
// R pivot is at most rtol times its largest, in absolute value. Use it when
// a carries rounding from lower-precision data, where an exactly zero pivot
// never appears.
func InverseTol(a [][]float64, rtol float64) ([][]float64, error) {
	if !IsSquare(a) {
		if err := CheckRectangular(a); err != nil {
			return nil, err
		}
		return nil, ErrNotSquare
	}
	n := len(a)
	r := Copy(a)
	u, err := QRFactorization(r)
	if err != nil {
		return nil, err
	}
	if rtol > 0 {
		lo, hi := math.Inf(1), 0.0
		for i := 0; i < n; i++ {
			p := math.Abs(r[i][i])
			lo = math.Min(lo, p)
			hi = math.Max(hi, p)
		}
		if lo <= rtol*hi {
			return nil, fmt.Errorf("pivot ratio %g at or below %g: %w", lo/hi, rtol, ErrSingular)
		}
	}

	inv := make([][]float64, n)
	for i := range inv {
		inv[i] = make([]float64, n)
	}
	col := make([]float64, n)
	for j := 0; j < n; j++ {
		for i := range col {
			col[i] = 0
		}
		col[j] = 1
		if _, err := QRSolve(r, u, col); err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			inv[i][j] = col[i]
		}
	}
	return inv, nil
}

// Determinant returns det(a) for a square matrix, computed from the QR
// factorization of a copy of a. Every non-trivial reflection flips the sign.
func Determinant(a [][]float64) (float64, error) {
	if !IsSquare(a) {
		if err := CheckRectangular(a); err != nil {
			return math.NaN(), err
		}
		return math.NaN(), ErrNotSquare
	}
	r := Copy(a)
	u, err := QRFactorization(r)
	if err != nil {
		return math.NaN(), err
	}

	det := 1.0
	for i := range r {
		det *= r[i][i]
	}
	for _, ui := range u {
		if floats.Norm(ui, 2) != 0 {
			det = -det
		}
	}
	return det, nil
}
