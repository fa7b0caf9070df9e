// Package linalg provides stateless linear algebra routines over plain
// row-major [][]float64 matrices: Householder QR factorization, linear and
// least-squares solves, and best-fit matrix recovery.
//
// Failures never panic. Scalar-returning functions return NaN together with
// an error; matrix-returning functions return nil with an error.
package linalg

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrEmpty           = errors.New("matrix is nil or empty")
	ErrNotRectangular  = errors.New("matrix rows have unequal lengths")
	ErrNotSquare       = errors.New("matrix is not square")
	ErrUnderdetermined = errors.New("matrix has fewer rows than columns")
	ErrShapeMismatch   = errors.New("matrix shapes do not conform")
	ErrLengthMismatch  = errors.New("vector lengths differ or are empty")
	ErrSingular        = errors.New("matrix is singular")
)

// CheckRectangular reports whether m is non-empty and every row has the same
// number of columns. It returns nil on success.
func CheckRectangular(m [][]float64) error {
	if len(m) == 0 || len(m[0]) == 0 {
		return ErrEmpty
	}
	n := len(m[0])
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), n, ErrNotRectangular)
		}
	}
	return nil
}

// IsSquare reports whether m is rectangular with as many rows as columns.
func IsSquare(m [][]float64) bool {
	return CheckRectangular(m) == nil && len(m) == len(m[0])
}

// Normalize scales v to unit length in place. A zero vector is left unchanged.
func Normalize(v []float64) {
	if len(v) == 0 {
		return
	}
	n := floats.Norm(v, 2)
	if n == 0 {
		return
	}
	floats.Scale(1/n, v)
}

// Identity returns an n×n identity matrix.
func Identity(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = 1
	}
	return m
}

// Copy returns a deep copy of m.
func Copy(m [][]float64) [][]float64 {
	if m == nil {
		return nil
	}
	c := make([][]float64, len(m))
	for i, row := range m {
		c[i] = append([]float64(nil), row...)
	}
	return c
}

// Transpose returns a new matrix that is the transpose of m.
func Transpose(m [][]float64) ([][]float64, error) {
	if err := CheckRectangular(m); err != nil {
		return nil, err
	}
	rows, cols := len(m), len(m[0])
	t := make([][]float64, cols)
	for j := range t {
		t[j] = make([]float64, rows)
		for i := 0; i < rows; i++ {
			t[j][i] = m[i][j]
		}
	}
	return t, nil
}

// Multiply returns the product a·b for any conforming shapes.
func Multiply(a, b [][]float64) ([][]float64, error) {
	if err := CheckRectangular(a); err != nil {
		return nil, err
	}
	if err := CheckRectangular(b); err != nil {
		return nil, err
	}
	n, inner, m := len(a), len(a[0]), len(b[0])
	if len(b) != inner {
		return nil, fmt.Errorf("%dx%d times %dx%d: %w", n, inner, len(b), m, ErrShapeMismatch)
	}

	c := make([][]float64, n)
	for i := range c {
		c[i] = make([]float64, m)
		for k := 0; k < inner; k++ {
			aik := a[i][k]
			if aik == 0 {
				continue
			}
			floats.AddScaled(c[i], aik, b[k])
		}
	}
	return c, nil
}

// MultiplyVec returns the matrix-vector product a·x.
func MultiplyVec(a [][]float64, x []float64) ([]float64, error) {
	if err := CheckRectangular(a); err != nil {
		return nil, err
	}
	if len(a[0]) != len(x) {
		return nil, fmt.Errorf("%d columns, vector of %d: %w", len(a[0]), len(x), ErrLengthMismatch)
	}
	y := make([]float64, len(a))
	for i, row := range a {
		y[i] = floats.Dot(row, x)
	}
	return y, nil
}
