package linalg

import "gonum.org/v1/gonum/mat"

// ToDense copies m into a gonum dense matrix.
func ToDense(m [][]float64) (*mat.Dense, error) {
	if err := CheckRectangular(m); err != nil {
		return nil, err
	}
	rows, cols := len(m), len(m[0])
	data := make([]float64, 0, rows*cols)
	for _, row := range m {
		data = append(data, row...)
	}
	return mat.NewDense(rows, cols, data), nil
}

// FromDense copies any gonum matrix into row-major slices.
func FromDense(d mat.Matrix) [][]float64 {
	rows, cols := d.Dims()
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = d.At(i, j)
		}
	}
	return m
}
