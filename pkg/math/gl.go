package math

import "github.com/go-gl/mathgl/mgl32"

// GL returns t in the column-major layout expected by OpenGL uniforms.
func (t Tran3D) GL() mgl32.Mat4 {
	var g mgl32.Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			g[c*4+r] = t.m[r][c]
		}
	}
	return g
}

// FromGL converts a column-major OpenGL matrix into a Tran3D.
func FromGL(g mgl32.Mat4) Tran3D {
	var t Tran3D
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			t.m[r][c] = g[c*4+r]
		}
	}
	return t
}
