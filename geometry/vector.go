package geometry

import "math"

// Vec is a point or direction in R3.
type Vec [3]float64

func (a Vec) Add(b Vec) Vec {
	return Vec{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func (a Vec) Sub(b Vec) Vec {
	return Vec{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func (a Vec) Scale(s float64) Vec {
	return Vec{s * a[0], s * a[1], s * a[2]}
}

func (a Vec) Dot(b Vec) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func (a Vec) Cross(b Vec) Vec {
	return Vec{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func (a Vec) Mag() float64 {
	return math.Sqrt(a.Dot(a))
}

func (a Vec) MagSqr() float64 {
	return a.Dot(a)
}

// Unit returns the normalized direction, guarded against zero magnitude
func (a Vec) Unit() Vec {
	return a.Scale(1.0 / (a.Mag() + VSmall))
}

// Tensor is a rank-2 tensor in R3, row major.
type Tensor [3][3]float64

func (t Tensor) Add(u Tensor) (r Tensor) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = t[i][j] + u[i][j]
		}
	}
	return
}

func (t Tensor) Scale(s float64) (r Tensor) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = s * t[i][j]
		}
	}
	return
}

// MulVec contracts the tensor with a vector: r_i = t_ij v_j
func (t Tensor) MulVec(v Vec) (r Vec) {
	for i := 0; i < 3; i++ {
		r[i] = t[i][0]*v[0] + t[i][1]*v[1] + t[i][2]*v[2]
	}
	return
}

// Outer forms the outer product a_i b_j
func Outer(a, b Vec) (r Tensor) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = a[i] * b[j]
		}
	}
	return
}
