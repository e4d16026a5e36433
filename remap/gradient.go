package remap

import (
	"gonum.org/v1/gonum/mat"

	"github.com/topomesh/remap/geometry"
	"github.com/topomesh/remap/mesh"
)

// ScalarGradient reconstructs per-cell gradients of a scalar field by a
// least-squares fit over face-neighbour centroid deltas. Cells with fewer
// than three neighbours (or a rank-deficient stencil) get a zero
// gradient, degrading the conservative correction to first order there.
func ScalarGradient(m *mesh.Mesh, values []float64) []geometry.Vec {
	var (
		cellCells = m.CellCells()
		centres   = m.CellCentres()
		grads     = make([]geometry.Vec, m.NCells())
	)

	for cI, nbrs := range cellCells {
		if len(nbrs) < 3 {
			continue
		}

		A := mat.NewDense(len(nbrs), 3, nil)
		b := mat.NewVecDense(len(nbrs), nil)
		for i, nbr := range nbrs {
			d := centres[nbr].Sub(centres[cI])
			A.SetRow(i, d[:])
			b.SetVec(i, values[nbr]-values[cI])
		}

		var qr mat.QR
		qr.Factorize(A)

		var x mat.VecDense
		if err := qr.SolveVecTo(&x, false, b); err != nil {
			continue
		}
		grads[cI] = geometry.Vec{x.AtVec(0), x.AtVec(1), x.AtVec(2)}
	}
	return grads
}

// VectorGradient reconstructs per-cell gradient tensors of a vector
// field; component c of the result satisfies dv_c = T[c]·dr.
func VectorGradient(m *mesh.Mesh, values []geometry.Vec) []geometry.Tensor {
	var (
		cellCells = m.CellCells()
		centres   = m.CellCentres()
		grads     = make([]geometry.Tensor, m.NCells())
	)

	for cI, nbrs := range cellCells {
		if len(nbrs) < 3 {
			continue
		}

		A := mat.NewDense(len(nbrs), 3, nil)
		B := mat.NewDense(len(nbrs), 3, nil)
		for i, nbr := range nbrs {
			d := centres[nbr].Sub(centres[cI])
			dv := values[nbr].Sub(values[cI])
			A.SetRow(i, d[:])
			B.SetRow(i, dv[:])
		}

		var qr mat.QR
		qr.Factorize(A)

		var X mat.Dense
		if err := qr.SolveTo(&X, false, B); err != nil {
			continue
		}
		// X[m][c] = dv_c/dx_m; store row-contracted form
		for c := 0; c < 3; c++ {
			for mI := 0; mI < 3; mI++ {
				grads[cI][c][mI] = X.At(mI, c)
			}
		}
	}
	return grads
}
