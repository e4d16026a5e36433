package mesh

// Decomposition maps a mesh onto a simplex-decomposed equivalent:
// decomposed cells CellStarts[c] .. CellStarts[c]+CellSizes[c] belong to
// parent cell c, so per-simplex overlap results fold back onto parents.
type Decomposition struct {
	Mesh       *Mesh
	CellStarts []int
	CellSizes  []int
}

// Decomposer splits non-simplicial cells into simplices before overlap
// search. The decomposition itself is an external collaborator; this
// package only defines the exchange surface.
type Decomposer interface {
	Decompose(m *Mesh) (*Decomposition, error)
}

// Identity wraps a mesh in a trivial one-to-one decomposition.
func Identity(m *Mesh) *Decomposition {
	n := m.NCells()
	d := &Decomposition{
		Mesh:       m,
		CellStarts: make([]int, n),
		CellSizes:  make([]int, n),
	}
	for c := 0; c < n; c++ {
		d.CellStarts[c] = c
		d.CellSizes[c] = 1
	}
	return d
}
