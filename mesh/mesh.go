package mesh

import (
	"fmt"

	"github.com/topomesh/remap/geometry"
)

// Patch is a contiguous run of boundary faces with a name.
type Patch struct {
	Name  string
	Start int
	Size  int
}

// Mesh is an unstructured polyhedral mesh in owner/neighbour form:
// ordered point loops per face, owner cell per face, neighbour cell for
// internal faces only. Face loops are oriented so the normal points from
// owner toward neighbour (outward on the boundary). The mesh is treated
// as read-only for the lifetime of any computation borrowing it; derived
// connectivity and geometry are cached on first use.
type Mesh struct {
	Points    []geometry.Vec
	Faces     [][]int
	Owner     []int
	Neighbour []int
	Patches   []Patch

	nCells int

	cells      [][]int
	cellCells  [][]int
	cellPoints [][]int

	cellCentres []geometry.Vec
	cellVolumes []float64
}

func (m *Mesh) NPoints() int { return len(m.Points) }
func (m *Mesh) NFaces() int  { return len(m.Faces) }

// NInternalFaces returns the number of faces with a neighbour cell.
func (m *Mesh) NInternalFaces() int { return len(m.Neighbour) }

func (m *Mesh) NCells() int {
	if m.nCells == 0 {
		for _, c := range m.Owner {
			if c+1 > m.nCells {
				m.nCells = c + 1
			}
		}
		for _, c := range m.Neighbour {
			if c+1 > m.nCells {
				m.nCells = c + 1
			}
		}
	}
	return m.nCells
}

// Cells returns the face labels of each cell.
func (m *Mesh) Cells() [][]int {
	if m.cells == nil {
		m.cells = make([][]int, m.NCells())
		for fI, own := range m.Owner {
			m.cells[own] = append(m.cells[own], fI)
		}
		for fI, nbr := range m.Neighbour {
			m.cells[nbr] = append(m.cells[nbr], fI)
		}
	}
	return m.cells
}

// CellCells returns the face-neighbour cells of each cell, in face order.
func (m *Mesh) CellCells() [][]int {
	if m.cellCells == nil {
		cells := m.Cells()
		m.cellCells = make([][]int, len(cells))
		for cI, cellFaces := range cells {
			for _, fI := range cellFaces {
				if fI >= m.NInternalFaces() {
					continue
				}
				if m.Owner[fI] == cI {
					m.cellCells[cI] = append(m.cellCells[cI], m.Neighbour[fI])
				} else {
					m.cellCells[cI] = append(m.cellCells[cI], m.Owner[fI])
				}
			}
		}
	}
	return m.cellCells
}

// CellPoints returns the unique point labels of each cell, in order of
// first appearance over the cell's faces.
func (m *Mesh) CellPoints() [][]int {
	if m.cellPoints == nil {
		cells := m.Cells()
		m.cellPoints = make([][]int, len(cells))
		seen := make([]int, m.NPoints())
		for i := range seen {
			seen[i] = -1
		}
		for cI, cellFaces := range cells {
			for _, fI := range cellFaces {
				for _, pI := range m.Faces[fI] {
					if seen[pI] != cI {
						seen[pI] = cI
						m.cellPoints[cI] = append(m.cellPoints[cI], pI)
					}
				}
			}
		}
	}
	return m.cellPoints
}

// ComputeGeometry derives cell centroids and volumes via the divergence
// theorem. A non-positive cell volume indicates a degenerate
// (zero-thickness) or inverted cell and is reported, not accepted.
func (m *Mesh) ComputeGeometry() error {
	if m.cellCentres != nil {
		return nil
	}
	cells := m.Cells()
	centres := make([]geometry.Vec, len(cells))
	volumes := make([]float64, len(cells))

	for cI, cellFaces := range cells {
		centre, vol := geometry.CellCentreAndVolume(
			cI, m.Points, m.Faces, cellFaces, m.Owner,
		)
		if vol <= 0 {
			return fmt.Errorf("degenerate cell %d: volume %g", cI, vol)
		}
		centres[cI] = centre
		volumes[cI] = vol
	}

	// The cache is only populated once every cell validates, so a
	// rejected mesh stays rejected on later calls.
	m.cellCentres = centres
	m.cellVolumes = volumes
	return nil
}

// CellCentres returns cached cell centroids; ComputeGeometry must have
// succeeded first.
func (m *Mesh) CellCentres() []geometry.Vec { return m.cellCentres }

// CellVolumes returns cached cell volumes.
func (m *Mesh) CellVolumes() []float64 { return m.cellVolumes }

// TotalVolume sums the cached cell volumes.
func (m *Mesh) TotalVolume() (v float64) {
	for _, cv := range m.cellVolumes {
		v += cv
	}
	return
}

// IsOwner reports whether cell cI owns face fI.
func (m *Mesh) IsOwner(fI, cI int) bool { return m.Owner[fI] == cI }

// PointInCell tests containment of p in cell cI.
func (m *Mesh) PointInCell(cI int, p geometry.Vec) bool {
	return geometry.PointInCell(cI, m.Points, m.Faces, m.Cells()[cI], m.Owner, p)
}

// CellPlanes returns the outward-oriented bounding planes of a cell, one
// per face, with unit normals.
func (m *Mesh) CellPlanes(cI int) []geometry.Plane {
	cellFaces := m.Cells()[cI]
	planes := make([]geometry.Plane, 0, len(cellFaces))
	for _, fI := range cellFaces {
		n := geometry.FaceNormal(m.Points, m.Faces[fI]).Unit()
		if !m.IsOwner(fI, cI) {
			n = n.Scale(-1.0)
		}
		planes = append(planes, geometry.Plane{
			Base:   geometry.FaceCentre(m.Points, m.Faces[fI]),
			Normal: n,
		})
	}
	return planes
}

// CellPolyhedron extracts a cell as a stand-alone polyhedron with all
// face loops oriented outward.
func (m *Mesh) CellPolyhedron(cI int) geometry.Polyhedron {
	var (
		cellFaces = m.Cells()[cI]
		local     = make(map[int]int)
		poly      geometry.Polyhedron
	)
	for _, fI := range cellFaces {
		loop := make([]int, 0, len(m.Faces[fI]))
		for _, pI := range m.Faces[fI] {
			lI, exists := local[pI]
			if !exists {
				lI = len(poly.Points)
				local[pI] = lI
				poly.Points = append(poly.Points, m.Points[pI])
			}
			loop = append(loop, lI)
		}
		if !m.IsOwner(fI, cI) {
			for i, j := 0, len(loop)-1; i < j; i, j = i+1, j-1 {
				loop[i], loop[j] = loop[j], loop[i]
			}
		}
		poly.Faces = append(poly.Faces, loop)
	}
	return poly
}

// NearestCell returns the cell whose centroid is closest to p. Linear
// scan; used only to produce search seeds.
func (m *Mesh) NearestCell(p geometry.Vec) (nearest int) {
	best := -1.0
	for cI, centre := range m.cellCentres {
		d := centre.Sub(p).MagSqr()
		if best < 0 || d < best {
			best = d
			nearest = cI
		}
	}
	return
}

// BoundaryFaces returns the global face labels of a patch.
func (p Patch) BoundaryFaces() []int {
	faces := make([]int, p.Size)
	for i := range faces {
		faces[i] = p.Start + i
	}
	return faces
}
