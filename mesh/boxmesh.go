package mesh

import "github.com/topomesh/remap/geometry"

// NewBoxMesh builds a structured hex mesh of nx*ny*nz cells spanning
// [min, max], in owner/neighbour form with six boundary patches. Used as
// an analytic fixture: cell volumes and centroids are known exactly.
func NewBoxMesh(nx, ny, nz int, min, max geometry.Vec) *Mesh {
	var (
		dx = (max[0] - min[0]) / float64(nx)
		dy = (max[1] - min[1]) / float64(ny)
		dz = (max[2] - min[2]) / float64(nz)
	)

	m := &Mesh{}

	// Point grid, x fastest
	pointID := func(i, j, k int) int {
		return i + (nx+1)*(j+(ny+1)*k)
	}
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				m.Points = append(m.Points, geometry.Vec{
					min[0] + float64(i)*dx,
					min[1] + float64(j)*dy,
					min[2] + float64(k)*dz,
				})
			}
		}
	}

	cellID := func(i, j, k int) int {
		return i + nx*(j+ny*k)
	}

	addFace := func(loop []int, own, nbr int) {
		m.Faces = append(m.Faces, loop)
		m.Owner = append(m.Owner, own)
		if nbr >= 0 {
			m.Neighbour = append(m.Neighbour, nbr)
		}
	}

	// Internal faces: each cell connects to its +x, +y, +z neighbours so
	// the owner always carries the lower cell id and the loop normal
	// points from owner to neighbour.
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				c := cellID(i, j, k)
				if i < nx-1 {
					addFace([]int{
						pointID(i+1, j, k), pointID(i+1, j+1, k),
						pointID(i+1, j+1, k+1), pointID(i+1, j, k+1),
					}, c, cellID(i+1, j, k))
				}
				if j < ny-1 {
					addFace([]int{
						pointID(i, j+1, k), pointID(i, j+1, k+1),
						pointID(i+1, j+1, k+1), pointID(i+1, j+1, k),
					}, c, cellID(i, j+1, k))
				}
				if k < nz-1 {
					addFace([]int{
						pointID(i, j, k+1), pointID(i+1, j, k+1),
						pointID(i+1, j+1, k+1), pointID(i, j+1, k+1),
					}, c, cellID(i, j, k+1))
				}
			}
		}
	}

	// Boundary patches, outward normals
	patch := func(name string, add func()) {
		start := len(m.Faces)
		add()
		m.Patches = append(m.Patches, Patch{
			Name:  name,
			Start: start,
			Size:  len(m.Faces) - start,
		})
	}

	patch("xmin", func() {
		for k := 0; k < nz; k++ {
			for j := 0; j < ny; j++ {
				addFace([]int{
					pointID(0, j, k), pointID(0, j, k+1),
					pointID(0, j+1, k+1), pointID(0, j+1, k),
				}, cellID(0, j, k), -1)
			}
		}
	})
	patch("xmax", func() {
		for k := 0; k < nz; k++ {
			for j := 0; j < ny; j++ {
				addFace([]int{
					pointID(nx, j, k), pointID(nx, j+1, k),
					pointID(nx, j+1, k+1), pointID(nx, j, k+1),
				}, cellID(nx-1, j, k), -1)
			}
		}
	})
	patch("ymin", func() {
		for k := 0; k < nz; k++ {
			for i := 0; i < nx; i++ {
				addFace([]int{
					pointID(i, 0, k), pointID(i+1, 0, k),
					pointID(i+1, 0, k+1), pointID(i, 0, k+1),
				}, cellID(i, 0, k), -1)
			}
		}
	})
	patch("ymax", func() {
		for k := 0; k < nz; k++ {
			for i := 0; i < nx; i++ {
				addFace([]int{
					pointID(i, ny, k), pointID(i, ny, k+1),
					pointID(i+1, ny, k+1), pointID(i+1, ny, k),
				}, cellID(i, ny-1, k), -1)
			}
		}
	})
	patch("zmin", func() {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				addFace([]int{
					pointID(i, j, 0), pointID(i, j+1, 0),
					pointID(i+1, j+1, 0), pointID(i+1, j, 0),
				}, cellID(i, j, 0), -1)
			}
		}
	})
	patch("zmax", func() {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				addFace([]int{
					pointID(i, j, nz), pointID(i+1, j, nz),
					pointID(i+1, j+1, nz), pointID(i, j+1, nz),
				}, cellID(i, j, nz-1), -1)
			}
		}
	})

	return m
}

// NewUnitCubeMesh is a single-cell unit cube.
func NewUnitCubeMesh() *Mesh {
	return NewBoxMesh(1, 1, 1, geometry.Vec{0, 0, 0}, geometry.Vec{1, 1, 1})
}
