package geometry

import (
	"math"
	"sort"
)

// Plane is an oriented cutting plane. Normal is unit length and points
// toward the discarded half-space.
type Plane struct {
	Base   Vec
	Normal Vec
}

// Polyhedron is a closed cell given as outward-oriented face loops over
// its own point list. Points not referenced by any face are permitted and
// ignored by the geometric accumulations.
type Polyhedron struct {
	Points []Vec
	Faces  [][]int
}

// IsEmpty reports whether the polyhedron has been clipped away entirely.
func (p Polyhedron) IsEmpty() bool {
	return len(p.Faces) < 4
}

// PointLabels returns the labels referenced by the face loops, each once.
func (p Polyhedron) PointLabels() (labels []int) {
	seen := make([]bool, len(p.Points))
	for _, f := range p.Faces {
		for _, pI := range f {
			if !seen[pI] {
				seen[pI] = true
				labels = append(labels, pI)
			}
		}
	}
	sort.Ints(labels)
	return
}

// CentreAndVolume accumulates signed face-pyramid contributions about an
// estimated centroid, as for mesh cells, with all faces already outward.
func (p Polyhedron) CentreAndVolume() (centre Vec, volume float64) {
	if p.IsEmpty() {
		return Vec{}, 0
	}

	var cEst Vec
	for _, f := range p.Faces {
		cEst = cEst.Add(FaceCentre(p.Points, f))
	}
	cEst = cEst.Scale(1.0 / float64(len(p.Faces)))

	for _, f := range p.Faces {
		fArea := FaceNormal(p.Points, f).Scale(0.5)
		fCentre := FaceCentre(p.Points, f)

		pyr3Vol := fArea.Dot(fCentre.Sub(cEst))
		pc := fCentre.Scale(3.0 / 4.0).Add(cEst.Scale(1.0 / 4.0))

		centre = centre.Add(pc.Scale(pyr3Vol))
		volume += pyr3Vol
	}

	centre = centre.Scale(1.0 / (volume + VSmall))
	volume *= 1.0 / 3.0
	return
}

// lengthScale returns a characteristic length for positional tolerances.
func (p Polyhedron) lengthScale() float64 {
	if len(p.Points) == 0 {
		return 0
	}
	min, max := p.Points[0], p.Points[0]
	for _, pt := range p.Points {
		for i := 0; i < 3; i++ {
			if pt[i] < min[i] {
				min[i] = pt[i]
			}
			if pt[i] > max[i] {
				max[i] = pt[i]
			}
		}
	}
	return max.Sub(min).Mag()
}

// ClipByPlane intersects the polyhedron with the half-space on the
// negative side of the plane. Edge crossings are inserted into the face
// loops with InsertLabel (anchor adjacency is guaranteed by construction,
// so a failure indicates corrupted loops and propagates), outside
// vertices are dropped, and the exposed section is closed with a cap face
// ordered about the plane normal. Assumes a convex polyhedron.
func (p Polyhedron) ClipByPlane(plane Plane, tol float64) (Polyhedron, error) {
	if p.IsEmpty() {
		return Polyhedron{}, nil
	}

	dTol := tol * p.lengthScale()

	// Signed distance per point; |d| <= dTol is treated as on-plane
	dist := make([]float64, len(p.Points))
	var nOut, nIn int
	for i, pt := range p.Points {
		dist[i] = plane.Normal.Dot(pt.Sub(plane.Base))
		if dist[i] > dTol {
			nOut++
		} else if dist[i] < -dTol {
			nIn++
		}
	}

	if nOut == 0 {
		return p, nil
	}
	if nIn == 0 {
		return Polyhedron{}, nil
	}

	out := Polyhedron{Points: append([]Vec(nil), p.Points...)}

	inside := func(pI int) bool { return dist[pI] <= dTol }
	onPlane := func(pI int) bool { return math.Abs(dist[pI]) <= dTol }

	// New points are shared between the two faces of each cut edge
	type edgeKey [2]int
	cutPoints := make(map[edgeKey]int)

	cutEdge := func(a, b int) int {
		key := edgeKey{a, b}
		if a > b {
			key = edgeKey{b, a}
		}
		if pI, exists := cutPoints[key]; exists {
			return pI
		}
		t := dist[a] / (dist[a] - dist[b])
		pt := out.Points[a].Add(out.Points[b].Sub(out.Points[a]).Scale(t))

		pI := len(out.Points)
		out.Points = append(out.Points, pt)
		dist = append(dist, 0.0)
		cutPoints[key] = pI
		return pI
	}

	capOnly := false
	for _, f := range p.Faces {
		// Coplanar face: the section is already closed by the mesh face
		allOn := true
		for _, pI := range f {
			if !onPlane(pI) {
				allOn = false
				break
			}
		}
		if allOn {
			capOnly = true
		}
	}

	var capLabels []int
	capSeen := make(map[int]bool)

	for _, f := range p.Faces {
		loop := append([]int(nil), f...)

		// Insert crossing points between strictly-separated neighbours
		for eI := 0; eI < len(f); eI++ {
			a, b := f[eI], f[(eI+1)%len(f)]
			if (dist[a] > dTol && dist[b] < -dTol) ||
				(dist[a] < -dTol && dist[b] > dTol) {
				var err error
				if loop, err = InsertLabel(cutEdge(a, b), a, b, loop); err != nil {
					return Polyhedron{}, err
				}
			}
		}

		// Drop outside vertices
		kept := loop[:0:0]
		for _, pI := range loop {
			if inside(pI) {
				kept = append(kept, pI)
			}
		}
		if len(kept) < 3 {
			continue
		}
		out.Faces = append(out.Faces, kept)

		// On-plane vertices of clipped faces bound the cap
		for _, pI := range kept {
			if onPlane(pI) && !capSeen[pI] {
				capSeen[pI] = true
				capLabels = append(capLabels, pI)
			}
		}
	}

	if out.IsEmpty() {
		return Polyhedron{}, nil
	}

	if !capOnly && len(capLabels) >= 3 {
		out.Faces = append(out.Faces, orderCap(out.Points, capLabels, plane.Normal))
	}
	return out, nil
}

// orderCap sorts the on-plane labels into a loop about the section
// centroid, oriented outward along the plane normal.
func orderCap(points []Vec, labels []int, normal Vec) []int {
	var centre Vec
	for _, pI := range labels {
		centre = centre.Add(points[pI])
	}
	centre = centre.Scale(1.0 / float64(len(labels)))

	// In-plane basis
	e1 := perpendicular(normal).Unit()
	e2 := normal.Cross(e1)

	sort.SliceStable(labels, func(i, j int) bool {
		ri := points[labels[i]].Sub(centre)
		rj := points[labels[j]].Sub(centre)
		ai := math.Atan2(ri.Dot(e2), ri.Dot(e1))
		aj := math.Atan2(rj.Dot(e2), rj.Dot(e1))
		return ai < aj
	})

	if FaceNormal(points, labels).Dot(normal) < 0.0 {
		for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
			labels[i], labels[j] = labels[j], labels[i]
		}
	}
	return labels
}

// perpendicular picks any vector normal to n.
func perpendicular(n Vec) Vec {
	if math.Abs(n[0]) < math.Abs(n[1]) && math.Abs(n[0]) < math.Abs(n[2]) {
		return Vec{1, 0, 0}.Sub(n.Scale(n[0]))
	}
	if math.Abs(n[1]) < math.Abs(n[2]) {
		return Vec{0, 1, 0}.Sub(n.Scale(n[1]))
	}
	return Vec{0, 0, 1}.Sub(n.Scale(n[2]))
}

// ClipByPlanes successively clips the polyhedron against each plane and
// returns the volume and centroid of what remains. An empty intersection
// returns zero volume and is not an error.
func ClipByPlanes(p Polyhedron, planes []Plane, tol float64) (centre Vec, volume float64, err error) {
	clipped := p
	for _, plane := range planes {
		if clipped, err = clipped.ClipByPlane(plane, tol); err != nil {
			return Vec{}, 0, err
		}
		if clipped.IsEmpty() {
			return Vec{}, 0, nil
		}
	}
	centre, volume = clipped.CentreAndVolume()
	return centre, volume, nil
}
