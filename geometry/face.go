package geometry

// EdgeLength returns the magnitude of an edge between two point labels.
func EdgeLength(points []Vec, edge [2]int) float64 {
	return points[edge[1]].Sub(points[edge[0]]).Mag()
}

// FaceCentre computes the area centroid of an ordered face loop by
// triangulating fan-wise about the mean of its points. Degenerate faces
// (negligible area) fall back to the mean point.
func FaceCentre(points []Vec, face []int) Vec {
	nP := len(face)
	if nP == 3 {
		return points[face[0]].
			Add(points[face[1]]).
			Add(points[face[2]]).
			Scale(1.0 / 3.0)
	}

	var pAvg Vec
	for _, pI := range face {
		pAvg = pAvg.Add(points[pI])
	}
	pAvg = pAvg.Scale(1.0 / float64(nP))

	var (
		sumA  float64
		sumAc Vec
	)
	for pI := 0; pI < nP; pI++ {
		p1 := points[face[pI]]
		p2 := points[face[(pI+1)%nP]]

		// Twice the sub-triangle area
		a := p2.Sub(p1).Cross(pAvg.Sub(p1)).Mag()
		c := p1.Add(p2).Add(pAvg).Scale(1.0 / 3.0)

		sumA += a
		sumAc = sumAc.Add(c.Scale(a))
	}
	if sumA < VSmall {
		return pAvg
	}
	return sumAc.Scale(1.0 / sumA)
}

// FaceNormal computes the face normal by fan triangulation about the mean
// point. The magnitude equals twice the projected face area; callers
// normalize when only the direction is needed.
func FaceNormal(points []Vec, face []int) (n Vec) {
	nP := len(face)
	if nP == 3 {
		e1 := points[face[1]].Sub(points[face[0]])
		e2 := points[face[2]].Sub(points[face[0]])
		return e1.Cross(e2)
	}

	var pAvg Vec
	for _, pI := range face {
		pAvg = pAvg.Add(points[pI])
	}
	pAvg = pAvg.Scale(1.0 / float64(nP))

	for pI := 0; pI < nP; pI++ {
		p1 := points[face[pI]]
		p2 := points[face[(pI+1)%nP]]
		n = n.Add(p1.Sub(pAvg).Cross(p2.Sub(pAvg)))
	}
	return
}

// PointInFace tests whether checkPoint lies inside the given face loop,
// using per-sub-triangle normals against the face normal. Short-circuits
// on the first failing half-space. Assumes a convex, near-planar face.
func PointInFace(points []Vec, face []int, checkPoint Vec) bool {
	nf := FaceNormal(points, face).Unit()

	nP := len(face)
	for pI := 0; pI < nP; pI++ {
		nI := (pI + 1) % nP

		// Sub-triangle (loop edge, check point) normal
		tn := points[face[nI]].Sub(points[face[pI]]).
			Cross(checkPoint.Sub(points[face[pI]]))

		if tn.Dot(nf) < 0.0 {
			return false
		}
	}

	// Passed test with all edges
	return true
}
