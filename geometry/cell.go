package geometry

// Side classification for separating-axis tests.
const (
	SideBoth     = 0
	SidePositive = 1
	SideNegative = -1
)

// CellCentreAndVolume computes the centroid and volume of a polyhedral
// cell by accumulating signed face-pyramid contributions about an
// estimated centroid (divergence theorem; exact for planar-faced cells).
// Face normals are flipped when the cell is not the face owner, so all
// contributions point outward. The centroid division is guarded against
// near-zero volumes.
func CellCentreAndVolume(
	cIndex int,
	points []Vec,
	faces [][]int,
	cellFaces []int,
	owner []int,
) (centre Vec, volume float64) {
	// Average face centres to get an estimated centroid
	var cEst Vec
	for _, fI := range cellFaces {
		cEst = cEst.Add(FaceCentre(points, faces[fI]))
	}
	cEst = cEst.Scale(1.0 / float64(len(cellFaces)))

	for _, fI := range cellFaces {
		// FaceNormal magnitude is twice the face area
		fArea := FaceNormal(points, faces[fI]).Scale(0.5)
		fCentre := FaceCentre(points, faces[fI])

		if owner[fI] != cIndex {
			fArea = fArea.Scale(-1.0)
		}

		// Three times the face-pyramid volume
		pyr3Vol := fArea.Dot(fCentre.Sub(cEst))

		// Face-pyramid centre
		pc := fCentre.Scale(3.0 / 4.0).Add(cEst.Scale(1.0 / 4.0))

		centre = centre.Add(pc.Scale(pyr3Vol))
		volume += pyr3Vol
	}

	centre = centre.Scale(1.0 / (volume + VSmall))
	volume *= 1.0 / 3.0
	return
}

// PointInCell tests whether checkPoint lies inside the given cell by
// half-space tests against each face, with owner-sign correction. Returns
// false on the first failing half-space.
func PointInCell(
	cIndex int,
	points []Vec,
	faces [][]int,
	cellFaces []int,
	owner []int,
	checkPoint Vec,
) bool {
	for _, fI := range cellFaces {
		xf := FaceCentre(points, faces[fI])
		nf := FaceNormal(points, faces[fI])

		faceToPoint := xf.Sub(checkPoint)

		if faceToPoint.Dot(nf) > 0.0 {
			if owner[fI] != cIndex {
				return false
			}
		} else {
			if owner[fI] == cIndex {
				return false
			}
		}
	}

	// Passed test with all faces
	return true
}

// WhichSide classifies the given point labels against the plane through p
// with direction dir: SidePositive / SideNegative when all points lie
// strictly on one side, SideBoth otherwise. Used to prune non-overlapping
// candidates cheaply.
func WhichSide(pointLabels []int, points []Vec, dir, p Vec) int {
	var nP, nN int

	for _, pI := range pointLabels {
		t := dir.Dot(points[pI].Sub(p))

		if t > 0.0 {
			nP++
		} else if t < 0.0 {
			nN++
		}

		if nP > 0 && nN > 0 {
			return SideBoth
		}
	}

	if nP > 0 {
		return SidePositive
	}
	return SideNegative
}
