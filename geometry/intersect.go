package geometry

import "math"

// PointSegmentIntersection determines whether checkPoint lies on the
// segment (a, b) within the relative tolerance matchTol. Does not treat
// coincidence with the end points specially.
func PointSegmentIntersection(a, b, checkPoint Vec, matchTol float64) bool {
	u := b.Sub(a)
	v := checkPoint.Sub(a)

	magU := u.Mag() + VSmall
	magV := v.Mag() + VSmall

	tolerance := matchTol * magU

	// Compare dot-products for collinearity
	if 1.0-u.Scale(1.0/magU).Dot(v.Scale(1.0/magV)) > tolerance {
		return false
	}

	// Does the point fall off the ends?
	uValue := u.Dot(v) / (u.Dot(u) + VSmall)
	if uValue < 0.0 || uValue > 1.0 {
		return false
	}

	return true
}

// SegmentSegmentIntersection determines whether two segments intersect,
// solving the closest-point 2x2 system. Returns false when the system is
// numerically singular (parallel / collinear), when either parameter
// falls outside [0,1], or when the closest-approach distance exceeds the
// length-relative tolerance.
func SegmentSegmentIntersection(p0, p1, q0, q1 Vec, matchTol float64) (intPoint Vec, ok bool) {
	u := p1.Sub(p0)
	v := q1.Sub(q0)
	w := p0.Sub(q0)

	a := u.Dot(u)
	b := u.Dot(v)
	c := v.Dot(v)
	d := u.Dot(w)
	e := v.Dot(w)

	// Parallel / collinear check
	denom := a*c - b*b
	if math.Abs(denom) < VSmall {
		return Vec{}, false
	}

	s := (b*e - c*d) / denom
	t := (a*e - b*d) / denom

	// Out-of-bounds check
	if s < 0.0 || t < 0.0 || s > 1.0 || t > 1.0 {
		return Vec{}, false
	}

	// Proximity check
	dist := w.Add(u.Scale(s)).Sub(v.Scale(t)).Mag()
	tolerance := matchTol * math.Min(u.Mag(), v.Mag())
	if dist > tolerance {
		return Vec{}, false
	}

	return p0.Add(u.Scale(s)), true
}

// SegmentFaceIntersection determines whether the segment (p1, p2)
// intersects the interior of the given face. Returns false when the
// segment is parallel to the face plane, when the intersection parameter
// falls outside (tol, 1-tol), or when the plane intersection lies outside
// the face loop.
func SegmentFaceIntersection(
	p1, p2 Vec,
	points []Vec,
	face []int,
	matchTol float64,
) (intPoint Vec, ok bool) {
	n := FaceNormal(points, face).Unit()

	p3 := points[face[0]]

	numerator := n.Dot(p3.Sub(p1))
	denominator := n.Dot(p2.Sub(p1))

	// Check if the edge is parallel to the face
	if math.Abs(denominator) < VSmall {
		return Vec{}, false
	}

	u := numerator / denominator
	tolerance := matchTol * p2.Sub(p1).Mag()

	// Check for intersection along the line
	if u > tolerance && u < 1.0-tolerance {
		intPoint = p1.Add(p2.Sub(p1).Scale(u))

		// Also make sure the intersection lies within the face
		if PointInFace(points, face, intPoint) {
			return intPoint, true
		}
	}

	// Failed to fall within edge bounds, or within face
	return Vec{}, false
}
