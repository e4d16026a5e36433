package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func unitSquare() ([]Vec, []int) {
	points := []Vec{
		{0, 0, 0},
		{1, 0, 0},
		{1, 1, 0},
		{0, 1, 0},
	}
	return points, []int{0, 1, 2, 3}
}

// Points, faces, owner for a unit cube as a single cell of a mesh.
func unitCubeCell() (points []Vec, faces [][]int, cellFaces, owner []int) {
	points = []Vec{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	// Outward-oriented loops
	faces = [][]int{
		{0, 3, 2, 1}, // z = 0
		{4, 5, 6, 7}, // z = 1
		{0, 1, 5, 4}, // y = 0
		{3, 7, 6, 2}, // y = 1
		{0, 4, 7, 3}, // x = 0
		{1, 2, 6, 5}, // x = 1
	}
	cellFaces = []int{0, 1, 2, 3, 4, 5}
	owner = []int{0, 0, 0, 0, 0, 0}
	return
}

func TestFaceGeometry(t *testing.T) {
	var (
		tol = 1.e-12
	)
	points, face := unitSquare()

	assert.InDelta(t, 1.0, EdgeLength(points, [2]int{0, 1}), tol)
	assert.InDelta(t, math.Sqrt2, EdgeLength(points, [2]int{0, 2}), tol)

	centre := FaceCentre(points, face)
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 0}, centre[:], tol)

	// Magnitude is twice the face area
	normal := FaceNormal(points, face)
	assert.InDelta(t, 2.0, normal.Mag(), tol)
	unit := normal.Unit()
	assert.InDeltaSlice(t, []float64{0, 0, 1}, unit[:], tol)

	// Triangle short path
	tri := []int{0, 1, 2}
	assert.InDelta(t, 1.0, FaceNormal(points, tri).Mag(), tol)
	triCentre := FaceCentre(points, tri)
	assert.InDeltaSlice(t,
		[]float64{2. / 3., 1. / 3., 0}, triCentre[:], tol)

	// Degenerate face with coincident points falls back to the mean
	degen := []Vec{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}, {1, 1, 1}}
	centre = FaceCentre(degen, []int{0, 1, 2, 3})
	assert.InDeltaSlice(t, []float64{1, 1, 1}, centre[:], tol)
	assert.InDelta(t, 0.0, FaceNormal(degen, []int{0, 1, 2, 3}).Mag(), tol)
}

func TestPointInFace(t *testing.T) {
	points, face := unitSquare()
	assert.True(t, PointInFace(points, face, Vec{0.5, 0.5, 0}))
	assert.True(t, PointInFace(points, face, Vec{0.01, 0.99, 0}))
	assert.False(t, PointInFace(points, face, Vec{1.5, 0.5, 0}))
	assert.False(t, PointInFace(points, face, Vec{-0.1, 0.5, 0}))
}

func TestCellCentreAndVolume(t *testing.T) {
	var (
		tol = 1.e-12
	)
	points, faces, cellFaces, owner := unitCubeCell()

	centre, volume := CellCentreAndVolume(0, points, faces, cellFaces, owner)
	assert.InDelta(t, 1.0, volume, tol)
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.5}, centre[:], tol)

	// Flipping ownership of every face flips the sign of the volume
	flipped := []int{1, 1, 1, 1, 1, 1}
	_, volume = CellCentreAndVolume(0, points, faces, cellFaces, flipped)
	assert.InDelta(t, -1.0, volume, tol)
}

func TestPointInCell(t *testing.T) {
	points, faces, cellFaces, owner := unitCubeCell()

	assert.True(t, PointInCell(0, points, faces, cellFaces, owner, Vec{0.5, 0.5, 0.5}))
	assert.True(t, PointInCell(0, points, faces, cellFaces, owner, Vec{0.9, 0.1, 0.9}))
	assert.False(t, PointInCell(0, points, faces, cellFaces, owner, Vec{1.5, 0.5, 0.5}))
	assert.False(t, PointInCell(0, points, faces, cellFaces, owner, Vec{0.5, 0.5, -0.5}))
}

func TestWhichSide(t *testing.T) {
	points := []Vec{
		{-1, 0, 0}, {-2, 1, 0}, {1, 0, 0}, {2, -1, 0},
	}
	dir := Vec{1, 0, 0}
	p := Vec{0, 0, 0}

	assert.Equal(t, SideNegative, WhichSide([]int{0, 1}, points, dir, p))
	assert.Equal(t, SidePositive, WhichSide([]int{2, 3}, points, dir, p))
	assert.Equal(t, SideBoth, WhichSide([]int{0, 2}, points, dir, p))
	// On-plane points do not count toward either side
	assert.Equal(t, SideNegative, WhichSide([]int{0}, points, dir, Vec{-1, 0, 0}))
}

func TestSegmentIntersections(t *testing.T) {
	var (
		tol = 1.e-12
	)
	// Point on segment
	assert.True(t, PointSegmentIntersection(
		Vec{0, 0, 0}, Vec{1, 0, 0}, Vec{0.5, 0, 0}, MatchTol))
	assert.False(t, PointSegmentIntersection(
		Vec{0, 0, 0}, Vec{1, 0, 0}, Vec{1.5, 0, 0}, MatchTol))
	assert.False(t, PointSegmentIntersection(
		Vec{0, 0, 0}, Vec{1, 0, 0}, Vec{0.5, 0.5, 0}, MatchTol))

	// Crossing segments
	intPoint, ok := SegmentSegmentIntersection(
		Vec{0, -1, 0}, Vec{0, 1, 0},
		Vec{-1, 0, 0}, Vec{1, 0, 0}, MatchTol)
	assert.True(t, ok)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, intPoint[:], tol)

	// Parallel segments
	_, ok = SegmentSegmentIntersection(
		Vec{0, 0, 0}, Vec{1, 0, 0},
		Vec{0, 1, 0}, Vec{1, 1, 0}, MatchTol)
	assert.False(t, ok)

	// Skew segments with a gap larger than the tolerance
	_, ok = SegmentSegmentIntersection(
		Vec{0, -1, 0}, Vec{0, 1, 0},
		Vec{-1, 0, 0.5}, Vec{1, 0, 0.5}, MatchTol)
	assert.False(t, ok)

	// Segment through a face
	points, face := unitSquare()
	intPoint, ok = SegmentFaceIntersection(
		Vec{0.5, 0.5, -1}, Vec{0.5, 0.5, 1}, points, face, MatchTol)
	assert.True(t, ok)
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 0}, intPoint[:], tol)

	// Misses the face loop
	_, ok = SegmentFaceIntersection(
		Vec{1.5, 0.5, -1}, Vec{1.5, 0.5, 1}, points, face, MatchTol)
	assert.False(t, ok)

	// Parallel to the face plane
	_, ok = SegmentFaceIntersection(
		Vec{0, 0, 1}, Vec{1, 1, 1}, points, face, MatchTol)
	assert.False(t, ok)
}

func TestInsertLabel(t *testing.T) {
	loop := []int{0, 1, 2, 3}

	newLoop, err := InsertLabel(9, 1, 2, loop)
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1, 9, 2, 3}, newLoop)

	// Either traversal direction
	newLoop, err = InsertLabel(9, 2, 1, loop)
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1, 9, 2, 3}, newLoop)

	// Wrap-around edge
	newLoop, err = InsertLabel(9, 3, 0, loop)
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 9}, newLoop)

	// Non-adjacent anchors are a hard failure
	_, err = InsertLabel(9, 0, 2, loop)
	assert.Error(t, err)
	var le *LoopError
	assert.ErrorAs(t, err, &le)
}

func TestInsertPointLabels(t *testing.T) {
	points := []Vec{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0.5, -0.1, 0},
	}
	loop := []int{0, 1, 2, 3}
	refNorm := Vec{0, 0, 1}

	newLoop, err := InsertPointLabels(refNorm, points, []int{4}, loop)
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 4, 1, 2, 3}, newLoop)
}
