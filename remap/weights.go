package remap

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/topomesh/remap/geometry"
	"github.com/topomesh/remap/mesh"
)

// cellWeights is the result of overlap computation for one receiving
// cell: donor parents with exact overlap volumes and centroids, and
// weights normalized to unit sum.
type cellWeights struct {
	parents []int
	weights []float64
	volumes []float64
	centres []geometry.Vec
}

// weightComputer finds, for one receiving cell, all donor cells it
// geometrically overlaps. Stateless apart from borrowed read-only mesh
// views, so instances may run concurrently for disjoint cells.
type weightComputer struct {
	to, from *mesh.Mesh

	fromCellCells  [][]int
	fromCellPoints [][]int

	mTol  float64
	retry RetryPolicy
}

func newWeightComputer(to, from *mesh.Mesh, mTol float64, retry RetryPolicy) *weightComputer {
	return &weightComputer{
		to:             to,
		from:           from,
		fromCellCells:  from.CellCells(),
		fromCellPoints: from.CellPoints(),
		mTol:           mTol,
		retry:          retry,
	}
}

// seedCandidate walks donor-mesh connectivity from guess toward the
// receiving cell's centroid until it finds the donor cell containing it.
// Spatial locality between consecutive cells makes the guess usually
// correct already.
func (wc *weightComputer) seedCandidate(index, guess int) int {
	target := wc.to.CellCentres()[index]
	centres := wc.from.CellCentres()

	cur := guess
	for {
		if wc.from.PointInCell(cur, target) {
			return cur
		}
		best, bestD := cur, centres[cur].Sub(target).MagSqr()
		for _, nbr := range wc.fromCellCells[cur] {
			if d := centres[nbr].Sub(target).MagSqr(); d < bestD {
				best, bestD = nbr, d
			}
		}
		if best == cur {
			// No neighbour improves; the centroid may sit outside the
			// donor domain. Use the closest cell found.
			return cur
		}
		cur = best
	}
}

// floodSearch discovers all donor cells overlapping receiving cell index,
// starting from seed and walking donor face-neighbours. Candidates are
// pruned with a separating-axis test against the receiving cell's planes
// before the exact clip.
func (wc *weightComputer) floodSearch(index, seed int, tol float64) (
	parents []int, volumes []float64, centres []geometry.Vec, err error,
) {
	var (
		planes  = wc.to.CellPlanes(index)
		volCut  = geometry.Small * wc.to.CellVolumes()[index]
		visited = map[int]bool{seed: true}
		queue   = []int{seed}
	)

	for len(queue) > 0 {
		candidate := queue[0]
		queue = queue[1:]

		// Separating-axis pruning: a candidate entirely on the discarded
		// side of any bounding plane cannot overlap.
		separated := false
		for _, plane := range planes {
			if geometry.WhichSide(
				wc.fromCellPoints[candidate], wc.from.Points,
				plane.Normal, plane.Base,
			) == geometry.SidePositive {
				separated = true
				break
			}
		}
		if separated {
			continue
		}

		poly := wc.from.CellPolyhedron(candidate)
		centre, vol, cerr := geometry.ClipByPlanes(poly, planes, tol)
		if cerr != nil {
			return nil, nil, nil, &TopologyError{Cell: index, Err: cerr}
		}
		if vol <= volCut {
			continue
		}

		parents = append(parents, candidate)
		volumes = append(volumes, vol)
		centres = append(centres, centre)

		for _, nbr := range wc.fromCellCells[candidate] {
			if !visited[nbr] {
				visited[nbr] = true
				queue = append(queue, nbr)
			}
		}
	}

	// Canonical donor order: results must not depend on the seed, so a
	// single-threaded run matches any partitioning bit for bit.
	idx := make([]int, len(parents))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return parents[idx[i]] < parents[idx[j]] })

	sp := make([]int, len(parents))
	sv := make([]float64, len(parents))
	sc := make([]geometry.Vec, len(parents))
	for i, o := range idx {
		sp[i], sv[i], sc[i] = parents[o], volumes[o], centres[o]
	}
	return sp, sv, sc, nil
}

// computeWeights runs the flood search for one receiving cell and
// validates volume conservation, escalating precision through the retry
// ladder on mismatch. highPrecision skips directly to the strictest
// tolerance. ok == false after exhausting attempts; the fallback mapping
// is the caller's policy, not decided here.
func (wc *weightComputer) computeWeights(index, oldCandidate int, highPrecision bool) (
	res cellWeights, attempts int, ok bool, err error,
) {
	var (
		seed    = wc.seedCandidate(index, oldCandidate)
		trueVol = wc.to.CellVolumes()[index]
	)

	attempt := 0
	if highPrecision {
		attempt = wc.retry.HighPrecisionAttempt()
	}

	for ; attempt < wc.retry.MaxAttempts; attempt++ {
		attempts++

		parents, volumes, centres, ferr := wc.floodSearch(index, seed, wc.retry.Tol(attempt))
		if ferr != nil {
			return cellWeights{}, attempts, false, ferr
		}

		sum := floats.Sum(volumes)
		if math.Abs(sum-trueVol) > wc.mTol*trueVol {
			continue
		}

		weights := make([]float64, len(volumes))
		for i, v := range volumes {
			weights[i] = v / sum
		}
		return cellWeights{
			parents: parents,
			weights: weights,
			volumes: volumes,
			centres: centres,
		}, attempts, true, nil
	}

	return cellWeights{}, attempts, false, nil
}
