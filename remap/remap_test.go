package remap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/topomesh/remap/geometry"
	"github.com/topomesh/remap/mesh"
)

func unitBox(nx, ny, nz int) *mesh.Mesh {
	return mesh.NewBoxMesh(nx, ny, nz,
		geometry.Vec{0, 0, 0}, geometry.Vec{1, 1, 1})
}

func TestIdenticalMeshes(t *testing.T) {
	var (
		tol = 1.e-10
	)
	r, err := New(mesh.NewUnitCubeMesh(), mesh.NewUnitCubeMesh(), Options{})
	assert.NoError(t, err)
	assert.Empty(t, r.FailedCells)

	// The single receiving cell overlaps the single donor cell exactly
	assert.Equal(t, []int{0}, r.Forward.Cells[0])
	assert.InDelta(t, 1.0, r.Forward.Weights[0][0], tol)
	assert.InDelta(t, 1.0, r.Forward.Volumes[0][0], tol)
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.5}, r.Forward.Centres[0][0][:], tol)

	assert.Equal(t, 1, r.Progress())
}

func TestHalvedDonor(t *testing.T) {
	var (
		tol = 1.e-10
	)
	// Two donor half-cells inside one receiving cell
	r, err := New(unitBox(2, 1, 1), unitBox(1, 1, 1), Options{})
	assert.NoError(t, err)
	assert.Empty(t, r.FailedCells)

	assert.Equal(t, []int{0, 1}, r.Forward.Cells[0])
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, r.Forward.Weights[0], tol)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, r.Forward.Volumes[0], tol)
	assert.InDeltaSlice(t, []float64{0.25, 0.5, 0.5}, r.Forward.Centres[0][0][:], tol)
	assert.InDeltaSlice(t, []float64{0.75, 0.5, 0.5}, r.Forward.Centres[0][1][:], tol)
}

func TestNonNestedConservation(t *testing.T) {
	var (
		tol = 1.e-9
	)
	// 2x2x2 onto 3x3x3: no receiving cell boundary aligns with a donor
	// cell interior boundary, every interior receiving cell has multiple
	// parents
	r, err := New(unitBox(2, 2, 2), unitBox(3, 3, 3), Options{})
	assert.NoError(t, err)
	assert.Empty(t, r.FailedCells)

	// Per-cell overlap volumes sum to the receiving cell volume
	for cI := 0; cI < r.To.NCells(); cI++ {
		var sum, wSum float64
		for j := range r.Forward.Cells[cI] {
			sum += r.Forward.Volumes[cI][j]
			wSum += r.Forward.Weights[cI][j]
		}
		assert.InDelta(t, r.To.CellVolumes()[cI], sum, tol)
		assert.InDelta(t, 1.0, wSum, tol)
	}

	// The centre receiving cell straddles all 8 donor cells
	centreCell := r.To.NearestCell(geometry.Vec{0.5, 0.5, 0.5})
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, r.Forward.Cells[centreCell])

	rep := r.ConservationReport()
	assert.Equal(t, 27, rep.NCells)
	assert.Equal(t, 0, rep.NFailed)
	assert.InDelta(t, 1.0, rep.ReceivingVol, tol)
	assert.InDelta(t, 1.0, rep.MappedVol, tol)
	assert.InDelta(t, 1.0, rep.DonorCoverage, tol)
	assert.True(t, rep.WorstDefect < 1e-6)
}

func TestThreadCountInvariance(t *testing.T) {
	serial, err := New(unitBox(3, 3, 3), unitBox(4, 4, 4), Options{NThreads: 1})
	assert.NoError(t, err)

	parallel, err := New(unitBox(3, 3, 3), unitBox(4, 4, 4), Options{NThreads: 7})
	assert.NoError(t, err)

	// Partitioning is a scheduling detail: results match bit for bit
	assert.Equal(t, serial.Forward.Cells, parallel.Forward.Cells)
	assert.Equal(t, serial.Forward.Weights, parallel.Forward.Weights)
	assert.Equal(t, serial.Forward.Volumes, parallel.Forward.Volumes)
	assert.Equal(t, serial.Forward.Centres, parallel.Forward.Centres)

	assert.Equal(t, serial.To.NCells(), serial.Progress())
	assert.Equal(t, parallel.To.NCells(), parallel.Progress())
}

func TestParallelConstructionOnFreshMeshes(t *testing.T) {
	// Derived donor connectivity is built before the workers launch, so
	// the sweep only ever reads the meshes (run under the race detector
	// to enforce this).
	r, err := New(unitBox(3, 3, 3), unitBox(5, 5, 5), Options{NThreads: 8})
	assert.NoError(t, err)
	assert.Empty(t, r.FailedCells)

	for cI := 0; cI < r.To.NCells(); cI++ {
		assert.NotEmpty(t, r.Forward.Cells[cI])
	}
	assert.Equal(t, r.To.NCells(), r.Progress())
}

func TestInvertAddressing(t *testing.T) {
	var (
		tol = 1.e-10
	)
	r, err := New(unitBox(2, 2, 2), unitBox(3, 3, 3), Options{})
	assert.NoError(t, err)

	// Reverse is a pure transpose: every forward entry appears once with
	// the identical volume and centroid
	for to := 0; to < r.Forward.Len(); to++ {
		for j, from := range r.Forward.Cells[to] {
			found := false
			for k, back := range r.Reverse.Cells[from] {
				if back == to {
					found = true
					assert.Equal(t, r.Forward.Volumes[to][j], r.Reverse.Volumes[from][k])
					assert.Equal(t, r.Forward.Centres[to][j], r.Reverse.Centres[from][k])
				}
			}
			assert.True(t, found)
		}
	}

	// Reverse weights renormalize per donor cell
	for from := 0; from < r.Reverse.Len(); from++ {
		var wSum float64
		for _, w := range r.Reverse.Weights[from] {
			wSum += w
		}
		assert.InDelta(t, 1.0, wSum, tol)
	}
}

func TestBoundaryAddressing(t *testing.T) {
	r, err := New(unitBox(2, 2, 2), unitBox(4, 4, 4), Options{})
	assert.NoError(t, err)

	assert.Equal(t, len(r.To.Patches), len(r.BoundaryAddressing))
	for patchI, patch := range r.To.Patches {
		assert.Equal(t, patch.Size, len(r.BoundaryAddressing[patchI]))

		// Same-name donor patch preferred: every mapped face lies in the
		// donor patch's face range
		var donor mesh.Patch
		for _, p := range r.From.Patches {
			if p.Name == patch.Name {
				donor = p
			}
		}
		for _, dfI := range r.BoundaryAddressing[patchI] {
			assert.True(t, dfI >= donor.Start && dfI < donor.Start+donor.Size)
		}
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	caseDir := t.TempDir()

	first, err := New(unitBox(2, 2, 2), unitBox(3, 3, 3), Options{
		CaseDir:         caseDir,
		WriteAddressing: true,
	})
	assert.NoError(t, err)

	// Second construction restores the persisted addressing instead of
	// recomputing
	second, err := New(unitBox(2, 2, 2), unitBox(3, 3, 3), Options{
		CaseDir: caseDir,
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, second.Progress())

	assert.Equal(t, first.Forward.Cells, second.Forward.Cells)
	assert.Equal(t, first.BoundaryAddressing, second.BoundaryAddressing)
	assert.Equal(t, len(first.Forward.Weights), len(second.Forward.Weights))
	for cI := range first.Forward.Weights {
		assert.InDeltaSlice(t,
			first.Forward.Weights[cI], second.Forward.Weights[cI], 1.e-12)
		assert.InDeltaSlice(t,
			first.Forward.Volumes[cI], second.Forward.Volumes[cI], 1.e-12)
	}

	// A mesh of different size rejects the stale file and recomputes
	third, err := New(unitBox(2, 2, 2), unitBox(4, 4, 4), Options{
		CaseDir: caseDir,
	})
	assert.NoError(t, err)
	assert.Equal(t, third.To.NCells(), third.Progress())

	// ForceRecalculation ignores the file even when it matches
	fourth, err := New(unitBox(2, 2, 2), unitBox(3, 3, 3), Options{
		CaseDir:            caseDir,
		ForceRecalculation: true,
	})
	assert.NoError(t, err)
	assert.Equal(t, fourth.To.NCells(), fourth.Progress())
}

func TestStalePatchLayoutRejected(t *testing.T) {
	caseDir := t.TempDir()

	_, err := New(unitBox(2, 2, 2), unitBox(3, 3, 3), Options{
		CaseDir:         caseDir,
		WriteAddressing: true,
	})
	assert.NoError(t, err)

	// Same receiving cell count, different patch sizes: the persisted
	// boundary addressing no longer fits and the file is recomputed
	r, err := New(unitBox(2, 2, 2), unitBox(27, 1, 1), Options{
		CaseDir: caseDir,
	})
	assert.NoError(t, err)
	assert.Equal(t, r.To.NCells(), r.Progress())
	for patchI, patch := range r.To.Patches {
		assert.Equal(t, patch.Size, len(r.BoundaryAddressing[patchI]))
	}
}

func TestHighPrecisionOption(t *testing.T) {
	relaxed, err := New(unitBox(2, 2, 2), unitBox(3, 3, 3), Options{})
	assert.NoError(t, err)

	// Skipping straight to the strictest tolerance finds the same
	// overlaps on well-behaved meshes; only the clip tolerance changes
	strict, err := New(unitBox(2, 2, 2), unitBox(3, 3, 3), Options{
		HighPrecision: true,
	})
	assert.NoError(t, err)
	assert.Empty(t, strict.FailedCells)

	assert.Equal(t, relaxed.Forward.Cells, strict.Forward.Cells)
	for cI := range relaxed.Forward.Volumes {
		assert.InDeltaSlice(t,
			relaxed.Forward.Volumes[cI], strict.Forward.Volumes[cI], 1.e-9)
	}
}

func TestRetryPolicy(t *testing.T) {
	rp := DefaultRetryPolicy()
	assert.Equal(t, 3, rp.MaxAttempts)
	assert.Equal(t, geometry.MatchTol, rp.Tol(0))
	assert.Equal(t, 1e-6, rp.Tol(1))
	assert.Equal(t, 1e-8, rp.Tol(2))
	// Clamped past the last rung
	assert.Equal(t, 1e-8, rp.Tol(5))
	assert.Equal(t, 2, rp.HighPrecisionAttempt())
}

func TestRetryPolicyWithoutLadder(t *testing.T) {
	// A policy that sets attempts but no ladder picks up the default
	// tolerances instead of having no rung to clip at
	r, err := New(unitBox(2, 1, 1), unitBox(1, 1, 1), Options{
		Retry: RetryPolicy{MaxAttempts: 2},
	})
	assert.NoError(t, err)
	assert.Empty(t, r.FailedCells)
	assert.Equal(t, []int{0, 1}, r.Forward.Cells[0])
}

func TestMethodString(t *testing.T) {
	assert.Equal(t, "CONSERVATIVE", Conservative.String())
	assert.Equal(t, "INVERSE_DISTANCE", InverseDistance.String())
	assert.Equal(t, "CONSERVATIVE_FIRST_ORDER", ConservativeFirstOrder.String())
	assert.Equal(t, "Method(9)", Method(9).String())
}

func TestTopologyErrorUnwrap(t *testing.T) {
	inner := &geometry.LoopError{Label: 7, LabelA: 0, LabelB: 2, Loop: []int{0, 1, 2}}
	err := &TopologyError{Cell: 3, Err: inner}

	assert.Contains(t, err.Error(), "cell 3")
	var le *geometry.LoopError
	assert.ErrorAs(t, err, &le)
	assert.Equal(t, 7, le.Label)
}

func TestDegenerateMeshRejected(t *testing.T) {
	flat := mesh.NewBoxMesh(1, 1, 1,
		geometry.Vec{0, 0, 0}, geometry.Vec{1, 1, 0})

	_, err := New(flat, unitBox(1, 1, 1), Options{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "donor mesh")

	_, err = New(unitBox(1, 1, 1), flat, Options{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "receiving mesh")
}
