package remap

import (
	"math"

	"github.com/james-bowman/sparse"
)

// Report summarizes conservation quality of a finished addressing.
type Report struct {
	NCells        int
	NFailed       int
	WorstCell     int
	WorstDefect   float64 // worst relative volume defect over receiving cells
	ReceivingVol  float64 // Σ receiving cell volumes
	MappedVol     float64 // Σ overlap volumes
	DonorCoverage float64 // Σ overlap volumes / Σ donor cell volumes
}

// ConservationReport assembles the overlap volumes into a sparse
// (receiving x donor) matrix and derives per-cell and global
// conservation diagnostics from its row and column structure.
func (r *Remapper) ConservationReport() Report {
	var (
		nTo   = r.To.NCells()
		nFrom = r.From.NCells()
		dok   = sparse.NewDOK(nTo, nFrom)
	)

	for to := 0; to < r.Forward.Len(); to++ {
		for j, from := range r.Forward.Cells[to] {
			dok.Set(to, from, r.Forward.Volumes[to][j])
		}
	}
	csr := dok.ToCSR()

	rowSums := make([]float64, nTo)
	var mapped float64
	csr.DoNonZero(func(i, j int, v float64) {
		rowSums[i] += v
		mapped += v
	})

	rep := Report{
		NCells:       nTo,
		NFailed:      len(r.FailedCells),
		WorstCell:    -1,
		ReceivingVol: r.To.TotalVolume(),
		MappedVol:    mapped,
	}
	if donorVol := r.From.TotalVolume(); donorVol > 0 {
		rep.DonorCoverage = mapped / donorVol
	}

	vols := r.To.CellVolumes()
	for cI, sum := range rowSums {
		defect := math.Abs(sum-vols[cI]) / vols[cI]
		if defect > rep.WorstDefect {
			rep.WorstDefect = defect
			rep.WorstCell = cI
		}
	}
	return rep
}
