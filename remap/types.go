package remap

import (
	"fmt"

	"github.com/topomesh/remap/geometry"
)

// Method selects the interpolation scheme.
type Method int

const (
	// Conservative corrects each donor contribution to its value at the
	// overlap centroid using a gradient; second-order accurate.
	Conservative Method = iota
	// InverseDistance is a non-conservative centroid-distance fallback.
	InverseDistance
	// ConservativeFirstOrder uses raw overlap weights; exactly conserves
	// constants and volume integrals, first-order accurate otherwise.
	ConservativeFirstOrder
)

func (m Method) String() string {
	switch m {
	case Conservative:
		return "CONSERVATIVE"
	case InverseDistance:
		return "INVERSE_DISTANCE"
	case ConservativeFirstOrder:
		return "CONSERVATIVE_FIRST_ORDER"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Addressing holds, per cell of the receiving mesh, the overlapping donor
// cells with their overlap volumes, overlap centroids and normalized
// weights. The four slices are aligned one-to-one.
type Addressing struct {
	Cells   [][]int
	Weights [][]float64
	Volumes [][]float64
	Centres [][]geometry.Vec
}

// NewAddressing pre-sizes the outer slices so workers can write their own
// partitions without coordination.
func NewAddressing(nCells int) Addressing {
	return Addressing{
		Cells:   make([][]int, nCells),
		Weights: make([][]float64, nCells),
		Volumes: make([][]float64, nCells),
		Centres: make([][]geometry.Vec, nCells),
	}
}

func (a Addressing) Len() int { return len(a.Cells) }

// TopologyError reports a structural inconsistency of the input mesh
// discovered during overlap computation. It indicates a collaborator
// contract violation and aborts the whole job.
type TopologyError struct {
	Cell int
	Err  error
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("inconsistent topology at cell %d: %v", e.Cell, e.Err)
}

func (e *TopologyError) Unwrap() error { return e.Err }

// Options configure a Remapper.
type Options struct {
	// NThreads is the worker pool size; 1 or less runs serially.
	NThreads int
	// ForceRecalculation discards persisted addressing and recomputes.
	ForceRecalculation bool
	// WriteAddressing persists the computed addressing to the case dir.
	WriteAddressing bool
	// DecompSource / DecompTarget request simplex pre-decomposition of
	// the donor / receiving mesh through an external Decomposer.
	DecompSource bool
	DecompTarget bool

	// MTol is the relative volume-conservation tolerance per cell.
	MTol float64
	// Retry escalates clip precision when conservation fails.
	Retry RetryPolicy
	// HighPrecision skips the ladder and clips every cell at the
	// strictest tolerance from the first attempt.
	HighPrecision bool
	// CaseDir is where addressing files are read and written.
	CaseDir string
}

func (o Options) withDefaults() Options {
	if o.NThreads < 1 {
		o.NThreads = 1
	}
	if o.MTol <= 0 {
		o.MTol = 1e-6
	}
	if o.Retry.MaxAttempts == 0 {
		o.Retry = DefaultRetryPolicy()
	}
	if len(o.Retry.Ladder) == 0 {
		o.Retry.Ladder = DefaultRetryPolicy().Ladder
	}
	return o
}
