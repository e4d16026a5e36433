package remap

import (
	"golang.org/x/sync/errgroup"

	log "github.com/sirupsen/logrus"

	"github.com/topomesh/remap/utils"
)

// calcAddressingAndWeightsParallel partitions the receiving cell range
// into NThreads contiguous chunks and runs the per-chunk routine on a
// fixed pool of workers. Each worker writes only its own partition of the
// pre-sized result arrays; the progress counter is the only shared
// mutable state during the sweep. Partitioning is purely a scheduling
// detail: no cross-cell accumulation occurs, so any thread count yields
// identical results. The errgroup join doubles as the shared error
// channel: the first fatal topology error from any worker surfaces as the
// job result (abort-all, not isolate-cell).
func (r *Remapper) calcAddressingAndWeightsParallel() error {
	nCells := r.To.NCells()
	r.Forward = NewAddressing(nCells)
	r.counter.Reset()

	// Derived connectivity is cached lazily; build it up front so the
	// meshes are only ever read during the sweep.
	r.From.CellCells()
	r.From.CellPoints()

	nThreads := r.opts.NThreads
	if nThreads > nCells {
		nThreads = nCells
	}

	log.WithFields(log.Fields{
		"cells":   nCells,
		"threads": nThreads,
	}).Info("computing conservative addressing")

	if nThreads == 1 {
		return r.calcAddressingAndWeights(0, nCells)
	}

	pm := utils.NewPartitionMap(nThreads, nCells)

	var g errgroup.Group
	for np := 0; np < nThreads; np++ {
		start, end := pm.GetBucketRange(np)
		g.Go(func() error {
			return r.calcAddressingAndWeights(start, end-start)
		})
	}
	// Barrier join: the addressing computation is one blocking call.
	return g.Wait()
}
