package remap

import (
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/topomesh/remap/geometry"
	"github.com/topomesh/remap/mesh"
	"github.com/topomesh/remap/utils"
)

// Remapper computes and owns the conservative addressing between a donor
// mesh (From) and a receiving mesh (To). Both meshes are borrowed
// read-only for the Remapper's lifetime; interpolation borrows the
// finished addressing immutably.
type Remapper struct {
	From, To *mesh.Mesh

	opts Options

	// Forward is indexed by receiving cell: its donor parents.
	Forward Addressing
	// Reverse is the pure transpose of Forward, indexed by donor cell.
	Reverse Addressing

	// BoundaryAddressing maps, per receiving patch, each patch face to
	// the corresponding donor boundary face.
	BoundaryAddressing [][]int

	// FailedCells fell back to a single-parent nearest mapping after
	// exhausting precision attempts.
	FailedCells []int

	failedMu sync.Mutex
	counter  utils.Counter
}

// New constructs a Remapper and computes (or reads back) the addressing.
// The computation is one blocking call; cancellation mid-job is not
// supported.
func New(from, to *mesh.Mesh, opts Options) (*Remapper, error) {
	opts = opts.withDefaults()

	if err := from.ComputeGeometry(); err != nil {
		return nil, fmt.Errorf("donor mesh: %w", err)
	}
	if err := to.ComputeGeometry(); err != nil {
		return nil, fmt.Errorf("receiving mesh: %w", err)
	}

	r := &Remapper{From: from, To: to, opts: opts}

	if opts.DecompSource || opts.DecompTarget {
		// Simplex decomposition is delegated to an external Decomposer
		// collaborator; without one the undecomposed meshes are used.
		log.Warn("simplex decomposition requested but no decomposer configured")
	}

	if !opts.ForceRecalculation && opts.CaseDir != "" {
		if err := r.readAddressing(); err == nil {
			log.WithField("cells", r.Forward.Len()).
				Info("reusing persisted addressing")
			return r, nil
		} else {
			log.WithError(err).Debug("persisted addressing unusable, recomputing")
		}
	}

	if err := r.calcAddressingAndWeightsParallel(); err != nil {
		return nil, err
	}
	if err := r.invertAddressing(); err != nil {
		return nil, err
	}
	r.calcBoundaryAddressing()

	if len(r.FailedCells) > 0 {
		log.WithField("nCells", len(r.FailedCells)).
			Warn("conservation accuracy degraded: single-parent fallback used")
	}

	if opts.WriteAddressing && opts.CaseDir != "" {
		if err := r.writeAddressing(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Progress returns the number of receiving cells completed so far.
func (r *Remapper) Progress() int { return r.counter.Count() }

// calcAddressingAndWeights processes the contiguous receiving-cell range
// [cellStart, cellStart+cellSize). Each index writes only its own slot of
// the pre-sized addressing, so concurrent ranges never race.
func (r *Remapper) calcAddressingAndWeights(cellStart, cellSize int) error {
	wc := newWeightComputer(r.To, r.From, r.opts.MTol, r.opts.Retry)

	// Seed the first cell by nearest centroid; afterwards the previous
	// cell's accepted candidate carries the spatial locality.
	candidate := r.From.NearestCell(r.To.CellCentres()[cellStart])

	for index := cellStart; index < cellStart+cellSize; index++ {
		res, attempts, ok, err := wc.computeWeights(index, candidate, r.opts.HighPrecision)
		if err != nil {
			return err
		}

		if !ok {
			// Fallback policy owned here: map from the nearest donor
			// cell with unit weight and surface a warning.
			nearest := wc.seedCandidate(index, candidate)
			res = cellWeights{
				parents: []int{nearest},
				weights: []float64{1.0},
				volumes: []float64{r.To.CellVolumes()[index]},
				centres: []geometry.Vec{r.To.CellCentres()[index]},
			}
			r.failedMu.Lock()
			r.FailedCells = append(r.FailedCells, index)
			r.failedMu.Unlock()

			log.WithFields(log.Fields{
				"cell":     index,
				"attempts": attempts,
				"expected": r.To.CellVolumes()[index],
			}).Warn("volume mismatch after precision escalation")
		}

		r.Forward.Cells[index] = res.parents
		r.Forward.Weights[index] = res.weights
		r.Forward.Volumes[index] = res.volumes
		r.Forward.Centres[index] = res.centres

		if ok && len(res.parents) > 0 {
			candidate = res.parents[0]
		}
		r.counter.Increment()
	}
	return nil
}

// invertAddressing transposes Forward into Reverse. A pure transpose:
// volumes and centres are carried over bit for bit, never re-derived, so
// interpolation runs equally well in either direction.
func (r *Remapper) invertAddressing() error {
	r.Reverse = NewAddressing(r.From.NCells())

	for to := 0; to < r.Forward.Len(); to++ {
		for j, from := range r.Forward.Cells[to] {
			r.Reverse.Cells[from] = append(r.Reverse.Cells[from], to)
			r.Reverse.Volumes[from] = append(r.Reverse.Volumes[from], r.Forward.Volumes[to][j])
			r.Reverse.Centres[from] = append(r.Reverse.Centres[from], r.Forward.Centres[to][j])
		}
	}

	// Weights renormalize per donor cell; volumes stay untouched.
	for from := 0; from < r.Reverse.Len(); from++ {
		var sum float64
		for _, v := range r.Reverse.Volumes[from] {
			sum += v
		}
		w := make([]float64, len(r.Reverse.Volumes[from]))
		for i, v := range r.Reverse.Volumes[from] {
			w[i] = v / (sum + geometry.VSmall)
		}
		r.Reverse.Weights[from] = w
	}
	return nil
}

// calcBoundaryAddressing maps each receiving patch face to the nearest
// donor boundary face, preferring the donor patch with the same name.
func (r *Remapper) calcBoundaryAddressing() {
	r.BoundaryAddressing = make([][]int, len(r.To.Patches))

	for patchI, patch := range r.To.Patches {
		donorFaces := r.donorPatchFaces(patch.Name)

		mapping := make([]int, patch.Size)
		for i, fI := range patch.BoundaryFaces() {
			fc := geometry.FaceCentre(r.To.Points, r.To.Faces[fI])

			best, bestD := -1, 0.0
			for _, dfI := range donorFaces {
				dc := geometry.FaceCentre(r.From.Points, r.From.Faces[dfI])
				if d := dc.Sub(fc).MagSqr(); best < 0 || d < bestD {
					best, bestD = dfI, d
				}
			}
			mapping[i] = best
		}
		r.BoundaryAddressing[patchI] = mapping
	}
}

func (r *Remapper) donorPatchFaces(name string) []int {
	for _, p := range r.From.Patches {
		if p.Name == name {
			return p.BoundaryFaces()
		}
	}
	// No matching patch: search the whole donor boundary
	var faces []int
	for _, p := range r.From.Patches {
		faces = append(faces, p.BoundaryFaces()...)
	}
	sort.Ints(faces)
	return faces
}
