package remap

import (
	"fmt"

	"github.com/topomesh/remap/geometry"
)

// Value is the closed set of field value types. Interpolation is generic
// over it through a per-type operation table rather than a combinatorial
// template expansion.
type Value interface {
	float64 | geometry.Vec | geometry.Tensor
}

// Ops is the operation table for one value type.
type Ops[T Value] struct {
	Zero  T
	Add   func(a, b T) T
	Scale func(s float64, a T) T
}

func ScalarOps() Ops[float64] {
	return Ops[float64]{
		Add:   func(a, b float64) float64 { return a + b },
		Scale: func(s, a float64) float64 { return s * a },
	}
}

func VectorOps() Ops[geometry.Vec] {
	return Ops[geometry.Vec]{
		Add:   geometry.Vec.Add,
		Scale: func(s float64, a geometry.Vec) geometry.Vec { return a.Scale(s) },
	}
}

func TensorOps() Ops[geometry.Tensor] {
	return Ops[geometry.Tensor]{
		Add:   geometry.Tensor.Add,
		Scale: func(s float64, a geometry.Tensor) geometry.Tensor { return a.Scale(s) },
	}
}

// VolField is a per-cell field with time metadata. Mapping onto a field
// archives the prior values before overwriting them.
type VolField[T Value] struct {
	Name      string
	Values    []T
	Old       []T
	TimeIndex int
}

func NewVolField[T Value](name string, nCells int) *VolField[T] {
	return &VolField[T]{Name: name, Values: make([]T, nCells)}
}

func (f *VolField[T]) storeOldTime(timeIndex int) {
	f.Old = append([]T(nil), f.Values...)
	f.TimeIndex = timeIndex
}

// Gradient returns the first-order change of donor cell's value over the
// offset dr from the cell centroid. For a scalar field this is g·dr with
// g the reconstructed gradient vector; higher ranks promote accordingly.
type Gradient[T Value] func(cell int, dr geometry.Vec) T

// Interpolate maps the donor field from onto the receiving field to using
// the finished addressing. Conservative requires a gradient; the typed
// wrappers reconstruct one when the caller has none. Prior time values of
// the receiving field are archived and its time index advanced.
func Interpolate[T Value](
	r *Remapper,
	ops Ops[T],
	to, from *VolField[T],
	grad Gradient[T],
	method Method,
) error {
	if len(from.Values) != r.From.NCells() {
		return fmt.Errorf("donor field %q: %d values for %d cells",
			from.Name, len(from.Values), r.From.NCells())
	}
	if len(to.Values) != r.To.NCells() {
		return fmt.Errorf("receiving field %q: %d values for %d cells",
			to.Name, len(to.Values), r.To.NCells())
	}

	switch method {
	case Conservative:
		if grad == nil {
			return fmt.Errorf("method %s requires a gradient", method)
		}
	case ConservativeFirstOrder, InverseDistance:
	default:
		return fmt.Errorf("unknown interpolation method %v", method)
	}

	// The receiving field is only touched once the request is valid
	to.storeOldTime(from.TimeIndex + 1)

	switch method {
	case ConservativeFirstOrder:
		interpolateConserveFirstOrder(r, ops, to, from)
	case Conservative:
		interpolateConserve(r, ops, to, from, grad)
	case InverseDistance:
		interpolateInvDist(r, ops, to, from)
	}
	return nil
}

// Receiving value = Σ_parents weight · donor value. Exactly conserves
// constants and the volume integral of any field.
func interpolateConserveFirstOrder[T Value](
	r *Remapper, ops Ops[T], to, from *VolField[T],
) {
	for cI := range to.Values {
		v := ops.Zero
		for j, p := range r.Forward.Cells[cI] {
			v = ops.Add(v, ops.Scale(r.Forward.Weights[cI][j], from.Values[p]))
		}
		to.Values[cI] = v
	}
}

// Each donor contribution is corrected to its value at the overlap
// centroid before weighting; second-order accurate, exact for linear
// fields with an exact gradient.
func interpolateConserve[T Value](
	r *Remapper, ops Ops[T], to, from *VolField[T], grad Gradient[T],
) {
	fromCentres := r.From.CellCentres()

	for cI := range to.Values {
		v := ops.Zero
		for j, p := range r.Forward.Cells[cI] {
			dr := r.Forward.Centres[cI][j].Sub(fromCentres[p])
			contribution := ops.Add(from.Values[p], grad(p, dr))
			v = ops.Add(v, ops.Scale(r.Forward.Weights[cI][j], contribution))
		}
		to.Values[cI] = v
	}
}

// Distance-weighted average over nearby donor centroids. Cheap fallback;
// does not conserve. Candidates come from the overlap parents when
// available, otherwise the nearest donor cell and its face neighbours.
func interpolateInvDist[T Value](
	r *Remapper, ops Ops[T], to, from *VolField[T],
) {
	var (
		toCentres   = r.To.CellCentres()
		fromCentres = r.From.CellCentres()
		cellCells   = r.From.CellCells()
	)

	for cI := range to.Values {
		candidates := r.Forward.Cells[cI]
		if len(candidates) == 0 {
			nearest := r.From.NearestCell(toCentres[cI])
			candidates = append([]int{nearest}, cellCells[nearest]...)
		}

		var sumW float64
		weights := make([]float64, len(candidates))
		for j, p := range candidates {
			w := 1.0 / (fromCentres[p].Sub(toCentres[cI]).Mag() + geometry.VSmall)
			weights[j] = w
			sumW += w
		}

		v := ops.Zero
		for j, p := range candidates {
			v = ops.Add(v, ops.Scale(weights[j]/sumW, from.Values[p]))
		}
		to.Values[cI] = v
	}
}

// InterpolateScalar maps a scalar field, reconstructing a least-squares
// gradient for the Conservative method.
func (r *Remapper) InterpolateScalar(to, from *VolField[float64], method Method) error {
	var grad Gradient[float64]
	if method == Conservative {
		g := ScalarGradient(r.From, from.Values)
		grad = func(cell int, dr geometry.Vec) float64 {
			return g[cell].Dot(dr)
		}
	}
	return Interpolate(r, ScalarOps(), to, from, grad, method)
}

// InterpolateVector maps a vector field, reconstructing a least-squares
// gradient tensor for the Conservative method.
func (r *Remapper) InterpolateVector(to, from *VolField[geometry.Vec], method Method) error {
	var grad Gradient[geometry.Vec]
	if method == Conservative {
		g := VectorGradient(r.From, from.Values)
		grad = func(cell int, dr geometry.Vec) geometry.Vec {
			return g[cell].MulVec(dr)
		}
	}
	return Interpolate(r, VectorOps(), to, from, grad, method)
}

// InterpolateTensor maps a rank-2 tensor field. Conservative needs a
// caller-supplied rank-3 correction through the generic Interpolate.
func (r *Remapper) InterpolateTensor(to, from *VolField[geometry.Tensor], method Method) error {
	return Interpolate(r, TensorOps(), to, from, nil, method)
}

// MapPatchField maps per-face boundary values of one receiving patch
// through the boundary addressing.
func MapPatchField[T Value](r *Remapper, patchI int, fromValues []T) []T {
	var (
		mapping = r.BoundaryAddressing[patchI]
		patch   = r.To.Patches[patchI]
		donor   = r.From.NInternalFaces()
		out     = make([]T, patch.Size)
	)
	for i, dfI := range mapping {
		if dfI < 0 {
			continue
		}
		// fromValues are indexed over donor boundary faces
		out[i] = fromValues[dfI-donor]
	}
	return out
}
