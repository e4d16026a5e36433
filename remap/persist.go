package remap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"

	"github.com/topomesh/remap/geometry"
)

const addressingFileName = "conservativeAddressing.yaml"

// addressingFile is the persisted exchange format for a computed
// addressing: variable-length per-cell lists, aligned one-to-one, plus
// the boundary face mapping.
type addressingFile struct {
	NCells   int              `json:"nCells"`
	Cells    [][]int          `json:"addressing"`
	Weights  [][]float64      `json:"weights"`
	Volumes  [][]float64      `json:"volumes"`
	Centres  [][]geometry.Vec `json:"centres"`
	Boundary [][]int          `json:"boundaryAddressing"`
}

func (r *Remapper) addressingPath() string {
	return filepath.Join(r.opts.CaseDir, addressingFileName)
}

func (r *Remapper) writeAddressing() error {
	af := addressingFile{
		NCells:   r.Forward.Len(),
		Cells:    r.Forward.Cells,
		Weights:  r.Forward.Weights,
		Volumes:  r.Forward.Volumes,
		Centres:  r.Forward.Centres,
		Boundary: r.BoundaryAddressing,
	}
	data, err := yaml.Marshal(&af)
	if err != nil {
		return err
	}
	return os.WriteFile(r.addressingPath(), data, 0644)
}

// readAddressing restores a persisted addressing. Files that do not match
// the receiving mesh are rejected so stale addressing is recomputed
// rather than silently reused.
func (r *Remapper) readAddressing() error {
	data, err := os.ReadFile(r.addressingPath())
	if err != nil {
		return err
	}

	var af addressingFile
	if err = yaml.Unmarshal(data, &af); err != nil {
		return err
	}
	if af.NCells != r.To.NCells() || len(af.Cells) != af.NCells {
		return fmt.Errorf(
			"addressing sized for %d cells, mesh has %d", af.NCells, r.To.NCells(),
		)
	}
	if len(af.Weights) != af.NCells ||
		len(af.Volumes) != af.NCells ||
		len(af.Centres) != af.NCells {
		return fmt.Errorf("misaligned addressing lists")
	}
	if len(af.Boundary) != len(r.To.Patches) {
		return fmt.Errorf(
			"boundary addressing for %d patches, mesh has %d",
			len(af.Boundary), len(r.To.Patches),
		)
	}
	for patchI, patch := range r.To.Patches {
		if len(af.Boundary[patchI]) != patch.Size {
			return fmt.Errorf(
				"patch %q: %d mapped faces for %d boundary faces",
				patch.Name, len(af.Boundary[patchI]), patch.Size,
			)
		}
	}

	r.Forward = Addressing{
		Cells:   af.Cells,
		Weights: af.Weights,
		Volumes: af.Volumes,
		Centres: af.Centres,
	}
	r.BoundaryAddressing = af.Boundary
	return r.invertAddressing()
}
