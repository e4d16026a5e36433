package geometry

import "fmt"

// LoopError reports a face-loop insertion whose anchor labels were not
// adjacent. This indicates caller-side topology corruption and is not
// recoverable locally.
type LoopError struct {
	Label, LabelA, LabelB int
	Loop                  []int
}

func (e *LoopError) Error() string {
	return fmt.Sprintf(
		"cannot insert %d in loop %v: labels %d and %d not found in sequence",
		e.Label, e.Loop, e.LabelA, e.LabelB,
	)
}

// InsertLabel inserts newLabel between labelA and labelB in an ordered
// loop, in either traversal direction. Assumes all labels are unique.
// Fails when the anchors are not adjacent in the loop.
func InsertLabel(newLabel, labelA, labelB int, loop []int) ([]int, error) {
	var (
		found   bool
		newLoop = make([]int, 0, len(loop)+1)
	)

	for itemI, item := range loop {
		newLoop = append(newLoop, item)

		next := loop[(itemI+1)%len(loop)]

		if !found &&
			((item == labelA && next == labelB) ||
				(item == labelB && next == labelA)) {
			found = true
			newLoop = append(newLoop, newLabel)
		}
	}

	if !found {
		return nil, &LoopError{
			Label:  newLabel,
			LabelA: labelA,
			LabelB: labelB,
			Loop:   loop,
		}
	}
	return newLoop, nil
}

// InsertPointLabels inserts each of pLabels into the ordered face loop at
// the position preserving right-handedness relative to refNorm: the label
// goes between the first adjacent pair forming a positively-oriented
// sub-triangle with it.
func InsertPointLabels(refNorm Vec, points []Vec, pLabels []int, loop []int) ([]int, error) {
	newLoop := append([]int(nil), loop...)

	for _, label := range pLabels {
		inserted := false
		for pI := 0; pI < len(newLoop); pI++ {
			nI := (pI + 1) % len(newLoop)

			newNorm := points[label].Sub(points[newLoop[pI]]).
				Cross(points[newLoop[nI]].Sub(points[newLoop[pI]]))

			if refNorm.Dot(newNorm) > 0.0 {
				var err error
				if newLoop, err = InsertLabel(
					label, newLoop[pI], newLoop[nI], newLoop,
				); err != nil {
					return nil, err
				}
				inserted = true
				break
			}
		}
		if !inserted {
			return nil, &LoopError{Label: label, Loop: newLoop}
		}
	}
	return newLoop, nil
}
