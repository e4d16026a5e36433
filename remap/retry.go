package remap

import "github.com/topomesh/remap/geometry"

// RetryPolicy is the precision-escalation ladder for overlap computation:
// attempt i clips with tolerance Ladder[i], and a cell fails only after
// MaxAttempts attempts miss the conservation check. A swappable value
// object rather than inline control flow, so the escalation strategy is
// testable on its own.
type RetryPolicy struct {
	MaxAttempts int
	Ladder      []float64
}

// DefaultRetryPolicy starts at the process-wide match tolerance and
// tightens by two decades per attempt.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Ladder:      []float64{geometry.MatchTol, 1e-6, 1e-8},
	}
}

// Tol returns the clip tolerance for a given attempt, clamped to the last
// rung of the ladder.
func (rp RetryPolicy) Tol(attempt int) float64 {
	if attempt >= len(rp.Ladder) {
		return rp.Ladder[len(rp.Ladder)-1]
	}
	return rp.Ladder[attempt]
}

// HighPrecisionAttempt is the attempt index callers request to skip
// directly to the strictest tolerance.
func (rp RetryPolicy) HighPrecisionAttempt() int {
	return len(rp.Ladder) - 1
}
