package blink

// EyeState is the per-frame open/closed classification of the
// averaged two-eye ratio.
type EyeState int

const (
	// EyesOpen means the averaged EAR is at or above the threshold.
	EyesOpen EyeState = iota
	// EyesClosed means the averaged EAR is below the threshold.
	EyesClosed
)

// String returns a human-readable state name.
func (s EyeState) String() string {
	if s == EyesClosed {
		return "closed"
	}
	return "open"
}

// Classify thresholds an averaged EAR into open or closed.
//
// Both eyes are treated symmetrically: a one-eyed wink is
// indistinguishable from a blink at this level. That is an accepted
// limitation of the two-eye mean, not a bug.
func Classify(avgEAR, threshold float64) EyeState {
	if avgEAR < threshold {
		return EyesClosed
	}
	return EyesOpen
}
