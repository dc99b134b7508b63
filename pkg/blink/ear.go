package blink

import (
	"math"

	"github.com/blinkworks/go-blink/pkg/landmark"
)

// EAR computes the eye aspect ratio for one eye:
//
//	EAR = (|p2−p6| + |p3−p5|) / (2·|p1−p4|)
//
// using 2D Euclidean distance on (x, y). The ratio is high while the
// eye is open and collapses toward zero as the lids close.
//
// Returns ok=false when the reading is unreliable: an index outside
// the landmark array, or a degenerate horizontal distance |p1−p4| of
// zero (tracker collapse). Callers must treat such frames as "no
// signal" rather than feed NaN or Inf into the state machine.
func EAR(points []landmark.Point, eye landmark.EyeIndices) (float64, bool) {
	if eye.Max() >= len(points) {
		return 0, false
	}

	p1 := points[eye.P1]
	p2 := points[eye.P2]
	p3 := points[eye.P3]
	p4 := points[eye.P4]
	p5 := points[eye.P5]
	p6 := points[eye.P6]

	horizontal := dist(p1, p4)
	if horizontal == 0 {
		return 0, false
	}

	vertical := dist(p2, p6) + dist(p3, p5)
	return vertical / (2 * horizontal), true
}

// AverageEAR computes the two-eye mean ratio for a frame.
// ok is false if either eye has no reliable reading.
func AverageEAR(points []landmark.Point, left, right landmark.EyeIndices) (float64, bool) {
	l, ok := EAR(points, left)
	if !ok {
		return 0, false
	}
	r, ok := EAR(points, right)
	if !ok {
		return 0, false
	}
	return (l + r) / 2, true
}

// dist is the 2D Euclidean distance between two landmarks.
func dist(a, b landmark.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
