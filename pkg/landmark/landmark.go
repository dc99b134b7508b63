// Package landmark defines the facial landmark types produced by
// face-tracking backends and consumed by the blink engine.
package landmark

// Point is a single tracked facial keypoint with coordinates
// normalized to the frame (0-1). Z is model-dependent depth and is
// ignored by the blink engine.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// Frame is one ordered set of landmarks for the first detected face,
// stamped with a monotonic timestamp in milliseconds. Frames are
// read-only and must not be retained past the frame step.
type Frame struct {
	Points    []Point `json:"points"`
	Timestamp int64   `json:"timestamp_ms"`
}

// EyeIndices selects the six landmarks of one eye in p1..p6 order:
// outer corner, two upper-lid points, inner corner, two lower-lid
// points. Indices follow whichever layout the backend emits.
type EyeIndices struct {
	P1, P2, P3, P4, P5, P6 int
}

// MediaPipe FaceMesh 468-point layout eye indices.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
var (
	MediaPipeLeftEye  = EyeIndices{P1: 33, P2: 160, P3: 158, P4: 133, P5: 153, P6: 144}
	MediaPipeRightEye = EyeIndices{P1: 362, P2: 385, P3: 387, P4: 263, P5: 373, P6: 380}
)

// InsightFace 106-point layout eye indices (2d106det model).
var (
	InsightFaceLeftEye  = EyeIndices{P1: 87, P2: 90, P3: 91, P4: 93, P5: 95, P6: 96}
	InsightFaceRightEye = EyeIndices{P1: 33, P2: 36, P3: 37, P4: 40, P5: 41, P6: 42}
)

// Max returns the largest landmark index the set references.
func (e EyeIndices) Max() int {
	max := e.P1
	for _, i := range []int{e.P2, e.P3, e.P4, e.P5, e.P6} {
		if i > max {
			max = i
		}
	}
	return max
}

// Source is the interface for per-frame landmark backends.
// Next is synchronous: it blocks until the frame has been processed
// and returns the landmarks of the first detected face, or nil when
// no face was found. Multi-face is not supported.
type Source interface {
	// Next captures and processes one frame at the given monotonic
	// timestamp (milliseconds). A nil frame with nil error means no
	// face was detected.
	Next(now int64) (*Frame, error)

	// Close releases backend resources.
	Close() error
}
