package blink

// RateMonitor is a diagnostic frames-per-second counter. It counts
// frame arrivals in a rolling one-second window; the count of the
// last completed window is reported as the current FPS.
//
// Approximate and diagnostic-only: it never feeds back into the
// detection logic.
type RateMonitor struct {
	windowStart int64 // monotonic ms
	frames      int
	fps         int
}

// windowMs is the measurement window length.
const windowMs = 1000

// Tick records one frame arrival at the given monotonic timestamp.
func (r *RateMonitor) Tick(now int64) {
	if r.windowStart == 0 {
		r.windowStart = now
	}
	r.frames++

	if now-r.windowStart >= windowMs {
		r.fps = r.frames
		r.frames = 0
		r.windowStart = now
	}
}

// FPS returns the frame count of the last completed window.
func (r *RateMonitor) FPS() int {
	return r.fps
}

// Reset clears the window and the reported rate.
func (r *RateMonitor) Reset() {
	*r = RateMonitor{}
}
