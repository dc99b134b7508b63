package blink

import (
	"sync/atomic"

	"github.com/blinkworks/go-blink/internal/log"
	"github.com/blinkworks/go-blink/pkg/landmark"
)

// State is the authoritative mutable blink-detection state. It is
// owned by the frame-processing step and mutated at most once per
// processed frame.
type State struct {
	// ConsecutiveClosed counts closed frames observed in a row.
	ConsecutiveClosed int

	// Blinking is true once a closure has been confirmed
	// (ConsecutiveClosed reached the configured minimum).
	Blinking bool

	// LastAccepted is the monotonic timestamp (ms) of the last
	// accepted blink. Meaningless until HasAccepted is true.
	LastAccepted int64
	HasAccepted  bool

	// Count is the cumulative number of accepted blinks.
	// Non-decreasing; increases by at most 1 per frame.
	Count int
}

// Result reports what one frame step did, for diagnostics and tests.
type Result struct {
	// Dropout is true when the frame carried no reliable reading and
	// the state machine was skipped entirely.
	Dropout bool

	// AvgEAR is the averaged two-eye ratio for a valid frame.
	AvgEAR float64

	// Eyes is the open/closed classification for a valid frame.
	Eyes EyeState

	// Accepted is true when this frame completed a blink that passed
	// the debounce gate.
	Accepted bool

	// Count is the cumulative blink count after this frame.
	Count int
}

// Detector runs the blink state machine: sustained closure arms it,
// the first open frame after arming produces a candidate, and the
// debounce gate decides acceptance. Accepted blinks bump the counter
// and invoke the callback exactly once.
//
// Detector is not goroutine-safe by itself; the session controller
// owns it and serializes Process, Reset and Snapshot.
type Detector struct {
	cfg   Config
	state State

	// enabled is the one runtime-togglable switch. Candidates are
	// rejected while false; closure tracking continues regardless.
	enabled atomic.Bool

	// onBlink is invoked with the new cumulative count once per
	// accepted blink, synchronously within the frame step.
	onBlink func(count int)
}

// NewDetector creates a detector. onBlink may be nil.
func NewDetector(cfg Config, onBlink func(count int)) *Detector {
	d := &Detector{cfg: cfg, onBlink: onBlink}
	d.enabled.Store(cfg.Enabled)
	return d
}

// Process advances the state machine by one frame. A nil frame means
// the tracker found no face this frame.
//
// Dropout policy: frames with no reliable reading (no face, or a
// degenerate EAR denominator) skip the update entirely, leaving
// ConsecutiveClosed and Blinking untouched. A momentary tracker
// dropout mid-closure therefore does not erase an in-progress blink;
// confirmation resumes on the next valid frame.
func (d *Detector) Process(frame *landmark.Frame) Result {
	if frame == nil {
		return Result{Dropout: true, Count: d.state.Count}
	}

	avg, ok := AverageEAR(frame.Points, d.cfg.LeftEye, d.cfg.RightEye)
	if !ok {
		return Result{Dropout: true, Count: d.state.Count}
	}

	eyes := Classify(avg, d.cfg.EARThreshold)
	res := Result{AvgEAR: avg, Eyes: eyes}

	switch eyes {
	case EyesClosed:
		d.state.ConsecutiveClosed++
		if d.state.ConsecutiveClosed >= d.cfg.ConsecutiveFrames {
			d.state.Blinking = true
		}

	case EyesOpen:
		if d.state.Blinking {
			res.Accepted = d.gate(frame.Timestamp)
		}
		// Reopen always disarms, whether or not the gate accepted.
		d.state.ConsecutiveClosed = 0
		d.state.Blinking = false
	}

	res.Count = d.state.Count
	return res
}

// gate applies the debounce rules to a reopen candidate at time now
// (monotonic ms). Rejection is an ordinary steady-state outcome and
// mutates nothing.
func (d *Detector) gate(now int64) bool {
	if !d.enabled.Load() {
		return false
	}
	if d.state.HasAccepted && now-d.state.LastAccepted < d.cfg.DebounceInterval.Milliseconds() {
		return false
	}

	d.state.LastAccepted = now
	d.state.HasAccepted = true
	d.state.Count++
	d.emit(d.state.Count)
	return true
}

// emit invokes the downstream callback, shielding the frame loop from
// a panicking handler. The count is not rolled back on failure: the
// blink physically happened, there is no undo.
func (d *Detector) emit(count int) {
	if d.onBlink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("blink callback panicked", "count", count, "panic", r)
		}
	}()
	d.onBlink(count)
}

// Reset zeroes the detector state, starting a fresh count.
func (d *Detector) Reset() {
	d.state = State{}
}

// SetEnabled toggles the debounce gate's enable switch.
func (d *Detector) SetEnabled(enabled bool) {
	d.enabled.Store(enabled)
}

// Enabled reports whether blink counting is enabled.
func (d *Detector) Enabled() bool {
	return d.enabled.Load()
}

// Snapshot returns a copy of the current state.
func (d *Detector) Snapshot() State {
	return d.state
}

// Count returns the cumulative accepted blink count.
func (d *Detector) Count() int {
	return d.state.Count
}
