// Package blink implements the blink-detection engine: it converts a
// per-frame stream of facial landmark snapshots into discrete,
// debounced blink events.
//
// Each frame flows through eye-aspect-ratio (EAR) calculation,
// open/closed classification, consecutive-frame confirmation, the
// debounce gate, and finally the counter/emitter. The session
// controller drives the pipeline from a pluggable frame ticker so it
// can be run against synthetic frames deterministically.
package blink

import (
	"fmt"
	"time"

	"github.com/blinkworks/go-blink/pkg/landmark"
)

// Config holds all tunable parameters for blink detection.
// It is immutable for the lifetime of a session once Start is called;
// the enabled switch is the one runtime toggle (see Detector.SetEnabled).
type Config struct {
	// EARThreshold is the eye aspect ratio below which a frame is
	// classified as closed. Must be > 0.
	EARThreshold float64 `json:"ear_threshold"`

	// ConsecutiveFrames is how many consecutive closed frames are
	// required before a closure is confirmed. Must be >= 1.
	ConsecutiveFrames int `json:"consecutive_frames"`

	// DebounceInterval is the minimum spacing between two accepted
	// blinks. Must be >= 0.
	DebounceInterval time.Duration `json:"debounce_interval_ms"`

	// Enabled controls whether blinks are counted at all. When false
	// the state machine still tracks closures but the gate rejects
	// every candidate.
	Enabled bool `json:"enabled"`

	// FrameInterval is the target spacing between frame ticks.
	// 33ms ≈ 30Hz, 16ms ≈ 60Hz.
	FrameInterval time.Duration `json:"frame_interval_ms"`

	// LeftEye and RightEye select the six landmark indices per eye
	// for the backend's layout.
	LeftEye  landmark.EyeIndices `json:"-"`
	RightEye landmark.EyeIndices `json:"-"`
}

// DefaultConfig returns the recommended configuration for a 30Hz
// MediaPipe-layout landmark stream.
func DefaultConfig() Config {
	return Config{
		EARThreshold:      0.21,
		ConsecutiveFrames: 2,
		DebounceInterval:  200 * time.Millisecond,
		Enabled:           true,
		FrameInterval:     33 * time.Millisecond,
		LeftEye:           landmark.MediaPipeLeftEye,
		RightEye:          landmark.MediaPipeRightEye,
	}
}

// Validate checks that the config values are usable.
func (c Config) Validate() error {
	if c.EARThreshold <= 0 {
		return fmt.Errorf("%w: ear threshold must be > 0, got %v", ErrInvalidConfig, c.EARThreshold)
	}
	if c.ConsecutiveFrames < 1 {
		return fmt.Errorf("%w: consecutive frames must be >= 1, got %d", ErrInvalidConfig, c.ConsecutiveFrames)
	}
	if c.DebounceInterval < 0 {
		return fmt.Errorf("%w: debounce interval must be >= 0, got %v", ErrInvalidConfig, c.DebounceInterval)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("%w: frame interval must be > 0, got %v", ErrInvalidConfig, c.FrameInterval)
	}
	return nil
}
