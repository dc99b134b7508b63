package blink

import (
	"testing"
	"time"

	"github.com/blinkworks/go-blink/pkg/landmark"
)

var testRightEye = landmark.EyeIndices{P1: 6, P2: 7, P3: 8, P4: 9, P5: 10, P6: 11}

// testConfig uses the production defaults with test eye indices.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.LeftEye = testEye
	cfg.RightEye = testRightEye
	return cfg
}

// frameAt builds a two-eye frame whose averaged EAR is exactly ratio.
func frameAt(ratio float64, ts int64) *landmark.Frame {
	points := append(append([]landmark.Point{}, eyePoints(ratio)...), eyePoints(ratio)...)
	return &landmark.Frame{Points: points, Timestamp: ts}
}

// degenerateFrameAt builds a frame whose EAR reading is unreliable.
func degenerateFrameAt(ts int64) *landmark.Frame {
	return &landmark.Frame{Points: make([]landmark.Point, 12), Timestamp: ts}
}

// feed runs a scripted EAR sequence 33ms apart and returns the final count.
func feed(d *Detector, ears []float64) int {
	count := 0
	for i, e := range ears {
		res := d.Process(frameAt(e, int64(i)*33))
		count = res.Count
	}
	return count
}

func TestDetector_SingleBlink(t *testing.T) {
	// Two open, two closed, reopen: exactly one blink at t=132.
	var accepted []int
	d := NewDetector(testConfig(), func(count int) {
		accepted = append(accepted, count)
	})

	ears := []float64{0.30, 0.30, 0.15, 0.12, 0.30, 0.30}
	for i, e := range ears {
		d.Process(frameAt(e, int64(i)*33))
	}

	if d.Count() != 1 {
		t.Errorf("expected 1 blink, got %d", d.Count())
	}
	if len(accepted) != 1 || accepted[0] != 1 {
		t.Errorf("expected exactly one callback with count 1, got %v", accepted)
	}
	st := d.Snapshot()
	if !st.HasAccepted || st.LastAccepted != 132 {
		t.Errorf("expected acceptance at t=132, got %+v", st)
	}
}

func TestDetector_DebounceRejectsSecondBlink(t *testing.T) {
	// The second reopen lands 100ms after the first accept, inside
	// the 200ms debounce window.
	d := NewDetector(testConfig(), nil)

	d.Process(frameAt(0.15, 66))
	d.Process(frameAt(0.12, 99))
	d.Process(frameAt(0.30, 132)) // First accept
	d.Process(frameAt(0.15, 166))
	d.Process(frameAt(0.12, 199))
	d.Process(frameAt(0.30, 232)) // 132-232 < 200ms: rejected

	if d.Count() != 1 {
		t.Errorf("expected debounce to hold count at 1, got %d", d.Count())
	}

	st := d.Snapshot()
	if st.LastAccepted != 132 {
		t.Errorf("rejection must not move the accepted timestamp, got %d", st.LastAccepted)
	}
	if st.Blinking || st.ConsecutiveClosed != 0 {
		t.Errorf("reopen must disarm even when rejected, got %+v", st)
	}
}

func TestDetector_DebounceAcceptsAfterInterval(t *testing.T) {
	// Blinks spaced >= DebounceInterval are both accepted.
	d := NewDetector(testConfig(), nil)

	d.Process(frameAt(0.15, 0))
	d.Process(frameAt(0.12, 33))
	d.Process(frameAt(0.30, 66)) // Accept at 66
	d.Process(frameAt(0.15, 200))
	d.Process(frameAt(0.12, 233))
	d.Process(frameAt(0.30, 266)) // 266-66 = 200 >= 200: accept

	if d.Count() != 2 {
		t.Errorf("expected 2 blinks, got %d", d.Count())
	}
}

func TestDetector_InsufficientConfirmation(t *testing.T) {
	// A single closed frame then recovery confirms nothing.
	d := NewDetector(testConfig(), nil)

	if got := feed(d, []float64{0.30, 0.15, 0.30, 0.30}); got != 0 {
		t.Errorf("expected no blink for single-frame closure, got %d", got)
	}
}

func TestDetector_DropoutPreservesClosure(t *testing.T) {
	// A no-face frame mid-closure does not erase progress.
	d := NewDetector(testConfig(), nil)

	d.Process(frameAt(0.15, 0))
	res := d.Process(nil) // Tracker dropout
	if !res.Dropout {
		t.Error("expected dropout result for nil frame")
	}

	st := d.Snapshot()
	if st.ConsecutiveClosed != 1 {
		t.Errorf("dropout must preserve consecutive closed count, got %d", st.ConsecutiveClosed)
	}

	d.Process(frameAt(0.12, 66)) // Confirmation resumes, reaches 2
	d.Process(frameAt(0.30, 99))

	if d.Count() != 1 {
		t.Errorf("expected blink after closure resumed across dropout, got %d", d.Count())
	}
}

func TestDetector_DegenerateReadingIsDropout(t *testing.T) {
	d := NewDetector(testConfig(), nil)

	d.Process(frameAt(0.15, 0))
	res := d.Process(degenerateFrameAt(33))
	if !res.Dropout {
		t.Error("expected degenerate EAR frame to be treated as dropout")
	}
	if st := d.Snapshot(); st.ConsecutiveClosed != 1 {
		t.Errorf("degenerate frame must not touch state, got %+v", st)
	}
}

func TestDetector_DisabledGate(t *testing.T) {
	// Disabled means no counting, but closure tracking continues.
	cfg := testConfig()
	cfg.Enabled = false
	d := NewDetector(cfg, func(int) {
		t.Error("callback must not fire while disabled")
	})

	d.Process(frameAt(0.15, 0))
	d.Process(frameAt(0.12, 33))

	if st := d.Snapshot(); !st.Blinking || st.ConsecutiveClosed != 2 {
		t.Errorf("closure tracking should continue while disabled, got %+v", st)
	}

	d.Process(frameAt(0.30, 66))
	if d.Count() != 0 {
		t.Errorf("expected no blinks while disabled, got %d", d.Count())
	}
}

func TestDetector_ReEnable(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	d := NewDetector(cfg, nil)

	feed(d, []float64{0.15, 0.12, 0.30})
	d.SetEnabled(true)
	d.Process(frameAt(0.15, 300))
	d.Process(frameAt(0.12, 333))
	d.Process(frameAt(0.30, 366))

	if d.Count() != 1 {
		t.Errorf("expected 1 blink after re-enable, got %d", d.Count())
	}
}

func TestDetector_Monotonicity(t *testing.T) {
	// The count never decreases and rises by at most 1 per frame.
	d := NewDetector(testConfig(), nil)

	ears := []float64{
		0.30, 0.15, 0.12, 0.30, 0.30, 0.10, 0.30, 0.15,
		0.12, 0.11, 0.30, 0.30, 0.15, 0.12, 0.30, 0.05,
	}

	last := 0
	for i, e := range ears {
		res := d.Process(frameAt(e, int64(i)*50))
		if res.Count < last {
			t.Fatalf("count decreased from %d to %d at frame %d", last, res.Count, i)
		}
		if res.Count > last+1 {
			t.Fatalf("count jumped from %d to %d at frame %d", last, res.Count, i)
		}
		last = res.Count
	}
}

func TestDetector_CallbackPanicDoesNotAbort(t *testing.T) {
	d := NewDetector(testConfig(), func(int) {
		panic("downstream failure")
	})

	feed(d, []float64{0.15, 0.12, 0.30})

	// The blink physically happened; the count is not rolled back.
	if d.Count() != 1 {
		t.Errorf("expected count 1 despite callback panic, got %d", d.Count())
	}

	// The loop keeps processing subsequent frames.
	d.Process(frameAt(0.15, 400))
	d.Process(frameAt(0.12, 433))
	d.Process(frameAt(0.30, 466))
	if d.Count() != 2 {
		t.Errorf("expected count 2 after second blink, got %d", d.Count())
	}
}

func TestDetector_Reset(t *testing.T) {
	d := NewDetector(testConfig(), nil)

	feed(d, []float64{0.15, 0.12, 0.30})
	if d.Count() != 1 {
		t.Fatalf("setup blink failed, count %d", d.Count())
	}

	d.Reset()
	if st := d.Snapshot(); st != (State{}) {
		t.Errorf("expected zeroed state after reset, got %+v", st)
	}
}

func TestDetector_ZeroDebounce(t *testing.T) {
	cfg := testConfig()
	cfg.DebounceInterval = 0
	d := NewDetector(cfg, nil)

	d.Process(frameAt(0.15, 0))
	d.Process(frameAt(0.12, 33))
	d.Process(frameAt(0.30, 66))
	d.Process(frameAt(0.15, 66))
	d.Process(frameAt(0.12, 99))
	d.Process(frameAt(0.30, 99))

	if d.Count() != 2 {
		t.Errorf("zero debounce should accept back-to-back blinks, got %d", d.Count())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"zero threshold", func(c *Config) { c.EARThreshold = 0 }, true},
		{"negative threshold", func(c *Config) { c.EARThreshold = -0.1 }, true},
		{"zero consecutive frames", func(c *Config) { c.ConsecutiveFrames = 0 }, true},
		{"negative debounce", func(c *Config) { c.DebounceInterval = -time.Millisecond }, true},
		{"zero frame interval", func(c *Config) { c.FrameInterval = 0 }, true},
		{"zero debounce ok", func(c *Config) { c.DebounceInterval = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
