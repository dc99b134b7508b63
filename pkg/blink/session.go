package blink

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/blinkworks/go-blink/internal/log"
	"github.com/blinkworks/go-blink/pkg/landmark"
)

// Phase is the session lifecycle state.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseReady
	PhaseRunning
	PhaseStopped
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhaseRunning:
		return "running"
	case PhaseStopped:
		return "stopped"
	default:
		return "uninitialized"
	}
}

// FrameTicker abstracts the frame scheduler so the loop can be driven
// by synthetic ticks in tests instead of real time.
type FrameTicker interface {
	// C delivers frame ticks.
	C() <-chan time.Time
	// Stop cancels future ticks.
	Stop()
}

// realTicker adapts time.Ticker to FrameTicker.
type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// OpenSource acquires the landmark source and its underlying frame
// resource. Implementations return *InitError when the tracker or
// model cannot be loaded and *DeviceError when the camera (or other
// frame source) cannot be acquired.
type OpenSource func() (landmark.Source, error)

// Diagnostics is the pull-based diagnostics snapshot.
type Diagnostics struct {
	AvgEAR     float64 `json:"avg_ear"`
	FPS        int     `json:"fps"`
	BlinkCount int     `json:"blink_count"`
	Running    bool    `json:"is_running"`
}

// Session owns the blink pipeline lifecycle: it acquires the landmark
// source on Start, drives the per-frame loop from a ticker, and
// releases the source on Stop. Frames are processed strictly in
// arrival order on a single goroutine; the engine never buffers or
// reorders them.
type Session struct {
	cfg      Config
	open     OpenSource
	detector *Detector

	mu      sync.Mutex
	phase   Phase
	source  landmark.Source
	rate    RateMonitor
	lastEAR float64

	cancel context.CancelFunc
	done   chan struct{}

	// Test seams. Defaults drive a real time.Ticker and a monotonic
	// millisecond clock.
	newTicker func(time.Duration) FrameTicker
	now       func() int64
}

// NewSession validates the config and returns a Ready session.
// onBlink is invoked with the new cumulative count exactly once per
// accepted blink, synchronously within the frame step. It must not
// call back into the Session.
func NewSession(cfg Config, open OpenSource, onBlink func(count int)) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	epoch := time.Now()
	return &Session{
		cfg:      cfg,
		open:     open,
		detector: NewDetector(cfg, onBlink),
		phase:    PhaseReady,
		newTicker: func(d time.Duration) FrameTicker {
			return &realTicker{t: time.NewTicker(d)}
		},
		now: func() int64 {
			return time.Since(epoch).Milliseconds()
		},
	}, nil
}

// Start acquires the landmark source, zeroes the detector state and
// begins the frame loop. It requires a Ready session and propagates
// the opener's typed failure (*InitError, *DeviceError) untouched.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseRunning:
		return ErrAlreadyRunning
	case PhaseReady:
	default:
		return ErrNotReady
	}

	source, err := s.open()
	if err != nil {
		return err
	}

	s.source = source
	s.detector.Reset()
	s.rate.Reset()
	s.lastEAR = 0

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.phase = PhaseRunning

	go s.loop(runCtx)

	log.Info("blink session started",
		"ear_threshold", s.cfg.EARThreshold,
		"consecutive_frames", s.cfg.ConsecutiveFrames,
		"debounce", s.cfg.DebounceInterval,
		"frame_interval", s.cfg.FrameInterval)
	return nil
}

// loop is the cooperative frame scheduler: one pipeline invocation
// per tick, then control yields back until the next frame.
func (s *Session) loop(ctx context.Context) {
	defer close(s.done)

	ticker := s.newTicker(s.cfg.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if !s.step() {
				s.selfStop()
				return
			}
		}
	}
}

// step processes exactly one frame. It returns false when the source
// is drained (replay scripts) or the session left the Running phase.
func (s *Session) step() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stop may have won the race since the tick fired.
	if s.phase != PhaseRunning {
		return false
	}

	now := s.now()
	s.rate.Tick(now)

	frame, err := s.source.Next(now)
	if err != nil {
		if errors.Is(err, io.EOF) {
			log.Info("landmark source drained", "blinks", s.detector.Count())
			return false
		}
		// Transient read failure: treated like a no-signal frame.
		log.Warn("landmark read failed", "error", err)
		return true
	}

	res := s.detector.Process(frame)
	if !res.Dropout {
		s.lastEAR = res.AvgEAR
	}
	return true
}

// selfStop transitions to Stopped from inside the loop, releasing the
// source. Used when the source drains.
func (s *Session) selfStop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseRunning {
		return
	}
	s.phase = PhaseStopped
	s.cancel()
	s.releaseSource()
}

// Stop cancels the frame loop and releases the frame source. No
// frame processing executes after Stop returns. Idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.phase != PhaseRunning {
		if s.phase == PhaseReady {
			s.phase = PhaseStopped
		}
		s.mu.Unlock()
		return
	}
	// Leaving Running before cancelling guarantees an in-flight tick
	// that is waiting on the lock becomes a no-op.
	s.phase = PhaseStopped
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.mu.Lock()
	s.releaseSource()
	s.mu.Unlock()

	log.Info("blink session stopped", "blinks", s.detector.Count())
}

// releaseSource closes the landmark source. Caller holds s.mu.
func (s *Session) releaseSource() {
	if s.source == nil {
		return
	}
	if err := s.source.Close(); err != nil {
		log.Warn("closing landmark source", "error", err)
	}
	s.source = nil
}

// Reset zeroes the blink count and detector state without stopping
// the loop or releasing the frame source, so a caller can start a
// fresh count within the same running session.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detector.Reset()
	s.rate.Reset()
	s.lastEAR = 0
}

// SetEnabled toggles blink counting at runtime.
func (s *Session) SetEnabled(enabled bool) {
	s.detector.SetEnabled(enabled)
}

// Enabled reports whether blink counting is enabled.
func (s *Session) Enabled() bool {
	return s.detector.Enabled()
}

// Count returns the cumulative accepted blink count.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detector.Count()
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Diagnostics returns the pull-based diagnostics snapshot.
func (s *Session) Diagnostics() Diagnostics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Diagnostics{
		AvgEAR:     s.lastEAR,
		FPS:        s.rate.FPS(),
		BlinkCount: s.detector.Count(),
		Running:    s.phase == PhaseRunning,
	}
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}
