package landmark

import (
	"encoding/json"
	"io"
)

// Replay is a Source that plays back a fixed script of frames.
// It drives the blink pipeline deterministically without a camera:
// tests and the blink-replay command feed it synthetic or recorded
// landmark frames with known timestamps.
type Replay struct {
	frames []*Frame
	pos    int
}

// NewReplay creates a replay source over a frame script.
// A nil entry in the script represents a frame where the tracker
// found no face.
func NewReplay(frames []*Frame) *Replay {
	return &Replay{frames: frames}
}

// LoadReplay reads a JSON array of frames from r. Null array elements
// become no-face frames.
func LoadReplay(r io.Reader) (*Replay, error) {
	var frames []*Frame
	if err := json.NewDecoder(r).Decode(&frames); err != nil {
		return nil, err
	}
	return NewReplay(frames), nil
}

// Next returns the next scripted frame, stamped with the caller's
// timestamp when the script did not record one. Returns io.EOF once
// the script is exhausted.
func (r *Replay) Next(now int64) (*Frame, error) {
	if r.pos >= len(r.frames) {
		return nil, io.EOF
	}
	f := r.frames[r.pos]
	r.pos++
	if f == nil {
		return nil, nil
	}
	if f.Timestamp == 0 {
		stamped := *f
		stamped.Timestamp = now
		return &stamped, nil
	}
	return f, nil
}

// Remaining returns how many scripted frames are left.
func (r *Replay) Remaining() int {
	return len(r.frames) - r.pos
}

// Close implements Source. Replay holds no resources.
func (r *Replay) Close() error {
	return nil
}
