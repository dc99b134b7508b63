package camera

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Capture manages a webcam through gocv. Read and Close are
// mutex-guarded so a shutdown path cannot race a frame grab.
type Capture struct {
	webcam *gocv.VideoCapture
	cfg    Config
	width  int
	height int
	mu     sync.Mutex
}

// Open acquires the capture device and applies the requested mode.
func Open(cfg Config) (*Capture, error) {
	webcam, err := gocv.OpenVideoCapture(cfg.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", cfg.DeviceID, err)
	}

	webcam.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	webcam.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	webcam.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	// The driver may not honor the requested mode.
	actualWidth := int(webcam.Get(gocv.VideoCaptureFrameWidth))
	actualHeight := int(webcam.Get(gocv.VideoCaptureFrameHeight))

	return &Capture{
		webcam: webcam,
		cfg:    cfg,
		width:  actualWidth,
		height: actualHeight,
	}, nil
}

// Read captures one frame into the provided Mat. Returns false when
// the device produced no frame or has been closed.
func (c *Capture) Read(frame *gocv.Mat) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.webcam == nil {
		return false
	}
	return c.webcam.Read(frame)
}

// Width returns the actual frame width.
func (c *Capture) Width() int {
	return c.width
}

// Height returns the actual frame height.
func (c *Capture) Height() int {
	return c.height
}

// Close releases the camera. Safe to call more than once.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.webcam == nil {
		return nil
	}
	err := c.webcam.Close()
	c.webcam = nil
	return err
}
