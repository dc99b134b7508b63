// Package camera provides webcam frame capture for the blink
// pipeline via OpenCV.
package camera

// Config holds camera capture parameters.
type Config struct {
	// DeviceID is the OS capture device index.
	DeviceID int `json:"device_id"`

	// Width and Height request a capture resolution. The driver may
	// substitute the nearest supported mode.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Framerate is the requested capture FPS.
	Framerate int `json:"framerate"`
}

// DefaultConfig returns a 720p/30 configuration, enough resolution
// for eye landmarks at typical webcam distances.
func DefaultConfig() Config {
	return Config{
		DeviceID:  0,
		Width:     1280,
		Height:    720,
		Framerate: 30,
	}
}
