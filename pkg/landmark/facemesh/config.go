// Package facemesh produces per-frame facial landmarks from a webcam
// using YuNet face detection plus a 106-point landmark model.
package facemesh

import "github.com/blinkworks/go-blink/pkg/camera"

// Config holds the landmark backend configuration.
type Config struct {
	// FaceModelPath is the YuNet face detection ONNX model.
	FaceModelPath string `json:"face_model_path"`

	// LandmarkModelPath is the 106-point landmark ONNX model
	// (insightface 2d106det layout).
	LandmarkModelPath string `json:"landmark_model_path"`

	// OrtLibraryPath optionally overrides the ONNX Runtime shared
	// library location.
	OrtLibraryPath string `json:"ort_library_path"`

	// ConfidenceThresh is the minimum face detection score.
	ConfidenceThresh float64 `json:"confidence_thresh"`

	// Camera is the capture device configuration.
	Camera camera.Config `json:"camera"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		FaceModelPath:     "models/face_detection_yunet.onnx",
		LandmarkModelPath: "models/2d106det.onnx",
		ConfidenceThresh:  0.5,
		Camera:            camera.DefaultConfig(),
	}
}
