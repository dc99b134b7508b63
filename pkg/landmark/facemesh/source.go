package facemesh

import (
	"fmt"
	"image"
	"math"
	"os"

	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"github.com/blinkworks/go-blink/internal/inference"
	"github.com/blinkworks/go-blink/pkg/blink"
	"github.com/blinkworks/go-blink/pkg/camera"
	"github.com/blinkworks/go-blink/pkg/landmark"
)

const (
	landmarkInputSize = 192
	landmarkCount     = 106
	inputMean         = 127.5
	inputStd          = 128.0
)

// Source implements landmark.Source over a webcam: YuNet locates the
// first face, then the 106-point model produces the landmark array.
// Next is synchronous per frame; the caller drives pacing.
type Source struct {
	cfg      Config
	capture  *camera.Capture
	face     gocv.FaceDetectorYN
	session  *inference.Session
	frameMat gocv.Mat
}

// Open loads both models and acquires the camera. Model failures are
// reported as *blink.InitError, camera failures as *blink.DeviceError,
// so Session.Start can propagate them as typed errors.
func Open(cfg Config) (*Source, error) {
	if _, err := os.Stat(cfg.FaceModelPath); os.IsNotExist(err) {
		return nil, &blink.InitError{Err: fmt.Errorf("face model not found: %s", cfg.FaceModelPath)}
	}
	if _, err := os.Stat(cfg.LandmarkModelPath); os.IsNotExist(err) {
		return nil, &blink.InitError{Err: fmt.Errorf("landmark model not found: %s", cfg.LandmarkModelPath)}
	}

	if err := inference.Initialize(cfg.OrtLibraryPath); err != nil {
		return nil, &blink.InitError{Err: err}
	}

	session, err := inference.NewSession(cfg.LandmarkModelPath, []string{"data"}, []string{"fc1"})
	if err != nil {
		return nil, &blink.InitError{Err: err}
	}

	face := gocv.NewFaceDetectorYNWithParams(
		cfg.FaceModelPath,
		"", // no config file needed for ONNX
		image.Pt(320, 320),
		float32(cfg.ConfidenceThresh),
		0.3,  // NMS threshold
		5000, // top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	capture, err := camera.Open(cfg.Camera)
	if err != nil {
		face.Close()
		session.Destroy()
		return nil, &blink.DeviceError{Err: err}
	}

	return &Source{
		cfg:      cfg,
		capture:  capture,
		face:     face,
		session:  session,
		frameMat: gocv.NewMat(),
	}, nil
}

// Next captures one frame and returns the landmarks of the best
// detected face, or nil when no face is visible.
func (s *Source) Next(now int64) (*landmark.Frame, error) {
	if !s.capture.Read(&s.frameMat) || s.frameMat.Empty() {
		return nil, fmt.Errorf("camera produced no frame")
	}

	box, found := s.detectFace(s.frameMat)
	if !found {
		return nil, nil
	}

	points, err := s.detectLandmarks(s.frameMat, box)
	if err != nil {
		return nil, err
	}

	return &landmark.Frame{Points: points, Timestamp: now}, nil
}

// detectFace runs YuNet and returns the highest-scoring face box in
// pixel coordinates.
func (s *Source) detectFace(img gocv.Mat) (image.Rectangle, bool) {
	s.face.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()
	s.face.Detect(img, &faces)

	// YuNet rows: 0-3 box, 4-13 five landmarks, 14 score.
	best := image.Rectangle{}
	bestScore := float32(-1)
	for r := 0; r < faces.Rows(); r++ {
		score := faces.GetFloatAt(r, 14)
		if score < bestScore {
			continue
		}
		x := int(faces.GetFloatAt(r, 0))
		y := int(faces.GetFloatAt(r, 1))
		w := int(faces.GetFloatAt(r, 2))
		h := int(faces.GetFloatAt(r, 3))
		best = image.Rect(x, y, x+w, y+h)
		bestScore = score
	}

	return best, bestScore >= 0
}

// detectLandmarks crops the face with a 1.5x expansion (insightface
// convention), runs the 106-point model, and maps the output back to
// normalized full-frame coordinates.
func (s *Source) detectLandmarks(img gocv.Mat, box image.Rectangle) ([]landmark.Point, error) {
	w := float32(box.Dx())
	h := float32(box.Dy())
	centerX := float32(box.Min.X) + w/2
	centerY := float32(box.Min.Y) + h/2
	maxDim := w
	if h > w {
		maxDim = h
	}
	if maxDim == 0 {
		return nil, fmt.Errorf("degenerate face box")
	}
	scale := float32(landmarkInputSize) / (maxDim * 1.5)

	M := transformMatrix(centerX, centerY, scale)
	aligned := gocv.NewMat()
	defer aligned.Close()
	gocv.WarpAffine(img, &aligned, M, image.Pt(landmarkInputSize, landmarkInputSize))
	M.Close()

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(aligned, &rgb, gocv.ColorBGRToRGB)

	floatMat := gocv.NewMat()
	defer floatMat.Close()
	rgb.ConvertTo(&floatMat, gocv.MatTypeCV32FC3)

	// (x - mean) / std
	gocv.AddWeighted(floatMat, 1.0/inputStd, floatMat, 0, -inputMean/inputStd, &floatMat)

	blob := gocv.BlobFromImage(floatMat, 1.0, image.Pt(landmarkInputSize, landmarkInputSize),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	inputTensor, err := ort.NewTensor(
		ort.NewShape(1, 3, landmarkInputSize, landmarkInputSize),
		bytesToFloat32(blob.ToBytes()),
	)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := inference.CreateEmptyTensor[float32]([]int64{1, landmarkCount * 2})
	if err != nil {
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := s.session.Run([]ort.Value{inputTensor}, []ort.Value{outputTensor}); err != nil {
		return nil, fmt.Errorf("landmark inference: %w", err)
	}

	output := outputTensor.GetData()
	imgW := float64(img.Cols())
	imgH := float64(img.Rows())
	halfSize := float32(landmarkInputSize) / 2

	points := make([]landmark.Point, landmarkCount)
	for i := 0; i < landmarkCount; i++ {
		// Model output is in [-1, 1] over the aligned crop.
		x := (output[i*2] + 1) * halfSize
		y := (output[i*2+1] + 1) * halfSize

		px := float64((x-halfSize)/scale + centerX)
		py := float64((y-halfSize)/scale + centerY)

		points[i] = landmark.Point{
			X: clamp01(px / imgW),
			Y: clamp01(py / imgH),
		}
	}

	return points, nil
}

// transformMatrix builds the scale-and-translate affine for the face
// crop. No rotation.
func transformMatrix(centerX, centerY, scale float32) gocv.Mat {
	M := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	M.SetDoubleAt(0, 0, float64(scale))
	M.SetDoubleAt(0, 1, 0)
	M.SetDoubleAt(0, 2, float64(landmarkInputSize)/2-float64(centerX*scale))
	M.SetDoubleAt(1, 0, 0)
	M.SetDoubleAt(1, 1, float64(scale))
	M.SetDoubleAt(1, 2, float64(landmarkInputSize)/2-float64(centerY*scale))
	return M
}

// Close releases the camera, detector and inference session.
func (s *Source) Close() error {
	err := s.capture.Close()
	s.face.Close()
	if derr := s.session.Destroy(); err == nil {
		err = derr
	}
	s.frameMat.Close()
	return err
}

func bytesToFloat32(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		bits := uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
