// blinkd runs the blink-detection pipeline against a webcam and
// serves the diagnostics dashboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinkworks/go-blink/internal/config"
	"github.com/blinkworks/go-blink/internal/log"
	"github.com/blinkworks/go-blink/pkg/blink"
	"github.com/blinkworks/go-blink/pkg/landmark"
	"github.com/blinkworks/go-blink/pkg/landmark/facemesh"
	"github.com/blinkworks/go-blink/pkg/web"
)

func main() {
	device := flag.Int("device", config.EnvInt("BLINK_CAMERA", config.DefaultCameraID), "Camera device index")
	faceModel := flag.String("face-model", config.Env("BLINK_FACE_MODEL", "models/face_detection_yunet.onnx"), "YuNet face detection model path")
	lmModel := flag.String("landmark-model", config.Env("BLINK_LANDMARK_MODEL", "models/2d106det.onnx"), "106-point landmark model path")
	ortLib := flag.String("ort-lib", config.Env("BLINK_ORT_LIB", ""), "ONNX Runtime shared library path (optional)")
	threshold := flag.Float64("threshold", config.EnvFloat("BLINK_EAR_THRESHOLD", 0.21), "EAR closed-eye threshold")
	frames := flag.Int("frames", config.EnvInt("BLINK_CONSECUTIVE_FRAMES", 2), "Consecutive closed frames to confirm a blink")
	debounceMs := flag.Int("debounce", config.EnvInt("BLINK_DEBOUNCE_MS", 200), "Minimum ms between accepted blinks")
	port := flag.String("port", config.Env("BLINK_PORT", config.DefaultWebPort), "Dashboard port")
	level := flag.String("log-level", config.Env("BLINK_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	flag.Parse()

	log.Init(*level)

	cfg := blink.DefaultConfig()
	cfg.EARThreshold = *threshold
	cfg.ConsecutiveFrames = *frames
	cfg.DebounceInterval = time.Duration(*debounceMs) * time.Millisecond
	cfg.LeftEye = landmark.InsightFaceLeftEye
	cfg.RightEye = landmark.InsightFaceRightEye

	srcCfg := facemesh.DefaultConfig()
	srcCfg.FaceModelPath = *faceModel
	srcCfg.LandmarkModelPath = *lmModel
	srcCfg.OrtLibraryPath = *ortLib
	srcCfg.Camera.DeviceID = *device

	open := func() (landmark.Source, error) {
		return facemesh.Open(srcCfg)
	}

	var server *web.Server
	session, err := blink.NewSession(cfg, open, func(count int) {
		log.Info("blink", "count", count)
		if server != nil {
			server.PublishBlink(count)
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	server = web.NewServer(config.WebAddr(*port), session)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	if err := session.Start(ctx); err != nil {
		var initErr *blink.InitError
		var devErr *blink.DeviceError
		switch {
		case errors.As(err, &initErr):
			fmt.Fprintf(os.Stderr, "Error: tracker unavailable: %v\n", initErr.Err)
		case errors.As(err, &devErr):
			fmt.Fprintf(os.Stderr, "Error: camera unavailable: %v\n", devErr.Err)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	server.StartAsync()

	<-ctx.Done()
	session.Stop()
	server.Shutdown()
	log.Info("goodbye", "blinks", session.Count())
}
