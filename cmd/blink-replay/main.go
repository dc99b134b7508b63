// blink-replay feeds a recorded JSON landmark script through the
// exact production pipeline and prints accepted blinks. Useful for
// regression-testing thresholds against captured sessions without a
// camera.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/blinkworks/go-blink/internal/config"
	"github.com/blinkworks/go-blink/internal/log"
	"github.com/blinkworks/go-blink/pkg/blink"
	"github.com/blinkworks/go-blink/pkg/landmark"
)

func main() {
	script := flag.String("script", "", "JSON landmark script path (required)")
	threshold := flag.Float64("threshold", config.EnvFloat("BLINK_EAR_THRESHOLD", 0.21), "EAR closed-eye threshold")
	frames := flag.Int("frames", config.EnvInt("BLINK_CONSECUTIVE_FRAMES", 2), "Consecutive closed frames to confirm a blink")
	debounceMs := flag.Int("debounce", config.EnvInt("BLINK_DEBOUNCE_MS", 200), "Minimum ms between accepted blinks")
	intervalMs := flag.Int("interval", 1, "Replay tick interval in ms (1 = as fast as possible)")
	level := flag.String("log-level", config.Env("BLINK_LOG_LEVEL", "warn"), "Log level")
	flag.Parse()

	log.Init(*level)

	if *script == "" {
		fmt.Fprintln(os.Stderr, "Usage: blink-replay -script frames.json")
		os.Exit(1)
	}

	f, err := os.Open(*script)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	replay, err := landmark.LoadReplay(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: parsing script: %v\n", err)
		os.Exit(1)
	}
	total := replay.Remaining()

	cfg := blink.DefaultConfig()
	cfg.EARThreshold = *threshold
	cfg.ConsecutiveFrames = *frames
	cfg.DebounceInterval = time.Duration(*debounceMs) * time.Millisecond
	cfg.FrameInterval = time.Duration(*intervalMs) * time.Millisecond

	open := func() (landmark.Source, error) { return replay, nil }

	session, err := blink.NewSession(cfg, open, func(count int) {
		fmt.Printf("blink %d\n", count)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := session.Start(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The session stops itself once the script drains.
	for session.Phase() == blink.PhaseRunning {
		time.Sleep(10 * time.Millisecond)
	}

	diag := session.Diagnostics()
	fmt.Printf("frames=%d blinks=%d\n", total, diag.BlinkCount)
}
