package blink

import (
	"math"
	"testing"

	"github.com/blinkworks/go-blink/pkg/landmark"
)

// eyePoints builds six landmarks whose EAR is exactly ratio, using a
// horizontal corner distance of 0.2.
func eyePoints(ratio float64) []landmark.Point {
	const d = 0.2
	v := ratio * d
	return []landmark.Point{
		{X: 0.0, Y: 0.5},          // p1 outer corner
		{X: 0.05, Y: 0.5 - v/2},   // p2 upper lid
		{X: 0.15, Y: 0.5 - v/2},   // p3 upper lid
		{X: d, Y: 0.5},            // p4 inner corner
		{X: 0.15, Y: 0.5 + v/2},   // p5 lower lid
		{X: 0.05, Y: 0.5 + v/2},   // p6 lower lid
	}
}

var testEye = landmark.EyeIndices{P1: 0, P2: 1, P3: 2, P4: 3, P5: 4, P6: 5}

func TestEAR_KnownRatios(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
	}{
		{"wide open", 0.35},
		{"typical open", 0.30},
		{"near threshold", 0.21},
		{"closed", 0.10},
		{"fully closed", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EAR(eyePoints(tt.ratio), testEye)
			if !ok {
				t.Fatal("expected reliable reading")
			}
			if math.Abs(got-tt.ratio) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.ratio)
			}
		})
	}
}

func TestEAR_DegenerateHorizontal(t *testing.T) {
	// All six points collapsed onto one location: |p1-p4| == 0.
	points := make([]landmark.Point, 6)
	for i := range points {
		points[i] = landmark.Point{X: 0.5, Y: 0.5}
	}

	got, ok := EAR(points, testEye)
	if ok {
		t.Errorf("expected unreliable reading for degenerate eye, got %v", got)
	}
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Errorf("NaN/Inf must never escape, got %v", got)
	}
}

func TestEAR_IndexOutOfRange(t *testing.T) {
	points := eyePoints(0.3)[:4] // Too few landmarks
	if _, ok := EAR(points, testEye); ok {
		t.Error("expected unreliable reading for truncated landmark array")
	}
}

func TestAverageEAR(t *testing.T) {
	left := eyePoints(0.30)
	right := eyePoints(0.10)
	points := append(append([]landmark.Point{}, left...), right...)
	rightEye := landmark.EyeIndices{P1: 6, P2: 7, P3: 8, P4: 9, P5: 10, P6: 11}

	avg, ok := AverageEAR(points, testEye, rightEye)
	if !ok {
		t.Fatal("expected reliable reading")
	}
	if math.Abs(avg-0.20) > 1e-9 {
		t.Errorf("got %v, want 0.20", avg)
	}
}

func TestAverageEAR_OneEyeUnreliable(t *testing.T) {
	left := eyePoints(0.30)
	// Right eye collapsed.
	right := make([]landmark.Point, 6)
	points := append(append([]landmark.Point{}, left...), right...)
	rightEye := landmark.EyeIndices{P1: 6, P2: 7, P3: 8, P4: 9, P5: 10, P6: 11}

	if _, ok := AverageEAR(points, testEye, rightEye); ok {
		t.Error("expected unreliable reading when one eye is degenerate")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		avg       float64
		threshold float64
		want      EyeState
	}{
		{"open above threshold", 0.30, 0.21, EyesOpen},
		{"closed below threshold", 0.15, 0.21, EyesClosed},
		{"exactly at threshold is open", 0.21, 0.21, EyesOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.avg, tt.threshold); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
