package blink

import (
	"errors"
	"fmt"
)

// Sentinel errors for session lifecycle misuse.
var (
	// ErrNotReady is returned by Start when the session is not in the
	// Ready phase.
	ErrNotReady = errors.New("blink: session not ready")

	// ErrAlreadyRunning is returned by Start on a running session.
	ErrAlreadyRunning = errors.New("blink: session already running")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("blink: invalid config")
)

// InitError indicates the landmark tracker or its model failed to
// load. Fatal to Start; there is no internal retry.
type InitError struct {
	Err error
}

// Error implements the error interface.
func (e *InitError) Error() string {
	return fmt.Sprintf("blink: tracker initialization failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}

// DeviceError indicates the frame source could not be acquired, for
// example because camera access was denied. Fatal to Start; the
// caller decides any retry policy.
type DeviceError struct {
	Err error
}

// Error implements the error interface.
func (e *DeviceError) Error() string {
	return fmt.Sprintf("blink: frame source unavailable: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *DeviceError) Unwrap() error {
	return e.Err
}
