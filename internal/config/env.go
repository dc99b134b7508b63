// Package config provides configuration helpers for go-blink commands.
package config

import (
	"os"
	"strconv"
)

// Default daemon configuration.
const (
	DefaultWebPort  = "8090"
	DefaultCameraID = 0
)

// Env returns the named environment variable or a default.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvInt returns the named environment variable parsed as an int,
// or a default if unset or unparseable.
func EnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// EnvFloat returns the named environment variable parsed as a float64,
// or a default if unset or unparseable.
func EnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// WebAddr returns the dashboard listen address for a port.
func WebAddr(port string) string {
	return ":" + port
}
