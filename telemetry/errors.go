package telemetry

import (
	"errors"
	"log"
)

var (
	// ErrMalformed is returned for lines with missing or bad fields.
	ErrMalformed = errors.New("malformed telemetry record")
	// ErrLinkDown is returned when the port cannot be read.
	ErrLinkDown = errors.New("telemetry link down")
	// ErrNoData is returned when the read timed out before a full line arrived.
	ErrNoData = errors.New("no telemetry data")
)

// Logf is the package logger. Tests may replace it with SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil mutes it.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
