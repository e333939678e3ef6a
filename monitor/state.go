// Package monitor keeps the latest sensor snapshot and advances it once per frame.
package monitor

import (
	"radian-view/geom"
	"radian-view/telemetry"
)

// Default TOF readings in centimeters, shown until the robot reports its own
const (
	DefaultTOFFront = 100
	DefaultTOFLeft  = 50
	DefaultTOFRight = 60
	DefaultTOFBack  = 100
)

// LineCount is the number of line sensors in the ring
const LineCount = telemetry.LineCount

// FieldState is what the field view draws
type FieldState struct {
	Field geom.Field

	TOFFront float64
	TOFLeft  float64
	TOFRight float64
	TOFBack  float64

	Heading float64
}

// RobotState is what the robot view draws
type RobotState struct {
	IR      []float64
	Line    []float64
	Gate    bool
	Heading float64
}

// State is the one mutable snapshot shared by both views.
type State struct {
	Field FieldState
	Robot RobotState
}

// NewState creates the snapshot with default readings
func NewState(field geom.Field) *State {
	return &State{
		Field: FieldState{
			Field:    field,
			TOFFront: DefaultTOFFront,
			TOFLeft:  DefaultTOFLeft,
			TOFRight: DefaultTOFRight,
			TOFBack:  DefaultTOFBack,
		},
		Robot: RobotState{
			IR:   make([]float64, telemetry.IRCount),
			Line: make([]float64, LineCount),
		},
	}
}

// Apply updates the snapshot from one record. It reports whether the
// record changed anything.
func (s *State) Apply(rec telemetry.Record) bool {
	switch r := rec.(type) {
	case telemetry.Infra:
		// a short record only overwrites the sensors it has values for
		copy(s.Robot.IR, r.Values)
		return true
	case telemetry.Gyro:
		s.Robot.Heading = r.Heading
		return true
	case telemetry.Unknown:
		return false
	default:
		return false
	}
}

// Sync copies robot-derived values into the field state
func (s *State) Sync() {
	s.Field.Heading = s.Robot.Heading
}
