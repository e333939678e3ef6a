package monitor

import (
	"errors"
	"log"
	"time"

	"radian-view/telemetry"
)

// Status strings shown in the status bar
const (
	StatusWaiting    = "waiting"
	StatusOK         = "ok"
	StatusSignalLost = "signal lost"
)

// Monitor pulls one record per frame from a source into the state.
type Monitor struct {
	source telemetry.Source
	state  *State

	status     string
	lastErr    error
	lastUpdate time.Time
	reconnects int
	records    int
}

// New creates a monitor over source
func New(source telemetry.Source, state *State) *Monitor {
	m := &Monitor{
		source: source,
		state:  state,
		status: StatusWaiting,
	}
	m.syncLines()
	return m
}

// syncLines copies line sensor readings from sources that report them
func (m *Monitor) syncLines() {
	if lr, ok := m.source.(telemetry.LineReporter); ok {
		copy(m.state.Robot.Line, lr.LineReadings())
	}
}

// Step reads at most one record and applies it. Malformed records and link
// failures mark the signal as lost and trigger exactly one reconnect; the
// frame's data is discarded. Step never fails.
func (m *Monitor) Step() {
	rec, err := m.source.ReadLine()
	switch {
	case err == nil:
		m.state.Apply(rec)
		m.syncLines()
		m.state.Sync()
		m.status = StatusOK
		m.lastErr = nil
		m.lastUpdate = time.Now()
		m.records++
	case errors.Is(err, telemetry.ErrNoData):
		m.state.Sync()
	default:
		if m.status != StatusSignalLost {
			log.Printf("Signal lost: %v", err)
		}
		m.status = StatusSignalLost
		m.lastErr = err
		m.reconnects++
		m.source.Reconnect()
	}
}

// State returns the snapshot the monitor writes
func (m *Monitor) State() *State {
	return m.state
}

// Status returns "waiting", "ok" or "signal lost"
func (m *Monitor) Status() string {
	return m.status
}

// LastError returns the error of the last failed frame, if the signal is lost
func (m *Monitor) LastError() error {
	return m.lastErr
}

// LastUpdate returns the time the last record was applied
func (m *Monitor) LastUpdate() time.Time {
	return m.lastUpdate
}

// Reconnects returns the number of reconnect attempts so far
func (m *Monitor) Reconnects() int {
	return m.reconnects
}

// Records returns the number of records applied so far
func (m *Monitor) Records() int {
	return m.records
}
