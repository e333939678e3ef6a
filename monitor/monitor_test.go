package monitor

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"

	"radian-view/geom"
	"radian-view/telemetry"
)

type step struct {
	rec telemetry.Record
	err error
}

// scriptedSource replays records and errors, then reports no data
type scriptedSource struct {
	steps      []step
	reads      int
	reconnects int
}

func (s *scriptedSource) ReadLine() (telemetry.Record, error) {
	s.reads++
	if len(s.steps) == 0 {
		return nil, telemetry.ErrNoData
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	return st.rec, st.err
}

func (s *scriptedSource) Reconnect()   { s.reconnects++ }
func (s *scriptedSource) Close() error { return nil }

func TestState_Apply(t *testing.T) {
	s := NewState(geom.DefaultField())

	assert.True(t, s.Apply(telemetry.Gyro{Heading: 30}))
	assert.Equal(t, 30.0, s.Robot.Heading)

	ir := make([]float64, telemetry.IRCount)
	ir[5] = 512
	assert.True(t, s.Apply(telemetry.Infra{Values: ir}))
	assert.Equal(t, 512.0, s.Robot.IR[5])

	assert.False(t, s.Apply(telemetry.Unknown{Tag: "compass"}))
	assert.Equal(t, 30.0, s.Robot.Heading)
}

func TestState_ApplyShortInfra(t *testing.T) {
	s := NewState(geom.DefaultField())
	s.Robot.IR[10] = 99

	s.Apply(telemetry.Infra{Values: []float64{1, 2, 3}})
	assert.Equal(t, []float64{1, 2, 3}, s.Robot.IR[:3])
	assert.Equal(t, 99.0, s.Robot.IR[10])
	assert.Len(t, s.Robot.IR, telemetry.IRCount)
}

func TestState_ApplyLongInfra(t *testing.T) {
	s := NewState(geom.DefaultField())
	long := make([]float64, 30)
	for i := range long {
		long[i] = float64(i)
	}
	s.Apply(telemetry.Infra{Values: long})
	assert.Len(t, s.Robot.IR, telemetry.IRCount)
	assert.Equal(t, 23.0, s.Robot.IR[23])
}

func TestNewState_Defaults(t *testing.T) {
	s := NewState(geom.DefaultField())
	assert.Equal(t, geom.DefaultField(), s.Field.Field)
	assert.Equal(t, 100.0, s.Field.TOFFront)
	assert.Equal(t, 50.0, s.Field.TOFLeft)
	assert.Equal(t, 60.0, s.Field.TOFRight)
	assert.Equal(t, 100.0, s.Field.TOFBack)
	assert.Len(t, s.Robot.Line, LineCount)
	assert.False(t, s.Robot.Gate)
}

func TestMonitor_StepApplies(t *testing.T) {
	src := &scriptedSource{steps: []step{{rec: telemetry.Gyro{Heading: 45}}}}
	m := New(src, NewState(geom.DefaultField()))
	assert.Equal(t, StatusWaiting, m.Status())

	m.Step()
	assert.Equal(t, StatusOK, m.Status())
	assert.Equal(t, 45.0, m.State().Robot.Heading)
	assert.Equal(t, 45.0, m.State().Field.Heading, "field heading follows the gyro")
	assert.Equal(t, 1, m.Records())
	assert.False(t, m.LastUpdate().IsZero())
	assert.Zero(t, src.reconnects)
}

func TestMonitor_NoDataKeepsStatus(t *testing.T) {
	src := &scriptedSource{steps: []step{{rec: telemetry.Gyro{Heading: 1}}}}
	m := New(src, NewState(geom.DefaultField()))

	m.Step()
	m.Step()
	assert.Equal(t, StatusOK, m.Status())
	assert.Zero(t, src.reconnects)
}

func TestMonitor_OneReconnectPerFailedFrame(t *testing.T) {
	for _, kind := range []error{telemetry.ErrMalformed, telemetry.ErrLinkDown} {
		t.Run(kind.Error(), func(t *testing.T) {
			src := &scriptedSource{steps: []step{
				{err: fmt.Errorf("%w: test", kind)},
				{err: fmt.Errorf("%w: test", kind)},
				{rec: telemetry.Gyro{Heading: 10}},
			}}
			st := NewState(geom.DefaultField())
			m := New(src, st)

			m.Step()
			assert.Equal(t, StatusSignalLost, m.Status())
			assert.Equal(t, 1, src.reconnects)
			assert.ErrorIs(t, m.LastError(), kind)

			m.Step()
			assert.Equal(t, 2, src.reconnects)
			assert.Zero(t, st.Robot.Heading, "failed frames are discarded")

			m.Step()
			assert.Equal(t, StatusOK, m.Status())
			assert.Equal(t, 2, src.reconnects)
			assert.Equal(t, 2, m.Reconnects())
			assert.NoError(t, m.LastError())
		})
	}
}

func TestMonitor_StepIsBounded(t *testing.T) {
	// a dead port must not stall the loop: every Step reads once and returns
	port := &deadPort{}
	opens := 0
	open := func(string, *serial.Mode) (telemetry.Port, error) {
		opens++
		return port, nil
	}
	telemetry.SetLogger(nil)
	src, err := telemetry.NewSerial(telemetry.SerialConfig{Port: "/dev/ttyS9"}, nil, open)
	require.NoError(t, err)

	m := New(src, NewState(geom.DefaultField()))
	start := time.Now()
	for i := 0; i < 5; i++ {
		m.Step()
	}
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, StatusSignalLost, m.Status())
	assert.Equal(t, 5, m.Reconnects())
	assert.Equal(t, 6, opens)
}

// deadPort fails every read
type deadPort struct{}

func (deadPort) Read([]byte) (int, error)           { return 0, errDead }
func (deadPort) Close() error                       { return nil }
func (deadPort) SetReadTimeout(time.Duration) error { return nil }

var errDead = fmt.Errorf("input/output error")

func TestMonitor_LineReadingsFromDemo(t *testing.T) {
	demo := telemetry.NewDemo(5, nil)
	m := New(demo, NewState(geom.DefaultField()))
	assert.Equal(t, demo.LineReadings(), m.State().Robot.Line, "seeded on creation")

	for i := 0; i < 10; i++ {
		m.Step()
	}
	assert.Equal(t, StatusOK, m.Status())
	assert.Equal(t, demo.LineReadings(), m.State().Robot.Line)
}

func TestMonitor_LineReadingsUntouchedWithoutReporter(t *testing.T) {
	src := &scriptedSource{steps: []step{{rec: telemetry.Gyro{Heading: 1}}}}
	m := New(src, NewState(geom.DefaultField()))
	m.Step()
	assert.Equal(t, make([]float64, LineCount), m.State().Robot.Line)
}
