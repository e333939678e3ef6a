package telemetry

import (
	"math/rand"
)

// LineReporter is a source that knows the line sensor readings directly.
// The wire protocol does not carry them.
type LineReporter interface {
	LineReadings() []float64
}

// Demo generates plausible telemetry without hardware. IR and line readings
// random walk in [0, 1024] and the heading drifts; lines alternate between
// infra and gyro and go through the normal parser.
type Demo struct {
	rng    *rand.Rand
	parser *Parser

	ir      []float64
	line    []float64
	heading float64
	next    int
}

var _ LineReporter = (*Demo)(nil)

// NewDemo creates a demo source with a fixed seed
func NewDemo(seed int64, parser *Parser) *Demo {
	if parser == nil {
		parser = NewParser()
	}
	d := &Demo{
		rng:    rand.New(rand.NewSource(seed)),
		parser: parser,
		ir:     make([]float64, IRCount),
		line:   make([]float64, LineCount),
	}
	for i := range d.line {
		d.line[i] = float64(d.rng.Intn(1025))
	}
	return d
}

func (d *Demo) step() {
	for i := range d.ir {
		d.ir[i] = clamp(d.ir[i]+float64(d.rng.Intn(81)-40), 0, 1024)
	}
	for i := range d.line {
		d.line[i] = clamp(d.line[i]+float64(d.rng.Intn(81)-40), 0, 1024)
	}
	d.heading += float64(d.rng.Intn(7) - 3)
	for d.heading > 180 {
		d.heading -= 360
	}
	for d.heading <= -180 {
		d.heading += 360
	}
}

// ReadRaw returns the next generated line
func (d *Demo) ReadRaw() (string, error) {
	d.next++
	if d.next%2 == 1 {
		d.step()
		return Format(TagInfra, d.ir), nil
	}
	return Format(TagGyro, []float64{d.heading}), nil
}

// ReadLine returns the next generated record
func (d *Demo) ReadLine() (Record, error) {
	line, err := d.ReadRaw()
	if err != nil {
		return nil, err
	}
	return d.parser.Parse(line)
}

// LineReadings returns a copy of the current line sensor readings
func (d *Demo) LineReadings() []float64 {
	out := make([]float64, len(d.line))
	copy(out, d.line)
	return out
}

// Reconnect does nothing for the demo source
func (d *Demo) Reconnect() {}

// Close does nothing for the demo source
func (d *Demo) Close() error { return nil }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
