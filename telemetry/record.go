// Package telemetry reads sensor lines from the robot and turns them into typed records.
package telemetry

// Known tags
const (
	TagInfra = "infra"
	TagGyro  = "gyro"
)

// Sensor ring sizes on the robot
const (
	IRCount   = 24
	LineCount = 24
)

// Kind identifies a record variant
type Kind int

const (
	KindUnknown Kind = iota
	KindInfra
	KindGyro
)

func (k Kind) String() string {
	switch k {
	case KindInfra:
		return TagInfra
	case KindGyro:
		return TagGyro
	default:
		return "unknown"
	}
}

// Record is one parsed telemetry line. The concrete type is one of
// Infra, Gyro or Unknown.
type Record interface {
	Kind() Kind
	record()
}

// Infra carries the raw infrared readings
type Infra struct {
	Values []float64
}

// Gyro carries the robot heading in degrees
type Gyro struct {
	Heading float64
}

// Unknown is a well-formed line with a tag nobody handles
type Unknown struct {
	Tag    string
	Values []float64
}

func (Infra) Kind() Kind   { return KindInfra }
func (Gyro) Kind() Kind    { return KindGyro }
func (Unknown) Kind() Kind { return KindUnknown }

func (Infra) record()   {}
func (Gyro) record()    {}
func (Unknown) record() {}
