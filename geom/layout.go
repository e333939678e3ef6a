package geom

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultRobotRadiusPct is the robot shell radius as a percentage of viewport width
const DefaultRobotRadiusPct = 10

// Rect is an axis-aligned rectangle in pixels
type Rect struct {
	X, Y, W, H float64
}

// Layout holds every viewport-dependent constant used by the two views.
// It is rebuilt on resize; the field dimensions it carries never change.
type Layout struct {
	Viewport  Viewport
	Field     Transform
	RadiusPct int

	RobotCenter Point
	RobotRadius float64
	LineRing    float64
	LabelRing   float64
	Gate        Rect
}

// NewLayout computes the layout for a viewport
func NewLayout(field Field, vp Viewport, radiusPct int) Layout {
	if radiusPct <= 0 {
		radiusPct = DefaultRobotRadiusPct
	}
	l := Layout{
		Viewport:  vp,
		Field:     NewTransform(field, vp),
		RadiusPct: radiusPct,
	}
	l.RobotCenter = Point{float64(vp.W * 3 / 4), float64(vp.H / 2)}
	l.RobotRadius = float64(radiusPct * vp.W / 100)
	l.LineRing = float64((radiusPct - 2) * vp.W / 100)
	l.LabelRing = float64((radiusPct + 2) * vp.W / 100)

	half := math.Floor(0.5 * float64(radiusPct*vp.W) / 100)
	l.Gate = Rect{
		X: l.RobotCenter.X - half,
		Y: float64(vp.H / 8),
		W: l.RobotRadius,
		H: half,
	}
	return l
}

// Resize returns a layout for the new viewport with the same field and robot sizing
func (l Layout) Resize(vp Viewport) Layout {
	return NewLayout(l.Field.Field, vp, l.RadiusPct)
}

// SensorAngle returns the mounting angle in degrees of sensor i out of n
func SensorAngle(i, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(i * 360 / n)
}

// LineSensor returns the screen position of line sensor i
func (l Layout) LineSensor(i, n int) Point {
	return RotatePoint(Point{0, -l.LineRing}, SensorAngle(i, n), Point{}).Add(l.RobotCenter)
}

// IRRay returns the start and end of the ray for IR sensor i reading v.
func (l Layout) IRRay(i, n int, v float64) (Point, Point) {
	angle := SensorAngle(i, n)
	length := math.Floor((float64(l.RadiusPct) + v/50) * float64(l.Viewport.W) / 100)
	start := RotatePoint(Point{l.RobotRadius, 0}, angle, Point{})
	end := RotatePoint(Point{length, 0}, angle, Point{})
	return start.Add(l.RobotCenter), end.Add(l.RobotCenter)
}

// IRLabel returns the center of the index label for IR sensor i
func (l Layout) IRLabel(i, n int) Point {
	return RotatePoint(Point{l.LabelRing, 0}, SensorAngle(i, n), Point{}).Add(l.RobotCenter)
}

// IREstimate averages the IR readings as vectors along their sensor
// directions. It returns the direction as a heading angle usable with
// RotatePolygon (0 points up) and the vector length in pixels.
func (l Layout) IREstimate(ir []float64) (float64, float64) {
	if len(ir) == 0 {
		return 0, 0
	}
	xs := make([]float64, len(ir))
	ys := make([]float64, len(ir))
	for i, v := range ir {
		p := RotatePoint(Point{v, 0}, SensorAngle(i, len(ir)), Point{})
		xs[i], ys[i] = p.X, p.Y
	}
	n := float64(len(ir))
	x, y := floats.Sum(xs)/n, floats.Sum(ys)/n
	dist := math.Hypot(x, y) / 100 * float64(l.Viewport.W) / 100
	if x == 0 && y == 0 {
		return 0, 0
	}
	return HeadingOf(Point{x, y}), dist
}

// HeadingOf returns the angle that rotates the up vector onto v
func HeadingOf(v Point) float64 {
	return math.Atan2(-v.X, -v.Y) * 180 / math.Pi
}

// Along returns the point at distance d from the robot center in the given heading
func (l Layout) Along(heading, d float64) Point {
	return RotatePoint(Point{0, -d}, heading, Point{}).Add(l.RobotCenter)
}
