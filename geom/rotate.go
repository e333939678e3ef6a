package geom

import "math"

// Point is a 2D point in screen space
type Point struct {
	X, Y float64
}

// Add returns p translated by q
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Centroid returns the unweighted mean of the vertices.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var c Point
	for _, p := range points {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(points))
	return Point{c.X / n, c.Y / n}
}

// RotatePoint rotates p about ref by angle degrees. The angle is negated
// before the standard rotation is applied. The result is relative to ref.
func RotatePoint(p Point, angle float64, ref Point) Point {
	theta := -angle * math.Pi / 180
	x := p.X - ref.X
	y := p.Y - ref.Y
	sin, cos := math.Sincos(theta)
	return Point{
		X: x*cos - y*sin,
		Y: x*sin + y*cos,
	}
}

// RotatePolygon rotates the vertices about their centroid and translates them by offset.
func RotatePolygon(points []Point, angle float64, offset Point) []Point {
	c := Centroid(points)
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = RotatePoint(p, angle, c).Add(offset)
	}
	return out
}

// Scaled returns a copy of the shape with every coordinate multiplied by k
func Scaled(points []Point, k float64) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{p.X * k, p.Y * k}
	}
	return out
}

var arrowOutline = []Point{
	{0, 0},
	{5, 5},
	{3, 5},
	{3, 10},
	{-3, 10},
	{-3, 5},
	{-5, 5},
	{0, 0},
}

// Heading arrows drawn on the field and robot views
var (
	ArrowPoints   = Scaled(arrowOutline, 5)
	LgArrowPoints = Scaled(arrowOutline, 10)
	ChevronPoints = []Point{
		{-10, 10},
		{0, 0},
		{10, 10},
	}
)
