package main

import (
	"image/color"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"radian-view/geom"
	"radian-view/monitor"
)

const (
	lineSensorRadius = 15
	lineFullScale    = 1024
)

// RobotView draws the robot-centric sensor rings on the right half.
type RobotView struct {
	labels *Labels
}

// NewRobotView creates the robot view
func NewRobotView(labels *Labels) *RobotView {
	return &RobotView{labels: labels}
}

// Draw renders the robot view
func (v *RobotView) Draw(screen *ebiten.Image, layout geom.Layout, s monitor.RobotState) {
	c := layout.RobotCenter

	// Shell
	vector.StrokeCircle(screen, float32(c.X), float32(c.Y), float32(layout.RobotRadius), 2, colorWhite, true)

	v.drawLineSensors(screen, layout, s.Line)
	v.drawIR(screen, layout, s.IR)
	v.drawGate(screen, layout, s.Gate)

	// Gyro
	drawRotatedPolygon(screen, colorRed, c, geom.LgArrowPoints, s.Heading, 2)
	v.labels.DrawCentered(screen, strconv.FormatFloat(s.Heading, 'f', -1, 64), c.X, c.Y, colorRed)
}

func (v *RobotView) drawLineSensors(screen *ebiten.Image, layout geom.Layout, line []float64) {
	for i, value := range line {
		p := layout.LineSensor(i, len(line))
		vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), lineSensorRadius, dim(colorBlue, value/lineFullScale), true)
		vector.StrokeCircle(screen, float32(p.X), float32(p.Y), lineSensorRadius, 2, colorWhite, true)
	}
}

func (v *RobotView) drawIR(screen *ebiten.Image, layout geom.Layout, ir []float64) {
	ends := make([]geom.Point, 0, len(ir))
	for i, value := range ir {
		start, end := layout.IRRay(i, len(ir), value)
		strokeSegment(screen, start, end, 2, colorGrey)
		ends = append(ends, end)

		label := layout.IRLabel(i, len(ir))
		v.labels.DrawCentered(screen, strconv.Itoa(i), label.X, label.Y, colorWhite)
	}
	if len(ends) > 2 {
		strokePolygon(screen, ends, 2, colorGrey)
	}

	// Where the IR readings point on average
	heading, dist := layout.IREstimate(ir)
	if dist == 0 {
		return
	}
	from := layout.Along(heading, layout.RobotRadius)
	to := layout.Along(heading, layout.RobotRadius+dist)
	strokeSegment(screen, from, to, 2, colorWhite)
	drawRotatedPolygon(screen, colorWhite, to, geom.ChevronPoints, heading, 2)
}

func (v *RobotView) drawGate(screen *ebiten.Image, layout geom.Layout, blocked bool) {
	g := layout.Gate
	label, textColor := "Gate Open", colorWhite
	if blocked {
		vector.DrawFilledRect(screen, float32(g.X), float32(g.Y), float32(g.W), float32(g.H), colorGray, false)
		label, textColor = "Gate Blocked", colorBlack
	} else {
		vector.StrokeRect(screen, float32(g.X), float32(g.Y), float32(g.W), float32(g.H), 2, colorGray, false)
	}
	v.labels.DrawCentered(screen, label, g.X+g.W/2, g.Y+g.H/2, textColor)
}

// dim scales a color's channels by k in [0, 1]
func dim(c color.RGBA, k float64) color.RGBA {
	if k < 0 {
		k = 0
	}
	if k > 1 {
		k = 1
	}
	return color.RGBA{
		R: uint8(float64(c.R) * k),
		G: uint8(float64(c.G) * k),
		B: uint8(float64(c.B) * k),
		A: c.A,
	}
}
