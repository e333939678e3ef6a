package main

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"radian-view/geom"
	"radian-view/monitor"
)

// Goal size in centimeters
const (
	goalWidthCM = 70
	goalDepthCM = 25
)

// FieldView draws the top-down field and the robot position estimated from
// the four TOF readings. It occupies the left half of the window.
type FieldView struct {
	labels *Labels
}

// NewFieldView creates the field view
func NewFieldView(labels *Labels) *FieldView {
	return &FieldView{labels: labels}
}

// Draw renders the field view
func (v *FieldView) Draw(screen *ebiten.Image, layout geom.Layout, s monitor.FieldState) {
	vp := layout.Viewport
	tr := layout.Field
	f := s.Field
	w, h := tr.FieldSize()

	vector.DrawFilledRect(screen, 0, 0, float32(vp.W/2), float32(vp.H), colorDarkBlack, false)

	// Field
	ox, oy := tr.FieldToScreen(0, 0)
	vector.DrawFilledRect(screen, float32(ox), float32(oy), float32(w), float32(h), colorGreen, false)

	// Border
	bx, by := tr.FieldToScreen(f.Padding, f.Padding)
	vector.StrokeRect(screen, float32(bx), float32(by),
		float32(w-tr.ScaleX(2*f.Padding)), float32(h-tr.ScaleY(2*f.Padding)), 3, colorGray, false)

	// Goals
	goalX := (f.Width - goalWidthCM) / 2
	for _, gy := range []float64{f.Padding, f.Height - goalDepthCM - f.Padding} {
		gx, sy := tr.FieldToScreen(goalX, gy)
		vector.StrokeRect(screen, float32(gx), float32(sy),
			float32(tr.ScaleX(goalWidthCM)), float32(tr.ScaleY(goalDepthCM)), 3, colorGray, false)
	}

	// Range the robot can be in given the TOF readings
	tlx, tly := tr.FieldToScreen(s.TOFLeft, s.TOFFront)
	brx, bry := tr.FieldToScreen(f.Width-s.TOFRight, f.Height-s.TOFBack)
	vector.StrokeRect(screen, float32(tlx), float32(tly), float32(brx-tlx), float32(bry-tly), 3, colorBlack, false)

	// TOF rays to the walls
	midX := s.TOFLeft + math.Floor((f.Width-s.TOFLeft-s.TOFRight)/2)
	midY := s.TOFFront + math.Floor((f.Height-s.TOFFront-s.TOFBack)/2)
	rays := [][4]float64{
		{midX, 0, midX, s.TOFFront},
		{midX, f.Height - s.TOFBack, midX, f.Height},
		{0, midY, s.TOFLeft, midY},
		{f.Width, midY, f.Width - s.TOFRight, midY},
	}
	for _, r := range rays {
		x0, y0 := tr.FieldToScreen(r[0], r[1])
		x1, y1 := tr.FieldToScreen(r[2], r[3])
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 3, colorBlack, false)
	}

	// TOF readouts
	front := fmt.Sprintf("%g cm", s.TOFFront)
	back := fmt.Sprintf("%g cm", s.TOFBack)
	left := fmt.Sprintf("%g cm", s.TOFLeft)
	right := fmt.Sprintf("%g cm", s.TOFRight)
	quarter := float64(vp.W / 4)
	v.labels.Draw(screen, front, quarter-float64(textWidth(front)/2), 10, colorWhite)
	v.labels.Draw(screen, back, quarter-float64(textWidth(back)/2), float64(vp.H-40), colorWhite)
	v.labels.DrawVertical(screen, left, 10, float64(vp.H/2-textWidth(left)/2), colorWhite)
	v.labels.DrawVertical(screen, right, float64(vp.W/2-40), float64(vp.H/2-textWidth(right)/2), colorWhite)

	// Estimated position and heading
	est := geom.Point{X: math.Floor((tlx + brx) / 2), Y: math.Floor((tly + bry) / 2)}
	vector.DrawFilledCircle(screen, float32(est.X), float32(est.Y), 5, colorWhite, true)
	drawRotatedPolygon(screen, colorWhite, est, geom.ArrowPoints, -s.Heading, 3)
}
