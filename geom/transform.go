// Package geom holds the pure layout math shared by the field and robot views.
package geom

import "math"

// Field dimensions and margins
const (
	FieldWidthCM   = 182.0
	FieldHeightCM  = 243.0
	FieldPaddingCM = 25.0
	FieldMarginPx  = 50
)

// Field describes the playing surface in centimeters
type Field struct {
	Width   float64
	Height  float64
	Padding float64
}

// DefaultField returns the competition field
func DefaultField() Field {
	return Field{
		Width:   FieldWidthCM,
		Height:  FieldHeightCM,
		Padding: FieldPaddingCM,
	}
}

// Viewport is the window size in pixels
type Viewport struct {
	W, H int
}

// MinViewport is the smallest viewport for which the field has a positive size.
var MinViewport = Viewport{W: 4*FieldMarginPx + 2, H: 2*FieldMarginPx + 1}

// Transform maps field centimeters into the left half of a viewport.
type Transform struct {
	Field    Field
	Viewport Viewport
	Margin   int
}

// NewTransform creates a transform with the default margin
func NewTransform(field Field, vp Viewport) Transform {
	return Transform{Field: field, Viewport: vp, Margin: FieldMarginPx}
}

// FieldSize returns the on-screen field size in pixels, keeping the aspect ratio.
func (t Transform) FieldSize() (float64, float64) {
	w := float64(t.Viewport.W/2 - t.Margin*2)
	h := float64(t.Viewport.H - t.Margin*2)
	if w <= 0 || h <= 0 || t.Field.Width <= 0 || t.Field.Height <= 0 {
		return 0, 0
	}
	return math.Min(w, h*t.Field.Width/t.Field.Height), math.Min(h, w*t.Field.Height/t.Field.Width)
}

// Origin returns the screen position of the field's top-left corner
func (t Transform) Origin() (float64, float64) {
	w, h := t.FieldSize()
	return math.Floor((float64(t.Viewport.W/2) - w) / 2), math.Floor((float64(t.Viewport.H) - h) / 2)
}

// FieldToScreen converts a point in centimeters to pixels
func (t Transform) FieldToScreen(x, y float64) (float64, float64) {
	w, h := t.FieldSize()
	ox, oy := t.Origin()
	if w == 0 || h == 0 {
		return ox, oy
	}
	return ox + x*w/t.Field.Width, oy + y*h/t.Field.Height
}

// ScaleX converts a horizontal length in centimeters to pixels
func (t Transform) ScaleX(cm float64) float64 {
	w, _ := t.FieldSize()
	if t.Field.Width == 0 {
		return 0
	}
	return cm * w / t.Field.Width
}

// ScaleY converts a vertical length in centimeters to pixels
func (t Transform) ScaleY(cm float64) float64 {
	_, h := t.FieldSize()
	if t.Field.Height == 0 {
		return 0
	}
	return cm * h / t.Field.Height
}
