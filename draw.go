package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"radian-view/geom"
)

// Palette
var (
	colorBlack     = color.RGBA{42, 43, 46, 255}
	colorDarkBlack = color.RGBA{37, 35, 35, 255}
	colorWhite     = color.RGBA{255, 255, 255, 255}
	colorRed       = color.RGBA{230, 16, 80, 255}
	colorGreen     = color.RGBA{0, 133, 113, 255}
	colorBlue      = color.RGBA{7, 195, 224, 255}
	colorGray      = color.RGBA{128, 168, 128, 255}
	colorGrey      = color.RGBA{84, 84, 84, 255}
)

// Debug font metrics
const (
	glyphW = 6
	glyphH = 16
)

var emptyImage = func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img
}()

func textWidth(s string) int {
	return len(s) * glyphW
}

// fillPolygon draws a filled polygon
func fillPolygon(screen *ebiten.Image, pts []geom.Point, clr color.RGBA) {
	if len(pts) < 3 {
		return
	}
	path := vector.Path{}
	path.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		path.LineTo(float32(p.X), float32(p.Y))
	}
	path.Close()

	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	r, g, b, a := clr.RGBA()
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = float32(r) / 0xffff
		vs[i].ColorG = float32(g) / 0xffff
		vs[i].ColorB = float32(b) / 0xffff
		vs[i].ColorA = float32(a) / 0xffff
	}

	op := &ebiten.DrawTrianglesOptions{}
	op.AntiAlias = true
	screen.DrawTriangles(vs, is, emptyImage, op)
}

// strokePolygon draws a closed outline
func strokePolygon(screen *ebiten.Image, pts []geom.Point, width float32, clr color.RGBA) {
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		vector.StrokeLine(screen, float32(p.X), float32(p.Y), float32(q.X), float32(q.Y), width, clr, true)
	}
}

// drawRotatedPolygon rotates a shape about its centroid, moves it to at and
// draws it. A zero stroke fills the shape.
func drawRotatedPolygon(screen *ebiten.Image, clr color.RGBA, at geom.Point, shape []geom.Point, angle float64, stroke float32) {
	pts := geom.RotatePolygon(shape, angle, at)
	if stroke == 0 {
		fillPolygon(screen, pts, clr)
		return
	}
	strokePolygon(screen, pts, stroke, clr)
}

func strokeSegment(screen *ebiten.Image, a, b geom.Point, width float32, clr color.RGBA) {
	vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), width, clr, true)
}

// Labels renders colored and rotated debug text, caching one image per string.
type Labels struct {
	cache map[string]*ebiten.Image
}

// NewLabels creates an empty label cache
func NewLabels() *Labels {
	return &Labels{cache: make(map[string]*ebiten.Image)}
}

func (l *Labels) image(s string) *ebiten.Image {
	if img, ok := l.cache[s]; ok {
		return img
	}
	if len(l.cache) > 256 {
		for k, img := range l.cache {
			img.Deallocate()
			delete(l.cache, k)
		}
	}
	w := textWidth(s)
	if w == 0 {
		w = 1
	}
	img := ebiten.NewImage(w, glyphH)
	ebitenutil.DebugPrint(img, s)
	l.cache[s] = img
	return img
}

// Draw prints s with its top-left corner at (x, y)
func (l *Labels) Draw(screen *ebiten.Image, s string, x, y float64, clr color.RGBA) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	screen.DrawImage(l.image(s), op)
}

// DrawCentered prints s centered on (x, y)
func (l *Labels) DrawCentered(screen *ebiten.Image, s string, x, y float64, clr color.RGBA) {
	l.Draw(screen, s, x-float64(textWidth(s)/2), y-glyphH/2, clr)
}

// DrawVertical prints s rotated a quarter turn counterclockwise, with the
// rotated text's top-left corner at (x, y).
func (l *Labels) DrawVertical(screen *ebiten.Image, s string, x, y float64, clr color.RGBA) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Rotate(-math.Pi / 2)
	op.GeoM.Translate(x, y+float64(textWidth(s)))
	op.ColorScale.ScaleWithColor(clr)
	screen.DrawImage(l.image(s), op)
}
