package main

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radian-view/geom"
	"radian-view/telemetry"
)

func TestTouchControls_LayoutRightAligned(t *testing.T) {
	tc := NewTouchControls()
	tc.AddButton("A", nil)
	tc.AddButton("B", nil)
	tc.UpdateLayout(800, 600)

	require.Len(t, tc.buttons, 2)
	a, b := tc.buttons[0], tc.buttons[1]
	assert.Equal(t, 800-5-b.W, b.X)
	assert.Equal(t, b.X-5-a.W, a.X)
	assert.Equal(t, 600-b.H-30, b.Y)
	assert.Equal(t, a.Y, b.Y)
}

func TestTouchControls_PressHitsButton(t *testing.T) {
	tc := NewTouchControls()
	pressed := ""
	tc.AddButton("A", func() { pressed = "A" })
	tc.AddButton("B", func() { pressed = "B" })
	tc.UpdateLayout(800, 600)

	b := tc.buttons[1]
	assert.True(t, tc.Press(b.X+1, b.Y+1))
	assert.Equal(t, "B", pressed)

	pressed = ""
	assert.False(t, tc.Press(0, 0))
	assert.Empty(t, pressed)
}

func TestTouchControls_RelayoutOnResize(t *testing.T) {
	tc := NewTouchControls()
	tc.AddButton("A", nil)
	tc.UpdateLayout(800, 600)
	x := tc.buttons[0].X

	tc.UpdateLayout(1024, 600)
	assert.Equal(t, x+224, tc.buttons[0].X)
}

func TestDim(t *testing.T) {
	c := color.RGBA{200, 100, 50, 255}
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, dim(c, 0))
	assert.Equal(t, c, dim(c, 1))
	assert.Equal(t, color.RGBA{100, 50, 25, 255}, dim(c, 0.5))
	assert.Equal(t, c, dim(c, 3), "clamped above")
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, dim(c, -1), "clamped below")
}

func TestTextWidth(t *testing.T) {
	assert.Equal(t, 0, textWidth(""))
	assert.Equal(t, 6*len("100 cm"), textWidth("100 cm"))
}

type countingSource struct {
	reconnects int
}

func (s *countingSource) ReadLine() (telemetry.Record, error) { return nil, telemetry.ErrNoData }
func (s *countingSource) Reconnect()                          { s.reconnects++ }
func (s *countingSource) Close() error                        { return nil }

func TestApp_PressButton(t *testing.T) {
	src := &countingSource{}
	app := NewApp(src, "test", geom.DefaultField(), geom.DefaultRobotRadiusPct, 800, 600, false)

	app.pressButton("RECON")
	assert.Equal(t, 1, src.reconnects)

	app.pressButton("HELP")
	assert.True(t, app.showHelp)
	app.pressButton("HELP")
	assert.False(t, app.showHelp)

	app.pressButton("QUIT")
	assert.True(t, app.quit)
}

func TestApp_TouchButtonsShareActions(t *testing.T) {
	src := &countingSource{}
	app := NewApp(src, "test", geom.DefaultField(), geom.DefaultRobotRadiusPct, 800, 600, false)
	app.touchControls.UpdateLayout(800, 600)

	recon := app.touchControls.buttons[0]
	require.Equal(t, "RECON", recon.Label)
	assert.True(t, app.touchControls.Press(recon.X+1, recon.Y+1))
	assert.Equal(t, 1, src.reconnects)
}
