package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// TouchButton represents an on-screen touch button
type TouchButton struct {
	X, Y, W, H int
	Label      string
	Active     bool // Toggle state for toggle buttons
	OnPress    func()
}

func (b *TouchButton) contains(x, y int) bool {
	return x >= b.X && x <= b.X+b.W && y >= b.Y && y <= b.Y+b.H
}

// TouchControls manages touch UI elements
type TouchControls struct {
	buttons  []*TouchButton
	screenW  int
	screenH  int
	btnColor color.RGBA
	actColor color.RGBA
	txtColor color.RGBA
}

// NewTouchControls creates touch control manager
func NewTouchControls() *TouchControls {
	return &TouchControls{
		btnColor: color.RGBA{60, 60, 60, 200},
		actColor: color.RGBA{0, 133, 113, 200},
		txtColor: colorWhite,
	}
}

// AddButton adds a touch button. Buttons are placed by UpdateLayout.
func (tc *TouchControls) AddButton(label string, onPress func()) *TouchButton {
	btn := &TouchButton{W: 60, H: 36, Label: label, OnPress: onPress}
	tc.buttons = append(tc.buttons, btn)
	tc.screenW, tc.screenH = 0, 0
	return btn
}

// Update checks for touch/click events
func (tc *TouchControls) Update() {
	// Handle mouse clicks
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		tc.Press(ebiten.CursorPosition())
	}

	// Handle touch
	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		tc.Press(ebiten.TouchPosition(id))
	}
}

// Press fires the first button under (x, y) and reports whether one was hit.
func (tc *TouchControls) Press(x, y int) bool {
	for _, btn := range tc.buttons {
		if btn.contains(x, y) {
			if btn.OnPress != nil {
				btn.OnPress()
			}
			return true
		}
	}
	return false
}

// Draw renders all touch buttons
func (tc *TouchControls) Draw(screen *ebiten.Image) {
	for _, btn := range tc.buttons {
		bgColor := tc.btnColor
		if btn.Active {
			bgColor = tc.actColor
		}
		vector.DrawFilledRect(screen, float32(btn.X), float32(btn.Y), float32(btn.W), float32(btn.H), bgColor, true)
		vector.StrokeRect(screen, float32(btn.X), float32(btn.Y), float32(btn.W), float32(btn.H), 2, tc.txtColor, true)

		labelX := btn.X + btn.W/2 - len(btn.Label)*glyphW/2
		labelY := btn.Y + btn.H/2 - 8
		ebitenutil.DebugPrintAt(screen, btn.Label, labelX, labelY)
	}
}

// UpdateLayout stacks the buttons in a row along the bottom right corner,
// above the status bar.
func (tc *TouchControls) UpdateLayout(screenW, screenH int) {
	if tc.screenW == screenW && tc.screenH == screenH {
		return // No change
	}
	tc.screenW = screenW
	tc.screenH = screenH

	margin := 5
	x := screenW - margin
	for i := len(tc.buttons) - 1; i >= 0; i-- {
		btn := tc.buttons[i]
		x -= btn.W
		btn.X, btn.Y = x, screenH-btn.H-30
		x -= margin
	}
}

// SetupDefaultButtons creates the standard control buttons
func (tc *TouchControls) SetupDefaultButtons(app *App) {
	for _, label := range []string{"RECON", "HELP", "FULL", "QUIT"} {
		tc.AddButton(label, func() { app.pressButton(label) })
	}
}

// UpdateButtonStates updates active states based on app state
func (tc *TouchControls) UpdateButtonStates(app *App) {
	for _, btn := range tc.buttons {
		if btn.Label == "HELP" {
			btn.Active = app.showHelp
		}
	}
}
