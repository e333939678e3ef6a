package main

import (
	"fmt"
	"image/color"
	"log"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"radian-view/geom"
	"radian-view/monitor"
	"radian-view/telemetry"
)

const windowTitle = "Radian 2023 Sensor View"

// App is the main application
type App struct {
	source     telemetry.Source
	sourceName string
	monitor    *monitor.Monitor

	labels        *Labels
	fieldView     *FieldView
	robotView     *RobotView
	touchControls *TouchControls
	gpio          *GPIOController
	layout        geom.Layout

	// View state
	width         int
	height        int
	fullscreen    bool
	showHelp      bool
	showTouchBtns bool
	useGPIO       bool
	quit          bool

	shutdownOnce sync.Once
}

// NewApp creates a new application reading from source
func NewApp(source telemetry.Source, sourceName string, field geom.Field, radiusPct, width, height int, fullscreen bool) *App {
	labels := NewLabels()
	app := &App{
		source:        source,
		sourceName:    sourceName,
		monitor:       monitor.New(source, monitor.NewState(field)),
		labels:        labels,
		fieldView:     NewFieldView(labels),
		robotView:     NewRobotView(labels),
		touchControls: NewTouchControls(),
		gpio:          NewGPIOController(),
		layout:        geom.NewLayout(field, geom.Viewport{W: width, H: height}, radiusPct),
		width:         width,
		height:        height,
		fullscreen:    fullscreen,
	}
	app.touchControls.SetupDefaultButtons(app)
	app.gpio.SetupDefaultButtons()
	return app
}

// Run starts the application
func (a *App) Run() error {
	ebiten.SetWindowSize(a.width, a.height)
	ebiten.SetWindowTitle(windowTitle)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)

	if a.fullscreen {
		ebiten.SetFullscreen(true)
	}

	// Panel buttons on a Raspberry Pi
	if a.useGPIO {
		if err := a.gpio.Start(); err != nil {
			log.Printf("GPIO controller error: %v", err)
		}
	}

	return ebiten.RunGame(a)
}

// Shutdown releases the telemetry source. Safe to call more than once.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(func() {
		a.gpio.Stop()
		if err := a.source.Close(); err != nil {
			telemetry.Logf("Close %s: %v", a.sourceName, err)
		}
	})
}

// Update handles input and pulls one record per frame
func (a *App) Update() error {
	// Handle touch input first
	if a.showTouchBtns {
		a.touchControls.UpdateLayout(a.width, a.height)
		a.touchControls.Update()
		a.touchControls.UpdateButtonStates(a)
	}

	for _, name := range a.gpio.Pressed() {
		a.pressButton(name)
	}

	a.handleKeyboard()
	if a.quit || ebiten.IsWindowBeingClosed() {
		a.Shutdown()
		return ebiten.Termination
	}

	a.syncLayout()
	a.monitor.Step()
	return nil
}

// Draw renders the application
func (a *App) Draw(screen *ebiten.Image) {
	a.syncLayout()
	screen.Fill(colorBlack)

	state := a.monitor.State()
	a.fieldView.Draw(screen, a.layout, state.Field)
	a.robotView.Draw(screen, a.layout, state.Robot)
	a.drawTitles(screen)

	if a.showTouchBtns {
		a.touchControls.Draw(screen)
	}
	if a.showHelp {
		a.drawHelp(screen)
	}
	a.drawStatusBar(screen)
}

// Layout tracks the window size; the screen is drawn at native resolution.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.width, a.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// pressButton runs the action of a touch or panel button
func (a *App) pressButton(name string) {
	switch name {
	case "RECON":
		a.source.Reconnect()
	case "HELP":
		a.showHelp = !a.showHelp
	case "FULL":
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	case "QUIT":
		a.quit = true
	}
}

// syncLayout recomputes pixel geometry when the window changed size
func (a *App) syncLayout() {
	if vp := (geom.Viewport{W: a.width, H: a.height}); vp != a.layout.Viewport {
		a.layout = a.layout.Resize(vp)
	}
}

func (a *App) handleKeyboard() {
	// Toggle help
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) || inpututil.IsKeyJustPressed(ebiten.KeySlash) {
		a.showHelp = !a.showHelp
	}

	// Fullscreen toggle
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}

	// Toggle touch buttons
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		a.showTouchBtns = !a.showTouchBtns
	}

	// Force a reconnect
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		a.source.Reconnect()
	}

	// Quit
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		a.quit = true
	}
}

func (a *App) drawTitles(screen *ebiten.Image) {
	const title = "Radian Sensor Monitor"
	a.labels.Draw(screen, title, float64(a.width/2-textWidth(title)/2), 10, colorWhite)
	a.labels.Draw(screen, "Field View", 20, 10, colorGrey)
	a.labels.Draw(screen, "Robot View", float64(a.width-textWidth("Robot View")-20), 10, colorGrey)
}

func (a *App) drawStatusBar(screen *ebiten.Image) {
	// Bottom status bar
	barH := 24
	barY := a.height - barH

	vector.DrawFilledRect(screen, 0, float32(barY), float32(a.width), float32(barH), color.RGBA{0, 0, 0, 200}, false)

	// Link indicator
	linkColor := color.RGBA{255, 200, 0, 255}
	switch a.monitor.Status() {
	case monitor.StatusOK:
		linkColor = color.RGBA{100, 255, 100, 255}
	case monitor.StatusSignalLost:
		linkColor = colorRed
	}
	vector.DrawFilledCircle(screen, 12, float32(barY+barH/2), 5, linkColor, true)

	age := "-"
	if t := a.monitor.LastUpdate(); !t.IsZero() {
		age = time.Since(t).Round(100 * time.Millisecond).String()
	}

	status := fmt.Sprintf("%s | Source: %s | Records: %d | Last: %s | Reconnects: %d | F1=Help",
		a.monitor.Status(), a.sourceName, a.monitor.Records(), age, a.monitor.Reconnects())
	ebitenutil.DebugPrintAt(screen, status, 24, barY+5)
}

func (a *App) drawHelp(screen *ebiten.Image) {
	help := []string{
		"=== " + windowTitle + " ===",
		"",
		"R       Reconnect",
		"T       Toggle touch buttons",
		"F11     Toggle fullscreen",
		"F1/?    Toggle this help",
		"Q/Esc   Quit",
	}

	panelW := 250
	panelH := len(help)*16 + 20
	panelX := 10
	panelY := 30

	vector.DrawFilledRect(screen, float32(panelX), float32(panelY), float32(panelW), float32(panelH), color.RGBA{0, 0, 0, 200}, false)

	y := panelY + 10
	for _, line := range help {
		ebitenutil.DebugPrintAt(screen, line, panelX+10, y)
		y += 16
	}
}
