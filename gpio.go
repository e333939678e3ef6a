package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// GPIO button assignments (BCM numbering)
const (
	gpioBtnReconnect = 17 // Pin 11
	gpioBtnHelp      = 27 // Pin 13
	gpioBtnQuit      = 22 // Pin 15
)

const gpioSysfs = "/sys/class/gpio"

// GPIOButton represents a single active-low GPIO button
type GPIOButton struct {
	pin        int
	name       string
	lastState  bool
	lastChange time.Time
}

// GPIOController polls panel buttons on a Raspberry Pi. Presses are queued
// for the frame loop, which drains them with Pressed.
type GPIOController struct {
	root     string
	debounce time.Duration
	buttons  []*GPIOButton
	presses  chan string

	enabled  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewGPIOController creates a controller over the sysfs GPIO tree
func NewGPIOController() *GPIOController {
	return newGPIOController(gpioSysfs)
}

func newGPIOController(root string) *GPIOController {
	return &GPIOController{
		root:     root,
		debounce: 50 * time.Millisecond,
		presses:  make(chan string, 8),
		stopChan: make(chan struct{}),
	}
}

// AddButton adds a GPIO button
func (g *GPIOController) AddButton(pin int, name string) {
	g.buttons = append(g.buttons, &GPIOButton{pin: pin, name: name})
}

// SetupDefaultButtons configures the panel buttons
func (g *GPIOController) SetupDefaultButtons() {
	g.AddButton(gpioBtnReconnect, "RECON")
	g.AddButton(gpioBtnHelp, "HELP")
	g.AddButton(gpioBtnQuit, "QUIT")
}

// Start begins polling GPIO pins. Without a GPIO tree it does nothing.
func (g *GPIOController) Start() error {
	if _, err := os.Stat(g.root); os.IsNotExist(err) {
		log.Println("GPIO not available (not running on Pi?) - GPIO buttons disabled")
		return nil
	}

	for _, btn := range g.buttons {
		if err := g.exportPin(btn.pin); err != nil {
			log.Printf("Warning: Could not export GPIO %d: %v", btn.pin, err)
			continue
		}
		if err := g.setDirection(btn.pin, "in"); err != nil {
			log.Printf("Warning: Could not set GPIO %d direction: %v", btn.pin, err)
		}
	}

	g.enabled = true
	g.wg.Add(1)
	go g.pollLoop()
	log.Println("GPIO controller started")
	return nil
}

// Stop stops the GPIO polling
func (g *GPIOController) Stop() {
	if !g.enabled {
		return
	}
	close(g.stopChan)
	g.wg.Wait()
	g.enabled = false

	for _, btn := range g.buttons {
		g.unexportPin(btn.pin)
	}
}

// Pressed returns the buttons pressed since the last call
func (g *GPIOController) Pressed() []string {
	var names []string
	for {
		select {
		case name := <-g.presses:
			names = append(names, name)
		default:
			return names
		}
	}
}

func (g *GPIOController) pollLoop() {
	defer g.wg.Done()
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.pollButtons()
		}
	}
}

func (g *GPIOController) pollButtons() {
	now := time.Now()

	for _, btn := range g.buttons {
		value, err := g.readPin(btn.pin)
		if err != nil {
			continue
		}

		// Active low: pressed when value is 0
		pressed := value == 0
		if pressed == btn.lastState || now.Sub(btn.lastChange) < g.debounce {
			continue
		}
		btn.lastState = pressed
		btn.lastChange = now

		// Trigger on press, not release
		if pressed {
			select {
			case g.presses <- btn.name:
			default:
			}
		}
	}
}

// GPIO sysfs helpers

func (g *GPIOController) pinPath(pin int, file string) string {
	return filepath.Join(g.root, fmt.Sprintf("gpio%d", pin), file)
}

func (g *GPIOController) exportPin(pin int) error {
	if _, err := os.Stat(filepath.Dir(g.pinPath(pin, "value"))); err == nil {
		return nil // Already exported
	}
	f, err := os.OpenFile(filepath.Join(g.root, "export"), os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString(strconv.Itoa(pin)); err != nil {
		return err
	}

	// Wait for sysfs to create the pin directory
	time.Sleep(100 * time.Millisecond)
	return nil
}

func (g *GPIOController) unexportPin(pin int) error {
	f, err := os.OpenFile(filepath.Join(g.root, "unexport"), os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(strconv.Itoa(pin))
	return err
}

func (g *GPIOController) setDirection(pin int, direction string) error {
	return os.WriteFile(g.pinPath(pin, "direction"), []byte(direction), 0644)
}

func (g *GPIOController) readPin(pin int) (int, error) {
	f, err := os.Open(g.pinPath(pin, "value"))
	if err != nil {
		return -1, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		if scanner.Text() == "0" {
			return 0, nil
		}
		return 1, nil
	}
	return -1, fmt.Errorf("could not read GPIO %d value", pin)
}
