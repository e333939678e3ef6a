// Package config loads the dashboard settings file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"radian-view/geom"
	"radian-view/telemetry"
)

// Config is the root of the settings file. Omitted fields keep their defaults.
type Config struct {
	Field  FieldConfig               `json:"field"`
	Serial SerialConfig              `json:"serial"`
	Window WindowConfig              `json:"window"`
	Rules  map[string]telemetry.Rule `json:"rules,omitempty"`
}

// FieldConfig describes the field in centimeters
type FieldConfig struct {
	WidthCM   float64 `json:"width_cm"`
	HeightCM  float64 `json:"height_cm"`
	PaddingCM float64 `json:"padding_cm"`
}

// SerialConfig describes the robot link
type SerialConfig struct {
	Port        string `json:"port,omitempty"`
	BaudRate    int    `json:"baud_rate"`
	ReadTimeout string `json:"read_timeout"` // duration string like "100ms"
}

// WindowConfig describes the initial window
type WindowConfig struct {
	Width          int  `json:"width"`
	Height         int  `json:"height"`
	RobotRadiusPct int  `json:"robot_radius_pct"`
	Fullscreen     bool `json:"fullscreen"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Field: FieldConfig{
			WidthCM:   geom.FieldWidthCM,
			HeightCM:  geom.FieldHeightCM,
			PaddingCM: geom.FieldPaddingCM,
		},
		Serial: SerialConfig{
			BaudRate:    telemetry.DefaultBaudRate,
			ReadTimeout: telemetry.DefaultReadTimeout.String(),
		},
		Window: WindowConfig{
			Width:          800,
			Height:         600,
			RobotRadiusPct: geom.DefaultRobotRadiusPct,
		},
		Rules: telemetry.DefaultRules(),
	}
}

// Load reads a JSON settings file on top of the defaults.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 64 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	// rules in the file replace the defaults tag by tag
	var raw struct {
		Field  *FieldConfig              `json:"field"`
		Serial *SerialConfig             `json:"serial"`
		Window *WindowConfig             `json:"window"`
		Rules  map[string]telemetry.Rule `json:"rules"`
	}
	raw.Field, raw.Serial, raw.Window = &cfg.Field, &cfg.Serial, &cfg.Window
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	for tag, r := range raw.Rules {
		cfg.Rules[tag] = r
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings for values the dashboard cannot use
func (c *Config) Validate() error {
	if c.Field.WidthCM <= 0 || c.Field.HeightCM <= 0 {
		return fmt.Errorf("field size must be positive, got %gx%g cm", c.Field.WidthCM, c.Field.HeightCM)
	}
	if c.Field.PaddingCM < 0 || 2*c.Field.PaddingCM >= c.Field.WidthCM || 2*c.Field.PaddingCM >= c.Field.HeightCM {
		return fmt.Errorf("field padding %g cm does not fit the field", c.Field.PaddingCM)
	}
	if c.Serial.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Serial.BaudRate)
	}
	if _, err := c.ReadTimeout(); err != nil {
		return err
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.RobotRadiusPct <= 2 || c.Window.RobotRadiusPct >= 25 {
		return fmt.Errorf("robot radius %d%% out of range (3-24)", c.Window.RobotRadiusPct)
	}
	for tag, r := range c.Rules {
		if r.Count <= 0 {
			return fmt.Errorf("rule for %q needs a positive count", tag)
		}
	}
	return nil
}

// ReadTimeout parses the serial read timeout
func (c *Config) ReadTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Serial.ReadTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid read_timeout %q: %w", c.Serial.ReadTimeout, err)
	}
	if d <= 0 || d > 5*time.Second {
		return 0, fmt.Errorf("read_timeout %s out of range (0-5s]", d)
	}
	return d, nil
}

// GeomField returns the field description used for layout
func (c *Config) GeomField() geom.Field {
	return geom.Field{
		Width:   c.Field.WidthCM,
		Height:  c.Field.HeightCM,
		Padding: c.Field.PaddingCM,
	}
}

// Parser returns a parser with the configured count rules
func (c *Config) Parser() *telemetry.Parser {
	rules := make(map[string]telemetry.Rule, len(c.Rules))
	for tag, r := range c.Rules {
		rules[tag] = r
	}
	return &telemetry.Parser{Rules: rules}
}

// SerialLink returns the serial adapter settings
func (c *Config) SerialLink() telemetry.SerialConfig {
	timeout, _ := c.ReadTimeout()
	return telemetry.SerialConfig{
		Port:        c.Serial.Port,
		BaudRate:    c.Serial.BaudRate,
		ReadTimeout: timeout,
	}
}
