package aim

import (
	"errors"
	"fmt"

	"github.com/teslashibe/go-circletrack/pkg/capture"
)

// Config holds actuator configuration.
type Config struct {
	// Screen geometry in pixels
	ScreenWidth  int `yaml:"screen_width" json:"screen_width"`
	ScreenHeight int `yaml:"screen_height" json:"screen_height"`

	// Capture region size; the region is centered on the screen
	CaptureWidth  int `yaml:"capture_width" json:"capture_width"`
	CaptureHeight int `yaml:"capture_height" json:"capture_height"`

	// Preset selects the vertical aim ratio (head, chest, belly, feet)
	Preset string `yaml:"preset" json:"preset"`

	// Movement per emitted step, per axis
	SpeedX float64 `yaml:"speed_x" json:"speed_x"`
	SpeedY float64 `yaml:"speed_y" json:"speed_y"`

	// Deadzone is the distance at or below which no movement is emitted
	Deadzone float64 `yaml:"deadzone" json:"deadzone"`

	// Enabled starts with assist on
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// DefaultConfig returns the reference actuator configuration for a 1920x1080 screen.
// Assist starts disabled.
func DefaultConfig() Config {
	return Config{
		ScreenWidth:   1920,
		ScreenHeight:  1080,
		CaptureWidth:  capture.DefaultWidth,
		CaptureHeight: capture.DefaultHeight,
		Preset:        PresetHead,
		SpeedX:        5,
		SpeedY:        5,
		Deadzone:      14,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	var errs []error

	if c.ScreenWidth <= 0 || c.ScreenHeight <= 0 {
		errs = append(errs, fmt.Errorf("screen size %dx%d must be positive", c.ScreenWidth, c.ScreenHeight))
	}
	if c.CaptureWidth <= 0 || c.CaptureHeight <= 0 {
		errs = append(errs, fmt.Errorf("capture size %dx%d must be positive", c.CaptureWidth, c.CaptureHeight))
	}
	if c.CaptureWidth > c.ScreenWidth || c.CaptureHeight > c.ScreenHeight {
		errs = append(errs, fmt.Errorf("capture %dx%d larger than screen %dx%d",
			c.CaptureWidth, c.CaptureHeight, c.ScreenWidth, c.ScreenHeight))
	}
	if _, err := Ratio(c.Preset); err != nil {
		errs = append(errs, err)
	}
	if c.SpeedX < 0 || c.SpeedY < 0 {
		errs = append(errs, fmt.Errorf("speed (%v, %v) must not be negative", c.SpeedX, c.SpeedY))
	}
	if c.Deadzone < 0 {
		errs = append(errs, fmt.Errorf("deadzone %v must not be negative", c.Deadzone))
	}

	return errors.Join(errs...)
}
