// Package config loads go-circletrack configuration: built-in defaults,
// an optional YAML file, then environment overrides.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/teslashibe/go-circletrack/pkg/aim"
	"github.com/teslashibe/go-circletrack/pkg/capture"
	"github.com/teslashibe/go-circletrack/pkg/pipeline"
	"github.com/teslashibe/go-circletrack/pkg/tracking"
	"github.com/teslashibe/go-circletrack/pkg/vision"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Environment overrides.
const (
	EnvLogLevel      = "CIRCLETRACK_LOG_LEVEL"
	EnvDashboardPort = "CIRCLETRACK_DASHBOARD_PORT"
	EnvPreset        = "CIRCLETRACK_PRESET"
)

// DashboardConfig configures the read-only status server.
type DashboardConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`
}

// Addr returns host:port.
func (d DashboardConfig) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// Config is the complete runtime configuration.
type Config struct {
	LogLevel string `yaml:"log_level" json:"log_level"`

	// DetectScreen replaces the aim screen size with the primary display size
	DetectScreen bool `yaml:"detect_screen" json:"detect_screen"`

	// DryRun logs pointer movements instead of injecting them
	DryRun bool `yaml:"dry_run" json:"dry_run"`

	Capture   capture.SourceConfig  `yaml:"capture" json:"capture"`
	Color     vision.ColorRange     `yaml:"color" json:"color"`
	Detector  vision.DetectorConfig `yaml:"detector" json:"detector"`
	Tracking  tracking.Config       `yaml:"tracking" json:"tracking"`
	Aim       aim.Config            `yaml:"aim" json:"aim"`
	Pipeline  pipeline.Config       `yaml:"pipeline" json:"pipeline"`
	Dashboard DashboardConfig       `yaml:"dashboard" json:"dashboard"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		LogLevel:     "info",
		DetectScreen: true,
		Capture:      capture.DefaultSourceConfig(),
		Color:        vision.DefaultColorRange(),
		Detector:     vision.DefaultDetectorConfig(),
		Tracking:     tracking.DefaultConfig(),
		Aim:          aim.DefaultConfig(),
		Pipeline:     pipeline.DefaultConfig(),
		Dashboard: DashboardConfig{
			Host: "127.0.0.1",
			Port: 8090,
		},
	}
}

// Load reads a YAML file over the defaults. Fields missing from the file
// keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() error {
	c.LogLevel = envOr(EnvLogLevel, c.LogLevel)
	c.Aim.Preset = envOr(EnvPreset, c.Aim.Preset)

	if v := os.Getenv(EnvDashboardPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDashboardPort, err)
		}
		c.Dashboard.Port = port
	}
	return nil
}

// envOr returns the value of key, or def when it is unset.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Region returns the capture region centered on the configured screen.
func (c Config) Region() capture.Region {
	return capture.CenteredRegion(c.Aim.ScreenWidth, c.Aim.ScreenHeight, c.Aim.CaptureWidth, c.Aim.CaptureHeight)
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	var errs []error

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q: want debug, info, warn or error", c.LogLevel))
	}
	if c.Capture.FPS <= 0 {
		errs = append(errs, fmt.Errorf("capture.fps must be positive, got %d", c.Capture.FPS))
	}
	if err := c.Color.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("color: %w", err))
	}
	if c.Detector.MinRadius < 0 || c.Detector.MaxRadius < c.Detector.MinRadius {
		errs = append(errs, fmt.Errorf("detector radius range %d..%d", c.Detector.MinRadius, c.Detector.MaxRadius))
	}
	if c.Detector.DP <= 0 {
		errs = append(errs, fmt.Errorf("detector.dp must be positive, got %v", c.Detector.DP))
	}
	if c.Detector.MaxFPS <= 0 {
		errs = append(errs, fmt.Errorf("detector.max_fps must be positive, got %v", c.Detector.MaxFPS))
	}
	if err := c.Tracking.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracking: %w", err))
	}
	if err := c.Aim.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("aim: %w", err))
	}
	if err := c.Pipeline.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("pipeline: %w", err))
	}
	if c.Dashboard.Enabled && (c.Dashboard.Port <= 0 || c.Dashboard.Port > 65535) {
		errs = append(errs, fmt.Errorf("dashboard.port %d out of range", c.Dashboard.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
