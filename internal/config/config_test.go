package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/teslashibe/go-circletrack/pkg/aim"
	"github.com/teslashibe/go-circletrack/pkg/capture"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "circletrack.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Capture.FPS != 150 || cfg.Pipeline.FPS != 150 || cfg.Tracking.FPS != 150 || cfg.Detector.MaxFPS != 150 {
		t.Error("every stage should default to 150/s")
	}
	if cfg.Aim.Enabled {
		t.Error("assist should start disabled")
	}
	if cfg.Dashboard.Enabled {
		t.Error("dashboard should be opt-in")
	}
}

func TestLoad_OverridesAndKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
aim:
  preset: chest
  deadzone: 20
tracking:
  max_lost_frames: 8
detector:
  rate_window: 5s
color:
  lower: [100, 0, 100]
  upper: [255, 60, 255]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("log_level: got %q", cfg.LogLevel)
	}
	if cfg.Aim.Preset != aim.PresetChest || cfg.Aim.Deadzone != 20 {
		t.Errorf("aim: got %+v", cfg.Aim)
	}
	if cfg.Aim.SpeedX != 5 {
		t.Errorf("aim.speed_x default lost: got %v", cfg.Aim.SpeedX)
	}
	if cfg.Tracking.MaxLostFrames != 8 || cfg.Tracking.PatchSize != 30 {
		t.Errorf("tracking: got %+v", cfg.Tracking)
	}
	if cfg.Detector.RateWindow != 5*time.Second {
		t.Errorf("detector.rate_window: got %v", cfg.Detector.RateWindow)
	}
	if cfg.Color.Lower != [3]uint8{100, 0, 100} || cfg.Color.Upper != [3]uint8{255, 60, 255} {
		t.Errorf("color: got %+v", cfg.Color)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config invalid: %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: got %v, want ErrNotExist", err)
	}

	path := writeConfig(t, "aim: [not, a, map]\n")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvPreset, aim.PresetFeet)
	t.Setenv(EnvDashboardPort, "9100")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.LogLevel != "warn" || cfg.Aim.Preset != aim.PresetFeet || cfg.Dashboard.Port != 9100 {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.Dashboard.Addr() != "127.0.0.1:9100" {
		t.Errorf("addr: got %q", cfg.Dashboard.Addr())
	}
}

func TestApplyEnv_BadPort(t *testing.T) {
	t.Setenv(EnvDashboardPort, "eighty")

	cfg := Default()
	if err := cfg.ApplyEnv(); err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"capture fps", func(c *Config) { c.Capture.FPS = 0 }, "capture.fps"},
		{"color", func(c *Config) { c.Color.Lower[1] = 200 }, "color"},
		{"radius", func(c *Config) { c.Detector.MaxRadius = 1 }, "radius"},
		{"tracking", func(c *Config) { c.Tracking.MaxLostFrames = 0 }, "tracking"},
		{"detector fps off", func(c *Config) { c.Detector.MaxFPS = 0 }, "detector.max_fps"},
		{"detector fps negative", func(c *Config) { c.Detector.MaxFPS = -5 }, "detector.max_fps"},
		{"tracking fps off", func(c *Config) { c.Tracking.FPS = 0 }, "tracking: fps"},
		{"pipeline fps off", func(c *Config) { c.Pipeline.FPS = 0 }, "pipeline: fps"},
		{"pipeline fps negative", func(c *Config) { c.Pipeline.FPS = -1 }, "pipeline: fps"},
		{"preset", func(c *Config) { c.Aim.Preset = "knees" }, "knees"},
		{"dashboard port", func(c *Config) { c.Dashboard.Enabled = true; c.Dashboard.Port = 0 }, "dashboard.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("got %v, want ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"
	cfg.Capture.FPS = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"log_level", "capture.fps"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestRegion(t *testing.T) {
	cfg := Default()
	want := capture.Region{Left: 810, Top: 315, Right: 1110, Bottom: 765}
	if got := cfg.Region(); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}
