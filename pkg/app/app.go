// Package app wires capture, tracking, aiming and the optional console and
// dashboard into one runnable application.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/teslashibe/go-circletrack/internal/config"
	"github.com/teslashibe/go-circletrack/internal/log"
	"github.com/teslashibe/go-circletrack/pkg/aim"
	"github.com/teslashibe/go-circletrack/pkg/capture"
	"github.com/teslashibe/go-circletrack/pkg/dashboard"
	"github.com/teslashibe/go-circletrack/pkg/input"
	"github.com/teslashibe/go-circletrack/pkg/pipeline"
	"github.com/teslashibe/go-circletrack/pkg/tracking"
	"github.com/teslashibe/go-circletrack/pkg/vision"
)

// Options selects runtime collaborators. Zero values pick the real ones.
type Options struct {
	// Console enables the terminal key listener and status panel
	Console bool

	// Grabber replaces the screen grabber
	Grabber capture.Grabber

	// Mover replaces pointer injection
	Mover aim.Mover

	// Screen replaces the terminal screen used by the console
	Screen tcell.Screen
}

// App is the main application orchestrator.
// It manages all components and their lifecycle.
type App struct {
	config config.Config
	opts   Options

	// Pipeline stages
	source   *capture.Source
	finder   *vision.HoughFinder
	tracker  *tracking.Tracker
	actuator *aim.Actuator
	pipeline *pipeline.Pipeline

	// Outer surfaces
	console   *input.Console
	dashboard *dashboard.Server

	shutdownOnce sync.Once
}

// New validates cfg and creates an application.
func New(cfg config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &App{config: cfg, opts: opts}, nil
}

// Init builds every component.
// Call this after New() and before Run().
func (a *App) Init() error {
	if a.config.DetectScreen && a.opts.Grabber == nil {
		w, h, err := capture.DisplaySize()
		if err != nil {
			return fmt.Errorf("detect screen: %w", err)
		}
		a.config.Aim.ScreenWidth, a.config.Aim.ScreenHeight = w, h
		if err := a.config.Validate(); err != nil {
			return fmt.Errorf("config for %dx%d display: %w", w, h, err)
		}
	}

	region := a.config.Region()
	if err := region.Validate(a.config.Aim.ScreenWidth, a.config.Aim.ScreenHeight); err != nil {
		return err
	}

	grabber := a.opts.Grabber
	if grabber == nil {
		grabber = capture.NewScreenGrabber()
	}
	a.source = capture.NewSource(grabber, region, a.config.Capture)

	a.finder = vision.NewHoughFinder(a.config.Detector)
	a.tracker = tracking.New(a.config.Tracking, a.config.Color, a.finder)

	mover := a.opts.Mover
	switch {
	case mover != nil:
	case a.config.DryRun:
		mover = &aim.LogMover{}
	default:
		mover = aim.NewRobotMover()
	}
	a.actuator = aim.New(a.config.Aim, mover)

	a.pipeline = pipeline.New(a.config.Pipeline, a.source, a.tracker, a.actuator,
		pipeline.WithDetectRate(a.finder.Rate))

	if a.config.Dashboard.Enabled {
		a.dashboard = dashboard.NewServer(a.config.Dashboard.Addr(), a.pipeline.Stats, a.config)
	}

	if a.opts.Console {
		screen := a.opts.Screen
		if screen == nil {
			var err error
			if screen, err = input.OpenScreen(); err != nil {
				return fmt.Errorf("console: %w", err)
			}
		}
		a.console = input.NewConsole(screen, a.actuator, func() []string {
			return a.pipeline.Stats().Lines()
		})
	}

	log.Info("initialized",
		"region", region.String(),
		"screen", fmt.Sprintf("%dx%d", a.config.Aim.ScreenWidth, a.config.Aim.ScreenHeight),
		"preset", a.actuator.Preset(),
		"assist", a.actuator.Enabled(),
		"dry_run", a.config.DryRun,
		"run_id", a.pipeline.RunID(),
	)
	return nil
}

// Run starts capture and blocks in the tracking loop until ctx is
// cancelled, the console asks to quit, or the loop fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.source.Start(ctx); err != nil {
		return fmt.Errorf("capture: %w", err)
	}

	if a.dashboard != nil {
		a.dashboard.StartAsync(ctx)
	}
	if a.console != nil {
		go func() {
			a.console.Run(ctx)
			cancel()
		}()
	}

	return a.pipeline.Run(ctx)
}

// Stats returns the current pipeline stats.
func (a *App) Stats() pipeline.Stats {
	return a.pipeline.Stats()
}

// Actuator returns the pointer actuator.
func (a *App) Actuator() *aim.Actuator {
	return a.actuator
}

// Shutdown stops capture and releases every component. Safe to call more
// than once.
func (a *App) Shutdown() {
	a.shutdownOnce.Do(func() {
		if a.source != nil {
			if err := a.source.Stop(); err != nil {
				log.Warn("capture stop", "error", err)
			}
		}
		if a.console != nil {
			a.console.Close()
		}
		if a.tracker != nil {
			a.tracker.Close()
		}
		if a.finder != nil {
			a.finder.Close()
		}
		log.Info("shutdown complete")
	})
}
