// circletrack - screen-region circle tracker
//
// Captures a fixed region at the center of the display, finds the purple
// outlined target, locates the circle inside it and nudges the pointer
// toward it while assist is on.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-circletrack/internal/config"
	"github.com/teslashibe/go-circletrack/internal/log"
	"github.com/teslashibe/go-circletrack/pkg/app"
	"github.com/teslashibe/go-circletrack/pkg/debug"
	"github.com/teslashibe/go-circletrack/pkg/priority"
)

type flags struct {
	configPath    string
	debug         bool
	debugTracking bool
	dryRun        bool
	assist        bool
	noTUI         bool
	dashboard     bool
	preset        string
	logFile       string
}

func main() {
	f := parseFlags()

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(f, cfg))
}

// run starts the tracker and blocks until it stops. It returns the process
// exit code so deferred cleanup, including the log file, runs on every path.
func run(f flags, cfg config.Config) int {
	// The console owns the terminal, so logs go to a file while it runs
	if !f.noTUI {
		out, err := os.OpenFile(f.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Open log file: %v\n", err)
			return 1
		}
		defer out.Close()
		log.InitWithWriter(cfg.LogLevel, out)
	} else {
		log.Init(cfg.LogLevel)
	}

	a, err := app.New(cfg, app.Options{Console: !f.noTUI})
	if err != nil {
		log.Error("configuration error", "error", err)
		return 1
	}

	if err := priority.Elevate(); err != nil {
		log.Warn("running at default priority", "error", err)
	}

	if err := a.Init(); err != nil {
		log.Error("initialization failed", "error", err)
		a.Shutdown()
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err = a.Run(ctx)
	a.Shutdown()
	if err != nil {
		log.Error("runtime error", "error", err)
		return 1
	}
	return 0
}

// parseFlags parses command line flags.
func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "YAML configuration file")
	flag.BoolVar(&f.debug, "debug", false, "Enable verbose debug logging")
	flag.BoolVar(&f.debugTracking, "debug-tracking", false, "Log every tracker decision (very verbose)")
	flag.BoolVar(&f.dryRun, "dry-run", false, "Log pointer movements instead of moving the pointer")
	flag.BoolVar(&f.assist, "assist", false, "Start with assist enabled")
	flag.BoolVar(&f.noTUI, "no-tui", false, "Disable the terminal console (logs go to stdout)")
	flag.BoolVar(&f.dashboard, "dashboard", false, "Serve the read-only status dashboard")
	flag.StringVar(&f.preset, "preset", "", "Aim preset: head, chest, belly or feet")
	flag.StringVar(&f.logFile, "log-file", "circletrack.log", "Log file used while the console is active")
	flag.Parse()
	return f
}

// loadConfig layers defaults, the config file, environment and flags.
func loadConfig(f flags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "dry-run":
			cfg.DryRun = f.dryRun
		case "assist":
			cfg.Aim.Enabled = f.assist
		case "dashboard":
			cfg.Dashboard.Enabled = f.dashboard
		case "preset":
			cfg.Aim.Preset = f.preset
		}
	})
	if f.debug || f.debugTracking {
		cfg.LogLevel = "debug"
	}
	debug.Enabled = f.debug
	debug.Tracking = f.debugTracking

	return cfg, nil
}
