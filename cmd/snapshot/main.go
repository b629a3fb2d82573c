// snapshot - capture the tracking region once and save it
//
// Useful for checking the capture region and color range: writes the raw
// region, optionally the color mask, and reports whether the tracker finds
// a circle in it.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/teslashibe/go-circletrack/internal/config"
	"github.com/teslashibe/go-circletrack/internal/log"
	"github.com/teslashibe/go-circletrack/pkg/capture"
	"github.com/teslashibe/go-circletrack/pkg/tracking"
	"github.com/teslashibe/go-circletrack/pkg/vision"
	"gocv.io/x/gocv"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	out := flag.String("out", "snapshot.png", "Output image path")
	maskOut := flag.String("mask", "", "Also write the color mask to this path")
	timeout := flag.Duration("timeout", 2*time.Second, "How long to wait for a capture")
	flag.Parse()

	log.Init("info")

	if err := run(*configPath, *out, *maskOut, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, out, maskOut string, timeout time.Duration) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	w, h, err := capture.DisplaySize()
	if err != nil {
		return err
	}
	region := capture.CenteredRegion(w, h, cfg.Aim.CaptureWidth, cfg.Aim.CaptureHeight)
	if err := region.Validate(w, h); err != nil {
		return err
	}

	grabber := capture.NewScreenGrabber()
	if err := grabber.Start(cfg.Capture.FPS, region); err != nil {
		return err
	}
	defer grabber.Release()

	frame, err := grab(grabber, timeout)
	if err != nil {
		return err
	}
	if err := capture.SaveSnapshot(frame, out); err != nil {
		return err
	}
	log.Info("snapshot saved", "path", out, "region", region.String())

	if maskOut != "" {
		if err := saveMask(frame, cfg.Color, maskOut); err != nil {
			return err
		}
		log.Info("mask saved", "path", maskOut)
	}

	cfg.Tracking.FPS = 0
	cfg.Detector.MaxFPS = 0
	finder := vision.NewHoughFinder(cfg.Detector)
	defer finder.Close()
	tracker := tracking.New(cfg.Tracking, cfg.Color, finder)
	defer tracker.Close()

	if c, ok := tracker.Process(frame); ok {
		log.Info("circle found", "x", c.X, "y", c.Y, "radius", c.Radius)
	} else {
		log.Info("no circle found")
	}
	return nil
}

func grab(g capture.Grabber, timeout time.Duration) (*capture.Frame, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if f := g.LatestFrame(); f != nil {
			return f, nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil, fmt.Errorf("no frame captured within %v", timeout)
}

func saveMask(f *capture.Frame, rng vision.ColorRange, path string) error {
	src := gocv.NewMat()
	defer src.Close()
	if err := vision.LoadFrame(&src, f); err != nil {
		return err
	}

	mask := vision.NewColorMask(rng)
	defer mask.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	mask.Build(src, &dst)

	if ok := gocv.IMWrite(path, dst); !ok {
		return fmt.Errorf("failed to write mask %s", path)
	}
	return nil
}
