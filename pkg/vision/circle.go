package vision

import (
	"image"
	"math"
	"time"

	"github.com/teslashibe/go-circletrack/pkg/ratelimit"
	"gocv.io/x/gocv"
)

// Circle is a detected circle in the coordinate space it was found in.
type Circle struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Radius int `json:"radius"`
}

// Center returns the circle center as a point.
func (c Circle) Center() image.Point {
	return image.Pt(c.X, c.Y)
}

// CircleFinder is the interface for circle detection backends.
type CircleFinder interface {
	// Detect finds circles in a small patch, in the backend's natural order.
	// The returned slice is only valid until the next call.
	Detect(patch gocv.Mat) []Circle
}

// DetectorConfig holds Hough detector configuration.
type DetectorConfig struct {
	DP        float64 `yaml:"dp" json:"dp"`               // Inverse accumulator resolution
	MinDist   float64 `yaml:"min_dist" json:"min_dist"`   // Minimum distance between centers
	Param1    float64 `yaml:"param1" json:"param1"`       // Canny high threshold
	Param2    float64 `yaml:"param2" json:"param2"`       // Accumulator threshold
	MinRadius int     `yaml:"min_radius" json:"min_radius"`
	MaxRadius int     `yaml:"max_radius" json:"max_radius"`

	MaxFPS     float64       `yaml:"max_fps" json:"max_fps"` // Detection call ceiling
	RateWindow time.Duration `yaml:"rate_window" json:"rate_window"`
}

// DefaultDetectorConfig returns the reference Hough parameters.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		DP:         1,
		MinDist:    20,
		Param1:     20,
		Param2:     20,
		MinRadius:  3,
		MaxRadius:  8,
		MaxFPS:     150,
		RateWindow: ratelimit.DefaultWindow,
	}
}

// HoughFinder detects circles with OpenCV's gradient Hough transform.
// Every call is held to the MaxFPS ceiling. Not safe for concurrent use.
type HoughFinder struct {
	config   DetectorConfig
	gray     gocv.Mat
	circles  gocv.Mat
	out      []Circle
	meter    *ratelimit.Meter
	governor *ratelimit.Governor
}

// NewHoughFinder creates a Hough circle finder.
func NewHoughFinder(cfg DetectorConfig) *HoughFinder {
	return &HoughFinder{
		config:   cfg,
		gray:     gocv.NewMat(),
		circles:  gocv.NewMat(),
		out:      make([]Circle, 0, 4),
		meter:    ratelimit.NewMeter(cfg.RateWindow),
		governor: ratelimit.NewGovernor(cfg.MaxFPS),
	}
}

// Detect converts patch to grayscale if needed and runs HoughCircles.
func (h *HoughFinder) Detect(patch gocv.Mat) []Circle {
	start := time.Now()
	defer h.governor.Wait(start)

	h.out = h.out[:0]
	if patch.Empty() {
		return h.out
	}

	gray := patch
	if patch.Channels() == 3 {
		gocv.CvtColor(patch, &h.gray, gocv.ColorBGRToGray)
		gray = h.gray
	}

	gocv.HoughCirclesWithParams(gray, &h.circles, gocv.HoughGradient,
		h.config.DP, h.config.MinDist,
		h.config.Param1, h.config.Param2,
		h.config.MinRadius, h.config.MaxRadius)

	h.meter.Tick()

	if h.circles.Empty() {
		return h.out
	}
	for i := 0; i < h.circles.Cols(); i++ {
		h.out = append(h.out, circleFromRaw(
			h.circles.GetFloatAt(0, i*3),
			h.circles.GetFloatAt(0, i*3+1),
			h.circles.GetFloatAt(0, i*3+2)))
	}
	return h.out
}

// circleFromRaw rounds a Hough (x, y, r) triple half to even. With dp=1 most
// centers land on .5, so the tie rule decides the pixel.
func circleFromRaw(x, y, r float32) Circle {
	return Circle{
		X:      int(math.RoundToEven(float64(x))),
		Y:      int(math.RoundToEven(float64(y))),
		Radius: int(math.RoundToEven(float64(r))),
	}
}

// Rate returns detections per second over the last window.
func (h *HoughFinder) Rate() float64 {
	return h.meter.Rate()
}

// Close releases the detector buffers.
func (h *HoughFinder) Close() error {
	h.gray.Close()
	h.circles.Close()
	return nil
}
