// Package pipeline runs the capture → track → aim loop.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/teslashibe/go-circletrack/internal/log"
	"github.com/teslashibe/go-circletrack/pkg/capture"
	"github.com/teslashibe/go-circletrack/pkg/ratelimit"
	"github.com/teslashibe/go-circletrack/pkg/vision"
)

// FrameProvider returns the most recently published frame, or nil.
type FrameProvider interface {
	Frame() *capture.Frame
}

// Processor finds at most one circle per frame, in frame coordinates.
type Processor interface {
	Process(f *capture.Frame) (vision.Circle, bool)
}

// Aimer turns a frame coordinate into pointer movement.
type Aimer interface {
	ConvertToRelative(frameX, frameY int) (float64, float64)
	Apply(relX, relY float64) bool
}

// Config holds loop configuration.
type Config struct {
	FPS           float64       `yaml:"fps" json:"fps"`                       // Outer loop ceiling
	StatsInterval time.Duration `yaml:"stats_interval" json:"stats_interval"` // Periodic stats log (0 disables)
	RateWindow    time.Duration `yaml:"rate_window" json:"rate_window"`
}

// DefaultConfig returns the reference loop configuration.
func DefaultConfig() Config {
	return Config{
		FPS:           150,
		StatsInterval: 2 * time.Second,
		RateWindow:    ratelimit.DefaultWindow,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %v", c.FPS)
	}
	if c.StatsInterval < 0 {
		return fmt.Errorf("stats interval %v must not be negative", c.StatsInterval)
	}
	return nil
}

// Pipeline is the single consumer loop.
type Pipeline struct {
	config  Config
	frames  FrameProvider
	tracker Processor
	aimer   Aimer

	detectRate func() float64

	runID     uuid.UUID
	startedAt time.Time

	governor   *ratelimit.Governor
	meter      *ratelimit.Meter
	iterations atomic.Uint64
	skipped    atomic.Uint64
	detections atomic.Uint64
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDetectRate reports detector throughput in Stats.
func WithDetectRate(rate func() float64) Option {
	return func(p *Pipeline) {
		p.detectRate = rate
	}
}

// New creates a pipeline over its three collaborators.
func New(config Config, frames FrameProvider, tracker Processor, aimer Aimer, opts ...Option) *Pipeline {
	p := &Pipeline{
		config:    config,
		frames:    frames,
		tracker:   tracker,
		aimer:     aimer,
		runID:     uuid.New(),
		startedAt: time.Now(),
		governor:  ratelimit.NewGovernor(config.FPS),
		meter:     ratelimit.NewMeter(config.RateWindow),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RunID identifies this pipeline instance in logs and stats.
func (p *Pipeline) RunID() string {
	return p.runID.String()
}

// Step runs one iteration: read the current frame, track, and aim at a hit.
// A missing frame skips the iteration.
func (p *Pipeline) Step() (vision.Circle, bool) {
	p.iterations.Add(1)
	defer p.meter.Tick()

	f := p.frames.Frame()
	if f == nil {
		p.skipped.Add(1)
		return vision.Circle{}, false
	}

	c, ok := p.tracker.Process(f)
	if !ok {
		return vision.Circle{}, false
	}
	p.detections.Add(1)

	relX, relY := p.aimer.ConvertToRelative(c.X, c.Y)
	p.aimer.Apply(relX, relY)
	return c, true
}

// Run steps the loop until ctx is cancelled. A panic inside an iteration is
// recovered and returned as an error; the caller owns shutdown.
func (p *Pipeline) Run(ctx context.Context) (err error) {
	logger := log.With("run_id", p.runID.String())
	logger.Info("pipeline started", "fps", p.config.FPS)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
			logger.Error("pipeline panic", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	var statsC <-chan time.Time
	if p.config.StatsInterval > 0 {
		ticker := time.NewTicker(p.config.StatsInterval)
		defer ticker.Stop()
		statsC = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("pipeline stopped", "iterations", p.iterations.Load())
			return nil
		case <-statsC:
			p.logStats(logger)
		default:
		}

		start := time.Now()
		p.Step()

		if err := p.governor.WaitContext(ctx, start); err != nil {
			logger.Info("pipeline stopped", "iterations", p.iterations.Load())
			return nil
		}
	}
}

func (p *Pipeline) logStats(logger *slog.Logger) {
	s := p.Stats()
	logger.Info("pipeline stats",
		"loop_fps", fmt.Sprintf("%.1f", s.LoopFPS),
		"capture_fps", fmt.Sprintf("%.1f", s.CaptureFPS),
		"process_fps", fmt.Sprintf("%.1f", s.ProcessFPS),
		"detect_fps", fmt.Sprintf("%.1f", s.DetectFPS),
		"mode", s.Mode,
		"detections", s.Detections,
		"moves", s.Moves,
		"assist", s.Assist,
	)
}
