package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/teslashibe/go-circletrack/internal/log"
	"github.com/teslashibe/go-circletrack/pkg/ratelimit"
)

// DefaultFPS is the target rate shared by every pipeline stage.
const DefaultFPS = 150

// SourceConfig configures the capture producer.
type SourceConfig struct {
	FPS        int           `yaml:"fps" json:"fps"`
	RateWindow time.Duration `yaml:"rate_window" json:"rate_window"`
}

// DefaultSourceConfig returns the reference producer settings.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		FPS:        DefaultFPS,
		RateWindow: ratelimit.DefaultWindow,
	}
}

// Source runs the capture producer and exposes the latest frame.
type Source struct {
	grabber Grabber
	region  Region
	config  SourceConfig

	slot     Slot
	meter    *ratelimit.Meter
	governor *ratelimit.Governor

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewSource creates a producer for region backed by grabber.
func NewSource(grabber Grabber, region Region, config SourceConfig) *Source {
	return &Source{
		grabber:  grabber,
		region:   region,
		config:   config,
		meter:    ratelimit.NewMeter(config.RateWindow),
		governor: ratelimit.NewGovernor(float64(config.FPS)),
	}
}

// Start starts the grabber and the producer goroutine.
// The producer stops when ctx is cancelled or Stop is called.
func (s *Source) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("capture source already running")
	}
	if err := s.grabber.Start(s.config.FPS, s.region); err != nil {
		return fmt.Errorf("start grabber: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.loop(ctx)

	return nil
}

func (s *Source) loop(ctx context.Context) {
	defer s.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()

		if f := s.grabber.LatestFrame(); f != nil {
			if f.CapturedAt.IsZero() {
				f.CapturedAt = start
			}
			s.slot.Publish(f)
			s.meter.Tick()
		}

		if err := s.governor.WaitContext(ctx, start); err != nil {
			return
		}
	}
}

// Frame returns the most recently published frame, or nil before the first capture.
func (s *Source) Frame() *Frame {
	return s.slot.Load()
}

// FPS returns the rolling capture rate.
func (s *Source) FPS() float64 {
	return s.meter.Rate()
}

// Region returns the captured display region.
func (s *Source) Region() Region {
	return s.region
}

// Stop cancels the producer, waits for it to exit, then releases the grabber.
// It is safe to call more than once; only the first call after Start releases.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.cancel()
	s.wg.Wait()
	s.running = false

	if err := s.grabber.Release(); err != nil {
		return fmt.Errorf("release grabber: %w", err)
	}
	log.Info("capture source stopped", "frames", s.slot.seq.Load())
	return nil
}
