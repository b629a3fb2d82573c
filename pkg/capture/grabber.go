package capture

import (
	"errors"
	"fmt"
	"hash/maphash"
	"image"
	"sync"

	"github.com/kbinani/screenshot"
	"github.com/teslashibe/go-circletrack/internal/log"
)

// ErrNotStarted is returned when a grabber is used before Start.
var ErrNotStarted = errors.New("capture: grabber not started")

// Grabber is the platform capture backend.
type Grabber interface {
	// Start prepares capture of region at up to targetFPS frames per second.
	Start(targetFPS int, region Region) error

	// LatestFrame returns a new frame, or nil if nothing new is available.
	// It must not block waiting for the next frame.
	LatestFrame() *Frame

	// Release frees the capture resource.
	Release() error
}

// DisplaySize returns the primary display size.
func DisplaySize() (width, height int, err error) {
	if screenshot.NumActiveDisplays() < 1 {
		return 0, 0, errors.New("capture: no active display")
	}
	b := screenshot.GetDisplayBounds(0)
	return b.Dx(), b.Dy(), nil
}

// ScreenGrabber captures a fixed region of the primary display.
// Identical consecutive captures are reported as "nothing new".
type ScreenGrabber struct {
	mu       sync.Mutex
	region   image.Rectangle
	started  bool
	seed     maphash.Seed
	lastHash uint64
	hasLast  bool
}

// NewScreenGrabber creates an unstarted screen grabber.
func NewScreenGrabber() *ScreenGrabber {
	return &ScreenGrabber{seed: maphash.MakeSeed()}
}

// Start records the capture region. The primary display is offset so region
// coordinates are relative to it.
func (g *ScreenGrabber) Start(targetFPS int, region Region) error {
	w, h, err := DisplaySize()
	if err != nil {
		return err
	}
	if err := region.Validate(w, h); err != nil {
		return err
	}

	origin := screenshot.GetDisplayBounds(0).Min

	g.mu.Lock()
	defer g.mu.Unlock()
	g.region = region.Rect().Add(origin)
	g.started = true
	g.hasLast = false

	log.Info("screen capture started", "region", region.String(), "target_fps", targetFPS)
	return nil
}

// LatestFrame grabs the region once.
func (g *ScreenGrabber) LatestFrame() *Frame {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.started {
		return nil
	}

	img, err := screenshot.CaptureRect(g.region)
	if err != nil {
		log.Debug("screen capture failed", "error", err)
		return nil
	}

	sum := maphash.Bytes(g.seed, img.Pix)
	if g.hasLast && sum == g.lastHash {
		return nil
	}
	g.lastHash = sum
	g.hasLast = true

	return FromRGBA(img)
}

// Release stops further captures.
func (g *ScreenGrabber) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.started {
		return fmt.Errorf("release: %w", ErrNotStarted)
	}
	g.started = false
	log.Info("screen capture released")
	return nil
}
