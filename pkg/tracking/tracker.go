// Package tracking finds the target circle in captured frames.
//
// The tracker is a two-state machine. While Searching it masks the whole frame,
// orders the target-colored regions by distance from the frame center and
// runs circle detection on a small patch around each until one hits. While
// Tracking it only re-checks the patch around the last hit, and falls back to
// Searching after MaxLostFrames consecutive misses.
package tracking

import (
	"image"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/teslashibe/go-circletrack/internal/log"
	"github.com/teslashibe/go-circletrack/pkg/capture"
	"github.com/teslashibe/go-circletrack/pkg/debug"
	"github.com/teslashibe/go-circletrack/pkg/ratelimit"
	"github.com/teslashibe/go-circletrack/pkg/vision"
	"gocv.io/x/gocv"
)

type candidate struct {
	patch Patch
	dist  float64
}

// Tracker runs the Searching/Tracking state machine over frames.
// Process must be called from a single goroutine; State and Stats may be
// read concurrently.
type Tracker struct {
	config Config

	// Core components
	mask   *vision.ColorMask
	blobs  *vision.BlobFinder
	finder vision.CircleFinder

	// Reusable buffers
	frame      gocv.Mat
	frameMask  gocv.Mat
	candidates []candidate

	// State
	mu           sync.RWMutex
	state        State
	acquisitions uint64
	losses       uint64

	meter    *ratelimit.Meter
	governor *ratelimit.Governor
}

// New creates a tracker for targets of color rng, detecting circles with finder
func New(config Config, rng vision.ColorRange, finder vision.CircleFinder) *Tracker {
	return &Tracker{
		config:     config,
		mask:       vision.NewColorMask(rng),
		blobs:      vision.NewBlobFinder(config.MinBlobArea),
		finder:     finder,
		frame:      gocv.NewMat(),
		frameMask:  gocv.NewMat(),
		candidates: make([]candidate, 0, 16),
		meter:      ratelimit.NewMeter(config.RateWindow),
		governor:   ratelimit.NewGovernor(config.FPS),
	}
}

// Process runs one iteration on f and returns at most one circle in frame space.
func (t *Tracker) Process(f *capture.Frame) (vision.Circle, bool) {
	start := time.Now()
	defer t.governor.Wait(start)

	if f == nil {
		return vision.Circle{}, false
	}
	if err := vision.LoadFrame(&t.frame, f); err != nil {
		log.Warn("tracker: skipping frame", "seq", f.Seq, "error", err)
		return vision.Circle{}, false
	}
	defer t.meter.Tick()

	t.mu.RLock()
	st := t.state
	t.mu.RUnlock()

	if st.Mode == Tracking && st.HasLastCenter {
		return t.track(f, st.LastCenter)
	}
	return t.search(f)
}

// search scans every target-colored region, nearest to the frame center first.
func (t *Tracker) search(f *capture.Frame) (vision.Circle, bool) {
	if !t.mask.ContainsTargetSampled(t.frame) {
		return vision.Circle{}, false
	}
	t.mask.Build(t.frame, &t.frameMask)
	t.orderCandidates(f.Bounds(), t.blobs.Find(t.frameMask))

	for _, c := range t.candidates {
		circle, ok := t.detectIn(c.patch)
		if !ok {
			continue
		}
		t.acquire(circle)
		debug.TrackLog("tracker: acquired", "x", circle.X, "y", circle.Y, "r", circle.Radius,
			"candidates", len(t.candidates))
		return circle, true
	}
	return vision.Circle{}, false
}

func (t *Tracker) orderCandidates(frame image.Rectangle, blobs []vision.Blob) {
	center := image.Pt(frame.Dx()/2, frame.Dy()/2)

	t.candidates = t.candidates[:0]
	for _, b := range blobs {
		p, ok := PatchAt(frame, b.Centroid, t.config.PatchSize, t.config.MinPatchSize)
		if !ok {
			continue
		}
		d := b.Centroid.Sub(center)
		t.candidates = append(t.candidates, candidate{
			patch: p,
			dist:  math.Hypot(float64(d.X), float64(d.Y)),
		})
	}
	sort.SliceStable(t.candidates, func(i, j int) bool {
		return t.candidates[i].dist < t.candidates[j].dist
	})
}

// track re-checks the patch around the last hit. It never falls back to a
// full search within the same call.
func (t *Tracker) track(f *capture.Frame, last image.Point) (vision.Circle, bool) {
	if p, ok := PatchAt(f.Bounds(), last, t.config.PatchSize, t.config.MinPatchSize); ok {
		region := t.frame.Region(p.Bounds)
		present := t.mask.ContainsTarget(region)
		region.Close()

		if present {
			if circle, ok := t.detectIn(p); ok {
				t.acquire(circle)
				return circle, true
			}
		}
	}

	t.miss()
	return vision.Circle{}, false
}

// detectIn runs the finder on a valid patch and maps its first circle to frame space.
func (t *Tracker) detectIn(p Patch) (vision.Circle, bool) {
	region := t.frame.Region(p.Bounds)
	defer region.Close()

	circles := t.finder.Detect(region)
	if len(circles) == 0 {
		return vision.Circle{}, false
	}
	c := circles[0]
	pt := p.ToFrame(c.Center())
	return vision.Circle{X: pt.X, Y: pt.Y, Radius: c.Radius}, true
}

func (t *Tracker) acquire(c vision.Circle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Mode == Searching {
		t.acquisitions++
	}
	t.state = State{
		Mode:          Tracking,
		LastCenter:    c.Center(),
		HasLastCenter: true,
	}
}

func (t *Tracker) miss() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.LostFrames++
	if t.state.LostFrames >= t.config.MaxLostFrames {
		debug.TrackLog("tracker: lost target", "last", t.state.LastCenter, "misses", t.state.LostFrames)
		t.state = State{Mode: Searching}
		t.losses++
	}
}

// State returns a copy of the acquisition state.
func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Reset drops any lock and returns to Searching.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = State{Mode: Searching}
}

// Close releases the tracker's buffers.
func (t *Tracker) Close() error {
	t.mask.Close()
	t.blobs.Close()
	t.frame.Close()
	t.frameMask.Close()
	return nil
}
