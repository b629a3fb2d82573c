// Package capturetest builds synthetic frames for tests.
package capturetest

import (
	"image"
	"sync/atomic"

	"github.com/teslashibe/go-circletrack/pkg/capture"
)

// BGR colors used by synthetic scenes.
var (
	Purple = [3]uint8{200, 0, 200}
	White  = [3]uint8{255, 255, 255}
	Black  = [3]uint8{0, 0, 0}
)

// Blank returns a black frame of the given size.
func Blank(width, height int) *capture.Frame {
	return capture.NewFrame(width, height)
}

// FillRect paints r (clipped to the frame) with c.
func FillRect(f *capture.Frame, r image.Rectangle, c [3]uint8) {
	r = r.Intersect(f.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			f.Set(x, y, c[0], c[1], c[2])
		}
	}
}

// FillDisk paints every pixel within radius of center with c.
func FillDisk(f *capture.Frame, center image.Point, radius int, c [3]uint8) {
	r2 := radius * radius
	box := image.Rect(center.X-radius, center.Y-radius, center.X+radius+1, center.Y+radius+1)
	box = box.Intersect(f.Bounds())
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			dx, dy := x-center.X, y-center.Y
			if dx*dx+dy*dy <= r2 {
				f.Set(x, y, c[0], c[1], c[2])
			}
		}
	}
}

// Square returns the size x size rectangle centered on c.
func Square(c image.Point, size int) image.Rectangle {
	half := size / 2
	return image.Rect(c.X-half, c.Y-half, c.X-half+size, c.Y-half+size)
}

// Target draws the reference target: a bright disk inside a purple square.
func Target(f *capture.Frame, center image.Point, square, radius int) {
	FillRect(f, Square(center, square), Purple)
	FillDisk(f, center, radius, White)
}

// Grabber serves copies of a fixed scene. It stands in for the screen in
// tests that run the whole pipeline.
type Grabber struct {
	Scene    *capture.Frame
	StartErr error

	started  atomic.Bool
	releases atomic.Int64
}

// NewGrabber creates a grabber that serves scene.
func NewGrabber(scene *capture.Frame) *Grabber {
	return &Grabber{Scene: scene}
}

// Start records the call and fails with StartErr when set.
func (g *Grabber) Start(fps int, r capture.Region) error {
	if g.StartErr != nil {
		return g.StartErr
	}
	g.started.Store(true)
	return nil
}

// LatestFrame returns a fresh copy of the scene, or nil before Start.
func (g *Grabber) LatestFrame() *capture.Frame {
	if !g.started.Load() {
		return nil
	}
	return g.Scene.Clone()
}

// Release counts the call.
func (g *Grabber) Release() error {
	g.started.Store(false)
	g.releases.Add(1)
	return nil
}

// Releases returns how many times Release was called.
func (g *Grabber) Releases() int64 {
	return g.releases.Load()
}
