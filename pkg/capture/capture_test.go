package capture

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFromRGBA_SwapsToBGR(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	f := FromRGBA(img)

	if f.Width != 4 || f.Height != 3 {
		t.Fatalf("size: got %dx%d, want 4x3", f.Width, f.Height)
	}
	if !f.Tight() {
		t.Errorf("stride %d not tight", f.Stride)
	}
	b, g, r := f.At(2, 1)
	if b != 30 || g != 20 || r != 10 {
		t.Errorf("At(2,1): got (%d,%d,%d), want (30,20,10)", b, g, r)
	}
	if b, g, r := f.At(0, 0); b|g|r != 0 {
		t.Errorf("At(0,0): got (%d,%d,%d), want black", b, g, r)
	}
}

func TestCenteredRegion(t *testing.T) {
	tests := []struct {
		name          string
		screenW       int
		screenH       int
		width, height int
		want          Region
	}{
		{"1080p", 1920, 1080, 300, 450, Region{Left: 810, Top: 315, Right: 1110, Bottom: 765}},
		{"1440p", 2560, 1440, 300, 450, Region{Left: 1130, Top: 495, Right: 1430, Bottom: 945}},
		{"odd size", 1921, 1081, 300, 450, Region{Left: 810, Top: 315, Right: 1110, Bottom: 765}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CenteredRegion(tc.screenW, tc.screenH, tc.width, tc.height)
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
			if got.Width() != tc.width || got.Height() != tc.height {
				t.Errorf("size: got %dx%d, want %dx%d", got.Width(), got.Height(), tc.width, tc.height)
			}
			if err := got.Validate(tc.screenW, tc.screenH); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestRegion_ValidateRejects(t *testing.T) {
	cases := []Region{
		{Left: 0, Top: 0, Right: 0, Bottom: 10},
		{Left: -1, Top: 0, Right: 300, Bottom: 450},
		{Left: 1800, Top: 0, Right: 2100, Bottom: 450},
	}
	for _, r := range cases {
		if err := r.Validate(1920, 1080); err == nil {
			t.Errorf("Validate(%v): expected error", r)
		}
	}
}

func TestSlot_PublishLoad(t *testing.T) {
	var s Slot
	if s.Load() != nil {
		t.Fatal("empty slot should load nil")
	}

	a := NewFrame(2, 2)
	b := NewFrame(2, 2)
	s.Publish(a)
	if s.Load() != a || a.Seq != 1 {
		t.Errorf("after first publish: got seq %d", a.Seq)
	}
	s.Publish(b)
	if s.Load() != b || b.Seq != 2 {
		t.Errorf("after second publish: got seq %d", b.Seq)
	}
}

// fakeGrabber returns a fresh frame on every call until exhausted.
type fakeGrabber struct {
	mu        sync.Mutex
	started   bool
	startErr  error
	region    Region
	fps       int
	calls     atomic.Int64
	releases  atomic.Int64
	nilEveryN int
}

func (g *fakeGrabber) Start(fps int, r Region) error {
	if g.startErr != nil {
		return g.startErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.started = true
	g.region = r
	g.fps = fps
	return nil
}

func (g *fakeGrabber) LatestFrame() *Frame {
	n := g.calls.Add(1)
	if g.nilEveryN > 0 && n%int64(g.nilEveryN) == 0 {
		return nil
	}
	return NewFrame(g.region.Width(), g.region.Height())
}

func (g *fakeGrabber) Release() error {
	g.releases.Add(1)
	return nil
}

func TestSource_PublishesFrames(t *testing.T) {
	g := &fakeGrabber{nilEveryN: 3}
	region := CenteredRegion(1920, 1080, DefaultWidth, DefaultHeight)
	src := NewSource(g, region, SourceConfig{FPS: 500, RateWindow: 50 * time.Millisecond})

	if src.Frame() != nil {
		t.Fatal("Frame before Start should be nil")
	}
	if err := src.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for src.Frame() == nil || src.Frame().Seq < 5 {
		if time.Now().After(deadline) {
			t.Fatal("source did not publish 5 frames in time")
		}
		time.Sleep(5 * time.Millisecond)
	}

	f := src.Frame()
	if f.Width != DefaultWidth || f.Height != DefaultHeight {
		t.Errorf("frame size: got %dx%d", f.Width, f.Height)
	}
	if f.CapturedAt.IsZero() {
		t.Error("CapturedAt not stamped")
	}
	if g.fps != 500 {
		t.Errorf("grabber fps: got %d, want 500", g.fps)
	}

	if err := src.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := src.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if got := g.releases.Load(); got != 1 {
		t.Errorf("releases: got %d, want 1", got)
	}

	// producer has exited: no more grabs
	calls := g.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if g.calls.Load() != calls {
		t.Error("producer kept running after Stop")
	}
}

func TestSource_RespectsRateCap(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}
	g := &fakeGrabber{}
	src := NewSource(g, CenteredRegion(1920, 1080, 30, 30), SourceConfig{FPS: 100})
	if err := src.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(time.Second)
	src.Stop()

	if calls := g.calls.Load(); calls > 110 {
		t.Errorf("grabber called %d times in 1s at 100 fps cap", calls)
	}
}

func TestSource_ContextCancelStopsProducer(t *testing.T) {
	g := &fakeGrabber{}
	src := NewSource(g, CenteredRegion(1920, 1080, 30, 30), SourceConfig{FPS: 1000})
	ctx, cancel := context.WithCancel(context.Background())
	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()

	done := make(chan struct{})
	go func() {
		src.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after context cancel")
	}
}

func TestSource_StartError(t *testing.T) {
	g := &fakeGrabber{startErr: ErrNotStarted}
	src := NewSource(g, CenteredRegion(1920, 1080, 30, 30), DefaultSourceConfig())
	if err := src.Start(context.Background()); err == nil {
		t.Fatal("expected Start error")
	}
	if err := src.Stop(); err != nil {
		t.Errorf("Stop after failed Start: %v", err)
	}
	if g.releases.Load() != 0 {
		t.Error("grabber released although it never started")
	}
}

func TestFrame_Clone(t *testing.T) {
	f := NewFrame(4, 3)
	f.Set(1, 2, 10, 20, 30)
	f.Seq = 7

	c := f.Clone()
	if c.Seq != 0 || !c.CapturedAt.IsZero() {
		t.Errorf("clone kept publish metadata: seq=%d at=%v", c.Seq, c.CapturedAt)
	}
	if b, g, r := c.At(1, 2); b != 10 || g != 20 || r != 30 {
		t.Errorf("pixel: got (%d,%d,%d), want (10,20,30)", b, g, r)
	}

	c.Set(1, 2, 0, 0, 0)
	if b, _, _ := f.At(1, 2); b != 10 {
		t.Error("clone shares pixels with the original")
	}
}
