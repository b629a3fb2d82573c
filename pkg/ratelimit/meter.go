package ratelimit

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultWindow is how often rolling rates are recomputed.
const DefaultWindow = 2 * time.Second

// Meter measures events per second over a sliding wall-clock window.
// Tick is called from the owning loop; Rate may be read from any goroutine.
type Meter struct {
	window time.Duration
	now    func() time.Time

	mu    sync.Mutex
	count int
	start time.Time

	rate atomic.Uint64 // float64 bits
}

// NewMeter creates a meter that recomputes its rate every window.
func NewMeter(window time.Duration) *Meter {
	if window <= 0 {
		window = DefaultWindow
	}
	return newMeterWithClock(window, time.Now)
}

func newMeterWithClock(window time.Duration, now func() time.Time) *Meter {
	return &Meter{
		window: window,
		now:    now,
		start:  now(),
	}
}

// Tick records one event.
func (m *Meter) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.count++
	now := m.now()
	elapsed := now.Sub(m.start)
	if elapsed >= m.window {
		m.rate.Store(math.Float64bits(float64(m.count) / elapsed.Seconds()))
		m.count = 0
		m.start = now
	}
}

// Rate returns the events per second measured over the last full window.
func (m *Meter) Rate() float64 {
	return math.Float64frombits(m.rate.Load())
}
