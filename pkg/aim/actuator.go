// Package aim converts detections into relative pointer movement.
package aim

import (
	"math"
	"sync/atomic"

	"github.com/teslashibe/go-circletrack/internal/log"
	"github.com/teslashibe/go-circletrack/pkg/debug"
	"gonum.org/v1/gonum/floats"
)

// Actuator maps frame coordinates to movement relative to the aim point and
// emits bounded pointer steps toward it.
//
// Apply and ConvertToRelative run on the tracking loop. Toggle, SetEnabled and
// SetPreset may be called from any goroutine.
type Actuator struct {
	config Config
	mover  Mover

	enabled atomic.Bool
	preset  atomic.Pointer[string]
	ratio   atomic.Uint64 // float64 bits
	moves   atomic.Uint64

	vec [2]float64
}

// New creates an actuator. config must be valid.
func New(config Config, mover Mover) *Actuator {
	a := &Actuator{
		config: config,
		mover:  mover,
	}
	if err := a.SetPreset(config.Preset); err != nil {
		log.Warn("aim: falling back to head preset", "preset", config.Preset)
		a.SetPreset(PresetHead)
	}
	a.enabled.Store(config.Enabled)
	return a
}

// ConvertToRelative maps a capture-region point to screen space and returns
// its offset from the aim point.
func (a *Actuator) ConvertToRelative(frameX, frameY int) (float64, float64) {
	c := a.config
	screenX := frameX + (c.ScreenWidth-c.CaptureWidth)/2
	screenY := frameY + (c.ScreenHeight-c.CaptureHeight)/2

	aimX := float64(c.ScreenWidth / 2)
	aimY := float64(c.ScreenHeight) / a.Ratio()

	return float64(screenX) - aimX, float64(screenY) - aimY
}

// Apply emits one movement step toward (relX, relY) when assist is enabled
// and the offset is outside the deadzone. It reports whether a movement was
// emitted.
func (a *Actuator) Apply(relX, relY float64) bool {
	if !a.enabled.Load() {
		return false
	}

	a.vec[0], a.vec[1] = relX, relY
	dist := floats.Norm(a.vec[:], 2)
	if dist <= a.config.Deadzone {
		return false
	}

	// direction times speed, rounded half to even per axis
	dx := int(math.RoundToEven(relX / dist * a.config.SpeedX))
	dy := int(math.RoundToEven(relY / dist * a.config.SpeedY))

	if err := a.mover.MoveRelative(dx, dy); err != nil {
		log.Warn("aim: pointer move failed", "dx", dx, "dy", dy, "error", err)
		return false
	}
	a.moves.Add(1)
	debug.Log("aim: moved", "dx", dx, "dy", dy, "dist", dist)
	return true
}

// Toggle flips assist and returns the new state.
func (a *Actuator) Toggle() bool {
	for {
		old := a.enabled.Load()
		if a.enabled.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// SetEnabled turns assist on or off.
func (a *Actuator) SetEnabled(on bool) {
	a.enabled.Store(on)
}

// Enabled reports whether assist is on.
func (a *Actuator) Enabled() bool {
	return a.enabled.Load()
}

// SetPreset swaps the vertical aim ratio.
func (a *Actuator) SetPreset(name string) error {
	r, err := Ratio(name)
	if err != nil {
		return err
	}
	a.ratio.Store(math.Float64bits(r))
	a.preset.Store(&name)
	return nil
}

// Preset returns the active preset name.
func (a *Actuator) Preset() string {
	if p := a.preset.Load(); p != nil {
		return *p
	}
	return ""
}

// Ratio returns the active aim ratio.
func (a *Actuator) Ratio() float64 {
	return math.Float64frombits(a.ratio.Load())
}

// Moves returns how many movements have been emitted.
func (a *Actuator) Moves() uint64 {
	return a.moves.Load()
}
