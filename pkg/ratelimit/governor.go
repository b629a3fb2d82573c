// Package ratelimit provides the cooperative frame-rate governor and rolling
// rate meter shared by every pipeline stage.
//
// Each stage owns its own Governor: capture, detection, processing and the
// outer loop all cap independently at the same target rate.
package ratelimit

import (
	"context"
	"time"
)

// Governor caps a loop at a target rate using measure-then-sleep.
// It is not a scheduler: a stage that overruns its budget simply runs late.
type Governor struct {
	period time.Duration
	sleep  func(time.Duration)
}

// NewGovernor creates a governor for the given calls per second.
// A non-positive fps disables throttling.
func NewGovernor(fps float64) *Governor {
	g := &Governor{sleep: time.Sleep}
	if fps > 0 {
		g.period = time.Duration(float64(time.Second) / fps)
	}
	return g
}

// Period returns the per-iteration budget (zero when unlimited).
func (g *Governor) Period() time.Duration {
	return g.period
}

// Remaining returns how much of the budget is left for work started at start.
func (g *Governor) Remaining(start time.Time) time.Duration {
	if g.period <= 0 {
		return 0
	}
	left := g.period - time.Since(start)
	if left < 0 {
		return 0
	}
	return left
}

// Wait blocks until the budget for work started at start has elapsed.
func (g *Governor) Wait(start time.Time) {
	if left := g.Remaining(start); left > 0 {
		g.sleep(left)
	}
}

// WaitContext is Wait, but returns early with ctx.Err() when ctx is done.
func (g *Governor) WaitContext(ctx context.Context, start time.Time) error {
	left := g.Remaining(start)
	if left <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(left)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
