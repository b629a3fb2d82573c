package pipeline

import (
	"fmt"
	"time"

	"github.com/teslashibe/go-circletrack/pkg/tracking"
)

// Stats is a point-in-time snapshot of the whole pipeline.
type Stats struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`

	// Rates per second over the last window
	LoopFPS    float64 `json:"loop_fps"`
	CaptureFPS float64 `json:"capture_fps"`
	ProcessFPS float64 `json:"process_fps"`
	DetectFPS  float64 `json:"detect_fps"`

	Mode         tracking.Mode `json:"mode"`
	LostFrames   int           `json:"lost_frames"`
	Acquisitions uint64        `json:"acquisitions"`
	Losses       uint64        `json:"losses"`

	Iterations uint64 `json:"iterations"`
	Skipped    uint64 `json:"skipped"` // iterations with no frame yet
	Detections uint64 `json:"detections"`
	Moves      uint64 `json:"moves"`

	Assist bool   `json:"assist"`
	Preset string `json:"preset"`
}

// Lines renders the stats for the terminal status panel.
func (s Stats) Lines() []string {
	return []string{
		fmt.Sprintf("mode: %-10s lost: %d  acquired: %d  lost targets: %d",
			s.Mode, s.LostFrames, s.Acquisitions, s.Losses),
		fmt.Sprintf("loop: %6.1f/s  capture: %6.1f/s  process: %6.1f/s  detect: %6.1f/s",
			s.LoopFPS, s.CaptureFPS, s.ProcessFPS, s.DetectFPS),
		fmt.Sprintf("detections: %d  moves: %d  skipped: %d", s.Detections, s.Moves, s.Skipped),
		fmt.Sprintf("run: %s  up: %s", s.RunID, time.Since(s.StartedAt).Truncate(time.Second)),
	}
}

// Optional collaborator views used to fill Stats.
type (
	rater interface{ FPS() float64 }

	trackerStats interface{ Stats() tracking.Stats }

	aimStatus interface {
		Enabled() bool
		Preset() string
		Moves() uint64
	}
)

// Stats collects a snapshot from the loop and every collaborator that
// exposes its own counters.
func (p *Pipeline) Stats() Stats {
	s := Stats{
		RunID:      p.runID.String(),
		StartedAt:  p.startedAt,
		LoopFPS:    p.meter.Rate(),
		Iterations: p.iterations.Load(),
		Skipped:    p.skipped.Load(),
		Detections: p.detections.Load(),
	}

	if r, ok := p.frames.(rater); ok {
		s.CaptureFPS = r.FPS()
	}
	if p.detectRate != nil {
		s.DetectFPS = p.detectRate()
	}
	if t, ok := p.tracker.(trackerStats); ok {
		ts := t.Stats()
		s.ProcessFPS = ts.ProcessFPS
		s.Mode = ts.Mode
		s.LostFrames = ts.LostFrames
		s.Acquisitions = ts.Acquisitions
		s.Losses = ts.Losses
	}
	if a, ok := p.aimer.(aimStatus); ok {
		s.Assist = a.Enabled()
		s.Preset = a.Preset()
		s.Moves = a.Moves()
	}
	return s
}
