package aim

import (
	"sync/atomic"

	"github.com/go-vgo/robotgo"
	"github.com/teslashibe/go-circletrack/internal/log"
)

// Mover injects relative pointer movement.
type Mover interface {
	MoveRelative(dx, dy int) error
}

// RobotMover moves the system pointer with robotgo.
type RobotMover struct{}

// NewRobotMover creates a mover for the primary display.
func NewRobotMover() *RobotMover {
	return &RobotMover{}
}

// MoveRelative moves the pointer by (dx, dy) pixels.
func (m *RobotMover) MoveRelative(dx, dy int) error {
	robotgo.MoveRelative(dx, dy)
	return nil
}

// LogMover logs movements instead of injecting them (dry run).
type LogMover struct {
	moves atomic.Uint64
}

// MoveRelative logs the movement at debug level.
func (m *LogMover) MoveRelative(dx, dy int) error {
	n := m.moves.Add(1)
	log.Debug("aim: dry-run move", "dx", dx, "dy", dy, "n", n)
	return nil
}

// Moves returns how many movements were logged.
func (m *LogMover) Moves() uint64 {
	return m.moves.Load()
}
