// Package input provides the terminal console: key bindings for the assist
// toggle and aim presets, and a live status panel.
package input

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/teslashibe/go-circletrack/internal/log"
	"github.com/teslashibe/go-circletrack/pkg/aim"
)

// DefaultRefresh is how often the status panel is redrawn.
const DefaultRefresh = 250 * time.Millisecond

// Controls is the runtime-adjustable part of the actuator.
type Controls interface {
	Toggle() bool
	Enabled() bool
	SetPreset(name string) error
	Preset() string
}

// StatusFunc returns the lines shown under the header.
type StatusFunc func() []string

// presetKeys maps number keys to presets, top to bottom.
var presetKeys = map[rune]string{
	'1': aim.PresetHead,
	'2': aim.PresetChest,
	'3': aim.PresetBelly,
	'4': aim.PresetFeet,
}

var (
	styleTitle = tcell.StyleDefault.Foreground(tcell.ColorPurple).Bold(true)
	styleOn    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleOff   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleText  = tcell.StyleDefault
	styleHelp  = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Console reads keys from a tcell screen and renders status.
type Console struct {
	screen   tcell.Screen
	controls Controls
	status   StatusFunc
	refresh  time.Duration
}

// NewConsole creates a console on an initialized screen.
// status may be nil.
func NewConsole(screen tcell.Screen, controls Controls, status StatusFunc) *Console {
	return &Console{
		screen:   screen,
		controls: controls,
		status:   status,
		refresh:  DefaultRefresh,
	}
}

// OpenScreen creates and initializes the terminal screen.
func OpenScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	return screen, nil
}

// HandleEvent applies one event. It returns false when the user asked to quit.
func (c *Console) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}

		switch r := ev.Rune(); r {
		case 'q', 'Q':
			return false
		case 'o', 'O':
			on := c.controls.Toggle()
			log.Info("assist toggled", "enabled", on)
		default:
			if name, ok := presetKeys[r]; ok {
				if err := c.controls.SetPreset(name); err != nil {
					log.Warn("preset change failed", "preset", name, "error", err)
					return true
				}
				log.Info("aim preset changed", "preset", name)
			}
		}

	case *tcell.EventResize:
		c.screen.Sync()
	}

	return true
}

// Run polls keys and redraws until ctx is cancelled or a quit key is pressed.
// It returns nil in both cases; the caller decides what quitting means.
func (c *Console) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.refresh)
	defer ticker.Stop()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				// screen finalized
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	c.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !c.HandleEvent(ev) {
				log.Info("quit requested from console")
				return nil
			}
			c.Draw()

		case <-ticker.C:
			c.Draw()
		}
	}
}

// Draw renders the header, controls and status lines.
func (c *Console) Draw() {
	c.screen.Clear()

	row := 0
	c.drawText(0, row, styleTitle, "circletrack")
	row += 2

	assist, style := "off", styleOff
	if c.controls.Enabled() {
		assist, style = "on", styleOn
	}
	x := c.drawText(0, row, styleText, "assist: ")
	x = c.drawText(x, row, style, assist)
	c.drawText(x, row, styleText, "   preset: "+c.controls.Preset())
	row += 2

	if c.status != nil {
		for _, line := range c.status() {
			c.drawText(0, row, styleText, line)
			row++
		}
		row++
	}

	c.drawText(0, row, styleHelp, "[o] toggle assist  [1-4] head/chest/belly/feet  [q] quit")
	c.screen.Show()
}

// drawText writes s starting at (x, y) and returns the column after it.
func (c *Console) drawText(x, y int, style tcell.Style, s string) int {
	for _, r := range s {
		c.screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

// Close restores the terminal.
func (c *Console) Close() {
	c.screen.Fini()
}
