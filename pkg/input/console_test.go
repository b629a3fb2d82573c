package input

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/teslashibe/go-circletrack/pkg/aim"
)

type fakeControls struct {
	mu      sync.Mutex
	enabled bool
	preset  string
	toggles int
}

func (f *fakeControls) Toggle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = !f.enabled
	f.toggles++
	return f.enabled
}

func (f *fakeControls) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func (f *fakeControls) SetPreset(name string) error {
	if _, err := aim.Ratio(name); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.preset = name
	return nil
}

func (f *fakeControls) Preset() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preset
}

func newTestConsole(t *testing.T, status StatusFunc) (*Console, tcell.SimulationScreen, *fakeControls) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init simulation screen: %v", err)
	}
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)

	controls := &fakeControls{preset: aim.PresetHead}
	return NewConsole(screen, controls, status), screen, controls
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func rowText(screen tcell.SimulationScreen, y int) string {
	w, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func TestHandleEvent_Toggle(t *testing.T) {
	c, _, controls := newTestConsole(t, nil)

	if !c.HandleEvent(runeKey('o')) {
		t.Fatal("toggle key requested quit")
	}
	if !controls.Enabled() {
		t.Error("assist not enabled after 'o'")
	}
	c.HandleEvent(runeKey('O'))
	if controls.Enabled() {
		t.Error("assist still enabled after second toggle")
	}
}

func TestHandleEvent_Presets(t *testing.T) {
	tests := []struct {
		key  rune
		want string
	}{
		{'1', aim.PresetHead},
		{'2', aim.PresetChest},
		{'3', aim.PresetBelly},
		{'4', aim.PresetFeet},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			c, _, controls := newTestConsole(t, nil)
			controls.preset = ""
			if !c.HandleEvent(runeKey(tt.key)) {
				t.Fatal("preset key requested quit")
			}
			if got := controls.Preset(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandleEvent_Quit(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
	}{
		{"q", runeKey('q')},
		{"Q", runeKey('Q')},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)},
		{"ctrl-c", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestConsole(t, nil)
			if c.HandleEvent(tt.ev) {
				t.Error("expected quit")
			}
		})
	}
}

func TestHandleEvent_IgnoresOtherKeys(t *testing.T) {
	c, _, controls := newTestConsole(t, nil)

	for _, ev := range []*tcell.EventKey{
		runeKey('x'),
		runeKey('5'),
		tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone),
	} {
		if !c.HandleEvent(ev) {
			t.Errorf("key %v requested quit", ev.Name())
		}
	}
	if controls.toggles != 0 || controls.Preset() != aim.PresetHead {
		t.Errorf("state changed by unbound keys: %+v", controls)
	}
}

func TestDraw(t *testing.T) {
	c, screen, controls := newTestConsole(t, func() []string {
		return []string{"mode: tracking", "loop: 150.0/s"}
	})
	controls.enabled = true

	c.Draw()

	if got := rowText(screen, 0); got != "circletrack" {
		t.Errorf("title: got %q", got)
	}
	if got := rowText(screen, 2); got != "assist: on   preset: head" {
		t.Errorf("controls line: got %q", got)
	}
	if got := rowText(screen, 4); got != "mode: tracking" {
		t.Errorf("status line: got %q", got)
	}
	if got := rowText(screen, 7); !strings.HasPrefix(got, "[o] toggle assist") {
		t.Errorf("help line: got %q", got)
	}
}

func TestRun_QuitKey(t *testing.T) {
	c, screen, controls := newTestConsole(t, nil)
	c.refresh = 10 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	if err := screen.PostEvent(runeKey('o')); err != nil {
		t.Fatalf("post event: %v", err)
	}
	if err := screen.PostEvent(runeKey('q')); err != nil {
		t.Fatalf("post event: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after quit key")
	}
	if !controls.Enabled() {
		t.Error("toggle before quit was not applied")
	}
}

func TestRun_ContextCancel(t *testing.T) {
	c, _, _ := newTestConsole(t, nil)
	c.refresh = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
