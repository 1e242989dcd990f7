package terminal

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/frameloop/engine"
	"github.com/lixenwraith/frameloop/events"
)

func newTestHost(t *testing.T) *Host {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	t.Cleanup(screen.Fini)

	return NewHost(screen, 16*time.Millisecond, nil)
}

// TestHostTranslateResize verifies resize events become surface signals
func TestHostTranslateResize(t *testing.T) {
	h := newTestHost(t)

	var got []events.Signal
	h.Subscribe(func(sig events.Signal) { got = append(got, sig) })

	h.translate(tcell.NewEventResize(100, 40))
	h.dispatchSignals()

	if len(got) != 1 {
		t.Fatalf("signals = %d, want 1", len(got))
	}
	if got[0].Kind != events.SignalSurfaceChanged {
		t.Errorf("kind = %v, want SurfaceChanged", got[0].Kind)
	}
	if got[0].Width != 100 || got[0].Height != 40 {
		t.Errorf("dims = %dx%d, want 100x40", got[0].Width, got[0].Height)
	}
}

// TestHostTranslateFocus verifies focus edges map to the right signals in order
func TestHostTranslateFocus(t *testing.T) {
	h := newTestHost(t)

	var got []events.SignalKind
	h.Subscribe(func(sig events.Signal) { got = append(got, sig.Kind) })

	h.translate(tcell.NewEventFocus(false))
	h.translate(tcell.NewEventFocus(true))
	h.dispatchSignals()

	if len(got) != 2 {
		t.Fatalf("signals = %d, want 2", len(got))
	}
	if got[0] != events.SignalFocusLost || got[1] != events.SignalFocusGained {
		t.Errorf("order = %v, want [FocusLost FocusGained]", got)
	}
}

// TestHostUnsubscribe verifies removed subscribers receive nothing
func TestHostUnsubscribe(t *testing.T) {
	h := newTestHost(t)

	calls := 0
	sub := h.Subscribe(func(events.Signal) { calls++ })
	h.Unsubscribe(sub)

	h.translate(tcell.NewEventFocus(false))
	h.dispatchSignals()

	if calls != 0 {
		t.Errorf("calls = %d, want 0 after Unsubscribe", calls)
	}
}

// TestHostFrameFireOnce verifies frame requests are one-shot
func TestHostFrameFireOnce(t *testing.T) {
	h := newTestHost(t)

	var stamps []time.Duration
	h.RequestFrame(func(ts time.Duration) { stamps = append(stamps, ts) })

	h.fireFrames(16 * time.Millisecond)
	h.fireFrames(32 * time.Millisecond)

	if len(stamps) != 1 {
		t.Fatalf("fires = %d, want 1", len(stamps))
	}
	if stamps[0] != 16*time.Millisecond {
		t.Errorf("timestamp = %v, want 16ms", stamps[0])
	}
}

// TestHostCancelFrame verifies a cancelled request never fires
func TestHostCancelFrame(t *testing.T) {
	h := newTestHost(t)

	fired := 0
	req := h.RequestFrame(func(time.Duration) { fired++ })
	h.CancelFrame(req)

	h.fireFrames(16 * time.Millisecond)
	if fired != 0 {
		t.Errorf("fired = %d, want 0", fired)
	}
}

// TestHostKeysBuffered verifies key events reach the application channel
func TestHostKeysBuffered(t *testing.T) {
	h := newTestHost(t)

	h.translate(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone))

	select {
	case ev := <-h.Keys():
		if ev.Rune() != 'q' {
			t.Errorf("rune = %q, want 'q'", ev.Rune())
		}
	default:
		t.Fatal("no key event buffered")
	}
}

// TestHostDrivesSchedulerPause wires a real scheduler and verifies a
// focus-lost signal pauses it through the host path
func TestHostDrivesSchedulerPause(t *testing.T) {
	h := newTestHost(t)

	s := engine.NewLoopScheduler(h, h, engine.Callbacks{}, engine.Config{})
	s.Start()

	if got := s.State(); got != engine.StateRunning {
		t.Fatalf("State = %v, want Running", got)
	}

	h.translate(tcell.NewEventFocus(false))
	h.dispatchSignals()

	if got := s.State(); got != engine.StatePaused {
		t.Errorf("State = %v, want Paused after focus-lost", got)
	}

	// Focus return must not resume
	h.translate(tcell.NewEventFocus(true))
	h.dispatchSignals()
	if got := s.State(); got != engine.StatePaused {
		t.Errorf("State = %v, want still Paused", got)
	}

	s.Cleanup()
}
