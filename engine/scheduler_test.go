package engine

import (
	"testing"
	"time"

	"github.com/lixenwraith/frameloop/events"
)

// loopRecorder captures callback activity for assertions
type loopRecorder struct {
	updates []time.Duration
	renders int
	order   []string
	modes   []bool
	events  []events.EventType
}

func (r *loopRecorder) callbacks() Callbacks {
	return Callbacks{
		Update: func(delta time.Duration) {
			r.updates = append(r.updates, delta)
			r.order = append(r.order, "update")
		},
		Render: func() {
			r.renders++
			r.order = append(r.order, "render")
		},
		ApplyPerformanceMode: func(active bool) {
			r.modes = append(r.modes, active)
		},
	}
}

func newTestScheduler(t *testing.T) (*LoopScheduler, *ManualFrameSource, *ManualSignalSource, *loopRecorder) {
	t.Helper()

	src := NewManualFrameSource()
	sigs := NewManualSignalSource()
	rec := &loopRecorder{}

	s := NewLoopScheduler(src, sigs, rec.callbacks(), Config{})
	s.Events().Register(events.ListenerFunc{
		Types: []events.EventType{
			events.EventStarted, events.EventStopped, events.EventPaused,
			events.EventResumed, events.EventGraceEnded,
		},
		Fn: func(ev events.Event) {
			rec.events = append(rec.events, ev.Type)
		},
	})
	return s, src, sigs, rec
}

func countEvents(rec *loopRecorder, t events.EventType) int {
	n := 0
	for _, et := range rec.events {
		if et == t {
			n++
		}
	}
	return n
}

// TestSchedulerInitialState verifies construction leaves the loop stopped
func TestSchedulerInitialState(t *testing.T) {
	s, src, _, rec := newTestScheduler(t)

	if got := s.State(); got != StateStopped {
		t.Errorf("State = %v, want Stopped", got)
	}
	if src.PendingCount() != 0 {
		t.Error("frame scheduled before Start")
	}

	// Control operations are no-ops from Stopped
	s.Pause()
	s.Resume()
	if got := s.State(); got != StateStopped {
		t.Errorf("State after Pause/Resume = %v, want Stopped", got)
	}
	if len(rec.events) != 0 {
		t.Errorf("events = %v, want none", rec.events)
	}
}

// TestStartIdempotent verifies repeated Start is equivalent to one Start
func TestStartIdempotent(t *testing.T) {
	s, src, _, rec := newTestScheduler(t)

	s.Start()
	s.Start()

	if got := s.State(); got != StateRunning {
		t.Errorf("State = %v, want Running", got)
	}
	if got := src.PendingCount(); got != 1 {
		t.Errorf("pending frames = %d, want 1", got)
	}
	if got := countEvents(rec, events.EventStarted); got != 1 {
		t.Errorf("Started events = %d, want 1", got)
	}

	src.Fire(16 * time.Millisecond)
	if len(rec.updates) != 1 {
		t.Errorf("updates = %d, want 1", len(rec.updates))
	}
}

// TestStopIsTerminal verifies a stopped loop stays silent until restarted
func TestStopIsTerminal(t *testing.T) {
	s, src, _, rec := newTestScheduler(t)

	s.Start()
	s.Stop()

	if got := s.State(); got != StateStopped {
		t.Errorf("State = %v, want Stopped", got)
	}

	// The cancelled frame must not run its body
	src.Fire(16 * time.Millisecond)
	if len(rec.updates) != 0 {
		t.Errorf("updates after Stop = %d, want 0", len(rec.updates))
	}

	// Resume is not a restart
	s.Resume()
	if got := s.State(); got != StateStopped {
		t.Errorf("State after Resume = %v, want Stopped", got)
	}

	s.Stop() // second Stop is a no-op
	if got := countEvents(rec, events.EventStopped); got != 1 {
		t.Errorf("Stopped events = %d, want 1", got)
	}
}

// TestUpdateThenRenderOrder verifies the strict per-tick ordering
func TestUpdateThenRenderOrder(t *testing.T) {
	s, src, _, rec := newTestScheduler(t)

	s.Start()
	src.Fire(16 * time.Millisecond)
	src.Fire(32 * time.Millisecond)
	src.Fire(48 * time.Millisecond)

	want := []string{"update", "render", "update", "render", "update", "render"}
	if len(rec.order) != len(want) {
		t.Fatalf("order = %v, want %v", rec.order, want)
	}
	for i := range want {
		if rec.order[i] != want[i] {
			t.Fatalf("order[%d] = %q, want %q", i, rec.order[i], want[i])
		}
	}
}

// TestPauseResumeAccounting replays the end-to-end scenario: game time must
// exclude exactly the paused wall time, and the grace start shifts forward
func TestPauseResumeAccounting(t *testing.T) {
	s, src, _, rec := newTestScheduler(t)

	s.Start()
	src.Fire(16 * time.Millisecond)

	if got := s.GameTime(); got != 16*time.Millisecond {
		t.Errorf("GameTime after first tick = %v, want 16ms", got)
	}
	if got := rec.updates[0]; got != 16*time.Millisecond {
		t.Errorf("delta = %v, want 16ms", got)
	}

	src.SetNow(100 * time.Millisecond)
	s.Pause()
	if got := s.State(); got != StatePaused {
		t.Fatalf("State = %v, want Paused", got)
	}

	src.SetNow(600 * time.Millisecond)
	s.Resume()

	src.Fire(616 * time.Millisecond)
	if got := s.GameTime(); got != 116*time.Millisecond {
		t.Errorf("GameTime = %v, want 116ms", got)
	}
	if got := s.GraceStart(); got != 500*time.Millisecond {
		t.Errorf("GraceStart = %v, want 500ms", got)
	}
	if !s.GraceActive() {
		t.Error("grace period deactivated early")
	}

	// Delta across the pause clamps to the configured maximum
	if got := rec.updates[1]; got != 50*time.Millisecond {
		t.Errorf("delta across pause = %v, want 50ms clamp", got)
	}
}

// TestPauseNoOpWhenPaused verifies double Pause changes nothing
func TestPauseNoOpWhenPaused(t *testing.T) {
	s, src, _, rec := newTestScheduler(t)

	s.Start()
	src.SetNow(100 * time.Millisecond)
	s.Pause()

	src.SetNow(300 * time.Millisecond)
	s.Pause() // must not move the pause timestamp

	src.SetNow(600 * time.Millisecond)
	s.Resume()

	// Accounted pause is 600-100, not 600-300
	src.Fire(616 * time.Millisecond)
	if got := s.GameTime(); got != 116*time.Millisecond {
		t.Errorf("GameTime = %v, want 116ms", got)
	}
	if got := countEvents(rec, events.EventPaused); got != 1 {
		t.Errorf("Paused events = %d, want 1", got)
	}
}

// TestCancelledTickNeverRuns verifies a pause cancels the pending frame
// before any later dispatch
func TestCancelledTickNeverRuns(t *testing.T) {
	s, src, _, rec := newTestScheduler(t)

	s.Start()
	s.Pause()

	src.Fire(50 * time.Millisecond)
	if len(rec.updates) != 0 {
		t.Errorf("updates while paused = %d, want 0", len(rec.updates))
	}
	if rec.renders != 0 {
		t.Errorf("renders while paused = %d, want 0", rec.renders)
	}
}

// TestGraceDeactivatesOnce verifies grace ends exactly once per session
func TestGraceDeactivatesOnce(t *testing.T) {
	s, src, _, rec := newTestScheduler(t)

	s.Start()
	if !s.GraceActive() {
		t.Fatal("grace not active after Start")
	}

	src.Fire(16 * time.Millisecond)
	src.Fire(2999 * time.Millisecond)
	if !s.GraceActive() {
		t.Fatal("grace ended before 3000ms of game time")
	}

	src.Fire(3000 * time.Millisecond)
	if s.GraceActive() {
		t.Fatal("grace still active at 3000ms of game time")
	}

	src.Fire(3016 * time.Millisecond)
	src.Fire(4000 * time.Millisecond)
	if got := countEvents(rec, events.EventGraceEnded); got != 1 {
		t.Errorf("GraceEnded events = %d, want 1", got)
	}

	// A new session re-arms the grace period
	s.Stop()
	src.SetNow(5000 * time.Millisecond)
	s.Start()
	if !s.GraceActive() {
		t.Error("grace not re-armed by Start")
	}
}

// TestStartAtNonzeroHostTime verifies game time is measured from Start,
// not from the host epoch
func TestStartAtNonzeroHostTime(t *testing.T) {
	s, src, _, _ := newTestScheduler(t)

	src.SetNow(10 * time.Second)
	s.Start()

	src.Fire(10*time.Second + 16*time.Millisecond)
	if got := s.GameTime(); got != 16*time.Millisecond {
		t.Errorf("GameTime = %v, want 16ms", got)
	}
	if !s.GraceActive() {
		t.Error("grace not active shortly after a late Start")
	}
}

// TestAutoPauseOnHostSignals verifies focus-lost and hidden pause the loop,
// and focus-gain never auto-resumes
func TestAutoPauseOnHostSignals(t *testing.T) {
	s, _, sigs, rec := newTestScheduler(t)

	s.Start()
	sigs.Emit(events.Signal{Kind: events.SignalFocusLost})
	if got := s.State(); got != StatePaused {
		t.Fatalf("State after focus-lost = %v, want Paused", got)
	}

	sigs.Emit(events.Signal{Kind: events.SignalFocusGained})
	if got := s.State(); got != StatePaused {
		t.Errorf("State after focus-gained = %v, want still Paused", got)
	}

	s.Resume()
	sigs.Emit(events.Signal{Kind: events.SignalHidden})
	if got := s.State(); got != StatePaused {
		t.Errorf("State after hidden = %v, want Paused", got)
	}

	if got := countEvents(rec, events.EventPaused); got != 2 {
		t.Errorf("Paused events = %d, want 2", got)
	}
}

// TestSurfaceChangedPublished verifies surface signals reach listeners with
// their dimensions
func TestSurfaceChangedPublished(t *testing.T) {
	s, _, sigs, _ := newTestScheduler(t)

	var got *events.SurfacePayload
	s.Events().Register(events.ListenerFunc{
		Types: []events.EventType{events.EventSurfaceChanged},
		Fn: func(ev events.Event) {
			got = ev.Payload.(*events.SurfacePayload)
		},
	})

	sigs.Emit(events.Signal{Kind: events.SignalSurfaceChanged, Width: 120, Height: 40})
	if got == nil {
		t.Fatal("surface event not published")
	}
	if got.Width != 120 || got.Height != 40 {
		t.Errorf("payload = %dx%d, want 120x40", got.Width, got.Height)
	}
}

// TestCleanupDetachesSignals verifies Cleanup stops the loop, unsubscribes,
// and is safe to repeat
func TestCleanupDetachesSignals(t *testing.T) {
	s, _, sigs, _ := newTestScheduler(t)

	s.Start()
	if sigs.SubscriberCount() != 1 {
		t.Fatalf("subscribers = %d, want 1", sigs.SubscriberCount())
	}

	s.Cleanup()
	s.Cleanup()

	if got := s.State(); got != StateStopped {
		t.Errorf("State = %v, want Stopped", got)
	}
	if sigs.SubscriberCount() != 0 {
		t.Errorf("subscribers = %d, want 0 after Cleanup", sigs.SubscriberCount())
	}

	// Signals after Cleanup are ignored
	sigs.Emit(events.Signal{Kind: events.SignalFocusLost})
	if got := s.State(); got != StateStopped {
		t.Errorf("State = %v, want Stopped", got)
	}
}

// TestPerformanceModeAppliedThroughLoop drives low-FPS ticks through the
// scheduler and expects the quality callback to fire once
func TestPerformanceModeAppliedThroughLoop(t *testing.T) {
	s, src, _, rec := newTestScheduler(t)

	s.Start()
	// 25ms frames = 40 FPS; the monitor primes at the first tick (t=25ms),
	// so the first low sample lands at 525ms and sustain completes at 3525ms
	for ts := 25 * time.Millisecond; ts <= 4000*time.Millisecond; ts += 25 * time.Millisecond {
		src.Fire(ts)
	}

	if len(rec.modes) != 1 || !rec.modes[0] {
		t.Fatalf("mode applications = %v, want [true]", rec.modes)
	}
	if !s.Snapshot().PerfModeActive {
		t.Error("snapshot does not report active performance mode")
	}
}

// TestSnapshotReflectsState verifies the observer view tracks the machine
func TestSnapshotReflectsState(t *testing.T) {
	s, src, _, _ := newTestScheduler(t)

	if got := s.Snapshot().State; got != StateStopped {
		t.Errorf("snapshot state = %v, want Stopped", got)
	}

	s.Start()
	src.Fire(16 * time.Millisecond)
	snap := s.Snapshot()
	if snap.State != StateRunning {
		t.Errorf("snapshot state = %v, want Running", snap.State)
	}
	if snap.Frame != 1 {
		t.Errorf("snapshot frame = %d, want 1", snap.Frame)
	}
	if !snap.GraceActive {
		t.Error("snapshot grace = false, want true")
	}

	s.Pause()
	if got := s.Snapshot().State; got != StatePaused {
		t.Errorf("snapshot state = %v, want Paused", got)
	}
}

// TestGameTimeExcludesAllPauses exercises repeated pause/resume cycles
func TestGameTimeExcludesAllPauses(t *testing.T) {
	s, src, _, _ := newTestScheduler(t)

	s.Start()
	src.Fire(100 * time.Millisecond)

	// Three pauses of 200ms, 300ms and 500ms
	pauses := []struct{ at, until time.Duration }{
		{200 * time.Millisecond, 400 * time.Millisecond},
		{500 * time.Millisecond, 800 * time.Millisecond},
		{900 * time.Millisecond, 1400 * time.Millisecond},
	}
	for _, p := range pauses {
		src.SetNow(p.at)
		s.Pause()
		src.SetNow(p.until)
		s.Resume()
	}

	src.Fire(2000 * time.Millisecond)
	if got := s.GameTime(); got != 1000*time.Millisecond {
		t.Errorf("GameTime = %v, want 1000ms (2000ms wall minus 1000ms paused)", got)
	}
}
