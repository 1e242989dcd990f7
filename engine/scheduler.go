package engine

import (
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/frameloop/events"
	"github.com/lixenwraith/frameloop/parameter"
	"github.com/lixenwraith/frameloop/status"
)

// State is the scheduler lifecycle state
type State int

const (
	StateStopped State = iota
	StateRunning
	StatePaused
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// Callbacks is the injected boundary the scheduler drives
// All callbacks are optional; nil entries are skipped
type Callbacks struct {
	// Update advances the simulation by the clamped delta
	Update func(delta time.Duration)

	// Render produces one visible frame, invoked strictly after Update
	Render func()

	// OnStateUpdate observes the loop after every observable change
	OnStateUpdate func(snap Snapshot)

	// ApplyPerformanceMode adjusts quality on degraded mode enter/exit
	ApplyPerformanceMode func(active bool)
}

// Config tunes the scheduler
// Zero values fall back to the package defaults in parameter
type Config struct {
	// GracePeriod is the post-start window during which warm-up rules apply
	GracePeriod time.Duration

	// DeltaClamp bounds the per-tick delta after a stall
	DeltaClamp time.Duration

	// Perf tunes FPS sampling and hysteresis
	Perf PerfConfig

	// Logger receives non-fatal diagnostics; nil discards
	Logger *log.Logger

	// Status receives loop metrics; nil skips publication
	Status *status.Registry
}

func (c Config) withDefaults() Config {
	if c.GracePeriod == 0 {
		c.GracePeriod = parameter.GracePeriodDuration
	}
	if c.DeltaClamp == 0 {
		c.DeltaClamp = parameter.MaxFrameDelta
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard, "", 0)
	}
	return c
}

// loopState is the scheduler-owned lifecycle record
// Invariants: paused implies started; graceActive implies started;
// gameTime is monotonic while running and frozen while paused
type loopState struct {
	started            bool
	paused             bool
	graceActive        bool
	graceStart         time.Duration
	gameTime           time.Duration
	pausedAccumulated  time.Duration
	lastPauseTimestamp time.Duration
}

// LoopScheduler orchestrates the frame timer, delegates FPS bookkeeping to
// the performance monitor, drives update/render callbacks and reacts to host
// visibility signals
//
// States: Stopped -> Running (Start), Running -> Paused (Pause, focus-lost,
// hidden), Paused -> Running (Resume), Running|Paused -> Stopped (Stop).
// There is no transition between Stopped and Paused. All control operations
// are effect-free no-ops on states they do not apply to
type LoopScheduler struct {
	cfg     Config
	cb      Callbacks
	timer   *FrameTimer
	monitor *PerformanceMonitor
	router  *events.Router
	signals SignalSource
	logger  *log.Logger

	mu            sync.Mutex
	st            loopState
	epoch         time.Duration // Host time at Start, game-time zero point
	lastTimestamp time.Duration
	frame         uint64
	sub           SignalSubscription
	subscribed    bool

	// Cached metric pointers
	statFrames   *atomic.Int64
	statGameTime *status.AtomicFloat
}

// NewLoopScheduler creates a scheduler over the given host capabilities
// signals may be nil for hosts without focus/visibility notifications
func NewLoopScheduler(frames FrameSource, signals SignalSource, cb Callbacks, cfg Config) *LoopScheduler {
	cfg = cfg.withDefaults()

	s := &LoopScheduler{
		cfg:     cfg,
		cb:      cb,
		timer:   NewFrameTimer(frames),
		monitor: NewPerformanceMonitor(cfg.Perf, cfg.Status),
		router:  events.NewRouter(),
		signals: signals,
		logger:  cfg.Logger,
	}

	if cfg.Status != nil {
		s.statFrames = cfg.Status.Ints.Get("engine.frames")
		s.statGameTime = cfg.Status.Floats.Get("engine.game_time_ms")
	}

	s.monitor.OnSample(func(fps int, avg, max time.Duration) {
		s.announce(events.EventFPSSampled, &events.FPSSampledPayload{
			FPS:          fps,
			AvgFrameTime: avg,
			MaxFrameTime: max,
		})
	})
	s.monitor.OnModeChange(func(active bool, fps int) {
		if s.cb.ApplyPerformanceMode != nil {
			s.cb.ApplyPerformanceMode(active)
		}
		s.announce(events.EventPerfModeChanged, &events.PerfModePayload{
			Active: active,
			FPS:    fps,
		})
	})

	if signals != nil {
		s.sub = signals.Subscribe(s.handleSignal)
		s.subscribed = true
	}

	return s
}

// Events returns the listener registry
// Listeners must be registered before the loop starts publishing
func (s *LoopScheduler) Events() *events.Router {
	return s.router
}

// Start transitions Stopped -> Running and schedules the first frame
// Resets game time, pause accounting and arms the grace period at
// game-time zero. No-op if already started
func (s *LoopScheduler) Start() {
	s.mu.Lock()
	if s.st.started {
		s.mu.Unlock()
		return
	}

	now := s.timer.Now()
	s.epoch = now
	s.lastTimestamp = now
	s.frame = 0
	s.st = loopState{started: true, graceActive: true}
	s.monitor.Reset()
	s.timer.Schedule(s.tick)
	s.mu.Unlock()

	s.announce(events.EventStarted, nil)
}

// Stop cancels any pending frame and transitions to Stopped
// Terminal: a stopped loop needs Start to tick again. No-op if not started
func (s *LoopScheduler) Stop() {
	s.mu.Lock()
	if !s.st.started {
		s.mu.Unlock()
		return
	}

	s.timer.Cancel()
	s.st.started = false
	s.st.paused = false
	s.st.graceActive = false
	s.mu.Unlock()

	s.announce(events.EventStopped, nil)
}

// Pause cancels the pending frame and records the pause timestamp
// No-op when not running
func (s *LoopScheduler) Pause() {
	s.mu.Lock()
	if !s.st.started || s.st.paused {
		s.mu.Unlock()
		return
	}

	s.st.paused = true
	s.st.lastPauseTimestamp = s.timer.Now()
	s.timer.Cancel()
	s.mu.Unlock()

	s.announce(events.EventPaused, nil)
}

// Resume accounts the pause duration out of game time and reschedules
// While the grace period is active its start shifts forward by the pause
// duration, so grace length is unaffected by pauses. No-op when not paused
func (s *LoopScheduler) Resume() {
	s.mu.Lock()
	if !s.st.started || !s.st.paused {
		s.mu.Unlock()
		return
	}

	now := s.timer.Now()
	pauseDur := now - s.st.lastPauseTimestamp
	if pauseDur < 0 {
		pauseDur = 0
	}
	s.st.pausedAccumulated += pauseDur
	if s.st.graceActive {
		s.st.graceStart += pauseDur
	}
	s.st.paused = false
	s.timer.Schedule(s.tick)
	s.mu.Unlock()

	s.announce(events.EventResumed, nil)
}

// SetAutoPerformanceModeEnabled toggles hysteresis evaluation
func (s *LoopScheduler) SetAutoPerformanceModeEnabled(enabled bool) {
	s.monitor.SetAutoModeEnabled(enabled)
}

// Cleanup stops the loop and detaches host signal subscriptions
// Safe to call multiple times
func (s *LoopScheduler) Cleanup() {
	s.Stop()

	s.mu.Lock()
	if s.subscribed {
		s.signals.Unsubscribe(s.sub)
		s.subscribed = false
	}
	s.mu.Unlock()
}

// tick is the scheduled frame callback body
// Strict order within a tick: monitor update (with possible mode transition),
// delta, game time, grace check, Update, Render, snapshot observer, reschedule
func (s *LoopScheduler) tick(ts time.Duration) {
	s.mu.Lock()
	if !s.st.started || s.st.paused {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	// Monitor hooks (mode apply, FPS events) fire here, before Update
	s.monitor.Update(ts)

	s.mu.Lock()
	if !s.st.started || s.st.paused {
		// A control call landed during monitor hooks
		s.mu.Unlock()
		return
	}

	delta := ts - s.lastTimestamp
	if delta > s.cfg.DeltaClamp {
		delta = s.cfg.DeltaClamp
	}
	if delta < 0 {
		delta = 0
	}
	s.lastTimestamp = ts

	s.frame++
	s.st.gameTime = ts - s.epoch - s.st.pausedAccumulated

	graceEnded := false
	if s.st.graceActive && s.st.gameTime-s.st.graceStart >= s.cfg.GracePeriod {
		s.st.graceActive = false
		graceEnded = true
	}

	if s.statFrames != nil {
		s.statFrames.Store(int64(s.frame))
		s.statGameTime.Set(float64(s.st.gameTime) / float64(time.Millisecond))
	}

	cb := s.cb
	s.mu.Unlock()

	if graceEnded {
		s.announce(events.EventGraceEnded, nil)
	}

	if cb.Update != nil {
		cb.Update(delta)
	}
	if cb.Render != nil {
		cb.Render()
	}
	if cb.OnStateUpdate != nil {
		cb.OnStateUpdate(s.Snapshot())
	}

	// Reschedule only if still running; atomic with Pause/Stop cancellation
	s.mu.Lock()
	if s.st.started && !s.st.paused {
		s.timer.Schedule(s.tick)
	}
	s.mu.Unlock()
}

// handleSignal reacts to host notifications
// Focus-lost and hidden auto-pause; focus-gain never auto-resumes
func (s *LoopScheduler) handleSignal(sig events.Signal) {
	switch sig.Kind {
	case events.SignalFocusLost, events.SignalHidden:
		s.mu.Lock()
		running := s.st.started && !s.st.paused
		s.mu.Unlock()
		if running {
			s.logger.Printf("auto-pause on host signal: %v", sig.Kind)
		}
		s.Pause()

	case events.SignalSurfaceChanged:
		s.announce(events.EventSurfaceChanged, &events.SurfacePayload{
			Width:  sig.Width,
			Height: sig.Height,
		})
	}
}

// announce publishes one event and refreshes the state observer
// Never called with the scheduler mutex held, so listeners may call back in
func (s *LoopScheduler) announce(t events.EventType, payload any) {
	s.router.Publish(events.Event{
		Type:      t,
		Timestamp: s.timer.Now(),
		Payload:   payload,
	})
	if s.cb.OnStateUpdate != nil {
		s.cb.OnStateUpdate(s.Snapshot())
	}
}
