package engine

import "time"

// Snapshot is a read-only view of the loop handed to observers
// Renderers and listeners consume snapshots, never scheduler internals
type Snapshot struct {
	State          State
	GameTime       time.Duration
	Frame          uint64
	FPS            int
	AvgFrameTime   time.Duration
	PerfModeActive bool
	GraceActive    bool
}

// Snapshot captures the current loop state
func (s *LoopScheduler) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		State:       StateStopped,
		GameTime:    s.st.gameTime,
		Frame:       s.frame,
		GraceActive: s.st.graceActive,
	}
	if s.st.started {
		if s.st.paused {
			snap.State = StatePaused
		} else {
			snap.State = StateRunning
		}
	}
	s.mu.Unlock()

	snap.FPS = s.monitor.FPS()
	snap.AvgFrameTime = s.monitor.AvgFrameTime()
	snap.PerfModeActive = s.monitor.ModeActive()
	return snap
}

// State returns the current lifecycle state
func (s *LoopScheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.st.started {
		return StateStopped
	}
	if s.st.paused {
		return StatePaused
	}
	return StateRunning
}

// GameTime returns accumulated game time, excluding paused intervals
func (s *LoopScheduler) GameTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.gameTime
}

// GraceActive returns whether the post-start grace period is still running
func (s *LoopScheduler) GraceActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.graceActive
}

// GraceStart returns the grace period start in game time
// Shifts forward across pauses while the period is active
func (s *LoopScheduler) GraceStart() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.graceStart
}

// Monitor exposes the performance monitor for direct inspection
func (s *LoopScheduler) Monitor() *PerformanceMonitor {
	return s.monitor
}
