package engine

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/frameloop/parameter"
	"github.com/lixenwraith/frameloop/status"
)

// PerfConfig tunes FPS sampling and the hysteresis transition rule
// Zero values fall back to the package defaults in parameter
type PerfConfig struct {
	// LowFPSThreshold is the sampled FPS below which the degrade streak runs
	LowFPSThreshold int

	// HighFPSThreshold is the sampled FPS above which degraded mode exits immediately
	HighFPSThreshold int

	// DegradeSustain is how long FPS must stay low before degraded mode is entered
	DegradeSustain time.Duration

	// SampleInterval is the minimum elapsed time between FPS recomputations
	SampleInterval time.Duration
}

func (c PerfConfig) withDefaults() PerfConfig {
	if c.LowFPSThreshold == 0 {
		c.LowFPSThreshold = parameter.LowFPSThreshold
	}
	if c.HighFPSThreshold == 0 {
		c.HighFPSThreshold = parameter.HighFPSThreshold
	}
	if c.DegradeSustain == 0 {
		c.DegradeSustain = parameter.DegradeSustain
	}
	if c.SampleInterval == 0 {
		c.SampleInterval = parameter.FPSSampleInterval
	}
	return c
}

// PerformanceMonitor consumes raw frame timestamps, keeps a fixed ring of
// recent frame times, and drives hysteresis-based performance mode transitions
//
// FPS is recomputed only at sampling boundaries, never interpolated. Mean
// frame time is taken directly from the ring rather than back-derived from
// FPS, so reporting does not compound rounding error
type PerformanceMonitor struct {
	mu  sync.Mutex
	cfg PerfConfig

	// Frame-time ring, drop-oldest
	window [parameter.FrameTimeWindowSize]time.Duration
	head   int
	count  int

	hasPrev bool
	prev    time.Duration

	// Sampling period
	frames      int
	sampleStart time.Duration
	primed      bool // First update seen, period anchored
	fps         int
	sampled     bool // At least one FPS sample exists

	// Hysteresis
	auto         bool
	modeActive   bool
	streakActive bool
	streakStart  time.Duration

	// Invoked outside the monitor lock
	onSample     func(fps int, avg, max time.Duration)
	onModeChange func(active bool, fps int)

	// Cached metric pointers
	statFPS      *atomic.Int64
	statFrameAvg *status.AtomicFloat
	statPerfMode *atomic.Bool
}

// NewPerformanceMonitor creates a monitor with auto mode enabled
// reg may be nil to skip metric publication
func NewPerformanceMonitor(cfg PerfConfig, reg *status.Registry) *PerformanceMonitor {
	m := &PerformanceMonitor{
		cfg:  cfg.withDefaults(),
		auto: true,
	}
	if reg != nil {
		m.statFPS = reg.Ints.Get("engine.fps")
		m.statFrameAvg = reg.Floats.Get("engine.frame_time_avg_ms")
		m.statPerfMode = reg.Bools.Get("engine.perf_mode")
	}
	return m
}

// OnSample registers a callback fired after every FPS recomputation
func (m *PerformanceMonitor) OnSample(fn func(fps int, avg, max time.Duration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSample = fn
}

// OnModeChange registers a callback fired on every mode transition
func (m *PerformanceMonitor) OnModeChange(fn func(active bool, fps int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onModeChange = fn
}

// Update records one frame timestamp
// The first update anchors the sampling period without counting as a frame
func (m *PerformanceMonitor) Update(ts time.Duration) {
	m.mu.Lock()

	if !m.primed {
		m.prev = ts
		m.hasPrev = true
		m.sampleStart = ts
		m.primed = true
		m.mu.Unlock()
		return
	}

	frameTime := ts - m.prev
	if frameTime < 0 {
		frameTime = 0
	}
	m.prev = ts

	m.window[m.head] = frameTime
	m.head = (m.head + 1) % parameter.FrameTimeWindowSize
	if m.count < parameter.FrameTimeWindowSize {
		m.count++
	}

	m.frames++

	var sampledNow bool
	if elapsed := ts - m.sampleStart; elapsed >= m.cfg.SampleInterval {
		m.fps = int(math.Round(float64(m.frames) * float64(time.Second) / float64(elapsed)))
		m.sampled = true
		sampledNow = true
		m.frames = 0
		m.sampleStart = ts

		if m.statFPS != nil {
			m.statFPS.Store(int64(m.fps))
			m.statFrameAvg.Set(float64(m.avgFrameTimeLocked()) / float64(time.Millisecond))
		}
	}

	transitioned, active := m.evaluateHysteresisLocked(ts)

	fps := m.fps
	avg := m.avgFrameTimeLocked()
	maxFT := m.maxFrameTimeLocked()
	onSample := m.onSample
	onModeChange := m.onModeChange
	m.mu.Unlock()

	if sampledNow && onSample != nil {
		onSample(fps, avg, maxFT)
	}
	if transitioned && onModeChange != nil {
		onModeChange(active, fps)
	}
}

// evaluateHysteresisLocked applies the asymmetric transition rule
// Enter: FPS continuously below LowFPSThreshold for DegradeSustain
// Exit: FPS above HighFPSThreshold, no sustain requirement
func (m *PerformanceMonitor) evaluateHysteresisLocked(ts time.Duration) (transitioned, active bool) {
	if !m.auto || !m.sampled {
		return false, m.modeActive
	}

	if m.modeActive {
		if m.fps > m.cfg.HighFPSThreshold {
			m.modeActive = false
			m.streakActive = false
			if m.statPerfMode != nil {
				m.statPerfMode.Store(false)
			}
			return true, false
		}
		return false, true
	}

	if m.fps < m.cfg.LowFPSThreshold {
		if !m.streakActive {
			m.streakActive = true
			m.streakStart = ts
		} else if ts-m.streakStart >= m.cfg.DegradeSustain {
			m.modeActive = true
			m.streakActive = false
			if m.statPerfMode != nil {
				m.statPerfMode.Store(true)
			}
			return true, true
		}
	} else {
		// Streak resets the instant FPS recovers, even briefly
		m.streakActive = false
	}
	return false, false
}

// SetAutoModeEnabled gates hysteresis evaluation
// The streak resets on every toggle so stale state cannot trigger an
// immediate transition. An already-active mode is not exited
func (m *PerformanceMonitor) SetAutoModeEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auto = enabled
	m.streakActive = false
}

// AutoModeEnabled returns whether hysteresis evaluation is active
func (m *PerformanceMonitor) AutoModeEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.auto
}

// Reset zeroes the ring, counters, streak and FPS
// The auto-mode flag and an active degraded mode survive the reset
func (m *PerformanceMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.head = 0
	m.count = 0
	m.hasPrev = false
	m.prev = 0
	m.frames = 0
	m.sampleStart = 0
	m.primed = false
	m.fps = 0
	m.sampled = false
	m.streakActive = false

	if m.statFPS != nil {
		m.statFPS.Store(0)
		m.statFrameAvg.Set(0)
	}
}

// FPS returns the last sampled FPS, 0 before the first sample
func (m *PerformanceMonitor) FPS() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fps
}

// ModeActive returns whether degraded performance mode is active
func (m *PerformanceMonitor) ModeActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modeActive
}

// AvgFrameTime returns the mean frame time over the ring, 0 when empty
func (m *PerformanceMonitor) AvgFrameTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.avgFrameTimeLocked()
}

// MaxFrameTime returns the worst frame time over the ring, 0 when empty
func (m *PerformanceMonitor) MaxFrameTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxFrameTimeLocked()
}

// WindowLen returns the number of frame times currently in the ring
func (m *PerformanceMonitor) WindowLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

func (m *PerformanceMonitor) avgFrameTimeLocked() time.Duration {
	if m.count == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < m.count; i++ {
		sum += m.window[i]
	}
	return sum / time.Duration(m.count)
}

func (m *PerformanceMonitor) maxFrameTimeLocked() time.Duration {
	var worst time.Duration
	for i := 0; i < m.count; i++ {
		if m.window[i] > worst {
			worst = m.window[i]
		}
	}
	return worst
}
