package parameter

import "time"

// Loop Timing
const (
	// GracePeriodDuration is the window after loop start during which
	// gameplay rules that need a warm-up (e.g. collision) stay suspended
	GracePeriodDuration = 3000 * time.Millisecond

	// MaxFrameDelta clamps the per-tick delta to avoid runaway simulation
	// steps after a stall (debugger pause, tab switch)
	MaxFrameDelta = 50 * time.Millisecond

	// DefaultFrameInterval is the reference host frame pacing (~60 FPS)
	DefaultFrameInterval = 16 * time.Millisecond
)

// Performance Monitoring
const (
	// FrameTimeWindowSize is the fixed capacity of the frame-time ring,
	// roughly the most recent second at 60 FPS
	FrameTimeWindowSize = 60

	// FPSSampleInterval is the minimum elapsed time between FPS recomputations
	FPSSampleInterval = 500 * time.Millisecond

	// LowFPSThreshold is the sampled FPS below which the degrade streak runs
	LowFPSThreshold = 45

	// HighFPSThreshold is the sampled FPS above which degraded mode exits immediately
	HighFPSThreshold = 55

	// DegradeSustain is how long FPS must stay below LowFPSThreshold
	// before degraded mode is entered
	DegradeSustain = 3000 * time.Millisecond
)

// Signal Queue
const (
	// SignalQueueSize is the fixed capacity of the host signal ring buffer
	SignalQueueSize = 256

	// SignalBufferMask is the bitmask for fast modulo operations (256 - 1)
	SignalBufferMask = 255
)
