package events

import "time"

// EventType identifies an observable loop transition
type EventType int

const (
	// EventStarted signals the loop entered Running from Stopped
	// Trigger: LoopScheduler.Start | Payload: nil
	EventStarted EventType = iota

	// EventStopped signals the loop entered Stopped
	// Trigger: LoopScheduler.Stop | Payload: nil
	EventStopped

	// EventPaused signals the loop entered Paused
	// Trigger: LoopScheduler.Pause, host focus-lost, host hidden | Payload: nil
	EventPaused

	// EventResumed signals the loop re-entered Running from Paused
	// Trigger: LoopScheduler.Resume | Payload: nil
	EventResumed

	// EventGraceEnded signals the post-start grace period deactivated
	// Fires exactly once per Start session | Payload: nil
	EventGraceEnded

	// EventFPSSampled signals a fresh FPS recomputation
	// Trigger: PerformanceMonitor at sampling boundaries | Payload: *FPSSampledPayload
	EventFPSSampled

	// EventPerfModeChanged signals a hysteresis mode transition
	// Trigger: PerformanceMonitor enter/exit | Payload: *PerfModePayload
	EventPerfModeChanged

	// EventSurfaceChanged signals the render surface was replaced or resized
	// Cached render resources must be invalidated | Payload: *SurfacePayload
	EventSurfaceChanged
)

// String returns the event type name for logs and diagnostics
func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "Started"
	case EventStopped:
		return "Stopped"
	case EventPaused:
		return "Paused"
	case EventResumed:
		return "Resumed"
	case EventGraceEnded:
		return "GraceEnded"
	case EventFPSSampled:
		return "FPSSampled"
	case EventPerfModeChanged:
		return "PerfModeChanged"
	case EventSurfaceChanged:
		return "SurfaceChanged"
	default:
		return "Unknown"
	}
}

// Event is a single loop event with metadata
// Timestamp is host time (offset from the host epoch), not wall clock
type Event struct {
	Type      EventType
	Timestamp time.Duration
	Payload   any
}
