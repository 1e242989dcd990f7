package engine

import (
	"time"

	"github.com/lixenwraith/frameloop/events"
)

// FrameRequest identifies one pending frame callback at the host
type FrameRequest uint64

// FrameSource is the host refresh primitive the scheduler drives
// Timestamps are monotonic offsets from the host epoch, not wall clock
//
// Contract:
//   - RequestFrame registers a fire-once callback for the next display frame
//   - CancelFrame revokes the request if it has not fired yet
//   - Callbacks are dispatched sequentially on a single goroutine
type FrameSource interface {
	RequestFrame(fn func(ts time.Duration)) FrameRequest
	CancelFrame(req FrameRequest)
	Now() time.Duration
}

// SignalSubscription identifies one registered signal callback
type SignalSubscription uint64

// SignalSource is the host capability for focus/visibility/surface notifications
// The scheduler subscribes at construction and unsubscribes in Cleanup,
// guaranteeing deterministic teardown
type SignalSource interface {
	Subscribe(fn func(events.Signal)) SignalSubscription
	Unsubscribe(sub SignalSubscription)
}
