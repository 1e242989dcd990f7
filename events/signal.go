package events

import (
	"sync/atomic"

	"github.com/lixenwraith/frameloop/parameter"
)

// SignalKind identifies a host-originated notification
type SignalKind int

const (
	// SignalFocusLost fires when the host window loses input focus
	SignalFocusLost SignalKind = iota

	// SignalFocusGained fires when the host window regains input focus
	// The scheduler never auto-resumes on this; resume is an explicit action
	SignalFocusGained

	// SignalHidden fires when the host surface becomes invisible
	SignalHidden

	// SignalVisible fires when the host surface becomes visible again
	SignalVisible

	// SignalSurfaceChanged fires when the render surface is replaced or resized
	SignalSurfaceChanged
)

// String returns the signal kind name for logs
func (k SignalKind) String() string {
	switch k {
	case SignalFocusLost:
		return "FocusLost"
	case SignalFocusGained:
		return "FocusGained"
	case SignalHidden:
		return "Hidden"
	case SignalVisible:
		return "Visible"
	case SignalSurfaceChanged:
		return "SurfaceChanged"
	default:
		return "Unknown"
	}
}

// Signal is one host notification
// Width/Height are meaningful for SignalSurfaceChanged only
type Signal struct {
	Kind   SignalKind
	Width  int
	Height int
}

// SignalQueue is a lock-free MPSC ring buffer for host signals
// Thread-Safety:
//   - Push: Lock-free CAS, multiple producers OK (host input goroutines)
//   - Consume: Single consumer (frame-dispatch goroutine)
//   - Published flags prevent reading partial writes
//
// Overflow: Oldest signals overwritten when full
type SignalQueue struct {
	signals   [parameter.SignalQueueSize]Signal
	published [parameter.SignalQueueSize]atomic.Bool // True = slot fully written
	head      atomic.Uint64                          // Read index
	tail      atomic.Uint64                          // Write index
}

// NewSignalQueue creates an empty queue
func NewSignalQueue() *SignalQueue {
	return &SignalQueue{}
}

// Push adds a signal using lock-free CAS with published flags
// Safe for concurrent producers. O(1) amortized
func (sq *SignalQueue) Push(sig Signal) {
	for {
		currentTail := sq.tail.Load()
		nextTail := currentTail + 1

		if sq.tail.CompareAndSwap(currentTail, nextTail) {
			idx := currentTail & parameter.SignalBufferMask

			sq.signals[idx] = sig
			sq.published[idx].Store(true) // MUST be after write

			// Advance head if overwriting unread signals
			currentHead := sq.head.Load()
			if nextTail-currentHead > parameter.SignalQueueSize {
				sq.head.CompareAndSwap(currentHead, nextTail-parameter.SignalQueueSize)
			}
			return
		}
	}
}

// Consume returns all pending signals in FIFO order and advances head
// Single-consumer design. Checks published flags for safety
func (sq *SignalQueue) Consume() []Signal {
	for {
		currentHead := sq.head.Load()
		currentTail := sq.tail.Load()

		if currentTail == currentHead {
			return nil
		}

		maxAvailable := currentTail - currentHead
		if maxAvailable > parameter.SignalQueueSize {
			maxAvailable = parameter.SignalQueueSize
			currentHead = currentTail - parameter.SignalQueueSize
		}

		result := make([]Signal, 0, maxAvailable)
		for i := uint64(0); i < maxAvailable; i++ {
			idx := (currentHead + i) & parameter.SignalBufferMask

			if !sq.published[idx].Load() {
				break // Writer incomplete
			}

			result = append(result, sq.signals[idx])
			sq.published[idx].Store(false)
		}

		newHead := currentHead + uint64(len(result))
		if sq.head.CompareAndSwap(currentHead, newHead) {
			if len(result) == 0 {
				return nil
			}
			return result
		}
	}
}
