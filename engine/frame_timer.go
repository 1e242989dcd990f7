package engine

import (
	"sync"
	"time"
)

// FrameTimer wraps the host frame primitive and owns at most one pending
// request at a time
//
// A generation counter is checked on dispatch, so a cancelled callback never
// executes its body even if the host had already dequeued it
type FrameTimer struct {
	source FrameSource

	mu         sync.Mutex
	gen        uint64
	pending    FrameRequest
	hasPending bool
}

// NewFrameTimer creates a timer over the given host frame source
func NewFrameTimer(source FrameSource) *FrameTimer {
	return &FrameTimer{source: source}
}

// Schedule requests fn for the next host frame, replacing any pending request
func (t *FrameTimer) Schedule(fn func(ts time.Duration)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hasPending {
		t.source.CancelFrame(t.pending)
		t.hasPending = false
	}

	t.gen++
	gen := t.gen

	t.pending = t.source.RequestFrame(func(ts time.Duration) {
		t.mu.Lock()
		if t.gen != gen {
			// Revoked after the host dequeued the callback
			t.mu.Unlock()
			return
		}
		t.hasPending = false
		t.mu.Unlock()

		fn(ts)
	})
	t.hasPending = true
}

// Cancel revokes the pending request, if any
// Effective even against a callback the host has already dequeued
func (t *FrameTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	if t.hasPending {
		t.source.CancelFrame(t.pending)
		t.hasPending = false
	}
}

// Pending returns true if a frame request is outstanding
func (t *FrameTimer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasPending
}

// Now returns the current host time
func (t *FrameTimer) Now() time.Duration {
	return t.source.Now()
}
