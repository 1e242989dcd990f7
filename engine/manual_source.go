package engine

import (
	"sync"
	"time"

	"github.com/lixenwraith/frameloop/events"
)

// ManualFrameSource is a controllable frame source for testing
// Frames fire only when the test calls Fire, with an explicit timestamp
type ManualFrameSource struct {
	mu      sync.Mutex
	now     time.Duration
	nextReq FrameRequest
	pending map[FrameRequest]func(ts time.Duration)
}

// NewManualFrameSource creates a source with the clock at zero
func NewManualFrameSource() *ManualFrameSource {
	return &ManualFrameSource{
		pending: make(map[FrameRequest]func(ts time.Duration)),
	}
}

// RequestFrame registers a callback to fire on the next Fire call
func (m *ManualFrameSource) RequestFrame(fn func(ts time.Duration)) FrameRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextReq++
	req := m.nextReq
	m.pending[req] = fn
	return req
}

// CancelFrame removes a pending request
func (m *ManualFrameSource) CancelFrame(req FrameRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, req)
}

// Now returns the current manual time
func (m *ManualFrameSource) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// SetNow sets the current manual time without dispatching
func (m *ManualFrameSource) SetNow(ts time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = ts
}

// Fire advances the clock to ts and dispatches all pending callbacks
// Callbacks registered during dispatch fire on the next Fire, matching
// one-request-per-frame host behavior
func (m *ManualFrameSource) Fire(ts time.Duration) {
	m.mu.Lock()
	m.now = ts
	batch := make([]func(ts time.Duration), 0, len(m.pending))
	for req, fn := range m.pending {
		batch = append(batch, fn)
		delete(m.pending, req)
	}
	m.mu.Unlock()

	for _, fn := range batch {
		fn(ts)
	}
}

// PendingCount returns the number of outstanding requests
func (m *ManualFrameSource) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// ManualSignalSource is a controllable signal source for testing
type ManualSignalSource struct {
	mu      sync.Mutex
	nextSub SignalSubscription
	subs    map[SignalSubscription]func(events.Signal)
	order   []SignalSubscription
}

// NewManualSignalSource creates an empty source
func NewManualSignalSource() *ManualSignalSource {
	return &ManualSignalSource{
		subs: make(map[SignalSubscription]func(events.Signal)),
	}
}

// Subscribe registers a signal callback
func (m *ManualSignalSource) Subscribe(fn func(events.Signal)) SignalSubscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSub++
	sub := m.nextSub
	m.subs[sub] = fn
	m.order = append(m.order, sub)
	return sub
}

// Unsubscribe removes a signal callback
func (m *ManualSignalSource) Unsubscribe(sub SignalSubscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, sub)
}

// Emit delivers a signal to all subscribers in subscription order
func (m *ManualSignalSource) Emit(sig events.Signal) {
	m.mu.Lock()
	batch := make([]func(events.Signal), 0, len(m.subs))
	for _, sub := range m.order {
		if fn, ok := m.subs[sub]; ok {
			batch = append(batch, fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range batch {
		fn(sig)
	}
}

// SubscriberCount returns the number of active subscriptions
func (m *ManualSignalSource) SubscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}
