package terminal

import (
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/frameloop/engine"
	"github.com/lixenwraith/frameloop/events"
	"github.com/lixenwraith/frameloop/parameter"
)

// Host adapts a tcell screen to the scheduler's host contracts
//
// It implements engine.FrameSource (ticker-driven frame dispatch at a target
// pacing) and engine.SignalSource (focus and resize notifications). The tcell
// event goroutine only pushes into the lock-free signal queue; signal
// subscribers and frame callbacks run on the frame goroutine, so all
// scheduler mutations stay on a single dispatch context
type Host struct {
	screen   tcell.Screen
	interval time.Duration
	start    time.Time
	signals  *events.SignalQueue
	logger   *log.Logger

	mu       sync.Mutex
	nextReq  engine.FrameRequest
	pending  map[engine.FrameRequest]func(ts time.Duration)
	nextSub  engine.SignalSubscription
	subs     map[engine.SignalSubscription]func(events.Signal)
	subOrder []engine.SignalSubscription

	keys chan *tcell.EventKey

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewHost creates a host over an initialized screen
// interval 0 selects the default frame pacing; logger nil discards
func NewHost(screen tcell.Screen, interval time.Duration, logger *log.Logger) *Host {
	if interval <= 0 {
		interval = parameter.DefaultFrameInterval
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Host{
		screen:   screen,
		interval: interval,
		start:    time.Now(),
		signals:  events.NewSignalQueue(),
		logger:   logger,
		pending:  make(map[engine.FrameRequest]func(ts time.Duration)),
		subs:     make(map[engine.SignalSubscription]func(events.Signal)),
		keys:     make(chan *tcell.EventKey, 64),
		stopChan: make(chan struct{}),
	}
}

// RequestFrame registers a fire-once callback for the next frame tick
func (h *Host) RequestFrame(fn func(ts time.Duration)) engine.FrameRequest {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextReq++
	req := h.nextReq
	h.pending[req] = fn
	return req
}

// CancelFrame revokes a pending request
func (h *Host) CancelFrame(req engine.FrameRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.pending, req)
}

// Now returns monotonic time since host creation
func (h *Host) Now() time.Duration {
	return time.Since(h.start)
}

// Subscribe registers a signal callback, dispatched on the frame goroutine
func (h *Host) Subscribe(fn func(events.Signal)) engine.SignalSubscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextSub++
	sub := h.nextSub
	h.subs[sub] = fn
	h.subOrder = append(h.subOrder, sub)
	return sub
}

// Unsubscribe removes a signal callback
func (h *Host) Unsubscribe(sub engine.SignalSubscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, sub)
}

// Keys exposes key events for the application
// Events are dropped when the buffer is full rather than blocking the poll loop
func (h *Host) Keys() <-chan *tcell.EventKey {
	return h.keys
}

// Size returns the current screen dimensions
func (h *Host) Size() (int, int) {
	return h.screen.Size()
}

// Run starts the poll and frame goroutines
func (h *Host) Run() {
	if !h.running.CompareAndSwap(false, true) {
		return
	}

	h.screen.EnableFocus()

	h.wg.Add(2)
	go h.pollLoop()
	go h.frameLoop()
}

// Stop halts both goroutines and waits for them to exit
func (h *Host) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
		// Unblock PollEvent
		_ = h.screen.PostEvent(tcell.NewEventInterrupt(nil))
		h.wg.Wait()
		h.running.Store(false)
	})
}

// pollLoop translates tcell events into host signals
// Runs on its own goroutine; only pushes into the MPSC queue
func (h *Host) pollLoop() {
	defer h.wg.Done()

	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return
		}

		select {
		case <-h.stopChan:
			return
		default:
		}

		if !h.translate(ev) {
			return
		}
	}
}

// translate converts one tcell event, returning false on interrupt
func (h *Host) translate(ev tcell.Event) bool {
	switch tev := ev.(type) {
	case *tcell.EventResize:
		w, height := tev.Size()
		h.signals.Push(events.Signal{Kind: events.SignalSurfaceChanged, Width: w, Height: height})

	case *tcell.EventFocus:
		if tev.Focused {
			h.signals.Push(events.Signal{Kind: events.SignalFocusGained})
		} else {
			h.signals.Push(events.Signal{Kind: events.SignalFocusLost})
		}

	case *tcell.EventKey:
		select {
		case h.keys <- tev:
		default:
			h.logger.Printf("key buffer full, dropping %v", tev.Key())
		}

	case *tcell.EventInterrupt:
		return false
	}
	return true
}

// frameLoop paces frame dispatch at the configured interval
func (h *Host) frameLoop() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopChan:
			return
		case <-ticker.C:
			h.dispatchSignals()
			h.fireFrames(h.Now())
		}
	}
}

// dispatchSignals drains the queue to subscribers in subscription order
func (h *Host) dispatchSignals() {
	sigs := h.signals.Consume()
	if len(sigs) == 0 {
		return
	}

	h.mu.Lock()
	batch := make([]func(events.Signal), 0, len(h.subs))
	for _, sub := range h.subOrder {
		if fn, ok := h.subs[sub]; ok {
			batch = append(batch, fn)
		}
	}
	h.mu.Unlock()

	for _, sig := range sigs {
		for _, fn := range batch {
			fn(sig)
		}
	}
}

// fireFrames runs all pending frame callbacks and presents the screen
// Requests registered during dispatch wait for the next tick
func (h *Host) fireFrames(ts time.Duration) {
	h.mu.Lock()
	batch := make([]func(ts time.Duration), 0, len(h.pending))
	for req, fn := range h.pending {
		batch = append(batch, fn)
		delete(h.pending, req)
	}
	h.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	for _, fn := range batch {
		fn(ts)
	}
	h.screen.Show()
}
