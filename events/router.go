package events

// Listener receives loop events it declared interest in
// The scheduler invokes listeners synchronously after each observable mutation
type Listener interface {
	// HandleLoopEvent processes a single event
	// Called on the frame-dispatch goroutine during the publish phase
	HandleLoopEvent(event Event)

	// EventTypes returns the event types this listener processes
	// The router uses this for registration
	EventTypes() []EventType
}

// Router dispatches events to registered listeners
//
// Architecture:
//   - Single-threaded dispatch
//   - Multiple listeners can register for the same event type
//   - Listeners are invoked in registration order
type Router struct {
	listeners map[EventType][]Listener
}

// NewRouter creates an empty router
func NewRouter() *Router {
	return &Router{
		listeners: make(map[EventType][]Listener),
	}
}

// Register adds a listener for its declared event types
func (r *Router) Register(listener Listener) {
	for _, t := range listener.EventTypes() {
		r.listeners[t] = append(r.listeners[t], listener)
	}
}

// Publish routes one event to listeners in registration order
func (r *Router) Publish(event Event) {
	for _, l := range r.listeners[event.Type] {
		l.HandleLoopEvent(event)
	}
}

// HasListeners returns true if any listeners are registered for the given type
func (r *Router) HasListeners(t EventType) bool {
	return len(r.listeners[t]) > 0
}

// ListenerCount returns the number of listeners registered for the given type
func (r *Router) ListenerCount(t EventType) int {
	return len(r.listeners[t])
}

// ListenerFunc adapts a function to the Listener interface
type ListenerFunc struct {
	Types []EventType
	Fn    func(Event)
}

// HandleLoopEvent invokes the wrapped function
func (lf ListenerFunc) HandleLoopEvent(event Event) {
	lf.Fn(event)
}

// EventTypes returns the declared types
func (lf ListenerFunc) EventTypes() []EventType {
	return lf.Types
}
