package engine

// Game-level events.
const (
	EventBoot          = "boot"
	EventReady         = "ready"
	EventPreStep       = "prestep"
	EventStep          = "step"
	EventPostStep      = "poststep"
	EventPreRender     = "prerender"
	EventPostRender    = "postrender"
	EventDestroy       = "destroy"
	EventTexturesReady = "texturesready"
)

// Scene-level events.
const (
	EventPreUpdate  = "preupdate"
	EventUpdate     = "update"
	EventPostUpdate = "postupdate"
	EventCreate     = "create"
	EventShutdown   = "shutdown"
)

// Listener receives the arguments passed to Emit.
type Listener func(args ...any)

type listenerEntry struct {
	id   uint32
	fn   Listener
	once bool
}

// ListenerHandle removes a registered listener.
type ListenerHandle struct {
	e     *EventEmitter
	event string
	id    uint32
}

// Remove unregisters the listener. Safe to call more than once.
func (h ListenerHandle) Remove() {
	if h.e == nil {
		return
	}
	h.e.off(h.event, h.id)
}

// EventEmitter is a synchronous named-event dispatcher. Listeners run in
// registration order on the goroutine that calls Emit.
type EventEmitter struct {
	listeners map[string][]listenerEntry
	nextID    uint32
}

// NewEventEmitter returns an empty emitter.
func NewEventEmitter() *EventEmitter {
	return &EventEmitter{listeners: make(map[string][]listenerEntry)}
}

// On registers fn for event.
func (e *EventEmitter) On(event string, fn Listener) ListenerHandle {
	return e.add(event, fn, false)
}

// Once registers fn for a single delivery of event.
func (e *EventEmitter) Once(event string, fn Listener) ListenerHandle {
	return e.add(event, fn, true)
}

func (e *EventEmitter) add(event string, fn Listener, once bool) ListenerHandle {
	e.nextID++
	e.listeners[event] = append(e.listeners[event], listenerEntry{id: e.nextID, fn: fn, once: once})
	return ListenerHandle{e: e, event: event, id: e.nextID}
}

func (e *EventEmitter) off(event string, id uint32) {
	entries := e.listeners[event]
	for i := range entries {
		if entries[i].id == id {
			e.listeners[event] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// Emit calls every listener registered for event. Once-listeners are removed
// before they run.
func (e *EventEmitter) Emit(event string, args ...any) {
	entries := e.listeners[event]
	if len(entries) == 0 {
		return
	}
	snapshot := make([]listenerEntry, len(entries))
	copy(snapshot, entries)
	for _, l := range snapshot {
		if l.once {
			e.off(event, l.id)
		}
	}
	for _, l := range snapshot {
		l.fn(args...)
	}
}

// ListenerCount returns the number of listeners registered for event.
func (e *EventEmitter) ListenerCount(event string) int {
	return len(e.listeners[event])
}

// RemoveAll drops every listener for event, or for all events when event is
// empty.
func (e *EventEmitter) RemoveAll(event string) {
	if event == "" {
		clear(e.listeners)
		return
	}
	delete(e.listeners, event)
}
