package canopy

import "strings"

// Built-in event types. Names are case-insensitive; they are stored lowercased.
const (
	EventAddedToStage     = "added_to_stage"
	EventRemovedFromStage = "removed_from_stage"
	EventEnterFrame       = "enter_frame"
	EventTouchStart       = "touchstart"
	EventTouchMove        = "touchmove"
	EventTouchEnd         = "touchend"
	EventTap              = "tap"
	EventLink             = "link"
	EventScroll           = "scroll"
	EventLoad             = "load"
	EventError            = "error"
	EventResize           = "resize"
)

// Event is the object passed to listeners. The same Event travels up the
// parent chain while bubbling; CurrentTarget tracks the node whose listeners
// are running.
type Event struct {
	Type          string
	Bubble        bool
	Target        *Node
	CurrentTarget *Node

	// Pointer position in stage coordinates (touch events, tap, link).
	X, Y float64
	// Link carries the hit text link for tap and link events.
	Link *Link
	// Err carries the failure for error events.
	Err error
	// Data is free-form payload for user-defined events.
	Data any

	halted bool
}

// NewEvent creates an event of the given type.
func NewEvent(typ string, bubble bool) *Event {
	return &Event{Type: strings.ToLower(typ), Bubble: bubble}
}

// StopPropagation prevents the event from bubbling past the current node.
// Remaining listeners on the current node still run.
func (e *Event) StopPropagation() {
	e.Bubble = false
}

// Halted reports whether a listener returned false during dispatch.
func (e *Event) Halted() bool {
	return e.halted
}

// Listener is an event callback. Returning false halts further listener
// invocation for the dispatch and suppresses bubbling.
type Listener func(ev *Event, args ...any) bool

// ListenerOption configures a registration made with Node.On.
type ListenerOption func(*listenerRecord, *bool)

// Priority inserts the listener at the head of the list so it runs before
// listeners registered earlier.
func Priority() ListenerOption {
	return func(_ *listenerRecord, head *bool) { *head = true }
}

// Locked protects the listener from wildcard removal. A locked listener is
// only removed through its own handle.
func Locked() ListenerOption {
	return func(r *listenerRecord, _ *bool) { r.locked = true }
}

type listenerRecord struct {
	id         uint32
	typ        string
	namespaces []string
	fn         Listener
	locked     bool
}

// ListenerHandle identifies one registration. The zero handle is inert.
type ListenerHandle struct {
	id    uint32
	owner *Node
}

// Remove unregisters exactly this listener, locked or not.
func (h ListenerHandle) Remove() {
	if h.owner == nil || h.id == 0 {
		return
	}
	h.owner.listeners = removeListenerRecord(h.owner.listeners, h.id)
}

var listenerIDCounter uint32

func nextListenerID() uint32 {
	listenerIDCounter++
	return listenerIDCounter
}

// splitEventName lowercases name and splits it into the type and its
// namespaces ("tap.menu.main" -> "tap", ["menu", "main"]).
func splitEventName(name string) (string, []string) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(name)), ".")
	var ns []string
	for _, p := range parts[1:] {
		if p != "" {
			ns = append(ns, p)
		}
	}
	return parts[0], ns
}

// On registers fn for the event type named by name, which may carry
// namespaces ("scroll.list"). A missing type or nil fn is a silent no-op
// returning the zero handle.
func (n *Node) On(name string, fn Listener, opts ...ListenerOption) ListenerHandle {
	typ, ns := splitEventName(name)
	if typ == "" || fn == nil || n.disposed {
		return ListenerHandle{}
	}
	rec := listenerRecord{id: nextListenerID(), typ: typ, namespaces: ns, fn: fn}
	head := false
	for _, opt := range opts {
		opt(&rec, &head)
	}
	if head {
		n.listeners = append(n.listeners, listenerRecord{})
		copy(n.listeners[1:], n.listeners)
		n.listeners[0] = rec
	} else {
		n.listeners = append(n.listeners, rec)
	}
	return ListenerHandle{id: rec.id, owner: n}
}

// Once registers fn for a single invocation.
func (n *Node) Once(name string, fn Listener, opts ...ListenerOption) ListenerHandle {
	if fn == nil {
		return ListenerHandle{}
	}
	var h ListenerHandle
	h = n.On(name, func(ev *Event, args ...any) bool {
		h.Remove()
		return fn(ev, args...)
	}, opts...)
	return h
}

// Off removes listeners matching name. With no handles, every unlocked
// listener whose type matches (or any type, when name has none) and which
// shares a namespace with name (or any, when name has none) is removed.
// With handles, only those registrations are removed, including locked ones.
// Off("") removes all unlocked listeners.
func (n *Node) Off(name string, handles ...ListenerHandle) {
	typ, ns := splitEventName(name)
	kept := n.listeners[:0]
	for _, rec := range n.listeners {
		if !rec.matches(typ, ns) || !rec.removable(handles) {
			kept = append(kept, rec)
		}
	}
	for i := len(kept); i < len(n.listeners); i++ {
		n.listeners[i] = listenerRecord{}
	}
	n.listeners = kept
}

// RemoveListener removes the registration identified by h when it is
// registered under name's type. Locked registrations are removed too.
func (n *Node) RemoveListener(name string, h ListenerHandle) {
	if h.owner != n || h.id == 0 {
		return
	}
	typ, _ := splitEventName(name)
	for i := range n.listeners {
		if n.listeners[i].id == h.id && (typ == "" || n.listeners[i].typ == typ) {
			n.listeners = removeListenerRecord(n.listeners, h.id)
			return
		}
	}
}

// HasListener reports whether any listener is registered for the type.
func (n *Node) HasListener(typ string) bool {
	typ = strings.ToLower(typ)
	for i := range n.listeners {
		if n.listeners[i].typ == typ {
			return true
		}
	}
	return false
}

func (r *listenerRecord) matches(typ string, ns []string) bool {
	if typ != "" && r.typ != typ {
		return false
	}
	if len(ns) == 0 {
		return true
	}
	for _, want := range ns {
		for _, have := range r.namespaces {
			if want == have {
				return true
			}
		}
	}
	return false
}

func (r *listenerRecord) removable(handles []ListenerHandle) bool {
	if len(handles) == 0 {
		return !r.locked
	}
	for _, h := range handles {
		if h.id == r.id {
			return true
		}
	}
	return false
}

func removeListenerRecord(s []listenerRecord, id uint32) []listenerRecord {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = listenerRecord{}
			return s[:len(s)-1]
		}
	}
	return s
}

// Dispatch invokes the listeners registered for ev.Type in order, passing ev
// followed by args. A listener returning false halts the dispatch; otherwise
// a bubbling event continues on the parent chain up to the stage. Dispatch
// reports whether the event ran to completion without being halted.
func (n *Node) Dispatch(ev *Event, args ...any) bool {
	if ev == nil {
		return true
	}
	ev.Type = strings.ToLower(ev.Type)
	if ev.Target == nil {
		ev.Target = n
	}
	for cur := n; cur != nil; cur = cur.parent {
		if !cur.invoke(ev, args) {
			ev.halted = true
			return false
		}
		if !ev.Bubble {
			break
		}
	}
	return true
}

// Trigger dispatches a new non-bubbling event of the given type.
func (n *Node) Trigger(typ string, args ...any) bool {
	return n.Dispatch(NewEvent(typ, false), args...)
}

// invoke runs the node's listeners for ev against a snapshot, so listeners
// may register or remove listeners while the dispatch is in progress.
func (n *Node) invoke(ev *Event, args []any) bool {
	var snap []Listener
	for i := range n.listeners {
		if n.listeners[i].typ == ev.Type {
			snap = append(snap, n.listeners[i].fn)
		}
	}
	ev.CurrentTarget = n
	for _, fn := range snap {
		if !fn(ev, args...) {
			return false
		}
	}
	return true
}
