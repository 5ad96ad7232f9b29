package dom

// Event types dispatched by the form host.
const (
	EventInput        = "input"
	EventBlur         = "blur"
	EventFocus        = "focus"
	EventChange       = "change"
	EventSubmit       = "submit"
	EventClick        = "click"
	EventKeyDown      = "keydown"
	EventBeforeUnload = "beforeunload"
)

// KeyEscape is the Event.Key value of the Escape key.
const KeyEscape = "Escape"

// Listener handles a dispatched event.
type Listener func(*Event)

// Event carries the dispatch state seen by listeners.
type Event struct {
	Type string
	Key  string

	// Target is the element the event was dispatched on; nil for events sent
	// to the document itself.
	Target *Element
	// CurrentTarget is the element whose listener is running, nil while the
	// document listeners run.
	CurrentTarget *Element

	defaultPrevented bool
	stopped          bool
}

// NewEvent returns an event of type typ.
func NewEvent(typ string) *Event {
	return &Event{Type: typ}
}

// PreventDefault marks the default action as cancelled.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether a listener called PreventDefault.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation stops the event from reaching further ancestors.
func (e *Event) StopPropagation() {
	e.stopped = true
}

func bubbles(typ string) bool {
	switch typ {
	case EventBlur, EventFocus:
		return false
	}
	return true
}

// AddEventListener registers fn for events of type typ on e.
func (e *Element) AddEventListener(typ string, fn Listener) {
	if fn == nil {
		return
	}
	if e.listeners == nil {
		e.listeners = make(map[string][]Listener)
	}
	e.listeners[typ] = append(e.listeners[typ], fn)
}

// DispatchEvent delivers ev to e, then to its ancestors and the document when
// the event type bubbles. It reports false when a listener prevented the
// default action.
func (e *Element) DispatchEvent(ev *Event) bool {
	ev.Target = e
	for node := e; node != nil; node = node.parent {
		ev.CurrentTarget = node
		for _, fn := range node.listeners[ev.Type] {
			fn(ev)
		}
		if ev.stopped || !bubbles(ev.Type) {
			return !ev.defaultPrevented
		}
	}
	if e.doc != nil {
		e.doc.notify(ev)
	}
	return !ev.defaultPrevented
}

// DispatchEvent delivers ev to the document listeners only.
func (d *Document) DispatchEvent(ev *Event) bool {
	ev.Target = nil
	d.notify(ev)
	return !ev.defaultPrevented
}

func (d *Document) notify(ev *Event) {
	ev.CurrentTarget = nil
	for _, fn := range d.listeners[ev.Type] {
		fn(ev)
	}
}
