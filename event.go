package gravit

// EventKind identifies a variant of Event.
type EventKind uint8

const (
	EventBeforePropertiesChange EventKind = iota // old values still in effect
	EventAfterPropertiesChange                   // new values in effect
	EventChildInserted                           // a node was linked under a parent
	EventChildRemoved                            // a node was unlinked from its parent
	EventFlagsChanged                            // a node's flag bitset changed
	EventInvalidated                             // a scene-space area needs repainting
	EventUndoStateChanged                        // undo or redo availability changed
)

// Event is the closed set of notifications delivered through an EventTarget.
// Consumers dispatch with a type switch.
type Event interface {
	Kind() EventKind
	isEvent()
}

// BeforePropertiesChange fires once per property batch, before any value in
// the batch is applied. Listeners may inspect the node but cannot cancel.
type BeforePropertiesChange struct {
	Node   *Node
	Keys   []string
	Values []any // values about to be applied
}

// AfterPropertiesChange fires once per property batch after every value in
// the batch is applied. Old carries the previous values for diffing.
type AfterPropertiesChange struct {
	Node *Node
	Keys []string
	Old  []any
}

// ChildInserted fires after Child was linked under Parent before Next
// (nil when appended).
type ChildInserted struct {
	Parent, Child, Next *Node
}

// ChildRemoved fires after Child was unlinked from Parent. Next is the
// sibling that followed it, so the removal can be reverted.
type ChildRemoved struct {
	Parent, Child, Next *Node
}

// FlagsChanged fires when a node's flag bitset changes.
type FlagsChanged struct {
	Node     *Node
	Old, New Flags
}

// Invalidated carries a scene-space area whose pixels are stale.
type Invalidated struct {
	Area Rect
}

// UndoStateChanged fires when the undo or redo stack changes.
type UndoStateChanged struct {
	CanUndo, CanRedo bool
}

func (BeforePropertiesChange) Kind() EventKind { return EventBeforePropertiesChange }
func (AfterPropertiesChange) Kind() EventKind  { return EventAfterPropertiesChange }
func (ChildInserted) Kind() EventKind          { return EventChildInserted }
func (ChildRemoved) Kind() EventKind           { return EventChildRemoved }
func (FlagsChanged) Kind() EventKind           { return EventFlagsChanged }
func (Invalidated) Kind() EventKind            { return EventInvalidated }
func (UndoStateChanged) Kind() EventKind       { return EventUndoStateChanged }

func (BeforePropertiesChange) isEvent() {}
func (AfterPropertiesChange) isEvent()  {}
func (ChildInserted) isEvent()          {}
func (ChildRemoved) isEvent()           {}
func (FlagsChanged) isEvent()           {}
func (Invalidated) isEvent()            {}
func (UndoStateChanged) isEvent()       {}

type listener struct {
	id   uint32
	kind EventKind
	fn   func(Event)
}

// EventTarget is a synchronous publish/subscribe registry. The zero value is
// ready to use. Not safe for concurrent use; gravit is single-threaded.
type EventTarget struct {
	listeners []listener
	nextID    uint32
}

// ListenerHandle allows removing a registered listener.
type ListenerHandle struct {
	id     uint32
	target *EventTarget
}

// AddListener registers fn for events of the given kind. Listeners fire in
// registration order.
func (t *EventTarget) AddListener(kind EventKind, fn func(Event)) ListenerHandle {
	t.nextID++
	t.listeners = append(t.listeners, listener{id: t.nextID, kind: kind, fn: fn})
	return ListenerHandle{id: t.nextID, target: t}
}

// Remove unregisters the listener. Calling Remove more than once is a no-op.
func (h ListenerHandle) Remove() {
	if h.target == nil {
		return
	}
	t := h.target
	// Build a fresh slice so an in-flight Trigger keeps iterating its snapshot.
	kept := make([]listener, 0, len(t.listeners))
	for _, l := range t.listeners {
		if l.id != h.id {
			kept = append(kept, l)
		}
	}
	t.listeners = kept
}

// HasListeners reports whether any listener is registered for kind.
func (t *EventTarget) HasListeners(kind EventKind) bool {
	for _, l := range t.listeners {
		if l.kind == kind {
			return true
		}
	}
	return false
}

// Trigger delivers ev to every listener registered for its kind. Listeners
// added while dispatching do not see the in-flight event.
func (t *EventTarget) Trigger(ev Event) {
	snapshot := t.listeners
	kind := ev.Kind()
	for _, l := range snapshot {
		if l.kind == kind {
			l.fn(ev)
		}
	}
}
