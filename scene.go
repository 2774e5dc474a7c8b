package gravit

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
)

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, document changes are forwarded to the ECS.
type EntityStore interface {
	EmitEvent(event ChangeEvent)
}

// ChangeEvent is a flattened copy of a scene event for the ECS bridge.
type ChangeEvent struct {
	Type     EventKind
	NodeID   uint32
	NodeKind Kind
	ParentID uint32
	Keys     []string
	Area     Rect
}

// Scene owns the document tree: the root node, its layers and the shared
// style collection. It routes every node notification through its
// EventTarget and keeps the reference index used for style fan-out.
type Scene struct {
	EventTarget

	root   *Node
	styles *Node

	shared  map[string]*Node              // reference id -> shared style
	links   map[string]map[*Node]struct{} // reference id -> linked styles
	nextRef int

	linkSyncSuspended int

	store  EntityStore
	debug  bool
	logger *slog.Logger
}

// NewScene creates a scene with a root node and an empty style collection.
func NewScene() *Scene {
	s := newScene(NewNode(KindScene))
	styles := NewNode(KindStyleCollection)
	if err := s.root.AppendChild(styles); err != nil {
		panic("gravit: " + err.Error())
	}
	s.styles = styles
	return s
}

func newScene(root *Node) *Scene {
	s := &Scene{
		root:   root,
		shared: make(map[string]*Node),
		links:  make(map[string]map[*Node]struct{}),
	}
	s.attach(root)
	s.styles = root.childOfKind(KindStyleCollection)
	return s
}

// sceneFromRoot wraps a restored root node, adding a style collection when
// the stored document has none.
func sceneFromRoot(root *Node) (*Scene, error) {
	if root.Kind != KindScene {
		return nil, fmt.Errorf("%w: document root is a %s", ErrInvalidValue, root.Kind)
	}
	s := newScene(root)
	if s.styles == nil {
		styles := NewNode(KindStyleCollection)
		if err := root.AppendChild(styles); err != nil {
			return nil, err
		}
		s.styles = styles
	}
	return s, nil
}

// Root returns the scene's root node.
func (s *Scene) Root() *Node {
	return s.root
}

// Styles returns the shared style collection.
func (s *Scene) Styles() *Node {
	return s.styles
}

// SetDebug enables tree sanity checks and repaint statistics.
func (s *Scene) SetDebug(enabled bool) {
	s.debug = enabled
}

// SetLogger sets the logger used for debug output. Nil restores slog.Default.
func (s *Scene) SetLogger(l *slog.Logger) {
	s.logger = l
}

func (s *Scene) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// SetEntityStore forwards subsequent scene events to store. Nil disables it.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.store = store
}

// AddLayer creates a layer and appends it to the root.
func (s *Scene) AddLayer(name string) *Node {
	l := NewLayer(name)
	if err := s.root.InsertChild(l, s.styles); err != nil {
		panic("gravit: " + err.Error())
	}
	return l
}

// Layers returns the top-level layers in paint order.
func (s *Scene) Layers() []*Node {
	var layers []*Node
	for _, c := range s.root.children {
		if c.Kind == KindLayer {
			layers = append(layers, c)
		}
	}
	return layers
}

// AddSharedStyle creates a named shared style in the style collection and
// returns it. Its reference id is available from ReferenceID.
func (s *Scene) AddSharedStyle(name string) *Node {
	st := NewSharedStyle(name)
	if err := s.styles.AppendChild(st); err != nil {
		panic("gravit: " + err.Error())
	}
	return st
}

// StyleByRef returns the shared style with the given reference id, or nil.
func (s *Scene) StyleByRef(ref string) *Node {
	return s.shared[ref]
}

// PaintBBox returns the union of the paint bounds of every layer.
func (s *Scene) PaintBBox() Rect {
	var r Rect
	for _, l := range s.Layers() {
		r = r.Union(l.PaintBBox())
	}
	return r
}

// Selection returns every selected element in paint order.
func (s *Scene) Selection() []*Node {
	var sel []*Node
	s.root.Walk(func(n *Node) bool {
		if n.Kind.IsElement() && n.HasFlag(FlagSelected) {
			sel = append(sel, n)
		}
		return true
	})
	return sel
}

// --- Reference index ---

// VisitLinks calls fn for every linked style referencing ref, in node ID
// order. Returning false stops the walk. The set is snapshotted first, so fn
// may relink or remove styles.
func (s *Scene) VisitLinks(ref string, fn func(linked *Node) bool) {
	set := s.links[ref]
	if len(set) == 0 {
		return
	}
	linked := make([]*Node, 0, len(set))
	for n := range set {
		linked = append(linked, n)
	}
	slices.SortFunc(linked, func(a, b *Node) int { return int(a.ID) - int(b.ID) })
	for _, n := range linked {
		if !fn(n) {
			return
		}
	}
}

// LinkCount returns the number of linked styles referencing ref.
func (s *Scene) LinkCount(ref string) int {
	return len(s.links[ref])
}

// SuspendLinkSync stops shared-style fan-out until ResumeLinkSync. Calls nest.
// Undo and redo replay suspend it because the linked copies are restored by
// their own recorded changes.
func (s *Scene) SuspendLinkSync() {
	s.linkSyncSuspended++
}

// ResumeLinkSync re-enables fan-out suspended by SuspendLinkSync.
func (s *Scene) ResumeLinkSync() {
	if s.linkSyncSuspended == 0 {
		panic("gravit: ResumeLinkSync without matching SuspendLinkSync")
	}
	s.linkSyncSuspended--
}

// syncLinks copies shared into every style linked to it. Runs synchronously
// so every linked copy is current before the triggering change returns.
func (s *Scene) syncLinks(shared *Node) {
	s.VisitLinks(ReferenceID(shared), func(linked *Node) bool {
		linked.AssignStyleFrom(shared)
		return true
	})
}

func (s *Scene) newRef() string {
	for {
		s.nextRef++
		ref := "s" + strconv.Itoa(s.nextRef)
		if _, taken := s.shared[ref]; !taken {
			return ref
		}
	}
}

func (s *Scene) indexLink(n *Node, ref string) {
	if ref == "" {
		return
	}
	set := s.links[ref]
	if set == nil {
		set = make(map[*Node]struct{})
		s.links[ref] = set
	}
	set[n] = struct{}{}
}

func (s *Scene) unindexLink(n *Node, ref string) {
	set := s.links[ref]
	delete(set, n)
	if len(set) == 0 {
		delete(s.links, ref)
	}
}

// attach binds a newly linked subtree to the scene and indexes its styles.
func (s *Scene) attach(sub *Node) {
	sub.Walk(func(n *Node) bool {
		n.scene = s
		switch n.Kind {
		case KindSharedStyle:
			ref := n.StringProperty("ref")
			if other, taken := s.shared[ref]; ref == "" || (taken && other != n) {
				// Reference ids are identity, assigned silently.
				ref = s.newRef()
				if n.props == nil {
					n.props = make(map[string]any)
				}
				n.props["ref"] = ref
			}
			s.shared[ref] = n
		case KindLinkedStyle:
			s.indexLink(n, n.StringProperty("ref"))
		}
		return true
	})
}

// detach unbinds an unlinked subtree from the scene.
func (s *Scene) detach(sub *Node) {
	sub.Walk(func(n *Node) bool {
		switch n.Kind {
		case KindSharedStyle:
			ref := n.StringProperty("ref")
			if s.shared[ref] == n {
				delete(s.shared, ref)
			}
		case KindLinkedStyle:
			s.unindexLink(n, n.StringProperty("ref"))
		}
		n.scene = nil
		n.damagePending = false
		return true
	})
}

// --- Change routing ---

// dispatch maintains the reference index, then delivers ev to listeners and
// to the entity store.
func (s *Scene) dispatch(ev Event) {
	if a, ok := ev.(AfterPropertiesChange); ok {
		s.reindex(a)
	}
	s.Trigger(ev)
	if s.store != nil {
		s.store.EmitEvent(flattenEvent(ev))
	}
}

func (s *Scene) reindex(a AfterPropertiesChange) {
	i := slices.Index(a.Keys, "ref")
	if i < 0 {
		return
	}
	n := a.Node
	oldRef, _ := a.Old[i].(string)
	newRef := n.StringProperty("ref")
	switch n.Kind {
	case KindSharedStyle:
		if s.shared[oldRef] == n {
			delete(s.shared, oldRef)
		}
		if newRef != "" {
			s.shared[newRef] = n
		}
		// Follow the rename so existing links stay attached.
		if s.linkSyncSuspended == 0 && oldRef != "" && newRef != "" {
			s.VisitLinks(oldRef, func(l *Node) bool {
				_ = l.SetProperty("ref", newRef)
				return true
			})
		}
	case KindLinkedStyle:
		s.unindexLink(n, oldRef)
		s.indexLink(n, newRef)
		if shared := s.shared[newRef]; shared != nil && s.linkSyncSuspended == 0 {
			n.AssignStyleFrom(shared)
		}
	}
}

// settle runs after a mutation of n has been applied: it drops cached bounds,
// reports the damaged area and fans shared-style changes out to their links.
func (s *Scene) settle(n *Node, geometry bool) {
	n.invalidateBounds(geometry)
	if e := n.hostElement(); e != nil {
		area := e.PaintBBox()
		if e.damagePending {
			area = area.Union(e.damage)
			e.damagePending = false
		}
		s.invalidateArea(area)
	}
	if st := n.enclosingStyle(); st != nil && st.Kind == KindSharedStyle && s.linkSyncSuspended == 0 {
		s.syncLinks(st)
	}
}

func (s *Scene) invalidateArea(r Rect) {
	if r.IsEmpty() {
		return
	}
	s.dispatch(Invalidated{Area: r})
}

func flattenEvent(ev Event) ChangeEvent {
	ce := ChangeEvent{Type: ev.Kind()}
	setNode := func(n *Node) {
		ce.NodeID = n.ID
		ce.NodeKind = n.Kind
		if n.parent != nil {
			ce.ParentID = n.parent.ID
		}
	}
	switch e := ev.(type) {
	case BeforePropertiesChange:
		setNode(e.Node)
		ce.Keys = e.Keys
	case AfterPropertiesChange:
		setNode(e.Node)
		ce.Keys = e.Keys
	case ChildInserted:
		setNode(e.Child)
	case ChildRemoved:
		setNode(e.Child)
		ce.ParentID = e.Parent.ID
	case FlagsChanged:
		setNode(e.Node)
	case Invalidated:
		ce.Area = e.Area
	}
	return ce
}
