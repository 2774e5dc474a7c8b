package gravit

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// nodeIDCounter is a plain counter (no atomic, gravit is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// pendingChange accumulates the notification state of a BeginChanges block.
type pendingChange struct {
	keys     []string
	old      []any
	fired    bool // BeforePropertiesChange already delivered
	dirty    bool // caches and links must settle when the block ends
	geometry bool
}

// Node is the fundamental document entity. A single flat struct is used for
// every class (elements, styles, attributes) to avoid interface dispatch;
// class-specific behavior switches on Kind.
type Node struct {
	// Identity
	ID   uint32
	Kind Kind

	// Metadata
	UserData any

	// Hierarchy
	parent   *Node
	children []*Node
	scene    *Scene

	flags Flags
	props map[string]any

	// Change bracketing
	blockDepth int
	block      *pendingChange

	// Cached bounds (elements only), scene space
	geomBBox   Rect
	paintBBox  Rect
	geomValid  bool
	paintValid bool

	// Paint box captured before a pending change, for damage diffing
	damage        Rect
	damagePending bool
}

// NewNode creates a detached node of the given class with default properties.
// Shapes should be created with their typed constructors so they receive a
// style set.
func NewNode(kind Kind) *Node {
	if kind >= numKinds {
		panic(fmt.Sprintf("gravit: unknown node kind %d", kind))
	}
	return &Node{ID: nextNodeID(), Kind: kind, props: make(map[string]any)}
}

// --- Properties ---

// Property returns the current value of key, or the class default if unset.
// Returns nil for keys the class does not declare. Slice values are shared
// and MUST NOT be mutated by the caller.
func (n *Node) Property(key string) any {
	if v, ok := n.props[key]; ok {
		return v
	}
	c := classes[n.Kind]
	if i, ok := c.index[key]; ok {
		return c.props[i].def
	}
	return nil
}

// HasProperty reports whether the node's class declares key.
func (n *Node) HasProperty(key string) bool {
	_, ok := classes[n.Kind].index[key]
	return ok
}

// FloatProperty returns a float property, or 0 if the value is not a float.
func (n *Node) FloatProperty(key string) float64 {
	f, _ := n.Property(key).(float64)
	return f
}

// StringProperty returns a string property, or "" if the value is not a string.
func (n *Node) StringProperty(key string) string {
	s, _ := n.Property(key).(string)
	return s
}

// BoolProperty returns a bool property, or false if the value is not a bool.
func (n *Node) BoolProperty(key string) bool {
	b, _ := n.Property(key).(bool)
	return b
}

// Name returns the "name" property.
func (n *Node) Name() string {
	return n.StringProperty("name")
}

// SetProperty assigns a single property. See SetProperties.
func (n *Node) SetProperty(key string, value any) error {
	return n.SetProperties([]string{key}, []any{value})
}

// SetProperties atomically assigns a batch of properties. Exactly one
// BeforePropertiesChange and one AfterPropertiesChange bracket the whole batch;
// keys whose value does not change are dropped, and a batch with no effective
// change fires nothing. Unknown keys or mistyped values reject the whole batch.
func (n *Node) SetProperties(keys []string, values []any) error {
	if len(keys) != len(values) {
		return fmt.Errorf("%w: %d keys for %d values", ErrInvalidValue, len(keys), len(values))
	}
	c := classes[n.Kind]
	var (
		changed []string
		oldVals []any
		newVals []any
		geom    []bool
	)
	for i, key := range keys {
		idx, ok := c.index[key]
		if !ok {
			return fmt.Errorf("%w: %s has no property %q", ErrUnknownProperty, n.Kind, key)
		}
		def := c.props[idx]
		v, ok := normalizeValue(def.kind, values[i])
		if !ok {
			return fmt.Errorf("%w: %s.%s cannot hold %T", ErrInvalidValue, n.Kind, key, values[i])
		}
		if key == "ref" && n.Kind == KindSharedStyle && n.scene != nil {
			if other := n.scene.StyleByRef(v.(string)); other != nil && other != n {
				return fmt.Errorf("%w: reference id %q is taken", ErrInvalidValue, v)
			}
		}
		if j := slices.Index(changed, key); j >= 0 {
			newVals[j] = v
			continue
		}
		old := n.Property(key)
		if propertyEqual(old, v) {
			continue
		}
		changed = append(changed, key)
		oldVals = append(oldVals, old)
		newVals = append(newVals, v)
		geom = append(geom, def.geometry)
	}
	// A repeated key may have restored the current value.
	geometry := false
	for i := len(changed) - 1; i >= 0; i-- {
		if propertyEqual(oldVals[i], newVals[i]) {
			changed = slices.Delete(changed, i, i+1)
			oldVals = slices.Delete(oldVals, i, i+1)
			newVals = slices.Delete(newVals, i, i+1)
			continue
		}
		geometry = geometry || geom[i]
	}
	if len(changed) == 0 {
		return nil
	}

	n.beforeMutation(changed, newVals)
	if n.props == nil {
		n.props = make(map[string]any, len(changed))
	}
	for i, key := range changed {
		n.props[key] = newVals[i]
	}
	n.afterMutation(changed, oldVals, geometry)
	return nil
}

// propertyEqual compares property values. Slices and gradient stops make
// plain == unsafe on interface values.
func propertyEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// BeginChanges opens a change block. Until the matching EndChanges, the first
// property mutation fires BeforePropertiesChange, later mutations fire
// nothing, and cache invalidation and link synchronization are deferred.
// Blocks nest.
func (n *Node) BeginChanges() {
	n.blockDepth++
	if n.block == nil {
		n.block = &pendingChange{}
	}
}

// EndChanges closes a change block. The outermost EndChanges fires a single
// AfterPropertiesChange carrying every key changed inside the block.
// Panics if no block is open.
func (n *Node) EndChanges() {
	if n.blockDepth == 0 {
		panic("gravit: EndChanges without matching BeginChanges")
	}
	n.blockDepth--
	if n.blockDepth > 0 {
		return
	}
	b := n.block
	n.block = nil
	if b.fired {
		n.emit(AfterPropertiesChange{Node: n, Keys: b.keys, Old: b.old})
	}
	if b.dirty || b.fired {
		n.didChange(b.geometry)
	}
}

// InChangeBlock reports whether a BeginChanges block is open on n.
func (n *Node) InChangeBlock() bool {
	return n.blockDepth > 0
}

func (n *Node) beforeMutation(keys []string, values []any) {
	if b := n.block; b != nil {
		if !b.fired {
			b.fired = true
			n.willChange()
			n.emit(BeforePropertiesChange{Node: n, Keys: keys, Values: values})
		}
		return
	}
	n.willChange()
	n.emit(BeforePropertiesChange{Node: n, Keys: keys, Values: values})
}

func (n *Node) afterMutation(keys []string, old []any, geometry bool) {
	if b := n.block; b != nil {
		for i, key := range keys {
			if !slices.Contains(b.keys, key) {
				b.keys = append(b.keys, key)
				b.old = append(b.old, old[i])
			}
		}
		b.geometry = b.geometry || geometry
		return
	}
	n.emit(AfterPropertiesChange{Node: n, Keys: keys, Old: old})
	n.didChange(geometry)
}

// willChange snapshots the paint box of the element hosting n so the damage
// of the coming change can be diffed against it.
func (n *Node) willChange() {
	if n.scene == nil {
		return
	}
	if e := n.hostElement(); e != nil && !e.damagePending {
		e.damage = e.PaintBBox()
		e.damagePending = true
	}
}

// didChange settles caches and shared-style links after a mutation of n or
// of its children. Inside an open block on n or an ancestor, settling is
// deferred to the end of that block.
func (n *Node) didChange(geometry bool) {
	for p := n; p != nil; p = p.parent {
		if p.block != nil {
			p.block.dirty = true
			p.block.geometry = p.block.geometry || geometry
			return
		}
	}
	if n.scene == nil {
		n.invalidateBounds(geometry)
		return
	}
	n.scene.settle(n, geometry)
}

// invalidateBounds drops the cached paint bounds of n's host element, its
// descendants (a container transform moves them) and every ancestor. The
// geometry bounds are dropped too when geometry is set; paint-only changes
// such as a stroke width keep them.
func (n *Node) invalidateBounds(geometry bool) {
	e := n.hostElement()
	if e == nil {
		return
	}
	drop := func(d *Node) {
		d.paintValid = false
		if geometry {
			d.geomValid = false
		}
	}
	if e.Kind == KindGroup || e.Kind == KindLayer {
		e.Walk(func(d *Node) bool {
			drop(d)
			return true
		})
	}
	for p := e; p != nil; p = p.parent {
		drop(p)
	}
}

// hostElement returns the nearest element at or above n, or nil when n lives
// outside any element (e.g. in the shared style collection).
func (n *Node) hostElement() *Node {
	for p := n; p != nil; p = p.parent {
		if p.Kind.IsElement() {
			return p
		}
		if p.Kind == KindStyleCollection || p.Kind == KindScene {
			return nil
		}
	}
	return nil
}

// enclosingStyle returns the nearest style at or above n.
func (n *Node) enclosingStyle() *Node {
	for p := n; p != nil; p = p.parent {
		if p.Kind.IsStyle() {
			return p
		}
	}
	return nil
}

func (n *Node) emit(ev Event) {
	if n.scene != nil {
		n.scene.dispatch(ev)
	}
}

// --- Flags ---

// Flags returns the node's flag bitset.
func (n *Node) Flags() Flags {
	return n.flags
}

// HasFlag reports whether every bit of f is set.
func (n *Node) HasFlag(f Flags) bool {
	return n.flags&f == f
}

// SetFlag sets the bits of f.
func (n *Node) SetFlag(f Flags) {
	n.setFlags(n.flags | f)
}

// ClearFlag clears the bits of f.
func (n *Node) ClearFlag(f Flags) {
	n.setFlags(n.flags &^ f)
}

func (n *Node) setFlags(nf Flags) {
	old := n.flags
	if nf == old {
		return
	}
	n.flags = nf
	if n.scene == nil {
		return
	}
	n.emit(FlagsChanged{Node: n, Old: old, New: nf})
	if (old^nf)&(FlagHidden|FlagSelected|FlagHighlighted) != 0 && n.Kind.IsElement() {
		n.scene.invalidateArea(n.PaintBBox())
	}
}

// --- Tree manipulation ---

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// Scene returns the scene the node is attached to, or nil when detached.
func (n *Node) Scene() *Scene {
	return n.scene
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// Index returns the position of n among its siblings, or -1 if detached.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	return slices.Index(n.parent.children, n)
}

// NextSibling returns the sibling following n, or nil.
func (n *Node) NextSibling() *Node {
	i := n.Index()
	if i < 0 || i+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[i+1]
}

func (n *Node) childOfKind(k Kind) *Node {
	for _, c := range n.children {
		if c.Kind == k {
			return c
		}
	}
	return nil
}

// AppendChild links child as the last child of n.
func (n *Node) AppendChild(child *Node) error {
	return n.InsertChild(child, nil)
}

// InsertChild links child under n before reference (nil appends). The
// insertion is validated first; a rejected insertion returns a *TreeError
// wrapping ErrInvalidInsertion and leaves both trees untouched.
func (n *Node) InsertChild(child, reference *Node) error {
	if err := validateInsertion(n, child, reference); err != nil {
		return err
	}
	element := child.Kind.IsElement()
	if !element {
		n.willChange()
	}

	index := len(n.children)
	if reference != nil {
		index = reference.Index()
	}
	n.children = slices.Insert(n.children, index, child)
	child.parent = n

	if s := n.scene; s != nil {
		s.attach(child)
		n.emit(ChildInserted{Parent: n, Child: child, Next: reference})
		if s.debug {
			debugCheckTreeDepth(s, child)
			debugCheckChildCount(s, n)
		}
	}

	if element {
		n.invalidateBounds(true)
		if n.scene != nil {
			n.scene.invalidateArea(child.PaintBBox())
		}
	} else {
		n.didChange(false)
	}
	return nil
}

// RemoveChild unlinks child from n. Returns a *TreeError wrapping ErrNotChild
// if child does not belong to n.
func (n *Node) RemoveChild(child *Node) error {
	if child == nil || child.parent != n {
		return removalError(n, child)
	}
	element := child.Kind.IsElement()
	var area Rect
	if element {
		if n.scene != nil {
			area = child.PaintBBox()
		}
	} else {
		n.willChange()
	}

	next := child.NextSibling()
	n.children = slices.Delete(n.children, child.Index(), child.Index()+1)
	child.parent = nil

	if s := n.scene; s != nil {
		s.detach(child)
		n.emit(ChildRemoved{Parent: n, Child: child, Next: next})
	}

	if element {
		n.invalidateBounds(true)
		if n.scene != nil {
			n.scene.invalidateArea(area)
		}
	} else {
		n.didChange(false)
	}
	return nil
}

// RemoveFromParent detaches n from its parent. No-op if n has no parent.
func (n *Node) RemoveFromParent() {
	if n.parent == nil {
		return
	}
	_ = n.parent.RemoveChild(n)
}

// RemoveChildren unlinks every child of n, last first.
func (n *Node) RemoveChildren() {
	for len(n.children) > 0 {
		_ = n.RemoveChild(n.children[len(n.children)-1])
	}
}

// Walk visits n and its descendants depth-first in paint order. Returning
// false from fn stops the walk; Walk reports whether it ran to completion.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Clone returns a detached deep copy of n: properties, flags (selection
// excluded) and children. The copy gets fresh IDs.
func (n *Node) Clone() *Node {
	c := &Node{
		ID:       nextNodeID(),
		Kind:     n.Kind,
		UserData: n.UserData,
		flags:    n.flags &^ FlagSelected,
		props:    maps.Clone(n.props),
	}
	if len(n.children) > 0 {
		c.children = make([]*Node, len(n.children))
		for i, child := range n.children {
			cc := child.Clone()
			cc.parent = c
			c.children[i] = cc
		}
	}
	return c
}
