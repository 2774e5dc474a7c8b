package gravit

import (
	"fmt"
	"slices"
)

// styleSyncKeys is the property subset a linked style copies from its shared
// style. Opacity is copied too unless the target overrides it.
var styleSyncKeys = []string{"name", "blend", "visible"}

// NewInlineStyle creates a style owned by a single element.
func NewInlineStyle() *Node {
	return NewNode(KindInlineStyle)
}

// NewSharedStyle creates a named style for the scene's style collection. A
// reference id is assigned when it is attached to a scene.
func NewSharedStyle(name string) *Node {
	n := NewNode(KindSharedStyle)
	n.props["name"] = name
	return n
}

// NewLinkedStyle creates a style proxying the shared style with the given
// reference id.
func NewLinkedStyle(ref string) *Node {
	n := NewNode(KindLinkedStyle)
	n.props["ref"] = ref
	return n
}

// ReferenceID returns the reference id of a shared style or the referenced
// id of a linked style.
func ReferenceID(n *Node) string {
	return n.StringProperty("ref")
}

// AssignStyleFrom copies the recognized style properties of src and replaces
// n's attributes with clones of src's attributes. The whole update runs in one
// change block, so listeners see a single Before/After pair. A linked style
// keeps its own opacity.
func (n *Node) AssignStyleFrom(src *Node) {
	if !n.Kind.IsStyle() || !src.Kind.IsStyle() {
		panic(fmt.Sprintf("gravit: AssignStyleFrom between %s and %s", n.Kind, src.Kind))
	}
	keys := slices.Clone(styleSyncKeys)
	if n.Kind != KindLinkedStyle {
		keys = append(keys, "opacity")
	}
	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = src.Property(k)
	}

	n.BeginChanges()
	defer n.EndChanges()
	if err := n.SetProperties(keys, values); err != nil {
		panic("gravit: " + err.Error())
	}
	if attributesEqual(n, src) {
		return
	}
	n.RemoveChildren()
	for _, a := range src.children {
		if err := n.AppendChild(a.Clone()); err != nil {
			panic("gravit: " + err.Error())
		}
	}
}

// attributesEqual reports whether two styles hold structurally identical
// attribute lists, so a sync can leave the children alone.
func attributesEqual(a, b *Node) bool {
	if len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if !subtreeEqual(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}

func subtreeEqual(a, b *Node) bool {
	if a.Kind != b.Kind || len(a.children) != len(b.children) {
		return false
	}
	for _, p := range classes[a.Kind].props {
		if !propertyEqual(a.Property(p.key), b.Property(p.key)) {
			return false
		}
	}
	for i := range a.children {
		if !subtreeEqual(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}

// LinkStyle appends to the element's style set a linked style referencing
// shared, synced with its current content.
func (s *Scene) LinkStyle(element, shared *Node) (*Node, error) {
	if shared.Kind != KindSharedStyle || shared.scene != s {
		return nil, fmt.Errorf("%w: %s is not a shared style of this scene", ErrInvalidValue, describeNode(shared))
	}
	set := element.StyleSet()
	if set == nil {
		return nil, insertionError(element, nil, "element has no style set")
	}
	linked := NewLinkedStyle(ReferenceID(shared))
	linked.AssignStyleFrom(shared)
	if err := set.AppendChild(linked); err != nil {
		return nil, err
	}
	return linked, nil
}

// DisconnectStyle clears the reference on every style linked to shared, so
// no back-reference dangles, then removes shared from the style collection.
// Linked styles keep their last synced content.
func (s *Scene) DisconnectStyle(shared *Node) error {
	if shared.Kind != KindSharedStyle || shared.scene != s {
		return fmt.Errorf("%w: %s is not a shared style of this scene", ErrInvalidValue, describeNode(shared))
	}
	var linked []*Node
	s.VisitLinks(ReferenceID(shared), func(l *Node) bool {
		linked = append(linked, l)
		return true
	})
	for _, l := range linked {
		if err := l.SetProperty("ref", ""); err != nil {
			return err
		}
	}
	return shared.parent.RemoveChild(shared)
}
