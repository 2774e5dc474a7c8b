package gravit

import (
	"fmt"
	"math"
	"slices"
)

// Kind distinguishes node classes. A single flat Node struct is used for all
// classes; behavior is dispatched on Kind.
type Kind uint8

const (
	KindScene           Kind = iota // document root
	KindLayer                       // top-level or nested layer
	KindGroup                       // element container
	KindRectangle                   // axis-aligned rectangle shape
	KindEllipse                     // ellipse shape
	KindPolygon                     // polyline or polygon shape
	KindStyleCollection             // document-level shared style list
	KindStyleSet                    // ordered style entries of a shape
	KindInlineStyle                 // style owned by one element
	KindSharedStyle                 // style addressable by reference id
	KindLinkedStyle                 // synced proxy of a shared style
	KindFill                        // fill attribute
	KindStroke                      // stroke attribute
	KindEffect                      // effect attribute (container of attributes)
	numKinds
)

func (k Kind) String() string {
	if k < numKinds {
		return classes[k].name
	}
	return "unknown"
}

// IsElement reports whether nodes of this kind are painted scene elements.
func (k Kind) IsElement() bool {
	return k >= KindLayer && k <= KindPolygon
}

// IsShape reports whether nodes of this kind carry geometry and a style set.
func (k Kind) IsShape() bool {
	return k == KindRectangle || k == KindEllipse || k == KindPolygon
}

// IsStyle reports whether nodes of this kind are style entries.
func (k Kind) IsStyle() bool {
	return k == KindInlineStyle || k == KindSharedStyle || k == KindLinkedStyle
}

// IsAttribute reports whether nodes of this kind are style attributes.
func (k Kind) IsAttribute() bool {
	return k == KindFill || k == KindStroke || k == KindEffect
}

// valueKind is the declared type of a property.
type valueKind uint8

const (
	valueFloat valueKind = iota
	valueString
	valueBool
	valuePattern
	valueEffect
	valueTransform
	valuePoints
	valueColor
	valueComposite
	valueAlign
	valueCap
	valueJoin
)

// propDef declares one property of a class and its default.
type propDef struct {
	key      string
	kind     valueKind
	def      any
	geometry bool // changes move the element's geometry
}

// class is the per-kind descriptor: store name, property table and
// insertion rule.
type class struct {
	name  string
	props []propDef
	index map[string]int
	// accepts returns an empty string if a node of this class may be
	// inserted under parent, otherwise the reason it may not.
	accepts func(parent *Node) string
}

var (
	elementProps = []propDef{
		{key: "name", kind: valueString, def: ""},
		{key: "trf", kind: valueTransform, def: IdentityTransform, geometry: true},
	}
	styleProps = []propDef{
		{key: "name", kind: valueString, def: ""},
		{key: "opacity", kind: valueFloat, def: 1.0},
		{key: "blend", kind: valueComposite, def: SourceOver},
		{key: "visible", kind: valueBool, def: true},
		{key: "ref", kind: valueString, def: ""},
	}
)

func withProps(base []propDef, extra ...propDef) []propDef {
	return append(slices.Clone(base), extra...)
}

func floatProp(key string, geometry bool) propDef {
	return propDef{key: key, kind: valueFloat, def: 0.0, geometry: geometry}
}

var classes = [numKinds]*class{
	KindScene: {
		name:    "scene",
		props:   []propDef{{key: "name", kind: valueString, def: ""}},
		accepts: func(*Node) string { return "a scene cannot have a parent" },
	},
	KindLayer: {
		name: "layer",
		props: []propDef{
			{key: "name", kind: valueString, def: ""},
			{key: "outline", kind: valueColor, def: Color{0.2, 0.6, 1, 1}},
		},
		accepts: acceptParents(KindScene, KindLayer),
	},
	KindGroup: {
		name:    "group",
		props:   elementProps,
		accepts: acceptParents(KindLayer, KindGroup),
	},
	KindRectangle: {
		name: "rectangle",
		props: withProps(elementProps,
			floatProp("x", true), floatProp("y", true),
			floatProp("w", true), floatProp("h", true)),
		accepts: acceptParents(KindLayer, KindGroup),
	},
	KindEllipse: {
		name: "ellipse",
		props: withProps(elementProps,
			floatProp("cx", true), floatProp("cy", true),
			floatProp("rx", true), floatProp("ry", true)),
		accepts: acceptParents(KindLayer, KindGroup),
	},
	KindPolygon: {
		name: "polygon",
		props: withProps(elementProps,
			propDef{key: "pts", kind: valuePoints, def: []Vec2(nil), geometry: true},
			propDef{key: "closed", kind: valueBool, def: true, geometry: true}),
		accepts: acceptParents(KindLayer, KindGroup),
	},
	KindStyleCollection: {
		name: "styles",
		accepts: func(parent *Node) string {
			if parent.Kind != KindScene {
				return "a style collection belongs to the scene root"
			}
			if parent.childOfKind(KindStyleCollection) != nil {
				return "scene already has a style collection"
			}
			return ""
		},
	},
	KindStyleSet: {
		name: "styleSet",
		accepts: func(parent *Node) string {
			if !parent.Kind.IsShape() {
				return "a style set belongs to a shape"
			}
			if parent.childOfKind(KindStyleSet) != nil {
				return "shape already has a style set"
			}
			return ""
		},
	},
	KindInlineStyle: {name: "inlineStyle", props: styleProps, accepts: acceptParents(KindStyleSet)},
	KindLinkedStyle: {name: "linkedStyle", props: styleProps, accepts: acceptParents(KindStyleSet)},
	KindSharedStyle: {
		name:    "sharedStyle",
		props:   styleProps,
		accepts: acceptParents(KindStyleCollection),
	},
	KindFill: {
		name: "fill",
		props: []propDef{
			{key: "pattern", kind: valuePattern, def: Pattern(SolidPattern{Color: ColorBlack})},
			{key: "opacity", kind: valueFloat, def: 1.0},
		},
		accepts: acceptAttributeParent,
	},
	KindStroke: {
		name: "stroke",
		props: []propDef{
			{key: "pattern", kind: valuePattern, def: Pattern(SolidPattern{Color: ColorBlack})},
			{key: "opacity", kind: valueFloat, def: 1.0},
			{key: "width", kind: valueFloat, def: 1.0},
			{key: "align", kind: valueAlign, def: StrokeCenter},
			{key: "cap", kind: valueCap, def: CapButt},
			{key: "join", kind: valueJoin, def: JoinRound},
		},
		accepts: acceptAttributeParent,
	},
	KindEffect: {
		name: "effect",
		props: []propDef{
			{key: "effect", kind: valueEffect, def: Effect(nil)},
			{key: "visible", kind: valueBool, def: true},
		},
		accepts: acceptAttributeParent,
	},
}

var classByName = map[string]Kind{}

func init() {
	for k, c := range classes {
		c.index = make(map[string]int, len(c.props))
		for i, p := range c.props {
			c.index[p.key] = i
		}
		classByName[c.name] = Kind(k)
	}
}

func acceptParents(kinds ...Kind) func(*Node) string {
	return func(parent *Node) string {
		if slices.Contains(kinds, parent.Kind) {
			return ""
		}
		return fmt.Sprintf("cannot be placed under a %s", parent.Kind)
	}
}

// acceptAttributeParent allows attributes under any style or under an effect
// attribute, which acts as a container for the contents it processes.
func acceptAttributeParent(parent *Node) string {
	if parent.Kind.IsStyle() || parent.Kind == KindEffect {
		return ""
	}
	return "an attribute belongs to a style or an effect attribute"
}

// validateInsertion checks whether child may be linked under parent before
// reference (nil appends).
func validateInsertion(parent, child, reference *Node) error {
	if parent == nil || child == nil {
		return insertionError(parent, child, "nil node")
	}
	if child.parent != nil {
		return insertionError(parent, child, "node already has a parent")
	}
	if child == parent || isAncestor(child, parent) {
		return insertionError(parent, child, "insertion would create a cycle")
	}
	if reference != nil && reference.parent != parent {
		return insertionError(parent, child, "reference is not a child of parent")
	}
	if reason := classes[child.Kind].accepts(parent); reason != "" {
		return insertionError(parent, child, reason)
	}
	return nil
}

// isAncestor reports whether a is a strict ancestor of n.
func isAncestor(a, n *Node) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p == a {
			return true
		}
	}
	return false
}

// normalizeValue checks v against the declared kind and returns the value to
// store. Slices are copied so callers cannot mutate stored state.
func normalizeValue(kind valueKind, v any) (any, bool) {
	switch kind {
	case valueFloat:
		switch f := v.(type) {
		case float64:
			return f, !math.IsNaN(f)
		case float32:
			return float64(f), !math.IsNaN(float64(f))
		case int:
			return float64(f), true
		}
	case valueString:
		s, ok := v.(string)
		return s, ok
	case valueBool:
		b, ok := v.(bool)
		return b, ok
	case valuePattern:
		if v == nil {
			return Pattern(nil), true
		}
		p, ok := v.(Pattern)
		return p, ok
	case valueEffect:
		if v == nil {
			return Effect(nil), true
		}
		e, ok := v.(Effect)
		return e, ok
	case valueTransform:
		t, ok := v.(Transform)
		return t, ok
	case valuePoints:
		if v == nil {
			return []Vec2(nil), true
		}
		pts, ok := v.([]Vec2)
		return slices.Clone(pts), ok
	case valueColor:
		c, ok := v.(Color)
		return c, ok
	case valueComposite:
		op, ok := v.(CompositeOp)
		return op, ok
	case valueAlign:
		a, ok := v.(StrokeAlign)
		return a, ok
	case valueCap:
		c, ok := v.(LineCap)
		return c, ok
	case valueJoin:
		j, ok := v.(LineJoin)
		return j, ok
	}
	return nil, false
}
