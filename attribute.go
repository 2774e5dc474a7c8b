package gravit

// StrokeAlign positions a stroke relative to the geometry outline.
type StrokeAlign uint8

const (
	StrokeCenter  StrokeAlign = iota // straddles the outline
	StrokeInside                     // inside the outline only
	StrokeOutside                    // outside the outline only
)

var strokeAlignNames = [...]string{"center", "inside", "outside"}

func (a StrokeAlign) String() string {
	if int(a) < len(strokeAlignNames) {
		return strokeAlignNames[a]
	}
	return "unknown"
}

// LineCap is the shape of open stroke ends.
type LineCap uint8

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

var lineCapNames = [...]string{"butt", "round", "square"}

func (c LineCap) String() string {
	if int(c) < len(lineCapNames) {
		return lineCapNames[c]
	}
	return "unknown"
}

// LineJoin is the shape of stroke corners.
type LineJoin uint8

const (
	JoinRound LineJoin = iota
	JoinBevel
)

var lineJoinNames = [...]string{"round", "bevel"}

func (j LineJoin) String() string {
	if int(j) < len(lineJoinNames) {
		return lineJoinNames[j]
	}
	return "unknown"
}

func indexOfName(names []string, s string) (int, bool) {
	for i, n := range names {
		if n == s {
			return i, true
		}
	}
	return 0, false
}

// --- Constructors ---

// NewFill creates a fill attribute painting pattern.
func NewFill(pattern Pattern) *Node {
	n := NewNode(KindFill)
	n.props["pattern"] = pattern
	return n
}

// NewStroke creates a stroke attribute.
func NewStroke(pattern Pattern, width float64, align StrokeAlign) *Node {
	n := NewNode(KindStroke)
	n.props["pattern"] = pattern
	n.props["width"] = width
	n.props["align"] = align
	return n
}

// NewEffectAttribute creates an effect attribute. Attributes appended to it
// form the contents the effect processes.
func NewEffectAttribute(e Effect) *Node {
	n := NewNode(KindEffect)
	n.props["effect"] = e
	return n
}

// PatternProperty returns the "pattern" property of a fill or stroke.
func (n *Node) PatternProperty() Pattern {
	p, _ := n.Property("pattern").(Pattern)
	return p
}

// EffectProperty returns the effect of an effect attribute.
func (n *Node) EffectProperty() Effect {
	e, _ := n.Property("effect").(Effect)
	return e
}

// StrokeBBoxPadding returns how far a stroke of the given width extends
// beyond the outline: half the width when centered, the full width outside
// and nothing inside.
func StrokeBBoxPadding(width float64, align StrokeAlign) Padding {
	var d float64
	switch align {
	case StrokeCenter:
		d = width / 2
	case StrokeOutside:
		d = width
	}
	return Padding{d, d, d, d}
}

// AttributeBBoxPadding returns the padding one attribute adds around the
// geometry bounds, in scene units; scale converts local stroke widths.
func AttributeBBoxPadding(a *Node, scale float64) Padding {
	switch a.Kind {
	case KindStroke:
		align, _ := a.Property("align").(StrokeAlign)
		return StrokeBBoxPadding(a.FloatProperty("width")*scale, align)
	case KindEffect:
		if !a.BoolProperty("visible") {
			return Padding{}
		}
		// The effect works on the painted contents, so its padding adds to
		// the contents' own padding.
		inner := attributesBBoxPadding(a, scale)
		if e := a.EffectProperty(); e != nil {
			return inner.Add(e.Padding())
		}
		return inner
	}
	return Padding{}
}

func attributesBBoxPadding(parent *Node, scale float64) Padding {
	var p Padding
	for _, c := range parent.children {
		if c.Kind.IsAttribute() {
			p = p.Max(AttributeBBoxPadding(c, scale))
		}
	}
	return p
}

// styleBBoxPadding is the per-side maximum padding of a style's attributes.
func styleBBoxPadding(style *Node, scale float64) Padding {
	return attributesBBoxPadding(style, scale)
}
