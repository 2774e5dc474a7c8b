package gravit

// --- Element constructors ---

// NewLayer creates a layer element.
func NewLayer(name string) *Node {
	n := NewNode(KindLayer)
	n.props["name"] = name
	return n
}

// NewGroup creates an empty group element.
func NewGroup() *Node {
	return NewNode(KindGroup)
}

// NewRectangle creates a rectangle shape with an empty style set.
func NewRectangle(x, y, w, h float64) *Node {
	return newShape(KindRectangle, map[string]any{"x": x, "y": y, "w": w, "h": h})
}

// NewEllipse creates an ellipse shape with an empty style set.
func NewEllipse(cx, cy, rx, ry float64) *Node {
	return newShape(KindEllipse, map[string]any{"cx": cx, "cy": cy, "rx": rx, "ry": ry})
}

// NewPolygon creates a polygon (closed) or polyline (open) shape with an
// empty style set.
func NewPolygon(pts []Vec2, closed bool) *Node {
	return newShape(KindPolygon, map[string]any{"pts": append([]Vec2(nil), pts...), "closed": closed})
}

func newShape(kind Kind, props map[string]any) *Node {
	n := NewNode(kind)
	for k, v := range props {
		n.props[k] = v
	}
	set := NewNode(KindStyleSet)
	set.parent = n
	n.children = append(n.children, set)
	return n
}

// StyleSet returns the style set of a shape, or nil for other nodes.
func (n *Node) StyleSet() *Node {
	if !n.Kind.IsShape() {
		return nil
	}
	return n.childOfKind(KindStyleSet)
}

// Styles returns the style entries of a shape in paint order.
func (n *Node) Styles() []*Node {
	if set := n.StyleSet(); set != nil {
		return set.children
	}
	return nil
}

// --- Geometry ---

// LocalTransform returns the element's own "trf" property, or the identity
// for nodes without one.
func (n *Node) LocalTransform() Transform {
	if t, ok := n.Property("trf").(Transform); ok {
		return t
	}
	return IdentityTransform
}

// WorldTransform composes the transforms of n and every ancestor, mapping
// n's local coordinates to scene coordinates.
func (n *Node) WorldTransform() Transform {
	t := n.LocalTransform()
	for p := n.parent; p != nil; p = p.parent {
		if p.Kind.IsElement() {
			t = p.LocalTransform().Multiply(t)
		}
	}
	return t
}

// LocalPath returns the untransformed outline of a shape. Other nodes return
// an empty path.
func (n *Node) LocalPath() Path {
	switch n.Kind {
	case KindRectangle:
		return RectPath(n.FloatProperty("x"), n.FloatProperty("y"), n.FloatProperty("w"), n.FloatProperty("h"))
	case KindEllipse:
		return EllipsePath(n.FloatProperty("cx"), n.FloatProperty("cy"), n.FloatProperty("rx"), n.FloatProperty("ry"))
	case KindPolygon:
		pts, _ := n.Property("pts").([]Vec2)
		return PolygonPath(pts, n.BoolProperty("closed"))
	}
	return Path{}
}

// ScenePath returns the shape outline in scene coordinates.
func (n *Node) ScenePath() Path {
	return n.LocalPath().Transform(n.WorldTransform())
}

// GeometryBBox returns the scene-space bounds of the element's geometry. For
// containers it is the union of the children's geometry. Cached until the
// element or anything below it changes.
func (n *Node) GeometryBBox() Rect {
	if n.geomValid {
		return n.geomBBox
	}
	var r Rect
	switch {
	case n.Kind.IsShape():
		r = n.ScenePath().Bounds()
	case n.Kind == KindLayer || n.Kind == KindGroup:
		for _, c := range n.children {
			if c.Kind.IsElement() {
				r = r.Union(c.GeometryBBox())
			}
		}
	}
	n.geomBBox = r
	n.geomValid = true
	return r
}

// PaintBBox returns the scene-space area the element paints into: the
// geometry bounds expanded by the padding its styles need (stroke width,
// effect blur and offset). Cached like GeometryBBox.
func (n *Node) PaintBBox() Rect {
	if n.paintValid {
		return n.paintBBox
	}
	var r Rect
	switch {
	case n.Kind.IsShape():
		r = n.GeometryBBox().Expand(n.StylePadding())
	case n.Kind == KindLayer || n.Kind == KindGroup:
		for _, c := range n.children {
			if c.Kind.IsElement() {
				r = r.Union(c.PaintBBox())
			}
		}
	}
	n.paintBBox = r
	n.paintValid = true
	return r
}

// StylePadding returns the per-side maximum padding of every visible style
// of a shape, in scene units.
func (n *Node) StylePadding() Padding {
	var p Padding
	scale := n.WorldTransform().ScaleFactor()
	for _, st := range n.Styles() {
		if st.BoolProperty("visible") {
			p = p.Max(styleBBoxPadding(st, scale))
		}
	}
	return p
}

// --- Hit testing ---

// HitTest returns the topmost visible, unlocked shape containing the
// scene-space point, or nil.
func (s *Scene) HitTest(p Vec2) *Node {
	layers := s.Layers()
	for i := len(layers) - 1; i >= 0; i-- {
		if hit := hitTestElement(layers[i], p); hit != nil {
			return hit
		}
	}
	return nil
}

// hitTestElement iterates backward (reverse painter order) so the topmost
// shape wins.
func hitTestElement(n *Node, p Vec2) *Node {
	if n.HasFlag(FlagHidden) || n.HasFlag(FlagLocked) {
		return nil
	}
	if !n.PaintBBox().Contains(p.X, p.Y) {
		return nil
	}
	if n.Kind.IsShape() {
		local := n.WorldTransform().Invert().MapPoint(p)
		path := n.LocalPath()
		if path.Contains(local) {
			return n
		}
		// Open or unfilled outlines are still hit inside their paint box
		// when they carry a stroke.
		if n.Kind == KindPolygon && !n.BoolProperty("closed") {
			return n
		}
		return nil
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		c := n.children[i]
		if !c.Kind.IsElement() {
			continue
		}
		if hit := hitTestElement(c, p); hit != nil {
			return hit
		}
	}
	return nil
}
