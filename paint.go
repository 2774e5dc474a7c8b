package gravit

import (
	"image"
	"math"
)

// PaintContext carries the state of one paint pass: the active canvas and
// the stack of canvases beneath it, the dirty areas to restrict painting to,
// the paint mode and the outline colour stack.
type PaintContext struct {
	// Canvas is the active canvas every paint operation draws into.
	Canvas *Canvas
	// Dirty restricts painting to elements whose paint box intersects it.
	Dirty DirtyMatcher
	// Mode selects full, output, fast or outline rendering.
	Mode PaintMode

	// OnPush and OnPop, when set, are called after the stack changes with
	// the new depth.
	OnPush func(depth int)
	OnPop  func(depth int)

	stack    []*Canvas
	outlines []Color
	pool     *canvasPool
}

// NewPaintContext creates a context painting into c.
func NewPaintContext(c *Canvas, mode PaintMode) *PaintContext {
	return &PaintContext{
		Canvas: c,
		Dirty:  matchAll(),
		Mode:   mode,
		pool:   &canvasPool{},
	}
}

// Depth returns the number of canvases pushed above the base canvas.
func (pc *PaintContext) Depth() int {
	return len(pc.stack)
}

// Scale returns the view zoom of the active canvas.
func (pc *PaintContext) Scale() float64 {
	return pc.Canvas.Transform.ScaleFactor()
}

// PushCanvas makes c the active canvas. The returned release func restores
// the previous canvas; calling it more than once is a no-op.
func (pc *PaintContext) PushCanvas(c *Canvas) (release func()) {
	pc.stack = append(pc.stack, pc.Canvas)
	pc.Canvas = c
	depth := len(pc.stack)
	if pc.OnPush != nil {
		pc.OnPush(depth)
	}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		if len(pc.stack) != depth {
			panic("gravit: canvas stack released out of order")
		}
		pc.Canvas = pc.stack[depth-1]
		pc.stack[depth-1] = nil
		pc.stack = pc.stack[:depth-1]
		if pc.OnPop != nil {
			pc.OnPop(depth - 1)
		}
	}
}

// WithCanvas runs fn with c as the active canvas. The previous canvas is
// restored when fn returns or panics.
func (pc *PaintContext) WithCanvas(c *Canvas, fn func() error) error {
	release := pc.PushCanvas(c)
	defer release()
	return fn()
}

// PushOutlineColor makes col the colour used by outline painting.
func (pc *PaintContext) PushOutlineColor(col Color) {
	pc.outlines = append(pc.outlines, col)
}

// PopOutlineColor restores the previous outline colour.
func (pc *PaintContext) PopOutlineColor() {
	if len(pc.outlines) == 0 {
		panic("gravit: PopOutlineColor without matching PushOutlineColor")
	}
	pc.outlines = pc.outlines[:len(pc.outlines)-1]
}

// OutlineColor returns the current outline colour.
func (pc *PaintContext) OutlineColor() Color {
	if len(pc.outlines) == 0 {
		return defaultOutlineColor
	}
	return pc.outlines[len(pc.outlines)-1]
}

var defaultOutlineColor = Color{0.2, 0.6, 1, 1}

// acquire returns a pooled canvas covering bounds, sharing the active
// canvas's transform.
func (pc *PaintContext) acquire(bounds image.Rectangle) *Canvas {
	c := pc.pool.Acquire(bounds)
	c.Transform = pc.Canvas.Transform
	return c
}

func (pc *PaintContext) release(c *Canvas) {
	pc.pool.Release(c)
}

// viewBox maps a scene-space rectangle into the active canvas's view space.
func (pc *PaintContext) viewBox(r Rect) Rect {
	return pc.Canvas.Transform.MapRect(r)
}

// --- Traversal ---

// PaintScene paints every layer of s in order.
func (pc *PaintContext) PaintScene(s *Scene) {
	for _, l := range s.Layers() {
		pc.Paint(l)
	}
}

// Paint paints an element and its descendants into the active canvas.
// Hidden elements and elements outside the dirty areas are skipped.
func (pc *PaintContext) Paint(n *Node) {
	if !n.Kind.IsElement() || n.HasFlag(FlagHidden) {
		return
	}
	if !pc.Dirty.Matches(pc.viewBox(n.PaintBBox())) {
		return
	}
	switch {
	case n.Kind == KindLayer:
		pc.PushOutlineColor(layerOutlineColor(n))
		defer pc.PopOutlineColor()
		pc.paintChildren(n)
	case n.Kind == KindGroup:
		pc.paintChildren(n)
	case n.Kind.IsShape():
		pc.paintShape(n)
	}
}

func (pc *PaintContext) paintChildren(n *Node) {
	for _, c := range n.children {
		if c.Kind.IsElement() {
			pc.Paint(c)
		}
	}
}

func layerOutlineColor(layer *Node) Color {
	if c, ok := layer.Property("outline").(Color); ok {
		return c
	}
	return defaultOutlineColor
}

func (pc *PaintContext) paintShape(n *Node) {
	if pc.Mode == PaintOutline {
		pc.Canvas.StrokeHairline(n.ScenePath(), pc.OutlineColor(), 1)
		return
	}
	for _, st := range n.Styles() {
		pc.paintStyle(n, st)
	}
}

// paintStyle paints one style of element. Styles with partial opacity or a
// blend mode other than SourceOver render into a temporary canvas that is
// then composited as a whole.
func (pc *PaintContext) paintStyle(el, st *Node) {
	if !st.BoolProperty("visible") {
		return
	}
	opacity := st.FloatProperty("opacity")
	blend, _ := st.Property("blend").(CompositeOp)
	if opacity >= 1 && blend == SourceOver {
		pc.paintAttributes(el, st)
		return
	}
	if opacity <= 0 && !blend.affectsUncovered() {
		return
	}
	bounds := pc.viewBox(el.PaintBBox()).Pixels().Intersect(pc.Canvas.Bounds())
	if bounds.Empty() && !blend.affectsUncovered() {
		return
	}
	tmp := pc.acquire(bounds)
	defer pc.release(tmp)
	_ = pc.WithCanvas(tmp, func() error {
		pc.paintAttributes(el, st)
		return nil
	})
	pc.Canvas.DrawCanvas(tmp, 0, 0, opacity, blend)
}

func (pc *PaintContext) paintAttributes(el, parent *Node) {
	for _, a := range parent.children {
		if a.Kind.IsAttribute() {
			pc.paintAttribute(el, a)
		}
	}
}

func (pc *PaintContext) paintAttribute(el, a *Node) {
	switch a.Kind {
	case KindFill:
		pc.Canvas.FillPath(el.ScenePath(), a.PatternProperty(), el.GeometryBBox(), a.FloatProperty("opacity"))
	case KindStroke:
		align, _ := a.Property("align").(StrokeAlign)
		lineCap, _ := a.Property("cap").(LineCap)
		join, _ := a.Property("join").(LineJoin)
		pc.Canvas.StrokePath(el.ScenePath(), a.PatternProperty(), el.GeometryBBox(), a.FloatProperty("opacity"), StrokeStyle{
			Width: a.FloatProperty("width") * el.WorldTransform().ScaleFactor(),
			Align: align,
			Cap:   lineCap,
			Join:  join,
		})
	case KindEffect:
		if !a.BoolProperty("visible") {
			return
		}
		e := a.EffectProperty()
		if e == nil || !pc.Mode.effectsEnabled() {
			pc.paintAttributes(el, a)
			return
		}
		pc.paintEffect(el, a, e)
	}
}

// effectExtents returns the view-space pixel area the contents of an effect
// attribute are rendered into: the element geometry grown by the contents'
// own padding, limited to what can reach the active canvas once the effect
// padding is applied.
func (pc *PaintContext) effectExtents(el, a *Node, e Effect) image.Rectangle {
	box := el.GeometryBBox().Expand(attributesBBoxPadding(a, el.WorldTransform().ScaleFactor()))
	reach := int(math.Ceil(e.Padding().maxSide() * pc.Scale()))
	return pc.viewBox(box).Pixels().Intersect(pc.Canvas.Bounds().Inset(-reach))
}

// paintEffect renders the effect attribute's children into a contents
// canvas, runs the effect into an output canvas and composites both in the
// order the effect type asks for.
func (pc *PaintContext) paintEffect(el, a *Node, e Effect) {
	extents := pc.effectExtents(el, a, e)
	if extents.Empty() {
		return
	}
	contents := pc.acquire(extents)
	defer pc.release(contents)
	_ = pc.WithCanvas(contents, func() error {
		pc.paintAttributes(el, a)
		return nil
	})

	scale := pc.Scale()
	spread := int(math.Ceil(e.Padding().maxSide() * scale))
	output := pc.acquire(extents.Inset(-spread))
	defer pc.release(output)
	off := pc.Canvas.Transform.MapDelta(e.Render(contents, output, pc.Canvas, scale))
	dx, dy := int(math.Round(off.X)), int(math.Round(off.Y))

	switch e.EffectType() {
	case EffectPre:
		pc.Canvas.DrawCanvas(output, dx, dy, 1, SourceOver)
		pc.Canvas.DrawCanvas(contents, 0, 0, 1, SourceOver)
	case EffectPost:
		pc.Canvas.DrawCanvas(contents, 0, 0, 1, SourceOver)
		pc.Canvas.DrawCanvas(output, dx, dy, 1, SourceOver)
	case EffectFilter:
		pc.Canvas.DrawCanvas(output, dx, dy, 1, SourceOver)
	}
}

// --- Selection ---

// PaintSelection outlines every selected element of s using the outline
// colour of its layer.
func (pc *PaintContext) PaintSelection(s *Scene) {
	for _, l := range s.Layers() {
		pc.paintSelection(l)
	}
}

func (pc *PaintContext) paintSelection(n *Node) {
	if n.HasFlag(FlagHidden) || !pc.Dirty.Matches(pc.viewBox(n.PaintBBox())) {
		return
	}
	if n.Kind == KindLayer {
		pc.PushOutlineColor(layerOutlineColor(n))
		defer pc.PopOutlineColor()
	}
	if n.HasFlag(FlagSelected) {
		var p Path
		if n.Kind.IsShape() {
			p = n.ScenePath()
		} else {
			b := n.GeometryBBox()
			p = RectPath(b.X, b.Y, b.Width, b.Height)
		}
		pc.Canvas.StrokeHairline(p, pc.OutlineColor(), 1)
	}
	for _, c := range n.children {
		if c.Kind.IsElement() {
			pc.paintSelection(c)
		}
	}
}
