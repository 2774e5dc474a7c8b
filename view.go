package gravit

import (
	"image"
	"math"
	"time"

	xdraw "golang.org/x/image/draw"
)

// Stage paints one view layer's content.
type Stage interface {
	Paint(pc *PaintContext, s *Scene)
}

// SceneStage paints the document.
type SceneStage struct{}

// Paint implements Stage.
func (SceneStage) Paint(pc *PaintContext, s *Scene) { pc.PaintScene(s) }

// SelectionStage outlines selected elements.
type SelectionStage struct{}

// Paint implements Stage.
func (SelectionStage) Paint(pc *PaintContext, s *Scene) { pc.PaintSelection(s) }

// View presents a scene through a zoom and scroll transform. It owns an
// ordered list of layers, each with its own canvas and dirty list, and
// repaints them on frames requested from its scheduler.
type View struct {
	scene     *Scene
	scheduler FrameScheduler

	width, height int
	zoom          float64
	scroll        Vec2

	// PixelMode renders zoomed views at 100% and scales the result with
	// nearest-neighbour sampling.
	PixelMode bool

	layers   []*ViewLayer
	listener ListenerHandle
	pool     canvasPool
	anim     viewAnim
	closed   bool
}

// NewView creates a view of s sized width x height pixels with a scene
// layer and a selection layer.
func NewView(s *Scene, scheduler FrameScheduler, width, height int) *View {
	v := &View{
		scene:     s,
		scheduler: scheduler,
		width:     width,
		height:    height,
		zoom:      1,
	}
	v.AddLayer("scene", SceneStage{}, PaintFull)
	v.AddLayer("selection", SelectionStage{}, PaintOutline)
	v.listener = s.AddListener(EventInvalidated, func(ev Event) {
		v.InvalidateScene(ev.(Invalidated).Area)
	})
	v.Invalidate()
	return v
}

// Scene returns the scene the view presents.
func (v *View) Scene() *Scene {
	return v.scene
}

// Bounds returns the viewport rectangle in view pixels.
func (v *View) Bounds() image.Rectangle {
	return image.Rect(0, 0, v.width, v.height)
}

// Zoom returns the view scale factor.
func (v *View) Zoom() float64 {
	return v.zoom
}

// Scroll returns the scene position shown at the view's top-left corner.
func (v *View) Scroll() Vec2 {
	return v.scroll
}

// Transform maps scene coordinates to view pixels.
func (v *View) Transform() Transform {
	return Scale(v.zoom, v.zoom).Multiply(Translate(-v.scroll.X, -v.scroll.Y))
}

// SceneToView maps a scene point to view pixels.
func (v *View) SceneToView(p Vec2) Vec2 {
	return v.Transform().MapPoint(p)
}

// ViewToScene maps a view pixel position to scene coordinates.
func (v *View) ViewToScene(p Vec2) Vec2 {
	return v.Transform().Invert().MapPoint(p)
}

// SetZoom sets the zoom factor, keeping the scene point under the view
// position anchor fixed, and repaints everything.
func (v *View) SetZoom(zoom float64, anchor Vec2) {
	if zoom <= 0 || zoom == v.zoom {
		return
	}
	at := v.ViewToScene(anchor)
	v.zoom = zoom
	v.scroll = Vec2{at.X - anchor.X/zoom, at.Y - anchor.Y/zoom}
	v.Invalidate()
}

// SetScroll moves the view so scene point p is at the top-left corner.
func (v *View) SetScroll(p Vec2) {
	if p == v.scroll {
		return
	}
	v.scroll = p
	v.Invalidate()
}

// ScrollBy pans by a delta in view pixels.
func (v *View) ScrollBy(dx, dy float64) {
	v.SetScroll(Vec2{v.scroll.X + dx/v.zoom, v.scroll.Y + dy/v.zoom})
}

// Resize changes the viewport size. Layer contents are discarded.
func (v *View) Resize(width, height int) {
	if width == v.width && height == v.height {
		return
	}
	v.width, v.height = width, height
	for _, l := range v.layers {
		l.canvas = NewCanvas(v.Bounds())
	}
	v.Invalidate()
}

// AddLayer appends a layer painted by stage in the given mode.
func (v *View) AddLayer(name string, stage Stage, mode PaintMode) *ViewLayer {
	l := &ViewLayer{
		view:   v,
		name:   name,
		stage:  stage,
		mode:   mode,
		canvas: NewCanvas(v.Bounds()),
	}
	v.layers = append(v.layers, l)
	return l
}

// Layers returns the view layers bottom to top.
func (v *View) Layers() []*ViewLayer {
	return v.layers
}

// Layer returns the layer with the given name, or nil.
func (v *View) Layer(name string) *ViewLayer {
	for _, l := range v.layers {
		if l.name == name {
			return l
		}
	}
	return nil
}

// Invalidate marks every layer entirely dirty.
func (v *View) Invalidate() {
	for _, l := range v.layers {
		l.InvalidateAll()
	}
}

// InvalidateRect marks a view-space area of every layer dirty.
func (v *View) InvalidateRect(r image.Rectangle) {
	for _, l := range v.layers {
		l.Invalidate(r)
	}
}

// InvalidateScene marks the view area covering a scene-space rectangle
// dirty. One pixel of slack covers antialiased edges.
func (v *View) InvalidateScene(area Rect) {
	if area.IsEmpty() {
		return
	}
	v.InvalidateRect(v.Transform().MapRect(area).Outset(1).Pixels())
}

// Repaint paints every layer's pending areas now, without waiting for the
// scheduler. Queued frames are dropped since nothing is left for them.
func (v *View) Repaint() {
	for _, l := range v.layers {
		l.cancel()
		l.repaint()
	}
}

// Composite stacks the layer canvases into one image.
func (v *View) Composite() *image.RGBA {
	out := image.NewRGBA(v.Bounds())
	for _, l := range v.layers {
		if !l.Hidden {
			xdraw.Draw(out, out.Rect, l.canvas.img, image.Point{}, xdraw.Over)
		}
	}
	return out
}

// Close detaches the view from its scene and cancels pending frames.
func (v *View) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.listener.Remove()
	for _, l := range v.layers {
		l.cancel()
	}
}

// ViewLayer is one stage of a view with its own canvas. Repaints are
// coalesced: at most one frame is pending per layer.
type ViewLayer struct {
	// Hidden excludes the layer from Composite.
	Hidden bool

	view   *View
	name   string
	stage  Stage
	mode   PaintMode
	canvas *Canvas
	dirty  DirtyList

	frame        FrameID
	framePending bool
	repaints     int
}

// Name returns the layer name.
func (l *ViewLayer) Name() string {
	return l.name
}

// Canvas returns the layer's canvas.
func (l *ViewLayer) Canvas() *Canvas {
	return l.canvas
}

// Mode returns the paint mode the layer renders with.
func (l *ViewLayer) Mode() PaintMode {
	return l.mode
}

// SetMode changes the paint mode and repaints the layer.
func (l *ViewLayer) SetMode(m PaintMode) {
	if m == l.mode {
		return
	}
	l.mode = m
	l.InvalidateAll()
}

// Repaints returns how many repaint frames the layer has run.
func (l *ViewLayer) Repaints() int {
	return l.repaints
}

// FramePending reports whether a repaint frame is queued.
func (l *ViewLayer) FramePending() bool {
	return l.framePending
}

// Invalidate marks a view-space area dirty and schedules a repaint.
func (l *ViewLayer) Invalidate(r image.Rectangle) {
	l.dirty.Add(r)
	l.schedule()
}

// InvalidateAll marks the whole layer dirty and schedules a repaint.
func (l *ViewLayer) InvalidateAll() {
	l.dirty.InvalidateAll()
	l.schedule()
}

func (l *ViewLayer) schedule() {
	if l.view.closed || l.framePending || l.dirty.IsEmpty() || l.view.scheduler == nil {
		return
	}
	l.framePending = true
	l.frame = l.view.scheduler.RequestFrame(l.repaint)
}

func (l *ViewLayer) cancel() {
	if l.framePending && l.view.scheduler != nil {
		l.view.scheduler.CancelFrame(l.frame)
	}
	l.framePending = false
	l.frame = 0
}

// repaint runs on the scheduled frame. The pending frame is cleared first so
// invalidations raised while painting schedule a new one.
func (l *ViewLayer) repaint() {
	if l.view.closed {
		return
	}
	l.framePending = false
	l.frame = 0
	rects := l.dirty.Take(l.view.Bounds())
	if len(rects) == 0 {
		return
	}
	start := time.Now()
	l.view.pool.resetStats()
	for _, r := range rects {
		l.repaintRect(r)
	}
	l.repaints++
	if s := l.view.scene; s.debug {
		s.debugLogRepaint(repaintStats{
			layer:    l.name,
			rects:    len(rects),
			canvases: l.view.pool.acquired,
			duration: time.Since(start),
		})
	}
}

// repaintRect paints one dirty area into a temporary canvas and copies the
// result into the layer canvas.
func (l *ViewLayer) repaintRect(r image.Rectangle) {
	v := l.view
	tmp := v.pool.Acquire(r)
	defer v.pool.Release(tmp)
	tmp.Transform = v.Transform()

	if v.PixelMode && v.zoom != 1 {
		l.paintPixels(tmp)
	} else {
		pc := l.paintContext(tmp, newDirtyMatcher(r))
		l.stage.Paint(pc, v.scene)
	}
	l.canvas.CopyFrom(tmp)
}

// paintPixels renders the scene area behind dst at 100% and scales it up
// with nearest-neighbour sampling.
func (l *ViewLayer) paintPixels(dst *Canvas) {
	v := l.view
	area := v.Transform().Invert().MapRect(rectFromPixels(dst.Bounds())).Pixels()
	if area.Empty() {
		return
	}
	inter := v.pool.Acquire(area)
	defer v.pool.Release(inter)
	inter.Transform = IdentityTransform

	pc := l.paintContext(inter, newDirtyMatcher(area))
	l.stage.Paint(pc, v.scene)

	view := v.Transform().MapRect(rectFromPixels(area))
	dst.DrawScaled(inter, image.Rect(
		int(math.Round(view.X)), int(math.Round(view.Y)),
		int(math.Round(view.Right())), int(math.Round(view.Bottom())),
	))
}

func (l *ViewLayer) paintContext(c *Canvas, dirty DirtyMatcher) *PaintContext {
	return &PaintContext{
		Canvas: c,
		Dirty:  dirty,
		Mode:   l.mode,
		pool:   &l.view.pool,
	}
}
