package gravit

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

// Canvas is a raster surface positioned in view space. Pixel (0, 0) of the
// image lies at view coordinate Origin. Transform maps scene coordinates to
// view coordinates; vector operations take scene-space paths.
type Canvas struct {
	img       *image.RGBA // premultiplied, bounds start at (0, 0)
	backing   *image.RGBA // pooled storage img is carved from, if pooled
	Origin    image.Point
	Transform Transform
}

// NewCanvas creates an unpooled transparent canvas covering the view-space
// rectangle bounds.
func NewCanvas(bounds image.Rectangle) *Canvas {
	if bounds.Dx() < 0 || bounds.Dy() < 0 {
		panic("gravit: negative canvas size")
	}
	return &Canvas{
		img:       image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy())),
		Origin:    bounds.Min,
		Transform: IdentityTransform,
	}
}

// Bounds returns the view-space rectangle the canvas covers.
func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Bounds().Add(c.Origin)
}

// Image returns the canvas pixels. The image bounds start at (0, 0).
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// RGBAAt returns the premultiplied pixel at a view-space position, or
// transparent outside the canvas.
func (c *Canvas) RGBAAt(x, y int) color.RGBA {
	return c.img.RGBAAt(x-c.Origin.X, y-c.Origin.Y)
}

// Clear makes every pixel transparent.
func (c *Canvas) Clear() {
	clearRGBA(c.img)
}

func clearRGBA(img *image.RGBA) {
	w := img.Rect.Dx() * 4
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		i := img.PixOffset(img.Rect.Min.X, y)
		clear(img.Pix[i : i+w])
	}
}

// pixelTransform maps scene coordinates to image pixel coordinates.
func (c *Canvas) pixelTransform() Transform {
	return Translate(float64(-c.Origin.X), float64(-c.Origin.Y)).Multiply(c.Transform)
}

func (c *Canvas) context() *gg.Context {
	return gg.NewContextForRGBA(c.img)
}

// tracePath replays an image-space path into a gg context.
func tracePath(dc *gg.Context, p Path) {
	dc.ClearPath()
	for _, seg := range p.Segments {
		switch seg.Op {
		case PathMoveTo:
			dc.MoveTo(seg.P[0].X, seg.P[0].Y)
		case PathLineTo:
			dc.LineTo(seg.P[0].X, seg.P[0].Y)
		case PathCubicTo:
			dc.CubicTo(seg.P[0].X, seg.P[0].Y, seg.P[1].X, seg.P[1].Y, seg.P[2].X, seg.P[2].Y)
		case PathClose:
			dc.ClosePath()
		}
	}
}

// FillPath fills a scene-space path. box is the scene-space bounding box
// gradients are relative to.
func (c *Canvas) FillPath(p Path, pat Pattern, box Rect, opacity float64) {
	if pat == nil || opacity <= 0 || p.IsEmpty() {
		return
	}
	m := c.pixelTransform()
	dc := c.context()
	tracePath(dc, p.Transform(m))
	dc.SetFillStyle(ggPattern(pat, box, m, opacity))
	dc.Fill()
}

// StrokeStyle describes how a path outline is stroked. Width is in scene
// units.
type StrokeStyle struct {
	Width float64
	Align StrokeAlign
	Cap   LineCap
	Join  LineJoin
}

// StrokePath strokes a scene-space path.
func (c *Canvas) StrokePath(p Path, pat Pattern, box Rect, opacity float64, st StrokeStyle) {
	if pat == nil || opacity <= 0 || st.Width <= 0 || p.IsEmpty() {
		return
	}
	m := c.pixelTransform()
	px := p.Transform(m)
	w := st.Width * m.ScaleFactor()
	fill := ggPattern(pat, box, m, opacity)

	switch st.Align {
	case StrokeInside:
		dc := c.context()
		tracePath(dc, px)
		dc.Clip()
		tracePath(dc, px)
		applyStrokeStyle(dc, 2*w, st)
		dc.SetStrokeStyle(fill)
		dc.Stroke()
	case StrokeOutside:
		// Stroke at double width on a scratch image, then erase the interior.
		ring := image.NewRGBA(c.img.Rect)
		dc := gg.NewContextForRGBA(ring)
		tracePath(dc, px)
		applyStrokeStyle(dc, 2*w, st)
		dc.SetStrokeStyle(fill)
		dc.Stroke()

		interior := image.NewRGBA(c.img.Rect)
		ic := gg.NewContextForRGBA(interior)
		tracePath(ic, px)
		ic.SetFillStyle(gg.NewSolidPattern(color.White))
		ic.Fill()
		compositeRGBA(ring, interior, image.Point{}, image.Point{}, 1, DestinationOut)
		compositeRGBA(c.img, ring, image.Point{}, image.Point{}, 1, SourceOver)
	default:
		dc := c.context()
		tracePath(dc, px)
		applyStrokeStyle(dc, w, st)
		dc.SetStrokeStyle(fill)
		dc.Stroke()
	}
}

func applyStrokeStyle(dc *gg.Context, width float64, st StrokeStyle) {
	dc.SetLineWidth(width)
	switch st.Cap {
	case CapRound:
		dc.SetLineCap(gg.LineCapRound)
	case CapSquare:
		dc.SetLineCap(gg.LineCapSquare)
	default:
		dc.SetLineCap(gg.LineCapButt)
	}
	if st.Join == JoinBevel {
		dc.SetLineJoin(gg.LineJoinBevel)
	} else {
		dc.SetLineJoin(gg.LineJoinRound)
	}
}

// StrokeHairline strokes a scene-space path with a fixed pixel width, as
// used by outline painting.
func (c *Canvas) StrokeHairline(p Path, col Color, pixels float64) {
	if p.IsEmpty() {
		return
	}
	dc := c.context()
	tracePath(dc, p.Transform(c.pixelTransform()))
	dc.SetLineWidth(pixels)
	dc.SetStrokeStyle(gg.NewSolidPattern(col.NRGBA()))
	dc.Stroke()
}

// FillColor fills the whole canvas with a color using op.
func (c *Canvas) FillColor(col Color, op CompositeOp) {
	src := image.NewUniform(col.NRGBA())
	switch op {
	case Copy:
		xdraw.Draw(c.img, c.img.Rect, src, image.Point{}, xdraw.Src)
	case SourceOver:
		xdraw.Draw(c.img, c.img.Rect, src, image.Point{}, xdraw.Over)
	default:
		tmp := image.NewRGBA(c.img.Rect)
		xdraw.Draw(tmp, tmp.Rect, src, image.Point{}, xdraw.Src)
		compositeRGBA(c.img, tmp, image.Point{}, image.Point{}, 1, op)
	}
}

// FillPattern covers the whole canvas with a pattern using op. box is the
// view-space rectangle gradients are relative to.
func (c *Canvas) FillPattern(pat Pattern, box Rect, opacity float64, op CompositeOp) {
	if pat == nil || opacity <= 0 {
		return
	}
	tmp := image.NewRGBA(c.img.Rect)
	dc := gg.NewContextForRGBA(tmp)
	m := Translate(float64(-c.Origin.X), float64(-c.Origin.Y))
	dc.DrawRectangle(0, 0, float64(tmp.Rect.Dx()), float64(tmp.Rect.Dy()))
	dc.SetFillStyle(ggPattern(pat, box, m, opacity))
	dc.Fill()
	compositeRGBA(c.img, tmp, image.Point{}, image.Point{}, 1, op)
}

// DrawCanvas composites src onto c. Both canvases are aligned by their view
// space origins; (dx, dy) shifts src by whole pixels.
func (c *Canvas) DrawCanvas(src *Canvas, dx, dy int, opacity float64, op CompositeOp) {
	if opacity <= 0 && !op.affectsUncovered() {
		return
	}
	dp := src.Origin.Add(image.Point{dx, dy}).Sub(c.Origin)
	compositeRGBA(c.img, src.img, dp, image.Point{}, opacity, op)
}

// CopyFrom replaces the pixels of c under src's bounds with src's pixels.
func (c *Canvas) CopyFrom(src *Canvas) {
	r := src.Bounds().Sub(c.Origin).Intersect(c.img.Rect)
	if r.Empty() {
		return
	}
	xdraw.Draw(c.img, r, src.img, r.Min.Add(c.Origin).Sub(src.Origin), xdraw.Src)
}

// DrawScaled draws src stretched over the view-space rectangle dst using
// nearest-neighbor sampling, so pixels stay sharp when zoomed.
func (c *Canvas) DrawScaled(src *Canvas, dst image.Rectangle) {
	xdraw.NearestNeighbor.Scale(c.img, dst.Sub(c.Origin), src.img, src.img.Rect, xdraw.Over, nil)
}

// blurKernelRadius maps a blur radius to the gaussian kernel radius. The
// kernel spans 2k+1 taps, so k = ceil(r/2) keeps the spread inside r.
func blurKernelRadius(r float64) float64 {
	if r <= 0 {
		return 0
	}
	return math.Ceil(r / 2)
}

// blurSpread returns how many pixels a blur of radius r spreads color.
func blurSpread(r float64) int {
	return int(blurKernelRadius(r))
}

// Blur applies a gaussian blur of radius r pixels in place. Zero or negative
// radii are a no-op.
func (c *Canvas) Blur(r float64) {
	k := blurKernelRadius(r)
	if k <= 0 || c.img.Rect.Empty() {
		return
	}
	out := blur.Gaussian(c.img, k)
	xdraw.Draw(c.img, c.img.Rect, out, out.Bounds().Min, xdraw.Src)
}

// --- Pattern conversion ---

// ggPattern converts a pattern to a gg paint source. box is the bounding box
// in the space m maps from; m maps into image pixels.
func ggPattern(pat Pattern, box Rect, m Transform, opacity float64) gg.Pattern {
	boxPoint := func(u, v float64) Vec2 {
		return m.MapPoint(Vec2{box.X + u*box.Width, box.Y + v*box.Height})
	}
	switch p := pat.(type) {
	case SolidPattern:
		return gg.NewSolidPattern(p.Color.WithAlpha(opacity).NRGBA())
	case BackgroundPattern:
		return withOpacity(gg.NewSurfacePattern(checkerTile(), gg.RepeatBoth), opacity)
	case LinearGradient:
		a, b := boxPoint(p.X1, p.Y1), boxPoint(p.X2, p.Y2)
		g := gg.NewLinearGradient(a.X, a.Y, b.X, b.Y)
		addStops(g, p.Stops, opacity)
		return g
	case RadialGradient:
		c := boxPoint(p.CX, p.CY)
		r := p.R * (box.Width + box.Height) / 2 * m.ScaleFactor()
		g := gg.NewRadialGradient(c.X, c.Y, 0, c.X, c.Y, r)
		addStops(g, p.Stops, opacity)
		return g
	}
	return gg.NewSolidPattern(color.Transparent)
}

func addStops(g gg.Gradient, stops []GradientStop, opacity float64) {
	for _, st := range stops {
		g.AddColorStop(st.Offset, st.Color.WithAlpha(opacity).NRGBA())
	}
}

// alphaPattern scales the alpha of another pattern.
type alphaPattern struct {
	p gg.Pattern
	a float64
}

func (ap alphaPattern) ColorAt(x, y int) color.Color {
	r, g, b, a := ap.p.ColorAt(x, y).RGBA()
	return color.RGBA64{
		R: uint16(float64(r) * ap.a),
		G: uint16(float64(g) * ap.a),
		B: uint16(float64(b) * ap.a),
		A: uint16(float64(a) * ap.a),
	}
}

func withOpacity(p gg.Pattern, opacity float64) gg.Pattern {
	if opacity >= 1 {
		return p
	}
	return alphaPattern{p: p, a: opacity}
}

const checkerSize = 8

var checker *image.RGBA

// checkerTile lazily builds the transparency checkerboard tile (no
// sync.Once, gravit is single-threaded).
func checkerTile() *image.RGBA {
	if checker != nil {
		return checker
	}
	light := color.RGBA{0xff, 0xff, 0xff, 0xff}
	dark := color.RGBA{0xcc, 0xcc, 0xcc, 0xff}
	checker = image.NewRGBA(image.Rect(0, 0, 2*checkerSize, 2*checkerSize))
	for y := 0; y < 2*checkerSize; y++ {
		for x := 0; x < 2*checkerSize; x++ {
			if (x/checkerSize+y/checkerSize)%2 == 0 {
				checker.SetRGBA(x, y, light)
			} else {
				checker.SetRGBA(x, y, dark)
			}
		}
	}
	return checker
}
