package gravit

import (
	"image"
	"image/color"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when a color is handed to a canvas.
type Color struct {
	R, G, B, A float64
}

var (
	ColorBlack       = Color{0, 0, 0, 1}
	ColorWhite       = Color{1, 1, 1, 1}
	ColorTransparent = Color{}
)

// NRGBA converts the color to an 8-bit straight-alpha color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: unitToByte(c.R),
		G: unitToByte(c.G),
		B: unitToByte(c.B),
		A: unitToByte(c.A),
	}
}

// WithAlpha returns a copy of the color with its alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	c.A *= a
	return c
}

func unitToByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Vec2 is a 2D vector used for positions, offsets and sizes.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// IsEmpty reports whether the rectangle covers no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	if r.IsEmpty() || other.IsEmpty() {
		return false
	}
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Union returns the smallest rectangle containing both r and other.
// Empty rectangles are ignored.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	x0 := math.Min(r.X, other.X)
	y0 := math.Min(r.Y, other.Y)
	x1 := math.Max(r.Right(), other.Right())
	y1 := math.Max(r.Bottom(), other.Bottom())
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Intersect returns the overlapping area of r and other, or an empty Rect.
func (r Rect) Intersect(other Rect) Rect {
	x0 := math.Max(r.X, other.X)
	y0 := math.Max(r.Y, other.Y)
	x1 := math.Min(r.Right(), other.Right())
	y1 := math.Min(r.Bottom(), other.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Expand grows the rectangle by the given padding on each side.
func (r Rect) Expand(p Padding) Rect {
	if r.IsEmpty() {
		return r
	}
	return Rect{
		X:      r.X - p[0],
		Y:      r.Y - p[1],
		Width:  r.Width + p[0] + p[2],
		Height: r.Height + p[1] + p[3],
	}
}

// Outset grows the rectangle by d on every side.
func (r Rect) Outset(d float64) Rect {
	return r.Expand(Padding{d, d, d, d})
}

// Pixels returns the smallest integer rectangle covering r.
func (r Rect) Pixels() image.Rectangle {
	if r.IsEmpty() {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.Right())), int(math.Ceil(r.Bottom())),
	)
}

// rectFromPixels converts an integer rectangle back to a Rect.
func rectFromPixels(p image.Rectangle) Rect {
	return Rect{float64(p.Min.X), float64(p.Min.Y), float64(p.Dx()), float64(p.Dy())}
}

// Padding is a four-sided expansion [left, top, right, bottom].
type Padding [4]float64

// Max returns the per-side maximum of p and o.
func (p Padding) Max(o Padding) Padding {
	for i := range p {
		p[i] = math.Max(p[i], o[i])
	}
	return p
}

// Add returns the per-side sum of p and o.
func (p Padding) Add(o Padding) Padding {
	for i := range p {
		p[i] += o[i]
	}
	return p
}

// Scale multiplies every side by s.
func (p Padding) Scale(s float64) Padding {
	for i := range p {
		p[i] *= s
	}
	return p
}

func (p Padding) maxSide() float64 {
	return max(p[0], p[1], p[2], p[3])
}

// IsZero reports whether every side is zero.
func (p Padding) IsZero() bool {
	return p == Padding{}
}

// CompositeOp selects a Porter-Duff compositing operation or a separable
// blend mode used when one canvas is drawn onto another.
type CompositeOp uint8

const (
	SourceOver      CompositeOp = iota // standard alpha blending
	SourceAtop                         // source drawn only where destination exists
	SourceIn                           // source kept where destination exists
	SourceOut                          // source kept where destination is empty
	DestinationOver                    // draw behind existing content
	DestinationAtop                    // destination kept where source exists, source elsewhere
	DestinationIn                      // destination kept where source exists
	DestinationOut                     // punch holes in destination where source exists
	Lighter                            // additive
	Copy                               // replace destination
	Xor                                // non-overlapping parts of both
	Multiply                           // source * destination
	Screen                             // 1 - (1-src)*(1-dst)
	Clear                              // clear destination
)

var compositeOpNames = [...]string{
	SourceOver:      "source-over",
	SourceAtop:      "source-atop",
	SourceIn:        "source-in",
	SourceOut:       "source-out",
	DestinationOver: "destination-over",
	DestinationAtop: "destination-atop",
	DestinationIn:   "destination-in",
	DestinationOut:  "destination-out",
	Lighter:         "lighter",
	Copy:            "copy",
	Xor:             "xor",
	Multiply:        "multiply",
	Screen:          "screen",
	Clear:           "clear",
}

// String returns the canvas name of the operation (e.g. "destination-in").
func (op CompositeOp) String() string {
	if int(op) < len(compositeOpNames) {
		return compositeOpNames[op]
	}
	return "unknown"
}

// parseCompositeOp is the inverse of CompositeOp.String.
func parseCompositeOp(s string) (CompositeOp, bool) {
	for i, name := range compositeOpNames {
		if name == s {
			return CompositeOp(i), true
		}
	}
	return 0, false
}

// PaintMode controls how much work a repaint does.
type PaintMode uint8

const (
	PaintFull    PaintMode = iota // everything, including effects
	PaintOutput                   // export rendering, effects included
	PaintFast                     // interactive editing, effects skipped
	PaintOutline                  // wireframe only
)

var paintModeNames = [...]string{"full", "output", "fast", "outline"}

func (m PaintMode) String() string {
	if int(m) < len(paintModeNames) {
		return paintModeNames[m]
	}
	return "unknown"
}

// ParsePaintMode parses a paint mode name as used in configuration files.
func ParsePaintMode(s string) (PaintMode, bool) {
	for i, name := range paintModeNames {
		if name == s {
			return PaintMode(i), true
		}
	}
	return 0, false
}

// effectsEnabled reports whether effect compositing runs in this mode.
func (m PaintMode) effectsEnabled() bool {
	return m == PaintFull || m == PaintOutput
}

// Flags is a bitset of node states.
type Flags uint16

const (
	FlagSelected Flags = 1 << iota
	FlagHidden
	FlagLocked
	FlagActive
	FlagHighlighted
)
