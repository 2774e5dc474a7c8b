package gravit

import (
	"fmt"
	"math"
)

// EffectType orders an effect relative to the element contents.
type EffectType uint8

const (
	EffectPre    EffectType = iota // painted under the contents (drop shadow)
	EffectPost                     // painted over the contents (inner shadow)
	EffectFilter                   // replaces the contents in place (overlay, blur)
)

// Effect is an image operation applied to an element's rendered contents.
type Effect interface {
	// EffectType reports where the result is composited.
	EffectType() EffectType
	// Padding returns the scene-space expansion [left, top, right, bottom]
	// the result needs beyond the contents' bounds.
	Padding() Padding
	// Render draws the effect of contents into output. Both canvases share
	// the same view space; output may be larger than contents. background is
	// the canvas the element is painted onto. scale is the view zoom. The
	// returned offset is in scene units and is applied when output is
	// composited.
	Render(contents, output, background *Canvas, scale float64) Vec2
}

// DropShadow paints a blurred, offset silhouette of the contents beneath them.
type DropShadow struct {
	Radius  float64
	X, Y    float64
	Color   Color
	Opacity float64
}

// EffectType implements Effect.
func (DropShadow) EffectType() EffectType { return EffectPre }

// Padding is [r-x, r-y, r+x, r+y], clamped at zero.
func (d DropShadow) Padding() Padding {
	r := math.Max(d.Radius, 0)
	return Padding{
		math.Max(r-d.X, 0),
		math.Max(r-d.Y, 0),
		math.Max(r+d.X, 0),
		math.Max(r+d.Y, 0),
	}
}

// Render fills output with the shadow color, keeps it only where contents
// exist and blurs it.
func (d DropShadow) Render(contents, output, _ *Canvas, scale float64) Vec2 {
	if d.Opacity <= 0 || d.Color.A <= 0 {
		return Vec2{}
	}
	output.FillColor(d.Color.WithAlpha(d.Opacity), Copy)
	output.DrawCanvas(contents, 0, 0, 1, DestinationIn)
	if r := d.Radius * scale; r > 0 {
		output.Blur(r)
	}
	return Vec2{d.X, d.Y}
}

// InnerShadow paints a blurred shadow inside the contents' edges.
type InnerShadow struct {
	Radius  float64
	X, Y    float64
	Color   Color
	Opacity float64
}

// EffectType implements Effect.
func (InnerShadow) EffectType() EffectType { return EffectPost }

// Padding is zero; the result is clipped to the contents.
func (InnerShadow) Padding() Padding { return Padding{} }

// Render fills output, carves out the offset contents, blurs the remainder
// and clips it to the contents.
func (s InnerShadow) Render(contents, output, _ *Canvas, scale float64) Vec2 {
	if s.Opacity <= 0 || s.Color.A <= 0 {
		return Vec2{}
	}
	off := output.Transform.MapDelta(Vec2{s.X, s.Y})
	output.FillColor(s.Color.WithAlpha(s.Opacity), Copy)
	output.DrawCanvas(contents, int(math.Round(off.X)), int(math.Round(off.Y)), 1, DestinationOut)
	if r := s.Radius * scale; r > 0 {
		output.Blur(r)
	}
	output.DrawCanvas(contents, 0, 0, 1, DestinationIn)
	return Vec2{}
}

// Overlay tints the existing contents with a pattern.
type Overlay struct {
	Pattern Pattern
	Opacity float64
}

// EffectType implements Effect.
func (Overlay) EffectType() EffectType { return EffectFilter }

// Padding is zero.
func (Overlay) Padding() Padding { return Padding{} }

// Render copies the contents and paints the pattern over existing pixels.
func (o Overlay) Render(contents, output, _ *Canvas, _ float64) Vec2 {
	output.DrawCanvas(contents, 0, 0, 1, Copy)
	if o.Opacity > 0 && o.Pattern != nil {
		output.FillPattern(o.Pattern, rectFromPixels(contents.Bounds()), o.Opacity, SourceAtop)
	}
	return Vec2{}
}

// Blur softens the contents with a gaussian blur.
type Blur struct {
	Radius float64
}

// EffectType implements Effect.
func (Blur) EffectType() EffectType { return EffectFilter }

// Padding is r on every side.
func (b Blur) Padding() Padding {
	r := math.Max(b.Radius, 0)
	return Padding{r, r, r, r}
}

// Render copies and blurs the contents.
func (b Blur) Render(contents, output, _ *Canvas, scale float64) Vec2 {
	output.DrawCanvas(contents, 0, 0, 1, Copy)
	if r := b.Radius * scale; r > 0 {
		output.Blur(r)
	}
	return Vec2{}
}

// effectRecord is the stored form of the built-in effects.
type effectRecord struct {
	Type    string  `json:"type"`
	Radius  float64 `json:"radius,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Color   string  `json:"color,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
	Pattern string  `json:"pattern,omitempty"`
}

func encodeEffect(e Effect) (effectRecord, error) {
	switch e := e.(type) {
	case DropShadow:
		return effectRecord{Type: "dropShadow", Radius: e.Radius, X: e.X, Y: e.Y, Color: FormatColor(e.Color), Opacity: e.Opacity}, nil
	case InnerShadow:
		return effectRecord{Type: "innerShadow", Radius: e.Radius, X: e.X, Y: e.Y, Color: FormatColor(e.Color), Opacity: e.Opacity}, nil
	case Overlay:
		return effectRecord{Type: "overlay", Pattern: FormatPattern(e.Pattern), Opacity: e.Opacity}, nil
	case Blur:
		return effectRecord{Type: "blur", Radius: e.Radius}, nil
	}
	return effectRecord{}, fmt.Errorf("%w: %T", ErrUnknownEffect, e)
}

func decodeEffect(r effectRecord) (Effect, error) {
	var (
		col Color
		err error
	)
	if r.Color != "" {
		if col, err = ParseColor(r.Color); err != nil {
			return nil, err
		}
	}
	switch r.Type {
	case "dropShadow":
		return DropShadow{Radius: r.Radius, X: r.X, Y: r.Y, Color: col, Opacity: r.Opacity}, nil
	case "innerShadow":
		return InnerShadow{Radius: r.Radius, X: r.X, Y: r.Y, Color: col, Opacity: r.Opacity}, nil
	case "overlay":
		p, err := ParsePattern(r.Pattern)
		if err != nil {
			return nil, err
		}
		return Overlay{Pattern: p, Opacity: r.Opacity}, nil
	case "blur":
		return Blur{Radius: r.Radius}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, r.Type)
}
