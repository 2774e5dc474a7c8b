package gravit

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/fcolor"
	xdraw "golang.org/x/image/draw"
)

// porterDuff returns the source and destination factors of a Porter-Duff
// operator for the given source and destination alphas.
func porterDuff(op CompositeOp, sa, da float64) (fa, fb float64) {
	switch op {
	case SourceOver:
		return 1, 1 - sa
	case SourceAtop:
		return da, 1 - sa
	case SourceIn:
		return da, 0
	case SourceOut:
		return 1 - da, 0
	case DestinationOver:
		return 1 - da, 1
	case DestinationAtop:
		return 1 - da, sa
	case DestinationIn:
		return 0, sa
	case DestinationOut:
		return 0, 1 - sa
	case Copy:
		return 1, 0
	case Xor:
		return 1 - da, 1 - sa
	case Clear:
		return 0, 0
	}
	return 1, 1 - sa
}

// affectsUncovered reports whether op changes destination pixels where the
// source is fully transparent.
func (op CompositeOp) affectsUncovered() bool {
	switch op {
	case SourceIn, DestinationIn, SourceOut, DestinationAtop, Copy, Clear:
		return true
	}
	return false
}

// separable reports whether op is a per-channel blend mode rather than a
// Porter-Duff operator.
func (op CompositeOp) separable() bool {
	switch op {
	case Lighter, Multiply, Screen:
		return true
	}
	return false
}

// blendFunc returns the per-pixel function of a separable blend mode. Both
// arguments and the result are premultiplied.
func blendFunc(op CompositeOp) func(d, s fcolor.RGBAF64) fcolor.RGBAF64 {
	union := func(s, d fcolor.RGBAF64) float64 { return s.A + d.A - s.A*d.A }
	switch op {
	case Multiply:
		return func(d, s fcolor.RGBAF64) fcolor.RGBAF64 {
			mul := func(sc, dc float64) float64 { return sc*dc + sc*(1-d.A) + dc*(1-s.A) }
			return fcolor.RGBAF64{R: mul(s.R, d.R), G: mul(s.G, d.G), B: mul(s.B, d.B), A: union(s, d)}
		}
	case Screen:
		return func(d, s fcolor.RGBAF64) fcolor.RGBAF64 {
			scr := func(sc, dc float64) float64 { return sc + dc - sc*dc }
			return fcolor.RGBAF64{R: scr(s.R, d.R), G: scr(s.G, d.G), B: scr(s.B, d.B), A: union(s, d)}
		}
	}
	return func(d, s fcolor.RGBAF64) fcolor.RGBAF64 {
		return fcolor.RGBAF64{
			R: math.Min(1, s.R+d.R), G: math.Min(1, s.G+d.G),
			B: math.Min(1, s.B+d.B), A: math.Min(1, s.A+d.A),
		}
	}
}

// compositePixel applies a Porter-Duff operator to one premultiplied source
// pixel over a premultiplied destination pixel. All channels are in [0, 1].
func compositePixel(op CompositeOp, s, d [4]float64) [4]float64 {
	fa, fb := porterDuff(op, s[3], d[3])
	var out [4]float64
	for i := range out {
		out[i] = s[i]*fa + d[i]*fb
	}
	return out
}

// blendRGBA runs a separable blend mode over area through bild. The
// destination area and the opacity-scaled source are copied into zero-origin
// images first, since bild indexes pixels from the image origin.
func blendRGBA(dst, src *image.RGBA, area image.Rectangle, sp image.Point, opacity float64, op CompositeOp) {
	size := image.Rect(0, 0, area.Dx(), area.Dy())
	fg := image.NewRGBA(size)
	mask := image.NewUniform(color.Alpha{A: unitToByte(opacity)})
	xdraw.DrawMask(fg, size, src, sp, mask, image.Point{}, xdraw.Src)
	bg := image.NewRGBA(size)
	xdraw.Draw(bg, size, dst, area.Min, xdraw.Src)
	out := blend.Blend(bg, fg, blendFunc(op))
	xdraw.Draw(dst, area, out, image.Point{}, xdraw.Src)
}

// compositeRGBA draws src onto dst with op. src pixel sp maps onto dst pixel
// dp; both are in image coordinates. Destination pixels outside the source
// see a transparent source, which matters for operators such as
// DestinationIn.
func compositeRGBA(dst, src *image.RGBA, dp, sp image.Point, opacity float64, op CompositeOp) {
	srcRect := src.Bounds().Sub(sp).Add(dp)
	area := dst.Bounds()
	if !op.affectsUncovered() {
		area = area.Intersect(srcRect)
	}
	if area.Empty() {
		return
	}
	if op == SourceOver && opacity >= 1 {
		xdraw.Draw(dst, area, src, area.Min.Sub(dp).Add(sp), xdraw.Over)
		return
	}
	if op.separable() {
		blendRGBA(dst, src, area, area.Min.Sub(dp).Add(sp), opacity, op)
		return
	}

	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			var s [4]float64
			if (image.Point{x, y}).In(srcRect) {
				si := src.PixOffset(x-dp.X+sp.X, y-dp.Y+sp.Y)
				for c := 0; c < 4; c++ {
					s[c] = float64(src.Pix[si+c]) / 255 * opacity
				}
			}
			di := dst.PixOffset(x, y)
			var d [4]float64
			for c := 0; c < 4; c++ {
				d[c] = float64(dst.Pix[di+c]) / 255
			}
			out := compositePixel(op, s, d)
			for c := 0; c < 4; c++ {
				dst.Pix[di+c] = uint8(math.Round(clampUnit(out[c]) * 255))
			}
		}
	}
}
