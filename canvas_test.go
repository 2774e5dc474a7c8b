package gravit

import (
	"image"
	"image/color"
	"testing"
)

func TestNewCanvasOrigin(t *testing.T) {
	c := NewCanvas(image.Rect(10, 20, 30, 25))
	if got := c.Bounds(); got != image.Rect(10, 20, 30, 25) {
		t.Errorf("Bounds = %v", got)
	}
	if got := c.Image().Bounds(); got != image.Rect(0, 0, 20, 5) {
		t.Errorf("image bounds = %v, want origin at (0, 0)", got)
	}
}

func TestCanvasFillPathUsesOrigin(t *testing.T) {
	c := NewCanvas(image.Rect(10, 10, 30, 30))
	c.FillPath(RectPath(12, 12, 4, 4), SolidPattern{Color: ColorBlack}, Rect{12, 12, 4, 4}, 1)
	if a := c.RGBAAt(14, 14).A; a != 255 {
		t.Errorf("alpha inside = %d, want 255", a)
	}
	if a := c.RGBAAt(20, 20).A; a != 0 {
		t.Errorf("alpha outside = %d, want 0", a)
	}
}

func TestCanvasFillPathTransform(t *testing.T) {
	c := NewCanvas(image.Rect(0, 0, 20, 20))
	c.Transform = Scale(2, 2)
	c.FillPath(RectPath(0, 0, 5, 5), SolidPattern{Color: ColorBlack}, Rect{0, 0, 5, 5}, 1)
	if a := c.RGBAAt(9, 9).A; a != 255 {
		t.Errorf("scaled alpha = %d, want 255", a)
	}
	if a := c.RGBAAt(11, 11).A; a != 0 {
		t.Errorf("alpha past scaled edge = %d, want 0", a)
	}
}

func TestCanvasStrokeAlign(t *testing.T) {
	tests := []struct {
		align        StrokeAlign
		inner, outer bool
	}{
		{StrokeInside, true, false},
		{StrokeOutside, false, true},
		{StrokeCenter, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.align.String(), func(t *testing.T) {
			c := NewCanvas(image.Rect(0, 0, 40, 40))
			c.StrokePath(RectPath(10, 10, 20, 20), SolidPattern{Color: ColorBlack}, Rect{10, 10, 20, 20}, 1,
				StrokeStyle{Width: 6, Align: tt.align})
			// Two pixels inside and outside the left edge.
			if got := c.RGBAAt(12, 20).A > 0; got != tt.inner {
				t.Errorf("inner painted = %v, want %v", got, tt.inner)
			}
			if got := c.RGBAAt(7, 20).A > 0; got != tt.outer {
				t.Errorf("outer painted = %v, want %v", got, tt.outer)
			}
		})
	}
}

func TestDrawCanvasAlignsOrigins(t *testing.T) {
	dst := NewCanvas(image.Rect(0, 0, 10, 10))
	src := NewCanvas(image.Rect(4, 4, 6, 6))
	src.FillColor(ColorBlack, Copy)

	dst.DrawCanvas(src, 1, 0, 1, SourceOver)
	if a := dst.RGBAAt(5, 4).A; a != 255 {
		t.Errorf("alpha at shifted source = %d, want 255", a)
	}
	if a := dst.RGBAAt(4, 4).A; a != 0 {
		t.Errorf("alpha left of shifted source = %d, want 0", a)
	}
}

func TestCopyFrom(t *testing.T) {
	dst := NewCanvas(image.Rect(0, 0, 10, 10))
	dst.FillColor(ColorWhite, Copy)
	src := NewCanvas(image.Rect(2, 2, 4, 4))
	dst.CopyFrom(src)
	if a := dst.RGBAAt(3, 3).A; a != 0 {
		t.Errorf("copied alpha = %d, want 0", a)
	}
	if a := dst.RGBAAt(5, 5).A; a != 255 {
		t.Errorf("untouched alpha = %d, want 255", a)
	}
}

func TestBlurNoopForZeroRadius(t *testing.T) {
	c := NewCanvas(image.Rect(0, 0, 5, 5))
	c.FillPath(RectPath(2, 2, 1, 1), SolidPattern{Color: ColorBlack}, Rect{2, 2, 1, 1}, 1)
	c.Blur(0)
	if a := c.RGBAAt(1, 2).A; a != 0 {
		t.Errorf("neighbor alpha = %d after zero blur, want 0", a)
	}
}

func TestBlurKernelRadius(t *testing.T) {
	tests := []struct {
		r    float64
		want int
	}{
		{-1, 0}, {0, 0}, {1, 1}, {2, 1}, {5, 3}, {8, 4},
	}
	for _, tt := range tests {
		if got := blurSpread(tt.r); got != tt.want {
			t.Errorf("blurSpread(%v) = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestBlurOnPooledCanvas(t *testing.T) {
	p := &canvasPool{}
	// 5x5 is carved from an 8x8 backing, so rows are wider than the image.
	c := p.Acquire(image.Rect(0, 0, 5, 5))
	c.FillPath(RectPath(2, 2, 1, 1), SolidPattern{Color: ColorBlack}, Rect{2, 2, 1, 1}, 1)
	c.Blur(2)
	if a := c.RGBAAt(1, 2).A; a == 0 {
		t.Error("blur did not spread on a pooled canvas")
	}
	if a := c.RGBAAt(2, 1).A; a == 0 {
		t.Error("blur did not spread vertically on a pooled canvas")
	}
	p.Release(c)
}

func TestCanvasPoolReuse(t *testing.T) {
	p := &canvasPool{}
	a := p.Acquire(image.Rect(3, 3, 8, 10))
	if got := a.Bounds(); got != image.Rect(3, 3, 8, 10) {
		t.Errorf("Bounds = %v", got)
	}
	if got := a.backing.Bounds(); got != image.Rect(0, 0, 8, 8) {
		t.Errorf("backing = %v, want power-of-two 8x8", got)
	}
	a.FillColor(ColorBlack, Copy)
	backing := a.backing
	p.Release(a)
	if p.live != 0 {
		t.Errorf("live = %d, want 0", p.live)
	}

	b := p.Acquire(image.Rect(0, 0, 7, 6))
	if b.backing != backing {
		t.Error("same-bucket acquire did not reuse the buffer")
	}
	if a := b.RGBAAt(2, 2).A; a != 0 {
		t.Errorf("reused canvas alpha = %d, want cleared", a)
	}
	if p.acquired != 2 || p.live != 1 {
		t.Errorf("acquired = %d, live = %d; want 2, 1", p.acquired, p.live)
	}
	p.Release(b)
	p.Release(b) // second release is ignored
	if p.live != 0 {
		t.Errorf("live = %d after double release, want 0", p.live)
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct{ n, want int }{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {64, 64}, {65, 128},
	}
	for _, tt := range tests {
		if got := nextPowerOfTwo(tt.n); got != tt.want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestCompositeOperators(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	tests := []struct {
		op      CompositeOp
		inside  color.RGBA // where both overlap
		dstOnly color.RGBA // destination pixel not covered by the source
	}{
		{SourceOver, red, blue},
		{DestinationOver, blue, blue},
		{SourceIn, red, color.RGBA{}},
		{DestinationIn, blue, color.RGBA{}},
		{DestinationOut, color.RGBA{}, blue},
		{Xor, color.RGBA{}, blue},
		{Copy, red, color.RGBA{}},
		{Clear, color.RGBA{}, color.RGBA{}},
		{Lighter, color.RGBA{255, 0, 255, 255}, blue},
		{Multiply, color.RGBA{0, 0, 0, 255}, blue},
		{Screen, color.RGBA{255, 0, 255, 255}, blue},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			dst := NewCanvas(image.Rect(0, 0, 4, 1))
			dst.FillColor(Color{0, 0, 1, 1}, Copy)
			src := NewCanvas(image.Rect(0, 0, 2, 1))
			src.FillColor(Color{1, 0, 0, 1}, Copy)

			dst.DrawCanvas(src, 0, 0, 1, tt.op)
			if got := dst.RGBAAt(0, 0); got != tt.inside {
				t.Errorf("overlap = %v, want %v", got, tt.inside)
			}
			if got := dst.RGBAAt(3, 0); got != tt.dstOnly {
				t.Errorf("uncovered = %v, want %v", got, tt.dstOnly)
			}
		})
	}
}

func TestCompositeOpacity(t *testing.T) {
	dst := NewCanvas(image.Rect(0, 0, 1, 1))
	src := NewCanvas(image.Rect(0, 0, 1, 1))
	src.FillColor(ColorBlack, Copy)
	dst.DrawCanvas(src, 0, 0, 0.5, SourceOver)
	if a := dst.RGBAAt(0, 0).A; a != 128 {
		t.Errorf("alpha = %d, want 128", a)
	}
}

func TestBlendModeOpacity(t *testing.T) {
	dst := NewCanvas(image.Rect(0, 0, 2, 1))
	src := NewCanvas(image.Rect(0, 0, 1, 1))
	src.FillColor(Color{1, 0, 0, 1}, Copy)
	dst.DrawCanvas(src, 1, 0, 0.5, Lighter)
	c := dst.RGBAAt(1, 0)
	if c.R < 127 || c.R > 128 || c.A < 127 || c.A > 128 || c.G != 0 || c.B != 0 {
		t.Errorf("pixel = %v, want half red", c)
	}
	if got := dst.RGBAAt(0, 0); got != (color.RGBA{}) {
		t.Errorf("uncovered = %v, want transparent", got)
	}
}
