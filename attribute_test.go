package gravit

import "testing"

func TestStrokeBBoxPadding(t *testing.T) {
	tests := []struct {
		align StrokeAlign
		want  float64
	}{
		{StrokeCenter, 5},
		{StrokeOutside, 10},
		{StrokeInside, 0},
	}
	for _, tt := range tests {
		t.Run(tt.align.String(), func(t *testing.T) {
			got := StrokeBBoxPadding(10, tt.align)
			want := Padding{tt.want, tt.want, tt.want, tt.want}
			if got != want {
				t.Errorf("StrokeBBoxPadding(10, %v) = %v, want %v", tt.align, got, want)
			}
		})
	}
}

func TestStrokedShapePaintBBox(t *testing.T) {
	tests := []struct {
		align StrokeAlign
		want  Rect
	}{
		{StrokeCenter, Rect{-5, -5, 110, 60}},
		{StrokeOutside, Rect{-10, -10, 120, 70}},
		{StrokeInside, Rect{0, 0, 100, 50}},
	}
	for _, tt := range tests {
		t.Run(tt.align.String(), func(t *testing.T) {
			r := NewRectangle(0, 0, 100, 50)
			st := NewInlineStyle()
			_ = st.AppendChild(NewStroke(SolidPattern{Color: ColorBlack}, 10, tt.align))
			_ = r.StyleSet().AppendChild(st)
			if got := r.PaintBBox(); got != tt.want {
				t.Errorf("PaintBBox = %v, want %v", got, tt.want)
			}
			if got := r.GeometryBBox(); got != (Rect{0, 0, 100, 50}) {
				t.Errorf("GeometryBBox = %v, want the unpadded rectangle", got)
			}
		})
	}
}

func TestStrokeWidthScalesWithTransform(t *testing.T) {
	r := NewRectangle(0, 0, 10, 10)
	_ = r.SetProperty("trf", Scale(2, 2))
	st := NewInlineStyle()
	_ = st.AppendChild(NewStroke(SolidPattern{Color: ColorBlack}, 4, StrokeCenter))
	_ = r.StyleSet().AppendChild(st)
	want := Rect{-4, -4, 28, 28}
	if got := r.PaintBBox(); got != want {
		t.Errorf("PaintBBox = %v, want %v", got, want)
	}
}

func TestStylePaddingIsPerSideMax(t *testing.T) {
	r := NewRectangle(0, 0, 10, 10)
	a := NewInlineStyle()
	_ = a.AppendChild(NewStroke(SolidPattern{}, 4, StrokeOutside))
	b := NewInlineStyle()
	fx := NewEffectAttribute(DropShadow{Radius: 2, X: 5, Y: 0, Color: ColorBlack, Opacity: 1})
	_ = b.AppendChild(fx)
	_ = r.StyleSet().AppendChild(a)
	_ = r.StyleSet().AppendChild(b)

	// Shadow padding is [0, 2, 7, 2]; the stroke adds 4 on every side.
	want := Padding{4, 4, 7, 4}
	if got := r.StylePadding(); got != want {
		t.Errorf("StylePadding = %v, want %v", got, want)
	}
}

func TestHiddenStyleAddsNoPadding(t *testing.T) {
	r := NewRectangle(0, 0, 10, 10)
	st := NewInlineStyle()
	_ = st.AppendChild(NewStroke(SolidPattern{}, 4, StrokeOutside))
	_ = st.SetProperty("visible", false)
	_ = r.StyleSet().AppendChild(st)
	if got := r.StylePadding(); !got.IsZero() {
		t.Errorf("StylePadding = %v, want zero", got)
	}
}

func TestEffectPaddingAddsContentPadding(t *testing.T) {
	fx := NewEffectAttribute(Blur{Radius: 3})
	_ = fx.AppendChild(NewStroke(SolidPattern{}, 4, StrokeCenter))
	want := Padding{5, 5, 5, 5}
	if got := AttributeBBoxPadding(fx, 1); got != want {
		t.Errorf("AttributeBBoxPadding = %v, want %v", got, want)
	}
	_ = fx.SetProperty("visible", false)
	if got := AttributeBBoxPadding(fx, 1); !got.IsZero() {
		t.Errorf("hidden effect padding = %v, want zero", got)
	}
}

func TestEnumNames(t *testing.T) {
	if StrokeOutside.String() != "outside" || CapRound.String() != "round" || JoinBevel.String() != "bevel" {
		t.Error("enum names do not match stored names")
	}
	if i, ok := indexOfName(lineCapNames[:], "square"); !ok || LineCap(i) != CapSquare {
		t.Errorf("indexOfName(square) = %d, %v", i, ok)
	}
	if _, ok := indexOfName(lineJoinNames[:], "miter"); ok {
		t.Error("indexOfName(miter) ok = true, want false")
	}
}
