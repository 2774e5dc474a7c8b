package gravit

import (
	"image"
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func rectApprox(a, b Rect) bool {
	return approxEqual(a.X, b.X) && approxEqual(a.Y, b.Y) &&
		approxEqual(a.Width, b.Width) && approxEqual(a.Height, b.Height)
}

func TestTransformMultiplyOrder(t *testing.T) {
	m := Translate(10, 0).Multiply(Scale(2, 2))
	if got := m.MapPoint(Vec2{1, 1}); got != (Vec2{12, 2}) {
		t.Errorf("translate*scale maps (1,1) to %v, want (12,2)", got)
	}
	m = Scale(2, 2).Multiply(Translate(10, 0))
	if got := m.MapPoint(Vec2{1, 1}); got != (Vec2{22, 2}) {
		t.Errorf("scale*translate maps (1,1) to %v, want (22,2)", got)
	}
}

func TestTransformInvert(t *testing.T) {
	m := Translate(5, -3).Multiply(Rotate(math.Pi / 6)).Multiply(Scale(2, 4))
	p := Vec2{7, 11}
	back := m.Invert().MapPoint(m.MapPoint(p))
	if !approxEqual(back.X, p.X) || !approxEqual(back.Y, p.Y) {
		t.Errorf("inverse round trip = %v, want %v", back, p)
	}
	if got := Scale(0, 1).Invert(); got != IdentityTransform {
		t.Errorf("singular Invert = %v, want identity", got)
	}
}

func TestTransformMapRect(t *testing.T) {
	r := Rect{0, 0, 10, 20}
	got := Rotate(math.Pi / 2).MapRect(r)
	if !rectApprox(got, Rect{-20, 0, 20, 10}) {
		t.Errorf("rotated rect = %v, want {-20 0 20 10}", got)
	}
	if got := Translate(3, 4).MapRect(Rect{}); got != (Rect{}) {
		t.Errorf("empty rect mapped to %v", got)
	}
}

func TestTransformScaleFactor(t *testing.T) {
	tests := []struct {
		m    Transform
		want float64
	}{
		{IdentityTransform, 1},
		{Scale(3, 3), 3},
		{Scale(2, 8), 4},
		{Rotate(1).Multiply(Scale(2, 2)), 2},
		{Scale(-2, 2), 2},
	}
	for _, tt := range tests {
		if got := tt.m.ScaleFactor(); !approxEqual(got, tt.want) {
			t.Errorf("ScaleFactor(%v) = %v, want %v", tt.m, got, tt.want)
		}
	}
	if !IdentityTransform.IsIdentity() || Translate(1, 0).IsIdentity() {
		t.Error("IsIdentity mismatch")
	}
}

func TestRectPath(t *testing.T) {
	p := RectPath(10, 20, 30, 40)
	if got := p.Bounds(); got != (Rect{10, 20, 30, 40}) {
		t.Errorf("Bounds = %v", got)
	}
	tests := []struct {
		pt   Vec2
		want bool
	}{
		{Vec2{25, 40}, true},
		{Vec2{5, 40}, false},
		{Vec2{25, 70}, false},
		{Vec2{39.9, 59.9}, true},
	}
	for _, tt := range tests {
		if got := p.Contains(tt.pt); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.pt, got, tt.want)
		}
	}
}

func TestEllipsePath(t *testing.T) {
	p := EllipsePath(50, 50, 20, 10)
	if got := p.Bounds(); !rectApprox(got, Rect{30, 40, 40, 20}) {
		t.Errorf("Bounds = %v, want {30 40 40 20}", got)
	}
	if !p.Contains(Vec2{50, 50}) {
		t.Error("center not inside")
	}
	// Inside the bounding box corner but outside the curve.
	if p.Contains(Vec2{31, 41}) {
		t.Error("corner reported inside")
	}
	rings := p.Polygons()
	if len(rings) != 1 || len(rings[0]) != 1+4*flattenSteps {
		t.Errorf("Polygons = %d rings, want one of %d points", len(rings), 1+4*flattenSteps)
	}
}

func TestPolygonPath(t *testing.T) {
	pts := []Vec2{{0, 0}, {10, 0}, {0, 10}}
	closed := PolygonPath(pts, true)
	open := PolygonPath(pts, false)
	if n := len(closed.Segments); n != 4 {
		t.Errorf("closed segments = %d, want 4", n)
	}
	if n := len(open.Segments); n != 3 {
		t.Errorf("open segments = %d, want 3", n)
	}
	if !closed.Contains(Vec2{2, 2}) || closed.Contains(Vec2{8, 8}) {
		t.Error("triangle containment mismatch")
	}
	if !PolygonPath(pts[:1], true).IsEmpty() {
		t.Error("single point path not empty")
	}
}

func TestPathTransform(t *testing.T) {
	p := RectPath(0, 0, 10, 10).Transform(Translate(5, 5).Multiply(Scale(2, 1)))
	if got := p.Bounds(); got != (Rect{5, 5, 20, 10}) {
		t.Errorf("Bounds = %v, want {5 5 20 10}", got)
	}
	if got := (Path{}).Bounds(); got != (Rect{}) {
		t.Errorf("empty Bounds = %v", got)
	}
}

func TestRectOps(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	b := Rect{10, 5, 10, 10}

	if !a.Intersects(b) {
		t.Error("edge-touching rects should intersect")
	}
	if a.Intersects(Rect{11, 0, 5, 5}) {
		t.Error("separate rects intersect")
	}
	if got := a.Union(b); got != (Rect{0, 0, 20, 15}) {
		t.Errorf("Union = %v", got)
	}
	if got := a.Union(Rect{}); got != a {
		t.Errorf("Union with empty = %v", got)
	}
	if got := a.Intersect(Rect{5, 5, 10, 10}); got != (Rect{5, 5, 5, 5}) {
		t.Errorf("Intersect = %v", got)
	}
	if got := a.Intersect(b); !got.IsEmpty() {
		t.Errorf("edge Intersect = %v, want empty", got)
	}
	if !a.Contains(10, 10) || a.Contains(10.1, 0) {
		t.Error("Contains edge handling")
	}
	if got := a.Expand(Padding{1, 2, 3, 4}); got != (Rect{-1, -2, 14, 16}) {
		t.Errorf("Expand = %v", got)
	}
	if got := (Rect{}).Outset(5); got != (Rect{}) {
		t.Errorf("empty Outset = %v", got)
	}
	if got := (Rect{0.5, 1.2, 2, 3}).Pixels(); got != image.Rect(0, 1, 3, 5) {
		t.Errorf("Pixels = %v", got)
	}
}

func TestPaddingOps(t *testing.T) {
	p := Padding{1, 5, 2, 0}
	q := Padding{3, 1, 2, 4}
	if got := p.Max(q); got != (Padding{3, 5, 2, 4}) {
		t.Errorf("Max = %v", got)
	}
	if got := p.Add(q); got != (Padding{4, 6, 4, 4}) {
		t.Errorf("Add = %v", got)
	}
	if got := p.Scale(2); got != (Padding{2, 10, 4, 0}) {
		t.Errorf("Scale = %v", got)
	}
	if p.IsZero() || !(Padding{}).IsZero() {
		t.Error("IsZero mismatch")
	}
	if got := q.maxSide(); got != 4 {
		t.Errorf("maxSide = %v, want 4", got)
	}
}
