package gravit

import "math"

// Transform is a 2D affine matrix [a, b, c, d, tx, ty].
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Transform [6]float64

// IdentityTransform is the identity affine matrix.
var IdentityTransform = Transform{1, 0, 0, 1, 0, 0}

// Translate returns a translation matrix.
func Translate(x, y float64) Transform {
	return Transform{1, 0, 0, 1, x, y}
}

// Scale returns a scaling matrix.
func Scale(sx, sy float64) Transform {
	return Transform{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a rotation matrix for an angle in radians.
func Rotate(angle float64) Transform {
	sin, cos := math.Sincos(angle)
	return Transform{cos, sin, -sin, cos, 0, 0}
}

// Multiply returns t * o: o is applied first, then t.
func (t Transform) Multiply(o Transform) Transform {
	return Transform{
		t[0]*o[0] + t[2]*o[1],
		t[1]*o[0] + t[3]*o[1],
		t[0]*o[2] + t[2]*o[3],
		t[1]*o[2] + t[3]*o[3],
		t[0]*o[4] + t[2]*o[5] + t[4],
		t[1]*o[4] + t[3]*o[5] + t[5],
	}
}

// Invert computes the inverse matrix.
// Returns the identity matrix if the matrix is singular (determinant ~ 0).
func (t Transform) Invert() Transform {
	det := t[0]*t[3] - t[2]*t[1]
	if det > -1e-12 && det < 1e-12 {
		return IdentityTransform
	}
	invDet := 1.0 / det
	a := t[3] * invDet
	b := -t[1] * invDet
	c := -t[2] * invDet
	d := t[0] * invDet
	return Transform{
		a, b, c, d,
		-(a*t[4] + c*t[5]),
		-(b*t[4] + d*t[5]),
	}
}

// IsIdentity reports whether t is the identity matrix.
func (t Transform) IsIdentity() bool {
	return t == IdentityTransform
}

// MapPoint applies the matrix to a point.
func (t Transform) MapPoint(p Vec2) Vec2 {
	return Vec2{t[0]*p.X + t[2]*p.Y + t[4], t[1]*p.X + t[3]*p.Y + t[5]}
}

// MapDelta maps a scene-space offset as the difference of two mapped points,
// so rotation and skew in t are honored.
func (t Transform) MapDelta(d Vec2) Vec2 {
	return t.MapPoint(d).Sub(t.MapPoint(Vec2{}))
}

// MapRect returns the axis-aligned bounds of the four mapped corners.
func (t Transform) MapRect(r Rect) Rect {
	if r.IsEmpty() {
		return Rect{}
	}
	corners := [4]Vec2{
		t.MapPoint(Vec2{r.X, r.Y}),
		t.MapPoint(Vec2{r.Right(), r.Y}),
		t.MapPoint(Vec2{r.X, r.Bottom()}),
		t.MapPoint(Vec2{r.Right(), r.Bottom()}),
	}
	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		minX = math.Min(minX, c.X)
		minY = math.Min(minY, c.Y)
		maxX = math.Max(maxX, c.X)
		maxY = math.Max(maxY, c.Y)
	}
	return Rect{minX, minY, maxX - minX, maxY - minY}
}

// ScaleFactor returns the uniform scale of the matrix, sqrt(|det|).
// Used to convert scene-space lengths such as stroke widths.
func (t Transform) ScaleFactor() float64 {
	return math.Sqrt(math.Abs(t[0]*t[3] - t[1]*t[2]))
}
