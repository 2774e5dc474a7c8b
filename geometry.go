package gravit

import "math"

// PathOp identifies a path segment command.
type PathOp uint8

const (
	PathMoveTo  PathOp = iota // P[0] starts a new subpath
	PathLineTo                // straight line to P[0]
	PathCubicTo               // cubic bezier with controls P[0], P[1] ending at P[2]
	PathClose                 // close the current subpath
)

// PathSegment is one path command with up to three points.
type PathSegment struct {
	Op PathOp
	P  [3]Vec2
}

// Path is a sequence of path segments in some coordinate space.
type Path struct {
	Segments []PathSegment
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) {
	p.Segments = append(p.Segments, PathSegment{Op: PathMoveTo, P: [3]Vec2{{x, y}}})
}

// LineTo adds a straight line to (x, y).
func (p *Path) LineTo(x, y float64) {
	p.Segments = append(p.Segments, PathSegment{Op: PathLineTo, P: [3]Vec2{{x, y}}})
}

// CubicTo adds a cubic bezier curve.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	p.Segments = append(p.Segments, PathSegment{Op: PathCubicTo, P: [3]Vec2{{c1x, c1y}, {c2x, c2y}, {x, y}}})
}

// Close closes the current subpath.
func (p *Path) Close() {
	p.Segments = append(p.Segments, PathSegment{Op: PathClose})
}

// IsEmpty reports whether the path has no drawing segments.
func (p Path) IsEmpty() bool {
	return len(p.Segments) < 2
}

func segmentPoints(op PathOp) int {
	switch op {
	case PathMoveTo, PathLineTo:
		return 1
	case PathCubicTo:
		return 3
	}
	return 0
}

// Transform returns a copy of the path with every point mapped by t.
func (p Path) Transform(t Transform) Path {
	out := Path{Segments: make([]PathSegment, len(p.Segments))}
	for i, seg := range p.Segments {
		for j := 0; j < segmentPoints(seg.Op); j++ {
			seg.P[j] = t.MapPoint(seg.P[j])
		}
		out.Segments[i] = seg
	}
	return out
}

// Bounds returns the bounds of every point of the path, control points
// included. For the shapes built here the control hull is tight.
func (p Path) Bounds() Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, seg := range p.Segments {
		for j := 0; j < segmentPoints(seg.Op); j++ {
			pt := seg.P[j]
			minX = math.Min(minX, pt.X)
			minY = math.Min(minY, pt.Y)
			maxX = math.Max(maxX, pt.X)
			maxY = math.Max(maxY, pt.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return Rect{}
	}
	return Rect{minX, minY, maxX - minX, maxY - minY}
}

// flattenSteps is the number of line segments per cubic when flattening.
const flattenSteps = 16

// Polygons flattens the path into closed point rings, one per subpath.
func (p Path) Polygons() [][]Vec2 {
	var rings [][]Vec2
	var cur []Vec2
	flush := func() {
		if len(cur) > 1 {
			rings = append(rings, cur)
		}
		cur = nil
	}
	for _, seg := range p.Segments {
		switch seg.Op {
		case PathMoveTo:
			flush()
			cur = []Vec2{seg.P[0]}
		case PathLineTo:
			cur = append(cur, seg.P[0])
		case PathCubicTo:
			if len(cur) == 0 {
				cur = []Vec2{seg.P[2]}
				continue
			}
			p0 := cur[len(cur)-1]
			for i := 1; i <= flattenSteps; i++ {
				cur = append(cur, cubicPoint(p0, seg.P[0], seg.P[1], seg.P[2], float64(i)/flattenSteps))
			}
		case PathClose:
			flush()
		}
	}
	flush()
	return rings
}

func cubicPoint(p0, p1, p2, p3 Vec2, t float64) Vec2 {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return Vec2{
		a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// Contains reports whether pt lies inside the path using the even-odd rule.
func (p Path) Contains(pt Vec2) bool {
	inside := false
	for _, ring := range p.Polygons() {
		j := len(ring) - 1
		for i := range ring {
			a, b := ring[i], ring[j]
			if (a.Y > pt.Y) != (b.Y > pt.Y) &&
				pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
				inside = !inside
			}
			j = i
		}
	}
	return inside
}

// RectPath returns a closed rectangle path.
func RectPath(x, y, w, h float64) Path {
	var p Path
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
	return p
}

// kappa is the bezier control distance for a quarter circle of radius 1.
const kappa = 0.5522847498307936

// EllipsePath returns a closed ellipse path built from four cubic arcs.
func EllipsePath(cx, cy, rx, ry float64) Path {
	kx, ky := rx*kappa, ry*kappa
	var p Path
	p.MoveTo(cx+rx, cy)
	p.CubicTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
	p.CubicTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
	p.CubicTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
	p.CubicTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	p.Close()
	return p
}

// PolygonPath returns a path through pts, closed when closed is true.
func PolygonPath(pts []Vec2, closed bool) Path {
	var p Path
	for i, pt := range pts {
		if i == 0 {
			p.MoveTo(pt.X, pt.Y)
		} else {
			p.LineTo(pt.X, pt.Y)
		}
	}
	if closed && len(pts) > 2 {
		p.Close()
	}
	return p
}
