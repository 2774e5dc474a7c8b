package gravit

import "image"

// DirtyList accumulates view-space rectangles that need repainting. Areas are
// kept as added, without coalescing; repaint walks them one by one.
type DirtyList struct {
	rects []image.Rectangle
	all   bool
}

// Add marks r dirty. Empty rectangles are ignored.
func (d *DirtyList) Add(r image.Rectangle) {
	if r.Empty() || d.all {
		return
	}
	d.rects = append(d.rects, r)
}

// InvalidateAll marks the whole viewport dirty, replacing any pending areas.
func (d *DirtyList) InvalidateAll() {
	d.all = true
	d.rects = d.rects[:0]
}

// IsEmpty reports whether nothing is pending.
func (d *DirtyList) IsEmpty() bool {
	return !d.all && len(d.rects) == 0
}

// Take returns the pending areas clamped to viewport and resets the list.
// Areas entirely outside the viewport are dropped.
func (d *DirtyList) Take(viewport image.Rectangle) []image.Rectangle {
	var out []image.Rectangle
	if d.all {
		if !viewport.Empty() {
			out = append(out, viewport)
		}
	} else {
		for _, r := range d.rects {
			if c := r.Intersect(viewport); !c.Empty() {
				out = append(out, c)
			}
		}
	}
	d.all = false
	d.rects = d.rects[:0]
	return out
}

// DirtyMatcher tests whether content intersects any of a set of dirty
// rectangles. The zero value matches everything.
type DirtyMatcher struct {
	rects []Rect
	all   bool
}

// matchAll returns a matcher that accepts every rectangle.
func matchAll() DirtyMatcher {
	return DirtyMatcher{all: true}
}

// newDirtyMatcher builds a matcher from view-space pixel rectangles.
func newDirtyMatcher(rects ...image.Rectangle) DirtyMatcher {
	m := DirtyMatcher{rects: make([]Rect, 0, len(rects))}
	for _, r := range rects {
		m.rects = append(m.rects, rectFromPixels(r))
	}
	return m
}

// Matches reports whether the view-space rectangle r needs painting.
func (m DirtyMatcher) Matches(r Rect) bool {
	if m.all || m.rects == nil {
		return true
	}
	for _, d := range m.rects {
		if d.Intersects(r) {
			return true
		}
	}
	return false
}
