package gravit

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// viewAnim holds the active zoom and scroll tweens of a view.
type viewAnim struct {
	zoom         *gween.Tween
	zoomAnchor   Vec2
	scrollX      *gween.Tween
	scrollY      *gween.Tween
	doneX, doneY bool
}

// ZoomTo animates the zoom factor to zoom over duration seconds, keeping the
// view position anchor fixed. Call Update each frame to advance it.
func (v *View) ZoomTo(zoom float64, anchor Vec2, duration float32, easeFn ease.TweenFunc) {
	if zoom <= 0 {
		return
	}
	v.anim.zoom = gween.New(float32(v.zoom), float32(zoom), duration, easeFn)
	v.anim.zoomAnchor = anchor
}

// ScrollTo animates the scroll position to p over duration seconds.
func (v *View) ScrollTo(p Vec2, duration float32, easeFn ease.TweenFunc) {
	v.anim.scrollX = gween.New(float32(v.scroll.X), float32(p.X), duration, easeFn)
	v.anim.scrollY = gween.New(float32(v.scroll.Y), float32(p.Y), duration, easeFn)
	v.anim.doneX, v.anim.doneY = false, false
}

// Animating reports whether a zoom or scroll animation is running.
func (v *View) Animating() bool {
	return v.anim.zoom != nil || v.anim.scrollX != nil
}

// Update advances running animations by dt seconds. Each step invalidates
// the view.
func (v *View) Update(dt float32) {
	a := &v.anim
	if a.zoom != nil {
		val, done := a.zoom.Update(dt)
		v.SetZoom(float64(val), a.zoomAnchor)
		if done {
			a.zoom = nil
		}
	}
	if a.scrollX != nil {
		x, y := v.scroll.X, v.scroll.Y
		if !a.doneX {
			val, done := a.scrollX.Update(dt)
			x = float64(val)
			a.doneX = done
		}
		if !a.doneY {
			val, done := a.scrollY.Update(dt)
			y = float64(val)
			a.doneY = done
		}
		v.SetScroll(Vec2{x, y})
		if a.doneX && a.doneY {
			a.scrollX, a.scrollY = nil, nil
		}
	}
}
