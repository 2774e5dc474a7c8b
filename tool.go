package gravit

import "math"

const defaultDragDeadZone = 4.0 // view pixels

// pointerEvent is one pointer sample in view pixels.
type pointerEvent struct {
	x, y    float64
	pressed bool
}

// SelectTool implements the pointer interaction of an editor view: a click
// selects the topmost shape under the pointer (or clears the selection on
// empty canvas), and a drag moves the selected elements. A drag is one
// undoable transaction.
type SelectTool struct {
	// DragDeadZone is how far, in view pixels, the pointer must travel
	// before a press becomes a drag.
	DragDeadZone float64

	editor *Editor
	view   *View

	down       bool
	dragging   bool
	start      Vec2 // scene position of the press
	last       Vec2 // last view position
	hit        *Node
	moving     []*Node
	startTrf   []Transform
	injectQ    []pointerEvent
	transacted bool
}

// NewSelectTool creates a tool editing e's scene through v.
func NewSelectTool(e *Editor, v *View) *SelectTool {
	return &SelectTool{
		DragDeadZone: defaultDragDeadZone,
		editor:       e,
		view:         v,
	}
}

// Dragging reports whether a drag is in progress.
func (t *SelectTool) Dragging() bool {
	return t.dragging
}

// Pointer feeds one pointer sample in view pixels through the state
// machine. pressed is the primary button state.
func (t *SelectTool) Pointer(x, y float64, pressed bool) {
	p := t.view.ViewToScene(Vec2{x, y})
	switch {
	case pressed && !t.down:
		t.down = true
		t.dragging = false
		t.start = p
		t.last = Vec2{x, y}
		t.hit = t.editor.scene.HitTest(p)
	case pressed && t.down:
		if x == t.last.X && y == t.last.Y {
			return
		}
		t.last = Vec2{x, y}
		if !t.dragging {
			start := t.view.SceneToView(t.start)
			if math.Hypot(x-start.X, y-start.Y) <= t.DragDeadZone {
				return
			}
			t.beginDrag()
		}
		t.drag(p)
	case !pressed && t.down:
		if t.dragging {
			t.drag(p)
			t.endDrag()
		} else {
			t.click()
		}
		t.down = false
		t.dragging = false
		t.hit = nil
	}
}

func (t *SelectTool) click() {
	if t.hit == nil {
		t.editor.ClearSelection()
		return
	}
	t.editor.Select(t.hit)
}

func (t *SelectTool) beginDrag() {
	t.dragging = true
	if t.hit != nil && !t.hit.HasFlag(FlagSelected) {
		t.editor.Select(t.hit)
	}
	t.moving = t.moving[:0]
	t.startTrf = t.startTrf[:0]
	for _, n := range t.editor.Selection() {
		if n.HasFlag(FlagLocked) || n.Kind == KindLayer || hasSelectedAncestor(n) {
			continue
		}
		t.moving = append(t.moving, n)
		t.startTrf = append(t.startTrf, n.LocalTransform())
	}
	t.transacted = len(t.moving) > 0
	if t.transacted {
		t.editor.BeginTransaction()
	}
}

// hasSelectedAncestor reports whether n moves with a selected container.
func hasSelectedAncestor(n *Node) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p.Kind == KindGroup && p.HasFlag(FlagSelected) {
			return true
		}
	}
	return false
}

// drag sets each moving element's transform to its start transform
// translated by the scene delta, expressed in the parent's space.
func (t *SelectTool) drag(p Vec2) {
	d := p.Sub(t.start)
	for i, n := range t.moving {
		local := d
		if parent := n.parent; parent != nil && parent.Kind.IsElement() {
			local = parent.WorldTransform().Invert().MapDelta(d)
		}
		trf := Translate(local.X, local.Y).Multiply(t.startTrf[i])
		if err := n.SetProperty("trf", trf); err != nil {
			t.editor.scene.log().Warn("move element", "node", describeNode(n), "error", err)
		}
	}
}

func (t *SelectTool) endDrag() {
	if t.transacted {
		_ = t.editor.CommitTransaction("Move")
		t.transacted = false
	}
	clear(t.moving)
	t.moving = t.moving[:0]
}

// --- Injection ---

// InjectPress queues a press at the given view position. Queued events are
// consumed one per Step.
func (t *SelectTool) InjectPress(x, y float64) {
	t.injectQ = append(t.injectQ, pointerEvent{x: x, y: y, pressed: true})
}

// InjectMove queues a move with the button held down.
func (t *SelectTool) InjectMove(x, y float64) {
	t.injectQ = append(t.injectQ, pointerEvent{x: x, y: y, pressed: true})
}

// InjectRelease queues a release at the given view position.
func (t *SelectTool) InjectRelease(x, y float64) {
	t.injectQ = append(t.injectQ, pointerEvent{x: x, y: y, pressed: false})
}

// InjectClick queues a press followed by a release. Consumes two steps.
func (t *SelectTool) InjectClick(x, y float64) {
	t.InjectPress(x, y)
	t.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), frames-2 interpolated moves
// and a release at (toX, toY). Minimum frames is 2.
func (t *SelectTool) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	t.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps+1)
		t.InjectMove(fromX+(toX-fromX)*f, fromY+(toY-fromY)*f)
	}
	t.InjectRelease(toX, toY)
}

// Pending returns the number of queued injected events.
func (t *SelectTool) Pending() int {
	return len(t.injectQ)
}

// Step consumes one injected event. It reports whether one was consumed,
// in which case real input should be skipped for the frame.
func (t *SelectTool) Step() bool {
	if len(t.injectQ) == 0 {
		return false
	}
	ev := t.injectQ[0]
	copy(t.injectQ, t.injectQ[1:])
	t.injectQ = t.injectQ[:len(t.injectQ)-1]
	t.Pointer(ev.x, ev.y, ev.pressed)
	return true
}
