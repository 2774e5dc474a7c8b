package gravit

import "time"

// repaintStats holds per-repaint metrics of one view layer.
// Only collected when Scene.debug is true.
type repaintStats struct {
	layer    string
	rects    int
	canvases int
	duration time.Duration
}

// debugLogRepaint logs repaint stats at debug level.
func (s *Scene) debugLogRepaint(stats repaintStats) {
	if !s.debug {
		return
	}
	s.log().Debug("repaint",
		"layer", stats.layer,
		"rects", stats.rects,
		"canvases", stats.canvases,
		"duration", stats.duration)
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(s *Scene, n *Node) {
	depth := 0
	for p := n; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		s.log().Warn("tree depth exceeds threshold",
			"depth", depth, "threshold", debugMaxTreeDepth, "node", describeNode(n))
	}
}

// debugCheckChildCount warns if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(s *Scene, n *Node) {
	if len(n.children) > debugMaxChildCount {
		s.log().Warn("child count exceeds threshold",
			"node", describeNode(n), "children", len(n.children), "threshold", debugMaxChildCount)
	}
}
