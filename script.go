package gravit

import (
	"encoding/json"
	"fmt"
)

// scriptStep represents a single action in an editing script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Zoom   float64 `json:"zoom,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// script is the top-level JSON structure of an editing script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner sequences pointer input, view changes, undo and snapshots
// across frames for automated visual testing of an editor session.
type ScriptRunner struct {
	// SnapshotDir is where "snapshot" steps write PNGs. Empty means
	// "snapshots".
	SnapshotDir string
	// Snapshots lists the files written so far.
	Snapshots []string

	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	err       error
}

// LoadScript parses a JSON editing script:
//
//	{"steps": [
//	  {"action": "click", "x": 100, "y": 80},
//	  {"action": "drag", "fromX": 100, "fromY": 80, "toX": 160, "toY": 80, "frames": 6},
//	  {"action": "zoom", "zoom": 2, "x": 0, "y": 0},
//	  {"action": "scroll", "x": 10, "y": 10},
//	  {"action": "undo"},
//	  {"action": "redo"},
//	  {"action": "wait", "frames": 3},
//	  {"action": "snapshot", "label": "after-move"}
//	]}
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var sc script
	if err := json.Unmarshal(jsonData, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range sc.Steps {
		switch st.Action {
		case "snapshot", "click", "drag", "wait", "zoom", "scroll", "undo", "redo":
		default:
			return nil, fmt.Errorf("parse script: step %d: %w: action %q", i, ErrInvalidValue, st.Action)
		}
	}
	return &ScriptRunner{steps: sc.Steps}, nil
}

// Done reports whether all steps have been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Err returns the first error a step produced, if any. A failing step stops
// the script.
func (r *ScriptRunner) Err() error {
	return r.err
}

// Step advances the script by one frame. Pointer steps are routed through
// tool, which must be stepped by the caller in the same frame.
func (r *ScriptRunner) Step(tool *SelectTool) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if tool.Pending() > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "snapshot":
		dir := r.SnapshotDir
		if dir == "" {
			dir = "snapshots"
		}
		path, err := ExportSnapshot(tool.editor.scene, dir, st.Label, 1)
		if err != nil {
			r.err = err
			r.done = true
			return
		}
		r.Snapshots = append(r.Snapshots, path)
	case "click":
		tool.InjectClick(st.X, st.Y)
	case "drag":
		tool.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "zoom":
		tool.view.SetZoom(st.Zoom, Vec2{st.X, st.Y})
	case "scroll":
		tool.view.SetScroll(Vec2{st.X, st.Y})
	case "undo":
		tool.editor.Undo()
	case "redo":
		tool.editor.Redo()
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && tool.Pending() == 0 {
		r.done = true
	}
}
