package gravit

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestLoadScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"steps": [`},
		{"no steps", `{"steps": []}`},
		{"unknown action", `{"steps": [{"action": "fly"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadScript([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
	_, err := LoadScript([]byte(`{"steps": [{"action": "fly"}]}`))
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("err = %v, want ErrInvalidValue", err)
	}
}

func runScript(t *testing.T, r *ScriptRunner, tool *SelectTool) int {
	t.Helper()
	frames := 0
	for !r.Done() {
		r.Step(tool)
		tool.Step()
		frames++
		if frames > 200 {
			t.Fatal("script did not finish")
		}
	}
	return frames
}

func TestScriptRunnerEditsAndSnapshots(t *testing.T) {
	tool, e, v, r := newToolScene(t)
	runner, err := LoadScript([]byte(`{"steps": [
		{"action": "click", "x": 20, "y": 20},
		{"action": "drag", "fromX": 20, "fromY": 20, "toX": 50, "toY": 20, "frames": 4},
		{"action": "snapshot", "label": "after move"},
		{"action": "undo"},
		{"action": "wait", "frames": 2},
		{"action": "zoom", "zoom": 2, "x": 0, "y": 0},
		{"action": "redo"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	runner.SnapshotDir = t.TempDir()
	runScript(t, runner, tool)

	if err := runner.Err(); err != nil {
		t.Fatal(err)
	}
	if len(runner.Snapshots) != 1 {
		t.Fatalf("snapshots = %v, want one", runner.Snapshots)
	}
	if !strings.HasSuffix(runner.Snapshots[0], "_after_move.png") {
		t.Errorf("snapshot path = %q, want a sanitized label", runner.Snapshots[0])
	}
	if _, err := os.Stat(runner.Snapshots[0]); err != nil {
		t.Errorf("snapshot not written: %v", err)
	}
	if got := r.LocalTransform(); got != Translate(30, 0) {
		t.Errorf("trf = %v, want translate(30, 0) after undo and redo", got)
	}
	if v.Zoom() != 2 {
		t.Errorf("Zoom = %v, want 2", v.Zoom())
	}
	if e.UndoList().UndoTitle() != "Move" {
		t.Errorf("UndoTitle = %q, want Move", e.UndoList().UndoTitle())
	}
}

func TestScriptRunnerWaitsForInjection(t *testing.T) {
	tool, _, _, _ := newToolScene(t)
	runner, err := LoadScript([]byte(`{"steps": [
		{"action": "drag", "fromX": 20, "fromY": 20, "toX": 30, "toY": 20, "frames": 5},
		{"action": "undo"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	runner.Step(tool)
	for i := 0; i < 3; i++ {
		tool.Step()
		runner.Step(tool) // blocked while the drag drains
	}
	if runner.Done() {
		t.Fatal("runner finished before the drag drained")
	}
	frames := runScript(t, runner, tool)
	if frames > 5 {
		t.Errorf("runner took %d more frames, want at most 5", frames)
	}
}

func TestScriptRunnerStopsOnSnapshotError(t *testing.T) {
	tool, _, _, _ := newToolScene(t)
	runner, err := LoadScript([]byte(`{"steps": [{"action": "snapshot"}, {"action": "undo"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	// A file where the directory should be makes MkdirAll fail.
	blocker := t.TempDir() + "/file"
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	runner.SnapshotDir = blocker + "/snaps"
	runScript(t, runner, tool)
	if runner.Err() == nil {
		t.Error("Err = nil, want the snapshot failure")
	}
}
