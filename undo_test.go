package gravit

import "testing"

// counter builds actions that add or subtract from a shared value.
func counterAction(v *int, title string, delta int) Action {
	*v += delta
	return Action{
		Title: title,
		Redo:  func() { *v += delta },
		Undo:  func() { *v -= delta },
	}
}

func TestUndoRedo(t *testing.T) {
	u := NewUndoList()
	v := 0
	u.AddAction(counterAction(&v, "one", 1))
	u.AddAction(counterAction(&v, "ten", 10))

	if u.UndoTitle() != "ten" {
		t.Errorf("UndoTitle = %q, want ten", u.UndoTitle())
	}
	if n := u.Undo(1); n != 1 || v != 1 {
		t.Errorf("Undo(1) = %d, v = %d; want 1, 1", n, v)
	}
	if u.RedoTitle() != "ten" {
		t.Errorf("RedoTitle = %q, want ten", u.RedoTitle())
	}
	if n := u.Undo(5); n != 1 || v != 0 {
		t.Errorf("Undo(5) = %d, v = %d; want 1, 0", n, v)
	}
	if u.CanUndo() || !u.CanRedo() {
		t.Errorf("CanUndo = %v, CanRedo = %v", u.CanUndo(), u.CanRedo())
	}
	if n := u.Redo(2); n != 2 || v != 11 {
		t.Errorf("Redo(2) = %d, v = %d; want 2, 11", n, v)
	}
	if n := u.Redo(1); n != 0 {
		t.Errorf("Redo on empty stack = %d, want 0", n)
	}
}

func TestUndoNewActionClearsRedo(t *testing.T) {
	tests := []struct {
		name    string
		keep    bool
		redoLen int
	}{
		{"cleared", false, 0},
		{"kept", true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUndoList()
			u.KeepRedoBranch = tt.keep
			v := 0
			u.AddAction(counterAction(&v, "a", 1))
			u.AddAction(counterAction(&v, "b", 2))
			u.Undo(1)
			u.AddAction(counterAction(&v, "c", 4))
			if u.RedoLen() != tt.redoLen {
				t.Errorf("RedoLen = %d, want %d", u.RedoLen(), tt.redoLen)
			}
			if u.UndoLen() != 2 {
				t.Errorf("UndoLen = %d, want 2", u.UndoLen())
			}
		})
	}
}

func TestUndoEvictsOldest(t *testing.T) {
	u := NewUndoList()
	u.MaxEntries = 3
	v := 0
	for i := 1; i <= 5; i++ {
		u.AddAction(counterAction(&v, "step", i))
	}
	if u.UndoLen() != 3 {
		t.Fatalf("UndoLen = %d, want 3", u.UndoLen())
	}
	// Only steps 3, 4 and 5 can be undone.
	u.Undo(10)
	if v != 1+2 {
		t.Errorf("v = %d after undoing everything, want 3", v)
	}
}

func TestUndoStateChangedEvents(t *testing.T) {
	u := NewUndoList()
	var got []UndoStateChanged
	u.AddListener(EventUndoStateChanged, func(ev Event) {
		got = append(got, ev.(UndoStateChanged))
	})
	v := 0
	u.AddAction(counterAction(&v, "a", 1))
	u.Undo(1)
	u.Undo(1) // nothing to undo, no event
	u.Redo(1)
	u.Clear()
	u.Clear() // already empty, no event

	want := []UndoStateChanged{
		{CanUndo: true},
		{CanRedo: true},
		{CanUndo: true},
		{},
	}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestUndoZeroMaxEntriesUsesDefault(t *testing.T) {
	u := &UndoList{}
	v := 0
	for i := 0; i < MaxUndoEntries+5; i++ {
		u.AddAction(counterAction(&v, "step", 1))
	}
	if u.UndoLen() != MaxUndoEntries {
		t.Errorf("UndoLen = %d, want %d", u.UndoLen(), MaxUndoEntries)
	}
}
