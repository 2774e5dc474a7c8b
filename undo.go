package gravit

// MaxUndoEntries is the default undo history length.
const MaxUndoEntries = 100

// Action is one undoable step. Redo applies it, Undo reverts it.
type Action struct {
	Title string
	Redo  func()
	Undo  func()
}

// UndoList keeps the undo and redo stacks of a document. Adding an action
// clears the redo branch unless KeepRedoBranch is set.
type UndoList struct {
	EventTarget

	// MaxEntries bounds the undo stack; the oldest entries are evicted
	// first. Zero means MaxUndoEntries.
	MaxEntries int
	// KeepRedoBranch keeps redoable actions when a new action is added.
	KeepRedoBranch bool

	undoStack []Action
	redoStack []Action
}

// NewUndoList creates an empty undo list with the default capacity.
func NewUndoList() *UndoList {
	return &UndoList{MaxEntries: MaxUndoEntries}
}

func (u *UndoList) limit() int {
	if u.MaxEntries <= 0 {
		return MaxUndoEntries
	}
	return u.MaxEntries
}

// AddAction records an action that has already been applied.
func (u *UndoList) AddAction(a Action) {
	u.undoStack = append(u.undoStack, a)
	if over := len(u.undoStack) - u.limit(); over > 0 {
		clear(u.undoStack[:over])
		u.undoStack = u.undoStack[over:]
	}
	if !u.KeepRedoBranch {
		clear(u.redoStack)
		u.redoStack = u.redoStack[:0]
	}
	u.changed()
}

// Undo reverts up to steps actions, most recent first, and returns how many
// were reverted.
func (u *UndoList) Undo(steps int) int {
	n := 0
	for ; n < steps && len(u.undoStack) > 0; n++ {
		last := len(u.undoStack) - 1
		a := u.undoStack[last]
		u.undoStack = u.undoStack[:last]
		if a.Undo != nil {
			a.Undo()
		}
		u.redoStack = append(u.redoStack, a)
	}
	if n > 0 {
		u.changed()
	}
	return n
}

// Redo reapplies up to steps reverted actions and returns how many were
// reapplied.
func (u *UndoList) Redo(steps int) int {
	n := 0
	for ; n < steps && len(u.redoStack) > 0; n++ {
		last := len(u.redoStack) - 1
		a := u.redoStack[last]
		u.redoStack = u.redoStack[:last]
		if a.Redo != nil {
			a.Redo()
		}
		u.undoStack = append(u.undoStack, a)
	}
	if n > 0 {
		u.changed()
	}
	return n
}

// CanUndo reports whether an action can be undone.
func (u *UndoList) CanUndo() bool { return len(u.undoStack) > 0 }

// CanRedo reports whether an action can be redone.
func (u *UndoList) CanRedo() bool { return len(u.redoStack) > 0 }

// UndoTitle returns the title of the action Undo would revert, or "".
func (u *UndoList) UndoTitle() string {
	if len(u.undoStack) == 0 {
		return ""
	}
	return u.undoStack[len(u.undoStack)-1].Title
}

// RedoTitle returns the title of the action Redo would reapply, or "".
func (u *UndoList) RedoTitle() string {
	if len(u.redoStack) == 0 {
		return ""
	}
	return u.redoStack[len(u.redoStack)-1].Title
}

// UndoLen returns the number of undoable actions.
func (u *UndoList) UndoLen() int { return len(u.undoStack) }

// RedoLen returns the number of redoable actions.
func (u *UndoList) RedoLen() int { return len(u.redoStack) }

// Clear drops both stacks.
func (u *UndoList) Clear() {
	if len(u.undoStack) == 0 && len(u.redoStack) == 0 {
		return
	}
	u.undoStack = nil
	u.redoStack = nil
	u.changed()
}

func (u *UndoList) changed() {
	u.Trigger(UndoStateChanged{CanUndo: u.CanUndo(), CanRedo: u.CanRedo()})
}
