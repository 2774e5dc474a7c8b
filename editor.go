package gravit

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MimeAttribute is the clipboard type of a stored attribute subtree.
const MimeAttribute = "application/infinity+attribute"

// undoableFlags are the flags whose changes are undoable. Selection and
// hover state are not document content.
const undoableFlags = FlagHidden | FlagLocked

type journalOp uint8

const (
	journalProps journalOp = iota
	journalInsert
	journalRemove
	journalFlagChange
)

// journalEntry is one recorded scene mutation with enough state to apply it
// in either direction.
type journalEntry struct {
	op       journalOp
	node     *Node
	keys     []string
	old, new []any

	parent, next *Node
	oldFlags     Flags
	newFlags     Flags
}

func (e journalEntry) revert() {
	switch e.op {
	case journalProps:
		mustApply(e.node.SetProperties(e.keys, e.old))
	case journalInsert:
		mustApply(e.parent.RemoveChild(e.node))
	case journalRemove:
		mustApply(e.parent.InsertChild(e.node, e.next))
	case journalFlagChange:
		e.node.setFlags(e.node.flags&^undoableFlags | e.oldFlags&undoableFlags)
	}
}

func (e journalEntry) apply() {
	switch e.op {
	case journalProps:
		mustApply(e.node.SetProperties(e.keys, e.new))
	case journalInsert:
		mustApply(e.parent.InsertChild(e.node, e.next))
	case journalRemove:
		mustApply(e.parent.RemoveChild(e.node))
	case journalFlagChange:
		e.node.setFlags(e.node.flags&^undoableFlags | e.newFlags&undoableFlags)
	}
}

// mustApply panics on replay failures: a recorded change that cannot be
// replayed means the history no longer matches the document.
func mustApply(err error) {
	if err != nil {
		panic("gravit: undo replay: " + err.Error())
	}
}

// Editor groups scene mutations into undoable transactions and provides the
// document-level commands: selection, clipboard and validated input.
type Editor struct {
	scene     *Scene
	undo      *UndoList
	clipboard Clipboard

	depth     int
	marks     []int
	journal   []journalEntry
	replaying int
	listeners []ListenerHandle
}

// NewEditor creates an editor for s with an undo list of the default
// capacity and an in-memory clipboard.
func NewEditor(s *Scene) *Editor {
	e := &Editor{
		undo:      NewUndoList(),
		clipboard: NewMemoryClipboard(),
	}
	e.setScene(s)
	return e
}

// Scene returns the edited scene.
func (e *Editor) Scene() *Scene {
	return e.scene
}

// UndoList returns the editor's undo history.
func (e *Editor) UndoList() *UndoList {
	return e.undo
}

// Clipboard returns the clipboard used by copy and paste.
func (e *Editor) Clipboard() Clipboard {
	return e.clipboard
}

// SetClipboard replaces the clipboard. Nil restores an in-memory one.
func (e *Editor) SetClipboard(c Clipboard) {
	if c == nil {
		c = NewMemoryClipboard()
	}
	e.clipboard = c
}

// setScene moves the journal listeners to s and drops the history, which
// refers to nodes of the previous scene.
func (e *Editor) setScene(s *Scene) {
	for _, h := range e.listeners {
		h.Remove()
	}
	e.scene = s
	e.journal = nil
	e.marks = nil
	e.depth = 0
	e.undo.Clear()
	e.listeners = []ListenerHandle{
		s.AddListener(EventAfterPropertiesChange, e.record),
		s.AddListener(EventChildInserted, e.record),
		s.AddListener(EventChildRemoved, e.record),
		s.AddListener(EventFlagsChanged, e.record),
	}
}

func (e *Editor) record(ev Event) {
	if e.depth == 0 || e.replaying > 0 {
		return
	}
	switch ev := ev.(type) {
	case AfterPropertiesChange:
		newVals := make([]any, len(ev.Keys))
		for i, k := range ev.Keys {
			newVals[i] = ev.Node.Property(k)
		}
		e.journal = append(e.journal, journalEntry{
			op: journalProps, node: ev.Node,
			keys: ev.Keys, old: ev.Old, new: newVals,
		})
	case ChildInserted:
		e.journal = append(e.journal, journalEntry{op: journalInsert, node: ev.Child, parent: ev.Parent, next: ev.Next})
	case ChildRemoved:
		e.journal = append(e.journal, journalEntry{op: journalRemove, node: ev.Child, parent: ev.Parent, next: ev.Next})
	case FlagsChanged:
		if (ev.Old^ev.New)&undoableFlags == 0 {
			return
		}
		e.journal = append(e.journal, journalEntry{op: journalFlagChange, node: ev.Node, oldFlags: ev.Old, newFlags: ev.New})
	}
}

// replay runs fn with journaling and style fan-out suspended. Linked styles
// are restored by their own recorded changes.
func (e *Editor) replay(fn func()) {
	e.replaying++
	e.scene.SuspendLinkSync()
	defer func() {
		e.scene.ResumeLinkSync()
		e.replaying--
	}()
	fn()
}

// --- Transactions ---

// InTransaction reports whether a transaction is open.
func (e *Editor) InTransaction() bool {
	return e.depth > 0
}

// BeginTransaction opens a transaction. Transactions nest; only the
// outermost commit records an undo action.
func (e *Editor) BeginTransaction() {
	e.marks = append(e.marks, len(e.journal))
	e.depth++
}

// CommitTransaction closes the innermost transaction. Closing the outermost
// one records every change since BeginTransaction as a single action titled
// title. A transaction without changes records nothing.
func (e *Editor) CommitTransaction(title string) error {
	if e.depth == 0 {
		return ErrNoTransaction
	}
	e.depth--
	e.marks = e.marks[:len(e.marks)-1]
	if e.depth > 0 {
		return nil
	}
	entries := e.journal
	e.journal = nil
	if len(entries) == 0 {
		return nil
	}
	e.undo.AddAction(Action{
		Title: title,
		Redo: func() {
			e.replay(func() {
				for _, en := range entries {
					en.apply()
				}
			})
		},
		Undo: func() {
			e.replay(func() {
				for i := len(entries) - 1; i >= 0; i-- {
					entries[i].revert()
				}
			})
		},
	})
	return nil
}

// RollbackTransaction reverts every change made since the innermost
// BeginTransaction and closes it.
func (e *Editor) RollbackTransaction() error {
	if e.depth == 0 {
		return ErrNoTransaction
	}
	mark := e.marks[len(e.marks)-1]
	e.marks = e.marks[:len(e.marks)-1]
	e.depth--
	entries := e.journal[mark:]
	e.replay(func() {
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i].revert()
		}
	})
	clear(entries)
	e.journal = e.journal[:mark]
	if e.depth == 0 {
		e.journal = nil
	}
	return nil
}

// Transact runs fn inside a transaction. When fn returns an error or panics
// the changes are rolled back; a panic is re-raised afterwards. Otherwise
// the transaction is committed under title.
func (e *Editor) Transact(title string, fn func() error) error {
	e.BeginTransaction()
	done := false
	defer func() {
		if done {
			return
		}
		// recover is nil when fn called runtime.Goexit; let it unwind.
		r := recover()
		_ = e.RollbackTransaction()
		if r != nil {
			panic(r)
		}
	}()
	if err := fn(); err != nil {
		done = true
		if rerr := e.RollbackTransaction(); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	done = true
	return e.CommitTransaction(title)
}

// Undo reverts the most recent action. It reports whether one was reverted.
func (e *Editor) Undo() bool {
	return e.undo.Undo(1) == 1
}

// Redo reapplies the most recently reverted action.
func (e *Editor) Redo() bool {
	return e.undo.Redo(1) == 1
}

// --- Document commands ---

// InsertElements appends nodes to parent in one transaction. Nodes the
// parent rejects are skipped; their errors are returned in skipped.
func (e *Editor) InsertElements(parent *Node, nodes ...*Node) (inserted []*Node, skipped []error) {
	_ = e.Transact("Insert", func() error {
		for _, n := range nodes {
			if err := parent.AppendChild(n); err != nil {
				if !errors.Is(err, ErrInvalidInsertion) {
					e.scene.log().Warn("insert element", "node", describeNode(n), "error", err)
				}
				skipped = append(skipped, err)
				continue
			}
			inserted = append(inserted, n)
		}
		return nil
	})
	return inserted, skipped
}

// DeleteElements removes nodes from their parents in one transaction.
func (e *Editor) DeleteElements(nodes ...*Node) error {
	return e.Transact("Delete", func() error {
		for _, n := range nodes {
			if n.parent == nil {
				continue
			}
			if err := n.parent.RemoveChild(n); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetProperties assigns properties of n as one undoable action.
func (e *Editor) SetProperties(title string, n *Node, keys []string, values []any) error {
	return e.Transact(title, func() error {
		return n.SetProperties(keys, values)
	})
}

// SetStrokeWidthInput parses user input for a stroke width and applies it.
// Input that is not a finite, non-negative number returns ErrInvalidInput
// and leaves the document and history untouched.
func (e *Editor) SetStrokeWidthInput(stroke *Node, text string) error {
	if stroke.Kind != KindStroke {
		return fmt.Errorf("%w: %s is not a stroke", ErrInvalidValue, describeNode(stroke))
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return fmt.Errorf("%w: stroke width %q", ErrInvalidInput, text)
	}
	return e.SetProperties("Stroke Width", stroke, []string{"width"}, []any{w})
}

// --- Selection ---

// Select replaces the selection with nodes. Selection is not undoable.
func (e *Editor) Select(nodes ...*Node) {
	keep := make(map[*Node]bool, len(nodes))
	for _, n := range nodes {
		keep[n] = true
	}
	for _, n := range e.scene.Selection() {
		if !keep[n] {
			n.ClearFlag(FlagSelected)
		}
	}
	for _, n := range nodes {
		if n.Kind.IsElement() {
			n.SetFlag(FlagSelected)
		}
	}
}

// Selection returns the selected elements in paint order.
func (e *Editor) Selection() []*Node {
	return e.scene.Selection()
}

// ClearSelection deselects everything.
func (e *Editor) ClearSelection() {
	for _, n := range e.scene.Selection() {
		n.ClearFlag(FlagSelected)
	}
}

// --- Clipboard ---

// CopyPattern places p on the clipboard.
func (e *Editor) CopyPattern(p Pattern) {
	e.clipboard.SetContent(MimePattern, FormatPattern(p))
}

// PastePattern reads a pattern from the clipboard.
func (e *Editor) PastePattern() (Pattern, error) {
	s, ok := e.clipboard.Content(MimePattern)
	if !ok {
		return nil, ErrClipboardEmpty
	}
	return ParsePattern(s)
}

// CopyAttribute places a stored copy of an attribute subtree on the
// clipboard.
func (e *Editor) CopyAttribute(a *Node) error {
	if !a.Kind.IsAttribute() {
		return fmt.Errorf("%w: %s is not an attribute", ErrInvalidValue, describeNode(a))
	}
	data, err := Store(a)
	if err != nil {
		return err
	}
	e.clipboard.SetContent(MimeAttribute, string(data))
	return nil
}

// PasteAttribute appends the clipboard attribute to target, a style or an
// effect attribute, as one undoable action.
func (e *Editor) PasteAttribute(target *Node) (*Node, error) {
	s, ok := e.clipboard.Content(MimeAttribute)
	if !ok {
		return nil, ErrClipboardEmpty
	}
	a, err := Restore([]byte(s))
	if err != nil {
		return nil, err
	}
	if !a.Kind.IsAttribute() {
		return nil, fmt.Errorf("%w: clipboard holds a %s", ErrInvalidValue, a.Kind)
	}
	if err := e.Transact("Paste Attribute", func() error {
		return target.AppendChild(a)
	}); err != nil {
		return nil, err
	}
	return a, nil
}
