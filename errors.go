package gravit

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInsertion is returned when a node may not be placed under the
	// requested parent.
	ErrInvalidInsertion = errors.New("gravit: invalid insertion")
	// ErrNotChild is returned when a node is removed from a parent it does
	// not belong to.
	ErrNotChild = errors.New("gravit: node is not a child of parent")
	// ErrUnknownClass is returned when a stored node names an unregistered class.
	ErrUnknownClass = errors.New("gravit: unknown node class")
	// ErrUnknownProperty is returned for property keys the node class does not declare.
	ErrUnknownProperty = errors.New("gravit: unknown property")
	// ErrInvalidValue is returned when a property value has the wrong type.
	ErrInvalidValue = errors.New("gravit: invalid property value")
	// ErrUnknownPattern is returned when a pattern string has an unknown tag.
	ErrUnknownPattern = errors.New("gravit: unknown pattern")
	// ErrUnknownEffect is returned when a stored effect names an unknown type.
	ErrUnknownEffect = errors.New("gravit: unknown effect")
	// ErrInvalidInput is returned for user-entered values that fail validation.
	ErrInvalidInput = errors.New("gravit: invalid input")
	// ErrNoTransaction is returned when committing without an open transaction.
	ErrNoTransaction = errors.New("gravit: no open transaction")
	// ErrClipboardEmpty is returned when the clipboard holds no content of
	// the requested type.
	ErrClipboardEmpty = errors.New("gravit: clipboard has no matching content")
	// ErrStorageUnavailable is returned when the storage backend cannot be used.
	ErrStorageUnavailable = errors.New("gravit: storage unavailable")
	// ErrNotFound is returned when a storage url has no data.
	ErrNotFound = errors.New("gravit: not found")
)

// TreeError describes a rejected tree mutation.
type TreeError struct {
	Op     string // "insert" or "remove"
	Parent *Node
	Child  *Node
	Reason string
	Err    error
}

func (e *TreeError) Error() string {
	prep := "into"
	if e.Op == "remove" {
		prep = "from"
	}
	return fmt.Sprintf("gravit: %s %s %s %s: %s", e.Op, describeNode(e.Child), prep, describeNode(e.Parent), e.Reason)
}

func (e *TreeError) Unwrap() error { return e.Err }

func describeNode(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s#%d", n.Kind, n.ID)
}

func insertionError(parent, child *Node, reason string) error {
	return &TreeError{Op: "insert", Parent: parent, Child: child, Reason: reason, Err: ErrInvalidInsertion}
}

func removalError(parent, child *Node) error {
	return &TreeError{Op: "remove", Parent: parent, Child: child, Reason: "not a child", Err: ErrNotChild}
}
