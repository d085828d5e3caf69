package doc

import (
	"errors"
	"fmt"
)

// Usage errors. These are recoverable: they are reported to the caller
// before any state is touched.
var (
	// ErrNoTransaction is returned when a mutation is attempted outside an
	// open transaction.
	ErrNoTransaction = errors.New("no open transaction")

	// ErrStateFrozen is returned when a mutation is attempted through a
	// committed (read-only) snapshot.
	ErrStateFrozen = errors.New("state is frozen")

	// ErrStateNotCommitted is returned when a transaction is opened over a
	// snapshot that is still pending; only committed snapshots can base a
	// new transaction.
	ErrStateNotCommitted = errors.New("state is not a committed snapshot")

	// ErrTransactionOpen is returned when a second transaction is opened
	// while one is already in progress.
	ErrTransactionOpen = errors.New("transaction already open")

	// ErrNodeNotFound is returned when a key does not resolve in the
	// current snapshot.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNotTextNode is returned when a text-only operation is applied to a
	// decorator, line-break or element node.
	ErrNotTextNode = errors.New("not a text node")

	// ErrNotElementNode is returned when a child operation is applied to a
	// leaf node.
	ErrNotElementNode = errors.New("not an element node")

	// ErrOffsetOutOfRange is returned when a text or child-index offset is
	// out of bounds for its node.
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrRootDetach is returned when an operation would detach or replace
	// the root node.
	ErrRootDetach = errors.New("root node cannot be detached")

	// ErrNoSibling is returned by merge operations when the requested
	// sibling does not exist.
	ErrNoSibling = errors.New("no such sibling")

	// ErrSelectionMismatch is returned when a selection operation requires
	// a different selection shape (e.g. a text operation on a multi-node
	// NodeSelection).
	ErrSelectionMismatch = errors.New("selection shape does not support operation")

	// ErrTypeNotRegistered is returned by the registry when no constructor
	// is known for a type tag.
	ErrTypeNotRegistered = errors.New("node type not registered")
)

// InvariantError reports a structural inconsistency in the document tree:
// a node missing from its parent's children, a dangling parent or selection
// reference, a cache entry missing for a visited node. These indicate a
// defect in a prior operation, not an expected runtime condition. The
// transaction that surfaces one is aborted without committing.
type InvariantError struct {
	Op     string  // operation that detected the violation
	Key    NodeKey // node involved, if any
	Detail string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("invariant violation in %s (node %s): %s", e.Op, e.Key, e.Detail)
	}
	return fmt.Sprintf("invariant violation in %s: %s", e.Op, e.Detail)
}

// invariantf raises an InvariantError. It is recovered at the transaction
// boundary and converted into a returned error; the pending snapshot is
// discarded, so the committed snapshot is never corrupted.
func invariantf(op string, key NodeKey, format string, args ...any) {
	panic(&InvariantError{Op: op, Key: key, Detail: fmt.Sprintf(format, args...)})
}

// RecoverInvariant converts an InvariantError panic into an error. It is
// used by transaction boundaries:
//
//	defer doc.RecoverInvariant(&err)
//
// Other panics are re-raised unchanged.
func RecoverInvariant(err *error) {
	if r := recover(); r != nil {
		if inv, ok := r.(*InvariantError); ok {
			*err = inv
			return
		}
		panic(r)
	}
}
