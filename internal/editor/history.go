package editor

import (
	"errors"

	"github.com/loomdoc/loom/internal/engine/doc"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithHistoryLimit caps the undo stack depth. Defaults to 1000.
func WithHistoryLimit(n int) HistoryOption {
	return func(h *History) {
		if n > 0 {
			h.limit = n
		}
	}
}

// History records committed snapshots as they are swapped in and restores
// them for undo/redo. Snapshots are immutable, so each stack entry is just
// a pointer; restoring one reconciles it against the surface like any
// other commit.
type History struct {
	ed    *Editor
	limit int

	undoStack []*doc.State
	redoStack []*doc.State

	restoring bool
	unsub     func() error
}

// NewHistory attaches a history to ed. Every committed update pushes the
// replaced snapshot onto the undo stack and clears the redo stack.
func NewHistory(ed *Editor, opts ...HistoryOption) *History {
	h := &History{ed: ed, limit: 1000}
	for _, opt := range opts {
		opt(h)
	}
	h.unsub = ed.RegisterListener(func(prev, _ *doc.State) {
		if h.restoring {
			return
		}
		h.undoStack = append(h.undoStack, prev)
		if len(h.undoStack) > h.limit {
			h.undoStack = h.undoStack[1:]
		}
		h.redoStack = nil
	})
	return h
}

// CanUndo reports whether an undo entry is available.
func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }

// CanRedo reports whether a redo entry is available.
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// Depth returns the undo and redo stack depths.
func (h *History) Depth() (undo, redo int) {
	return len(h.undoStack), len(h.redoStack)
}

// Undo restores the most recent undo snapshot and pushes the current one
// onto the redo stack.
func (h *History) Undo() error {
	if len(h.undoStack) == 0 {
		return ErrNothingToUndo
	}
	target := h.undoStack[len(h.undoStack)-1]
	current := h.ed.State()

	h.restoring = true
	defer func() { h.restoring = false }()
	if err := h.ed.restore(target); err != nil {
		return err
	}
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, current)
	return nil
}

// Redo restores the most recently undone snapshot.
func (h *History) Redo() error {
	if len(h.redoStack) == 0 {
		return ErrNothingToRedo
	}
	target := h.redoStack[len(h.redoStack)-1]
	current := h.ed.State()

	h.restoring = true
	defer func() { h.restoring = false }()
	if err := h.ed.restore(target); err != nil {
		return err
	}
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, current)
	return nil
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}

// Close detaches the history from the editor.
func (h *History) Close() error {
	return h.unsub()
}

// restore swaps an arbitrary committed snapshot in as current, reconciling
// it against the surface. The dirty set is recomputed by comparing node
// pointers between the two snapshots; copy-on-write guarantees untouched
// subtrees share pointers across commits.
func (e *Editor) restore(target *doc.State) error {
	if e.ctx != nil {
		return doc.ErrTransactionOpen
	}
	prev := e.state
	if target == prev {
		return nil
	}
	dirty := diffStates(prev, target)
	if err := e.rec.Run(prev, target, dirty, nil); err != nil {
		e.logger.Error("restore reconcile failed: %v", err)
		return err
	}
	e.state = target
	e.logger.Debug("snapshot restored: %d dirty nodes", len(dirty))
	e.notify(prev, target)
	return nil
}

// diffStates walks the target tree and marks every node whose pointer
// differs from prev's. When an element's child list changed, all of its
// children in target are marked too: a node's postamble depends on its
// position among siblings, so position changes must re-emit it even when
// the node itself is untouched.
func diffStates(prev, target *doc.State) map[doc.NodeKey]struct{} {
	dirty := make(map[doc.NodeKey]struct{})
	var walk func(key doc.NodeKey)
	walk = func(key doc.NodeKey) {
		tn, ok := target.Node(key)
		if !ok {
			return
		}
		pn, existed := prev.Node(key)
		changed := !existed || pn != tn
		if changed {
			dirty[key] = struct{}{}
		}
		if el, isEl := tn.(*doc.ElementNode); isEl {
			if changed {
				for _, child := range el.ChildKeys() {
					dirty[child] = struct{}{}
				}
			}
			for _, child := range el.ChildKeys() {
				walk(child)
			}
		}
	}
	walk(doc.RootKey)
	return dirty
}
