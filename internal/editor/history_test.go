package editor

import (
	"errors"
	"testing"

	"github.com/loomdoc/loom/internal/engine/doc"
	"github.com/loomdoc/loom/internal/engine/surface"
)

func mustUpdate(t *testing.T, e *Editor, fn UpdateFn) {
	t.Helper()
	if err := e.Update(fn); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func checkContent(t *testing.T, e *Editor, want string) {
	t.Helper()
	if got := e.State().TextContent(); got != want {
		t.Fatalf("text content = %q, want %q", got, want)
	}
	buf := e.Surface().(*surface.TextBuffer)
	if got := buf.Text(); got != want {
		t.Fatalf("buffer = %q, want %q", got, want)
	}
}

func TestHistoryUndoRedo(t *testing.T) {
	e := newTestEditor(t)
	h := NewHistory(e)

	mustUpdate(t, e, func(ctx *doc.Context) error {
		addParagraph(t, ctx, "Hello")
		return nil
	})
	mustUpdate(t, e, func(ctx *doc.Context) error {
		addParagraph(t, ctx, "World")
		return nil
	})
	checkContent(t, e, "Hello\nWorld")

	if err := h.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	checkContent(t, e, "Hello")
	if err := h.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	checkContent(t, e, "")
	if err := h.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("undo on empty stack = %v, want ErrNothingToUndo", err)
	}

	if err := h.Redo(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	checkContent(t, e, "Hello")
	if err := h.Redo(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	checkContent(t, e, "Hello\nWorld")
	if err := h.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Fatalf("redo on empty stack = %v, want ErrNothingToRedo", err)
	}
}

func TestHistoryNewEditClearsRedo(t *testing.T) {
	e := newTestEditor(t)
	h := NewHistory(e)

	mustUpdate(t, e, func(ctx *doc.Context) error {
		addParagraph(t, ctx, "one")
		return nil
	})
	mustUpdate(t, e, func(ctx *doc.Context) error {
		addParagraph(t, ctx, "two")
		return nil
	})
	if err := h.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if !h.CanRedo() {
		t.Fatalf("expected a redo entry after undo")
	}

	mustUpdate(t, e, func(ctx *doc.Context) error {
		addParagraph(t, ctx, "three")
		return nil
	})
	if h.CanRedo() {
		t.Fatalf("redo stack survived a fresh edit")
	}
	checkContent(t, e, "one\nthree")
}

func TestHistoryUndoRestoresOrdering(t *testing.T) {
	e := newTestEditor(t)
	h := NewHistory(e)

	var pa, pb doc.NodeKey
	mustUpdate(t, e, func(ctx *doc.Context) error {
		a := doc.NewElementNode(ctx, "paragraph")
		if err := ctx.AppendChild(doc.RootKey, a.Key()); err != nil {
			return err
		}
		ta := doc.NewTextNode(ctx, "a")
		if err := ctx.AppendChild(a.Key(), ta.Key()); err != nil {
			return err
		}
		b := doc.NewElementNode(ctx, "paragraph")
		if err := ctx.AppendChild(doc.RootKey, b.Key()); err != nil {
			return err
		}
		tb := doc.NewTextNode(ctx, "b")
		if err := ctx.AppendChild(b.Key(), tb.Key()); err != nil {
			return err
		}
		pa, pb = a.Key(), b.Key()
		return nil
	})
	checkContent(t, e, "a\nb")

	// Moving the last paragraph first changes both paragraphs' postamble
	// contributions; undo must restore them.
	mustUpdate(t, e, func(ctx *doc.Context) error {
		return ctx.InsertBefore(pa, pb)
	})
	checkContent(t, e, "b\na")

	if err := h.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	checkContent(t, e, "a\nb")
	if err := h.Redo(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	checkContent(t, e, "b\na")
}

func TestHistoryUndoInsideUpdateFails(t *testing.T) {
	e := newTestEditor(t)
	h := NewHistory(e)

	mustUpdate(t, e, func(ctx *doc.Context) error {
		addParagraph(t, ctx, "x")
		return nil
	})

	err := e.Update(func(ctx *doc.Context) error {
		addParagraph(t, ctx, "y")
		return h.Undo()
	})
	if !errors.Is(err, doc.ErrTransactionOpen) {
		t.Fatalf("undo inside update = %v, want ErrTransactionOpen", err)
	}
	checkContent(t, e, "x")
}

func TestHistoryLimit(t *testing.T) {
	e := newTestEditor(t)
	h := NewHistory(e, WithHistoryLimit(2))

	for _, s := range []string{"1", "2", "3", "4"} {
		text := s
		mustUpdate(t, e, func(ctx *doc.Context) error {
			addParagraph(t, ctx, text)
			return nil
		})
	}
	if undo, _ := h.Depth(); undo != 2 {
		t.Fatalf("undo depth = %d, want 2", undo)
	}
	if err := h.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if err := h.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	checkContent(t, e, "1\n2")
	if err := h.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("undo past limit = %v, want ErrNothingToUndo", err)
	}
}

func TestHistoryCloseDetaches(t *testing.T) {
	e := newTestEditor(t)
	h := NewHistory(e)

	mustUpdate(t, e, func(ctx *doc.Context) error {
		addParagraph(t, ctx, "tracked")
		return nil
	})
	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	mustUpdate(t, e, func(ctx *doc.Context) error {
		addParagraph(t, ctx, "untracked")
		return nil
	})
	if undo, _ := h.Depth(); undo != 1 {
		t.Fatalf("undo depth after close = %d, want 1", undo)
	}
}
