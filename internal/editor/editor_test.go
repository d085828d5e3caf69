package editor

import (
	"errors"
	"testing"

	"github.com/loomdoc/loom/internal/engine/doc"
	"github.com/loomdoc/loom/internal/engine/surface"
)

func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	e, err := New(WithSanityCheck())
	if err != nil {
		t.Fatalf("new editor: %v", err)
	}
	return e
}

func addParagraph(t *testing.T, ctx *doc.Context, text string) doc.NodeKey {
	t.Helper()
	p := doc.NewElementNode(ctx, "paragraph")
	if err := ctx.AppendChild(doc.RootKey, p.Key()); err != nil {
		t.Fatalf("append paragraph: %v", err)
	}
	tn := doc.NewTextNode(ctx, text)
	if err := ctx.AppendChild(p.Key(), tn.Key()); err != nil {
		t.Fatalf("append text: %v", err)
	}
	return tn.Key()
}

func TestUpdateCommitsAndReconciles(t *testing.T) {
	e := newTestEditor(t)

	err := e.Update(func(ctx *doc.Context) error {
		addParagraph(t, ctx, "Hello")
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if got := e.State().TextContent(); got != "Hello" {
		t.Fatalf("text content = %q, want %q", got, "Hello")
	}
	buf := e.Surface().(*surface.TextBuffer)
	if got := buf.Text(); got != "Hello" {
		t.Fatalf("buffer = %q, want %q", got, "Hello")
	}
	if !e.State().Frozen() {
		t.Fatalf("committed snapshot not frozen")
	}
}

func TestNestedUpdateFlattens(t *testing.T) {
	e := newTestEditor(t)

	commits := 0
	unsub := e.RegisterListener(func(prev, next *doc.State) { commits++ })
	defer func() { _ = unsub() }()

	err := e.Update(func(ctx *doc.Context) error {
		addParagraph(t, ctx, "a")
		return e.Update(func(inner *doc.Context) error {
			if inner != ctx {
				t.Fatalf("nested update got a different transaction")
			}
			addParagraph(t, inner, "b")
			return nil
		})
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if commits != 1 {
		t.Fatalf("listener fired %d times, want 1", commits)
	}
	if got := e.State().TextContent(); got != "a\nb" {
		t.Fatalf("text content = %q, want %q", got, "a\nb")
	}
}

func TestUpdateErrorDiscardsPending(t *testing.T) {
	e := newTestEditor(t)
	if err := e.Update(func(ctx *doc.Context) error {
		addParagraph(t, ctx, "keep")
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	before := e.State()

	boom := errors.New("boom")
	err := e.Update(func(ctx *doc.Context) error {
		addParagraph(t, ctx, "discard")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if e.State() != before {
		t.Fatalf("failed update swapped the committed snapshot")
	}
	buf := e.Surface().(*surface.TextBuffer)
	if got := buf.Text(); got != "keep" {
		t.Fatalf("buffer = %q, want %q", got, "keep")
	}
}

func TestInvariantPanicBecomesError(t *testing.T) {
	e := newTestEditor(t)

	var stale *doc.Context
	if err := e.Update(func(ctx *doc.Context) error {
		stale = ctx
		addParagraph(t, ctx, "x")
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	// Constructing a node against a closed transaction is a programming
	// error that surfaces as an invariant violation, recovered at the
	// update boundary.
	err := e.Update(func(ctx *doc.Context) error {
		doc.NewTextNode(stale, "y")
		return nil
	})
	var inv *doc.InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("err = %v, want InvariantError", err)
	}
	if got := e.State().TextContent(); got != "x" {
		t.Fatalf("text content = %q, want %q", got, "x")
	}
}

func TestListenerUnsubscribe(t *testing.T) {
	e := newTestEditor(t)

	var first, second int
	unsub := e.RegisterListener(func(prev, next *doc.State) { first++ })
	e.RegisterListener(func(prev, next *doc.State) { second++ })

	if err := e.Update(func(ctx *doc.Context) error {
		addParagraph(t, ctx, "a")
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := unsub(); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err := unsub(); !errors.Is(err, ErrListenerClosed) {
		t.Fatalf("second unsubscribe = %v, want ErrListenerClosed", err)
	}
	if err := e.Update(func(ctx *doc.Context) error {
		addParagraph(t, ctx, "b")
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if first != 1 || second != 2 {
		t.Fatalf("listener counts = %d, %d; want 1, 2", first, second)
	}
}

func TestReadSeesCommitted(t *testing.T) {
	e := newTestEditor(t)
	if err := e.Update(func(ctx *doc.Context) error {
		addParagraph(t, ctx, "committed")
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	var got string
	if err := e.Read(func(st *doc.State) error {
		got = st.TextContent()
		return nil
	}); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "committed" {
		t.Fatalf("read = %q, want %q", got, "committed")
	}
}

func TestNodeRegistryConstruction(t *testing.T) {
	e := newTestEditor(t)
	err := e.Update(func(ctx *doc.Context) error {
		p, err := e.Nodes().New(ctx, "paragraph")
		if err != nil {
			return err
		}
		if err := ctx.AppendChild(doc.RootKey, p.Key()); err != nil {
			return err
		}
		tn, err := e.Nodes().New(ctx, "text")
		if err != nil {
			return err
		}
		if err := ctx.AppendChild(p.Key(), tn.Key()); err != nil {
			return err
		}
		return tn.(*doc.TextNode).SetText(ctx, "via registry")
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := e.State().TextContent(); got != "via registry" {
		t.Fatalf("text content = %q, want %q", got, "via registry")
	}

	if _, err := e.Nodes().New(nil, "unknown"); !errors.Is(err, doc.ErrTypeNotRegistered) {
		t.Fatalf("err = %v, want ErrTypeNotRegistered", err)
	}
}
