package doc

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAppendChildReparents(t *testing.T) {
	tr := newTree(t)
	var p1, p2, txt NodeKey
	tr.update(func(ctx *Context) {
		p1, txt = tr.paragraph(ctx, "move me")
		p2, _ = tr.paragraph(ctx, "target")
	})

	tr.update(func(ctx *Context) {
		if err := ctx.AppendChild(p2, txt); err != nil {
			t.Fatalf("append: %v", err)
		}
	})

	// A reparenting splice detaches without the cannot-be-empty cascade;
	// the emptied paragraph stays, contributing only its newline.
	want := []NodeKey{p1, p2}
	if diff := cmp.Diff(want, tr.st.Root().ChildKeys()); diff != "" {
		t.Fatalf("root children mismatch:\n%s", diff)
	}
	if tr.mustElement(p1).ChildCount() != 0 {
		t.Fatalf("source paragraph still has children")
	}
	if got := tr.st.TextContent(); got != "\ntargetmove me" {
		t.Fatalf("content = %q, want %q", got, "\ntargetmove me")
	}
}

func TestInsertBeforeSameParentMove(t *testing.T) {
	tr := newTree(t)
	var para NodeKey
	var a, b, c NodeKey
	tr.update(func(ctx *Context) {
		para, a = tr.paragraph(ctx, "a")
		for _, s := range []string{"b", "c"} {
			tn := NewTextNode(ctx, s)
			if err := ctx.AppendChild(para, tn.Key()); err != nil {
				t.Fatalf("append: %v", err)
			}
			if s == "b" {
				b = tn.Key()
			} else {
				c = tn.Key()
			}
		}
	})

	// Moving an earlier sibling later within the same parent must account
	// for its own detach shifting the reference index.
	tr.update(func(ctx *Context) {
		if err := ctx.InsertBefore(c, a); err != nil {
			t.Fatalf("insert before: %v", err)
		}
	})

	want := []NodeKey{b, a, c}
	if diff := cmp.Diff(want, tr.mustElement(para).ChildKeys()); diff != "" {
		t.Fatalf("children mismatch:\n%s", diff)
	}
	if got := tr.st.TextContent(); got != "bac" {
		t.Fatalf("content = %q, want %q", got, "bac")
	}
}

func TestInsertAfter(t *testing.T) {
	tr := newTree(t)
	var p1, p2 NodeKey
	tr.update(func(ctx *Context) {
		p1, _ = tr.paragraph(ctx, "first")
		p2, _ = tr.paragraph(ctx, "last")
	})

	var mid NodeKey
	tr.update(func(ctx *Context) {
		p := NewElementNode(ctx, "paragraph")
		mid = p.Key()
		tn := NewTextNode(ctx, "mid")
		if err := ctx.AppendChild(mid, tn.Key()); err != nil {
			t.Fatalf("append: %v", err)
		}
		if err := ctx.InsertAfter(p1, mid); err != nil {
			t.Fatalf("insert after: %v", err)
		}
	})

	want := []NodeKey{p1, mid, p2}
	if diff := cmp.Diff(want, tr.st.Root().ChildKeys()); diff != "" {
		t.Fatalf("root children mismatch:\n%s", diff)
	}
}

func TestReplaceDropsNodeSelection(t *testing.T) {
	tr := newTree(t)
	var old NodeKey
	tr.update(func(ctx *Context) {
		old, _ = tr.paragraph(ctx, "old")
	})

	tr.update(func(ctx *Context) {
		if err := ctx.SetSelection(NewNodeSelection(old)); err != nil {
			t.Fatalf("set selection: %v", err)
		}
		repl := NewElementNode(ctx, "paragraph")
		tn := NewTextNode(ctx, "new")
		if err := ctx.AppendChild(repl.Key(), tn.Key()); err != nil {
			t.Fatalf("append: %v", err)
		}
		if err := ctx.Replace(old, repl.Key()); err != nil {
			t.Fatalf("replace: %v", err)
		}
	})

	if got := tr.st.TextContent(); got != "new" {
		t.Fatalf("content = %q, want %q", got, "new")
	}
	ns, ok := tr.st.Selection().(*NodeSelection)
	if !ok {
		t.Fatalf("selection is %T", tr.st.Selection())
	}
	if ns.Has(old) {
		t.Fatalf("replaced node still selected")
	}
}

func TestRemoveCascadesEmptyAncestors(t *testing.T) {
	tr := newTree(t)
	var para, txt NodeKey
	tr.update(func(ctx *Context) {
		para, txt = tr.paragraph(ctx, "only child")
	})

	tr.update(func(ctx *Context) {
		if err := ctx.Remove(txt); err != nil {
			t.Fatalf("remove: %v", err)
		}
	})

	if _, ok := tr.st.Node(para); ok {
		t.Fatalf("emptied paragraph survived cascade")
	}
	// The root is exempt even when empty.
	if tr.st.Root().ChildCount() != 0 {
		t.Fatalf("root children = %d, want 0", tr.st.Root().ChildCount())
	}
}

func TestRemoveStopsAtPreserveEmpty(t *testing.T) {
	tr := newTree(t)
	var cell, txt NodeKey
	tr.update(func(ctx *Context) {
		c := NewElementNode(ctx, "cell")
		if err := c.SetPreservesEmpty(ctx, true); err != nil {
			t.Fatalf("set preserve: %v", err)
		}
		cell = c.Key()
		if err := ctx.AppendChild(RootKey, cell); err != nil {
			t.Fatalf("append: %v", err)
		}
		tn := NewTextNode(ctx, "content")
		txt = tn.Key()
		if err := ctx.AppendChild(cell, txt); err != nil {
			t.Fatalf("append: %v", err)
		}
	})

	tr.update(func(ctx *Context) {
		if err := ctx.Remove(txt); err != nil {
			t.Fatalf("remove: %v", err)
		}
	})

	el := tr.mustElement(cell)
	if el.ChildCount() != 0 {
		t.Fatalf("cell children = %d, want 0", el.ChildCount())
	}
}

func TestRootCannotBeDetached(t *testing.T) {
	tr := newTree(t)
	ctx, err := Begin(tr.st, tr.keys)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer ctx.Abort()
	if err := ctx.Remove(RootKey); !errors.Is(err, ErrRootDetach) {
		t.Fatalf("remove root: %v, want ErrRootDetach", err)
	}
	p := NewElementNode(ctx, "paragraph")
	if err := ctx.AppendChild(RootKey, p.Key()); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := ctx.AppendChild(p.Key(), RootKey); !errors.Is(err, ErrRootDetach) {
		t.Fatalf("append root elsewhere: %v, want ErrRootDetach", err)
	}
}

func TestSpliceShiftsElementPoints(t *testing.T) {
	tr := newTree(t)
	var p1 NodeKey
	tr.update(func(ctx *Context) {
		p1, _ = tr.paragraph(ctx, "a")
		tr.paragraph(ctx, "b")
	})

	tr.update(func(ctx *Context) {
		// Caret between the two paragraphs.
		if err := ctx.SetSelection(NewCaret(ElementPoint(RootKey, 1))); err != nil {
			t.Fatalf("set selection: %v", err)
		}
		p := NewElementNode(ctx, "paragraph")
		tn := NewTextNode(ctx, "front")
		if err := ctx.AppendChild(p.Key(), tn.Key()); err != nil {
			t.Fatalf("append: %v", err)
		}
		if err := ctx.InsertBefore(p1, p.Key()); err != nil {
			t.Fatalf("insert before: %v", err)
		}
	})

	sel := tr.rangeSel()
	if got := sel.Anchor(); got != ElementPoint(RootKey, 2) {
		t.Fatalf("anchor = %+v, want index 2", got)
	}

	tr.update(func(ctx *Context) {
		if err := ctx.Remove(tr.st.Root().ChildKeys()[0]); err != nil {
			t.Fatalf("remove: %v", err)
		}
	})
	sel = tr.rangeSel()
	if got := sel.Anchor(); got != ElementPoint(RootKey, 1) {
		t.Fatalf("anchor after removal = %+v, want index 1", got)
	}
}

func TestRemoveRebindsCaretToTextSibling(t *testing.T) {
	tr := newTree(t)
	var para, t1, t2 NodeKey
	tr.update(func(ctx *Context) {
		para, t1 = tr.paragraph(ctx, "hello")
		tn := NewTextNode(ctx, "world")
		if err := tn.SetFormat(ctx, FormatBold); err != nil {
			t.Fatalf("set format: %v", err)
		}
		if err := ctx.AppendChild(para, tn.Key()); err != nil {
			t.Fatalf("append: %v", err)
		}
		t2 = tn.Key()
	})

	// Removing the node hosting the caret must rebind it, not leave it
	// dangling for Commit to reject.
	tr.update(func(ctx *Context) {
		installCaret(t, ctx, TextPoint(t2, 3))
		if err := ctx.Remove(t2); err != nil {
			t.Fatalf("remove: %v", err)
		}
	})

	sel := tr.rangeSel()
	if got := sel.Anchor(); got != TextPoint(t1, 5) {
		t.Fatalf("anchor = %+v, want end of %q", got, t1)
	}
	if got := tr.st.TextContent(); got != "hello" {
		t.Fatalf("content = %q, want %q", got, "hello")
	}
}

func TestRemoveSubtreeRebindsCaretInside(t *testing.T) {
	tr := newTree(t)
	var p2, t2 NodeKey
	tr.update(func(ctx *Context) {
		tr.paragraph(ctx, "keep")
		p2, t2 = tr.paragraph(ctx, "gone")
	})

	// The caret sits on a descendant of the removed subtree, not on the
	// removed node itself.
	tr.update(func(ctx *Context) {
		installCaret(t, ctx, TextPoint(t2, 2))
		if err := ctx.Remove(p2); err != nil {
			t.Fatalf("remove: %v", err)
		}
	})

	sel := tr.rangeSel()
	if got := sel.Anchor(); got != ElementPoint(RootKey, 1) {
		t.Fatalf("anchor = %+v, want end-of-children element point", got)
	}
	if got := tr.st.TextContent(); got != "keep" {
		t.Fatalf("content = %q, want %q", got, "keep")
	}
}

func TestRemoveCascadeRebindsCaret(t *testing.T) {
	tr := newTree(t)
	var p2, t2 NodeKey
	tr.update(func(ctx *Context) {
		tr.paragraph(ctx, "stays")
		p2, t2 = tr.paragraph(ctx, "only child")
	})

	// Removing the sole child cascades away its paragraph; the caret must
	// survive both removals.
	tr.update(func(ctx *Context) {
		installCaret(t, ctx, TextPoint(t2, 4))
		if err := ctx.Remove(t2); err != nil {
			t.Fatalf("remove: %v", err)
		}
	})

	if tr.st.IsAttached(p2) {
		t.Fatalf("emptied paragraph survived the cascade")
	}
	sel := tr.rangeSel()
	if got := sel.Anchor(); got != ElementPoint(RootKey, 1) {
		t.Fatalf("anchor after cascade = %+v, want end-of-children element point", got)
	}
}

func TestReplaceRebindsCaretInside(t *testing.T) {
	tr := newTree(t)
	var para, t1 NodeKey
	tr.update(func(ctx *Context) {
		para, t1 = tr.paragraph(ctx, "old text")
	})

	var repl NodeKey
	tr.update(func(ctx *Context) {
		installCaret(t, ctx, TextPoint(t1, 4))
		tn := NewTextNode(ctx, "new")
		repl = tn.Key()
		if err := ctx.Replace(t1, repl); err != nil {
			t.Fatalf("replace: %v", err)
		}
	})

	if got := tr.st.TextContent(); got != "new" {
		t.Fatalf("content = %q, want %q", got, "new")
	}
	sel := tr.rangeSel()
	if got := sel.Anchor(); got.Key != para || !got.Valid(tr.st) {
		t.Fatalf("anchor = %+v, want a valid point in %q", got, para)
	}
}
