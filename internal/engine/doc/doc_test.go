package doc

import "testing"

// tree is the shared test harness: a committed snapshot plus the key
// generator all transactions on the document share.
type tree struct {
	t    *testing.T
	keys KeyFunc
	st   *State
}

func newTree(t *testing.T) *tree {
	return &tree{t: t, keys: SequentialKeys(), st: NewState()}
}

// update runs fn in a transaction and commits, failing the test on error.
func (tr *tree) update(fn func(ctx *Context)) *State {
	tr.t.Helper()
	ctx, err := Begin(tr.st, tr.keys)
	if err != nil {
		tr.t.Fatalf("begin: %v", err)
	}
	fn(ctx)
	st, err := ctx.Commit()
	if err != nil {
		tr.t.Fatalf("commit: %v", err)
	}
	tr.st = st
	return st
}

// updateErr runs fn in a transaction and returns the commit error.
func (tr *tree) updateErr(fn func(ctx *Context)) error {
	tr.t.Helper()
	ctx, err := Begin(tr.st, tr.keys)
	if err != nil {
		tr.t.Fatalf("begin: %v", err)
	}
	fn(ctx)
	st, err := ctx.Commit()
	if err != nil {
		return err
	}
	tr.st = st
	return nil
}

// paragraph appends a paragraph holding one text node under root.
func (tr *tree) paragraph(ctx *Context, text string) (para, txt NodeKey) {
	tr.t.Helper()
	p := NewElementNode(ctx, "paragraph")
	if err := ctx.AppendChild(RootKey, p.Key()); err != nil {
		tr.t.Fatalf("append paragraph: %v", err)
	}
	tn := NewTextNode(ctx, text)
	if err := ctx.AppendChild(p.Key(), tn.Key()); err != nil {
		tr.t.Fatalf("append text: %v", err)
	}
	return p.Key(), tn.Key()
}

func (tr *tree) mustText(key NodeKey) *TextNode {
	tr.t.Helper()
	tn, ok := tr.st.nodes[key].(*TextNode)
	if !ok {
		tr.t.Fatalf("node %q is not a text node", key)
	}
	return tn
}

func (tr *tree) mustElement(key NodeKey) *ElementNode {
	tr.t.Helper()
	el, ok := tr.st.nodes[key].(*ElementNode)
	if !ok {
		tr.t.Fatalf("node %q is not an element", key)
	}
	return el
}

func (tr *tree) rangeSel() *RangeSelection {
	sel, ok := tr.st.selection.(*RangeSelection)
	if !ok {
		tr.t.Fatalf("selection is %T, want range", tr.st.selection)
	}
	return sel
}
