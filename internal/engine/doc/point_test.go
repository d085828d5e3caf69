package doc

import "testing"

func TestPointValid(t *testing.T) {
	tr := newTree(t)
	var para, txt NodeKey
	tr.update(func(ctx *Context) {
		para, txt = tr.paragraph(ctx, "abc")
	})
	st := tr.st

	cases := []struct {
		name string
		p    Point
		want bool
	}{
		{"text in bounds", TextPoint(txt, 3), true},
		{"text past end", TextPoint(txt, 4), false},
		{"text negative", TextPoint(txt, -1), false},
		{"text kind on element", TextPoint(para, 0), false},
		{"element in bounds", ElementPoint(para, 1), true},
		{"element past children", ElementPoint(para, 2), false},
		{"element kind on text", ElementPoint(txt, 0), false},
		{"missing node", TextPoint("nope", 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.p.Valid(st); got != tc.want {
				t.Fatalf("Valid(%+v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}
}

func TestPointOrdering(t *testing.T) {
	tr := newTree(t)
	var p1, t1, p2, t2 NodeKey
	tr.update(func(ctx *Context) {
		p1, t1 = tr.paragraph(ctx, "hello")
		p2, t2 = tr.paragraph(ctx, "world")
	})
	st := tr.st

	cases := []struct {
		name string
		a, b Point
		want bool
	}{
		{"same node offsets", TextPoint(t1, 1), TextPoint(t1, 3), true},
		{"equal points", TextPoint(t1, 2), TextPoint(t1, 2), false},
		{"reversed offsets", TextPoint(t1, 3), TextPoint(t1, 1), false},
		{"across siblings", TextPoint(t1, 5), TextPoint(t2, 0), true},
		{"across parents", ElementPoint(p1, 1), ElementPoint(p2, 0), true},
		{"boundary precedes interior", ElementPoint(RootKey, 0), TextPoint(t1, 0), true},
		{"interior after boundary", TextPoint(t1, 0), ElementPoint(RootKey, 0), false},
		{"element index vs descendant", ElementPoint(p1, 0), TextPoint(t1, 4), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.IsBefore(st, tc.b); got != tc.want {
				t.Fatalf("IsBefore = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRangeSelectionOrderedAndBackward(t *testing.T) {
	tr := newTree(t)
	var t1, t2 NodeKey
	tr.update(func(ctx *Context) {
		_, t1 = tr.paragraph(ctx, "hello")
		_, t2 = tr.paragraph(ctx, "world")
	})
	st := tr.st

	fwd := NewRangeSelection(TextPoint(t1, 1), TextPoint(t2, 2))
	if fwd.IsBackward(st) {
		t.Fatalf("forward selection reported backward")
	}
	first, last := fwd.Ordered(st)
	if first != TextPoint(t1, 1) || last != TextPoint(t2, 2) {
		t.Fatalf("ordered = %+v..%+v", first, last)
	}

	back := NewRangeSelection(TextPoint(t2, 2), TextPoint(t1, 1))
	if !back.IsBackward(st) {
		t.Fatalf("backward selection not detected")
	}
	first, last = back.Ordered(st)
	if first != TextPoint(t1, 1) || last != TextPoint(t2, 2) {
		t.Fatalf("ordered (backward) = %+v..%+v", first, last)
	}
}

func TestSelectionCloneClearsDirty(t *testing.T) {
	sel := NewCaret(TextPoint("k", 0))
	sel.SetFocus(TextPoint("k", 1))
	if !sel.IsDirty() {
		t.Fatalf("mutated selection not dirty")
	}
	clone := sel.Clone()
	if clone.IsDirty() {
		t.Fatalf("clone inherited dirty flag")
	}
	if !clone.Equal(sel) {
		t.Fatalf("clone not equal to source")
	}
}
