package main

import (
	"github.com/rivo/uniseg"

	"github.com/loomdoc/loom/internal/engine/doc"
)

// Caret navigation over the document tree. Movement is by grapheme
// cluster within a text node and hops to the adjacent text leaf at node
// boundaries.

// textLeaves returns the keys of all attached text nodes in document
// order.
func textLeaves(st *doc.State) []doc.NodeKey {
	var out []doc.NodeKey
	var walk func(key doc.NodeKey)
	walk = func(key doc.NodeKey) {
		n, ok := st.Node(key)
		if !ok {
			return
		}
		if el, isEl := n.(*doc.ElementNode); isEl {
			for _, child := range el.ChildKeys() {
				walk(child)
			}
			return
		}
		if _, isText := n.(*doc.TextNode); isText {
			out = append(out, key)
		}
	}
	walk(doc.RootKey)
	return out
}

func leafText(st *doc.State, key doc.NodeKey) (string, bool) {
	n, ok := st.Node(key)
	if !ok {
		return "", false
	}
	tn, ok := n.(*doc.TextNode)
	if !ok {
		return "", false
	}
	return tn.Text(), true
}

// caretLeft returns the caret position one grapheme cluster to the left,
// or the end of the previous text leaf at a node start. ok is false when
// the caret is already at the document start.
func caretLeft(st *doc.State, p doc.Point) (doc.Point, bool) {
	if p.Kind != doc.PointText {
		return p, false
	}
	text, ok := leafText(st, p.Key)
	if !ok {
		return p, false
	}
	if p.Offset > 0 {
		return doc.TextPoint(p.Key, p.Offset-lastClusterLen(text[:p.Offset])), true
	}
	leaves := textLeaves(st)
	for i, key := range leaves {
		if key == p.Key && i > 0 {
			prev, _ := leafText(st, leaves[i-1])
			return doc.TextPoint(leaves[i-1], len(prev)), true
		}
	}
	return p, false
}

// caretRight returns the caret position one grapheme cluster to the
// right, or the start of the next text leaf at a node end.
func caretRight(st *doc.State, p doc.Point) (doc.Point, bool) {
	if p.Kind != doc.PointText {
		return p, false
	}
	text, ok := leafText(st, p.Key)
	if !ok {
		return p, false
	}
	if p.Offset < len(text) {
		return doc.TextPoint(p.Key, p.Offset+firstClusterLen(text[p.Offset:])), true
	}
	leaves := textLeaves(st)
	for i, key := range leaves {
		if key == p.Key && i+1 < len(leaves) {
			return doc.TextPoint(leaves[i+1], 0), true
		}
	}
	return p, false
}

// firstClusterLen returns the byte length of the leading grapheme
// cluster.
func firstClusterLen(s string) int {
	g := uniseg.NewGraphemes(s)
	if g.Next() {
		return len(g.Str())
	}
	return 0
}

// lastClusterLen returns the byte length of the trailing grapheme
// cluster.
func lastClusterLen(s string) int {
	g := uniseg.NewGraphemes(s)
	last := 0
	for g.Next() {
		last = len(g.Str())
	}
	return last
}
