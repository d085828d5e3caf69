package doc

// Selection-driven editing operations. These assume the receiver is the
// selection installed in the transaction (ctx.RangeSel()): structural
// mutations repair the installed selection's points automatically, so the
// receiver observes its own repairs mid-operation.

// InsertText replaces the selected range with text and collapses the
// selection immediately after it. Both endpoints are first resolved to
// insertable text positions: element-index points materialize a zero-length
// text node at that position, and a collapsed caret against token,
// segmented or inert text gets an adjacent empty host node instead.
func (s *RangeSelection) InsertText(ctx *Context, text string) error {
	if err := ctx.check(); err != nil {
		return err
	}

	materialized := make(map[NodeKey]struct{})

	if s.IsCollapsed() {
		p, err := resolveInsertablePoint(ctx, s.anchor, materialized)
		if err != nil {
			return err
		}
		s.Collapse(p)
	} else {
		if err := s.expandUneditableEndpoints(ctx); err != nil {
			return err
		}
		anchor, err := resolveInsertablePoint(ctx, s.anchor, materialized)
		if err != nil {
			return err
		}
		s.SetAnchor(anchor)
		focus, err := resolveInsertablePoint(ctx, s.focus, materialized)
		if err != nil {
			return err
		}
		s.SetFocus(focus)
	}

	first, last := s.Ordered(ctx.pending)

	if first.Key == last.Key {
		return s.insertTextSingle(ctx, first, last, text, materialized)
	}
	return s.insertTextMulti(ctx, first, last, text)
}

// insertTextSingle handles anchor and focus resolving to the same text
// node: splice the selected span out, splice the new text in, collapse
// after it.
func (s *RangeSelection) insertTextSingle(ctx *Context, first, last Point, text string, materialized map[NodeKey]struct{}) error {
	tn, err := ctx.Text(first.Key)
	if err != nil {
		return err
	}
	if err := tn.SpliceText(ctx, first.Offset, last.Offset-first.Offset, text, false); err != nil {
		return err
	}
	s.Collapse(TextPoint(first.Key, first.Offset+len(text)))

	cur, err := ctx.Text(first.Key)
	if err != nil {
		return err
	}
	_, freshHost := materialized[first.Key]
	if cur.text == "" && text == "" && last.Offset > first.Offset && !freshHost {
		return ctx.Remove(cur.key)
	}
	if cur.text != "" {
		return cur.Normalize(ctx)
	}
	return nil
}

// insertTextMulti handles a selection spanning several nodes: trim the last
// node's head, replace the first node's tail with the new text, remove
// everything strictly between, and stitch the structure after the selection
// back onto the first node's block.
func (s *RangeSelection) insertTextMulti(ctx *Context, first, last Point, text string) error {
	st := ctx.pending

	between := collectBetween(st, first.Key, last.Key)

	lastTn, err := ctx.Text(last.Key)
	if err != nil {
		return err
	}
	if err := lastTn.SpliceText(ctx, 0, last.Offset, "", false); err != nil {
		return err
	}

	firstTn, err := ctx.Text(first.Key)
	if err != nil {
		return err
	}
	if err := firstTn.SpliceText(ctx, first.Offset, firstTn.TextLen()-first.Offset, text, false); err != nil {
		return err
	}
	s.Collapse(TextPoint(first.Key, first.Offset+len(text)))

	for _, key := range between {
		if !st.IsAttached(key) {
			continue
		}
		if err := ctx.Remove(key); err != nil {
			return err
		}
	}

	firstParent, _ := st.indexInParent(first.Key)
	lastParent, _ := st.indexInParent(last.Key)
	if firstParent == "" || lastParent == "" {
		invariantf("InsertText", first.Key, "selection endpoint detached mid-operation")
	}
	if firstParent != lastParent {
		// Everything before the last node inside its parent was strictly
		// between the endpoints and is gone; the last node and its
		// followers are the still-attached remainder of the last node's
		// chain. Stitch them onto the tail of the first node's parent so
		// structure outside the selection is preserved.
		lastEl := st.element("InsertText", lastParent)
		idx := lastEl.IndexOfChild(last.Key)
		if idx < 0 {
			invariantf("InsertText", last.Key, "node missing from children of %s", lastParent)
		}
		moving := append([]NodeKey(nil), lastEl.children[idx:]...)
		ref := first.Key
		for _, key := range moving {
			if err := ctx.InsertAfter(ref, key); err != nil {
				return err
			}
			ref = key
		}
		// Emptied ancestors of the last node cascade away; the cascade
		// stops at anything still carrying content, the first node's chain
		// in particular.
		if _, ok := st.nodes[lastParent]; ok && st.IsAttached(lastParent) && lastParent != RootKey {
			if el := st.element("InsertText", lastParent); el.ChildCount() == 0 && !el.PreservesEmpty() {
				if err := ctx.Remove(lastParent); err != nil {
					return err
				}
			}
		}
	}

	firstCur, err := ctx.Text(first.Key)
	if err != nil {
		return err
	}
	if err := firstCur.Normalize(ctx); err != nil {
		return err
	}

	// A zero-length host materialized for the trailing endpoint survives
	// the splice when it cannot merge with the first node; sweep it.
	if last.Key != first.Key && st.IsAttached(last.Key) {
		if lastCur, err := ctx.Text(last.Key); err == nil && lastCur.TextLen() == 0 {
			return lastCur.Normalize(ctx)
		}
	}
	return nil
}

// expandUneditableEndpoints widens endpoints sitting inside token,
// segmented or inert text to the node's outer edge, so the node falls
// wholly inside the selection and is removed rather than partially edited.
func (s *RangeSelection) expandUneditableEndpoints(ctx *Context) error {
	st := ctx.pending
	first, last := s.Ordered(st)
	backward := s.IsBackward(st)

	expand := func(p Point, toEnd bool) Point {
		if p.Kind != PointText {
			return p
		}
		tn, ok := st.nodes[p.Key].(*TextNode)
		if !ok || tn.CanInsertAt() {
			return p
		}
		parent, idx := st.indexInParent(p.Key)
		if parent == "" {
			return p
		}
		if toEnd {
			return ElementPoint(parent, idx+1)
		}
		return ElementPoint(parent, idx)
	}

	first = expand(first, false)
	last = expand(last, true)
	if backward {
		s.SetAnchor(last)
		s.SetFocus(first)
	} else {
		s.SetAnchor(first)
		s.SetFocus(last)
	}
	return nil
}

// resolveInsertablePoint turns an arbitrary point into a text point that
// accepts insertion, materializing a zero-length text node when the point
// addresses an element position or an uninsertable leaf edge. Newly created
// hosts are recorded in materialized.
func resolveInsertablePoint(ctx *Context, p Point, materialized map[NodeKey]struct{}) (Point, error) {
	st := ctx.pending

	if p.Kind == PointElement {
		el, err := ctx.Element(p.Key)
		if err != nil {
			return Point{}, err
		}
		// An existing insertable text node at the boundary absorbs the
		// caret instead of spawning a host.
		if p.Offset > 0 && p.Offset <= el.ChildCount() {
			if tn, ok := st.nodes[el.children[p.Offset-1]].(*TextNode); ok && tn.CanInsertAt() {
				return TextPoint(tn.key, len(tn.text)), nil
			}
		}
		if p.Offset < el.ChildCount() {
			if tn, ok := st.nodes[el.children[p.Offset]].(*TextNode); ok && tn.CanInsertAt() {
				return TextPoint(tn.key, 0), nil
			}
		}
		host := NewTextNode(ctx, "")
		materialized[host.key] = struct{}{}
		if p.Offset >= el.ChildCount() {
			if err := ctx.AppendChild(p.Key, host.key); err != nil {
				return Point{}, err
			}
		} else if err := ctx.InsertBefore(el.children[p.Offset], host.key); err != nil {
			return Point{}, err
		}
		return TextPoint(host.key, 0), nil
	}

	tn, err := ctx.Text(p.Key)
	if err != nil {
		return Point{}, err
	}
	if tn.CanInsertAt() {
		if p.Offset > len(tn.text) {
			return Point{}, ErrOffsetOutOfRange
		}
		return p, nil
	}

	// The caret sits against a node that forbids insertion on that side:
	// host the new content in an adjacent empty text node and retry
	// against it.
	host := NewTextNode(ctx, "")
	materialized[host.key] = struct{}{}
	if p.Offset == 0 {
		if err := ctx.InsertBefore(tn.key, host.key); err != nil {
			return Point{}, err
		}
	} else {
		if err := ctx.InsertAfter(tn.key, host.key); err != nil {
			return Point{}, err
		}
	}
	return TextPoint(host.key, 0), nil
}

// Nodes returns the keys covered by the selection in document order: the
// endpoint nodes plus the topmost subtrees lying strictly between them.
// A collapsed selection yields just its host node.
func (s *RangeSelection) Nodes(ctx *Context) ([]NodeKey, error) {
	if err := ctx.check(); err != nil {
		return nil, err
	}
	st := ctx.pending
	first, last := s.Ordered(st)
	if !first.Valid(st) || !last.Valid(st) {
		return nil, ErrSelectionMismatch
	}
	firstKey, lastKey := first.Key, last.Key
	if first.Kind == PointElement {
		firstKey = elementPointNode(st, first)
	}
	if last.Kind == PointElement {
		lastKey = elementPointNode(st, last)
	}
	if firstKey == lastKey {
		return []NodeKey{firstKey}, nil
	}
	out := []NodeKey{firstKey}
	out = append(out, collectBetween(st, firstKey, lastKey)...)
	return append(out, lastKey), nil
}

// elementPointNode maps an element point to the node it abuts: the child at
// the index, or the element itself for an end-of-children position.
func elementPointNode(st *State, p Point) NodeKey {
	el, ok := st.nodes[p.Key].(*ElementNode)
	if !ok {
		return p.Key
	}
	if p.Offset < len(el.children) {
		return el.children[p.Offset]
	}
	if len(el.children) > 0 {
		return el.children[len(el.children)-1]
	}
	return p.Key
}

// collectBetween returns the topmost subtrees lying strictly between two
// leaves in document order: nodes entirely after firstKey and entirely
// before lastKey, excluding ancestors of either, with descendants of an
// already-collected subtree omitted.
func collectBetween(st *State, firstKey, lastKey NodeKey) []NodeKey {
	firstPath := nodePath(st, firstKey)
	lastPath := nodePath(st, lastKey)

	selected := make(map[NodeKey]struct{})
	var out []NodeKey
	var walk func(key NodeKey)
	walk = func(key NodeKey) {
		if key != RootKey {
			p := nodePath(st, key)
			afterFirst := comparePaths(p, firstPath) > 0 && !isPrefix(p, firstPath)
			beforeLast := comparePaths(p, lastPath) < 0 && !isPrefix(p, lastPath)
			if afterFirst && beforeLast {
				selected[key] = struct{}{}
				out = append(out, key)
				return // descendants are covered by the subtree
			}
		}
		if el, ok := st.nodes[key].(*ElementNode); ok {
			for _, child := range el.children {
				walk(child)
			}
		}
	}
	walk(RootKey)
	return out
}

// nodePath returns the node's root-relative index path.
func nodePath(st *State, key NodeKey) []int {
	var rev []int
	for key != RootKey {
		parent, idx := st.indexInParent(key)
		if parent == "" {
			invariantf("nodePath", key, "detached node in path computation")
		}
		rev = append(rev, idx)
		key = parent
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

// isPrefix reports whether a is a strict or equal prefix of b.
func isPrefix(a, b []int) bool {
	if len(a) > len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
