package doc

import "sort"

// Split splits the node's content at the given byte offsets into N parts,
// each inheriting the node's mode, format, style and detail flags. For a
// normal-mode node the original key is reused for the first fragment; a
// segmented node yields a brand-new node for the first fragment instead.
// All fragments are spliced into the parent atomically, replacing the
// original node, and any selection point inside a shifted fragment is
// rebound to the correct new node and offset.
func (tn *TextNode) Split(ctx *Context, offsets ...int) ([]*TextNode, error) {
	if err := ctx.check(); err != nil {
		return nil, err
	}
	cur, err := ctx.Text(tn.key)
	if err != nil {
		return nil, err
	}
	text := cur.text

	cuts := sanitizeOffsets(offsets, len(text))
	if len(cuts) > 0 {
		if cuts[len(cuts)-1] > len(text) {
			return nil, ErrOffsetOutOfRange
		}
	}

	parentKey, idx := ctx.pending.indexInParent(tn.key)
	if parentKey == "" {
		return nil, ErrNodeNotFound
	}

	// Fragment boundaries: [0, cuts..., len].
	bounds := append([]int{0}, cuts...)
	bounds = append(bounds, len(text))

	segmented := cur.mode == ModeSegmented
	fragments := make([]*TextNode, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		part := text[bounds[i]:bounds[i+1]]
		if i == 0 && !segmented {
			w, err := ctx.writableText(tn.key)
			if err != nil {
				return nil, err
			}
			w.text = part
			fragments = append(fragments, w)
			continue
		}
		frag := NewTextNode(ctx, part)
		frag.mode = cur.mode
		frag.format = cur.format
		frag.style = cur.style
		frag.detail = cur.detail
		fragments = append(fragments, frag)
	}

	// Rebind points that now live in a shifted fragment.
	ctx.adjustTextPoints(tn.key, func(p *Point) {
		for i := 0; i+1 < len(bounds); i++ {
			if p.Offset <= bounds[i+1] || i+2 == len(bounds) {
				p.Key = fragments[i].key
				p.Offset -= bounds[i]
				return
			}
		}
	})

	// Splice the fragment list in, replacing the original atomically.
	if segmented {
		if err := ctx.detach(tn.key); err != nil {
			return nil, err
		}
		ctx.dropFromNodeSelection(tn.key)
		for i := len(fragments) - 1; i >= 0; i-- {
			if err := ctx.insertAt(parentKey, idx, fragments[i].key); err != nil {
				return nil, err
			}
		}
	} else {
		for i := len(fragments) - 1; i >= 1; i-- {
			if err := ctx.insertAt(parentKey, idx+1, fragments[i].key); err != nil {
				return nil, err
			}
		}
	}
	return fragments, nil
}

// sanitizeOffsets sorts, dedupes and strips boundary offsets so only strict
// interior cuts remain.
func sanitizeOffsets(offsets []int, length int) []int {
	cuts := make([]int, 0, len(offsets))
	for _, off := range offsets {
		if off > 0 && off < length {
			cuts = append(cuts, off)
		} else if off > length {
			cuts = append(cuts, off) // let the caller's bounds check reject it
		}
	}
	sort.Ints(cuts)
	out := cuts[:0]
	for i, off := range cuts {
		if i == 0 || off != cuts[i-1] {
			out = append(out, off)
		}
	}
	return out
}

// MergeWithSibling concatenates the sibling's text into the receiver,
// rebinds any selection point anchored in the sibling (adjusting its offset
// by the surviving side's length when the sibling preceded the receiver),
// and removes the sibling.
func (tn *TextNode) MergeWithSibling(ctx *Context, sib *TextNode) error {
	if err := ctx.check(); err != nil {
		return err
	}
	cur, err := ctx.Text(tn.key)
	if err != nil {
		return err
	}
	sibCur, err := ctx.Text(sib.key)
	if err != nil {
		return err
	}

	prevKey := ctx.pending.prevSibling(tn.key)
	nextKey := ctx.pending.nextSibling(tn.key)

	w, err := ctx.writableText(tn.key)
	if err != nil {
		return err
	}
	switch sib.key {
	case prevKey:
		shift := len(sibCur.text)
		ctx.adjustTextPoints(tn.key, func(p *Point) { p.Offset += shift })
		ctx.adjustTextPoints(sib.key, func(p *Point) { p.Key = tn.key })
		w.text = sibCur.text + cur.text
	case nextKey:
		shift := len(cur.text)
		ctx.adjustTextPoints(sib.key, func(p *Point) {
			p.Key = tn.key
			p.Offset += shift
		})
		w.text = cur.text + sibCur.text
	default:
		return ErrNoSibling
	}
	return ctx.Remove(sib.key)
}

// Normalize repairs the neighborhood of a text node after an edit. An
// empty, plain, mergeable node is removed outright. Otherwise adjacent
// sibling text nodes with identical mode, format and style are folded into
// the node, scanning backward then forward and stopping at the first
// mismatch or unmergeable neighbor. Afterward no two adjacent sibling text
// nodes share identical mode, format and style, so a second call is a
// no-op.
func (tn *TextNode) Normalize(ctx *Context) error {
	if err := ctx.check(); err != nil {
		return err
	}
	cur, err := ctx.Text(tn.key)
	if err != nil {
		return err
	}
	if !ctx.pending.IsAttached(tn.key) {
		return nil
	}

	if cur.text == "" && cur.IsPlain() {
		return ctx.Remove(tn.key)
	}

	for {
		prev, ok := ctx.pending.nodes[ctx.pending.prevSibling(tn.key)].(*TextNode)
		if !ok || !cur.CanMergeWith(prev) {
			break
		}
		if err := cur.MergeWithSibling(ctx, prev); err != nil {
			return err
		}
		cur, err = ctx.Text(tn.key)
		if err != nil {
			return err
		}
	}
	for {
		next, ok := ctx.pending.nodes[ctx.pending.nextSibling(tn.key)].(*TextNode)
		if !ok || !cur.CanMergeWith(next) {
			break
		}
		if err := cur.MergeWithSibling(ctx, next); err != nil {
			return err
		}
		cur, err = ctx.Text(tn.key)
		if err != nil {
			return err
		}
	}
	return nil
}

// rebindPointsFromRemoved moves selection points off a subtree that is
// about to be removed: onto the end of the previous text sibling, the
// start of the next text sibling, or the parent's child index as a last
// resort. Points resolving anywhere inside the subtree are rebound, not
// just points addressing its root.
func (c *Context) rebindPointsFromRemoved(key NodeKey) {
	parentKey, idx := c.pending.indexInParent(key)
	if parentKey == "" {
		return
	}
	prev, hasPrev := c.pending.nodes[c.pending.prevSibling(key)].(*TextNode)
	next, hasNext := c.pending.nodes[c.pending.nextSibling(key)].(*TextNode)
	c.adjustPoints(func(p *Point) bool {
		if !c.pending.withinSubtree(p.Key, key) {
			return false
		}
		switch {
		case hasPrev:
			*p = TextPoint(prev.key, len(prev.text))
		case hasNext:
			*p = TextPoint(next.key, 0)
		default:
			*p = ElementPoint(parentKey, idx)
		}
		return true
	})
}
