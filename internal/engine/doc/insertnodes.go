package doc

// InsertParagraph splits the block containing the caret: content after the
// caret moves into a fresh sibling element of the same type, and the caret
// lands at its start. A non-collapsed selection is deleted first.
func (s *RangeSelection) InsertParagraph(ctx *Context) error {
	if err := ctx.check(); err != nil {
		return err
	}
	if !s.IsCollapsed() {
		if err := s.InsertText(ctx, ""); err != nil {
			return err
		}
	}
	st := ctx.pending
	p := s.anchor

	var containerKey NodeKey
	var splitIdx int
	switch p.Kind {
	case PointElement:
		containerKey = p.Key
		splitIdx = p.Offset
	case PointText:
		tn, err := ctx.Text(p.Key)
		if err != nil {
			return err
		}
		parent, idx := st.indexInParent(p.Key)
		if parent == "" {
			return ErrNodeNotFound
		}
		switch {
		case p.Offset == 0:
			splitIdx = idx
		case p.Offset == tn.TextLen():
			splitIdx = idx + 1
		default:
			if _, err := tn.Split(ctx, p.Offset); err != nil {
				return err
			}
			splitIdx = idx + 1
		}
		containerKey = parent
	}

	// Walk out of inline wrappers: paragraphs split at block level.
	for containerKey != RootKey {
		el := st.element("InsertParagraph", containerKey)
		if !el.inline {
			break
		}
		parent, idx := st.indexInParent(containerKey)
		containerKey = parent
		splitIdx = idx + 1
	}

	container := st.element("InsertParagraph", containerKey)

	var newBlock *ElementNode
	if containerKey == RootKey {
		newBlock = NewElementNode(ctx, "paragraph")
		tail := append([]NodeKey(nil), container.children[splitIdx:]...)
		if err := ctx.insertAt(RootKey, splitIdx, newBlock.key); err != nil {
			return err
		}
		for _, key := range tail {
			if err := ctx.AppendChild(newBlock.key, key); err != nil {
				return err
			}
		}
	} else {
		newBlock = NewElementNode(ctx, container.Type())
		newBlock.direction = container.direction
		newBlock.indent = container.indent
		tail := append([]NodeKey(nil), container.children[splitIdx:]...)
		if err := ctx.InsertAfter(containerKey, newBlock.key); err != nil {
			return err
		}
		for _, key := range tail {
			if err := ctx.AppendChild(newBlock.key, key); err != nil {
				return err
			}
		}
	}

	leaf := st.firstDescendantLeaf(newBlock.key)
	if tn, ok := st.nodes[leaf].(*TextNode); ok {
		s.Collapse(TextPoint(tn.key, 0))
	} else {
		s.Collapse(ElementPoint(newBlock.key, 0))
	}
	return nil
}

// InsertNodes places an arbitrary node list at the current selection. The
// first inserted element merges into an empty, structurally compatible
// target; block elements otherwise land as siblings of the enclosing block;
// leaves and inline elements are spliced in at the caret, with text targets
// split first when the caret falls mid-text. With selectStart true the
// selection collapses to the start of the first inserted node, otherwise to
// the end of the last.
func (s *RangeSelection) InsertNodes(ctx *Context, nodes []Node, selectStart bool) error {
	if err := ctx.check(); err != nil {
		return err
	}
	if len(nodes) == 0 {
		return nil
	}
	if !s.IsCollapsed() {
		if err := s.InsertText(ctx, ""); err != nil {
			return err
		}
	}
	st := ctx.pending
	p := s.anchor

	// Resolve the caret to an insertion slot (parent element, child index).
	var slotParent NodeKey
	var slotIdx int
	switch p.Kind {
	case PointElement:
		slotParent = p.Key
		slotIdx = p.Offset
	case PointText:
		tn, err := ctx.Text(p.Key)
		if err != nil {
			return err
		}
		parent, idx := st.indexInParent(p.Key)
		if parent == "" {
			return ErrNodeNotFound
		}
		switch {
		case p.Offset == 0:
			slotIdx = idx
		case p.Offset == tn.TextLen():
			slotIdx = idx + 1
		default:
			if _, err := tn.Split(ctx, p.Offset); err != nil {
				return err
			}
			slotIdx = idx + 1
		}
		slotParent = parent
	}

	rest := nodes

	// An empty, structurally compatible element target absorbs the first
	// inserted element instead of nesting a new one inside it.
	if target, err := ctx.Element(slotParent); err == nil && p.Kind == PointElement {
		if firstEl, ok := nodes[0].(*ElementNode); ok &&
			!firstEl.inline && !target.inline &&
			target.ChildCount() == 0 && slotParent != RootKey {
			grafted := append([]NodeKey(nil), firstEl.children...)
			for _, key := range grafted {
				if err := ctx.AppendChild(slotParent, key); err != nil {
					return err
				}
			}
			rest = nodes[1:]
			slotParent, slotIdx = blockSlotAfter(st, slotParent)
		}
	}

	for _, n := range rest {
		el, isElement := n.(*ElementNode)
		if isElement && !el.inline {
			// Blocks become siblings of the enclosing block.
			if slotParent != RootKey {
				slotParent, slotIdx = blockSlotAfter(st, enclosingBlock(st, slotParent))
			}
			if err := ctx.insertAt(slotParent, slotIdx, n.Key()); err != nil {
				return err
			}
			// Subsequent leaves append into the block just inserted.
			slotParent = n.Key()
			slotIdx = el.ChildCount()
			continue
		}
		if err := ctx.insertAt(slotParent, slotIdx, n.Key()); err != nil {
			return err
		}
		slotIdx++
	}

	if selectStart {
		s.Collapse(startOfNode(st, nodes[0].Key()))
	} else {
		s.Collapse(endOfNode(st, nodes[len(nodes)-1].Key()))
	}
	return nil
}

// enclosingBlock returns the nearest non-inline element at or above key
// that is not the root, or the root itself.
func enclosingBlock(st *State, key NodeKey) NodeKey {
	for key != RootKey {
		el, ok := st.nodes[key].(*ElementNode)
		if ok && !el.inline {
			return key
		}
		parent, _ := st.indexInParent(key)
		if parent == "" {
			return RootKey
		}
		key = parent
	}
	return RootKey
}

// blockSlotAfter returns the slot immediately after the given block in its
// parent, falling back to the end of the root for detached keys.
func blockSlotAfter(st *State, key NodeKey) (NodeKey, int) {
	if key == RootKey {
		return RootKey, st.Root().ChildCount()
	}
	parent, idx := st.indexInParent(key)
	if parent == "" {
		return RootKey, st.Root().ChildCount()
	}
	return parent, idx + 1
}

// startOfNode returns the caret position at the start of a node.
func startOfNode(st *State, key NodeKey) Point {
	leaf := st.firstDescendantLeaf(key)
	if tn, ok := st.nodes[leaf].(*TextNode); ok {
		return TextPoint(tn.key, 0)
	}
	if _, ok := st.nodes[key].(*ElementNode); ok {
		return ElementPoint(key, 0)
	}
	parent, idx := st.indexInParent(key)
	return ElementPoint(parent, idx)
}

// endOfNode returns the caret position at the end of a node.
func endOfNode(st *State, key NodeKey) Point {
	leaf := st.lastDescendantLeaf(key)
	if tn, ok := st.nodes[leaf].(*TextNode); ok {
		return TextPoint(tn.key, len(tn.text))
	}
	if el, ok := st.nodes[key].(*ElementNode); ok {
		return ElementPoint(key, el.ChildCount())
	}
	parent, idx := st.indexInParent(key)
	return ElementPoint(parent, idx+1)
}

// InsertText on a node selection is valid only when exactly one node is
// selected: a temporary range selection bracketing that node's position in
// its parent replaces the node selection and the insertion is delegated to
// it.
func (s *NodeSelection) InsertText(ctx *Context, text string) error {
	rs, err := s.toBracketingRange(ctx)
	if err != nil {
		return err
	}
	return rs.InsertText(ctx, text)
}

// InsertParagraph on a node selection delegates through the same bracketing
// range used by InsertText.
func (s *NodeSelection) InsertParagraph(ctx *Context) error {
	rs, err := s.toBracketingRange(ctx)
	if err != nil {
		return err
	}
	return rs.InsertParagraph(ctx)
}

func (s *NodeSelection) toBracketingRange(ctx *Context) (*RangeSelection, error) {
	if err := ctx.check(); err != nil {
		return nil, err
	}
	if s.Len() != 1 {
		return nil, ErrSelectionMismatch
	}
	key := s.Keys()[0]
	parent, idx := ctx.pending.indexInParent(key)
	if parent == "" {
		return nil, ErrNodeNotFound
	}
	rs := NewRangeSelection(ElementPoint(parent, idx), ElementPoint(parent, idx+1))
	if err := ctx.SetSelection(rs); err != nil {
		return nil, err
	}
	return rs, nil
}
