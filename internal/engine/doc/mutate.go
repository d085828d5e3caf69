package doc

// Tree mutation primitives. Every operation works on writable clones
// obtained through the transaction, detaches nodes from any existing parent
// before re-attaching them, and repairs selection points so they stay valid
// across the splice.
//
// Preamble and postamble of a node depend on adjacency (a block element
// contributes a trailing newline only when a sibling follows it), so a
// splice dirties not just the moved node but also the siblings on either
// side of the splice point: their cached segments may be stale even though
// their own content did not change.

// AppendChild attaches child as the last child of parent.
func (c *Context) AppendChild(parent, child NodeKey) error {
	if err := c.check(); err != nil {
		return err
	}
	el, err := c.Element(parent)
	if err != nil {
		return err
	}
	return c.insertAt(parent, el.ChildCount(), child)
}

// InsertBefore attaches node as the sibling immediately before ref.
func (c *Context) InsertBefore(ref, node NodeKey) error {
	if err := c.check(); err != nil {
		return err
	}
	parent, idx, err := c.locate(ref)
	if err != nil {
		return err
	}
	// A detach of node above ref's position shifts ref's index left.
	if prevParent, prevIdx := c.pending.indexInParent(node); prevParent == parent && prevIdx < idx {
		idx--
	}
	if err := c.detach(node); err != nil {
		return err
	}
	return c.insertAt(parent, idx, node)
}

// InsertAfter attaches node as the sibling immediately after ref.
func (c *Context) InsertAfter(ref, node NodeKey) error {
	if err := c.check(); err != nil {
		return err
	}
	parent, idx, err := c.locate(ref)
	if err != nil {
		return err
	}
	if prevParent, prevIdx := c.pending.indexInParent(node); prevParent == parent && prevIdx < idx {
		idx--
	}
	if err := c.detach(node); err != nil {
		return err
	}
	return c.insertAt(parent, idx+1, node)
}

// Replace substitutes replacement for old in old's parent, detaching old.
// The replacement is detached from any previous parent first.
func (c *Context) Replace(old, replacement NodeKey) error {
	if err := c.check(); err != nil {
		return err
	}
	if old == RootKey {
		return ErrRootDetach
	}
	parent, idx, err := c.locate(old)
	if err != nil {
		return err
	}
	if prevParent, prevIdx := c.pending.indexInParent(replacement); prevParent == parent && prevIdx < idx {
		idx--
	}
	if err := c.detach(replacement); err != nil {
		return err
	}
	c.rebindPointsFromRemoved(old)
	if err := c.detach(old); err != nil {
		return err
	}
	if err := c.insertAt(parent, idx, replacement); err != nil {
		return err
	}
	c.dropFromNodeSelection(old)
	return nil
}

// Remove detaches the node from its parent and marks it dirty. Selection
// points resolving inside the removed subtree are rebound to a neighboring
// position first. If the parent may not be empty by policy and has no
// remaining children, it is removed as well, cascading upward. The root is
// never removed.
func (c *Context) Remove(key NodeKey) error {
	if err := c.check(); err != nil {
		return err
	}
	if key == RootKey {
		return ErrRootDetach
	}
	n, ok := c.pending.nodes[key]
	if !ok {
		return ErrNodeNotFound
	}
	parentKey := n.ParentKey()
	c.rebindPointsFromRemoved(key)
	if err := c.detach(key); err != nil {
		return err
	}
	c.dropFromNodeSelection(key)

	if parentKey == "" || parentKey == RootKey {
		return nil
	}
	parent, err := c.Element(parentKey)
	if err != nil {
		return err
	}
	if parent.ChildCount() == 0 && !parent.PreservesEmpty() {
		return c.Remove(parentKey)
	}
	return nil
}

// locate returns the parent key and child index of an attached node.
func (c *Context) locate(key NodeKey) (NodeKey, int, error) {
	if _, ok := c.pending.nodes[key]; !ok {
		return "", -1, ErrNodeNotFound
	}
	parent, idx := c.pending.indexInParent(key)
	if parent == "" {
		return "", -1, ErrNodeNotFound
	}
	return parent, idx, nil
}

// detach splices the node out of its parent's child list, clears its parent
// pointer and marks it and its former neighbors dirty. Detaching an already
// detached node is a no-op.
func (c *Context) detach(key NodeKey) error {
	n, ok := c.pending.nodes[key]
	if !ok {
		return ErrNodeNotFound
	}
	if n.ParentKey() == "" {
		return nil
	}
	parentKey, idx := c.pending.indexInParent(key)
	parent, err := c.writableElement(parentKey)
	if err != nil {
		return err
	}
	parent.children = append(parent.children[:idx], parent.children[idx+1:]...)

	w, err := c.writable(key)
	if err != nil {
		return err
	}
	w.base().parent = ""

	// The nodes now adjacent across the gap may carry stale pre/postamble.
	if idx > 0 {
		c.markDirty(parent.children[idx-1])
	}
	if idx < len(parent.children) {
		c.markDirty(parent.children[idx])
	}
	c.adjustElementPoints(parentKey, idx+1, -1)
	return nil
}

// insertAt splices child into parent's child list at idx. The child must
// already be detached.
func (c *Context) insertAt(parentKey NodeKey, idx int, childKey NodeKey) error {
	child, ok := c.pending.nodes[childKey]
	if !ok {
		return ErrNodeNotFound
	}
	if childKey == RootKey {
		return ErrRootDetach
	}
	if child.ParentKey() != "" {
		if err := c.detach(childKey); err != nil {
			return err
		}
	}
	parent, err := c.writableElement(parentKey)
	if err != nil {
		return err
	}
	if idx < 0 || idx > len(parent.children) {
		return ErrOffsetOutOfRange
	}
	parent.children = append(parent.children, "")
	copy(parent.children[idx+1:], parent.children[idx:])
	parent.children[idx] = childKey

	w, err := c.writable(childKey)
	if err != nil {
		return err
	}
	w.base().parent = parentKey

	if idx > 0 {
		c.markDirty(parent.children[idx-1])
	}
	if idx+1 < len(parent.children) {
		c.markDirty(parent.children[idx+1])
	}
	c.adjustElementPoints(parentKey, idx, +1)
	return nil
}

// dropFromNodeSelection removes a detached key from a pending node
// selection so the selection stays resolvable at commit.
func (c *Context) dropFromNodeSelection(key NodeKey) {
	if ns, ok := c.pending.selection.(*NodeSelection); ok && ns.Has(key) {
		ns.Delete(key)
	}
}
